package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/products/movements.
// Para ajuste, Quantity es el stock final deseado.
type RegisterMovementRequest struct {
	ProductID string           `json:"product_id"`
	Type      string           `json:"type"`
	Quantity  *decimal.Decimal `json:"quantity"`
	Reason    string           `json:"reason" validate:"max=500"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty" validate:"omitempty,gte=0"` // sólo entrada; recalcula el costo promedio
	Reference string           `json:"reference,omitempty" validate:"max=64"`
}

// MovementResponse movimiento persistido con datos de producto y usuario.
type MovementResponse struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductImage    string          `json:"product_image,omitempty"`
	ProductUnitType string          `json:"product_unit_type"`
	Type            string          `json:"type"`
	Quantity        decimal.Decimal `json:"quantity"`
	PreviousStock   decimal.Decimal `json:"previous_stock"`
	NewStock        decimal.Decimal `json:"new_stock"`
	Reason          string          `json:"reason"`
	Reference       string          `json:"reference,omitempty"`
	UserID          *string         `json:"user_id,omitempty"`
	UserName        string          `json:"user_name,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// MovementListRequest filtros de GET /api/products/movements/list.
type MovementListRequest struct {
	PageRequest
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	UserID    string `query:"user_id"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
}

type MovementListResponse struct {
	Movements  []MovementResponse `json:"movements"`
	Pagination Pagination         `json:"pagination"`
}

// StockAlertResponse producto con stock en o bajo el mínimo.
type StockAlertResponse struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	Stock        decimal.Decimal `json:"stock"`
	MinStock     decimal.Decimal `json:"min_stock"`
	UnitType     string          `json:"unit_type"`
	CategoryName string          `json:"category_name,omitempty"`
	AlertLevel   string          `json:"alert_level"`
}

type MovementSummaryResponse struct {
	Type          string          `json:"type"`
	Count         int             `json:"count"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
}

// StockStatsResponse GET /api/products/stats.
type StockStatsResponse struct {
	General struct {
		TotalProducts       int             `json:"total_products"`
		ActiveProducts      int             `json:"active_products"`
		LowStock            int             `json:"low_stock"`
		OutOfStock          int             `json:"out_of_stock"`
		UnitProducts        int             `json:"unit_products"`
		KgProducts          int             `json:"kg_products"`
		TotalInventoryValue decimal.Decimal `json:"total_inventory_value"`
	} `json:"general"`
	MonthlyMovements []MovementSummaryResponse `json:"monthly_movements"`
	Alerts           []StockAlertResponse      `json:"alerts"`
}
