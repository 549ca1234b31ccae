package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock > 0 genera un movimiento de entrada inicial.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price"`
	PriceLevel2 *decimal.Decimal `json:"price_level_2,omitempty"`
	PriceLevel3 *decimal.Decimal `json:"price_level_3,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Stock       *decimal.Decimal `json:"stock,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	UnitType    string           `json:"unit_type" validate:"omitempty,oneof=unidades kg"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Barcode     string           `json:"barcode" validate:"max=64"`
	Image       string           `json:"image" validate:"max=1000"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: sólo cambia vía movimientos).
type UpdateProductRequest struct {
	Name        string           `json:"name" validate:"max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Price       *decimal.Decimal `json:"price"`
	PriceLevel2 *decimal.Decimal `json:"price_level_2,omitempty"`
	PriceLevel3 *decimal.Decimal `json:"price_level_3,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	UnitType    string           `json:"unit_type" validate:"omitempty,oneof=unidades kg"`
	CategoryID  *string          `json:"category_id,omitempty"`
	Barcode     string           `json:"barcode" validate:"max=64"`
	Image       string           `json:"image" validate:"max=1000"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	PriceLevel2   *decimal.Decimal `json:"price_level_2"`
	PriceLevel3   *decimal.Decimal `json:"price_level_3"`
	Cost          decimal.Decimal  `json:"cost"`
	Stock         decimal.Decimal  `json:"stock"`
	MinStock      decimal.Decimal  `json:"min_stock"`
	UnitType      string           `json:"unit_type"`
	CategoryID    *string          `json:"category_id"`
	CategoryName  string           `json:"category_name,omitempty"`
	CategoryColor string           `json:"category_color,omitempty"`
	CategoryIcon  string           `json:"category_icon,omitempty"`
	Barcode       string           `json:"barcode"`
	Image         string           `json:"image"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductListRequest filtros de GET /api/products. Active: true (defecto), false o all.
type ProductListRequest struct {
	PageRequest
	Active     string `query:"active"`
	Category   string `query:"category"`
	Search     string `query:"search"`
	StockLevel string `query:"stockLevel"`
	MinStock   string `query:"minStock"`
	MaxStock   string `query:"maxStock"`
	MinPrice   string `query:"minPrice"`
	MaxPrice   string `query:"maxPrice"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

type TopSellingResponse struct {
	ProductResponse
	TotalSold  decimal.Decimal `json:"total_sold"`
	SalesCount int             `json:"sales_count"`
}

// CreateProductResponse producto creado y, si hubo stock inicial, su movimiento.
type CreateProductResponse struct {
	Product         ProductResponse   `json:"product"`
	InitialMovement *MovementResponse `json:"initial_movement,omitempty"`
}
