package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Niveles de stock aceptados por el filtro stockLevel del listado.
const (
	StockLevelCritical = "critical" // stock = 0
	StockLevelLow      = "low"      // 0 < stock <= min
	StockLevelNormal   = "normal"   // min < stock <= 2*min
	StockLevelHigh     = "high"     // stock > 2*min
)

// ProductFilter filtros permitidos del listado de productos. Vacío o nil = sin filtro.
type ProductFilter struct {
	Active     *bool // nil = todos
	CategoryID string
	Search     string
	StockLevel string
	MinStock   *decimal.Decimal
	MaxStock   *decimal.Decimal
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Page       Page
}

// TopProduct producto con su volumen de ventas completadas.
type TopProduct struct {
	Product    entity.Product
	TotalSold  decimal.Decimal
	SalesCount int
}

// StockAlert producto activo con stock en o bajo el mínimo.
type StockAlert struct {
	ProductID    string
	Name         string
	Stock        decimal.Decimal
	MinStock     decimal.Decimal
	UnitType     string
	CategoryName string
	Level        string
}

// ProductStats métricas generales del inventario.
type ProductStats struct {
	TotalProducts       int
	ActiveProducts      int
	LowStock            int
	OutOfStock          int
	UnitProducts        int
	KgProducts          int
	TotalInventoryValue decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE); usar dentro de una transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// ExistsBarcode indica si otro producto (distinto de excludeID) usa el código de barras.
	ExistsBarcode(ctx context.Context, barcode, excludeID string) (bool, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
	Deactivate(ctx context.Context, id string) error
	CountSaleLines(ctx context.Context, id string) (int, error)
	CountActiveByCategory(ctx context.Context, categoryID string) (int, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	TopSelling(ctx context.Context, limit int) ([]TopProduct, error)
	// LowStock alertas ordenadas por severidad; limit <= 0 devuelve todas.
	LowStock(ctx context.Context, limit int) ([]StockAlert, error)
	Stats(ctx context.Context) (*ProductStats, error)
}
