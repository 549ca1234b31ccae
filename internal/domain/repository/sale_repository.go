package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// SaleFilter filtros permitidos del listado de ventas.
type SaleFilter struct {
	StartDate     string
	EndDate       string
	Status        string
	CustomerID    string
	UserID        string
	PaymentMethod string
	Search        string // nombre de cliente o vendedor
	Page          Page
}

// SalesSummary totales de ventas en un rango.
type SalesSummary struct {
	TotalSales     int
	CompletedSales int
	CancelledSales int
	Revenue        decimal.Decimal // sólo ventas completadas
	AverageTicket  decimal.Decimal
	ItemsSold      decimal.Decimal
}

// MethodTotal total cobrado por medio de pago.
type MethodTotal struct {
	Method string
	Count  int
	Amount decimal.Decimal
}

// HourlyTotal ventas completadas agrupadas por hora del día.
type HourlyTotal struct {
	Hour    int
	Count   int
	Revenue decimal.Decimal
}

// ProductSales cantidad y facturación de un producto en un rango.
type ProductSales struct {
	ProductID string
	Name      string
	UnitType  string
	Quantity  decimal.Decimal
	Revenue   decimal.Decimal
}

// SaleRepository define el puerto de persistencia para ventas (DIP).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.LineItem) error
	CreatePayment(ctx context.Context, saleID string, tender *entity.Tender) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	ListItems(ctx context.Context, saleID string) ([]entity.LineItem, error)
	// ListPayments devuelve los medios de pago agrupados por sale_id.
	ListPayments(ctx context.Context, saleIDs ...string) (map[string][]entity.Tender, error)
	Cancel(ctx context.Context, id, reason string, at time.Time) error
	List(ctx context.Context, filter SaleFilter) ([]*entity.Sale, int, error)
	// Rangos semiabiertos [from, to).
	Summary(ctx context.Context, from, to time.Time) (*SalesSummary, error)
	PaymentTotals(ctx context.Context, from, to time.Time) ([]MethodTotal, error)
	HourlyTotals(ctx context.Context, from, to time.Time) ([]HourlyTotal, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	// PaymentTotalsBySession totales por medio de las ventas completadas vinculadas a una sesión de caja.
	PaymentTotalsBySession(ctx context.Context, sessionID string) ([]MethodTotal, error)
}
