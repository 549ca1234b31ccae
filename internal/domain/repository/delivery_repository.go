package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// DeliveryFilter filtros permitidos del listado de entregas.
type DeliveryFilter struct {
	StartDate  string
	EndDate    string
	Status     string
	CustomerID string
	DriverID   string
	Search     string // id, cliente o repartidor
	Page       Page
}

// DeliveryStats conteos por estado desde una fecha.
type DeliveryStats struct {
	TotalDeliveries     int
	Pending             int
	InProgress          int
	Completed           int
	Cancelled           int
	TotalRevenue        decimal.Decimal // sólo completadas
	AverageDelivery     decimal.Decimal
	TotalItemsDelivered decimal.Decimal
}

// DeliveryRepository define el puerto de persistencia para entregas (DIP).
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *entity.Delivery) error
	CreateItem(ctx context.Context, item *entity.LineItem) error
	CreatePayment(ctx context.Context, deliveryID string, tender *entity.Tender) error
	GetByID(ctx context.Context, id string) (*entity.Delivery, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error)
	ListItems(ctx context.Context, deliveryID string) ([]entity.LineItem, error)
	ListPayments(ctx context.Context, deliveryIDs ...string) (map[string][]entity.Tender, error)
	ListLocations(ctx context.Context, deliveryID string) ([]entity.DeliveryLocation, error)
	ListHistory(ctx context.Context, deliveryID string) ([]entity.DeliveryStatusChange, error)
	// UpdateStatus cambia el estado; si notes no es vacío se agrega a las notas existentes.
	UpdateStatus(ctx context.Context, id, status, notes string, at time.Time) error
	CreateLocation(ctx context.Context, location *entity.DeliveryLocation) error
	CreateHistory(ctx context.Context, change *entity.DeliveryStatusChange) error
	List(ctx context.Context, filter DeliveryFilter) ([]*entity.Delivery, int, error)
	// ListByDriver status vacío = todos los estados.
	ListByDriver(ctx context.Context, driverID, status string) ([]*entity.Delivery, error)
	Stats(ctx context.Context, from time.Time) (*DeliveryStats, error)
}
