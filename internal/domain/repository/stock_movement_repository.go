package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// MovementFilter filtros permitidos del listado de movimientos. Fechas en formato YYYY-MM-DD.
type MovementFilter struct {
	ProductID string
	Type      string
	UserID    string
	StartDate string
	EndDate   string
	Page      Page
}

// MovementSummary agregado de movimientos por tipo.
type MovementSummary struct {
	Type          string
	Count         int
	TotalQuantity decimal.Decimal // suma de |quantity|
}

// StockMovementRepository define el puerto de persistencia para movimientos de stock (DIP).
// Los movimientos son inmutables: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, int, error)
	SummaryByType(ctx context.Context, from time.Time) ([]MovementSummary, error)
}
