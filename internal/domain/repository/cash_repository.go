package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// CashSessionFilter filtros del historial de sesiones de caja.
type CashSessionFilter struct {
	StartDate string
	EndDate   string
	UserID    string
	Status    string
	Page      Page
}

// CashMovementTotals suma de ingresos y egresos (egresos en valor absoluto).
type CashMovementTotals struct {
	Ingresos decimal.Decimal
	Egresos  decimal.Decimal
}

// Net ingresos menos egresos.
func (t CashMovementTotals) Net() decimal.Decimal {
	return t.Ingresos.Sub(t.Egresos)
}

// CashRepository define el puerto de persistencia para la caja (DIP).
type CashRepository interface {
	CreateSession(ctx context.Context, session *entity.CashSession) error
	// GetOpen devuelve la sesión abierta o (nil, nil).
	GetOpen(ctx context.Context) (*entity.CashSession, error)
	GetOpenForUpdate(ctx context.Context) (*entity.CashSession, error)
	// GetOpenForShare bloquea la sesión abierta en modo compartido: el cierre espera a que terminen
	// las ventas que la referencian.
	GetOpenForShare(ctx context.Context) (*entity.CashSession, error)
	GetSessionByID(ctx context.Context, id string) (*entity.CashSession, error)
	CloseSession(ctx context.Context, session *entity.CashSession) error
	ListSessions(ctx context.Context, filter CashSessionFilter) ([]*entity.CashSession, int, error)
	CreateMovement(ctx context.Context, movement *entity.CashMovement) error
	ListMovements(ctx context.Context, sessionID string) ([]*entity.CashMovement, error)
	MovementTotals(ctx context.Context, sessionID string) (CashMovementTotals, error)
	// GetSettings devuelve la configuración persistida o los valores por defecto.
	GetSettings(ctx context.Context) (*entity.CashSettings, error)
	SaveSettings(ctx context.Context, settings *entity.CashSettings) error
}
