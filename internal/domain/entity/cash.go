package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una sesión de caja.
const (
	CashSessionOpen   = "open"
	CashSessionClosed = "closed"
)

// Tipos de movimiento manual de caja.
const (
	CashMovementIngreso = "ingreso"
	CashMovementEgreso  = "egreso" // se persiste con importe negativo
)

// Niveles de desvío del arqueo.
const (
	DeviationNormal      = "normal"
	DeviationAdvertencia = "advertencia"
	DeviationCritico     = "critico"
)

// CashSession intervalo entre apertura y cierre de la caja.
type CashSession struct {
	ID             string
	UserID         string
	OpeningAmount  decimal.Decimal
	OpenedAt       time.Time
	ClosingAmount  *decimal.Decimal
	ExpectedAmount *decimal.Decimal
	Difference     *decimal.Decimal
	DeviationPct   *decimal.Decimal
	DeviationLevel string
	Status         string
	Notes          string
	ClosedAt       *time.Time
	ClosedBy       *string

	UserName     string
	ClosedByName string
}

// CashMovement ingreso o egreso manual de efectivo. Inmutable.
type CashMovement struct {
	ID          string
	SessionID   string
	Type        string
	Amount      decimal.Decimal // con signo
	Description string
	UserID      string
	CreatedAt   time.Time

	UserName string
}

// CashSettings configuración única de la caja.
type CashSettings struct {
	DefaultOpeningAmount   decimal.Decimal
	WarningDeviationPct    decimal.Decimal
	CriticalDeviationPct   decimal.Decimal
	RequireNotesOnCritical bool
	UpdatedBy              *string
	UpdatedAt              time.Time
}

// DefaultCashSettings valores usados cuando aún no se guardó configuración.
func DefaultCashSettings() CashSettings {
	return CashSettings{
		DefaultOpeningAmount:   decimal.Zero,
		WarningDeviationPct:    decimal.NewFromInt(1),
		CriticalDeviationPct:   decimal.NewFromInt(5),
		RequireNotesOnCritical: true,
	}
}
