package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeEntrada = "entrada"
	MovementTypeSalida  = "salida"
	MovementTypeAjuste  = "ajuste" // Quantity de entrada es el stock objetivo, no un delta
)

// IsValidMovementType indica si t es un tipo de movimiento soportado.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeEntrada, MovementTypeSalida, MovementTypeAjuste:
		return true
	}
	return false
}

// StockMovement registro inmutable de un cambio de stock.
// Invariante: NewStock = PreviousStock + Quantity.
type StockMovement struct {
	ID            string
	ProductID     string
	Type          string
	Quantity      decimal.Decimal // delta con signo
	PreviousStock decimal.Decimal
	NewStock      decimal.Decimal
	Reason        string
	Reference     string // ID de venta u otro documento de origen
	UserID        *string
	CreatedAt     time.Time

	// Campos de lectura.
	ProductName     string
	ProductImage    string
	ProductUnitType string
	UserName        string
}
