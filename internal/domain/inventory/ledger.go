package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Apply calcula el delta con signo y el stock resultante de aplicar un movimiento.
//
//	entrada: delta = +|q|
//	salida:  delta = -|q|, falla si el stock queda negativo
//	ajuste:  q es el stock objetivo; delta = q - previous
func Apply(previous decimal.Decimal, movementType string, quantity decimal.Decimal, unitType string) (delta, newStock decimal.Decimal, err error) {
	if !entity.IsValidMovementType(movementType) {
		return decimal.Zero, decimal.Zero, domain.NewValidation("INVALID_MOVEMENT_TYPE",
			"Tipo de movimiento inválido. Debe ser: entrada, salida o ajuste")
	}
	if !entity.FitsPlaces(quantity, entity.QuantityPlaces) {
		return decimal.Zero, decimal.Zero, domain.NewValidation("INVALID_QUANTITY_PRECISION",
			"La cantidad admite como máximo 3 decimales")
	}
	if unitType != entity.UnitTypeKg && !quantity.IsInteger() {
		return decimal.Zero, decimal.Zero, domain.NewValidation("INVALID_UNIT_QUANTITY",
			"Para productos por unidades, la cantidad debe ser un número entero")
	}

	switch movementType {
	case entity.MovementTypeEntrada:
		if !quantity.IsPositive() {
			return decimal.Zero, decimal.Zero, domain.NewValidation("INVALID_ENTRY_QUANTITY",
				"La cantidad para entrada debe ser mayor a 0")
		}
		delta = quantity.Abs()
		newStock = previous.Add(delta)
	case entity.MovementTypeSalida:
		if !quantity.IsPositive() {
			return decimal.Zero, decimal.Zero, domain.NewValidation("INVALID_EXIT_QUANTITY",
				"La cantidad para salida debe ser mayor a 0")
		}
		delta = quantity.Abs().Neg()
		newStock = previous.Add(delta)
		if newStock.IsNegative() {
			return decimal.Zero, decimal.Zero, domain.NewInsufficientStock(fmt.Sprintf(
				"No hay suficiente stock. Stock actual: %s, cantidad solicitada: %s",
				previous.String(), quantity.Abs().String()))
		}
	case entity.MovementTypeAjuste:
		if quantity.IsNegative() {
			return decimal.Zero, decimal.Zero, domain.NewValidation("NEGATIVE_STOCK",
				"El stock no puede ser negativo")
		}
		newStock = quantity.Abs()
		delta = newStock.Sub(previous)
	}
	return delta, newStock, nil
}

// Niveles de alerta de stock.
const (
	LevelCritical = "critical"
	LevelWarning  = "warning"
	LevelNormal   = "normal"
)

var warningFactor = decimal.NewFromFloat(1.5)

// AlertLevel clasifica el stock frente al mínimo: critical si está agotado o en el mínimo,
// warning hasta 1.5 veces el mínimo.
func AlertLevel(stock, minStock decimal.Decimal) string {
	switch {
	case stock.IsZero(), stock.LessThanOrEqual(minStock):
		return LevelCritical
	case stock.LessThanOrEqual(minStock.Mul(warningFactor)):
		return LevelWarning
	default:
		return LevelNormal
	}
}
