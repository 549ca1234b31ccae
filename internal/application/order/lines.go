// Package order valida las líneas y los medios de pago comunes a ventas y entregas.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// Line línea validada, todavía sin cabecera.
type Line struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// ParseLines exige al menos una línea con producto, cantidad > 0 y precio unitario > 0.
func ParseLines(items []dto.LineItemRequest) ([]Line, error) {
	if len(items) == 0 {
		return nil, domain.NewValidation("NO_ITEMS", "Debe incluir al menos un producto")
	}
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		if _, err := uuid.Parse(it.ProductID); err != nil {
			return nil, domain.NewValidation("INVALID_PRODUCT_ID", "ID de producto inválido")
		}
		if it.Quantity == nil || !it.Quantity.IsPositive() {
			return nil, domain.NewValidation("INVALID_QUANTITY", "La cantidad debe ser mayor a 0")
		}
		if !entity.FitsPlaces(*it.Quantity, entity.QuantityPlaces) {
			return nil, domain.NewValidation("INVALID_QUANTITY_PRECISION", "La cantidad admite como máximo 3 decimales")
		}
		if it.UnitPrice == nil || !it.UnitPrice.IsPositive() {
			return nil, domain.NewValidation("INVALID_UNIT_PRICE", "El precio unitario debe ser mayor a 0")
		}
		if !entity.FitsPlaces(*it.UnitPrice, entity.MoneyPlaces) {
			return nil, domain.NewValidation("INVALID_AMOUNT_PRECISION", "Los montos admiten como máximo 2 decimales")
		}
		lines = append(lines, Line{ProductID: it.ProductID, Quantity: *it.Quantity, UnitPrice: *it.UnitPrice})
	}
	return lines, nil
}

// ParseTotal total > 0 provisto por el cliente; no se recalcula desde las líneas.
func ParseTotal(total *decimal.Decimal) (decimal.Decimal, error) {
	if total == nil || !total.IsPositive() {
		return decimal.Zero, domain.NewValidation("INVALID_TOTAL", "El total debe ser mayor a 0")
	}
	if !entity.FitsPlaces(*total, entity.MoneyPlaces) {
		return decimal.Zero, domain.NewValidation("INVALID_AMOUNT_PRECISION", "Los montos admiten como máximo 2 decimales")
	}
	return *total, nil
}

// LineItems genera las filas de detalle con subtotal = cantidad * precio.
func LineItems(parentID string, lines []Line, now time.Time) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, entity.NewLineItem(uuid.New().String(), parentID, l.ProductID, l.Quantity, l.UnitPrice, now))
	}
	return items
}
