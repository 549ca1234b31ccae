package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Sale cabecera de una venta de mostrador.
// Total es el informado por la caja; no se recalcula a partir de las líneas.
type Sale struct {
	ID            string
	CustomerID    *string
	UserID        string
	CashSessionID *string
	Total         decimal.Decimal
	PaymentMethod string // medio único o "multiple"
	Status        string
	Notes         string
	CancelReason  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   *time.Time

	// Campos de lectura.
	CustomerName string
	UserName     string
	ItemsCount   int

	Items    []LineItem
	Payments []Tender
}

// Change vuelto: lo pagado por encima del total. Cero si no hay pagos cargados.
func (s *Sale) Change() decimal.Decimal {
	change := SumTenders(s.Payments).Sub(s.Total)
	if len(s.Payments) == 0 || !change.IsPositive() {
		return decimal.Zero
	}
	return change
}

// LineItem línea de una venta o de un reparto. Subtotal = Quantity * UnitPrice.
type LineItem struct {
	ID        string
	ParentID  string // sale_id o delivery_id
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	CreatedAt time.Time

	ProductName     string
	ProductBarcode  string
	ProductImage    string
	ProductUnitType string
}

// NewLineItem construye una línea calculando el subtotal.
func NewLineItem(id, parentID, productID string, quantity, unitPrice decimal.Decimal, now time.Time) LineItem {
	return LineItem{
		ID:        id,
		ParentID:  parentID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Subtotal:  quantity.Mul(unitPrice),
		CreatedAt: now,
	}
}
