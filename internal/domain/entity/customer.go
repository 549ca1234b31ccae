package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción de cuenta corriente.
const (
	AccountTxCargo = "cargo" // aumenta la deuda del cliente
	AccountTxPago  = "pago"  // la reduce
)

// Customer cliente con cuenta corriente opcional.
// Balance > 0 significa que el cliente adeuda ese importe.
type Customer struct {
	ID             string
	Name           string
	Email          string
	Phone          string
	Address        string
	DocumentNumber string
	CreditLimit    decimal.Decimal // 0 = sin límite
	Balance        decimal.Decimal
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AvailableCredit crédito disponible; nil si el cliente no tiene límite.
func (c *Customer) AvailableCredit() *decimal.Decimal {
	if !c.CreditLimit.IsPositive() {
		return nil
	}
	avail := c.CreditLimit.Sub(c.Balance)
	return &avail
}

// AccountTransaction movimiento de la cuenta corriente de un cliente.
type AccountTransaction struct {
	ID              string
	CustomerID      string
	Type            string
	Amount          decimal.Decimal
	Description     string
	SaleID          *string
	UserID          *string
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	CreatedAt       time.Time

	UserName string
}
