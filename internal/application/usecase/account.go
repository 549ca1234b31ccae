package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

// AccountInput movimiento de cuenta corriente a aplicar dentro de una transacción.
type AccountInput struct {
	CustomerID  string
	Type        string // cargo | pago
	Amount      decimal.Decimal
	Description string
	SaleID      *string
	UserID      *string
	// Compensation omite los controles de límite y de saldo (reversión de una venta anulada).
	Compensation bool
}

// ApplyAccountTransaction bloquea al cliente, recalcula el saldo y registra la transacción.
func ApplyAccountTransaction(ctx context.Context, repos repository.Repositories, in AccountInput, now time.Time) (*entity.AccountTransaction, error) {
	customer, err := repos.Customers.GetForUpdate(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil || (!customer.Active && !in.Compensation) {
		return nil, domain.NewValidation("CUSTOMER_NOT_FOUND", "Cliente no encontrado o inactivo")
	}
	if !in.Amount.IsPositive() {
		return nil, domain.NewValidation("INVALID_AMOUNT", "El monto debe ser mayor a 0")
	}

	var newBalance decimal.Decimal
	switch in.Type {
	case entity.AccountTxCargo:
		newBalance = customer.Balance.Add(in.Amount)
		if !in.Compensation && customer.CreditLimit.IsPositive() && newBalance.GreaterThan(customer.CreditLimit) {
			return nil, domain.NewValidation("CREDIT_LIMIT_EXCEEDED",
				"El cliente supera su límite de crédito. Disponible: "+customer.CreditLimit.Sub(customer.Balance).StringFixed(2))
		}
	case entity.AccountTxPago:
		if !in.Compensation && in.Amount.GreaterThan(customer.Balance) {
			return nil, domain.NewValidation("PAYMENT_EXCEEDS_BALANCE", "El pago supera el saldo adeudado")
		}
		newBalance = customer.Balance.Sub(in.Amount)
	default:
		return nil, domain.NewValidation("INVALID_TRANSACTION_TYPE", "Tipo de transacción inválido. Debe ser: cargo o pago")
	}

	if err := repos.Customers.UpdateBalance(ctx, customer.ID, newBalance); err != nil {
		return nil, err
	}
	tx := &entity.AccountTransaction{
		ID:              uuid.New().String(),
		CustomerID:      customer.ID,
		Type:            in.Type,
		Amount:          in.Amount,
		Description:     in.Description,
		SaleID:          in.SaleID,
		UserID:          in.UserID,
		PreviousBalance: customer.Balance,
		NewBalance:      newBalance,
		CreatedAt:       now,
	}
	if err := repos.Accounts.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
