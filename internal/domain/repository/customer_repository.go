package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// CustomerFilter filtros del listado de clientes.
type CustomerFilter struct {
	Active   *bool
	Search   string
	WithDebt bool
	Page     Page
}

// CustomerStats métricas de clientes y deuda en cuenta corriente.
type CustomerStats struct {
	TotalCustomers  int
	ActiveCustomers int
	WithDebt        int
	TotalDebt       decimal.Decimal
}

// AccountTransactionFilter filtros del historial de cuenta corriente.
type AccountTransactionFilter struct {
	CustomerID string
	Type       string
	StartDate  string
	EndDate    string
	Page       Page
}

// CustomerRepository define el puerto de persistencia para Customer (DIP).
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Customer, error)
	ExistsEmail(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, customer *entity.Customer) error
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, filter CustomerFilter) ([]*entity.Customer, int, error)
	Stats(ctx context.Context) (*CustomerStats, error)
}

// AccountTransactionRepository movimientos inmutables de cuenta corriente.
type AccountTransactionRepository interface {
	Create(ctx context.Context, tx *entity.AccountTransaction) error
	List(ctx context.Context, filter AccountTransactionFilter) ([]*entity.AccountTransaction, int, error)
}
