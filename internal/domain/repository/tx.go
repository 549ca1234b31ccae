package repository

import "context"

// Repositories agrupa los repositorios ligados a una misma transacción.
type Repositories struct {
	Products   ProductRepository
	Movements  StockMovementRepository
	Categories CategoryRepository
	Customers  CustomerRepository
	Accounts   AccountTransactionRepository
	Users      UserRepository
	Sales      SaleRepository
	Deliveries DeliveryRepository
	Cash       CashRepository
}

// TxRunner ejecuta fn dentro de una transacción. Si fn devuelve error se hace rollback;
// si no, commit. Los repositorios recibidos sólo son válidos durante fn.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repositories) error) error
}
