package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.AccountTransactionRepository = (*AccountTransactionRepo)(nil)

// AccountTransactionRepo movimientos de cuenta corriente de clientes.
type AccountTransactionRepo struct {
	q Querier
}

func NewAccountTransactionRepository(q Querier) *AccountTransactionRepo {
	return &AccountTransactionRepo{q: q}
}

func (r *AccountTransactionRepo) Create(ctx context.Context, t *entity.AccountTransaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO account_transactions (id, customer_id, type, amount, description, sale_id, user_id,
			previous_balance, new_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.CustomerID, t.Type, t.Amount, t.Description, t.SaleID, t.UserID,
		t.PreviousBalance, t.NewBalance, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert account transaction: %w", err)
	}
	return nil
}

func (r *AccountTransactionRepo) List(ctx context.Context, f repository.AccountTransactionFilter) ([]*entity.AccountTransaction, int, error) {
	const from = ` FROM account_transactions t LEFT JOIN users u ON u.id = t.user_id`
	lq := newListQuery().
		Eq("t.customer_id", f.CustomerID).
		Eq("t.type", f.Type).
		DateFrom("t.created_at", f.StartDate).
		DateTo("t.created_at", f.EndDate)

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(*)` + from)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count account transactions: %w", err)
	}

	sql, args := lq.Select(`
		SELECT t.id, t.customer_id, t.type, t.amount, t.description, t.sale_id, t.user_id,
			t.previous_balance, t.new_balance, t.created_at, COALESCE(u.name, '')`+from,
		`ORDER BY t.created_at DESC, t.id DESC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list account transactions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.AccountTransaction, 0)
	for rows.Next() {
		var t entity.AccountTransaction
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.Type, &t.Amount, &t.Description, &t.SaleID, &t.UserID,
			&t.PreviousBalance, &t.NewBalance, &t.CreatedAt, &t.UserName); err != nil {
			return nil, 0, fmt.Errorf("scan account transaction: %w", err)
		}
		list = append(list, &t)
	}
	return list, total, rows.Err()
}
