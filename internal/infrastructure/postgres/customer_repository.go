package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

const customerColumns = `
	c.id, c.name, COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.address, ''),
	COALESCE(c.document_number, ''), c.credit_limit, c.balance, c.active, c.created_at, c.updated_at`

// CustomerRepo implementación del puerto CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de persistencia para clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.DocumentNumber,
		&c.CreditLimit, &c.Balance, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (id, name, email, phone, address, document_number, credit_limit, balance, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Name, nullString(c.Email), c.Phone, c.Address, c.DocumentNumber,
		c.CreditLimit, c.Balance, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetForUpdate bloquea la fila del cliente (saldo de cuenta corriente).
func (r *CustomerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := scanCustomer(r.q.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1 FOR UPDATE`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer for update: %w", err)
	}
	return c, nil
}

func (r *CustomerRepo) ExistsEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM customers WHERE lower(email) = lower($1) AND ($2::text = '' OR id::text <> $2::text))`,
		email, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check customer email: %w", err)
	}
	return exists, nil
}

// Update no toca el saldo; éste sólo cambia con transacciones de cuenta.
func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		UPDATE customers SET name = $2, email = $3, phone = $4, address = $5, document_number = $6,
			credit_limit = $7, active = $8, updated_at = $9
		WHERE id = $1`,
		c.ID, c.Name, nullString(c.Email), c.Phone, c.Address, c.DocumentNumber, c.CreditLimit, c.Active, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	_, err := r.q.Exec(ctx, `UPDATE customers SET balance = $2, updated_at = now() WHERE id = $1`, id, balance)
	if err != nil {
		return fmt.Errorf("update customer balance: %w", err)
	}
	return nil
}

func (r *CustomerRepo) Deactivate(ctx context.Context, id string) error {
	_, err := r.q.Exec(ctx, `UPDATE customers SET active = FALSE, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) List(ctx context.Context, f repository.CustomerFilter) ([]*entity.Customer, int, error) {
	lq := newListQuery().
		Bool("c.active", f.Active).
		Search(f.Search, "c.name", "c.email", "c.phone", "c.document_number")
	if f.WithDebt {
		lq.Where("c.balance > 0")
	}

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(*) FROM customers c`)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	sql, args := lq.Select(`SELECT `+customerColumns+` FROM customers c`, `ORDER BY c.name ASC, c.id ASC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

func (r *CustomerRepo) Stats(ctx context.Context) (*repository.CustomerStats, error) {
	var s repository.CustomerStats
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE active), COUNT(*) FILTER (WHERE balance > 0),
			COALESCE(SUM(balance) FILTER (WHERE balance > 0), 0)
		FROM customers`).Scan(&s.TotalCustomers, &s.ActiveCustomers, &s.WithDebt, &s.TotalDebt)
	if err != nil {
		return nil, fmt.Errorf("customer stats: %w", err)
	}
	return &s, nil
}
