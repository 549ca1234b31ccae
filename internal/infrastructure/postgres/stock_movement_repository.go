package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	m.id, m.product_id, m.type, m.quantity, m.previous_stock, m.new_stock, m.reason,
	COALESCE(m.reference, ''), m.user_id, m.created_at,
	p.name, COALESCE(p.image, ''), p.unit_type, COALESCE(u.name, '')`

const movementFrom = `
	FROM stock_movements m
	JOIN products p ON p.id = m.product_id
	LEFT JOIN users u ON u.id = m.user_id`

// StockMovementRepo persistencia del libro de movimientos de stock (inmutable).
type StockMovementRepo struct {
	q Querier
}

func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.PreviousStock, &m.NewStock, &m.Reason,
		&m.Reference, &m.UserID, &m.CreatedAt,
		&m.ProductName, &m.ProductImage, &m.ProductUnitType, &m.UserName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserta el movimiento. Quantity es el delta con signo.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, type, quantity, previous_stock, new_stock, reason, reference, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Type, m.Quantity, m.PreviousStock, m.NewStock, m.Reason,
		nullString(m.Reference), m.UserID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// GetByID devuelve el movimiento con los datos de producto y usuario.
func (r *StockMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+movementFrom+` WHERE m.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock movement: %w", err)
	}
	return m, nil
}

func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	lq := newListQuery().
		Eq("m.product_id", f.ProductID).
		Eq("m.type", f.Type).
		Eq("m.user_id", f.UserID).
		DateFrom("m.created_at", f.StartDate).
		DateTo("m.created_at", f.EndDate)

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(*)` + movementFrom)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock movements: %w", err)
	}

	sql, args := lq.Select(`SELECT `+movementColumns+movementFrom, `ORDER BY m.created_at DESC, m.id DESC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// SummaryByType agrega los movimientos desde from por tipo.
func (r *StockMovementRepo) SummaryByType(ctx context.Context, from time.Time) ([]repository.MovementSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT type, COUNT(*), COALESCE(SUM(ABS(quantity)), 0)
		FROM stock_movements
		WHERE created_at >= $1
		GROUP BY type
		ORDER BY type`, from)
	if err != nil {
		return nil, fmt.Errorf("movement summary: %w", err)
	}
	defer rows.Close()

	out := make([]repository.MovementSummary, 0)
	for rows.Next() {
		var s repository.MovementSummary
		if err := rows.Scan(&s.Type, &s.Count, &s.TotalQuantity); err != nil {
			return nil, fmt.Errorf("scan movement summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
