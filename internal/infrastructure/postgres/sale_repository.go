package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `
	s.id, s.customer_id, s.user_id, s.cash_session_id, s.total, s.payment_method, s.status,
	COALESCE(s.notes, ''), COALESCE(s.cancel_reason, ''), s.created_at, s.updated_at, s.cancelled_at,
	COALESCE(c.name, ''), COALESCE(u.name, ''),
	(SELECT COUNT(*) FROM sale_items si WHERE si.sale_id = s.id)`

const saleFrom = `
	FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id
	LEFT JOIN users u ON u.id = s.user_id`

// SaleRepo persistencia de ventas, sus líneas y medios de pago.
type SaleRepo struct {
	q Querier
}

func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.CustomerID, &s.UserID, &s.CashSessionID, &s.Total, &s.PaymentMethod, &s.Status,
		&s.Notes, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt, &s.CancelledAt,
		&s.CustomerName, &s.UserName, &s.ItemsCount,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserta la cabecera; las líneas y pagos se agregan con CreateItem / CreatePayment en la misma tx.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, customer_id, user_id, cash_session_id, total, payment_method, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.CustomerID, s.UserID, s.CashSessionID, s.Total, s.PaymentMethod, s.Status, s.Notes, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateItem(ctx context.Context, item *entity.LineItem) error {
	return saleLines.createItem(ctx, r.q, item)
}

func (r *SaleRepo) CreatePayment(ctx context.Context, saleID string, tender *entity.Tender) error {
	return saleLines.createPayment(ctx, r.q, saleID, tender)
}

func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+saleFrom+` WHERE s.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return s, nil
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, `SELECT `+saleColumns+saleFrom+` WHERE s.id = $1 FOR UPDATE OF s`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale for update: %w", err)
	}
	return s, nil
}

func (r *SaleRepo) ListItems(ctx context.Context, saleID string) ([]entity.LineItem, error) {
	return saleLines.listItems(ctx, r.q, saleID)
}

func (r *SaleRepo) ListPayments(ctx context.Context, saleIDs ...string) (map[string][]entity.Tender, error) {
	return saleLines.listPayments(ctx, r.q, saleIDs)
}

func (r *SaleRepo) Cancel(ctx context.Context, id, reason string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE sales SET status = 'cancelled', cancel_reason = $2, cancelled_at = $3, updated_at = $3
		WHERE id = $1`, id, reason, at)
	if err != nil {
		return fmt.Errorf("cancel sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, int, error) {
	lq := newListQuery().
		DateFrom("s.created_at", f.StartDate).
		DateTo("s.created_at", f.EndDate).
		Eq("s.status", f.Status).
		Eq("s.customer_id", f.CustomerID).
		Eq("s.user_id", f.UserID).
		Eq("s.payment_method", f.PaymentMethod).
		Search(f.Search, "c.name", "u.name")

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(*)` + saleFrom)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	sql, args := lq.Select(`SELECT `+saleColumns+saleFrom, `ORDER BY s.created_at DESC, s.id DESC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func (r *SaleRepo) Summary(ctx context.Context, from, to time.Time) (*repository.SalesSummary, error) {
	var s repository.SalesSummary
	err := r.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(total) FILTER (WHERE status = 'completed'), 0),
			COALESCE(AVG(total) FILTER (WHERE status = 'completed'), 0),
			COALESCE((
				SELECT SUM(si.quantity) FROM sale_items si JOIN sales s2 ON s2.id = si.sale_id
				WHERE s2.status = 'completed' AND s2.created_at >= $1 AND s2.created_at < $2
			), 0)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2`, from, to,
	).Scan(&s.TotalSales, &s.CompletedSales, &s.CancelledSales, &s.Revenue, &s.AverageTicket, &s.ItemsSold)
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}
	s.AverageTicket = s.AverageTicket.Round(2)
	return &s, nil
}

// PaymentTotals suma por medio a partir de sale_payments, así una venta dividida aporta a cada medio.
func (r *SaleRepo) PaymentTotals(ctx context.Context, from, to time.Time) ([]repository.MethodTotal, error) {
	return r.methodTotals(ctx, `s.created_at >= $1 AND s.created_at < $2`, from, to)
}

func (r *SaleRepo) PaymentTotalsBySession(ctx context.Context, sessionID string) ([]repository.MethodTotal, error) {
	return r.methodTotals(ctx, `s.cash_session_id = $1`, sessionID)
}

func (r *SaleRepo) methodTotals(ctx context.Context, where string, args ...any) ([]repository.MethodTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT sp.method, COUNT(DISTINCT s.id), COALESCE(SUM(sp.amount), 0)
		FROM sale_payments sp
		JOIN sales s ON s.id = sp.sale_id
		WHERE s.status = 'completed' AND `+where+`
		GROUP BY sp.method
		ORDER BY 3 DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("payment totals: %w", err)
	}
	defer rows.Close()

	out := make([]repository.MethodTotal, 0)
	for rows.Next() {
		var m repository.MethodTotal
		if err := rows.Scan(&m.Method, &m.Count, &m.Amount); err != nil {
			return nil, fmt.Errorf("scan payment total: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SaleRepo) HourlyTotals(ctx context.Context, from, to time.Time) ([]repository.HourlyTotal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COUNT(*), COALESCE(SUM(total), 0)
		FROM sales
		WHERE status = 'completed' AND created_at >= $1 AND created_at < $2
		GROUP BY hour
		ORDER BY hour`, from, to)
	if err != nil {
		return nil, fmt.Errorf("hourly totals: %w", err)
	}
	defer rows.Close()

	out := make([]repository.HourlyTotal, 0)
	for rows.Next() {
		var h repository.HourlyTotal
		if err := rows.Scan(&h.Hour, &h.Count, &h.Revenue); err != nil {
			return nil, fmt.Errorf("scan hourly total: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *SaleRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]repository.ProductSales, error) {
	rows, err := r.q.Query(ctx, `
		SELECT p.id, p.name, p.unit_type, SUM(si.quantity), SUM(si.subtotal)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.status = 'completed' AND s.created_at >= $1 AND s.created_at < $2
		GROUP BY p.id
		ORDER BY 4 DESC, p.name ASC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	out := make([]repository.ProductSales, 0)
	for rows.Next() {
		var p repository.ProductSales
		if err := rows.Scan(&p.ProductID, &p.Name, &p.UnitType, &p.Quantity, &p.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
