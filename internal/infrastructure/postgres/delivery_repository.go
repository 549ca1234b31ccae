package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.DeliveryRepository = (*DeliveryRepo)(nil)

const deliveryColumns = `
	d.id, d.customer_id, d.driver_id, d.total, d.payment_method, d.status, d.notes, d.created_at, d.updated_at,
	c.name, COALESCE(c.phone, ''), COALESCE(c.email, ''), COALESCE(c.address, ''),
	u.name, u.email, COALESCE(u.phone, ''),
	(SELECT COUNT(*) FROM delivery_items di WHERE di.delivery_id = d.id),
	(SELECT COALESCE(SUM(di.quantity), 0) FROM delivery_items di WHERE di.delivery_id = d.id)`

const deliveryFrom = `
	FROM deliveries d
	JOIN customers c ON c.id = d.customer_id
	JOIN users u ON u.id = d.driver_id`

// DeliveryRepo persistencia de entregas con líneas, pagos, ubicaciones e historial de estados.
type DeliveryRepo struct {
	q Querier
}

func NewDeliveryRepository(q Querier) *DeliveryRepo {
	return &DeliveryRepo{q: q}
}

func scanDelivery(row pgx.Row) (*entity.Delivery, error) {
	var d entity.Delivery
	err := row.Scan(
		&d.ID, &d.CustomerID, &d.DriverID, &d.Total, &d.PaymentMethod, &d.Status, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
		&d.CustomerName, &d.CustomerPhone, &d.CustomerEmail, &d.CustomerAddress,
		&d.DriverName, &d.DriverEmail, &d.DriverPhone,
		&d.ItemsCount, &d.TotalItems,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeliveryRepo) scanAll(rows pgx.Rows) ([]*entity.Delivery, error) {
	defer rows.Close()
	list := make([]*entity.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *DeliveryRepo) Create(ctx context.Context, d *entity.Delivery) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO deliveries (id, customer_id, driver_id, total, payment_method, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.CustomerID, d.DriverID, d.Total, d.PaymentMethod, d.Status, d.Notes, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) CreateItem(ctx context.Context, item *entity.LineItem) error {
	return deliveryLines.createItem(ctx, r.q, item)
}

func (r *DeliveryRepo) CreatePayment(ctx context.Context, deliveryID string, tender *entity.Tender) error {
	return deliveryLines.createPayment(ctx, r.q, deliveryID, tender)
}

func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*entity.Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, `SELECT `+deliveryColumns+deliveryFrom+` WHERE d.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery: %w", err)
	}
	return d, nil
}

// GetForUpdate bloquea la fila de la entrega; el estado leído es el vigente hasta el commit.
func (r *DeliveryRepo) GetForUpdate(ctx context.Context, id string) (*entity.Delivery, error) {
	d, err := scanDelivery(r.q.QueryRow(ctx, `SELECT `+deliveryColumns+deliveryFrom+` WHERE d.id = $1 FOR UPDATE OF d`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery for update: %w", err)
	}
	return d, nil
}

func (r *DeliveryRepo) ListItems(ctx context.Context, deliveryID string) ([]entity.LineItem, error) {
	return deliveryLines.listItems(ctx, r.q, deliveryID)
}

func (r *DeliveryRepo) ListPayments(ctx context.Context, deliveryIDs ...string) (map[string][]entity.Tender, error) {
	return deliveryLines.listPayments(ctx, r.q, deliveryIDs)
}

// ListLocations la más reciente primero.
func (r *DeliveryRepo) ListLocations(ctx context.Context, deliveryID string) ([]entity.DeliveryLocation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, delivery_id, latitude, longitude, created_at
		FROM delivery_locations WHERE delivery_id = $1
		ORDER BY created_at DESC, id DESC`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list delivery locations: %w", err)
	}
	defer rows.Close()

	out := make([]entity.DeliveryLocation, 0)
	for rows.Next() {
		var l entity.DeliveryLocation
		if err := rows.Scan(&l.ID, &l.DeliveryID, &l.Latitude, &l.Longitude, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan delivery location: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *DeliveryRepo) ListHistory(ctx context.Context, deliveryID string) ([]entity.DeliveryStatusChange, error) {
	rows, err := r.q.Query(ctx, `
		SELECT h.id, h.delivery_id, h.previous_status, h.new_status, h.user_id, COALESCE(h.notes, ''), h.created_at,
			COALESCE(u.name, '')
		FROM delivery_status_history h
		LEFT JOIN users u ON u.id = h.user_id
		WHERE h.delivery_id = $1
		ORDER BY h.created_at ASC, h.id ASC`, deliveryID)
	if err != nil {
		return nil, fmt.Errorf("list delivery history: %w", err)
	}
	defer rows.Close()

	out := make([]entity.DeliveryStatusChange, 0)
	for rows.Next() {
		var h entity.DeliveryStatusChange
		if err := rows.Scan(&h.ID, &h.DeliveryID, &h.PreviousStatus, &h.NewStatus, &h.UserID, &h.Notes, &h.CreatedAt, &h.UserName); err != nil {
			return nil, fmt.Errorf("scan delivery history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// UpdateStatus agrega las notas nuevas como "previas - nuevas".
func (r *DeliveryRepo) UpdateStatus(ctx context.Context, id, status, notes string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE deliveries SET
			status = $2,
			notes = CASE
				WHEN $3::text = '' THEN notes
				WHEN notes = '' THEN $3::text
				ELSE notes || ' - ' || $3::text
			END,
			updated_at = $4
		WHERE id = $1`, id, status, notes, at)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) CreateLocation(ctx context.Context, l *entity.DeliveryLocation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delivery_locations (id, delivery_id, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5)`, l.ID, l.DeliveryID, l.Latitude, l.Longitude, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery location: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) CreateHistory(ctx context.Context, h *entity.DeliveryStatusChange) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO delivery_status_history (id, delivery_id, previous_status, new_status, user_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.ID, h.DeliveryID, h.PreviousStatus, h.NewStatus, h.UserID, nullString(h.Notes), h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery history: %w", err)
	}
	return nil
}

func (r *DeliveryRepo) List(ctx context.Context, f repository.DeliveryFilter) ([]*entity.Delivery, int, error) {
	lq := newListQuery().
		DateFrom("d.created_at", f.StartDate).
		DateTo("d.created_at", f.EndDate).
		Eq("d.status", f.Status).
		Eq("d.customer_id", f.CustomerID).
		Eq("d.driver_id", f.DriverID).
		Search(f.Search, "d.id::text", "c.name", "u.name")

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(DISTINCT d.id)` + deliveryFrom)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliveries: %w", err)
	}

	sql, args := lq.Select(`SELECT `+deliveryColumns+deliveryFrom, `ORDER BY d.created_at DESC, d.id DESC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list deliveries: %w", err)
	}
	list, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListByDriver las entregas en curso primero, luego las más antiguas.
func (r *DeliveryRepo) ListByDriver(ctx context.Context, driverID, status string) ([]*entity.Delivery, error) {
	lq := newListQuery().Eq("d.driver_id", driverID).Eq("d.status", status)
	sql, args := lq.SelectAll(`SELECT `+deliveryColumns+deliveryFrom,
		`ORDER BY CASE WHEN d.status = 'in_progress' THEN 0 ELSE 1 END, d.created_at ASC`)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list driver deliveries: %w", err)
	}
	return r.scanAll(rows)
}

func (r *DeliveryRepo) Stats(ctx context.Context, from time.Time) (*repository.DeliveryStats, error) {
	var s repository.DeliveryStats
	err := r.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'in_progress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(SUM(total) FILTER (WHERE status = 'completed'), 0),
			COALESCE(AVG(total) FILTER (WHERE status = 'completed'), 0),
			COALESCE((
				SELECT SUM(di.quantity) FROM delivery_items di JOIN deliveries d2 ON d2.id = di.delivery_id
				WHERE d2.status = 'completed' AND d2.created_at >= $1
			), 0)
		FROM deliveries
		WHERE created_at >= $1`, from,
	).Scan(&s.TotalDeliveries, &s.Pending, &s.InProgress, &s.Completed, &s.Cancelled,
		&s.TotalRevenue, &s.AverageDelivery, &s.TotalItemsDelivered)
	if err != nil {
		return nil, fmt.Errorf("delivery stats: %w", err)
	}
	s.AverageDelivery = s.AverageDelivery.Round(2)
	return &s, nil
}
