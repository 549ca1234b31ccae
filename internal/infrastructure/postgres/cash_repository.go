package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

var _ repository.CashRepository = (*CashRepo)(nil)

const cashSessionColumns = `
	cs.id, cs.user_id, cs.opening_amount, cs.opened_at, cs.closing_amount, cs.expected_amount, cs.difference,
	cs.deviation_pct, COALESCE(cs.deviation_level, ''), cs.status, COALESCE(cs.notes, ''), cs.closed_at, cs.closed_by,
	COALESCE(u.name, ''), COALESCE(cb.name, '')`

const cashSessionFrom = `
	FROM cash_sessions cs
	LEFT JOIN users u ON u.id = cs.user_id
	LEFT JOIN users cb ON cb.id = cs.closed_by`

// CashRepo persistencia de sesiones, movimientos y configuración de caja.
type CashRepo struct {
	q Querier
}

func NewCashRepository(q Querier) *CashRepo {
	return &CashRepo{q: q}
}

func scanCashSession(row pgx.Row) (*entity.CashSession, error) {
	var s entity.CashSession
	err := row.Scan(
		&s.ID, &s.UserID, &s.OpeningAmount, &s.OpenedAt, &s.ClosingAmount, &s.ExpectedAmount, &s.Difference,
		&s.DeviationPct, &s.DeviationLevel, &s.Status, &s.Notes, &s.ClosedAt, &s.ClosedBy,
		&s.UserName, &s.ClosedByName,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CashRepo) getSession(ctx context.Context, where string, args ...any) (*entity.CashSession, error) {
	s, err := scanCashSession(r.q.QueryRow(ctx, `SELECT `+cashSessionColumns+cashSessionFrom+` WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash session: %w", err)
	}
	return s, nil
}

// CreateSession abre la caja. El índice único parcial impide dos sesiones abiertas.
func (r *CashRepo) CreateSession(ctx context.Context, s *entity.CashSession) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_sessions (id, user_id, opening_amount, opened_at, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.UserID, s.OpeningAmount, s.OpenedAt, s.Status, s.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cash session: %w", err)
	}
	return nil
}

func (r *CashRepo) GetOpen(ctx context.Context) (*entity.CashSession, error) {
	return r.getSession(ctx, `cs.status = 'open' ORDER BY cs.opened_at DESC LIMIT 1`)
}

func (r *CashRepo) GetOpenForUpdate(ctx context.Context) (*entity.CashSession, error) {
	return r.getSession(ctx, `cs.status = 'open' ORDER BY cs.opened_at DESC LIMIT 1 FOR UPDATE OF cs`)
}

func (r *CashRepo) GetOpenForShare(ctx context.Context) (*entity.CashSession, error) {
	return r.getSession(ctx, `cs.status = 'open' ORDER BY cs.opened_at DESC LIMIT 1 FOR SHARE OF cs`)
}

func (r *CashRepo) GetSessionByID(ctx context.Context, id string) (*entity.CashSession, error) {
	return r.getSession(ctx, `cs.id = $1`, id)
}

// CloseSession persiste el arqueo de cierre.
func (r *CashRepo) CloseSession(ctx context.Context, s *entity.CashSession) error {
	_, err := r.q.Exec(ctx, `
		UPDATE cash_sessions SET
			closing_amount = $2, expected_amount = $3, difference = $4, deviation_pct = $5, deviation_level = $6,
			status = 'closed', notes = $7, closed_at = $8, closed_by = $9
		WHERE id = $1 AND status = 'open'`,
		s.ID, s.ClosingAmount, s.ExpectedAmount, s.Difference, s.DeviationPct, s.DeviationLevel,
		s.Notes, s.ClosedAt, s.ClosedBy)
	if err != nil {
		return fmt.Errorf("close cash session: %w", err)
	}
	return nil
}

func (r *CashRepo) ListSessions(ctx context.Context, f repository.CashSessionFilter) ([]*entity.CashSession, int, error) {
	lq := newListQuery().
		DateFrom("cs.opened_at", f.StartDate).
		DateTo("cs.opened_at", f.EndDate).
		Eq("cs.user_id", f.UserID).
		Eq("cs.status", f.Status)

	var total int
	countSQL, countArgs := lq.Count(`SELECT COUNT(*) FROM cash_sessions cs`)
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count cash sessions: %w", err)
	}

	sql, args := lq.Select(`SELECT `+cashSessionColumns+cashSessionFrom, `ORDER BY cs.opened_at DESC, cs.id DESC`, f.Page)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list cash sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.CashSession, 0)
	for rows.Next() {
		s, err := scanCashSession(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan cash session: %w", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func (r *CashRepo) CreateMovement(ctx context.Context, m *entity.CashMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_movements (id, session_id, type, amount, description, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.SessionID, m.Type, m.Amount, m.Description, m.UserID, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

func (r *CashRepo) ListMovements(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT m.id, m.session_id, m.type, m.amount, m.description, m.user_id, m.created_at, COALESCE(u.name, '')
		FROM cash_movements m
		LEFT JOIN users u ON u.id = m.user_id
		WHERE m.session_id = $1
		ORDER BY m.created_at DESC, m.id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.CashMovement, 0)
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Type, &m.Amount, &m.Description, &m.UserID, &m.CreatedAt, &m.UserName); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *CashRepo) MovementTotals(ctx context.Context, sessionID string) (repository.CashMovementTotals, error) {
	var t repository.CashMovementTotals
	err := r.q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'ingreso'), 0),
			COALESCE(-SUM(amount) FILTER (WHERE type = 'egreso'), 0)
		FROM cash_movements WHERE session_id = $1`, sessionID).Scan(&t.Ingresos, &t.Egresos)
	if err != nil {
		return t, fmt.Errorf("cash movement totals: %w", err)
	}
	return t, nil
}

// GetSettings sin fila persistida devuelve los valores por defecto.
func (r *CashRepo) GetSettings(ctx context.Context) (*entity.CashSettings, error) {
	var s entity.CashSettings
	err := r.q.QueryRow(ctx, `
		SELECT default_opening_amount, warning_deviation_pct, critical_deviation_pct, require_notes_on_critical,
			updated_by, updated_at
		FROM cash_settings WHERE id = 1`).Scan(
		&s.DefaultOpeningAmount, &s.WarningDeviationPct, &s.CriticalDeviationPct, &s.RequireNotesOnCritical,
		&s.UpdatedBy, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			d := entity.DefaultCashSettings()
			return &d, nil
		}
		return nil, fmt.Errorf("get cash settings: %w", err)
	}
	return &s, nil
}

func (r *CashRepo) SaveSettings(ctx context.Context, s *entity.CashSettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO cash_settings (id, default_opening_amount, warning_deviation_pct, critical_deviation_pct,
			require_notes_on_critical, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			default_opening_amount = EXCLUDED.default_opening_amount,
			warning_deviation_pct = EXCLUDED.warning_deviation_pct,
			critical_deviation_pct = EXCLUDED.critical_deviation_pct,
			require_notes_on_critical = EXCLUDED.require_notes_on_critical,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at`,
		s.DefaultOpeningAmount, s.WarningDeviationPct, s.CriticalDeviationPct, s.RequireNotesOnCritical,
		s.UpdatedBy, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save cash settings: %w", err)
	}
	return nil
}
