// Package cash sesiones de caja: apertura, movimientos manuales y cierre con arqueo.
package cash

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/order"
	"github.com/jhoicas/pos-api/internal/domain"
	cashdomain "github.com/jhoicas/pos-api/internal/domain/cash"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ReportRenderer genera el reporte de cierre de una sesión.
type ReportRenderer interface {
	RenderCashReport(ctx context.Context, detail *dto.CashSessionDetailResponse) ([]byte, error)
}

// UseCase caja registradora. Sólo puede haber una sesión abierta a la vez.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	reports  ReportRenderer
	log      *logger.Logger
	now      func() time.Time
}

func NewUseCase(txRunner repository.TxRunner, repos repository.Repositories, reports ReportRenderer, log *logger.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repos: repos, reports: reports, log: log.Component("cash"), now: time.Now}
}

func errNoOpenSession() error {
	return domain.NewNotFound("NO_OPEN_SESSION", "No hay una caja abierta")
}

// totals calcula los totales corrientes de la sesión con los repositorios recibidos (pool o tx).
func totals(ctx context.Context, repos repository.Repositories, s *entity.CashSession) (*dto.CashTotals, error) {
	byMethod, err := repos.Sales.PaymentTotalsBySession(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	mov, err := repos.Cash.MovementTotals(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	cashSales := decimal.Zero
	for _, m := range byMethod {
		if m.Method == entity.PaymentEfectivo {
			cashSales = m.Amount
		}
	}
	return &dto.CashTotals{
		CashSales:     cashSales,
		Ingresos:      mov.Ingresos,
		Egresos:       mov.Egresos,
		ExpectedCash:  cashdomain.Expected(s.OpeningAmount, cashSales, mov.Net()),
		SalesByMethod: order.MethodTotalResponses(byMethod),
	}, nil
}

// Status sesión abierta con sus totales, o IsOpen=false.
func (uc *UseCase) Status(ctx context.Context) (*dto.CashStatusResponse, error) {
	s, err := uc.repos.Cash.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return &dto.CashStatusResponse{IsOpen: false}, nil
	}
	t, err := totals(ctx, uc.repos, s)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(s)
	return &dto.CashStatusResponse{IsOpen: true, Session: &resp, Totals: t}, nil
}

// Open abre la caja. Sin monto se usa el inicial configurado.
func (uc *UseCase) Open(ctx context.Context, userID string, in dto.OpenCashRequest) (*dto.CashSessionResponse, error) {
	if in.OpeningAmount != nil && in.OpeningAmount.IsNegative() {
		return nil, domain.NewValidation("INVALID_OPENING_AMOUNT", "El monto inicial no puede ser negativo")
	}

	session := &entity.CashSession{
		ID:       uuid.New().String(),
		UserID:   userID,
		OpenedAt: uc.now(),
		Status:   entity.CashSessionOpen,
		Notes:    strings.TrimSpace(in.Notes),
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		open, err := repos.Cash.GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.NewConflict("CASH_ALREADY_OPEN", "Ya hay una caja abierta")
		}
		if in.OpeningAmount != nil {
			session.OpeningAmount = *in.OpeningAmount
		} else {
			settings, err := repos.Cash.GetSettings(ctx)
			if err != nil {
				return err
			}
			session.OpeningAmount = settings.DefaultOpeningAmount
		}
		if err := repos.Cash.CreateSession(ctx, session); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return domain.NewConflict("CASH_ALREADY_OPEN", "Ya hay una caja abierta")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("session_id", session.ID).Str("user_id", userID).Str("opening_amount", session.OpeningAmount.String()).Msg("caja abierta")
	s, err := uc.repos.Cash.GetSessionByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	resp := ToSessionResponse(s)
	return &resp, nil
}

// Close cierra la sesión abierta con el arqueo contra el efectivo esperado.
func (uc *UseCase) Close(ctx context.Context, userID string, in dto.CloseCashRequest) (*dto.CashSessionDetailResponse, error) {
	if in.ClosingAmount == nil || in.ClosingAmount.IsNegative() {
		return nil, domain.NewValidation("INVALID_CLOSING_AMOUNT", "El monto de cierre es requerido y no puede ser negativo")
	}
	notes := strings.TrimSpace(in.Notes)

	var closed *entity.CashSession
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		s, err := repos.Cash.GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}
		if s == nil {
			return errNoOpenSession()
		}
		t, err := totals(ctx, repos, s)
		if err != nil {
			return err
		}
		settings, err := repos.Cash.GetSettings(ctx)
		if err != nil {
			return err
		}
		rec := cashdomain.Reconcile(t.ExpectedCash, *in.ClosingAmount, *settings)
		if rec.Level == entity.DeviationCritico && settings.RequireNotesOnCritical && notes == "" {
			return domain.NewValidation("NOTES_REQUIRED",
				"El desvío es crítico ("+rec.DeviationPct.StringFixed(2)+"%); debe indicar una observación")
		}

		at := uc.now()
		s.ClosingAmount = in.ClosingAmount
		s.ExpectedAmount = &rec.Expected
		s.Difference = &rec.Difference
		s.DeviationPct = &rec.DeviationPct
		s.DeviationLevel = rec.Level
		s.Notes = joinNotes(s.Notes, notes)
		s.ClosedAt = &at
		s.ClosedBy = &userID
		closed = s
		return repos.Cash.CloseSession(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	ev := uc.log.Info()
	if closed.DeviationLevel != entity.DeviationNormal {
		ev = uc.log.Warn()
	}
	ev.Str("session_id", closed.ID).
		Str("user_id", userID).
		Str("expected", closed.ExpectedAmount.String()).
		Str("closing", closed.ClosingAmount.String()).
		Str("difference", closed.Difference.String()).
		Str("level", closed.DeviationLevel).
		Msg("caja cerrada")
	return uc.Session(ctx, closed.ID)
}

func joinNotes(prev, next string) string {
	switch {
	case next == "":
		return prev
	case prev == "":
		return next
	}
	return prev + " - " + next
}

// History sesiones paginadas, más recientes primero.
func (uc *UseCase) History(ctx context.Context, in dto.CashHistoryRequest) (*dto.CashHistoryResponse, error) {
	page := in.ToPage()
	status := in.Status
	if status != entity.CashSessionOpen && status != entity.CashSessionClosed {
		status = ""
	}
	list, total, err := uc.repos.Cash.ListSessions(ctx, repository.CashSessionFilter{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		UserID:    in.UserID,
		Status:    status,
		Page:      page,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CashSessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, ToSessionResponse(s))
	}
	return &dto.CashHistoryResponse{Sessions: out, Pagination: dto.NewPagination(page, total)}, nil
}

// Session detalle con movimientos y ventas por medio de pago.
func (uc *UseCase) Session(ctx context.Context, id string) (*dto.CashSessionDetailResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.NewValidation("INVALID_SESSION_ID", "ID de sesión inválido")
	}
	s, err := uc.repos.Cash.GetSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFound("SESSION_NOT_FOUND", "Sesión de caja no encontrada")
	}
	t, err := totals(ctx, uc.repos, s)
	if err != nil {
		return nil, err
	}
	movs, err := uc.repos.Cash.ListMovements(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CashSessionDetailResponse{
		Session:   ToSessionResponse(s),
		Totals:    *t,
		Movements: toMovementResponses(movs),
	}, nil
}

// Report PDF de cierre de la sesión.
func (uc *UseCase) Report(ctx context.Context, id string) ([]byte, error) {
	detail, err := uc.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.reports.RenderCashReport(ctx, detail)
}

// Movements movimientos de la sesión indicada o de la abierta si sessionID está vacío.
func (uc *UseCase) Movements(ctx context.Context, sessionID string) ([]dto.CashMovementResponse, error) {
	if sessionID == "" {
		s, err := uc.repos.Cash.GetOpen(ctx)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, errNoOpenSession()
		}
		sessionID = s.ID
	} else if _, err := uuid.Parse(sessionID); err != nil {
		return nil, domain.NewValidation("INVALID_SESSION_ID", "ID de sesión inválido")
	}
	movs, err := uc.repos.Cash.ListMovements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movs), nil
}

// CreateMovement registra un ingreso o egreso en la sesión abierta. Los egresos se guardan negativos
// y no pueden superar el efectivo disponible.
func (uc *UseCase) CreateMovement(ctx context.Context, userID string, in dto.CashMovementRequest) (*dto.CashMovementResponse, error) {
	if in.Type != entity.CashMovementIngreso && in.Type != entity.CashMovementEgreso {
		return nil, domain.NewValidation("INVALID_MOVEMENT_TYPE", "Tipo inválido. Debe ser: ingreso o egreso")
	}
	if in.Amount == nil || !in.Amount.IsPositive() {
		return nil, domain.NewValidation("INVALID_AMOUNT", "El monto debe ser mayor a 0")
	}
	if !entity.FitsPlaces(*in.Amount, entity.MoneyPlaces) {
		return nil, domain.NewValidation("INVALID_AMOUNT_PRECISION", "Los montos admiten como máximo 2 decimales")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, domain.NewValidation("DESCRIPTION_REQUIRED", "La descripción es requerida")
	}

	mov := &entity.CashMovement{
		ID:          uuid.New().String(),
		Type:        in.Type,
		Amount:      *in.Amount,
		Description: description,
		UserID:      userID,
		CreatedAt:   uc.now(),
	}
	err := uc.txRunner.Run(ctx, func(repos repository.Repositories) error {
		s, err := repos.Cash.GetOpenForUpdate(ctx)
		if err != nil {
			return err
		}
		if s == nil {
			return errNoOpenSession()
		}
		mov.SessionID = s.ID
		if in.Type == entity.CashMovementEgreso {
			t, err := totals(ctx, repos, s)
			if err != nil {
				return err
			}
			if in.Amount.GreaterThan(t.ExpectedCash) {
				return domain.NewValidation("INSUFFICIENT_CASH", "El egreso supera el efectivo disponible en caja")
			}
			mov.Amount = in.Amount.Neg()
		}
		return repos.Cash.CreateMovement(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("session_id", mov.SessionID).Str("type", mov.Type).Str("amount", mov.Amount.String()).Msg("movimiento de caja")
	resp := toMovementResponse(mov)
	return &resp, nil
}

// Settings configuración vigente.
func (uc *UseCase) Settings(ctx context.Context) (*dto.CashSettingsResponse, error) {
	s, err := uc.repos.Cash.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	resp := toSettingsResponse(s)
	return &resp, nil
}

// UpdateSettings actualización parcial; el umbral de advertencia no puede superar al crítico.
func (uc *UseCase) UpdateSettings(ctx context.Context, userID string, in dto.CashSettingsRequest) (*dto.CashSettingsResponse, error) {
	s, err := uc.repos.Cash.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if in.DefaultOpeningAmount != nil {
		if in.DefaultOpeningAmount.IsNegative() {
			return nil, domain.NewValidation("INVALID_OPENING_AMOUNT", "El monto inicial no puede ser negativo")
		}
		s.DefaultOpeningAmount = *in.DefaultOpeningAmount
	}
	if in.WarningDeviationPct != nil {
		s.WarningDeviationPct = *in.WarningDeviationPct
	}
	if in.CriticalDeviationPct != nil {
		s.CriticalDeviationPct = *in.CriticalDeviationPct
	}
	if in.RequireNotesOnCritical != nil {
		s.RequireNotesOnCritical = *in.RequireNotesOnCritical
	}
	if s.WarningDeviationPct.IsNegative() || s.WarningDeviationPct.GreaterThan(s.CriticalDeviationPct) {
		return nil, domain.NewValidation("INVALID_THRESHOLDS", "El umbral de advertencia debe ser menor o igual al crítico")
	}
	s.UpdatedBy = &userID
	s.UpdatedAt = uc.now()
	if err := uc.repos.Cash.SaveSettings(ctx, s); err != nil {
		return nil, err
	}
	resp := toSettingsResponse(s)
	return &resp, nil
}

// ToSessionResponse mapea entidad -> DTO.
func ToSessionResponse(s *entity.CashSession) dto.CashSessionResponse {
	return dto.CashSessionResponse{
		ID:             s.ID,
		UserID:         s.UserID,
		UserName:       s.UserName,
		OpeningAmount:  s.OpeningAmount,
		OpenedAt:       s.OpenedAt,
		ClosingAmount:  s.ClosingAmount,
		ExpectedAmount: s.ExpectedAmount,
		Difference:     s.Difference,
		DeviationPct:   s.DeviationPct,
		DeviationLevel: s.DeviationLevel,
		Status:         s.Status,
		Notes:          s.Notes,
		ClosedAt:       s.ClosedAt,
		ClosedBy:       s.ClosedBy,
		ClosedByName:   s.ClosedByName,
	}
}

func toMovementResponse(m *entity.CashMovement) dto.CashMovementResponse {
	return dto.CashMovementResponse{
		ID:          m.ID,
		SessionID:   m.SessionID,
		Type:        m.Type,
		Amount:      m.Amount,
		Description: m.Description,
		UserID:      m.UserID,
		UserName:    m.UserName,
		CreatedAt:   m.CreatedAt,
	}
}

func toMovementResponses(list []*entity.CashMovement) []dto.CashMovementResponse {
	out := make([]dto.CashMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return out
}

func toSettingsResponse(s *entity.CashSettings) dto.CashSettingsResponse {
	return dto.CashSettingsResponse{
		DefaultOpeningAmount:   s.DefaultOpeningAmount,
		WarningDeviationPct:    s.WarningDeviationPct,
		CriticalDeviationPct:   s.CriticalDeviationPct,
		RequireNotesOnCritical: s.RequireNotesOnCritical,
		UpdatedBy:              s.UpdatedBy,
		UpdatedAt:              s.UpdatedAt,
	}
}
