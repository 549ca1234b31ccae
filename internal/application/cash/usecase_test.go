package cash_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/cash"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/logger"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fakeReports struct{ calls int }

func (f *fakeReports) RenderCashReport(_ context.Context, _ *dto.CashSessionDetailResponse) ([]byte, error) {
	f.calls++
	return []byte("%PDF"), nil
}

type env struct {
	store   *memory.Store
	repos   repository.Repositories
	uc      *cash.UseCase
	reports *fakeReports
	userID  string
}

func newEnv() *env {
	store := memory.NewStore()
	repos := store.Repositories()
	reports := &fakeReports{}
	return &env{
		store:   store,
		repos:   repos,
		reports: reports,
		uc:      cash.NewUseCase(memory.NewTxRunner(store), repos, reports, logger.Nop()),
		userID:  uuid.New().String(),
	}
}

// sale registra una venta completada vinculada a la sesión con los medios indicados.
func (e *env) sale(t *testing.T, sessionID string, status string, tenders ...entity.Tender) {
	t.Helper()
	ctx := context.Background()
	total := entity.SumTenders(tenders)
	s := &entity.Sale{
		ID:            uuid.New().String(),
		UserID:        e.userID,
		CashSessionID: &sessionID,
		Total:         total,
		PaymentMethod: entity.PaymentMultiple,
		Status:        status,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, e.repos.Sales.Create(ctx, s))
	for i := range tenders {
		tenders[i].ID = uuid.New().String()
		require.NoError(t, e.repos.Sales.CreatePayment(ctx, s.ID, &tenders[i]))
	}
}

func tender(method, amount string) entity.Tender {
	return entity.Tender{Method: method, Amount: decimal.RequireFromString(amount)}
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	return de.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Apertura
// ──────────────────────────────────────────────────────────────────────────────

func TestOpen_UnaSolaSesion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	s, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("5000")})
	require.NoError(t, err)
	assert.Equal(t, entity.CashSessionOpen, s.Status)
	assert.True(t, s.OpeningAmount.Equal(decimal.NewFromInt(5000)))

	_, err = e.uc.Open(ctx, e.userID, dto.OpenCashRequest{})
	assert.Equal(t, "CASH_ALREADY_OPEN", codeOf(t, err))

	status, err := e.uc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsOpen)
	assert.True(t, status.Totals.ExpectedCash.Equal(decimal.NewFromInt(5000)))
}

func TestOpen_MontoPorDefectoDeConfiguracion(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.uc.UpdateSettings(ctx, e.userID, dto.CashSettingsRequest{DefaultOpeningAmount: dec("2500")})
	require.NoError(t, err)

	s, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{})
	require.NoError(t, err)
	assert.True(t, s.OpeningAmount.Equal(decimal.NewFromInt(2500)))

	_, err = e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("-1")})
	assert.Equal(t, "INVALID_OPENING_AMOUNT", codeOf(t, err))
}

func TestStatus_CajaCerrada(t *testing.T) {
	e := newEnv()
	status, err := e.uc.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, status.IsOpen)
	assert.Nil(t, status.Session)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateMovement_EgresoNegativoYSaldo(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("1000")})
	require.NoError(t, err)

	_, err = e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementIngreso, Amount: dec("500"), Description: "Cambio"})
	require.NoError(t, err)
	out, err := e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementEgreso, Amount: dec("300"), Description: "Proveedor"})
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(decimal.NewFromInt(-300)))

	_, err = e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementEgreso, Amount: dec("1201"), Description: "Retiro"})
	assert.Equal(t, "INSUFFICIENT_CASH", codeOf(t, err))

	status, err := e.uc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.Totals.Ingresos.Equal(decimal.NewFromInt(500)))
	assert.True(t, status.Totals.Egresos.Equal(decimal.NewFromInt(300)))
	assert.True(t, status.Totals.ExpectedCash.Equal(decimal.NewFromInt(1200)))

	movs, err := e.uc.Movements(ctx, "")
	require.NoError(t, err)
	assert.Len(t, movs, 2)
}

func TestCreateMovement_Validaciones(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: "retiro", Amount: dec("1"), Description: "x"})
	assert.Equal(t, "INVALID_MOVEMENT_TYPE", codeOf(t, err))
	_, err = e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementIngreso, Amount: dec("0"), Description: "x"})
	assert.Equal(t, "INVALID_AMOUNT", codeOf(t, err))
	_, err = e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementIngreso, Amount: dec("1"), Description: " "})
	assert.Equal(t, "DESCRIPTION_REQUIRED", codeOf(t, err))
	_, err = e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementIngreso, Amount: dec("1"), Description: "x"})
	assert.Equal(t, "NO_OPEN_SESSION", codeOf(t, err))
	_, err = e.uc.Movements(ctx, "")
	assert.Equal(t, "NO_OPEN_SESSION", codeOf(t, err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Cierre y arqueo
// ──────────────────────────────────────────────────────────────────────────────

func TestClose_ArqueoNormal(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	s, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("1000")})
	require.NoError(t, err)
	e.sale(t, s.ID, entity.SaleStatusCompleted, tender(entity.PaymentEfectivo, "2000"), tender(entity.PaymentTarjetaDebito, "700"))
	e.sale(t, s.ID, entity.SaleStatusCancelled, tender(entity.PaymentEfectivo, "900"))
	_, err = e.uc.CreateMovement(ctx, e.userID, dto.CashMovementRequest{Type: entity.CashMovementEgreso, Amount: dec("500"), Description: "Flete"})
	require.NoError(t, err)

	// esperado = 1000 + 2000 - 500
	out, err := e.uc.Close(ctx, e.userID, dto.CloseCashRequest{ClosingAmount: dec("2490")})
	require.NoError(t, err)

	assert.Equal(t, entity.CashSessionClosed, out.Session.Status)
	assert.True(t, out.Session.ExpectedAmount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, out.Session.Difference.Equal(decimal.NewFromInt(-10)))
	assert.True(t, out.Session.DeviationPct.Equal(decimal.RequireFromString("0.4")))
	assert.Equal(t, entity.DeviationNormal, out.Session.DeviationLevel)
	require.NotNil(t, out.Session.ClosedBy)
	assert.Equal(t, e.userID, *out.Session.ClosedBy)
	assert.Len(t, out.Totals.SalesByMethod, 2)

	status, err := e.uc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsOpen)
}

func TestClose_CriticoRequiereNotas(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("1000")})
	require.NoError(t, err)

	_, err = e.uc.Close(ctx, e.userID, dto.CloseCashRequest{ClosingAmount: dec("800")})
	assert.Equal(t, "NOTES_REQUIRED", codeOf(t, err))

	status, err := e.uc.Status(ctx)
	require.NoError(t, err)
	require.True(t, status.IsOpen)

	out, err := e.uc.Close(ctx, e.userID, dto.CloseCashRequest{ClosingAmount: dec("800"), Notes: "Faltante de cambio"})
	require.NoError(t, err)
	assert.Equal(t, entity.DeviationCritico, out.Session.DeviationLevel)
	assert.Equal(t, "Faltante de cambio", out.Session.Notes)
}

func TestClose_Errores(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.uc.Close(ctx, e.userID, dto.CloseCashRequest{})
	assert.Equal(t, "INVALID_CLOSING_AMOUNT", codeOf(t, err))

	_, err = e.uc.Close(ctx, e.userID, dto.CloseCashRequest{ClosingAmount: dec("10")})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NO_OPEN_SESSION", de.Code)
	assert.Equal(t, domain.ErrNotFound, de.Kind)
}

func TestClose_FallaPersistenciaQuedaAbierta(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("100")})
	require.NoError(t, err)
	e.store.FailOn("Cash.CloseSession", errors.New("deadlock"))

	_, err = e.uc.Close(ctx, e.userID, dto.CloseCashRequest{ClosingAmount: dec("100")})
	require.Error(t, err)
	status, err := e.uc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsOpen)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial, reporte y configuración
// ──────────────────────────────────────────────────────────────────────────────

func TestHistoryYReporte(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	first, err := e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("0")})
	require.NoError(t, err)
	_, err = e.uc.Close(ctx, e.userID, dto.CloseCashRequest{ClosingAmount: dec("0")})
	require.NoError(t, err)
	_, err = e.uc.Open(ctx, e.userID, dto.OpenCashRequest{OpeningAmount: dec("0")})
	require.NoError(t, err)

	all, err := e.uc.History(ctx, dto.CashHistoryRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Pagination.Total)

	closed, err := e.uc.History(ctx, dto.CashHistoryRequest{Status: entity.CashSessionClosed})
	require.NoError(t, err)
	require.Len(t, closed.Sessions, 1)
	assert.Equal(t, first.ID, closed.Sessions[0].ID)

	pdf, err := e.uc.Report(ctx, first.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, 1, e.reports.calls)

	_, err = e.uc.Session(ctx, uuid.New().String())
	assert.Equal(t, "SESSION_NOT_FOUND", codeOf(t, err))
}

func TestUpdateSettings_UmbralesOrdenados(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	_, err := e.uc.UpdateSettings(ctx, e.userID, dto.CashSettingsRequest{WarningDeviationPct: dec("10")})
	assert.Equal(t, "INVALID_THRESHOLDS", codeOf(t, err))

	off := false
	out, err := e.uc.UpdateSettings(ctx, e.userID, dto.CashSettingsRequest{
		WarningDeviationPct:    dec("2"),
		CriticalDeviationPct:   dec("8"),
		RequireNotesOnCritical: &off,
	})
	require.NoError(t, err)
	assert.True(t, out.WarningDeviationPct.Equal(decimal.NewFromInt(2)))
	assert.False(t, out.RequireNotesOnCritical)
	require.NotNil(t, out.UpdatedBy)

	got, err := e.uc.Settings(ctx)
	require.NoError(t, err)
	assert.True(t, got.CriticalDeviationPct.Equal(decimal.NewFromInt(8)))
}
