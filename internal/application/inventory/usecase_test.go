package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type fixture struct {
	store *memory.Store
	repos repository.Repositories
	uc    *inventory.UseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	return &fixture{store: store, repos: repos, uc: inventory.NewUseCase(memory.NewTxRunner(store), repos)}
}

func (f *fixture) product(t *testing.T, stock string, unitType string, active bool) *entity.Product {
	t.Helper()
	p := &entity.Product{
		ID:        uuid.New().String(),
		Name:      "Yerba 1kg",
		Price:     decimal.NewFromInt(100),
		Cost:      decimal.NewFromInt(60),
		Stock:     decimal.RequireFromString(stock),
		MinStock:  decimal.NewFromInt(5),
		UnitType:  unitType,
		Active:    active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, f.repos.Products.Create(context.Background(), p))
	return p
}

func (f *fixture) stockOf(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func (f *fixture) movementCount(t *testing.T, productID string) int {
	t.Helper()
	_, total, err := f.repos.Movements.List(context.Background(), repository.MovementFilter{ProductID: productID})
	require.NoError(t, err)
	return total
}

func register(f *fixture, productID, typ, qty string) (*dto.MovementResponse, error) {
	return f.uc.RegisterMovement(context.Background(), "", dto.RegisterMovementRequest{
		ProductID: productID,
		Type:      typ,
		Quantity:  dec(qty),
		Reason:    "Prueba",
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_EntradaSalidaYRechazo(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true)

	mov, err := register(f, p.ID, entity.MovementTypeEntrada, "5")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(mov.Quantity))
	assert.True(t, decimal.NewFromInt(10).Equal(mov.PreviousStock))
	assert.True(t, decimal.NewFromInt(15).Equal(mov.NewStock))
	assert.True(t, decimal.NewFromInt(15).Equal(f.stockOf(t, p.ID)))

	_, err = register(f, p.ID, entity.MovementTypeSalida, "20")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "INSUFFICIENT_STOCK", domain.CodeOf(err))

	assert.True(t, decimal.NewFromInt(15).Equal(f.stockOf(t, p.ID)), "el rechazo no debe modificar el stock")
	assert.Equal(t, 1, f.movementCount(t, p.ID), "el rechazo no debe registrar movimiento")
}

func TestRegisterMovement_SalidaGuardaDeltaNegativo(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true)

	mov, err := register(f, p.ID, entity.MovementTypeSalida, "4")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(-4).Equal(mov.Quantity))
	assert.True(t, mov.NewStock.Equal(mov.PreviousStock.Add(mov.Quantity)))
	assert.True(t, decimal.NewFromInt(6).Equal(f.stockOf(t, p.ID)))
}

func TestRegisterMovement_AjusteFijaStockAbsoluto(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true)

	mov, err := register(f, p.ID, entity.MovementTypeAjuste, "3")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3).Equal(f.stockOf(t, p.ID)))
	assert.True(t, decimal.NewFromInt(-7).Equal(mov.Quantity), "el delta del ajuste es objetivo - anterior")
}

func TestRegisterMovement_UnidadesExigeEntero(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true)

	_, err := register(f, p.ID, entity.MovementTypeEntrada, "1.5")
	require.Error(t, err)
	assert.Equal(t, "INVALID_UNIT_QUANTITY", domain.CodeOf(err))

	kg := f.product(t, "2.5", entity.UnitTypeKg, true)
	_, err = register(f, kg.ID, entity.MovementTypeSalida, "0.75")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.75").Equal(f.stockOf(t, kg.ID)))
}

func TestRegisterMovement_KgConMasDeTresDecimales(t *testing.T) {
	f := newFixture(t)
	kg := f.product(t, "2", entity.UnitTypeKg, true)

	_, err := register(f, kg.ID, entity.MovementTypeEntrada, "0.0004")
	require.Error(t, err)
	assert.Equal(t, "INVALID_QUANTITY_PRECISION", domain.CodeOf(err))
	assert.Equal(t, 0, f.movementCount(t, kg.ID))
	assert.True(t, decimal.NewFromInt(2).Equal(f.stockOf(t, kg.ID)))
}

func TestRegisterMovement_ProductoInactivoNoEncontrado(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, false)

	_, err := register(f, p.ID, entity.MovementTypeEntrada, "1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, "PRODUCT_NOT_FOUND", domain.CodeOf(err))
}

func TestRegisterMovement_ValidacionesDeEntrada(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true)

	cases := []struct {
		name string
		req  dto.RegisterMovementRequest
		code string
	}{
		{"id inválido", dto.RegisterMovementRequest{ProductID: "abc", Type: "entrada", Quantity: dec("1"), Reason: "x"}, "INVALID_PRODUCT_ID"},
		{"tipo inválido", dto.RegisterMovementRequest{ProductID: p.ID, Type: "robo", Quantity: dec("1"), Reason: "x"}, "INVALID_MOVEMENT_TYPE"},
		{"sin cantidad", dto.RegisterMovementRequest{ProductID: p.ID, Type: "entrada", Reason: "x"}, "INVALID_QUANTITY"},
		{"sin motivo", dto.RegisterMovementRequest{ProductID: p.ID, Type: "entrada", Quantity: dec("1"), Reason: "  "}, "REASON_REQUIRED"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.RegisterMovement(context.Background(), "", tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}

// Si falla la inserción del movimiento, el stock ya actualizado se revierte.
func TestRegisterMovement_RollbackSiFallaElMovimiento(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true)
	f.store.FailOn("Movements.Create", errors.New("conexión perdida"))

	_, err := register(f, p.ID, entity.MovementTypeEntrada, "5")
	require.Error(t, err)

	assert.True(t, decimal.NewFromInt(10).Equal(f.stockOf(t, p.ID)))
	assert.Equal(t, 0, f.movementCount(t, p.ID))
	assert.Equal(t, 0, f.store.Commits())
}

func TestRegisterMovement_EntradaConCostoRecalculaPromedio(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "10", entity.UnitTypeUnits, true) // costo 60

	_, err := f.uc.RegisterMovement(context.Background(), "", dto.RegisterMovementRequest{
		ProductID: p.ID,
		Type:      entity.MovementTypeEntrada,
		Quantity:  dec("10"),
		UnitCost:  dec("80"),
		Reason:    "Compra",
	})
	require.NoError(t, err)

	got, err := f.repos.Products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(got.Cost), "costo esperado 70, obtenido %s", got.Cost)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestAlertsYStats(t *testing.T) {
	f := newFixture(t)
	f.product(t, "0", entity.UnitTypeUnits, true)  // crítico
	f.product(t, "5", entity.UnitTypeUnits, true)  // en el mínimo
	f.product(t, "50", entity.UnitTypeUnits, true) // normal
	f.product(t, "0", entity.UnitTypeUnits, false) // inactivo, no alerta

	alerts, err := f.uc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.True(t, alerts[0].Stock.IsZero(), "los agotados van primero")
	for _, a := range alerts {
		assert.Equal(t, "critical", a.AlertLevel)
	}

	stats, err := f.uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.General.TotalProducts)
	assert.Equal(t, 3, stats.General.ActiveProducts)
	assert.Equal(t, 1, stats.General.OutOfStock)
	assert.Len(t, stats.Alerts, 2)
}

func TestListMovements_Pagina(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "0", entity.UnitTypeUnits, true)
	for i := 0; i < 3; i++ {
		_, err := register(f, p.ID, entity.MovementTypeEntrada, "1")
		require.NoError(t, err)
	}

	out, err := f.uc.ListMovements(context.Background(), dto.MovementListRequest{
		PageRequest: dto.PageRequest{Page: 2, Limit: 2},
		ProductID:   p.ID,
	})
	require.NoError(t, err)
	assert.Len(t, out.Movements, 1)
	assert.Equal(t, 3, out.Pagination.Total)
	assert.Equal(t, 2, out.Pagination.Pages)
}
