package delivery_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/delivery"
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

func f64(v float64) *float64 { return &v }

type env struct {
	store    *memory.Store
	repos    repository.Repositories
	uc       *delivery.UseCase
	customer *entity.Customer
	driver   *entity.User
	product  *entity.Product
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	e := &env{
		store: store,
		repos: repos,
		uc:    delivery.NewUseCase(memory.NewTxRunner(store), repos, logger.Nop()),
	}
	ctx := context.Background()
	now := time.Now()
	e.customer = &entity.Customer{ID: uuid.New().String(), Name: "Kiosco Central", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repos.Customers.Create(ctx, e.customer))
	e.driver = &entity.User{
		ID: uuid.New().String(), Name: "Repartidor", Email: "reparto@pos.local",
		Role: entity.RoleEmpleado, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Users.Create(ctx, e.driver))
	e.product = &entity.Product{
		ID: uuid.New().String(), Name: "Gaseosa 2L", Price: decimal.NewFromInt(1500),
		Stock: decimal.NewFromInt(20), UnitType: entity.UnitTypeUnits, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, repos.Products.Create(ctx, e.product))
	return e
}

func (e *env) create(t *testing.T) *dto.DeliveryResponse {
	t.Helper()
	out, err := e.uc.Create(context.Background(), dto.CreateDeliveryRequest{
		Items: []dto.LineItemRequest{
			{ProductID: e.product.ID, Quantity: dec("2"), UnitPrice: dec("1500")},
			{ProductID: e.product.ID, Quantity: dec("1"), UnitPrice: dec("1400")},
		},
		CustomerID: e.customer.ID,
		DriverID:   e.driver.ID,
		Total:      dec("4400"),
		Notes:      "Tocar timbre",
	})
	require.NoError(t, err)
	return out
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	return de.Code
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PendienteSinTocarStock(t *testing.T) {
	e := newEnv(t)
	out := e.create(t)

	assert.Equal(t, entity.DeliveryStatusPending, out.Status)
	assert.Equal(t, entity.PaymentEfectivo, out.PaymentMethod)
	assert.Equal(t, "Kiosco Central", out.CustomerName)
	assert.Equal(t, "Repartidor", out.DriverName)
	require.Len(t, out.Items, 2)
	assert.True(t, out.TotalItems.Equal(decimal.NewFromInt(3)))
	assert.True(t, out.Total.Equal(decimal.NewFromInt(4400)))

	p, err := e.repos.Products.GetByID(context.Background(), e.product.ID)
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(20)))
}

func TestCreate_Validaciones(t *testing.T) {
	e := newEnv(t)
	items := []dto.LineItemRequest{{ProductID: e.product.ID, Quantity: dec("1"), UnitPrice: dec("10")}}
	inactive := &entity.Customer{ID: uuid.New().String(), Name: "Baja", Active: false}
	require.NoError(t, e.repos.Customers.Create(context.Background(), inactive))

	cases := []struct {
		name string
		in   dto.CreateDeliveryRequest
		code string
	}{
		{"sin items", dto.CreateDeliveryRequest{CustomerID: e.customer.ID, DriverID: e.driver.ID, Total: dec("10")}, "NO_ITEMS"},
		{"sin cliente", dto.CreateDeliveryRequest{Items: items, DriverID: e.driver.ID, Total: dec("10")}, "CUSTOMER_REQUIRED"},
		{"sin repartidor", dto.CreateDeliveryRequest{Items: items, CustomerID: e.customer.ID, Total: dec("10")}, "DRIVER_REQUIRED"},
		{"total cero", dto.CreateDeliveryRequest{Items: items, CustomerID: e.customer.ID, DriverID: e.driver.ID, Total: dec("0")}, "INVALID_TOTAL"},
		{"cantidad cero", dto.CreateDeliveryRequest{
			Items:      []dto.LineItemRequest{{ProductID: e.product.ID, Quantity: dec("0"), UnitPrice: dec("10")}},
			CustomerID: e.customer.ID, DriverID: e.driver.ID, Total: dec("10"),
		}, "INVALID_QUANTITY"},
		{"cliente inactivo", dto.CreateDeliveryRequest{Items: items, CustomerID: inactive.ID, DriverID: e.driver.ID, Total: dec("10")}, "CUSTOMER_NOT_FOUND"},
		{"repartidor inexistente", dto.CreateDeliveryRequest{Items: items, CustomerID: e.customer.ID, DriverID: uuid.New().String(), Total: dec("10")}, "DRIVER_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.uc.Create(context.Background(), tc.in)
			assert.Equal(t, tc.code, codeOf(t, err))
		})
	}

	list, err := e.uc.List(context.Background(), dto.DeliveryListRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Pagination.Total)
}

func TestCreate_FallaEnLineaRevierteCabecera(t *testing.T) {
	e := newEnv(t)
	e.store.FailOn("Deliveries.CreateItem", errors.New("disco lleno"))

	_, err := e.uc.Create(context.Background(), dto.CreateDeliveryRequest{
		Items:      []dto.LineItemRequest{{ProductID: e.product.ID, Quantity: dec("1"), UnitPrice: dec("10")}},
		CustomerID: e.customer.ID,
		DriverID:   e.driver.ID,
		Total:      dec("10"),
	})
	require.Error(t, err)
	list, err := e.uc.List(context.Background(), dto.DeliveryListRequest{})
	require.NoError(t, err)
	assert.Zero(t, list.Pagination.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones de estado
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateStatus_ConUbicacionEHistorial(t *testing.T) {
	e := newEnv(t)
	d := e.create(t)

	out, err := e.uc.UpdateStatus(context.Background(), e.driver.ID, d.ID, dto.UpdateDeliveryStatusRequest{
		Status:    entity.DeliveryStatusInProgress,
		Notes:     "Salió del local",
		Latitude:  f64(-34.6037),
		Longitude: f64(-58.3816),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.DeliveryStatusInProgress, out.Status)
	assert.Equal(t, "Tocar timbre - Salió del local", out.Notes)
	require.Len(t, out.Locations, 1)
	assert.InDelta(t, -34.6037, out.Locations[0].Latitude, 1e-9)
	require.Len(t, out.History, 1)
	assert.Equal(t, entity.DeliveryStatusPending, out.History[0].PreviousStatus)
	assert.Equal(t, entity.DeliveryStatusInProgress, out.History[0].NewStatus)
	assert.Equal(t, "Repartidor", out.History[0].UserName)
}

func TestUpdateStatus_UbicacionInvalidaSoloHistorial(t *testing.T) {
	cases := []struct {
		name     string
		lat, lon *float64
	}{
		{"sin longitud", f64(-34.6), nil},
		{"latitud fuera de rango", f64(91), f64(-58.3)},
		{"longitud fuera de rango", f64(-34.6), f64(181)},
		{"NaN", f64(math.NaN()), f64(-58.3)},
		{"infinito", f64(-34.6), f64(math.Inf(1))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			d := e.create(t)
			out, err := e.uc.UpdateStatus(context.Background(), "", d.ID, dto.UpdateDeliveryStatusRequest{
				Status:    entity.DeliveryStatusInProgress,
				Latitude:  tc.lat,
				Longitude: tc.lon,
			})
			require.NoError(t, err)
			assert.Empty(t, out.Locations)
			assert.Len(t, out.History, 1)
			assert.Equal(t, "Tocar timbre", out.Notes)
		})
	}
}

func TestUpdateStatus_Transiciones(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.create(t)

	_, err := e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusCompleted})
	assert.Equal(t, "INVALID_STATUS_TRANSITION", codeOf(t, err))

	_, err = e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusPending})
	assert.Equal(t, "INVALID_STATUS_TRANSITION", codeOf(t, err))

	_, err = e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: "delivered"})
	assert.Equal(t, "INVALID_STATUS", codeOf(t, err))

	_, err = e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusInProgress})
	require.NoError(t, err)
	out, err := e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, out.History, 2)

	_, err = e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusCancelled})
	assert.Equal(t, "INVALID_STATUS_TRANSITION", codeOf(t, err))

	_, err = e.uc.UpdateStatus(ctx, "", uuid.New().String(), dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusCancelled})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrNotFound, de.Kind)
}

func TestUpdateStatus_FallaEnHistorialRevierteEstado(t *testing.T) {
	e := newEnv(t)
	d := e.create(t)
	e.store.FailOn("Deliveries.CreateHistory", errors.New("timeout"))

	_, err := e.uc.UpdateStatus(context.Background(), "", d.ID, dto.UpdateDeliveryStatusRequest{
		Status:    entity.DeliveryStatusCancelled,
		Notes:     "Cliente ausente",
		Latitude:  f64(-34.6),
		Longitude: f64(-58.4),
	})
	require.Error(t, err)

	got, err := e.repos.Deliveries.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusPending, got.Status)
	assert.Equal(t, "Tocar timbre", got.Notes)
	locs, err := e.repos.Deliveries.ListLocations(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Empty(t, locs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestByDriver_PendientesPorDefecto(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first := e.create(t)
	second := e.create(t)
	_, err := e.uc.UpdateStatus(ctx, "", second.ID, dto.UpdateDeliveryStatusRequest{Status: entity.DeliveryStatusInProgress})
	require.NoError(t, err)

	pending, err := e.uc.ByDriver(ctx, e.driver.ID, "")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	all, err := e.uc.ByDriver(ctx, e.driver.ID, "cualquiera")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "in_progress primero")
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.create(t)
	e.create(t)
	for _, s := range []string{entity.DeliveryStatusInProgress, entity.DeliveryStatusCompleted} {
		_, err := e.uc.UpdateStatus(ctx, "", d.ID, dto.UpdateDeliveryStatusRequest{Status: s})
		require.NoError(t, err)
	}

	stats, err := e.uc.Stats(ctx, "month")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDeliveries)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Completed)
	assert.True(t, stats.TotalRevenue.Equal(decimal.NewFromInt(4400)))
	assert.True(t, stats.TotalItemsDelivered.Equal(decimal.NewFromInt(3)))
}
