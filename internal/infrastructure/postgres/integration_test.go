//go:build integration

package postgres_test

// Tests contra un PostgreSQL real levantado con testcontainers.
// Ejecutar con: go test -tags integration ./internal/infrastructure/postgres/... -v

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/sales"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/pos-api/pkg/config"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ── Setup ────────────────────────────────────────────────────────────────────

type dbEnv struct {
	repos  repository.Repositories
	tx     repository.TxRunner
	ledger *inventory.UseCase
	user   *entity.User
}

func setupDB(t *testing.T) *dbEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("pos_test"),
		tcPostgres.WithUsername("pos"),
		tcPostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dbURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.MigrateUp(dbURL))

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dbURL, MaxConns: 5})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repos := postgres.NewRepositories(pool)
	tx := postgres.NewTxRunner(pool)

	user, err := auth.NewUser("Cajero", "cajero@pos.test", "", "secreto123", entity.RoleEmpleado, time.Now())
	require.NoError(t, err)
	require.NoError(t, repos.Users.Create(ctx, user))

	return &dbEnv{repos: repos, tx: tx, ledger: inventory.NewUseCase(tx, repos), user: user}
}

func (e *dbEnv) product(t *testing.T, stock string) *entity.Product {
	t.Helper()
	now := time.Now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		Name:      "Producto " + uuid.NewString()[:8],
		Price:     decimal.NewFromInt(100),
		Stock:     decimal.RequireFromString(stock),
		MinStock:  decimal.NewFromInt(10),
		UnitType:  entity.UnitTypeUnits,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, e.repos.Products.Create(context.Background(), p))
	return p
}

func (e *dbEnv) stockOf(t *testing.T, id string) string {
	t.Helper()
	p, err := e.repos.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock.String()
}

func qty(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func TestIntegration_LedgerEntradaSalidaAjuste(t *testing.T) {
	e := setupDB(t)
	ctx := context.Background()
	p := e.product(t, "10")

	mov, err := e.ledger.RegisterMovement(ctx, e.user.ID, dto.RegisterMovementRequest{
		ProductID: p.ID, Type: entity.MovementTypeEntrada, Quantity: qty("5"), Reason: "Compra",
	})
	require.NoError(t, err)
	assert.Equal(t, "10", mov.PreviousStock.String())
	assert.Equal(t, "15", mov.NewStock.String())
	assert.Equal(t, "15", e.stockOf(t, p.ID))

	// Salida mayor al stock: se rechaza y el stock queda igual.
	_, err = e.ledger.RegisterMovement(ctx, e.user.ID, dto.RegisterMovementRequest{
		ProductID: p.ID, Type: entity.MovementTypeSalida, Quantity: qty("20"), Reason: "Merma",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "15", e.stockOf(t, p.ID))

	// Ajuste fija el stock al valor indicado.
	_, err = e.ledger.RegisterMovement(ctx, e.user.ID, dto.RegisterMovementRequest{
		ProductID: p.ID, Type: entity.MovementTypeAjuste, Quantity: qty("7"), Reason: "Conteo físico",
	})
	require.NoError(t, err)
	assert.Equal(t, "7", e.stockOf(t, p.ID))

	list, err := e.ledger.ListMovements(ctx, dto.MovementListRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Pagination.Total, "el rechazo no deja movimiento")
	assert.Equal(t, entity.MovementTypeAjuste, list.Movements[0].Type, "orden created_at DESC")
}

// ── Venta completa ───────────────────────────────────────────────────────────

func TestIntegration_VentaRollbackPorStock(t *testing.T) {
	e := setupDB(t)
	ctx := context.Background()
	a := e.product(t, "10")
	b := e.product(t, "1")
	uc := sales.NewUseCase(e.tx, e.repos, e.ledger, nil, logger.Nop())

	// La segunda línea no tiene stock: la primera también se revierte.
	_, err := uc.Create(ctx, e.user.ID, dto.CreateSaleRequest{
		Items: []dto.LineItemRequest{
			{ProductID: a.ID, Quantity: qty("3"), UnitPrice: qty("100")},
			{ProductID: b.ID, Quantity: qty("2"), UnitPrice: qty("100")},
		},
		Total:         qty("500"),
		PaymentMethod: entity.PaymentEfectivo,
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "10", e.stockOf(t, a.ID))
	assert.Equal(t, "1", e.stockOf(t, b.ID))

	sale, err := uc.Create(ctx, e.user.ID, dto.CreateSaleRequest{
		Items:          []dto.LineItemRequest{{ProductID: a.ID, Quantity: qty("3"), UnitPrice: qty("100")}},
		Total:          qty("300"),
		PaymentMethod:  entity.PaymentMultiple,
		PaymentMethods: []dto.TenderRequest{{Method: entity.PaymentEfectivo, Amount: qty("100")}, {Method: entity.PaymentTransferencia, Amount: qty("200")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "7", e.stockOf(t, a.ID))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "300", sale.Items[0].Subtotal.String())
	assert.Len(t, sale.PaymentMethodsFormatted, 2)
}

// ── Caja ─────────────────────────────────────────────────────────────────────

func TestIntegration_CierreEsperaVentasSobreLaSesion(t *testing.T) {
	e := setupDB(t)
	ctx := context.Background()
	session := &entity.CashSession{
		ID:            uuid.New().String(),
		UserID:        e.user.ID,
		OpeningAmount: decimal.Zero,
		OpenedAt:      time.Now(),
		Status:        entity.CashSessionOpen,
	}
	require.NoError(t, e.repos.Cash.CreateSession(ctx, session))

	locked := make(chan struct{})
	release := make(chan struct{})
	saleDone := make(chan error, 1)
	go func() {
		saleDone <- e.tx.Run(ctx, func(repos repository.Repositories) error {
			s, err := repos.Cash.GetOpenForShare(ctx)
			if err != nil {
				return err
			}
			if s == nil {
				return errors.New("sin sesión abierta")
			}
			close(locked)
			<-release
			return nil
		})
	}()
	select {
	case <-locked:
	case err := <-saleDone:
		t.Fatalf("la venta terminó antes de bloquear la sesión: %v", err)
	}

	closeDone := make(chan error, 1)
	go func() {
		closeDone <- e.tx.Run(ctx, func(repos repository.Repositories) error {
			_, err := repos.Cash.GetOpenForUpdate(ctx)
			return err
		})
	}()

	select {
	case <-closeDone:
		t.Fatal("el cierre tomó la sesión mientras una venta la tenía bloqueada")
	case <-time.After(300 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-saleDone)
	require.NoError(t, <-closeDone)
}
