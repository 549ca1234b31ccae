package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/inventory"
	"github.com/jhoicas/pos-api/internal/application/usecase"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type env struct {
	store      *memory.Store
	repos      repository.Repositories
	products   *usecase.ProductUseCase
	categories *usecase.CategoryUseCase
	customers  *usecase.CustomerUseCase
}

func newEnv() *env {
	store := memory.NewStore()
	repos := store.Repositories()
	tx := memory.NewTxRunner(store)
	return &env{
		store:      store,
		repos:      repos,
		products:   usecase.NewProductUseCase(tx, repos, inventory.NewUseCase(tx, repos)),
		categories: usecase.NewCategoryUseCase(repos),
		customers:  usecase.NewCustomerUseCase(tx, repos),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

func TestProductCreate_StockInicialGeneraEntrada(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	out, err := e.products.Create(ctx, "", dto.CreateProductRequest{
		Name:  "  Azúcar 1kg ",
		Price: dec("950"),
		Stock: dec("12"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Azúcar 1kg", out.Product.Name)
	assert.Equal(t, "unidades", out.Product.UnitType)
	assert.True(t, decimal.NewFromInt(10).Equal(out.Product.MinStock), "min_stock por defecto para unidades")
	assert.True(t, decimal.NewFromInt(12).Equal(out.Product.Stock))
	require.NotNil(t, out.InitialMovement)
	assert.Equal(t, "Stock inicial", out.InitialMovement.Reason)
	assert.True(t, out.InitialMovement.PreviousStock.IsZero())
}

func TestProductCreate_SinStockNoGeneraMovimiento(t *testing.T) {
	e := newEnv()
	out, err := e.products.Create(context.Background(), "", dto.CreateProductRequest{
		Name: "Queso", Price: dec("10"), UnitType: "kg",
	})
	require.NoError(t, err)
	assert.Nil(t, out.InitialMovement)
	assert.True(t, decimal.NewFromInt(1).Equal(out.Product.MinStock), "min_stock por defecto para kg")
}

func TestProductCreate_Validaciones(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	_, err := e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Leche", Price: dec("1"), Barcode: "779"})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  dto.CreateProductRequest
		code string
	}{
		{"sin nombre", dto.CreateProductRequest{Name: " ", Price: dec("1")}, "NAME_REQUIRED"},
		{"precio cero", dto.CreateProductRequest{Name: "x", Price: dec("0")}, "INVALID_PRICE"},
		{"sin precio", dto.CreateProductRequest{Name: "x"}, "INVALID_PRICE"},
		{"stock negativo", dto.CreateProductRequest{Name: "x", Price: dec("1"), Stock: dec("-1")}, "INVALID_STOCK"},
		{"stock fraccionario", dto.CreateProductRequest{Name: "x", Price: dec("1"), Stock: dec("1.5")}, "INVALID_UNIT_STOCK"},
		{"mínimo negativo", dto.CreateProductRequest{Name: "x", Price: dec("1"), MinStock: dec("-2")}, "INVALID_MIN_STOCK"},
		{"mínimo fraccionario", dto.CreateProductRequest{Name: "x", Price: dec("1"), MinStock: dec("0.5")}, "INVALID_UNIT_MIN_STOCK"},
		{"costo negativo", dto.CreateProductRequest{Name: "x", Price: dec("1"), Cost: dec("-1")}, "INVALID_COST"},
		{"barcode repetido", dto.CreateProductRequest{Name: "x", Price: dec("1"), Barcode: "779"}, "BARCODE_EXISTS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.products.Create(ctx, "", tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}

func TestProductCreate_CategoriaInactiva(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	cat, err := e.categories.Create(ctx, dto.CategoryRequest{Name: "Lácteos"})
	require.NoError(t, err)
	require.NoError(t, e.categories.Delete(ctx, cat.ID))

	_, err = e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Yogur", Price: dec("1"), CategoryID: &cat.ID})
	require.Error(t, err)
	assert.Equal(t, "CATEGORY_NOT_FOUND", domain.CodeOf(err))
}

func TestProductList_FiltroActivoYNivel(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, err := e.products.Create(ctx, "", dto.CreateProductRequest{Name: "A", Price: dec("1"), Stock: dec("0"), MinStock: dec("5")})
	require.NoError(t, err)
	_, err = e.products.Create(ctx, "", dto.CreateProductRequest{Name: "B", Price: dec("1"), Stock: dec("3"), MinStock: dec("5")})
	require.NoError(t, err)
	_, err = e.products.Create(ctx, "", dto.CreateProductRequest{Name: "C", Price: dec("1"), Stock: dec("50"), MinStock: dec("5")})
	require.NoError(t, err)
	_, err = e.products.Delete(ctx, a.Product.ID)
	require.NoError(t, err)

	out, err := e.products.List(ctx, dto.ProductListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pagination.Total, "por defecto sólo activos")

	out, err = e.products.List(ctx, dto.ProductListRequest{Active: "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Pagination.Total)

	out, err = e.products.List(ctx, dto.ProductListRequest{StockLevel: "low"})
	require.NoError(t, err)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "B", out.Products[0].Name)

	out, err = e.products.List(ctx, dto.ProductListRequest{MinStock: "abc"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Pagination.Total, "un filtro mal formado se ignora")
}

func TestProductDelete_MensajeYNoEncontrado(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Pan", Price: dec("2")})
	require.NoError(t, err)

	msg, err := e.products.Delete(ctx, p.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Producto eliminado correctamente", msg)

	_, err = e.products.GetByID(ctx, "00000000-0000-0000-0000-000000000099")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	_, err = e.products.GetByID(ctx, "12")
	assert.Equal(t, "INVALID_PRODUCT_ID", domain.CodeOf(err))
}

func TestProductUpdate_NoTocaStock(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Arroz", Price: dec("2"), Stock: dec("7")})
	require.NoError(t, err)

	got, err := e.products.Update(ctx, p.Product.ID, dto.UpdateProductRequest{Name: "Arroz largo", Price: dec("3")})
	require.NoError(t, err)
	assert.Equal(t, "Arroz largo", got.Name)
	assert.True(t, decimal.NewFromInt(7).Equal(got.Stock))
	assert.True(t, decimal.NewFromInt(3).Equal(got.Price))
}

func TestProductUpdate_KgAUnidadesConStockFraccionario(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	p, err := e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Queso", Price: dec("10"), UnitType: "kg", Stock: dec("2.5")})
	require.NoError(t, err)

	_, err = e.products.Update(ctx, p.Product.ID, dto.UpdateProductRequest{Name: "Queso", Price: dec("10"), UnitType: "unidades"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_UNIT_STOCK", domain.CodeOf(err))

	got, err := e.products.GetByID(ctx, p.Product.ID)
	require.NoError(t, err)
	assert.Equal(t, "kg", got.UnitType)

	q, err := e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Jamón", Price: dec("10"), UnitType: "kg", Stock: dec("3")})
	require.NoError(t, err)
	got, err = e.products.Update(ctx, q.Product.ID, dto.UpdateProductRequest{Name: "Jamón", Price: dec("10"), UnitType: "unidades"})
	require.NoError(t, err)
	assert.Equal(t, "unidades", got.UnitType)
}

// ──────────────────────────────────────────────────────────────────────────────
// Categorías
// ──────────────────────────────────────────────────────────────────────────────

func TestCategory_NombreUnicoYBajaConProductos(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	cat, err := e.categories.Create(ctx, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", cat.Color)

	_, err = e.categories.Create(ctx, dto.CategoryRequest{Name: "bebidas"})
	assert.Equal(t, "CATEGORY_EXISTS", domain.CodeOf(err))

	_, err = e.products.Create(ctx, "", dto.CreateProductRequest{Name: "Agua", Price: dec("1"), CategoryID: &cat.ID})
	require.NoError(t, err)

	err = e.categories.Delete(ctx, cat.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, "CATEGORY_HAS_PRODUCTS", domain.CodeOf(err))

	stats, err := e.categories.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats.TopCategories, 1)
	assert.Equal(t, 1, stats.TopCategories[0].ProductCount)
}

func TestCategory_Restaurar(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	cat, err := e.categories.Create(ctx, dto.CategoryRequest{Name: "Limpieza"})
	require.NoError(t, err)
	require.NoError(t, e.categories.Delete(ctx, cat.ID))

	got, err := e.categories.Restore(ctx, cat.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

// ──────────────────────────────────────────────────────────────────────────────
// Clientes y cuenta corriente
// ──────────────────────────────────────────────────────────────────────────────

func TestCustomer_CargoPagoYBaja(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.customers.Create(ctx, dto.CustomerRequest{Name: "Ana", Email: "ana@mail.com", CreditLimit: dec("1000")})
	require.NoError(t, err)

	_, err = e.customers.Create(ctx, dto.CustomerRequest{Name: "Otra", Email: "ANA@mail.com"})
	assert.Equal(t, "EMAIL_EXISTS", domain.CodeOf(err))

	tx, err := e.customers.CreateTransaction(ctx, "", dto.AccountTransactionRequest{
		CustomerID: c.ID, Type: "cargo", Amount: dec("400"), Description: "Fiado",
	})
	require.NoError(t, err)
	assert.True(t, tx.PreviousBalance.IsZero())
	assert.True(t, decimal.NewFromInt(400).Equal(tx.NewBalance))

	_, err = e.customers.CreateTransaction(ctx, "", dto.AccountTransactionRequest{
		CustomerID: c.ID, Type: "cargo", Amount: dec("700"), Description: "Fiado",
	})
	assert.Equal(t, "CREDIT_LIMIT_EXCEEDED", domain.CodeOf(err))

	_, err = e.customers.CreateTransaction(ctx, "", dto.AccountTransactionRequest{
		CustomerID: c.ID, Type: "pago", Amount: dec("500"), Description: "Pago",
	})
	assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", domain.CodeOf(err))

	err = e.customers.Delete(ctx, c.ID)
	assert.Equal(t, "CUSTOMER_HAS_DEBT", domain.CodeOf(err))

	_, err = e.customers.CreateTransaction(ctx, "", dto.AccountTransactionRequest{
		CustomerID: c.ID, Type: "pago", Amount: dec("400"), Description: "Pago total",
	})
	require.NoError(t, err)

	bal, err := e.customers.Balance(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, bal.Balance.IsZero())
	require.NotNil(t, bal.AvailableCredit)
	assert.True(t, decimal.NewFromInt(1000).Equal(*bal.AvailableCredit))

	list, err := e.customers.Transactions(ctx, c.ID, dto.AccountTransactionListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Pagination.Total)

	require.NoError(t, e.customers.Delete(ctx, c.ID))
}

// Si falla el registro de la transacción, el saldo no cambia.
func TestCustomerTransaction_Rollback(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	c, err := e.customers.Create(ctx, dto.CustomerRequest{Name: "Luis"})
	require.NoError(t, err)
	e.store.FailOn("Accounts.Create", errors.New("falla de disco"))

	_, err = e.customers.CreateTransaction(ctx, "", dto.AccountTransactionRequest{
		CustomerID: c.ID, Type: "cargo", Amount: dec("50"), Description: "Fiado",
	})
	require.Error(t, err)

	got, err := e.customers.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Nil(t, got.AvailableCredit, "sin límite de crédito")
}
