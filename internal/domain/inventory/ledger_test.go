package inventory_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApply_EntradaSumaCantidad(t *testing.T) {
	delta, newStock, err := inventory.Apply(d("10"), entity.MovementTypeEntrada, d("5"), entity.UnitTypeUnits)
	require.NoError(t, err)
	assert.True(t, delta.Equal(d("5")))
	assert.True(t, newStock.Equal(d("15")))
}

func TestApply_SalidaMayorAlStockRechazada(t *testing.T) {
	_, _, err := inventory.Apply(d("15"), entity.MovementTypeSalida, d("20"), entity.UnitTypeUnits)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "INSUFFICIENT_STOCK", domain.CodeOf(err))
}

func TestApply_SalidaDejaStockEnCero(t *testing.T) {
	delta, newStock, err := inventory.Apply(d("3"), entity.MovementTypeSalida, d("3"), entity.UnitTypeUnits)
	require.NoError(t, err)
	assert.True(t, delta.Equal(d("-3")))
	assert.True(t, newStock.IsZero())
}

func TestApply_AjusteEsStockObjetivo(t *testing.T) {
	for _, prev := range []string{"0", "7", "250.5"} {
		delta, newStock, err := inventory.Apply(d(prev), entity.MovementTypeAjuste, d("12"), entity.UnitTypeKg)
		require.NoError(t, err)
		assert.True(t, newStock.Equal(d("12")), "ajuste debe dejar el stock en 12 desde %s", prev)
		assert.True(t, delta.Equal(d("12").Sub(d(prev))))
	}
}

func TestApply_AjusteACeroPermitido(t *testing.T) {
	delta, newStock, err := inventory.Apply(d("8"), entity.MovementTypeAjuste, decimal.Zero, entity.UnitTypeUnits)
	require.NoError(t, err)
	assert.True(t, newStock.IsZero())
	assert.True(t, delta.Equal(d("-8")))
}

func TestApply_AjusteNegativoRechazado(t *testing.T) {
	_, _, err := inventory.Apply(d("8"), entity.MovementTypeAjuste, d("-1"), entity.UnitTypeUnits)
	assert.Equal(t, "NEGATIVE_STOCK", domain.CodeOf(err))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestApply_CantidadesInvalidas(t *testing.T) {
	cases := []struct {
		name     string
		typ      string
		qty      string
		unitType string
		code     string
	}{
		{"tipo desconocido", "transferencia", "1", entity.UnitTypeUnits, "INVALID_MOVEMENT_TYPE"},
		{"fraccion en unidades", entity.MovementTypeEntrada, "1.5", entity.UnitTypeUnits, "INVALID_UNIT_QUANTITY"},
		{"entrada cero", entity.MovementTypeEntrada, "0", entity.UnitTypeKg, "INVALID_ENTRY_QUANTITY"},
		{"entrada negativa", entity.MovementTypeEntrada, "-2", entity.UnitTypeKg, "INVALID_ENTRY_QUANTITY"},
		{"salida cero", entity.MovementTypeSalida, "0", entity.UnitTypeUnits, "INVALID_EXIT_QUANTITY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := inventory.Apply(d("10"), tc.typ, d(tc.qty), tc.unitType)
			require.Error(t, err)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}
}

func TestApply_KgAdmiteFracciones(t *testing.T) {
	_, newStock, err := inventory.Apply(d("1.250"), entity.MovementTypeSalida, d("0.750"), entity.UnitTypeKg)
	require.NoError(t, err)
	assert.True(t, newStock.Equal(d("0.5")))
}

// El stock es siempre el pliegue de los deltas aceptados y nunca queda negativo.
func TestApply_SecuenciaEsPliegueDeDeltas(t *testing.T) {
	steps := []struct {
		typ string
		qty string
	}{
		{entity.MovementTypeEntrada, "10"},
		{entity.MovementTypeSalida, "4"},
		{entity.MovementTypeSalida, "9"}, // rechazada
		{entity.MovementTypeAjuste, "20"},
		{entity.MovementTypeSalida, "20"},
		{entity.MovementTypeEntrada, "3"},
	}
	stock := decimal.Zero
	fold := decimal.Zero
	for _, s := range steps {
		delta, newStock, err := inventory.Apply(stock, s.typ, d(s.qty), entity.UnitTypeUnits)
		if err != nil {
			continue
		}
		require.True(t, newStock.Equal(stock.Add(delta)))
		fold = fold.Add(delta)
		stock = newStock
		assert.False(t, stock.IsNegative())
	}
	assert.True(t, stock.Equal(fold))
	assert.True(t, stock.Equal(d("3")))
}

func TestAlertLevel(t *testing.T) {
	assert.Equal(t, inventory.LevelCritical, inventory.AlertLevel(d("0"), d("0")))
	assert.Equal(t, inventory.LevelCritical, inventory.AlertLevel(d("10"), d("10")))
	assert.Equal(t, inventory.LevelWarning, inventory.AlertLevel(d("15"), d("10")))
	assert.Equal(t, inventory.LevelNormal, inventory.AlertLevel(d("16"), d("10")))
}

func TestWeightedAverageCost(t *testing.T) {
	got := inventory.WeightedAverageCost(d("10"), d("100"), d("10"), d("200"))
	assert.True(t, got.Equal(d("150")))
	assert.True(t, inventory.WeightedAverageCost(d("0"), d("0"), d("0"), d("50")).IsZero())
}

func TestApply_CantidadConMasDeTresDecimales(t *testing.T) {
	_, _, err := inventory.Apply(d("1"), entity.MovementTypeEntrada, d("0.0004"), entity.UnitTypeKg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, "INVALID_QUANTITY_PRECISION", domain.CodeOf(err))

	_, newStock, err := inventory.Apply(d("1"), entity.MovementTypeEntrada, d("0.125"), entity.UnitTypeKg)
	require.NoError(t, err)
	assert.True(t, newStock.Equal(d("1.125")))
}
