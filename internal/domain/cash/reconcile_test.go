package cash_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pos-api/internal/domain/cash"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExpected_RestaEgresos(t *testing.T) {
	got := cash.Expected(d("1000"), d("5000"), d("-300"))
	assert.True(t, got.Equal(d("5700")))
}

func TestReconcile_SinDiferenciaEsNormal(t *testing.T) {
	r := cash.Reconcile(d("5700"), d("5700"), entity.DefaultCashSettings())
	assert.True(t, r.Difference.IsZero())
	assert.True(t, r.DeviationPct.IsZero())
	assert.Equal(t, entity.DeviationNormal, r.Level)
}

func TestReconcile_Niveles(t *testing.T) {
	settings := entity.DefaultCashSettings() // 1% y 5%
	cases := []struct {
		counted string
		level   string
		pct     string
	}{
		{"990", entity.DeviationNormal, "1"},
		{"1030", entity.DeviationAdvertencia, "3"},
		{"940", entity.DeviationCritico, "6"},
	}
	for _, tc := range cases {
		r := cash.Reconcile(d("1000"), d(tc.counted), settings)
		assert.Equal(t, tc.level, r.Level, "contado %s", tc.counted)
		assert.True(t, r.DeviationPct.Equal(d(tc.pct)), "pct %s", r.DeviationPct)
	}
}

func TestReconcile_EsperadoCeroConDiferencia(t *testing.T) {
	r := cash.Reconcile(decimal.Zero, d("50"), entity.DefaultCashSettings())
	assert.True(t, r.DeviationPct.Equal(d("100")))
	assert.Equal(t, entity.DeviationCritico, r.Level)
}
