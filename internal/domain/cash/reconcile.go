// Package cash contiene el arqueo de caja: efectivo esperado contra efectivo contado.
package cash

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// Reconciliation resultado del arqueo al cerrar una sesión.
type Reconciliation struct {
	Expected     decimal.Decimal
	Difference   decimal.Decimal // contado - esperado
	DeviationPct decimal.Decimal
	Level        string
}

// Expected efectivo que debería haber en caja: apertura + ventas en efectivo + movimientos (egresos ya negativos).
func Expected(opening, cashSales, movements decimal.Decimal) decimal.Decimal {
	return opening.Add(cashSales).Add(movements)
}

// Reconcile compara el efectivo contado con el esperado y clasifica el desvío según la configuración.
func Reconcile(expected, counted decimal.Decimal, settings entity.CashSettings) Reconciliation {
	diff := counted.Sub(expected)
	var pct decimal.Decimal
	switch {
	case diff.IsZero():
		pct = decimal.Zero
	case !expected.IsPositive():
		pct = hundred
	default:
		pct = diff.Abs().Div(expected).Mul(hundred).Round(2)
	}
	return Reconciliation{
		Expected:     expected,
		Difference:   diff,
		DeviationPct: pct,
		Level:        Level(pct, settings),
	}
}

// Level normal hasta el umbral de advertencia, advertencia hasta el crítico, crítico por encima.
func Level(pct decimal.Decimal, settings entity.CashSettings) string {
	switch {
	case pct.LessThanOrEqual(settings.WarningDeviationPct):
		return entity.DeviationNormal
	case pct.LessThanOrEqual(settings.CriticalDeviationPct):
		return entity.DeviationAdvertencia
	default:
		return entity.DeviationCritico
	}
}
