package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost costo promedio ponderado tras una entrada con costo conocido.
// nuevo = ((stock * costo) + (cantEntrada * costoEntrada)) / (stock + cantEntrada)
func WeightedAverageCost(stock, cost, entryQty, entryCost decimal.Decimal) decimal.Decimal {
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	sum := stock.Add(entryQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stock.Mul(cost).Add(entryQty.Mul(entryCost))
	return num.Div(sum).Round(4)
}
