// Package money formatea importes en pesos argentinos para mostrar al usuario.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Make("es-AR"))

// Format devuelve el importe como "$ 1.234,50".
func Format(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprintf("$ %.2f", f)
}
