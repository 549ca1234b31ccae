package entity

import "github.com/shopspring/decimal"

// Medios de pago aceptados.
const (
	PaymentEfectivo        = "efectivo"
	PaymentTarjetaCredito  = "tarjeta_credito"
	PaymentTarjetaDebito   = "tarjeta_debito"
	PaymentTransferencia   = "transferencia"
	PaymentCuentaCorriente = "cuenta_corriente"

	// PaymentMultiple se guarda en la cabecera cuando el pago se divide en varios medios.
	PaymentMultiple = "multiple"
)

var paymentLabels = map[string]string{
	PaymentEfectivo:        "Efectivo",
	PaymentTarjetaCredito:  "T. Crédito",
	PaymentTarjetaDebito:   "T. Débito",
	PaymentTransferencia:   "Transferencia",
	PaymentCuentaCorriente: "Cta. Corriente",
}

// IsValidPaymentMethod indica si m es un medio de pago individual válido.
func IsValidPaymentMethod(m string) bool {
	_, ok := paymentLabels[m]
	return ok
}

// PaymentMethodLabel etiqueta visible de un medio de pago; el valor crudo si es desconocido.
func PaymentMethodLabel(m string) string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return m
}

// Tender un medio de pago con su importe dentro de una venta o reparto.
type Tender struct {
	ID     string
	Method string
	Amount decimal.Decimal
}

// SumTenders suma los importes de los medios de pago.
func SumTenders(tenders []Tender) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tenders {
		total = total.Add(t.Amount)
	}
	return total
}

// AmountFor suma lo pagado con un medio concreto.
func AmountFor(tenders []Tender, method string) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tenders {
		if t.Method == method {
			total = total.Add(t.Amount)
		}
	}
	return total
}
