package order

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

// ParseTenders devuelve el medio de pago de cabecera y las filas de pago.
// Con split no vacío la cabecera es "multiple" y cada elemento es una fila;
// si no, un único medio (efectivo por defecto) por el total.
func ParseTenders(total decimal.Decimal, method string, split []dto.TenderRequest) (string, []entity.Tender, error) {
	if len(split) == 0 {
		if method == "" {
			method = entity.PaymentEfectivo
		}
		if !entity.IsValidPaymentMethod(method) {
			return "", nil, domain.NewValidation("INVALID_PAYMENT_METHOD", "Método de pago inválido: "+method)
		}
		return method, []entity.Tender{{ID: uuid.New().String(), Method: method, Amount: total}}, nil
	}

	tenders := make([]entity.Tender, 0, len(split))
	for _, t := range split {
		if !entity.IsValidPaymentMethod(t.Method) {
			return "", nil, domain.NewValidation("INVALID_PAYMENT_METHOD", "Método de pago inválido: "+t.Method)
		}
		if t.Amount == nil || !t.Amount.IsPositive() {
			return "", nil, domain.NewValidation("INVALID_PAYMENT_AMOUNT", "El monto de cada pago debe ser mayor a 0")
		}
		if !entity.FitsPlaces(*t.Amount, entity.MoneyPlaces) {
			return "", nil, domain.NewValidation("INVALID_AMOUNT_PRECISION", "Los montos admiten como máximo 2 decimales")
		}
		tenders = append(tenders, entity.Tender{ID: uuid.New().String(), Method: t.Method, Amount: *t.Amount})
	}
	if entity.SumTenders(tenders).LessThan(total) {
		return "", nil, domain.NewValidation("INSUFFICIENT_PAYMENT", "La suma de los pagos no cubre el total")
	}
	if len(tenders) == 1 {
		return tenders[0].Method, tenders, nil
	}
	return entity.PaymentMultiple, tenders, nil
}
