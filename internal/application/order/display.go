package order

import (
	"strings"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
	"github.com/jhoicas/pos-api/pkg/money"
)

// TenderResponses reconstruye los medios de pago formateados desde las filas hijas.
func TenderResponses(tenders []entity.Tender) []dto.TenderResponse {
	out := make([]dto.TenderResponse, 0, len(tenders))
	for _, t := range tenders {
		out = append(out, dto.TenderResponse{
			Method:          t.Method,
			Label:           entity.PaymentMethodLabel(t.Method),
			Amount:          t.Amount,
			AmountFormatted: money.Format(t.Amount),
		})
	}
	return out
}

// PaymentDisplay "Efectivo" para un medio único; "Efectivo: $ 500,00 + T. Débito: $ 300,00" para pagos divididos.
func PaymentDisplay(method string, tenders []entity.Tender) string {
	if method != entity.PaymentMultiple || len(tenders) == 0 {
		return entity.PaymentMethodLabel(method)
	}
	parts := make([]string, 0, len(tenders))
	for _, t := range tenders {
		parts = append(parts, entity.PaymentMethodLabel(t.Method)+": "+money.Format(t.Amount))
	}
	return strings.Join(parts, " + ")
}

// LineItemResponses líneas con los datos de producto.
func LineItemResponses(items []entity.LineItem) []dto.LineItemResponse {
	out := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LineItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			ProductBarcode:  it.ProductBarcode,
			ProductImage:    it.ProductImage,
			ProductUnitType: it.ProductUnitType,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			Subtotal:        it.Subtotal,
		})
	}
	return out
}

// MethodTotalResponses totales por medio con etiqueta e importe formateado.
func MethodTotalResponses(totals []repository.MethodTotal) []dto.MethodTotalResponse {
	out := make([]dto.MethodTotalResponse, 0, len(totals))
	for _, m := range totals {
		out = append(out, dto.MethodTotalResponse{
			Method:          m.Method,
			Label:           entity.PaymentMethodLabel(m.Method),
			Count:           m.Count,
			Amount:          m.Amount,
			AmountFormatted: money.Format(m.Amount),
		})
	}
	return out
}
