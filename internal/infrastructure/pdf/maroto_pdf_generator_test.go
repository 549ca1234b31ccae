package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/pdf"
)

func TestRenderSaleTicket(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("Almacén La Esquina")
	sale := &dto.SaleResponse{
		ID:            "0b6f7c1e-4a7d-4a51-9d0c-2f3b5b7f9a10",
		Total:         decimal.NewFromInt(2350),
		PaymentMethod: entity.PaymentMultiple,
		Status:        entity.SaleStatusCompleted,
		Items: []dto.LineItemResponse{
			{ProductName: "Yerba 1kg", ProductUnitType: entity.UnitTypeUnits, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1500), Subtotal: decimal.NewFromInt(1500)},
			{ProductName: "Queso", ProductUnitType: entity.UnitTypeKg, Quantity: decimal.RequireFromString("0.25"), UnitPrice: decimal.NewFromInt(3400), Subtotal: decimal.NewFromInt(850)},
		},
		PaymentMethodsFormatted: []dto.TenderResponse{
			{Method: entity.PaymentEfectivo, Label: "Efectivo", Amount: decimal.NewFromInt(2000), AmountFormatted: "$ 2.000,00"},
			{Method: entity.PaymentTarjetaDebito, Label: "T. Débito", Amount: decimal.NewFromInt(500), AmountFormatted: "$ 500,00"},
		},
		CreatedAt: time.Now(),
	}

	out, err := g.RenderSaleTicket(context.Background(), sale)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderCashReport(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("")
	closing := decimal.NewFromInt(2490)
	diff := decimal.NewFromInt(-10)
	pct := decimal.RequireFromString("0.4")
	now := time.Now()

	out, err := g.RenderCashReport(context.Background(), &dto.CashSessionDetailResponse{
		Session: dto.CashSessionResponse{
			ID:             "5d1c2b7e-0f5a-4c3e-8e4b-7a9d0c1b2e3f",
			OpeningAmount:  decimal.NewFromInt(1000),
			OpenedAt:       now.Add(-8 * time.Hour),
			ClosingAmount:  &closing,
			Difference:     &diff,
			DeviationPct:   &pct,
			DeviationLevel: entity.DeviationNormal,
			Status:         entity.CashSessionClosed,
			ClosedAt:       &now,
		},
		Totals: dto.CashTotals{
			CashSales:    decimal.NewFromInt(2000),
			Egresos:      decimal.NewFromInt(500),
			ExpectedCash: decimal.NewFromInt(2500),
		},
		Movements: []dto.CashMovementResponse{
			{Type: entity.CashMovementEgreso, Amount: decimal.NewFromInt(-500), Description: "Flete", CreatedAt: now},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
