package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseLines(t *testing.T) {
	pid := uuid.New().String()

	_, err := ParseLines(nil)
	assert.Equal(t, "NO_ITEMS", domain.CodeOf(err))

	cases := []struct {
		name string
		item dto.LineItemRequest
		code string
	}{
		{"producto inválido", dto.LineItemRequest{ProductID: "abc", Quantity: dec("1"), UnitPrice: dec("1")}, "INVALID_PRODUCT_ID"},
		{"sin cantidad", dto.LineItemRequest{ProductID: pid, UnitPrice: dec("1")}, "INVALID_QUANTITY"},
		{"cantidad cero", dto.LineItemRequest{ProductID: pid, Quantity: dec("0"), UnitPrice: dec("1")}, "INVALID_QUANTITY"},
		{"precio negativo", dto.LineItemRequest{ProductID: pid, Quantity: dec("1"), UnitPrice: dec("-1")}, "INVALID_UNIT_PRICE"},
		{"cantidad con 4 decimales", dto.LineItemRequest{ProductID: pid, Quantity: dec("0.0004"), UnitPrice: dec("1")}, "INVALID_QUANTITY_PRECISION"},
		{"precio con 3 decimales", dto.LineItemRequest{ProductID: pid, Quantity: dec("1"), UnitPrice: dec("0.004")}, "INVALID_AMOUNT_PRECISION"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLines([]dto.LineItemRequest{tc.item})
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Equal(t, tc.code, domain.CodeOf(err))
		})
	}

	lines, err := ParseLines([]dto.LineItemRequest{{ProductID: pid, Quantity: dec("1.5"), UnitPrice: dec("200")}})
	require.NoError(t, err)
	items := LineItems("sale-1", lines, time.Now())
	require.Len(t, items, 1)
	assert.True(t, items[0].Subtotal.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, "sale-1", items[0].ParentID)
}

func TestParseTotal_Decimales(t *testing.T) {
	total, err := ParseTotal(dec("10.50"))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.RequireFromString("10.5")))

	_, err = ParseTotal(dec("10.500"))
	require.NoError(t, err, "ceros finales no cuentan como decimales")

	_, err = ParseTotal(dec("0.001"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "INVALID_AMOUNT_PRECISION", domain.CodeOf(err))
}

func TestParseTenders_Single(t *testing.T) {
	method, tenders, err := ParseTenders(decimal.NewFromInt(100), "", nil)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentEfectivo, method)
	require.Len(t, tenders, 1)
	assert.True(t, tenders[0].Amount.Equal(decimal.NewFromInt(100)))

	_, _, err = ParseTenders(decimal.NewFromInt(100), "bitcoin", nil)
	assert.Equal(t, "INVALID_PAYMENT_METHOD", domain.CodeOf(err))
}

func TestParseTenders_Split(t *testing.T) {
	split := []dto.TenderRequest{
		{Method: entity.PaymentEfectivo, Amount: dec("60")},
		{Method: entity.PaymentTarjetaDebito, Amount: dec("40")},
	}
	method, tenders, err := ParseTenders(decimal.NewFromInt(100), "", split)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentMultiple, method)
	assert.Len(t, tenders, 2)

	_, _, err = ParseTenders(decimal.NewFromInt(120), "", split)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", domain.CodeOf(err))

	_, _, err = ParseTenders(decimal.NewFromInt(10), "", []dto.TenderRequest{{Method: entity.PaymentEfectivo, Amount: dec("0")}})
	assert.Equal(t, "INVALID_PAYMENT_AMOUNT", domain.CodeOf(err))

	_, _, err = ParseTenders(decimal.NewFromInt(10), "", []dto.TenderRequest{
		{Method: entity.PaymentEfectivo, Amount: dec("10")},
		{Method: entity.PaymentTransferencia, Amount: dec("0.001")},
	})
	assert.Equal(t, "INVALID_AMOUNT_PRECISION", domain.CodeOf(err))
}

func TestPeriodRange(t *testing.T) {
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC) // miércoles

	from, to, err := PeriodRange(PeriodWeek, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), to)

	from, to, err = PeriodRange(PeriodMonth, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), to)

	_, _, err = PeriodRange("decade", now)
	assert.Equal(t, "INVALID_PERIOD", domain.CodeOf(err))
}

func TestPaymentDisplay(t *testing.T) {
	assert.Equal(t, "T. Crédito", PaymentDisplay(entity.PaymentTarjetaCredito, nil))

	display := PaymentDisplay(entity.PaymentMultiple, []entity.Tender{
		{Method: entity.PaymentEfectivo, Amount: decimal.NewFromInt(500)},
		{Method: entity.PaymentCuentaCorriente, Amount: decimal.NewFromInt(300)},
	})
	assert.Contains(t, display, "Efectivo: $ ")
	assert.Contains(t, display, " + Cta. Corriente: $ ")
}
