// Package pdf genera los comprobantes imprimibles con Maroto v2.
//
// Ticket de venta (A5):
//
//	┌───────────────────────────────────────┐
//	│  NEGOCIO              │ Ticket N° / Fecha │
//	│  Cliente / Vendedor                      │
//	│  Cant | Producto | P.Unit | Subtotal     │
//	│  TOTAL + medios de pago                  │
//	│  QR con el ID de la venta                │
//	└───────────────────────────────────────┘
//
// Reporte de cierre de caja (A4): sesión, arqueo, ventas por medio y movimientos.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa sales.TicketRenderer y cash.ReportRenderer.
type MarotoPDFGenerator struct {
	businessName string
}

// NewMarotoPDFGenerator construye el generador; businessName encabeza los documentos.
func NewMarotoPDFGenerator(businessName string) *MarotoPDFGenerator {
	return &MarotoPDFGenerator{businessName: nonEmpty(businessName, "Punto de Venta")}
}

// RenderSaleTicket genera el ticket de una venta y devuelve sus bytes.
func (g *MarotoPDFGenerator) RenderSaleTicket(_ context.Context, sale *dto.SaleResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Ticket "+shortID(sale.ID), true).
		WithAuthor(g.businessName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.ticketHeaderRow(sale))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(sale))
	if sale.Status == entity.SaleStatusCancelled {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("ANULADA: "+sale.CancelReason, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorRed, Top: 2,
			}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(itemsHeaderRow())
	m.AddRows(itemRows(sale.Items)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(keyValueRow("TOTAL", money.Format(sale.Total), true))
	for _, t := range sale.PaymentMethodsFormatted {
		m.AddRows(keyValueRow(t.Label, t.AmountFormatted, false))
	}
	if change := changeOf(sale); change.IsPositive() {
		m.AddRows(keyValueRow("Vuelto", money.Format(change), false))
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(30).Add(
		col.New(4).Add(code.NewQr(sale.ID, props.Rect{Percent: 95, Center: true})),
		col.New(8).Add(
			text.New("Gracias por su compra", props.Text{Style: fontstyle.Bold, Size: 10, Top: 6, Left: 3, Color: colorPrimary}),
			text.New("Comprobante no válido como factura.", props.Text{Size: 7, Top: 14, Left: 3, Color: colorGray}),
		),
	))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

// RenderCashReport genera el reporte de cierre (o parcial) de una sesión de caja.
func (g *MarotoPDFGenerator) RenderCashReport(_ context.Context, detail *dto.CashSessionDetailResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cierre de caja", true).
		WithAuthor(g.businessName, true).
		Build()

	m := maroto.New(cfg)
	s := detail.Session

	m.AddRows(row.New(16).Add(
		col.New(7).Add(
			text.New(g.businessName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Sesión "+shortID(s.ID), props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(reportTitle(s.Status), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New("Apertura: "+s.OpenedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 7, Color: colorGray}),
			text.New("Cierre: "+closedAt(s), props.Text{Size: 8, Align: align.Right, Top: 12, Color: colorGray}),
		),
	))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(sectionRow("ARQUEO"))
	m.AddRows(keyValueRow("Monto inicial", money.Format(s.OpeningAmount), false))
	m.AddRows(keyValueRow("Ventas en efectivo", money.Format(detail.Totals.CashSales), false))
	m.AddRows(keyValueRow("Ingresos", money.Format(detail.Totals.Ingresos), false))
	m.AddRows(keyValueRow("Egresos", money.Format(detail.Totals.Egresos.Neg()), false))
	m.AddRows(keyValueRow("Efectivo esperado", money.Format(detail.Totals.ExpectedCash), true))
	if s.ClosingAmount != nil {
		m.AddRows(keyValueRow("Efectivo contado", money.Format(*s.ClosingAmount), true))
	}
	if s.Difference != nil && s.DeviationPct != nil {
		m.AddRows(keyValueRow("Diferencia", money.Format(*s.Difference), false))
		m.AddRows(keyValueRow("Desvío", s.DeviationPct.StringFixed(2)+"% ("+s.DeviationLevel+")", false))
	}

	m.AddRows(sectionRow("VENTAS POR MEDIO DE PAGO"))
	if len(detail.Totals.SalesByMethod) == 0 {
		m.AddRows(keyValueRow("Sin ventas", "-", false))
	}
	for _, t := range detail.Totals.SalesByMethod {
		m.AddRows(keyValueRow(fmt.Sprintf("%s (%d)", t.Label, t.Count), t.AmountFormatted, false))
	}

	m.AddRows(sectionRow("MOVIMIENTOS"))
	if len(detail.Movements) == 0 {
		m.AddRows(keyValueRow("Sin movimientos", "-", false))
	}
	for _, mv := range detail.Movements {
		m.AddRows(row.New(6).Add(
			col.New(3).Add(text.New(mv.CreatedAt.Format("15:04"), props.Text{Size: 8, Top: 1})),
			col.New(6).Add(text.New(mv.Description, props.Text{Size: 8, Top: 1})),
			col.New(3).Add(text.New(money.Format(mv.Amount), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}

	if s.Notes != "" {
		m.AddRows(sectionRow("OBSERVACIONES"))
		m.AddRows(row.New(10).Add(col.New(12).Add(text.New(s.Notes, props.Text{Size: 8, Top: 1}))))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte de caja: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoPDFGenerator) ticketHeaderRow(sale *dto.SaleResponse) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.businessName, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("Ticket "+shortID(sale.ID), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1}),
			text.New(sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 7, Color: colorGray}),
		),
	)
}

func partiesRow(sale *dto.SaleResponse) core.Row {
	return row.New(10).Add(
		col.New(6).Add(
			text.New("Cliente: "+nonEmpty(sale.CustomerName, "Consumidor final"), props.Text{Size: 8, Top: 1}),
		),
		col.New(6).Add(
			text.New("Atendió: "+nonEmpty(sale.UserName, "-"), props.Text{Size: 8, Align: align.Right, Top: 1}),
		),
	)
}

func itemsHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Cant.", 2, align.Left),
		h("Producto", 5, align.Left),
		h("P.Unit", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func itemRows(items []dto.LineItemResponse) []core.Row {
	rows := make([]core.Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(quantity(it.Quantity, it.ProductUnitType), props.Text{Size: 8, Top: 1})),
			col.New(5).Add(text.New(it.ProductName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(money.Format(it.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(money.Format(it.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func sectionRow(title string) core.Row {
	return row.New(9).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 4}),
	))
}

func keyValueRow(key, value string, bold bool) core.Row {
	style := fontstyle.Normal
	if bold {
		style = fontstyle.Bold
	}
	return row.New(6).Add(
		col.New(6).Add(text.New(key, props.Text{Style: style, Size: 9, Top: 1})),
		col.New(6).Add(text.New(value, props.Text{Style: style, Size: 9, Align: align.Right, Top: 1})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// shortID primeros 8 caracteres del UUID, suficiente para identificar el comprobante.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func quantity(q decimal.Decimal, unitType string) string {
	if unitType == entity.UnitTypeKg {
		return q.StringFixed(3) + " kg"
	}
	return q.StringFixed(0)
}

// changeOf vuelto entregado cuando los pagos superan el total.
func changeOf(sale *dto.SaleResponse) decimal.Decimal {
	paid := decimal.Zero
	for _, t := range sale.PaymentMethodsFormatted {
		paid = paid.Add(t.Amount)
	}
	return paid.Sub(sale.Total)
}

func reportTitle(status string) string {
	if status == entity.CashSessionOpen {
		return "REPORTE PARCIAL DE CAJA"
	}
	return "CIERRE DE CAJA"
}

func closedAt(s dto.CashSessionResponse) string {
	if s.ClosedAt == nil {
		return "-"
	}
	return s.ClosedAt.Format("02/01/2006 15:04")
}
