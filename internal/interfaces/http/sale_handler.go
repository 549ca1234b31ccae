package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/sales"
)

// SaleHandler ventas de mostrador.
type SaleHandler struct {
	uc *sales.UseCase
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase) *SaleHandler {
	return &SaleHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Descuenta stock, registra los medios de pago y, con cuenta corriente, el cargo al cliente. Todo o nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "items, total, payment_method o payment_methods"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.Response  "INSUFFICIENT_STOCK, CREDIT_LIMIT_EXCEEDED, ..."
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, out, "Venta registrada exitosamente")
}

// List godoc
// @Summary      Listar ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start_date      query  string  false  "YYYY-MM-DD"
// @Param        end_date        query  string  false  "YYYY-MM-DD"
// @Param        status          query  string  false  "completada o anulada"
// @Param        payment_method  query  string  false  "Medio de pago"
// @Param        search          query  string  false  "Cliente o vendedor"
// @Success      200  {object}  dto.SaleListResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	var in dto.SaleListRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Stats godoc
// @Summary      Estadísticas de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  false  "today, week, month o year"  default(today)
// @Success      200  {object}  dto.SalesStatsResponse
// @Router       /api/sales/stats [get]
func (h *SaleHandler) Stats(c *fiber.Ctx) error {
	var in dto.PeriodRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Stats(c.UserContext(), in.Period)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// DailyReport godoc
// @Summary      Reporte diario
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  false  "YYYY-MM-DD (hoy por defecto)"
// @Success      200  {object}  dto.DailyReportResponse
// @Router       /api/sales/report/daily [get]
func (h *SaleHandler) DailyReport(c *fiber.Ctx) error {
	out, err := h.uc.DailyReport(c.UserContext(), c.Query("date"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.Response
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Ticket godoc
// @Summary      Ticket de venta en PDF
// @Tags         sales
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.Response
// @Router       /api/sales/{id}/ticket [get]
func (h *SaleHandler) Ticket(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Ticket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return sendPDF(c, "ticket-"+id+".pdf", pdf)
}

// Cancel godoc
// @Summary      Anular venta (admin)
// @Description  Devuelve el stock y revierte el cargo en cuenta corriente.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la venta"
// @Param        body  body  dto.CancelSaleRequest  true  "Motivo"
// @Success      200   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.Response  "REASON_REQUIRED, SALE_ALREADY_CANCELLED"
// @Router       /api/sales/{id}/cancel [patch]
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelSaleRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Cancel(c.UserContext(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "Venta anulada exitosamente")
}

// sendPDF responde el documento inline.
func sendPDF(c *fiber.Ctx, filename string, pdf []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(pdf)
}
