package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/cash"
	"github.com/jhoicas/pos-api/internal/application/dto"
)

// CashHandler caja: apertura, arqueo, movimientos y configuración.
type CashHandler struct {
	uc *cash.UseCase
}

// NewCashHandler construye el handler.
func NewCashHandler(uc *cash.UseCase) *CashHandler {
	return &CashHandler{uc: uc}
}

// Status godoc
// @Summary      Estado de caja
// @Description  Sesión abierta (si hay) con sus totales corrientes.
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CashStatusResponse
// @Router       /api/cash/status [get]
func (h *CashHandler) Status(c *fiber.Ctx) error {
	out, err := h.uc.Status(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Open godoc
// @Summary      Abrir caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenCashRequest  true  "Monto inicial (opcional)"
// @Success      201   {object}  dto.CashSessionResponse
// @Failure      400   {object}  dto.Response  "CASH_ALREADY_OPEN"
// @Router       /api/cash/open [post]
func (h *CashHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenCashRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return err
		}
	}
	out, err := h.uc.Open(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, out, "Caja abierta exitosamente")
}

// Close godoc
// @Summary      Cerrar caja (arqueo)
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseCashRequest  true  "Monto contado y notas"
// @Success      200   {object}  dto.CashSessionDetailResponse
// @Failure      400   {object}  dto.Response  "NOTES_REQUIRED"
// @Failure      404   {object}  dto.Response  "NO_OPEN_SESSION"
// @Router       /api/cash/close [post]
func (h *CashHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseCashRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Close(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "Caja cerrada exitosamente")
}

// History godoc
// @Summary      Historial de sesiones
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        status      query  string  false  "open o closed"
// @Param        start_date  query  string  false  "YYYY-MM-DD"
// @Param        end_date    query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.CashHistoryResponse
// @Router       /api/cash/history [get]
func (h *CashHandler) History(c *fiber.Ctx) error {
	var in dto.CashHistoryRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.History(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Session godoc
// @Summary      Detalle de sesión
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {object}  dto.CashSessionDetailResponse
// @Failure      404  {object}  dto.Response
// @Router       /api/cash/sessions/{id} [get]
func (h *CashHandler) Session(c *fiber.Ctx) error {
	out, err := h.uc.Session(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Report godoc
// @Summary      Reporte de cierre en PDF
// @Tags         cash
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la sesión"
// @Success      200  {file}  binary
// @Router       /api/cash/sessions/{id}/report [get]
func (h *CashHandler) Report(c *fiber.Ctx) error {
	id := c.Params("id")
	pdf, err := h.uc.Report(c.UserContext(), id)
	if err != nil {
		return err
	}
	return sendPDF(c, "arqueo-"+id+".pdf", pdf)
}

// Movements godoc
// @Summary      Movimientos de caja
// @Tags         cash
// @Security     Bearer
// @Produce      json
// @Param        session_id  query  string  false  "Sesión (por defecto la abierta)"
// @Success      200  {array}  dto.CashMovementResponse
// @Router       /api/cash/movements [get]
func (h *CashHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.Movements(c.UserContext(), c.Query("session_id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// CreateMovement godoc
// @Summary      Registrar ingreso o egreso de caja
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CashMovementRequest  true  "type, amount, description"
// @Success      201   {object}  dto.CashMovementResponse
// @Failure      400   {object}  dto.Response  "INSUFFICIENT_CASH"
// @Router       /api/cash/movements [post]
func (h *CashHandler) CreateMovement(c *fiber.Ctx) error {
	var in dto.CashMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.CreateMovement(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, out, "Movimiento registrado exitosamente")
}

func (h *CashHandler) Settings(c *fiber.Ctx) error {
	out, err := h.uc.Settings(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// UpdateSettings godoc
// @Summary      Actualizar configuración de caja (admin)
// @Tags         cash
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CashSettingsRequest  true  "Monto por defecto y umbrales"
// @Success      200   {object}  dto.CashSettingsResponse
// @Router       /api/cash/settings [put]
func (h *CashHandler) UpdateSettings(c *fiber.Ctx) error {
	var in dto.CashSettingsRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateSettings(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "Configuración actualizada exitosamente")
}
