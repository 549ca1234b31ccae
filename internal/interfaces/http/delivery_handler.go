package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/delivery"
	"github.com/jhoicas/pos-api/internal/application/dto"
)

// DeliveryHandler pedidos a domicilio. El stock no se toca hasta que exista la venta.
type DeliveryHandler struct {
	uc *delivery.UseCase
}

func NewDeliveryHandler(uc *delivery.UseCase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

// Create godoc
// @Summary      Crear entrega
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "Datos de la entrega"
// @Success      201   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.Response
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, out, "Entrega creada exitosamente")
}

// List godoc
// @Summary      Listar entregas
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "pending, assigned, in_progress, completed o cancelled"
// @Param        driver_id  query  string  false  "Repartidor"
// @Param        search     query  string  false  "ID, cliente o repartidor"
// @Success      200  {object}  dto.DeliveryListResponse
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) List(c *fiber.Ctx) error {
	var in dto.DeliveryListRequest
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
// @Summary      Estadísticas de entregas
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        period  query  string  false  "today, week, month o year"  default(today)
// @Success      200  {object}  dto.DeliveryStatsResponse
// @Router       /api/deliveries/stats [get]
func (h *DeliveryHandler) Stats(c *fiber.Ctx) error {
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

// ByDriver godoc
// @Summary      Entregas de un repartidor
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        driver_id  path   string  true   "ID del repartidor"
// @Param        status     query  string  false  "pending (defecto), in_progress o completed"
// @Success      200  {array}  dto.DeliveryResponse
// @Router       /api/deliveries/driver/{driver_id} [get]
func (h *DeliveryHandler) ByDriver(c *fiber.Ctx) error {
	out, err := h.uc.ByDriver(c.UserContext(), c.Params("driver_id"), c.Query("status"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// GetByID godoc
// @Summary      Obtener entrega
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la entrega"
// @Success      200  {object}  dto.DeliveryResponse
// @Failure      404  {object}  dto.Response
// @Router       /api/deliveries/{id} [get]
func (h *DeliveryHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// UpdateStatus godoc
// @Summary      Cambiar estado de la entrega
// @Description  Registra historial y, si viene una ubicación válida, el punto GPS.
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID de la entrega"
// @Param        body  body  dto.UpdateDeliveryStatusRequest  true  "status, notes, latitude, longitude"
// @Success      200   {object}  dto.DeliveryResponse
// @Failure      400   {object}  dto.Response  "INVALID_STATUS_TRANSITION"
// @Router       /api/deliveries/{id}/status [patch]
func (h *DeliveryHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateDeliveryStatusRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.UpdateStatus(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "Estado actualizado exitosamente")
}
