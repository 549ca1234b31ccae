package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/application/usecase"
)

// CustomerHandler clientes y cuenta corriente (protegido).
type CustomerHandler struct {
	uc *usecase.CustomerUseCase
}

// NewCustomerHandler construye el handler.
func NewCustomerHandler(uc *usecase.CustomerUseCase) *CustomerHandler {
	return &CustomerHandler{uc: uc}
}

// List godoc
// @Summary      Listar clientes
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        search     query  string  false  "Nombre, email, teléfono o documento"
// @Param        with_debt  query  bool    false  "Sólo con saldo pendiente"
// @Success      200  {object}  dto.CustomerListResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c *fiber.Ctx) error {
	var in dto.CustomerListRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

func (h *CustomerHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// GetByID godoc
// @Summary      Obtener cliente
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.CustomerResponse
// @Failure      404  {object}  dto.Response
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Balance godoc
// @Summary      Saldo de cuenta corriente
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.BalanceResponse
// @Router       /api/customers/{id}/balance [get]
func (h *CustomerHandler) Balance(c *fiber.Ctx) error {
	out, err := h.uc.Balance(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Transactions godoc
// @Summary      Movimientos de cuenta corriente
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id    path   string  true   "ID del cliente"
// @Param        type  query  string  false  "cargo o pago"
// @Success      200  {object}  dto.AccountTransactionListResponse
// @Router       /api/customers/{id}/transactions [get]
func (h *CustomerHandler) Transactions(c *fiber.Ctx) error {
	var in dto.AccountTransactionListRequest
	if err := bindQuery(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Transactions(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "")
}

// Create godoc
// @Summary      Crear cliente
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CustomerRequest  true  "Datos del cliente"
// @Success      201   {object}  dto.CustomerResponse
// @Failure      400   {object}  dto.Response
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, out, "Cliente creado exitosamente")
}

// CreateTransaction godoc
// @Summary      Registrar cargo o pago en cuenta corriente
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AccountTransactionRequest  true  "customer_id, type, amount, description"
// @Success      201   {object}  dto.AccountTransactionResponse
// @Failure      400   {object}  dto.Response
// @Router       /api/customers/transactions [post]
func (h *CustomerHandler) CreateTransaction(c *fiber.Ctx) error {
	var in dto.AccountTransactionRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.CreateTransaction(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusCreated, out, "Transacción registrada exitosamente")
}

// Update godoc
// @Summary      Actualizar cliente (admin)
// @Tags         customers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del cliente"
// @Param        body  body  dto.CustomerRequest  true  "Datos del cliente"
// @Success      200   {object}  dto.CustomerResponse
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c *fiber.Ctx) error {
	var in dto.CustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, out, "Cliente actualizado exitosamente")
}

// Delete godoc
// @Summary      Desactivar cliente (admin)
// @Tags         customers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cliente"
// @Success      200  {object}  dto.Response
// @Failure      400  {object}  dto.Response  "CUSTOMER_HAS_DEBT"
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return ok(c, fiber.StatusOK, nil, "Cliente eliminado exitosamente")
}
