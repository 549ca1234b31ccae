package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/pkg/logger"
)

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como número (gte, lte, gt...).
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	// Los errores por campo usan el nombre JSON.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// fieldErrors errores del validador agrupados por campo.
type fieldErrors map[string]string

func (f fieldErrors) Error() string { return "datos inválidos" }

// bindJSON parsea el cuerpo y aplica las etiquetas validate del DTO.
func bindJSON(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return domain.NewValidation("INVALID_BODY", "Cuerpo de la petición inválido")
	}
	return validateStruct(req)
}

// bindQuery parsea la query string y la valida.
func bindQuery(c *fiber.Ctx, req any) error {
	if err := c.QueryParser(req); err != nil {
		return domain.NewValidation("INVALID_QUERY", "Parámetros de consulta inválidos")
	}
	return validateStruct(req)
}

func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(fieldErrors, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// ok respuesta exitosa con envelope.
func ok(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(dto.Response{Success: true, Data: data, Message: message})
}

// fail respuesta de error con envelope.
func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.Response{Success: false, Code: code, Message: message})
}

// statusFor traduce el tipo de error de dominio a código HTTP.
func statusFor(kind error) int {
	switch {
	case errors.Is(kind, domain.ErrNotFound), errors.Is(kind, domain.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(kind, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(kind, domain.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(kind, domain.ErrInvalidInput),
		errors.Is(kind, domain.ErrConflict),
		errors.Is(kind, domain.ErrDuplicate),
		errors.Is(kind, domain.ErrEmailAlreadyExists),
		errors.Is(kind, domain.ErrInsufficientStock):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError única traducción error -> respuesta HTTP. Lo que no es de dominio se registra
// completo y al cliente sólo le llega un mensaje genérico.
func respondError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var fields fieldErrors
	if errors.As(err, &fields) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.Response{
			Success: false,
			Code:    "VALIDATION_ERROR",
			Message: "Datos inválidos",
			Fields:  fields,
		})
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return fail(c, statusFor(de.Kind), de.Code, de.Message)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return fail(c, fe.Code, "ROUTE_NOT_FOUND", "Ruta no encontrada")
		case fiber.StatusMethodNotAllowed:
			return fail(c, fe.Code, "METHOD_NOT_ALLOWED", "Método no permitido")
		case fiber.StatusRequestEntityTooLarge:
			return fail(c, fe.Code, "BODY_TOO_LARGE", "El cuerpo de la petición es demasiado grande")
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fail(c, fe.Code, "BAD_REQUEST", fe.Message)
		}
	}

	if status := statusFor(err); status != fiber.StatusInternalServerError {
		return fail(c, status, sentinelCode(err), err.Error())
	}

	log.Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("user_id", GetUserID(c)).
		Msg("error interno")
	return fail(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Error interno del servidor")
}

// sentinelCode código para errores centinela sin *domain.Error.
func sentinelCode(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return "FORBIDDEN"
	}
	return "VALIDATION_ERROR"
}

// ErrorHandler handler global de fiber: mismo envelope para errores no previstos y rutas inexistentes.
func ErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, log, err)
	}
}
