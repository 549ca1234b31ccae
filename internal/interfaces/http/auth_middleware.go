package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-api/pkg/jwt"
)

// Locals keys para UserID y Role en Fiber.
const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// UserStatusChecker contrato mínimo para rechazar tokens de usuarios inexistentes o dados de baja.
// Lo implementa *auth.AuthUseCase.
type UserStatusChecker interface {
	IsActive(ctx context.Context, userID string) (bool, error)
}

// AuthMiddleware valida el Bearer Token JWT, verifica que el usuario siga activo
// y deja UserID y Role en c.Locals.
func AuthMiddleware(jwtSecret string, users UserStatusChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(authHeader, " ", 2)
		if authHeader == "" || len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return fail(c, fiber.StatusUnauthorized, "NO_TOKEN", "Token de acceso requerido")
		}

		userID, role, err := jwt.Parse(jwtSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrExpired):
				return fail(c, fiber.StatusForbidden, "TOKEN_EXPIRED", "Token expirado")
			case errors.Is(err, jwt.ErrMalformed):
				return fail(c, fiber.StatusForbidden, "MALFORMED_TOKEN", "Token mal formado")
			default:
				return fail(c, fiber.StatusForbidden, "INVALID_TOKEN", "Token inválido")
			}
		}

		active, err := users.IsActive(c.UserContext(), userID)
		if err != nil {
			return err
		}
		if !active {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "Usuario no válido o inactivo")
		}

		c.Locals(LocalUserID, userID)
		c.Locals(LocalRole, role)
		return c.Next()
	}
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del token.
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
