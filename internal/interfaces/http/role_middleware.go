package http

import "github.com/gofiber/fiber/v2"

// RequireRole devuelve un middleware Fiber que deja pasar sólo a los roles indicados.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalRole).
//
// Comportamiento:
//   - 401 si no hay usuario en el contexto (AuthMiddleware debería haberlo puesto).
//   - 403 INSUFFICIENT_PERMISSIONS si el rol no está en la lista.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		if GetUserID(c) == "" {
			return fail(c, fiber.StatusUnauthorized, "NO_TOKEN", "Token de acceso requerido")
		}
		if !allowed[GetRole(c)] {
			return fail(c, fiber.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "No tiene permisos para esta operación")
		}
		return c.Next()
	}
}
