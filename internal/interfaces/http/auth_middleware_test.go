package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/dto"
	apphttp "github.com/jhoicas/pos-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pos-api/pkg/jwt"
	"github.com/jhoicas/pos-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testIssuer    = "pos-api-test"
	testExpMin    = 60
)

// fakeUsers implementa UserStatusChecker con un mapa de usuarios activos.
type fakeUsers struct {
	active map[string]bool
	err    error
}

func (f fakeUsers) IsActive(_ context.Context, userID string) (bool, error) {
	return f.active[userID], f.err
}

func activeUsers() fakeUsers {
	return fakeUsers{active: map[string]bool{testUserID: true}}
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para parsear el JWT y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(users apphttp.UserStatusChecker, allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret, users),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"user_id": apphttp.GetUserID(c),
				"role":    apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, role, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve status y envelope.
func doRequest(t *testing.T, app *fiber.App, authHeader string) (int, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.Response
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_TokenValido_CargaLocals(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret, activeUsers()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": apphttp.GetUserID(c), "role": apphttp.GetRole(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, "admin", body["role"])
}

func TestAuthMiddleware_SinHeader_Retorna401NoToken(t *testing.T) {
	app := buildTestApp(activeUsers(), "admin")
	status, body := doRequest(t, app, "")

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, body.Success)
	assert.Equal(t, "NO_TOKEN", body.Code)
}

func TestAuthMiddleware_EsquemaIncorrecto_Retorna401(t *testing.T) {
	app := buildTestApp(activeUsers(), "admin")
	status, body := doRequest(t, app, "Basic dXNlcjpwYXNz")

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "NO_TOKEN", body.Code)
}

func TestAuthMiddleware_ErroresDeToken(t *testing.T) {
	expired, err := pkgjwt.Generate(testJWTSecret, testUserID, "admin", testIssuer, -1)
	require.NoError(t, err)
	otherSecret, err := pkgjwt.Generate("otro-secret-completamente-distinto", testUserID, "admin", testIssuer, testExpMin)
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"expirado", "Bearer " + expired, "TOKEN_EXPIRED"},
		{"mal formado", "Bearer token.invalido.aqui", "MALFORMED_TOKEN"},
		{"firma de otro secret", "Bearer " + otherSecret, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildTestApp(activeUsers(), "admin")
			status, body := doRequest(t, app, tc.header)
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestAuthMiddleware_UsuarioInactivo_Retorna401(t *testing.T) {
	app := buildTestApp(fakeUsers{active: map[string]bool{}}, "admin")
	status, body := doRequest(t, app, tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "INVALID_TOKEN", body.Code)
}

func TestAuthMiddleware_FalloDelChecker_Retorna500(t *testing.T) {
	app := buildTestApp(fakeUsers{err: errors.New("db caída")}, "admin")
	status, body := doRequest(t, app, tokenForRole(t, "admin"))

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
	assert.NotContains(t, body.Message, "db caída", "el detalle interno no debe llegar al cliente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(activeUsers(), "admin")
	status, _ := doRequest(t, app, tokenForRole(t, "admin"))
	assert.Equal(t, http.StatusOK, status, "admin debe poder acceder a ruta restringida a admin")
}

func TestRequireRole_EmpleadoAccedeRutaCompartida(t *testing.T) {
	app := buildTestApp(activeUsers(), "admin", "empleado")
	status, _ := doRequest(t, app, tokenForRole(t, "empleado"))
	assert.Equal(t, http.StatusOK, status)
}

func TestRequireRole_EmpleadoBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(activeUsers(), "admin")
	status, body := doRequest(t, app, tokenForRole(t, "empleado"))

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body.Code)
}

func TestRequireRole_TokenSinRol_Retorna403(t *testing.T) {
	app := buildTestApp(activeUsers(), "admin")
	status, body := doRequest(t, app, tokenForRole(t, ""))

	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "INSUFFICIENT_PERMISSIONS", body.Code)
}

func TestRequireRole_SinAuthMiddleware_Retorna401(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", apphttp.RequireRole("admin"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
