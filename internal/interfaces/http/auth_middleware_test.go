package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Almacen-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "almacen-api-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con el AuthMiddleware y
// un handler que devuelve los locals cargados por el middleware.
func buildTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(testJWTSecret),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"user_id":    apphttp.GetUserID(c),
				"company_id": apphttp.GetCompanyID(c),
			})
		},
	)
	return app
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

func doRequest(t *testing.T, app *fiber.App, authorization string) (*http.Response, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	payload := map[string]string{}
	_ = json.Unmarshal(body, &payload)
	return resp, payload
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

// TestAuthMiddleware_TokenValido verifica que un Bearer token firmado con el
// secret correcto pasa y deja UserID y CompanyID en los locals.
func TestAuthMiddleware_TokenValido(t *testing.T) {
	app := buildTestApp()

	resp, payload := doRequest(t, app, validToken(t))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testUserID, payload["user_id"])
	assert.Equal(t, testCompanyID, payload["company_id"])
}

// TestAuthMiddleware_SinHeader verifica el rechazo sin Authorization.
func TestAuthMiddleware_SinHeader(t *testing.T) {
	app := buildTestApp()

	resp, payload := doRequest(t, app, "")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", payload["code"])
}

// TestAuthMiddleware_FormatoInvalido verifica el rechazo de formatos que no
// son "Bearer <token>".
func TestAuthMiddleware_FormatoInvalido(t *testing.T) {
	app := buildTestApp()

	resp, payload := doRequest(t, app, "Basic abc123")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", payload["code"])
}

// TestAuthMiddleware_FirmaIncorrecta verifica que un token firmado con otro
// secret se rechaza.
func TestAuthMiddleware_FirmaIncorrecta(t *testing.T) {
	app := buildTestApp()

	tok, err := pkgjwt.Generate("otro-secret", testUserID, testCompanyID, testIssuer, testExpMin)
	require.NoError(t, err)

	resp, payload := doRequest(t, app, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", payload["code"])
}

// TestAuthMiddleware_TokenExpirado verifica el rechazo de tokens vencidos.
func TestAuthMiddleware_TokenExpirado(t *testing.T) {
	app := buildTestApp()

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, testCompanyID, testIssuer, -5)
	require.NoError(t, err)

	resp, payload := doRequest(t, app, "Bearer "+tok)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", payload["code"])
}
