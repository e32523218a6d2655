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

	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	apphttp "github.com/jhoicas/sucursales-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/sucursales-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testBranchID  = "00000000-0000-0000-0000-0000000000b1"
	testIssuer    = "sucursales-api-test"
	testExpMin    = 60
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para resolver el principal
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(pkgjwt.NewVerifier(testJWTSecret, testIssuer)),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// tokenForRole genera un JWT con el rol indicado.
func tokenForRole(t *testing.T, role string, branches ...string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{
		UserID: testUserID, Username: "ana", Role: role, BranchIDs: branches,
	}, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")
	return "Bearer " + tok
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: El usuario tiene el rol requerido → debe pasar (HTTP 200).
func TestRequireRole_MasterAdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleMasterAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleMasterAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, entity.RoleMasterAdmin, body["role"])
}

// Caso 1b: uno de los roles permitidos (multi-rol) → HTTP 200.
func TestRequireRole_BranchAdminAccedeRutaMultiRol(t *testing.T) {
	app := buildTestApp(entity.RoleMasterAdmin, entity.RoleBranchAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleBranchAdmin, testBranchID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 2: rol distinto al requerido → HTTP 403 Forbidden.
func TestRequireRole_VendedorBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleMasterAdmin)
	resp := doRequest(t, app, tokenForRole(t, entity.RoleSeller, testBranchID))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

// Caso 3: token sin claim de rol → el principal no se resuelve → HTTP 401.
func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleMasterAdmin)
	resp := doRequest(t, app, tokenForRole(t, ""))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 4: sin header Authorization ni cabeceras → anónimo → HTTP 403 en ruta con rol.
func TestRequireRole_Anonimo_Retorna403(t *testing.T) {
	app := buildTestApp(entity.RoleMasterAdmin)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Caso 5: token inválido o malformado → HTTP 401 INVALID_TOKEN.
func TestAuthMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleMasterAdmin)
	for _, header := range []string{"Bearer token.invalido.aqui", "Basic abc"} {
		resp := doRequest(t, app, header)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
		assert.Contains(t, string(body), "INVALID_TOKEN", header)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware: variantes del principal
// ──────────────────────────────────────────────────────────────────────────────

func meApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(pkgjwt.NewVerifier(testJWTSecret, testIssuer)), func(c *fiber.Ctx) error {
		p := apphttp.GetPrincipal(c)
		return c.JSON(fiber.Map{
			"kind":     string(p.Kind()),
			"user_id":  apphttp.GetUserID(c),
			"role":     apphttp.GetRole(c),
			"branches": auth.Branches(p),
		})
	})
	return app
}

func getMe(t *testing.T, headers map[string]string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := meApp().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestAuthMiddleware_ExtraeClaims(t *testing.T) {
	body := getMe(t, map[string]string{"Authorization": tokenForRole(t, entity.RoleSeller, testBranchID)})
	assert.Equal(t, string(auth.KindToken), body["kind"])
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, entity.RoleSeller, body["role"])
	assert.Equal(t, []any{testBranchID}, body["branches"])
}

func TestAuthMiddleware_CabecerasDeIdentidad(t *testing.T) {
	body := getMe(t, map[string]string{"x-username": "ana", "x-branch-id": testBranchID})
	assert.Equal(t, string(auth.KindHeader), body["kind"])
	assert.Empty(t, body["user_id"])
	assert.Equal(t, []any{testBranchID}, body["branches"])
}

func TestAuthMiddleware_Anonimo(t *testing.T) {
	body := getMe(t, nil)
	assert.Equal(t, string(auth.KindAnonymous), body["kind"])
}
