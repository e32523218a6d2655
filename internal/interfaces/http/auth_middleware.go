package http

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/interfaces/ws"
)

// Locals keys para la identidad resuelta en Fiber.
const (
	LocalPrincipal = "principal"
	LocalUserID    = "user_id"
	LocalRole      = "role"
)

// AuthMiddleware resuelve el principal: Bearer verificado, si no x-username + x-branch-id, si no anónimo.
// Un token presente pero inválido responde 401 en lugar de degradar a otra identidad.
func AuthMiddleware(verifier auth.TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cred := auth.Credentials{
			Token:    ws.BearerToken(c.Get(fiber.HeaderAuthorization)),
			Username: c.Get("x-username"),
			BranchID: c.Get("x-branch-id"),
		}
		if c.Get(fiber.HeaderAuthorization) != "" && cred.Token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		p, err := auth.Resolve(c.UserContext(), verifier, cred)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalPrincipal, p)
		if tp, ok := p.(auth.TokenPrincipal); ok {
			c.Locals(LocalUserID, tp.UserID)
			c.Locals(LocalRole, tp.Role)
		}
		return c.Next()
	}
}

// RequireRole exige un token verificado con alguno de los roles. Usar después de AuthMiddleware.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := GetPrincipal(c)
		if p.Kind() != auth.KindToken {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "requiere sesión con token"})
		}
		role := GetRole(c)
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		if !slices.Contains(roles, role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta operación"})
		}
		return c.Next()
	}
}

// GetPrincipal devuelve el principal resuelto; anónimo si el middleware no corrió.
func GetPrincipal(c *fiber.Ctx) auth.Principal {
	if p, ok := c.Locals(LocalPrincipal).(auth.Principal); ok && p != nil {
		return p
	}
	return auth.AnonymousPrincipal{}
}

// GetUserID devuelve el UserID del token (vacío para cabeceras o anónimo).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetRole devuelve el rol del token (vacío para cabeceras o anónimo).
func GetRole(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRole).(string)
	return s
}
