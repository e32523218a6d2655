package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorTable orden de evaluación: los errores más específicos primero.
var errorTable = []errorMapping{
	{domain.ErrInsufficientStock, fiber.StatusBadRequest, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrItemNotAvailable, fiber.StatusBadRequest, "ITEM_NOT_AVAILABLE", "artículo no disponible"},
	{domain.ErrItemNotInBranch, fiber.StatusBadRequest, "ITEM_NOT_IN_BRANCH", "el artículo no pertenece a la sucursal"},
	{domain.ErrSameBranch, fiber.StatusBadRequest, "SAME_BRANCH", "la sucursal de origen y destino deben ser distintas"},
	{domain.ErrInvalidState, fiber.StatusBadRequest, "INVALID_STATE", "transición de estado inválida"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrEditWindowExpired, fiber.StatusForbidden, "EDIT_WINDOW_EXPIRED", "la venta solo puede editarse el mismo día de su creación"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado"},
	{domain.ErrItemNotFound, fiber.StatusNotFound, "ITEM_NOT_FOUND", "artículo no encontrado"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto con el estado actual"},
	{domain.ErrStoreUnavailable, fiber.StatusInternalServerError, "STORE_UNAVAILABLE", "almacén de datos no disponible"},
}

// mapError traduce un error de dominio a status + cuerpo. Lo desconocido es 500 INTERNAL.
func mapError(err error) (int, dto.ErrorResponse) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: ve.Fields}
	}
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			resp := dto.ErrorResponse{Code: m.code, Message: m.message}
			if m.status < fiber.StatusInternalServerError {
				resp.Message = err.Error()
			}
			return m.status, resp
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code, dto.ErrorResponse{Code: codeForStatus(fe.Code), Message: fe.Message}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	}
	if status >= fiber.StatusInternalServerError {
		return "INTERNAL"
	}
	return "ERROR"
}

// respondError escribe la respuesta de error; los 5xx se registran con request id y ruta.
func respondError(c *fiber.Ctx, err error) error {
	status, body := mapError(err)
	if status >= fiber.StatusInternalServerError {
		l := requestLogger(c)
		l.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler manejador global de Fiber (errores devueltos por handlers y pánicos recuperados).
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if c.Locals(localLogger) == nil {
			c.Locals(localLogger, log)
		}
		return respondError(c, err)
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
