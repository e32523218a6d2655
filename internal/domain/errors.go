package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Ledger y ventas.
	ErrItemNotFound      = errors.New("artículo no encontrado")
	ErrItemNotAvailable  = errors.New("artículo no disponible")
	ErrItemNotInBranch   = errors.New("el artículo no pertenece a la sucursal")
	ErrEditWindowExpired = errors.New("la venta solo puede editarse el mismo día de su creación")
	ErrSameBranch        = errors.New("la sucursal de origen y destino deben ser distintas")
	ErrInvalidState      = errors.New("transición de estado inválida")
	ErrStoreUnavailable  = errors.New("almacén de datos no disponible")
)

// ValidationError agrupa errores de validación por campo. errors.Is(err, ErrInvalidInput) es true.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError construye el error con un único campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

// Add registra un campo inválido.
func (e *ValidationError) Add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = reason
}

// Empty indica si no hay campos inválidos.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return ErrInvalidInput.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// OrNil devuelve nil cuando no se registró ningún campo, para usar como `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

// IsBusiness indica si err es una regla de negocio rechazada (frente a un fallo de infraestructura).
func IsBusiness(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrForbidden, ErrConflict,
		ErrInsufficientStock, ErrItemNotFound, ErrItemNotAvailable, ErrItemNotInBranch,
		ErrEditWindowExpired, ErrSameBranch, ErrInvalidState,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
