package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/sucursales-api/internal/domain"
)

// wrapErr antepone la operación al error. Un valor con formato inválido para la columna (22P02,
// p. ej. un id que no es UUID) se reporta como domain.ErrInvalidInput.
func wrapErr(op string, err error) error {
	if isInvalidText(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isInvalidText 22P02 invalid_text_representation.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isCheckViolation 23514: p. ej. stock_actual >= 0 si una escritura se salta la validación del ledger.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// nullIfEmpty guarda NULL en lugar de cadena vacía para referencias opcionales.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// emptyIfNull inverso de nullIfEmpty al leer.
func emptyIfNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
