package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/sucursales-api/internal/domain"
)

func TestWrapErr_TextoInvalidoEsErrInvalidInput(t *testing.T) {
	err := wrapErr("get item", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "get item")
}

func TestWrapErr_OtrosErroresConservanCausa(t *testing.T) {
	cause := errors.New("conexión perdida")
	err := wrapErr("list sale items", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "list sale items: conexión perdida", err.Error())
}
