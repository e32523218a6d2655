package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/pkg/config"
)

// ─── Helpers de test ───────────────────────────────────────────────────────────

type fakeBeginner struct {
	errs  []error
	calls int
}

func (f *fakeBeginner) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	f.calls++
	if len(f.errs) == 0 {
		return nil, nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return nil, err
}

func connRefused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func fastRetry(attempts int) config.RetryConfig {
	return config.RetryConfig{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

// ─── Tests ────────────────────────────────────────────────────────────────────

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"red", connRefused(), true},
		{"red envuelta", fmt.Errorf("begin: %w", connRefused()), true},
		{"servidor reiniciando", &pgconn.PgError{Code: "57P03"}, true},
		{"demasiadas conexiones", &pgconn.PgError{Code: "53300"}, true},
		{"conexión caída", &pgconn.PgError{Code: "08006"}, true},
		{"servidor rechazó la conexión", &pgconn.PgError{Code: "08004"}, true},
		{"violación única", &pgconn.PgError{Code: "23505"}, false},
		{"cancelado", context.Canceled, false},
		{"deadline", fmt.Errorf("dial: %w", context.DeadlineExceeded), false},
		{"pool cerrado", puddle.ErrClosedPool, false},
		{"otro", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestBegin_ReintentaFallosTransitorios(t *testing.T) {
	db := &fakeBeginner{errs: []error{connRefused(), connRefused()}}
	r := newTxRunner(db, fastRetry(3))

	_, err := r.begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, db.calls)
}

func TestBegin_AgotaIntentosDevuelveStoreUnavailable(t *testing.T) {
	db := &fakeBeginner{errs: []error{connRefused(), connRefused(), connRefused(), connRefused()}}
	r := newTxRunner(db, fastRetry(3))

	_, err := r.begin(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 3, db.calls)
}

func TestBegin_ReintentaExcepcionDeConexion(t *testing.T) {
	db := &fakeBeginner{errs: []error{&pgconn.PgError{Code: "08006"}}}
	r := newTxRunner(db, fastRetry(3))

	_, err := r.begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, db.calls)
}

func TestBegin_ErrorPermanenteNoSeReintenta(t *testing.T) {
	db := &fakeBeginner{errs: []error{&pgconn.PgError{Code: "28P01"}}}
	r := newTxRunner(db, fastRetry(5))

	_, err := r.begin(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 1, db.calls)
}

func TestBegin_SinReintentosConUnSoloIntento(t *testing.T) {
	db := &fakeBeginner{errs: []error{connRefused()}}
	r := newTxRunner(db, config.RetryConfig{})

	_, err := r.begin(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 1, db.calls)
}

func TestRun_CanceladoAntesDeEmpezar(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	db := &fakeBeginner{errs: []error{context.Canceled}}
	r := newTxRunner(db, fastRetry(3))

	_, err := r.begin(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}
