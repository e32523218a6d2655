package postgres

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/pkg/config"
)

var _ ledger.TxRunner = (*TxRunner)(nil)

// txBeginner lo mínimo del pool que necesita el runner.
type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	db     txBeginner
	retry  config.RetryConfig
	tracer trace.Tracer
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, retry config.RetryConfig) *TxRunner {
	return newTxRunner(pool, retry)
}

func newTxRunner(db txBeginner, retry config.RetryConfig) *TxRunner {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	return &TxRunner{db: db, retry: retry, tracer: otel.Tracer("github.com/jhoicas/sucursales-api/postgres")}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los errores de fn se devuelven sin envolver para que el llamador use errors.Is.
func (r *TxRunner) Run(ctx context.Context, fn func(s ledger.Stores) error) error {
	ctx, span := r.tracer.Start(ctx, "postgres.transaction")
	defer span.End()

	tx, err := r.begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "begin")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(Bind(tx)); err != nil {
		span.SetStatus(codes.Error, "rollback")
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit")
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// begin reintenta solo la apertura; una vez enviada la primera sentencia nada se reintenta.
func (r *TxRunner) begin(ctx context.Context) (pgx.Tx, error) {
	b := backoff.NewExponentialBackOff()
	if r.retry.InitialInterval > 0 {
		b.InitialInterval = r.retry.InitialInterval
	}
	if r.retry.MaxInterval > 0 {
		b.MaxInterval = r.retry.MaxInterval
	}
	op := func() (pgx.Tx, error) {
		tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
		if err != nil && !isTransient(err) {
			return nil, backoff.Permanent(err)
		}
		return tx, err
	}
	tx, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(uint(r.retry.MaxAttempts)))
	if err != nil {
		if isTransient(err) {
			return nil, fmt.Errorf("%w: begin transaction: %v", domain.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// Bind repositorios atados a q (pool para lecturas, tx dentro de Run).
func Bind(q Querier) ledger.Stores {
	return ledger.Stores{
		Items:     NewItemRepository(q),
		Logs:      NewInventoryLogRepository(q),
		Sales:     NewSaleRepository(q),
		Transfers: NewTransferRepository(q),
	}
}
