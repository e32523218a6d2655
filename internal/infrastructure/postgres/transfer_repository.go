package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traspasos y sus líneas sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, from_branch_id, to_branch_id, status, notes, created_by, approved_by, completed_by,
	cancelled_by, cancel_reason, created_at, approved_at, completed_at, cancelled_at, updated_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var t entity.Transfer
	err := row.Scan(
		&t.ID, &t.FromBranchID, &t.ToBranchID, &t.Status, &t.Notes, &t.CreatedBy, &t.ApprovedBy, &t.CompletedBy,
		&t.CancelledBy, &t.CancelReason, &t.CreatedAt, &t.ApprovedAt, &t.CompletedAt, &t.CancelledAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserta el traspaso.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.FromBranchID, t.ToBranchID, t.Status, t.Notes, t.CreatedBy, t.ApprovedBy, t.CompletedBy,
		t.CancelledBy, t.CancelReason, t.CreatedAt, t.ApprovedAt, t.CompletedAt, t.CancelledAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapErr("insert transfer", err)
	}
	return nil
}

func (r *TransferRepo) getOne(ctx context.Context, op, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return t, nil
}

// GetByID obtiene el traspaso.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, "get transfer", `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate obtiene el traspaso y bloquea la fila: dos finalizaciones concurrentes se serializan aquí.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.getOne(ctx, "get transfer for update", `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste estado y auditoría de la transición.
func (r *TransferRepo) Update(ctx context.Context, t *entity.Transfer) error {
	query := `
		UPDATE transfers SET status = $2, notes = $3, approved_by = $4, completed_by = $5, cancelled_by = $6,
			cancel_reason = $7, approved_at = $8, completed_at = $9, cancelled_at = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		t.ID, t.Status, t.Notes, t.ApprovedBy, t.CompletedBy, t.CancelledBy,
		t.CancelReason, t.ApprovedAt, t.CompletedAt, t.CancelledAt, t.UpdatedAt,
	)
	if err != nil {
		return wrapErr("update transfer", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List traspasos filtrados, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var (
		where []string
		args  []any
	)
	if len(f.BranchIDs) > 0 {
		args = append(args, f.BranchIDs)
		n := len(args)
		where = append(where, fmt.Sprintf("(from_branch_id = ANY($%d) OR to_branch_id = ANY($%d))", n, n))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + transferColumns + ` FROM transfers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT NULLIF($%d, 0) OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list transfers", err)
	}
	defer rows.Close()

	var out []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, wrapErr("scan transfer", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateItem inserta una línea.
func (r *TransferRepo) CreateItem(ctx context.Context, it *entity.TransferItem) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO transfer_items (id, transfer_id, item_id, quantity, destination_item_id) VALUES ($1, $2, $3, $4, $5)`,
		it.ID, it.TransferID, it.ItemID, it.Quantity, it.DestinationItemID)
	if err != nil {
		return wrapErr("insert transfer item", err)
	}
	return nil
}

// ListItems líneas en orden de captura.
func (r *TransferRepo) ListItems(ctx context.Context, transferID string) ([]*entity.TransferItem, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, item_id, quantity, destination_item_id
		FROM transfer_items WHERE transfer_id = $1 ORDER BY seq`, transferID)
	if err != nil {
		return nil, wrapErr("list transfer items", err)
	}
	defer rows.Close()

	var out []*entity.TransferItem
	for rows.Next() {
		var it entity.TransferItem
		if err := rows.Scan(&it.ID, &it.TransferID, &it.ItemID, &it.Quantity, &it.DestinationItemID); err != nil {
			return nil, wrapErr("scan transfer item", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

// SetItemDestination registra el artículo destino de la línea al completar.
func (r *TransferRepo) SetItemDestination(ctx context.Context, itemID, destinationItemID string) error {
	tag, err := r.q.Exec(ctx, `UPDATE transfer_items SET destination_item_id = $2 WHERE id = $1`, itemID, destinationItemID)
	if err != nil {
		return wrapErr("set transfer item destination", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
