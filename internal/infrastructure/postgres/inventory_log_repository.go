package postgres

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.InventoryLogRepository = (*InventoryLogRepo)(nil)

// InventoryLogRepo registro de movimientos (append-only).
type InventoryLogRepo struct {
	q Querier
}

// NewInventoryLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLogRepository(q Querier) *InventoryLogRepo {
	return &InventoryLogRepo{q: q}
}

// Append inserta una entrada.
func (r *InventoryLogRepo) Append(ctx context.Context, e *entity.InventoryLogEntry) error {
	query := `
		INSERT INTO inventory_logs (id, item_id, branch_id, action, quantity, stock_before, stock_after,
			reason, reference_type, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ItemID, e.BranchID, e.Action, e.Quantity, e.StockBefore, e.StockAfter,
		e.Reason, nullIfEmpty(e.ReferenceType), nullIfEmpty(e.ReferenceID), e.CreatedBy, e.CreatedAt,
	)
	if err != nil {
		return wrapErr("insert inventory log", err)
	}
	return nil
}

// ListByItem movimientos del artículo, más recientes primero. limit <= 0 devuelve todos.
func (r *InventoryLogRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryLogEntry, error) {
	query := `
		SELECT id, item_id, branch_id, action, quantity, stock_before, stock_after,
			reason, reference_type, reference_id, created_by, created_at
		FROM inventory_logs
		WHERE item_id = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT NULLIF($2, 0) OFFSET $3`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.q.Query(ctx, query, itemID, limit, offset)
	if err != nil {
		return nil, wrapErr("list inventory logs", err)
	}
	defer rows.Close()

	var out []*entity.InventoryLogEntry
	for rows.Next() {
		var (
			e              entity.InventoryLogEntry
			refType, refID *string
		)
		if err := rows.Scan(
			&e.ID, &e.ItemID, &e.BranchID, &e.Action, &e.Quantity, &e.StockBefore, &e.StockAfter,
			&e.Reason, &refType, &refID, &e.CreatedBy, &e.CreatedAt,
		); err != nil {
			return nil, wrapErr("scan inventory log", err)
		}
		e.ReferenceType, e.ReferenceID = emptyIfNull(refType), emptyIfNull(refID)
		out = append(out, &e)
	}
	return out, rows.Err()
}
