package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación del libro de stock sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, sku, barcode, name, category, material, cost, price, stock_actual, status, branch_id, created_at, updated_at`

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var i entity.InventoryItem
	err := row.Scan(
		&i.ID, &i.SKU, &i.Barcode, &i.Name, &i.Category, &i.Material, &i.Cost, &i.Price,
		&i.StockActual, &i.Status, &i.BranchID, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ItemRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.InventoryItem, error) {
	item, err := scanItem(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	return item, nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get item", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id)
}

// GetForUpdate obtiene el artículo y bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.getOne(ctx, "get item for update", `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
}

// FindInBranchForUpdate busca el artículo equivalente dentro de una sucursal (el más antiguo si hay varios).
// Las filas dadas de baja no cuentan como equivalentes.
func (r *ItemRepo) FindInBranchForUpdate(ctx context.Context, branchID, field, value string) (*entity.InventoryItem, error) {
	var column string
	switch field {
	case "sku":
		column = "sku"
	case "barcode":
		column = "barcode"
	default:
		return nil, fmt.Errorf("%w: campo de búsqueda %q", domain.ErrInvalidInput, field)
	}
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE branch_id = $1 AND ` + column + ` = $2 AND status <> 'removed'
		ORDER BY created_at, id
		LIMIT 1
		FOR UPDATE`
	return r.getOne(ctx, "find item in branch", query, branchID, value)
}

// Create inserta un artículo (copia materializada en otra sucursal).
func (r *ItemRepo) Create(ctx context.Context, i *entity.InventoryItem) error {
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.SKU, i.Barcode, i.Name, i.Category, i.Material, i.Cost, i.Price,
		i.StockActual, i.Status, i.BranchID, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return wrapErr("insert item", err)
	}
	return nil
}

// UpdateStock fija stock y estado ya calculados por el ledger.
func (r *ItemRepo) UpdateStock(ctx context.Context, id string, stock int, status entity.ItemStatus) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET stock_actual = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, stock, status)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return wrapErr("update item stock", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// UpdateCost actualiza el costo promedio ponderado.
func (r *ItemRepo) UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE inventory_items SET cost = $2, updated_at = now() WHERE id = $1`, id, cost)
	if err != nil {
		return wrapErr("update item cost", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}
