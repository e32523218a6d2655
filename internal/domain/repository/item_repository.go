package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// ItemRepository define el puerto del libro de stock para artículos (DIP).
// Get* devuelven (nil, nil) si el artículo no existe.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	// FindInBranchForUpdate busca por sku o barcode dentro de una sucursal y bloquea la fila.
	FindInBranchForUpdate(ctx context.Context, branchID, field, value string) (*entity.InventoryItem, error)
	Create(ctx context.Context, item *entity.InventoryItem) error
	UpdateStock(ctx context.Context, id string, stock int, status entity.ItemStatus) error
	UpdateCost(ctx context.Context, id string, cost decimal.Decimal) error
}
