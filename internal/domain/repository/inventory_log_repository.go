package repository

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// InventoryLogRepository puerto del registro de movimientos: solo inserción y lectura.
type InventoryLogRepository interface {
	Append(ctx context.Context, entry *entity.InventoryLogEntry) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryLogEntry, error)
}
