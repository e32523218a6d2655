package inventory

import (
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// NextStatus regla única de estado tras un movimiento de stock:
// una baja manual (removed) se conserva; en otro caso available si hay stock, sold si llegó a cero.
func NextStatus(current entity.ItemStatus, stock int) entity.ItemStatus {
	if current == entity.ItemStatusRemoved {
		return entity.ItemStatusRemoved
	}
	if stock > 0 {
		return entity.ItemStatusAvailable
	}
	return entity.ItemStatusSold
}

// Movement resultado de aplicar un delta al stock de un artículo.
type Movement struct {
	StockBefore int
	StockAfter  int
	Status      entity.ItemStatus
}

// Apply calcula el nuevo stock y estado. Falla con ErrInsufficientStock si el resultado sería negativo.
// No modifica el artículo.
func Apply(item *entity.InventoryItem, delta int) (Movement, error) {
	after := item.StockActual + delta
	if after < 0 {
		return Movement{}, domain.ErrInsufficientStock
	}
	return Movement{
		StockBefore: item.StockActual,
		StockAfter:  after,
		Status:      NextStatus(item.Status, after),
	}, nil
}
