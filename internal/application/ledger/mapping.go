package ledger

import (
	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// ItemResponse convierte el artículo a su representación pública (también es la entidad de inventory_updated).
func ItemResponse(i *entity.InventoryItem) dto.InventoryItemResponse {
	return dto.InventoryItemResponse{
		ID:          i.ID,
		SKU:         i.SKU,
		Barcode:     i.Barcode,
		Name:        i.Name,
		Category:    i.Category,
		Material:    i.Material,
		Cost:        i.Cost,
		Price:       i.Price,
		StockActual: i.StockActual,
		Status:      string(i.Status),
		BranchID:    i.BranchID,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// MovementResponse convierte una entrada del registro de movimientos.
func MovementResponse(e *entity.InventoryLogEntry) dto.InventoryMovementResponse {
	return dto.InventoryMovementResponse{
		ID:            e.ID,
		ItemID:        e.ItemID,
		BranchID:      e.BranchID,
		Action:        string(e.Action),
		Quantity:      e.Quantity,
		StockBefore:   e.StockBefore,
		StockAfter:    e.StockAfter,
		Reason:        e.Reason,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
	}
}
