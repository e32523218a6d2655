// Package inventory expone las lecturas del libro de stock con el alcance de sucursal de quien llama.
package inventory

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// UseCase consultas de artículos y su historial de movimientos.
type UseCase struct {
	ledger *ledger.Ledger
}

// NewUseCase construye el caso de uso.
func NewUseCase(lg *ledger.Ledger) *UseCase {
	return &UseCase{ledger: lg}
}

// GetItem devuelve el artículo con su stock actual.
func (uc *UseCase) GetItem(ctx context.Context, p auth.Principal, id string) (*dto.InventoryItemResponse, error) {
	item, err := uc.visibleItem(ctx, p, id)
	if err != nil {
		return nil, err
	}
	resp := ledger.ItemResponse(item)
	return &resp, nil
}

// Movements página del registro de movimientos del artículo, más recientes primero.
func (uc *UseCase) Movements(ctx context.Context, p auth.Principal, id string, page dto.PageRequest) (*dto.InventoryMovementsResponse, error) {
	if _, err := uc.visibleItem(ctx, p, id); err != nil {
		return nil, err
	}
	page.DefaultPage()
	entries, err := uc.ledger.History(ctx, id, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.InventoryMovementsResponse{
		Items: make([]dto.InventoryMovementResponse, 0, len(entries)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, e := range entries {
		out.Items = append(out.Items, ledger.MovementResponse(e))
	}
	return out, nil
}

// visibleItem los artículos heredados (sin sucursal) solo los ve la administración global.
func (uc *UseCase) visibleItem(ctx context.Context, p auth.Principal, id string) (*entity.InventoryItem, error) {
	item, err := uc.ledger.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Legacy() {
		if !auth.IsGlobalAdmin(p) {
			return nil, domain.ErrForbidden
		}
		return item, nil
	}
	if !auth.CanAccessBranch(p, *item.BranchID) {
		return nil, domain.ErrForbidden
	}
	return item, nil
}
