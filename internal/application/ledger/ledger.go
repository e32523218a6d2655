package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/inventory"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// ScopeCheck valida que el artículo bloqueado pueda moverse desde el contexto del llamador.
type ScopeCheck func(item *entity.InventoryItem) error

// BranchScope exige que el artículo sea de la sucursal; si allowLegacy, también acepta artículos sin sucursal.
func BranchScope(branchID string, allowLegacy bool) ScopeCheck {
	return func(item *entity.InventoryItem) error {
		if item.InBranch(branchID) || (allowLegacy && item.Legacy()) {
			return nil
		}
		return domain.ErrItemNotInBranch
	}
}

// Adjustment un movimiento de stock sobre un artículo.
type Adjustment struct {
	ItemID  string
	Delta   int
	Action  entity.LogAction
	Reason  string
	ActorID string
	Scope   ScopeCheck
	// RequireAvailable rechaza con ErrItemNotAvailable si el estado no es available (tras validar stock).
	RequireAvailable bool
	ReferenceType    string
	ReferenceID      string
}

// Ledger libro de stock: estado actual + registro de movimientos. Toda mutación ocurre dentro de una tx.
type Ledger struct {
	items repository.ItemRepository
	logs  repository.InventoryLogRepository
	now   func() time.Time
}

// New construye el ledger con los repositorios fuera de transacción (lecturas).
func New(items repository.ItemRepository, logs repository.InventoryLogRepository) *Ledger {
	return &Ledger{items: items, logs: logs, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Now hora actual según el reloj del ledger.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// GetItem lee un artículo fuera de transacción.
func (l *Ledger) GetItem(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := l.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

// History movimientos de un artículo, más recientes primero.
func (l *Ledger) History(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryLogEntry, error) {
	return l.logs.ListByItem(ctx, itemID, limit, offset)
}

// Lock bloquea los artículos en orden ascendente de id. Toda transacción que mueve varios artículos
// los bloquea así antes de ajustarlos. Los ids inexistentes se ignoran; Adjust los reporta en su línea.
func (l *Ledger) Lock(ctx context.Context, s Stores, ids ...string) error {
	sorted := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	for _, id := range sorted {
		if _, err := s.Items.GetForUpdate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Adjust bloquea la fila, valida alcance y stock, aplica la regla de estado y registra el movimiento.
// Devuelve el artículo ya actualizado.
func (l *Ledger) Adjust(ctx context.Context, s Stores, adj Adjustment) (*entity.InventoryItem, error) {
	if adj.Delta == 0 {
		return nil, fmt.Errorf("%w: delta cero", domain.ErrInvalidInput)
	}
	item, err := s.Items.GetForUpdate(ctx, adj.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	if adj.Scope != nil {
		if err := adj.Scope(item); err != nil {
			return nil, err
		}
	}
	mov, err := inventory.Apply(item, adj.Delta)
	if err != nil {
		return nil, err
	}
	if adj.RequireAvailable && item.Status != entity.ItemStatusAvailable {
		return nil, domain.ErrItemNotAvailable
	}
	if err := s.Items.UpdateStock(ctx, item.ID, mov.StockAfter, mov.Status); err != nil {
		return nil, err
	}
	now := l.now()
	if err := s.Logs.Append(ctx, &entity.InventoryLogEntry{
		ID:            uuid.New().String(),
		ItemID:        item.ID,
		BranchID:      item.BranchID,
		Action:        adj.Action,
		Quantity:      adj.Delta,
		StockBefore:   mov.StockBefore,
		StockAfter:    mov.StockAfter,
		Reason:        adj.Reason,
		ReferenceType: adj.ReferenceType,
		ReferenceID:   adj.ReferenceID,
		CreatedBy:     adj.ActorID,
		CreatedAt:     now,
	}); err != nil {
		return nil, err
	}
	item.StockActual = mov.StockAfter
	item.Status = mov.Status
	item.UpdatedAt = now
	return item, nil
}

// Receive suma unidades a un artículo existente recalculando su costo promedio ponderado.
func (l *Ledger) Receive(ctx context.Context, s Stores, adj Adjustment, incomingCost decimal.Decimal) (*entity.InventoryItem, error) {
	if adj.Delta <= 0 {
		return nil, fmt.Errorf("%w: una entrada debe ser positiva", domain.ErrInvalidInput)
	}
	current, err := s.Items.GetForUpdate(ctx, adj.ItemID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrItemNotFound
	}
	newCost := inventory.CostCalculator(current.StockActual, current.Cost, adj.Delta, incomingCost)
	if !newCost.Equal(current.Cost) {
		if err := s.Items.UpdateCost(ctx, current.ID, newCost); err != nil {
			return nil, err
		}
	}
	item, err := l.Adjust(ctx, s, adj)
	if err != nil {
		return nil, err
	}
	item.Cost = newCost
	return item, nil
}

// Materialize crea en la sucursal destino una copia completa del artículo con qty unidades y estado available.
func (l *Ledger) Materialize(ctx context.Context, s Stores, template *entity.InventoryItem, branchID string, qty int, adj Adjustment) (*entity.InventoryItem, error) {
	if qty <= 0 {
		return nil, fmt.Errorf("%w: cantidad inválida", domain.ErrInvalidInput)
	}
	now := l.now()
	branch := branchID
	copyItem := &entity.InventoryItem{
		ID:          uuid.New().String(),
		SKU:         template.SKU,
		Barcode:     template.Barcode,
		Name:        template.Name,
		Category:    template.Category,
		Material:    template.Material,
		Cost:        template.Cost,
		Price:       template.Price,
		StockActual: qty,
		Status:      entity.ItemStatusAvailable,
		BranchID:    &branch,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Items.Create(ctx, copyItem); err != nil {
		return nil, err
	}
	if err := s.Logs.Append(ctx, &entity.InventoryLogEntry{
		ID:            uuid.New().String(),
		ItemID:        copyItem.ID,
		BranchID:      copyItem.BranchID,
		Action:        adj.Action,
		Quantity:      qty,
		StockBefore:   0,
		StockAfter:    qty,
		Reason:        adj.Reason,
		ReferenceType: adj.ReferenceType,
		ReferenceID:   adj.ReferenceID,
		CreatedBy:     adj.ActorID,
		CreatedAt:     now,
	}); err != nil {
		return nil, err
	}
	return copyItem, nil
}
