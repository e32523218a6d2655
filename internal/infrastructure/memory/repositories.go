package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

var (
	_ repository.ItemRepository         = (*itemRepo)(nil)
	_ repository.InventoryLogRepository = (*logRepo)(nil)
	_ repository.SaleRepository         = (*saleRepo)(nil)
	_ repository.TransferRepository     = (*transferRepo)(nil)
	_ repository.BranchRepository       = (*branchRepo)(nil)
)

// ─── Artículos ───

type itemRepo struct{ v view }

func (r *itemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	st, done := r.v.read()
	defer done()
	i, ok := st.items[id]
	if !ok {
		return nil, nil
	}
	c := *i
	return &c, nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *itemRepo) FindInBranchForUpdate(_ context.Context, branchID, field, value string) (*entity.InventoryItem, error) {
	st, done := r.v.read()
	defer done()
	for _, id := range st.itemOrder {
		i := st.items[id]
		if !i.InBranch(branchID) || i.Status == entity.ItemStatusRemoved {
			continue
		}
		var key string
		switch field {
		case "sku":
			key = i.SKU
		case "barcode":
			key = i.Barcode
		default:
			return nil, fmt.Errorf("%w: campo de búsqueda %q", domain.ErrInvalidInput, field)
		}
		if key == value {
			c := *i
			return &c, nil
		}
	}
	return nil, nil
}

func (r *itemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.items[item.ID]; ok {
		return domain.ErrConflict
	}
	c := *item
	st.items[c.ID] = &c
	st.itemOrder = append(st.itemOrder, c.ID)
	return nil
}

func (r *itemRepo) UpdateStock(_ context.Context, id string, stock int, status entity.ItemStatus) error {
	st, done := r.v.write()
	defer done()
	i, ok := st.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	i.StockActual = stock
	i.Status = status
	return nil
}

func (r *itemRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	st, done := r.v.write()
	defer done()
	i, ok := st.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	i.Cost = cost
	return nil
}

// ─── Registro de movimientos ───

type logRepo struct{ v view }

func (r *logRepo) Append(_ context.Context, e *entity.InventoryLogEntry) error {
	st, done := r.v.write()
	defer done()
	c := *e
	st.logs = append(st.logs, &c)
	return nil
}

func (r *logRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.InventoryLogEntry, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.InventoryLogEntry
	skipped := 0
	for i := len(st.logs) - 1; i >= 0; i-- {
		e := st.logs[i]
		if e.ItemID != itemID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		c := *e
		out = append(out, &c)
	}
	return out, nil
}

// ─── Ventas ───

type saleRepo struct{ v view }

func (r *saleRepo) Create(_ context.Context, sale *entity.Sale) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.sales[sale.ID]; ok {
		return domain.ErrConflict
	}
	for _, s := range st.sales {
		if s.Folio == sale.Folio {
			return fmt.Errorf("%w: folio %s", domain.ErrConflict, sale.Folio)
		}
	}
	c := *sale
	st.sales[c.ID] = &c
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	st, done := r.v.read()
	defer done()
	s, ok := st.sales[id]
	if !ok {
		return nil, nil
	}
	c := *s
	return &c, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) Update(_ context.Context, sale *entity.Sale) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.sales[sale.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *sale
	st.sales[c.ID] = &c
	return nil
}

func (r *saleRepo) Delete(_ context.Context, id string) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(st.sales, id)
	return nil
}

func (r *saleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	st, done := r.v.write()
	defer done()
	c := *item
	st.saleItems = append(st.saleItems, &c)
	return nil
}

func (r *saleRepo) UpdateItem(_ context.Context, item *entity.SaleItem) error {
	st, done := r.v.write()
	defer done()
	for i, si := range st.saleItems {
		if si.ID == item.ID {
			c := *item
			st.saleItems[i] = &c
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *saleRepo) DeleteItem(_ context.Context, id string) error {
	st, done := r.v.write()
	defer done()
	st.saleItems = slices.DeleteFunc(st.saleItems, func(si *entity.SaleItem) bool { return si.ID == id })
	return nil
}

func (r *saleRepo) DeleteItems(_ context.Context, saleID string) error {
	st, done := r.v.write()
	defer done()
	st.saleItems = slices.DeleteFunc(st.saleItems, func(si *entity.SaleItem) bool { return si.SaleID == saleID })
	return nil
}

func (r *saleRepo) ListItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.SaleItem
	for _, si := range st.saleItems {
		if si.SaleID == saleID {
			c := *si
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *saleRepo) CreatePayment(_ context.Context, p *entity.Payment) error {
	st, done := r.v.write()
	defer done()
	c := *p
	st.payments = append(st.payments, &c)
	return nil
}

func (r *saleRepo) DeletePayments(_ context.Context, saleID string) error {
	st, done := r.v.write()
	defer done()
	st.payments = slices.DeleteFunc(st.payments, func(p *entity.Payment) bool { return p.SaleID == saleID })
	return nil
}

func (r *saleRepo) ListPayments(_ context.Context, saleID string) ([]*entity.Payment, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.Payment
	for _, p := range st.payments {
		if p.SaleID == saleID {
			c := *p
			out = append(out, &c)
		}
	}
	return out, nil
}

// ─── Traspasos ───

type transferRepo struct{ v view }

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.transfers[t.ID]; ok {
		return domain.ErrConflict
	}
	c := *t
	st.transfers[c.ID] = &c
	st.transferOrder = append(st.transferOrder, c.ID)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	st, done := r.v.read()
	defer done()
	t, ok := st.transfers[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *transferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) Update(_ context.Context, t *entity.Transfer) error {
	st, done := r.v.write()
	defer done()
	if _, ok := st.transfers[t.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *t
	st.transfers[c.ID] = &c
	return nil
}

// List más recientes primero.
func (r *transferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.Transfer
	skipped := 0
	for i := len(st.transferOrder) - 1; i >= 0; i-- {
		t := st.transfers[st.transferOrder[i]]
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if len(f.BranchIDs) > 0 && !slices.Contains(f.BranchIDs, t.FromBranchID) && !slices.Contains(f.BranchIDs, t.ToBranchID) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

func (r *transferRepo) CreateItem(_ context.Context, item *entity.TransferItem) error {
	st, done := r.v.write()
	defer done()
	c := *item
	st.transferItems = append(st.transferItems, &c)
	return nil
}

func (r *transferRepo) ListItems(_ context.Context, transferID string) ([]*entity.TransferItem, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.TransferItem
	for _, ti := range st.transferItems {
		if ti.TransferID == transferID {
			c := *ti
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *transferRepo) SetItemDestination(_ context.Context, itemID, destinationItemID string) error {
	st, done := r.v.write()
	defer done()
	for _, ti := range st.transferItems {
		if ti.ID == itemID {
			d := destinationItemID
			ti.DestinationItemID = &d
			return nil
		}
	}
	return domain.ErrNotFound
}

// ─── Sucursales ───

type branchRepo struct{ v view }

func (r *branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	st, done := r.v.read()
	defer done()
	b, ok := st.branches[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *branchRepo) ListActive(_ context.Context) ([]*entity.Branch, error) {
	st, done := r.v.read()
	defer done()
	var out []*entity.Branch
	for _, id := range st.branchOrder {
		if b := st.branches[id]; b.Active {
			c := *b
			out = append(out, &c)
		}
	}
	return out, nil
}
