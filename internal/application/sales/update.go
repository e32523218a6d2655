package sales

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

// Update edita una venta. Solo administración global y solo el mismo día (zona del negocio) en que se creó.
// Las disminuciones devuelven stock y los aumentos validan únicamente el incremento; cualquier fallo revierte todo.
func (uc *UseCase) Update(ctx context.Context, p auth.Principal, saleID string, in dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "sales.Update")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	if !auth.IsGlobalAdmin(p) {
		return nil, uc.fail(span, "update", domain.ErrForbidden)
	}
	v := &domain.ValidationError{}
	if in.Items != nil {
		validateLines(v, in.Items)
	}
	validatePayments(v, in.Payments)
	if err := v.OrNil(); err != nil {
		return nil, uc.fail(span, "update", err)
	}

	now := uc.ledger.Now()
	actor := auth.ActorID(p)
	var (
		sale     *entity.Sale
		lines    []*entity.SaleItem
		payments []*entity.Payment
		inv      event.Collector
	)
	err := uc.tx.Run(ctx, func(s ledger.Stores) error {
		inv = event.Collector{}
		var err error
		sale, err = orNotFound(s.Sales.GetForUpdate(ctx, saleID))
		if err != nil {
			return err
		}
		if !sameDay(sale.CreatedAt, now, uc.loc) {
			return domain.ErrEditWindowExpired
		}
		originals, err := s.Sales.ListItems(ctx, sale.ID)
		if err != nil {
			return err
		}
		if in.Items != nil {
			plan, err := planLines(originals, in.Items)
			if err != nil {
				return err
			}
			ed := editor{uc: uc, s: s, sale: sale, actor: actor, inv: &inv}
			if err := ed.apply(ctx, plan); err != nil {
				return err
			}
		}
		if lines, err = s.Sales.ListItems(ctx, sale.ID); err != nil {
			return err
		}

		if in.Payments != nil {
			if err := s.Sales.DeletePayments(ctx, sale.ID); err != nil {
				return err
			}
			for _, pay := range newPayments(sale.ID, sale.Currency, in.Payments, now) {
				if err := s.Sales.CreatePayment(ctx, pay); err != nil {
					return err
				}
			}
		}
		if payments, err = s.Sales.ListPayments(ctx, sale.ID); err != nil {
			return err
		}

		applyHeader(sale, in)
		discountAmount, discountPercent := in.DiscountAmount, in.DiscountPercent
		if discountAmount == nil && discountPercent == nil {
			current := sale.DiscountAmount
			discountAmount = &current
		}
		t, err := computeTotals(lines, discountAmount, discountPercent)
		if err != nil {
			return err
		}
		sale.Subtotal, sale.DiscountAmount, sale.Total = t.Subtotal, t.DiscountAmount, t.Total
		sale.UpdatedAt = now
		return s.Sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, uc.fail(span, "update", err)
	}

	resp := saleResponse(sale, lines, payments)
	uc.publisher.Publish(ctx, append([]event.Event{
		event.NewSaleEvent(event.SaleEdited, resp, sale.BranchID, now),
	}, inv.Events()...)...)
	uc.log.Info().Str("sale_id", sale.ID).Str("folio", sale.Folio).Int("items_changed", len(inv.Events())).
		Msg("venta editada")
	return &resp, nil
}

// applyHeader actualiza los campos opcionales; una cadena vacía limpia la referencia.
func applyHeader(sale *entity.Sale, in dto.UpdateSaleRequest) {
	set := func(dst **string, src *string) {
		if src == nil {
			return
		}
		if *src == "" {
			*dst = nil
			return
		}
		v := *src
		*dst = &v
	}
	set(&sale.SellerID, in.SellerID)
	set(&sale.GuideID, in.GuideID)
	set(&sale.AgencyID, in.AgencyID)
	set(&sale.CustomerID, in.CustomerID)
	if in.Notes != nil {
		sale.Notes = *in.Notes
	}
}

// linePair línea original emparejada con su versión enviada.
type linePair struct {
	orig *entity.SaleItem
	req  dto.SaleItemRequest
}

// linePlan diferencia entre las líneas guardadas y las enviadas.
type linePlan struct {
	kept    []linePair
	added   []dto.SaleItemRequest
	removed []*entity.SaleItem
}

// itemIDs artículos de catálogo que el plan puede mover.
func (p linePlan) itemIDs() []string {
	var ids []string
	for _, o := range p.removed {
		ids = append(ids, o.CatalogItemID())
	}
	for _, k := range p.kept {
		ids = append(ids, k.orig.CatalogItemID())
	}
	for _, r := range p.added {
		ids = append(ids, requestItemID(r))
	}
	return ids
}

func requestItemID(r dto.SaleItemRequest) string {
	if r.ItemID == nil {
		return ""
	}
	return *r.ItemID
}

// planLines empareja por id de línea; si no hay id, con la primera línea libre del mismo artículo.
// Lo no emparejado se agrega; los originales sobrantes se eliminan. Cambiar el artículo de una línea
// equivale a eliminarla y agregar otra.
func planLines(originals []*entity.SaleItem, reqs []dto.SaleItemRequest) (linePlan, error) {
	byID := make(map[string]*entity.SaleItem, len(originals))
	for _, o := range originals {
		byID[o.ID] = o
	}
	used := make(map[string]bool, len(originals))
	pairs := make([]*entity.SaleItem, len(reqs))

	v := &domain.ValidationError{}
	for i, r := range reqs {
		if r.ID == "" {
			continue
		}
		o, ok := byID[r.ID]
		switch {
		case !ok:
			v.Add(fmt.Sprintf("items[%d].id", i), "la línea no pertenece a la venta")
		case used[o.ID]:
			v.Add(fmt.Sprintf("items[%d].id", i), "línea repetida")
		default:
			used[o.ID] = true
			pairs[i] = o
		}
	}
	if err := v.OrNil(); err != nil {
		return linePlan{}, err
	}
	for i, r := range reqs {
		itemID := requestItemID(r)
		if r.ID != "" || itemID == "" {
			continue
		}
		for _, o := range originals {
			if !used[o.ID] && o.CatalogItemID() == itemID {
				used[o.ID] = true
				pairs[i] = o
				break
			}
		}
	}

	var plan linePlan
	for i, r := range reqs {
		o := pairs[i]
		switch {
		case o == nil:
			plan.added = append(plan.added, r)
		case o.CatalogItemID() != requestItemID(r):
			plan.removed = append(plan.removed, o)
			plan.added = append(plan.added, r)
		default:
			plan.kept = append(plan.kept, linePair{orig: o, req: r})
		}
	}
	for _, o := range originals {
		if !used[o.ID] {
			plan.removed = append(plan.removed, o)
		}
	}
	return plan, nil
}

// editor aplica un linePlan dentro de la transacción.
type editor struct {
	uc    *UseCase
	s     ledger.Stores
	sale  *entity.Sale
	actor string
	inv   *event.Collector
}

// apply primero devuelve stock y luego descuenta, para que lo liberado quede disponible.
func (e editor) apply(ctx context.Context, plan linePlan) error {
	if err := e.uc.ledger.Lock(ctx, e.s, plan.itemIDs()...); err != nil {
		return err
	}
	for _, o := range plan.removed {
		if o.ItemID != nil {
			if err := e.move(ctx, *o.ItemID, o.Quantity, entity.LogActionAjusteEdicionVenta); err != nil {
				return err
			}
		}
		if err := e.s.Sales.DeleteItem(ctx, o.ID); err != nil {
			return err
		}
	}
	for _, k := range plan.kept {
		if delta := k.orig.Quantity - k.req.Quantity; delta > 0 && k.orig.ItemID != nil {
			if err := e.move(ctx, *k.orig.ItemID, delta, entity.LogActionAjusteEdicionVenta); err != nil {
				return err
			}
		}
	}
	for _, k := range plan.kept {
		if delta := k.req.Quantity - k.orig.Quantity; delta > 0 && k.orig.ItemID != nil {
			if err := e.move(ctx, *k.orig.ItemID, -delta, entity.LogActionVentaEdicion); err != nil {
				return err
			}
		}
		line := k.orig
		line.Quantity = k.req.Quantity
		line.UnitPrice = k.req.UnitPrice
		line.DiscountPercent = k.req.DiscountPercent
		line.CommissionPercent = k.req.CommissionPercent
		if k.req.SKU != "" {
			line.SKU = k.req.SKU
		}
		if k.req.Description != "" {
			line.Description = k.req.Description
		}
		priceLine(line)
		if err := e.s.Sales.UpdateItem(ctx, line); err != nil {
			return err
		}
	}
	for _, r := range plan.added {
		line := newLine(e.sale.ID, r)
		if line.ItemID != nil {
			item, err := e.uc.ledger.Adjust(ctx, e.s, e.adjustment(*line.ItemID, -line.Quantity, entity.LogActionVentaEdicion))
			if err != nil {
				return err
			}
			fillFromCatalog(line, item)
			e.record(item)
		}
		if err := e.s.Sales.CreateItem(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (e editor) move(ctx context.Context, itemID string, delta int, action entity.LogAction) error {
	item, err := e.uc.ledger.Adjust(ctx, e.s, e.adjustment(itemID, delta, action))
	if err != nil {
		return err
	}
	e.record(item)
	return nil
}

func (e editor) adjustment(itemID string, delta int, action entity.LogAction) ledger.Adjustment {
	adj := ledger.Adjustment{
		ItemID:        itemID,
		Delta:         delta,
		Action:        action,
		Reason:        "edición de venta " + e.sale.Folio,
		ActorID:       e.actor,
		ReferenceType: entity.ReferenceSale,
		ReferenceID:   e.sale.ID,
	}
	if delta < 0 {
		adj.Scope = ledger.BranchScope(e.sale.BranchID, true)
		adj.RequireAvailable = true
	}
	return adj
}

func (e editor) record(item *entity.InventoryItem) {
	e.inv.AddOnce(item.ID, event.NewInventoryEvent(event.InventoryStockChanged, ledger.ItemResponse(item), item.BranchOrEmpty(), e.uc.ledger.Now()))
}
