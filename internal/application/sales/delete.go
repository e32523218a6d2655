package sales

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

// Delete elimina la venta devolviendo al stock la cantidad completa de cada línea de catálogo.
func (uc *UseCase) Delete(ctx context.Context, p auth.Principal, saleID string) error {
	ctx, span := uc.tracer.Start(ctx, "sales.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	if !auth.IsGlobalAdmin(p) {
		return uc.fail(span, "delete", domain.ErrForbidden)
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
		if lines, err = s.Sales.ListItems(ctx, sale.ID); err != nil {
			return err
		}
		if payments, err = s.Sales.ListPayments(ctx, sale.ID); err != nil {
			return err
		}
		if err := uc.ledger.Lock(ctx, s, catalogIDs(lines)...); err != nil {
			return err
		}
		for _, line := range lines {
			if line.ItemID == nil {
				continue
			}
			item, err := uc.ledger.Adjust(ctx, s, ledger.Adjustment{
				ItemID:        *line.ItemID,
				Delta:         line.Quantity,
				Action:        entity.LogActionDevolucion,
				Reason:        "venta eliminada " + sale.Folio,
				ActorID:       actor,
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   sale.ID,
			})
			if err != nil {
				return err
			}
			inv.AddOnce(item.ID, event.NewInventoryEvent(event.InventoryStockChanged, ledger.ItemResponse(item), item.BranchOrEmpty(), now))
		}
		if err := s.Sales.DeletePayments(ctx, sale.ID); err != nil {
			return err
		}
		if err := s.Sales.DeleteItems(ctx, sale.ID); err != nil {
			return err
		}
		return s.Sales.Delete(ctx, sale.ID)
	})
	if err != nil {
		return uc.fail(span, "delete", err)
	}

	resp := saleResponse(sale, lines, payments)
	uc.publisher.Publish(ctx, append([]event.Event{
		event.NewSaleEvent(event.SaleDeleted, resp, sale.BranchID, now),
	}, inv.Events()...)...)
	uc.log.Info().Str("sale_id", sale.ID).Str("folio", sale.Folio).Msg("venta eliminada")
	return nil
}
