package sales

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

// Create registra la venta: descuenta stock de cada línea de catálogo, guarda cabecera, líneas y pagos.
// Si cualquier línea falla no queda ningún cambio.
func (uc *UseCase) Create(ctx context.Context, p auth.Principal, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "sales.Create")
	defer span.End()

	if !auth.CanWrite(p) {
		return nil, uc.fail(span, "create", domain.ErrForbidden)
	}
	branchID, err := resolveBranch(p, in.BranchID)
	if err != nil {
		return nil, uc.fail(span, "create", err)
	}
	span.SetAttributes(attribute.String("branch.id", branchID))

	v := &domain.ValidationError{}
	validateLines(v, in.Items)
	validatePayments(v, in.Payments)
	if err := v.OrNil(); err != nil {
		return nil, uc.fail(span, "create", err)
	}

	now := uc.ledger.Now()
	currency := in.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	sale := &entity.Sale{
		ID:         uuid.New().String(),
		Folio:      newFolio(now.In(uc.loc)),
		BranchID:   branchID,
		SellerID:   in.SellerID,
		GuideID:    in.GuideID,
		AgencyID:   in.AgencyID,
		CustomerID: in.CustomerID,
		Currency:   currency,
		Status:     entity.SaleStatusCompleted,
		Notes:      in.Notes,
		CreatedBy:  auth.ActorID(p),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	lines := make([]*entity.SaleItem, 0, len(in.Items))
	for _, l := range in.Items {
		lines = append(lines, newLine(sale.ID, l))
	}
	t, err := computeTotals(lines, in.DiscountAmount, in.DiscountPercent)
	if err != nil {
		return nil, uc.fail(span, "create", err)
	}
	sale.Subtotal, sale.DiscountAmount, sale.Total = t.Subtotal, t.DiscountAmount, t.Total
	payments := newPayments(sale.ID, currency, in.Payments, now)

	var inv event.Collector
	err = uc.tx.Run(ctx, func(s ledger.Stores) error {
		inv = event.Collector{}
		if err := uc.ledger.Lock(ctx, s, catalogIDs(lines)...); err != nil {
			return err
		}
		for _, line := range lines {
			if line.ItemID == nil {
				continue
			}
			item, err := uc.ledger.Adjust(ctx, s, ledger.Adjustment{
				ItemID:           *line.ItemID,
				Delta:            -line.Quantity,
				Action:           entity.LogActionVenta,
				Reason:           "venta " + sale.Folio,
				ActorID:          sale.CreatedBy,
				Scope:            ledger.BranchScope(branchID, true),
				RequireAvailable: true,
				ReferenceType:    entity.ReferenceSale,
				ReferenceID:      sale.ID,
			})
			if err != nil {
				return err
			}
			fillFromCatalog(line, item)
			inv.AddOnce(item.ID, event.NewInventoryEvent(event.InventoryStockChanged, ledger.ItemResponse(item), item.BranchOrEmpty(), now))
		}
		if err := s.Sales.Create(ctx, sale); err != nil {
			return err
		}
		for _, line := range lines {
			if err := s.Sales.CreateItem(ctx, line); err != nil {
				return err
			}
		}
		for _, pay := range payments {
			if err := s.Sales.CreatePayment(ctx, pay); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(span, "create", err)
	}

	resp := saleResponse(sale, lines, payments)
	uc.publisher.Publish(ctx, append([]event.Event{
		event.NewSaleEvent(event.SaleCreated, resp, sale.BranchID, now),
	}, inv.Events()...)...)
	uc.log.Info().Str("sale_id", sale.ID).Str("folio", sale.Folio).Str("branch_id", branchID).
		Str("total", sale.Total.StringFixed(2)).Msg("venta registrada")
	return &resp, nil
}
