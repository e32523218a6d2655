package transfers

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

// Complete approved → completed. Por cada línea revalida el stock de origen, lo descuenta y suma la
// cantidad al artículo equivalente del destino (mismo SKU, o código de barras si no hay SKU).
// Si no existe equivalente se crea una copia en el destino.
func (uc *UseCase) Complete(ctx context.Context, p auth.Principal, id string) (*dto.TransferResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "transfers.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.id", id))

	now := uc.ledger.Now()
	actor := auth.ActorID(p)
	var (
		t     *entity.Transfer
		items []*entity.TransferItem
		inv   event.Collector
	)
	err := uc.tx.Run(ctx, func(s ledger.Stores) error {
		inv = event.Collector{}
		var err error
		if t, err = lockTransfer(ctx, s, id); err != nil {
			return err
		}
		if !canOperateDestination(p, t) {
			return domain.ErrForbidden
		}
		if !t.Status.CanTransitionTo(entity.TransferCompleted) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidState, t.Status, entity.TransferCompleted)
		}
		if items, err = s.Transfers.ListItems(ctx, t.ID); err != nil {
			return err
		}
		origins := make([]string, 0, len(items))
		for _, line := range items {
			origins = append(origins, line.ItemID)
		}
		if err := uc.ledger.Lock(ctx, s, origins...); err != nil {
			return err
		}
		mv := mover{uc: uc, s: s, t: t, actor: actor, inv: &inv, created: map[string]bool{}}
		for _, line := range items {
			destID, err := mv.move(ctx, line)
			if err != nil {
				return err
			}
			if err := s.Transfers.SetItemDestination(ctx, line.ID, destID); err != nil {
				return err
			}
			line.DestinationItemID = &destID
		}
		t.Status = entity.TransferCompleted
		t.CompletedBy = &actor
		t.CompletedAt = &now
		t.UpdatedAt = now
		return s.Transfers.Update(ctx, t)
	})
	if err != nil {
		return nil, uc.fail(span, "complete", err)
	}

	resp := transferResponse(t, items)
	uc.publisher.Publish(ctx, append([]event.Event{
		event.NewTransferEvent(event.TransferCompleted, resp, t.FromBranchID, now),
		event.NewTransferEvent(event.TransferCompleted, resp, t.ToBranchID, now),
	}, inv.Events()...)...)
	uc.log.Info().Str("transfer_id", t.ID).Str("from", t.FromBranchID).Str("to", t.ToBranchID).
		Int("lines", len(items)).Msg("traspaso completado")
	return &resp, nil
}

// mover traslada las líneas de un traspaso dentro de la transacción.
type mover struct {
	uc      *UseCase
	s       ledger.Stores
	t       *entity.Transfer
	actor   string
	inv     *event.Collector
	created map[string]bool
}

// move descuenta en origen y suma en destino; devuelve el artículo destino.
func (m mover) move(ctx context.Context, line *entity.TransferItem) (string, error) {
	lg := m.uc.ledger
	origin, err := lg.Adjust(ctx, m.s, ledger.Adjustment{
		ItemID:        line.ItemID,
		Delta:         -line.Quantity,
		Action:        entity.LogActionTransferenciaSalida,
		Reason:        "traspaso a sucursal " + m.t.ToBranchID,
		ActorID:       m.actor,
		Scope:         ledger.BranchScope(m.t.FromBranchID, false),
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   m.t.ID,
	})
	if err != nil {
		return "", err
	}
	now := lg.Now()
	m.inv.AddOnce(origin.ID, event.NewInventoryEvent(event.InventoryStockChanged, ledger.ItemResponse(origin), m.t.FromBranchID, now))

	in := ledger.Adjustment{
		Delta:         line.Quantity,
		Action:        entity.LogActionTransferenciaEntrada,
		Reason:        "traspaso desde sucursal " + m.t.FromBranchID,
		ActorID:       m.actor,
		ReferenceType: entity.ReferenceTransfer,
		ReferenceID:   m.t.ID,
	}
	var dest *entity.InventoryItem
	if field, value := origin.MatchKey(); field != "" {
		if dest, err = m.s.Items.FindInBranchForUpdate(ctx, m.t.ToBranchID, field, value); err != nil {
			return "", err
		}
	}
	if dest != nil {
		in.ItemID = dest.ID
		if dest, err = lg.Receive(ctx, m.s, in, origin.Cost); err != nil {
			return "", err
		}
	} else {
		if dest, err = lg.Materialize(ctx, m.s, origin, m.t.ToBranchID, line.Quantity, in); err != nil {
			return "", err
		}
		m.created[dest.ID] = true
	}
	action := event.InventoryStockChanged
	if m.created[dest.ID] {
		action = event.InventoryCreated
	}
	m.inv.AddOnce(dest.ID, event.NewInventoryEvent(action, ledger.ItemResponse(dest), m.t.ToBranchID, now))
	return dest.ID, nil
}
