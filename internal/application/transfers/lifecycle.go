package transfers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

// Create registra un traspaso pendiente. Solo valida existencia y stock en origen; no mueve stock.
func (uc *UseCase) Create(ctx context.Context, p auth.Principal, in dto.CreateTransferRequest) (*dto.TransferResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "transfers.Create")
	defer span.End()

	if !auth.CanWrite(p) {
		return nil, uc.fail(span, "create", domain.ErrForbidden)
	}
	if err := validateCreate(in); err != nil {
		return nil, uc.fail(span, "create", err)
	}
	if in.FromBranchID == in.ToBranchID {
		return nil, uc.fail(span, "create", domain.ErrSameBranch)
	}
	span.SetAttributes(attribute.String("branch.from", in.FromBranchID), attribute.String("branch.to", in.ToBranchID))
	for _, id := range []string{in.FromBranchID, in.ToBranchID} {
		if err := uc.existingBranch(ctx, id); err != nil {
			return nil, uc.fail(span, "create", err)
		}
	}
	if !auth.IsGlobalAdmin(p) && !auth.CanOperateBranch(p, in.FromBranchID) {
		return nil, uc.fail(span, "create", domain.ErrForbidden)
	}

	now := uc.ledger.Now()
	t := &entity.Transfer{
		ID:           uuid.New().String(),
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Status:       entity.TransferPending,
		Notes:        in.Notes,
		CreatedBy:    auth.ActorID(p),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	items := make([]*entity.TransferItem, 0, len(in.Items))
	requested := make(map[string]int, len(in.Items))
	for _, l := range in.Items {
		items = append(items, &entity.TransferItem{
			ID:         uuid.New().String(),
			TransferID: t.ID,
			ItemID:     l.ItemID,
			Quantity:   l.Quantity,
		})
		requested[l.ItemID] += l.Quantity
	}

	err := uc.tx.Run(ctx, func(s ledger.Stores) error {
		for _, line := range items {
			item, err := s.Items.GetByID(ctx, line.ItemID)
			if err != nil {
				return err
			}
			if item == nil {
				return domain.ErrItemNotFound
			}
			if !item.InBranch(t.FromBranchID) {
				return domain.ErrItemNotInBranch
			}
			if item.StockActual < requested[line.ItemID] {
				return domain.ErrInsufficientStock
			}
		}
		if err := s.Transfers.Create(ctx, t); err != nil {
			return err
		}
		for _, line := range items {
			if err := s.Transfers.CreateItem(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(span, "create", err)
	}

	resp := transferResponse(t, items)
	uc.publisher.Publish(ctx,
		event.NewTransferEvent(event.TransferCreated, resp, t.FromBranchID, now),
		event.NewTransferEvent(event.TransferReceived, resp, t.ToBranchID, now),
	)
	uc.log.Info().Str("transfer_id", t.ID).Str("from", t.FromBranchID).Str("to", t.ToBranchID).
		Int("lines", len(items)).Msg("traspaso creado")
	return &resp, nil
}

// Approve pending → approved. Solo personal del destino o administración global.
func (uc *UseCase) Approve(ctx context.Context, p auth.Principal, id string) (*dto.TransferResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "transfers.Approve")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.id", id))

	now := uc.ledger.Now()
	actor := auth.ActorID(p)
	var (
		t     *entity.Transfer
		items []*entity.TransferItem
	)
	err := uc.tx.Run(ctx, func(s ledger.Stores) error {
		var err error
		if t, err = lockTransfer(ctx, s, id); err != nil {
			return err
		}
		if !canOperateDestination(p, t) {
			return domain.ErrForbidden
		}
		if !t.Status.CanTransitionTo(entity.TransferApproved) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidState, t.Status, entity.TransferApproved)
		}
		t.Status = entity.TransferApproved
		t.ApprovedBy = &actor
		t.ApprovedAt = &now
		t.UpdatedAt = now
		if err := s.Transfers.Update(ctx, t); err != nil {
			return err
		}
		items, err = s.Transfers.ListItems(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, "approve", err)
	}

	resp := transferResponse(t, items)
	uc.publisher.Publish(ctx,
		event.NewTransferEvent(event.TransferSent, resp, t.FromBranchID, now),
		event.NewTransferEvent(event.TransferReceived, resp, t.ToBranchID, now),
	)
	uc.log.Info().Str("transfer_id", t.ID).Str("by", actor).Msg("traspaso aprobado")
	return &resp, nil
}

// Cancel pending|approved → cancelled. Puede cancelar el origen, el destino o administración global.
func (uc *UseCase) Cancel(ctx context.Context, p auth.Principal, id string, in dto.CancelTransferRequest) (*dto.TransferResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "transfers.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("transfer.id", id))

	now := uc.ledger.Now()
	actor := auth.ActorID(p)
	var (
		t     *entity.Transfer
		items []*entity.TransferItem
	)
	err := uc.tx.Run(ctx, func(s ledger.Stores) error {
		var err error
		if t, err = lockTransfer(ctx, s, id); err != nil {
			return err
		}
		if !auth.IsGlobalAdmin(p) && !auth.CanOperateBranch(p, t.FromBranchID) && !auth.CanOperateBranch(p, t.ToBranchID) {
			return domain.ErrForbidden
		}
		if !t.Status.CanTransitionTo(entity.TransferCancelled) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidState, t.Status, entity.TransferCancelled)
		}
		t.Status = entity.TransferCancelled
		t.CancelledBy = &actor
		t.CancelledAt = &now
		t.CancelReason = in.Reason
		t.UpdatedAt = now
		if err := s.Transfers.Update(ctx, t); err != nil {
			return err
		}
		items, err = s.Transfers.ListItems(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, uc.fail(span, "cancel", err)
	}

	resp := transferResponse(t, items)
	uc.publisher.Publish(ctx,
		event.NewTransferEvent(event.TransferCancelled, resp, t.FromBranchID, now),
		event.NewTransferEvent(event.TransferCancelled, resp, t.ToBranchID, now),
	)
	uc.log.Info().Str("transfer_id", t.ID).Str("by", actor).Str("reason", in.Reason).Msg("traspaso cancelado")
	return &resp, nil
}

func validateCreate(in dto.CreateTransferRequest) error {
	v := &domain.ValidationError{}
	if in.FromBranchID == "" {
		v.Add("from_branch_id", "obligatorio")
	}
	if in.ToBranchID == "" {
		v.Add("to_branch_id", "obligatorio")
	}
	if len(in.Items) == 0 {
		v.Add("items", "el traspaso debe tener al menos una línea")
	}
	for i, l := range in.Items {
		if l.ItemID == "" {
			v.Add(fmt.Sprintf("items[%d].item_id", i), "obligatorio")
		}
		if l.Quantity <= 0 {
			v.Add(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que 0")
		}
	}
	return v.OrNil()
}
