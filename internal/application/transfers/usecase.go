// Package transfers implementa la máquina de estados de traspasos entre sucursales.
//
// Solo Complete mueve stock: descuenta en origen y suma en destino dentro de una transacción,
// de modo que la suma de ambas sucursales no cambia.
package transfers

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// UseCase motor de traspasos.
type UseCase struct {
	tx        ledger.TxRunner
	ledger    *ledger.Ledger
	transfers repository.TransferRepository
	branches  repository.BranchRepository
	publisher ledger.Publisher
	log       zerolog.Logger
	tracer    trace.Tracer
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx ledger.TxRunner,
	lg *ledger.Ledger,
	transfers repository.TransferRepository,
	branches repository.BranchRepository,
	publisher ledger.Publisher,
	log zerolog.Logger,
) *UseCase {
	if publisher == nil {
		publisher = ledger.DiscardPublisher
	}
	return &UseCase{
		tx:        tx,
		ledger:    lg,
		transfers: transfers,
		branches:  branches,
		publisher: publisher,
		log:       log.With().Str("component", "transfers").Logger(),
		tracer:    otel.Tracer("github.com/jhoicas/sucursales-api/transfers"),
	}
}

// Get devuelve el traspaso si quien llama ve alguna de las dos sucursales.
func (uc *UseCase) Get(ctx context.Context, p auth.Principal, id string) (*dto.TransferResponse, error) {
	t, err := uc.transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if !auth.CanAccessBranch(p, t.FromBranchID) && !auth.CanAccessBranch(p, t.ToBranchID) {
		return nil, domain.ErrForbidden
	}
	items, err := uc.transfers.ListItems(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	resp := transferResponse(t, items)
	return &resp, nil
}

// List lista traspasos de las sucursales visibles para quien llama.
func (uc *UseCase) List(ctx context.Context, p auth.Principal, req dto.TransferListRequest) (*dto.TransferListResponse, error) {
	req.DefaultPage()
	filter := repository.TransferFilter{
		Status: entity.TransferStatus(req.Status),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "estado desconocido")
	}
	out := &dto.TransferListResponse{
		Items: []dto.TransferResponse{},
		Page:  dto.PageResponse{Limit: req.Limit, Offset: req.Offset},
	}
	switch {
	case req.BranchID != "":
		if !auth.CanAccessBranch(p, req.BranchID) {
			return nil, domain.ErrForbidden
		}
		filter.BranchIDs = []string{req.BranchID}
	case p != nil && p.Capabilities().Has(auth.CapReadAll):
	default:
		filter.BranchIDs = auth.Branches(p)
		if len(filter.BranchIDs) == 0 {
			return out, nil
		}
	}
	list, err := uc.transfers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		items, err := uc.transfers.ListItems(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, transferResponse(t, items))
	}
	return out, nil
}

// existingBranch valida que la sucursal exista y esté activa.
func (uc *UseCase) existingBranch(ctx context.Context, id string) error {
	b, err := uc.branches.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil || !b.Active {
		return domain.ErrNotFound
	}
	return nil
}

func lockTransfer(ctx context.Context, s ledger.Stores, id string) (*entity.Transfer, error) {
	t, err := s.Transfers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// canOperateDestination destino o administración global.
func canOperateDestination(p auth.Principal, t *entity.Transfer) bool {
	return auth.IsGlobalAdmin(p) || auth.CanOperateBranch(p, t.ToBranchID)
}

func (uc *UseCase) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	ev := uc.log.Error()
	if domain.IsBusiness(err) {
		ev = uc.log.Warn()
	}
	ev.Err(err).Str("op", op).Msg("operación de traspaso revertida")
	return err
}

func transferResponse(t *entity.Transfer, items []*entity.TransferItem) dto.TransferResponse {
	resp := dto.TransferResponse{
		ID:           t.ID,
		FromBranchID: t.FromBranchID,
		ToBranchID:   t.ToBranchID,
		Status:       string(t.Status),
		Notes:        t.Notes,
		CreatedBy:    t.CreatedBy,
		ApprovedBy:   t.ApprovedBy,
		CompletedBy:  t.CompletedBy,
		CancelledBy:  t.CancelledBy,
		CancelReason: t.CancelReason,
		CreatedAt:    t.CreatedAt,
		ApprovedAt:   t.ApprovedAt,
		CompletedAt:  t.CompletedAt,
		CancelledAt:  t.CancelledAt,
		UpdatedAt:    t.UpdatedAt,
		Items:        make([]dto.TransferItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.TransferItemResponse{
			ID:                it.ID,
			ItemID:            it.ItemID,
			Quantity:          it.Quantity,
			DestinationItemID: it.DestinationItemID,
		})
	}
	return resp
}
