package repository

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// TransferFilter filtros para listar traspasos. BranchIDs vacío = todas las sucursales.
type TransferFilter struct {
	BranchIDs []string
	Status    entity.TransferStatus
	Limit     int
	Offset    int
}

// TransferRepository puerto de persistencia de traspasos entre sucursales.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	Update(ctx context.Context, transfer *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)

	CreateItem(ctx context.Context, item *entity.TransferItem) error
	ListItems(ctx context.Context, transferID string) ([]*entity.TransferItem, error)
	SetItemDestination(ctx context.Context, itemID, destinationItemID string) error
}
