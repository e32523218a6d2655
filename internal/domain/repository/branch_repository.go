package repository

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// BranchRepository lectura de sucursales (el CRUD vive fuera de este servicio).
type BranchRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Branch, error)
	ListActive(ctx context.Context) ([]*entity.Branch, error)
}
