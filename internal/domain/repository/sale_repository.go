package repository

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// SaleRepository puerto de persistencia de ventas, sus líneas y pagos.
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	// GetForUpdate bloquea la cabecera mientras se edita o revierte.
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	Update(ctx context.Context, sale *entity.Sale) error
	Delete(ctx context.Context, id string) error

	CreateItem(ctx context.Context, item *entity.SaleItem) error
	UpdateItem(ctx context.Context, item *entity.SaleItem) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItems(ctx context.Context, saleID string) error
	ListItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)

	CreatePayment(ctx context.Context, payment *entity.Payment) error
	DeletePayments(ctx context.Context, saleID string) error
	ListPayments(ctx context.Context, saleID string) ([]*entity.Payment, error)
}
