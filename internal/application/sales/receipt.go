package sales

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// Receipt datos que necesita el comprobante impreso de una venta.
type Receipt struct {
	Sale   dto.SaleResponse
	Branch *entity.Branch // nil si la sucursal ya no existe
}

// ReceiptGenerator genera el documento del comprobante (implementado en infrastructure/pdf).
type ReceiptGenerator interface {
	GenerateSaleReceipt(ctx context.Context, r Receipt) ([]byte, error)
}

var errReceiptsDisabled = errors.New("generación de comprobantes no configurada")

// WithReceipts habilita Receipt.
func (uc *UseCase) WithReceipts(gen ReceiptGenerator, branches repository.BranchRepository) *UseCase {
	uc.receipts = gen
	uc.branches = branches
	return uc
}

// Receipt comprobante de la venta con la misma visibilidad que Get. Devuelve el documento y su nombre de archivo.
func (uc *UseCase) Receipt(ctx context.Context, p auth.Principal, saleID string) ([]byte, string, error) {
	if uc.receipts == nil {
		return nil, "", errReceiptsDisabled
	}
	sale, err := uc.Get(ctx, p, saleID)
	if err != nil {
		return nil, "", err
	}
	r := Receipt{Sale: *sale}
	if uc.branches != nil {
		if r.Branch, err = uc.branches.GetByID(ctx, sale.BranchID); err != nil {
			return nil, "", fmt.Errorf("comprobante: obtener sucursal: %w", err)
		}
	}
	doc, err := uc.receipts.GenerateSaleReceipt(ctx, r)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return doc, fmt.Sprintf("venta_%s.pdf", sale.Folio), nil
}
