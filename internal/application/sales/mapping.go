package sales

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// newLine construye la línea a partir del request, ya con importes.
func newLine(saleID string, in dto.SaleItemRequest) *entity.SaleItem {
	si := &entity.SaleItem{
		ID:                uuid.New().String(),
		SaleID:            saleID,
		SKU:               in.SKU,
		Description:       in.Description,
		Quantity:          in.Quantity,
		UnitPrice:         in.UnitPrice,
		DiscountPercent:   in.DiscountPercent,
		CommissionPercent: in.CommissionPercent,
	}
	if in.ItemID != nil && *in.ItemID != "" {
		id := *in.ItemID
		si.ItemID = &id
	}
	priceLine(si)
	return si
}

// catalogIDs artículos referenciados por las líneas; las líneas libres se omiten.
func catalogIDs(lines []*entity.SaleItem) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.CatalogItemID())
	}
	return ids
}

// fillFromCatalog completa sku y descripción vacíos con los datos del artículo.
func fillFromCatalog(si *entity.SaleItem, item *entity.InventoryItem) {
	if si.SKU == "" {
		si.SKU = item.SKU
	}
	if si.Description == "" {
		si.Description = item.Name
	}
}

func newPayments(saleID, currency string, in []dto.PaymentRequest, now time.Time) []*entity.Payment {
	out := make([]*entity.Payment, 0, len(in))
	for _, p := range in {
		cur := p.Currency
		if cur == "" {
			cur = currency
		}
		out = append(out, &entity.Payment{
			ID:        uuid.New().String(),
			SaleID:    saleID,
			Method:    p.Method,
			Amount:    p.Amount.Round(2),
			Currency:  cur,
			Reference: p.Reference,
			CreatedAt: now,
		})
	}
	return out
}

func saleResponse(s *entity.Sale, items []*entity.SaleItem, payments []*entity.Payment) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:             s.ID,
		Folio:          s.Folio,
		BranchID:       s.BranchID,
		SellerID:       s.SellerID,
		GuideID:        s.GuideID,
		AgencyID:       s.AgencyID,
		CustomerID:     s.CustomerID,
		Subtotal:       s.Subtotal,
		DiscountAmount: s.DiscountAmount,
		Total:          s.Total,
		Currency:       s.Currency,
		Status:         string(s.Status),
		Notes:          s.Notes,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Items:          make([]dto.SaleItemResponse, 0, len(items)),
		Payments:       make([]dto.PaymentResponse, 0, len(payments)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:                it.ID,
			ItemID:            it.ItemID,
			SKU:               it.SKU,
			Description:       it.Description,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			DiscountPercent:   it.DiscountPercent,
			Subtotal:          it.Subtotal,
			CommissionPercent: it.CommissionPercent,
			CommissionAmount:  it.CommissionAmount,
		})
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.PaymentResponse{
			ID:        p.ID,
			Method:    p.Method,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Reference: p.Reference,
			CreatedAt: p.CreatedAt,
		})
	}
	return resp
}
