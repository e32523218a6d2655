package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

var hundred = decimal.NewFromInt(100)

// lineSubtotal qty * precio * (1 - descuento%/100), redondeado a 2 decimales.
func lineSubtotal(qty int, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	return gross.Mul(hundred.Sub(discountPercent)).Div(hundred).Round(2)
}

// commissionAmount comisión de la línea sobre su subtotal.
func commissionAmount(subtotal, percent decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(percent).Div(hundred).Round(2)
}

// priceLine recalcula subtotal y comisión de la línea.
func priceLine(si *entity.SaleItem) {
	si.Subtotal = lineSubtotal(si.Quantity, si.UnitPrice, si.DiscountPercent)
	si.CommissionAmount = commissionAmount(si.Subtotal, si.CommissionPercent)
}

// totals importes de cabecera.
type totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
}

// computeTotals suma las líneas y aplica el descuento global: importe explícito, o porcentaje del subtotal.
// El descuento no puede ser negativo ni superar el subtotal.
func computeTotals(lines []*entity.SaleItem, discountAmount, discountPercent *decimal.Decimal) (totals, error) {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
	}
	discount := decimal.Zero
	field := "discount_amount"
	switch {
	case discountAmount != nil:
		discount = discountAmount.Round(2)
	case discountPercent != nil:
		field = "discount_percent"
		if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
			return totals{}, domain.NewValidationError(field, "debe estar entre 0 y 100")
		}
		discount = subtotal.Mul(*discountPercent).Div(hundred).Round(2)
	}
	if discount.IsNegative() {
		return totals{}, domain.NewValidationError(field, "no puede ser negativo")
	}
	if discount.GreaterThan(subtotal) {
		return totals{}, domain.NewValidationError(field, "no puede superar el subtotal")
	}
	return totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal.Sub(discount),
	}, nil
}
