package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sucursales-api/internal/application/dto"
	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// validateLines reglas de negocio por campo que las etiquetas de los DTO no cubren (montos decimales).
func validateLines(v *domain.ValidationError, lines []dto.SaleItemRequest) {
	if len(lines) == 0 {
		v.Add("items", errNoLines.Error())
		return
	}
	for i, l := range lines {
		prefix := fmt.Sprintf("items[%d]", i)
		if l.Quantity <= 0 {
			v.Add(prefix+".quantity", "debe ser mayor que 0")
		}
		if l.UnitPrice.IsNegative() {
			v.Add(prefix+".unit_price", "no puede ser negativo")
		}
		if !inPercentRange(l.DiscountPercent) {
			v.Add(prefix+".discount_percent", "debe estar entre 0 y 100")
		}
		if !inPercentRange(l.CommissionPercent) {
			v.Add(prefix+".commission_percent", "debe estar entre 0 y 100")
		}
		if (l.ItemID == nil || *l.ItemID == "") && l.Description == "" && l.SKU == "" {
			v.Add(prefix+".description", "obligatoria para conceptos fuera de catálogo")
		}
	}
}

func validatePayments(v *domain.ValidationError, payments []dto.PaymentRequest) {
	for i, p := range payments {
		prefix := fmt.Sprintf("payments[%d]", i)
		if !entity.ValidPaymentMethod(p.Method) {
			v.Add(prefix+".method", "método de pago desconocido")
		}
		if !p.Amount.IsPositive() {
			v.Add(prefix+".amount", "debe ser mayor que 0")
		}
	}
}

func inPercentRange(d decimal.Decimal) bool {
	return !d.IsNegative() && !d.GreaterThan(hundred)
}
