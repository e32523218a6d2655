package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus estado de una venta.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
)

// Métodos de pago aceptados.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentUSD      = "usd"
	PaymentOther    = "other"
)

// ValidPaymentMethod indica si el método de pago es conocido.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentUSD, PaymentOther:
		return true
	}
	return false
}

// Sale cabecera de una venta. Se crea junto con sus líneas y pagos en una sola transacción.
type Sale struct {
	ID             string
	Folio          string
	BranchID       string
	SellerID       *string
	GuideID        *string
	AgencyID       *string
	CustomerID     *string
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Total          decimal.Decimal
	Currency       string
	Status         SaleStatus
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SaleItem línea de una venta. ItemID es nil para conceptos fuera de catálogo (no mueven stock).
type SaleItem struct {
	ID                string
	SaleID            string
	ItemID            *string
	SKU               string
	Description       string
	Quantity          int
	UnitPrice         decimal.Decimal
	DiscountPercent   decimal.Decimal
	Subtotal          decimal.Decimal
	CommissionPercent decimal.Decimal
	CommissionAmount  decimal.Decimal
}

// CatalogItemID devuelve el artículo referenciado o "" si la línea no es de catálogo.
func (si *SaleItem) CatalogItemID() string {
	if si.ItemID == nil {
		return ""
	}
	return *si.ItemID
}

// Payment pago aplicado a una venta.
type Payment struct {
	ID        string
	SaleID    string
	Method    string
	Amount    decimal.Decimal
	Currency  string
	Reference string
	CreatedAt time.Time
}
