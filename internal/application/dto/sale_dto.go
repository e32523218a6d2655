package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta. ID solo se usa al editar para emparejar con la línea existente.
// ItemID vacío indica un concepto fuera de catálogo que no mueve stock.
type SaleItemRequest struct {
	ID                string          `json:"id,omitempty" validate:"omitempty,uuid"`
	ItemID            *string         `json:"item_id,omitempty" validate:"omitempty,len=0|uuid"`
	SKU               string          `json:"sku,omitempty"`
	Description       string          `json:"description,omitempty" validate:"max=255"`
	Quantity          int             `json:"quantity" validate:"gt=0"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
}

// PaymentRequest pago aplicado a la venta.
type PaymentRequest struct {
	Method    string          `json:"method" validate:"required,oneof=cash card transfer usd other"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Reference string          `json:"reference,omitempty" validate:"max=120"`
}

// CreateSaleRequest body para POST /api/sales.
// Si BranchID viene vacío se usa la sucursal principal de quien llama.
type CreateSaleRequest struct {
	BranchID        string            `json:"branch_id,omitempty" validate:"omitempty,uuid"`
	SellerID        *string           `json:"seller_id,omitempty"`
	GuideID         *string           `json:"guide_id,omitempty"`
	AgencyID        *string           `json:"agency_id,omitempty"`
	CustomerID      *string           `json:"customer_id,omitempty"`
	Currency        string            `json:"currency,omitempty" validate:"omitempty,len=3"`
	Notes           string            `json:"notes,omitempty" validate:"max=1000"`
	DiscountAmount  *decimal.Decimal  `json:"discount_amount,omitempty"`
	DiscountPercent *decimal.Decimal  `json:"discount_percent,omitempty"`
	Items           []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Payments        []PaymentRequest  `json:"payments,omitempty" validate:"dive"`
}

// UpdateSaleRequest body para PUT /api/sales/:id.
// Items nil conserva las líneas; Payments nil conserva los pagos y una lista (aunque vacía) los reemplaza.
type UpdateSaleRequest struct {
	SellerID        *string           `json:"seller_id,omitempty"`
	GuideID         *string           `json:"guide_id,omitempty"`
	AgencyID        *string           `json:"agency_id,omitempty"`
	CustomerID      *string           `json:"customer_id,omitempty"`
	Notes           *string           `json:"notes,omitempty" validate:"omitempty,max=1000"`
	DiscountAmount  *decimal.Decimal  `json:"discount_amount,omitempty"`
	DiscountPercent *decimal.Decimal  `json:"discount_percent,omitempty"`
	Items           []SaleItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Payments        []PaymentRequest  `json:"payments" validate:"dive"`
}

// SaleItemResponse línea de venta con importes calculados por el servidor.
type SaleItemResponse struct {
	ID                string          `json:"id"`
	ItemID            *string         `json:"item_id"`
	SKU               string          `json:"sku,omitempty"`
	Description       string          `json:"description,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	DiscountPercent   decimal.Decimal `json:"discount_percent"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	CommissionPercent decimal.Decimal `json:"commission_percent"`
	CommissionAmount  decimal.Decimal `json:"commission_amount"`
}

// PaymentResponse pago registrado.
type PaymentResponse struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// SaleResponse venta completa con líneas y pagos.
type SaleResponse struct {
	ID             string             `json:"id"`
	Folio          string             `json:"folio"`
	BranchID       string             `json:"branch_id"`
	SellerID       *string            `json:"seller_id,omitempty"`
	GuideID        *string            `json:"guide_id,omitempty"`
	AgencyID       *string            `json:"agency_id,omitempty"`
	CustomerID     *string            `json:"customer_id,omitempty"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	Total          decimal.Decimal    `json:"total"`
	Currency       string             `json:"currency"`
	Status         string             `json:"status"`
	Notes          string             `json:"notes,omitempty"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Items          []SaleItemResponse `json:"items"`
	Payments       []PaymentResponse  `json:"payments"`
}
