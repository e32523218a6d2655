package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItemResponse artículo con su stock actual (GET /api/inventory/:id).
type InventoryItemResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	Name        string          `json:"name"`
	Category    string          `json:"category,omitempty"`
	Material    string          `json:"material,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	Price       decimal.Decimal `json:"price"`
	StockActual int             `json:"stock_actual"`
	Status      string          `json:"status"`
	BranchID    *string         `json:"branch_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// InventoryMovementResponse entrada del registro de movimientos.
type InventoryMovementResponse struct {
	ID            string    `json:"id"`
	ItemID        string    `json:"item_id"`
	BranchID      *string   `json:"branch_id"`
	Action        string    `json:"action"`
	Quantity      int       `json:"quantity"`
	StockBefore   int       `json:"stock_before"`
	StockAfter    int       `json:"stock_after"`
	Reason        string    `json:"reason,omitempty"`
	ReferenceType string    `json:"reference_type,omitempty"`
	ReferenceID   string    `json:"reference_id,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

// InventoryMovementsResponse página de movimientos (GET /api/inventory/:id/movements).
type InventoryMovementsResponse struct {
	Items []InventoryMovementResponse `json:"items"`
	Page  PageResponse                `json:"page"`
}
