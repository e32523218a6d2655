package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus estado de un artículo del inventario.
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusSold      ItemStatus = "sold"
	ItemStatusRemoved   ItemStatus = "removed" // baja manual; los movimientos de stock no la revierten
)

// Valid indica si el estado es uno de los conocidos.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusAvailable, ItemStatusSold, ItemStatusRemoved:
		return true
	}
	return false
}

// InventoryItem artículo inventariado propiedad de una sucursal.
// BranchID es nil solo para artículos heredados visibles desde la administración global.
type InventoryItem struct {
	ID          string
	SKU         string
	Barcode     string
	Name        string
	Category    string
	Material    string
	Cost        decimal.Decimal
	Price       decimal.Decimal
	StockActual int
	Status      ItemStatus
	BranchID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InBranch indica si el artículo pertenece a la sucursal indicada.
func (i *InventoryItem) InBranch(branchID string) bool {
	return i.BranchID != nil && *i.BranchID == branchID
}

// Legacy indica si el artículo no tiene sucursal asignada.
func (i *InventoryItem) Legacy() bool {
	return i.BranchID == nil
}

// BranchOrEmpty devuelve la sucursal o "" para artículos heredados.
func (i *InventoryItem) BranchOrEmpty() string {
	if i.BranchID == nil {
		return ""
	}
	return *i.BranchID
}

// MatchKey clave con la que se busca la copia del artículo en otra sucursal:
// SKU si existe, si no el código de barras. Vacío significa que no hay forma de emparejar.
func (i *InventoryItem) MatchKey() (field, value string) {
	if i.SKU != "" {
		return "sku", i.SKU
	}
	if i.Barcode != "" {
		return "barcode", i.Barcode
	}
	return "", ""
}
