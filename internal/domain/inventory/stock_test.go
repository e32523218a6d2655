package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/domain"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/inventory"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		name    string
		current entity.ItemStatus
		stock   int
		want    entity.ItemStatus
	}{
		{"con stock queda disponible", entity.ItemStatusSold, 3, entity.ItemStatusAvailable},
		{"sin stock pasa a vendido", entity.ItemStatusAvailable, 0, entity.ItemStatusSold},
		{"baja manual se conserva con stock", entity.ItemStatusRemoved, 4, entity.ItemStatusRemoved},
		{"baja manual se conserva sin stock", entity.ItemStatusRemoved, 0, entity.ItemStatusRemoved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, inventory.NextStatus(tc.current, tc.stock))
		})
	}
}

func TestApply_DecrementoHastaCero(t *testing.T) {
	item := &entity.InventoryItem{StockActual: 2, Status: entity.ItemStatusAvailable}
	mov, err := inventory.Apply(item, -2)
	require.NoError(t, err)
	assert.Equal(t, 2, mov.StockBefore)
	assert.Equal(t, 0, mov.StockAfter)
	assert.Equal(t, entity.ItemStatusSold, mov.Status)
	assert.Equal(t, 2, item.StockActual, "Apply no debe mutar el artículo")
}

func TestApply_StockNegativoRechazado(t *testing.T) {
	item := &entity.InventoryItem{StockActual: 2, Status: entity.ItemStatusAvailable}
	_, err := inventory.Apply(item, -3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestApply_DevolucionReactiva(t *testing.T) {
	item := &entity.InventoryItem{StockActual: 0, Status: entity.ItemStatusSold}
	mov, err := inventory.Apply(item, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.ItemStatusAvailable, mov.Status)
}

func TestCostCalculator(t *testing.T) {
	got := inventory.CostCalculator(2, decimal.NewFromInt(100), 2, decimal.NewFromInt(200))
	assert.True(t, decimal.NewFromInt(150).Equal(got), "got %s", got)

	assert.True(t, decimal.Zero.Equal(inventory.CostCalculator(0, decimal.Zero, 0, decimal.NewFromInt(5))))
}
