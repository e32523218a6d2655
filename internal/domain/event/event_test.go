package event_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

func TestEvent_FormaDelMensaje(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ev := event.NewInventoryEvent(event.InventoryStockChanged, map[string]int{"stock_actual": 2}, "b-1", at)

	raw, err := ev.Marshal()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "inventory_updated", got["event"])

	data, ok := got["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "stock_changed", data["action"])
	assert.Equal(t, "b-1", data["branchId"])
	assert.Equal(t, "2026-03-01T12:00:00Z", data["timestamp"])
	assert.NotNil(t, data["entity"])
}

func TestCollector_AddOnceReemplaza(t *testing.T) {
	var c event.Collector
	at := time.Now()
	c.Add(event.NewSaleEvent(event.SaleCreated, "venta", "b-1", at))
	c.AddOnce("item-1", event.NewInventoryEvent(event.InventoryStockChanged, 3, "b-1", at))
	c.AddOnce("item-2", event.NewInventoryEvent(event.InventoryStockChanged, 9, "b-1", at))
	c.AddOnce("item-1", event.NewInventoryEvent(event.InventoryStockChanged, 1, "b-1", at))

	evs := c.Events()
	require.Len(t, evs, 3)
	assert.Equal(t, event.SaleUpdated, evs[0].Name)
	assert.Equal(t, 1, evs[1].Entity, "el último estado del artículo reemplaza al anterior")
	assert.Equal(t, 9, evs[2].Entity)
}
