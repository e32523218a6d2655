package redisbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

func TestDecode_EventoDeOtraInstancia(t *testing.T) {
	a := New(nil, "c", zerolog.Nop())
	b := New(nil, "c", zerolog.Nop())
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	payload, err := a.encode(event.NewSaleEvent(event.SaleCreated, map[string]any{"folio": "V260301-ABCDEF01"}, "b1", at))
	require.NoError(t, err)

	e, ok := b.decode(string(payload))
	require.True(t, ok)
	assert.Equal(t, event.SaleUpdated, e.Name)
	assert.Equal(t, "created", e.Action)
	assert.Equal(t, "b1", e.BranchID)
	assert.True(t, at.Equal(e.Timestamp))

	frame, err := e.Marshal()
	require.NoError(t, err)
	var got struct {
		Data struct {
			Entity map[string]string `json:"entity"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &got))
	assert.Equal(t, "V260301-ABCDEF01", got.Data.Entity["folio"], "la entidad se reenvía sin re-serializar")
}

func TestDecode_IgnoraEventosPropios(t *testing.T) {
	r := New(nil, "c", zerolog.Nop())
	payload, err := r.encode(event.NewInventoryEvent(event.InventoryCreated, nil, "b1", time.Now()))
	require.NoError(t, err)

	_, ok := r.decode(string(payload))
	assert.False(t, ok)
}

func TestDecode_DescartaMalformados(t *testing.T) {
	r := New(nil, "c", zerolog.Nop())
	_, ok := r.decode("{no-json")
	assert.False(t, ok)

	_, ok = r.decode(`{"origin":"otra","event":"chat_message"}`)
	assert.False(t, ok)
}
