// Package realtime reparte los eventos confirmados a las conexiones suscritas por sala.
package realtime

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
)

var _ ledger.Publisher = (*Hub)(nil)

// Relay reenvía los eventos locales a otras instancias.
type Relay interface {
	Publish(ctx context.Context, events ...event.Event)
}

// Hub registro de suscripciones: salas creadas al unirse y eliminadas al quedar vacías.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	relay Relay
	log   zerolog.Logger
}

// NewHub construye el hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log.With().Str("component", "realtime").Logger(),
	}
}

// SetRelay activa el reenvío entre instancias. Llamar antes de aceptar tráfico.
func (h *Hub) SetRelay(r Relay) {
	h.relay = r
}

// Register une al cliente a las salas indicadas.
func (h *Hub) Register(c *Client, rooms []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*Client]struct{})
			h.rooms[room] = members
		}
		members[c] = struct{}{}
	}
	c.setRooms(rooms)
	h.log.Debug().Str("client", c.ID).Strs("rooms", rooms).Msg("cliente registrado")
}

// Unregister saca al cliente de todas sus salas y cierra Done().
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for _, room := range c.Rooms() {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	h.mu.Unlock()
	c.setRooms(nil)
	c.close()
	h.log.Debug().Str("client", c.ID).Int64("dropped", c.Dropped()).Msg("cliente dado de baja")
}

// RoomSize miembros actuales de la sala (0 si no existe).
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// EmitToBranch entrega el evento a la unión de branch:<id> y admin, una vez por conexión.
// Devuelve cuántas conexiones lo encolaron.
func (h *Hub) EmitToBranch(branchID string, e event.Event) int {
	frame, err := e.Marshal()
	if err != nil {
		h.log.Error().Err(err).Str("event", string(e.Name)).Msg("no se pudo serializar el evento")
		return 0
	}

	h.mu.RLock()
	targets := make(map[*Client]struct{})
	if branchID != "" {
		for c := range h.rooms[BranchRoom(branchID)] {
			targets[c] = struct{}{}
		}
	}
	for c := range h.rooms[AdminRoom] {
		targets[c] = struct{}{}
	}
	h.mu.RUnlock()

	delivered := 0
	for c := range targets {
		if c.enqueue(frame) {
			delivered++
			continue
		}
		h.log.Debug().Str("client", c.ID).Str("event", string(e.Name)).Msg("buffer lleno, evento descartado")
	}
	return delivered
}

// Deliver entrega los eventos solo a las conexiones de esta instancia.
func (h *Hub) Deliver(events ...event.Event) {
	for _, e := range events {
		h.EmitToBranch(e.BranchID, e)
	}
}

// Publish entrega localmente y reenvía al relay si está configurado.
func (h *Hub) Publish(ctx context.Context, events ...event.Event) {
	if len(events) == 0 {
		return
	}
	h.Deliver(events...)
	if h.relay != nil {
		h.relay.Publish(ctx, events...)
	}
}
