package realtime

import (
	"sync"
	"sync/atomic"

	"github.com/jhoicas/sucursales-api/internal/domain/auth"
)

// Client conexión suscrita al hub. El hub solo encola; quien atiende el socket vacía Send().
type Client struct {
	ID        string
	Principal auth.Principal

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64

	mu    sync.Mutex
	rooms []string
}

// NewClient crea un cliente con buffer de envío acotado.
func NewClient(id string, p auth.Principal, buffer int) *Client {
	if buffer < 1 {
		buffer = 1
	}
	return &Client{
		ID:        id,
		Principal: p,
		send:      make(chan []byte, buffer),
		done:      make(chan struct{}),
	}
}

// Send canal de frames pendientes de escribir.
func (c *Client) Send() <-chan []byte { return c.send }

// Done se cierra cuando el hub da de baja al cliente.
func (c *Client) Done() <-chan struct{} { return c.done }

// Dropped eventos descartados por buffer lleno.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Rooms salas a las que está unido.
func (c *Client) Rooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.rooms...)
}

func (c *Client) setRooms(rooms []string) {
	c.mu.Lock()
	c.rooms = rooms
	c.mu.Unlock()
}

// enqueue no bloquea: con el buffer lleno el frame se pierde para esta conexión.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		c.dropped.Add(1)
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
