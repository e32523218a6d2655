package ledger

import (
	"context"

	"github.com/jhoicas/sucursales-api/internal/domain/event"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

// Stores repositorios atados a una misma transacción.
type Stores struct {
	Items     repository.ItemRepository
	Logs      repository.InventoryLogRepository
	Sales     repository.SaleRepository
	Transfers repository.TransferRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil; Rollback y mismo error en cualquier otro caso. Sin transacciones anidadas.
type TxRunner interface {
	Run(ctx context.Context, fn func(s Stores) error) error
}

// Publisher entrega eventos ya confirmados al canal en tiempo real. No bloquea ni devuelve error:
// la entrega es como máximo una vez.
type Publisher interface {
	Publish(ctx context.Context, events ...event.Event)
}

// PublisherFunc adapta una función a Publisher.
type PublisherFunc func(ctx context.Context, events ...event.Event)

// Publish implementa Publisher.
func (f PublisherFunc) Publish(ctx context.Context, events ...event.Event) { f(ctx, events...) }

// DiscardPublisher descarta los eventos.
var DiscardPublisher Publisher = PublisherFunc(func(context.Context, ...event.Event) {})
