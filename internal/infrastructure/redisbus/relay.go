// Package redisbus reenvía eventos confirmados entre instancias por un canal pub/sub de Redis.
package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/sucursales-api/internal/domain/event"
	"github.com/jhoicas/sucursales-api/pkg/config"
)

// envelope mensaje en el canal. Origin identifica a la instancia que confirmó el cambio.
type envelope struct {
	Origin    string          `json:"origin"`
	Event     event.Name      `json:"event"`
	Action    string          `json:"action"`
	BranchID  string          `json:"branchId"`
	Timestamp time.Time       `json:"timestamp"`
	Entity    json.RawMessage `json:"entity"`
}

// Relay publica los eventos locales y redistribuye los de otras instancias.
type Relay struct {
	client  redis.UniversalClient
	channel string
	origin  string
	log     zerolog.Logger
}

// NewClient abre la conexión y verifica con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar redis: %w", err)
	}
	return client, nil
}

// New construye el relay con un identificador de instancia nuevo.
func New(client redis.UniversalClient, channel string, log zerolog.Logger) *Relay {
	return &Relay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log.With().Str("component", "redisbus").Logger(),
	}
}

// Origin identificador de esta instancia en el canal.
func (r *Relay) Origin() string { return r.origin }

// Publish envía cada evento al canal. Los fallos se registran y no se reintentan.
func (r *Relay) Publish(ctx context.Context, events ...event.Event) {
	for _, e := range events {
		payload, err := r.encode(e)
		if err != nil {
			r.log.Error().Err(err).Str("event", string(e.Name)).Msg("no se pudo serializar el evento")
			continue
		}
		if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
			r.log.Warn().Err(err).Str("event", string(e.Name)).Msg("no se pudo publicar en redis")
		}
	}
}

// Run se suscribe al canal y entrega a sink los eventos de otras instancias hasta que ctx termine.
func (r *Relay) Run(ctx context.Context, sink func(event.Event)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("suscribir %s: %w", r.channel, err)
	}
	r.log.Info().Str("channel", r.channel).Str("origin", r.origin).Msg("relay suscrito")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if e, ok := r.decode(msg.Payload); ok {
				sink(e)
			}
		}
	}
}

func (r *Relay) encode(e event.Event) ([]byte, error) {
	entity, err := json.Marshal(e.Entity)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{
		Origin:    r.origin,
		Event:     e.Name,
		Action:    e.Action,
		BranchID:  e.BranchID,
		Timestamp: e.Timestamp.UTC(),
		Entity:    entity,
	})
}

// decode descarta los mensajes propios y los malformados.
func (r *Relay) decode(payload string) (event.Event, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.log.Warn().Err(err).Msg("mensaje de redis inválido")
		return event.Event{}, false
	}
	if env.Origin == r.origin {
		return event.Event{}, false
	}
	switch env.Event {
	case event.InventoryUpdated, event.SaleUpdated, event.TransferUpdated:
	default:
		r.log.Warn().Str("event", string(env.Event)).Msg("evento desconocido en redis")
		return event.Event{}, false
	}
	return event.Event{
		Name:      env.Event,
		Action:    env.Action,
		Entity:    env.Entity,
		BranchID:  env.BranchID,
		Timestamp: env.Timestamp,
	}, true
}
