// Package event define las notificaciones que se publican tras un commit.
// Cada entidad tiene su propio tipo de acción para que el compilador impida mezclarlas.
package event

import (
	"encoding/json"
	"time"
)

// Name nombre del evento en el canal en tiempo real.
type Name string

const (
	InventoryUpdated Name = "inventory_updated"
	SaleUpdated      Name = "sale_updated"
	TransferUpdated  Name = "transfer_updated"
)

// InventoryAction acciones de inventory_updated.
type InventoryAction string

const (
	InventoryStockChanged InventoryAction = "stock_changed"
	InventoryCreated      InventoryAction = "created"
)

// SaleAction acciones de sale_updated.
type SaleAction string

const (
	SaleCreated SaleAction = "created"
	SaleEdited  SaleAction = "updated"
	SaleDeleted SaleAction = "deleted"
)

// TransferAction acciones de transfer_updated; varían según el lado (origen/destino) que recibe el evento.
type TransferAction string

const (
	TransferCreated   TransferAction = "created"
	TransferReceived  TransferAction = "received"
	TransferSent      TransferAction = "sent"
	TransferCompleted TransferAction = "completed"
	TransferCancelled TransferAction = "cancelled"
)

// Event notificación ya confirmada en el almacén, dirigida a la sala de una sucursal.
// BranchID vacío significa que solo la audiencia de administración global la recibe.
type Event struct {
	Name      Name
	Action    string
	Entity    any
	BranchID  string
	Timestamp time.Time
}

// NewInventoryEvent construye un inventory_updated.
func NewInventoryEvent(action InventoryAction, entity any, branchID string, at time.Time) Event {
	return Event{Name: InventoryUpdated, Action: string(action), Entity: entity, BranchID: branchID, Timestamp: at}
}

// NewSaleEvent construye un sale_updated.
func NewSaleEvent(action SaleAction, entity any, branchID string, at time.Time) Event {
	return Event{Name: SaleUpdated, Action: string(action), Entity: entity, BranchID: branchID, Timestamp: at}
}

// NewTransferEvent construye un transfer_updated.
func NewTransferEvent(action TransferAction, entity any, branchID string, at time.Time) Event {
	return Event{Name: TransferUpdated, Action: string(action), Entity: entity, BranchID: branchID, Timestamp: at}
}

// Payload cuerpo que recibe el cliente: {action, entity, branchId, timestamp}.
type Payload struct {
	Action    string    `json:"action"`
	Entity    any       `json:"entity"`
	BranchID  string    `json:"branchId"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame mensaje completo enviado por el socket.
type Frame struct {
	Event Name    `json:"event"`
	Data  Payload `json:"data"`
}

// Frame devuelve la representación de cable del evento.
func (e Event) Frame() Frame {
	return Frame{
		Event: e.Name,
		Data: Payload{
			Action:    e.Action,
			Entity:    e.Entity,
			BranchID:  e.BranchID,
			Timestamp: e.Timestamp.UTC(),
		},
	}
}

// Marshal serializa el frame a JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e.Frame())
}

// Collector acumula eventos durante una transacción; se publican solo después del commit.
type Collector struct {
	events []Event
	keys   []string
}

// Add agrega un evento.
func (c *Collector) Add(e Event) {
	c.events = append(c.events, e)
	c.keys = append(c.keys, "")
}

// AddOnce agrega el evento una sola vez por clave (p. ej. un artículo tocado por varias líneas).
// Si la clave ya existía se reemplaza el evento previo por el más reciente, conservando su posición.
func (c *Collector) AddOnce(key string, e Event) {
	for i, k := range c.keys {
		if k != "" && k == key {
			c.events[i] = e
			return
		}
	}
	c.events = append(c.events, e)
	c.keys = append(c.keys, key)
}

// Events devuelve los eventos en orden de emisión.
func (c *Collector) Events() []Event {
	return c.events
}
