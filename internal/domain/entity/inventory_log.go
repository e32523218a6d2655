package entity

import "time"

// LogAction etiqueta de un movimiento del libro de stock.
type LogAction string

const (
	LogActionEntrada              LogAction = "entrada"
	LogActionSalida               LogAction = "salida"
	LogActionVenta                LogAction = "venta"
	LogActionVentaEdicion         LogAction = "venta_edicion"
	LogActionTransferenciaEntrada LogAction = "transferencia_entrada"
	LogActionTransferenciaSalida  LogAction = "transferencia_salida"
	LogActionAjusteEdicionVenta   LogAction = "ajuste_edicion_venta"
	LogActionDevolucion           LogAction = "devolucion"
)

// Valid indica si la acción pertenece al conjunto cerrado.
func (a LogAction) Valid() bool {
	switch a {
	case LogActionEntrada, LogActionSalida, LogActionVenta, LogActionVentaEdicion,
		LogActionTransferenciaEntrada, LogActionTransferenciaSalida,
		LogActionAjusteEdicionVenta, LogActionDevolucion:
		return true
	}
	return false
}

// Tipos de referencia de un movimiento.
const (
	ReferenceSale     = "sale"
	ReferenceTransfer = "transfer"
	ReferenceManual   = "manual"
)

// InventoryLogEntry registro inmutable de un cambio de stock. Nunca se actualiza ni se borra.
type InventoryLogEntry struct {
	ID            string
	ItemID        string
	BranchID      *string
	Action        LogAction
	Quantity      int // delta con signo: positivo entrada, negativo salida
	StockBefore   int
	StockAfter    int
	Reason        string
	ReferenceType string
	ReferenceID   string
	CreatedBy     string
	CreatedAt     time.Time
}
