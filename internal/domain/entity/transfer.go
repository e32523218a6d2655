package entity

import "time"

// TransferStatus estado del ciclo de vida de un traspaso entre sucursales.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferApproved  TransferStatus = "approved"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// CanTransitionTo aplica la máquina de estados:
// pending → approved | cancelled; approved → completed | cancelled; completed y cancelled son terminales.
func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	switch s {
	case TransferPending:
		return next == TransferApproved || next == TransferCancelled
	case TransferApproved:
		return next == TransferCompleted || next == TransferCancelled
	case TransferCompleted, TransferCancelled:
		return false
	}
	return false
}

// Terminal indica si el estado ya no admite transiciones.
func (s TransferStatus) Terminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// Valid indica si el estado es conocido.
func (s TransferStatus) Valid() bool {
	switch s {
	case TransferPending, TransferApproved, TransferCompleted, TransferCancelled:
		return true
	}
	return false
}

// Transfer traspaso de stock entre dos sucursales. Solo la finalización mueve stock.
type Transfer struct {
	ID           string
	FromBranchID string
	ToBranchID   string
	Status       TransferStatus
	Notes        string
	CreatedBy    string
	ApprovedBy   *string
	CompletedBy  *string
	CancelledBy  *string
	CancelReason string
	CreatedAt    time.Time
	ApprovedAt   *time.Time
	CompletedAt  *time.Time
	CancelledAt  *time.Time
	UpdatedAt    time.Time
}

// TransferItem línea de un traspaso. DestinationItemID se fija al completar.
type TransferItem struct {
	ID                string
	TransferID        string
	ItemID            string
	Quantity          int
	DestinationItemID *string
}
