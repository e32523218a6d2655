package dto

import "time"

// TransferItemRequest línea de traspaso.
type TransferItemRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	FromBranchID string                `json:"from_branch_id" validate:"required,uuid"`
	ToBranchID   string                `json:"to_branch_id" validate:"required,uuid"`
	Notes        string                `json:"notes,omitempty" validate:"max=1000"`
	Items        []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CancelTransferRequest body opcional para PUT /api/transfers/:id/cancel.
type CancelTransferRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// TransferListRequest filtros de GET /api/transfers.
type TransferListRequest struct {
	BranchID string `query:"branch_id" validate:"omitempty,uuid"`
	Status   string `query:"status" validate:"omitempty,oneof=pending approved completed cancelled"`
	PageRequest
}

// TransferItemResponse línea de traspaso.
type TransferItemResponse struct {
	ID                string  `json:"id"`
	ItemID            string  `json:"item_id"`
	Quantity          int     `json:"quantity"`
	DestinationItemID *string `json:"destination_item_id"`
}

// TransferResponse traspaso con sus líneas.
type TransferResponse struct {
	ID           string                 `json:"id"`
	FromBranchID string                 `json:"from_branch_id"`
	ToBranchID   string                 `json:"to_branch_id"`
	Status       string                 `json:"status"`
	Notes        string                 `json:"notes,omitempty"`
	CreatedBy    string                 `json:"created_by"`
	ApprovedBy   *string                `json:"approved_by,omitempty"`
	CompletedBy  *string                `json:"completed_by,omitempty"`
	CancelledBy  *string                `json:"cancelled_by,omitempty"`
	CancelReason string                 `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ApprovedAt   *time.Time             `json:"approved_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	CancelledAt  *time.Time             `json:"cancelled_at,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Items        []TransferItemResponse `json:"items"`
}

// TransferListResponse página de traspasos.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
