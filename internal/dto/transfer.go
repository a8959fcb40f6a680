package dto

import (
	"time"

	"mockbank/internal/models"

	"github.com/shopspring/decimal"
)

// Transfer Request DTOs

// TransferRequest is the body of POST /transfers. The amount accepts a JSON number or string.
type TransferRequest struct {
	FromAcct string          `json:"from_acct" validate:"required,account_id"`
	ToAcct   string          `json:"to_acct" validate:"required,account_id"`
	Amount   decimal.Decimal `json:"amount"`
	Mode     string          `json:"mode" validate:"omitempty,transfer_mode"`
}

// Transfer Response DTOs

// TransferCreatedResponse is returned by POST /transfers
type TransferCreatedResponse struct {
	Status     string `json:"status"`
	TransferID string `json:"transfer_id"`
}

const (
	TransferResultSuccess  = "success"
	TransferResultAccepted = "accepted"
)

type TransferResponse struct {
	TransferID     string     `json:"transfer_id"`
	FromAcct       string     `json:"from_acct"`
	ToAcct         string     `json:"to_acct"`
	Amount         float64    `json:"amount"`
	Status         string     `json:"status"`
	Mode           string     `json:"mode"`
	FailureReason  *string    `json:"failure_reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	IdempotencyKey *string    `json:"idempotency_key"`
}

type TransferListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

func NewTransferResponse(t *models.Transfer) TransferResponse {
	var key *string
	if t.IdempotencyKey != "" {
		k := t.IdempotencyKey
		key = &k
	}
	return TransferResponse{
		TransferID:     t.ID.String(),
		FromAcct:       t.FromAccountID,
		ToAcct:         t.ToAccountID,
		Amount:         t.Amount.InexactFloat64(),
		Status:         t.Status,
		Mode:           t.Mode,
		FailureReason:  t.FailureReason,
		CreatedAt:      t.CreatedAt,
		CompletedAt:    t.CompletedAt,
		IdempotencyKey: key,
	}
}

func NewTransferListResponse(transfers []models.Transfer) TransferListResponse {
	out := TransferListResponse{Transfers: make([]TransferResponse, 0, len(transfers))}
	for i := range transfers {
		out.Transfers = append(out.Transfers, NewTransferResponse(&transfers[i]))
	}
	return out
}
