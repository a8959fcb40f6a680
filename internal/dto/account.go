package dto

import (
	"time"

	"mockbank/internal/models"
)

// Account Request DTOs

// UpdateAccountStatusRequest carries the requested status. Allowed values are checked by the
// account service so the error can list them.
type UpdateAccountStatusRequest struct {
	Status string `json:"status"`
}

// Account Response DTOs

type AccountSummary struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
}

type BalanceResponse struct {
	AccountID string  `json:"account_id"`
	Balance   float64 `json:"balance"`
}

type UpdateAccountStatusResponse struct {
	AccountID string `json:"account_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// LedgerEntryResponse is one row of an account's transaction history
type LedgerEntryResponse struct {
	EntryID       string    `json:"entry_id"`
	Direction     string    `json:"direction"`
	Amount        float64   `json:"amount"`
	RefTransferID *string   `json:"ref_transfer_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewAccountSummaries(accounts []models.Account) []AccountSummary {
	summaries := make([]AccountSummary, 0, len(accounts))
	for _, a := range accounts {
		summaries = append(summaries, AccountSummary{AccountID: a.ID, Status: a.Status})
	}
	return summaries
}

func NewLedgerEntryResponses(entries []models.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		var ref *string
		if e.RefTransferID != nil {
			id := e.RefTransferID.String()
			ref = &id
		}
		out = append(out, LedgerEntryResponse{
			EntryID:       e.ID.String(),
			Direction:     e.Direction,
			Amount:        e.Amount.InexactFloat64(),
			RefTransferID: ref,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out
}
