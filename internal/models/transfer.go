package models

import (
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransferStatusProcessing = "PROCESSING"
	TransferStatusSuccess    = "SUCCESS"
	TransferStatusFailed     = "FAILED"

	TransferModeSync  = "sync"
	TransferModeAsync = "async"
)

var (
	ErrInvalidTransferStatus = errors.New("invalid transfer status")
	ErrInvalidTransferAmount = errors.New("transfer amount must be positive")
	ErrSameAccountTransfer   = errors.New("from and to accounts cannot be the same")
)

// Transfer moves funds between two accounts. The (from, to, amount, idempotency key)
// tuple is unique so a retried submission resolves to the same row.
type Transfer struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"transfer_id"`
	FromAccountID  string          `gorm:"type:varchar(32);not null;index;uniqueIndex:uq_transfer_idem,priority:1" json:"from_acct"`
	ToAccountID    string          `gorm:"type:varchar(32);not null;index;uniqueIndex:uq_transfer_idem,priority:2" json:"to_acct"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null;uniqueIndex:uq_transfer_idem,priority:3" json:"amount"`
	IdempotencyKey string          `gorm:"type:varchar(255);not null;index;uniqueIndex:uq_transfer_idem,priority:4" json:"idempotency_key"`
	Mode           string          `gorm:"type:varchar(10);not null;default:'sync'" json:"mode"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PROCESSING';index" json:"status"`
	FailureReason  *string         `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt      time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null" json:"updated_at"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.Status == "" {
		t.Status = TransferStatusProcessing
	}
	if t.Mode == "" {
		t.Mode = TransferModeSync
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

func (t *Transfer) Validate() error {
	if t.FromAccountID == "" {
		return errors.New("from account ID is required")
	}

	if t.ToAccountID == "" {
		return errors.New("to account ID is required")
	}

	if t.FromAccountID == t.ToAccountID {
		return ErrSameAccountTransfer
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidTransferAmount
	}

	if t.IdempotencyKey == "" {
		return errors.New("idempotency key is required")
	}

	if !IsValidTransferStatus(t.Status) {
		return ErrInvalidTransferStatus
	}

	return nil
}

func (t *Transfer) IsProcessing() bool {
	return t.Status == TransferStatusProcessing
}

// IsFinal reports whether the transfer reached SUCCESS or FAILED
func (t *Transfer) IsFinal() bool {
	return t.Status == TransferStatusSuccess || t.Status == TransferStatusFailed
}

func (t *Transfer) Succeed() {
	now := time.Now()
	t.Status = TransferStatusSuccess
	t.CompletedAt = &now
	t.FailureReason = nil
}

func (t *Transfer) Fail(reason string) {
	now := time.Now()
	t.Status = TransferStatusFailed
	t.CompletedAt = &now
	t.FailureReason = &reason
}

// CanTransitionTo checks if a transfer can move to a new status
func (t *Transfer) CanTransitionTo(newStatus string) bool {
	validTransitions := map[string][]string{
		TransferStatusProcessing: {TransferStatusSuccess, TransferStatusFailed},
		TransferStatusSuccess:    {},
		TransferStatusFailed:     {},
	}

	allowed, exists := validTransitions[t.Status]
	if !exists {
		return false
	}

	return slices.Contains(allowed, newStatus)
}

func (t *Transfer) TableName() string {
	return "transfers"
}

func IsValidTransferStatus(status string) bool {
	switch status {
	case TransferStatusProcessing, TransferStatusSuccess, TransferStatusFailed:
		return true
	default:
		return false
	}
}

func IsValidTransferMode(mode string) bool {
	return mode == TransferModeSync || mode == TransferModeAsync
}
