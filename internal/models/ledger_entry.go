package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DirectionDebit  = "DEBIT"
	DirectionCredit = "CREDIT"
)

var ErrInvalidDirection = errors.New("invalid ledger direction")

// LedgerEntry is one side of a settled transfer on a single account
type LedgerEntry struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"entry_id"`
	AccountID     string          `gorm:"type:varchar(32);not null;index:idx_ledger_account_created,priority:1" json:"account_id"`
	Direction     string          `gorm:"type:varchar(6);not null" json:"direction"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	RefTransferID *uuid.UUID      `gorm:"type:uuid;index" json:"ref_transfer_id,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_ledger_account_created,priority:2" json:"created_at"`
}

func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return e.Validate()
}

func (e *LedgerEntry) Validate() error {
	if e.AccountID == "" {
		return errors.New("account ID is required")
	}
	if e.Direction != DirectionDebit && e.Direction != DirectionCredit {
		return ErrInvalidDirection
	}
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

func (e *LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewTransferEntries builds the debit and credit pair for a settled transfer
func NewTransferEntries(t *Transfer) (debit, credit *LedgerEntry) {
	ref := t.ID
	now := time.Now()
	debit = &LedgerEntry{
		AccountID:     t.FromAccountID,
		Direction:     DirectionDebit,
		Amount:        t.Amount,
		RefTransferID: &ref,
		CreatedAt:     now,
	}
	credit = &LedgerEntry{
		AccountID:     t.ToAccountID,
		Direction:     DirectionCredit,
		Amount:        t.Amount,
		RefTransferID: &ref,
		CreatedAt:     now,
	}
	return debit, credit
}
