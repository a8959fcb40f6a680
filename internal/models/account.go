package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AccountStatusActive = "active"
	AccountStatusFrozen = "frozen"
	AccountStatusClosed = "closed"
)

var (
	ErrInvalidAccountStatus = errors.New("invalid account status")
	ErrInvalidBalance       = errors.New("balance cannot be negative")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
)

// AccountUnavailableError reports a transfer leg whose account is frozen or closed
type AccountUnavailableError struct {
	Leg    string
	Status string
}

const (
	LegSource      = "Source"
	LegDestination = "Destination"
)

func (e *AccountUnavailableError) Error() string {
	if e.Status != AccountStatusFrozen {
		return fmt.Sprintf("%s account is %s", e.Leg, e.Status)
	}
	if e.IsSource() {
		return "Source account is frozen and cannot send transfers"
	}
	return "Destination account is frozen and cannot receive transfers"
}

func (e *AccountUnavailableError) IsSource() bool {
	return e.Leg == LegSource
}

// CheckTransferAccounts reports frozen legs before closed ones, source first
func CheckTransferAccounts(from, to *Account) error {
	if from.IsActive() && to.IsActive() {
		return nil
	}
	for _, status := range []string{AccountStatusFrozen, AccountStatusClosed} {
		if from.Status == status {
			return &AccountUnavailableError{Leg: LegSource, Status: status}
		}
		if to.Status == status {
			return &AccountUnavailableError{Leg: LegDestination, Status: status}
		}
	}
	return nil
}

// AccountStatuses lists the valid statuses in the order they are reported to clients
var AccountStatuses = []string{AccountStatusActive, AccountStatusFrozen, AccountStatusClosed}

// Account is a customer account identified by a human readable id such as ACC1001
type Account struct {
	ID        string          `gorm:"type:varchar(32);primary_key" json:"account_id"`
	OwnerID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Status    string          `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Balance   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"balance"`
	CreatedAt time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time       `gorm:"not null" json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.Status == "" {
		a.Status = AccountStatusActive
	}

	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

func (a *Account) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return errors.New("account ID is required")
	}

	if a.OwnerID == uuid.Nil {
		return errors.New("owner ID is required")
	}

	if !IsValidAccountStatus(a.Status) {
		return ErrInvalidAccountStatus
	}

	if a.Balance.LessThan(decimal.Zero) {
		return ErrInvalidBalance
	}

	return nil
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// CanTransitionTo reports whether the account may move to the given status.
// Closed is terminal; setting the current status again is allowed.
func (a *Account) CanTransitionTo(status string) bool {
	if !IsValidAccountStatus(status) {
		return false
	}
	if a.Status == AccountStatusClosed {
		return status == AccountStatusClosed
	}
	return true
}

// Debit removes funds. Status checks belong to the caller, which holds the row lock.
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

func (a *Account) TableName() string {
	return "accounts"
}

func IsValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusActive, AccountStatusFrozen, AccountStatusClosed:
		return true
	default:
		return false
	}
}
