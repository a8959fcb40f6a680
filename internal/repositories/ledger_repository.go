package repositories

import (
	"errors"
	"fmt"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger entry repository
func NewLedgerRepository(db *gorm.DB) LedgerRepositoryInterface {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Create(entry *models.LedgerEntry) error {
	if entry == nil {
		return errors.New("ledger entry cannot be nil")
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// GetRecentByAccountID returns up to limit entries, newest first
func (r *ledgerRepository) GetRecentByAccountID(accountID string, limit int) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepository) GetByTransferID(transferID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.Where("ref_transfer_id = ?", transferID).
		Order("direction DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for transfer: %w", err)
	}
	return entries, nil
}
