package repositories

import (
	"errors"
	"fmt"
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransferNotFound             = errors.New("transfer not found")
	ErrTransferIdempotencyKeyExists = errors.New("transfer with idempotency key already exists")
)

// transferRepository implements TransferRepositoryInterface
type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *gorm.DB) TransferRepositoryInterface {
	return &transferRepository{
		db: db,
	}
}

// Create inserts a new transfer. A duplicate (from, to, amount, key) tuple maps to
// ErrTransferIdempotencyKeyExists.
func (r *transferRepository) Create(transfer *models.Transfer) error {
	if transfer == nil {
		return errors.New("transfer cannot be nil")
	}

	if err := r.db.Create(transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
			return ErrTransferIdempotencyKeyExists
		}
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	return nil
}

func (r *transferRepository) FindByID(id uuid.UUID) (*models.Transfer, error) {
	var transfer models.Transfer
	if err := r.db.Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by ID: %w", err)
	}

	return &transfer, nil
}

func (r *transferRepository) FindByIdempotency(fromAccountID, toAccountID string, amount decimal.Decimal, key string) (*models.Transfer, error) {
	var transfer models.Transfer

	err := r.db.Where("from_account_id = ? AND to_account_id = ? AND amount = ? AND idempotency_key = ?",
		fromAccountID, toAccountID, amount, key).
		First(&transfer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to find transfer by idempotency key: %w", err)
	}

	return &transfer, nil
}

// FindByOwner lists transfers sent from accounts the user owns, newest first
func (r *transferRepository) FindByOwner(ownerID uuid.UUID, limit int) ([]models.Transfer, error) {
	var transfers []models.Transfer

	err := r.db.Model(&models.Transfer{}).
		Joins("JOIN accounts ON accounts.id = transfers.from_account_id").
		Where("accounts.owner_id = ?", ownerID).
		Order("transfers.created_at DESC").
		Limit(limit).
		Find(&transfers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find transfers by owner: %w", err)
	}

	return transfers, nil
}

// MarkFailed moves a PROCESSING transfer to FAILED. Final transfers are returned unchanged.
func (r *transferRepository) MarkFailed(id uuid.UUID, reason string) (*models.Transfer, error) {
	now := time.Now()
	result := r.db.Model(&models.Transfer{}).
		Where("id = ? AND status = ?", id, models.TransferStatusProcessing).
		Updates(map[string]interface{}{
			"status":         models.TransferStatusFailed,
			"failure_reason": reason,
			"completed_at":   now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to mark transfer failed: %w", result.Error)
	}

	return r.FindByID(id)
}
