package repositories

import (
	"errors"
	"fmt"
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrTransferNotPending = errors.New("transfer is no longer processing")
	ErrInsufficientFunds  = models.ErrInsufficientFunds
)

// accountRepository implements AccountRepositoryInterface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{
		db: db,
	}
}

func (r *accountRepository) Create(account *models.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) GetByID(id string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByIDForOwner hides accounts owned by someone else behind ErrAccountNotFound
func (r *accountRepository) GetByIDForOwner(id string, ownerID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account for owner: %w", err)
	}
	return &account, nil
}

func (r *accountRepository) GetByOwnerID(ownerID uuid.UUID) ([]models.Account, error) {
	var accounts []models.Account
	if err := r.db.Where("owner_id = ?", ownerID).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to get accounts for owner: %w", err)
	}
	return accounts, nil
}

func (r *accountRepository) UpdateStatus(id string, status string) error {
	result := r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update account status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ExecuteAtomicTransfer settles a PROCESSING transfer in one database transaction.
// Both accounts are locked in ascending id order and their statuses re-checked under the lock.
func (r *accountRepository) ExecuteAtomicTransfer(transferID uuid.UUID) (*models.Transfer, error) {
	var settled models.Transfer

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", transferID).
			First(&settled).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransferNotFound
			}
			return fmt.Errorf("failed to lock transfer: %w", err)
		}
		if !settled.CanTransitionTo(models.TransferStatusSuccess) {
			return ErrTransferNotPending
		}

		firstID, secondID := settled.FromAccountID, settled.ToAccountID
		if secondID < firstID {
			firstID, secondID = secondID, firstID
		}

		locked := make(map[string]*models.Account, 2)
		for _, id := range []string{firstID, secondID} {
			var acct models.Account
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", id).
				First(&acct).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrAccountNotFound
				}
				return fmt.Errorf("failed to lock account %s: %w", id, err)
			}
			locked[id] = &acct
		}

		from, to := locked[settled.FromAccountID], locked[settled.ToAccountID]
		if err := models.CheckTransferAccounts(from, to); err != nil {
			return err
		}

		if err := from.Debit(settled.Amount); err != nil {
			return err
		}
		if err := to.Credit(settled.Amount); err != nil {
			return err
		}

		now := time.Now()
		for _, acct := range []*models.Account{from, to} {
			if err := tx.Model(&models.Account{}).
				Where("id = ?", acct.ID).
				Updates(map[string]interface{}{"balance": acct.Balance, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("failed to update balance for %s: %w", acct.ID, err)
			}
		}

		debit, credit := models.NewTransferEntries(&settled)
		if err := tx.Create(debit).Error; err != nil {
			return fmt.Errorf("failed to create debit entry: %w", err)
		}
		if err := tx.Create(credit).Error; err != nil {
			return fmt.Errorf("failed to create credit entry: %w", err)
		}

		settled.Succeed()
		if err := tx.Model(&models.Transfer{}).
			Where("id = ?", settled.ID).
			Updates(map[string]interface{}{
				"status":         settled.Status,
				"completed_at":   settled.CompletedAt,
				"failure_reason": nil,
				"updated_at":     now,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark transfer successful: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &settled, nil
}
