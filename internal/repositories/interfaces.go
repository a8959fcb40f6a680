package repositories

import (
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepositoryInterface defines the contract for account repository operations
type AccountRepositoryInterface interface {
	Create(account *models.Account) error
	GetByID(id string) (*models.Account, error)
	GetByIDForOwner(id string, ownerID uuid.UUID) (*models.Account, error)
	GetByOwnerID(ownerID uuid.UUID) ([]models.Account, error)
	UpdateStatus(id string, status string) error
	ExecuteAtomicTransfer(transferID uuid.UUID) (*models.Transfer, error)
}

// LedgerRepositoryInterface defines the contract for ledger entry operations
type LedgerRepositoryInterface interface {
	Create(entry *models.LedgerEntry) error
	GetRecentByAccountID(accountID string, limit int) ([]models.LedgerEntry, error)
	GetByTransferID(transferID uuid.UUID) ([]models.LedgerEntry, error)
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	Find(filter AuditFilter) ([]*models.AuditLog, error)
	PurgeBefore(cutoff time.Time) (int64, error)
}

// TransferQueueRepositoryInterface defines the contract for the async settlement queue
type TransferQueueRepositoryInterface interface {
	Enqueue(transferID uuid.UUID, scheduledAt time.Time) error
	FetchDue(limit int) ([]*models.TransferQueueItem, error)
	MarkProcessing(queueItemID uuid.UUID) error
	MarkCompleted(queueItemID uuid.UUID) error
	MarkFailed(queueItemID uuid.UUID, errorMessage string) error
	IncrementRetry(queueItemID uuid.UUID, errorMessage string) error
	GetPendingCount() (int64, error)
	RequeueStale(olderThan time.Duration) (int64, error)
	CleanupCompleted(olderThan time.Duration) (int64, error)
}

// TransferRepositoryInterface defines the contract for transfer repository operations
type TransferRepositoryInterface interface {
	Create(transfer *models.Transfer) error
	FindByID(id uuid.UUID) (*models.Transfer, error)
	FindByIdempotency(fromAccountID, toAccountID string, amount decimal.Decimal, key string) (*models.Transfer, error)
	FindByOwner(ownerID uuid.UUID, limit int) ([]models.Transfer, error)
	MarkFailed(id uuid.UUID, reason string) (*models.Transfer, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	IsBlacklisted(jti string) (bool, error)
	DeleteExpired() (int64, error)
}

// IdempotencyRepositoryInterface stores responses keyed by idempotency key
type IdempotencyRepositoryInterface interface {
	Get(key string) (*models.IdempotencyRecord, error)
	Save(record *models.IdempotencyRecord) error
	DeleteExpired() (int64, error)
}
