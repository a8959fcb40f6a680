package services

import (
	"context"
	"time"

	"mockbank/internal/dto"
	"mockbank/internal/models"

	"github.com/google/uuid"
)

// RequestMeta describes the caller of an operation for audit purposes
type RequestMeta struct {
	IPAddress string
	UserAgent string
	RequestID string
}

// AccountServiceInterface defines account-related business operations
type AccountServiceInterface interface {
	ListAccounts(userID uuid.UUID) ([]models.Account, error)
	GetBalance(userID uuid.UUID, accountID string) (*models.Account, error)
	ListTransactions(userID uuid.UUID, accountID string, limit int) ([]models.LedgerEntry, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, accountID, status string, meta RequestMeta) (*models.Account, error)
}

// TransferServiceInterface defines transfer creation, lookup and settlement
type TransferServiceInterface interface {
	CreateTransfer(ctx context.Context, userID uuid.UUID, req *dto.TransferRequest, idempotencyKey string, meta RequestMeta) (*models.Transfer, error)
	GetTransfer(userID, transferID uuid.UUID) (*models.Transfer, error)
	ListTransfers(userID uuid.UUID, limit int) ([]models.Transfer, error)
	SettleTransfer(ctx context.Context, transferID uuid.UUID) (*models.Transfer, error)
	FailTransfer(ctx context.Context, transferID uuid.UUID, reason string) (*models.Transfer, error)
}

// TransferProcessingServiceInterface runs the async settlement queue
type TransferProcessingServiceInterface interface {
	StartProcessing(ctx context.Context)
	ProcessQueueItem(ctx context.Context, queueItem *models.TransferQueueItem) error
	GetQueueDepth() (int64, error)
}

// AuditServiceInterface persists audit rows
type AuditServiceInterface interface {
	CreateAuditLog(log *models.AuditLog) error
	Trail(resource, resourceID string, limit int) ([]*models.AuditLog, error)
	Purge(retention time.Duration) (int64, error)
	LogLogin(userID uuid.UUID, meta RequestMeta) error
	LogFailedLogin(username, reason string, meta RequestMeta) error
	LogLogout(userID uuid.UUID, meta RequestMeta) error
	LogTransferCreated(userID uuid.UUID, transfer *models.Transfer, meta RequestMeta) error
	LogTransferFinalized(transfer *models.Transfer) error
	LogAccountStatusUpdate(userID uuid.UUID, accountID, oldStatus, newStatus string, meta RequestMeta) error
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuthServiceInterface interface {
	Login(req *dto.LoginRequest, meta RequestMeta) (*dto.TokenResponse, error)
	Logout(accessToken string, meta RequestMeta) error
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
}

type PasswordServiceInterface interface {
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
	CompareDecoy(password string) bool
}

// WebhookNotifierInterface delivers transfer status events. Delivery failures never reach the caller.
type WebhookNotifierInterface interface {
	NotifyTransferStatus(ctx context.Context, transfer *models.Transfer)
}

type AuditLoggerInterface interface {
	LogTransferInitiated(ctx context.Context, transfer *models.Transfer, userID uuid.UUID)
	LogTransferCompleted(ctx context.Context, transferID uuid.UUID, durationMs int64)
	LogTransferFailed(ctx context.Context, transferID uuid.UUID, errorMsg string, durationMs int64)
	LogTransferIdempotencyCheck(ctx context.Context, idempotencyKey string, existingTransferID uuid.UUID, status string)
	LogQueueItemEnqueued(ctx context.Context, queueItemTransferID uuid.UUID, scheduledAt time.Time)
	LogQueueItemProcessed(ctx context.Context, queueItemID, transferID uuid.UUID, retryCount int)
	LogRetryAttempt(ctx context.Context, queueItemID, transferID uuid.UUID, retryCount, maxRetries int, backoffMs int64)
	LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string)
	LogWebhookDelivery(ctx context.Context, transferID uuid.UUID, status string, statusCode int, err error)
	LogAccountStatusChange(ctx context.Context, accountID, oldStatus, newStatus string, userID uuid.UUID)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() CircuitState
	Reset()
	GetFailureCount() int
}
