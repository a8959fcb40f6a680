package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mockbank/internal/dto"
	"mockbank/internal/models"
	"mockbank/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFailedReason is recorded when settlement fails for a reason other than a business rule
const TransactionFailedReason = "Transaction Failed"

var (
	ErrSameAccountTransfer        = errors.New("cannot transfer to the same account")
	ErrSourceAccountNotFound      = errors.New("from_acct not found or not owned by user")
	ErrDestinationAccountNotFound = errors.New("to_acct not found")
	ErrInsufficientFunds          = models.ErrInsufficientFunds
	ErrInvalidAmount              = errors.New("amount must be greater than zero")
	ErrIdempotencyKeyRequired     = errors.New("idempotency key is required")
	ErrTransferNotFound           = errors.New("transfer not found")
	ErrTransferForbidden          = errors.New("transfer belongs to another user")
	ErrTransferNotPending         = repositories.ErrTransferNotPending
)

// TransferFailedError reports a transfer that ended FAILED for a reason the caller cannot act on
type TransferFailedError struct {
	TransferID uuid.UUID
	Reason     string
}

func (e *TransferFailedError) Error() string {
	return e.Reason
}

// IsBusinessRejection reports whether err is a rule violation that fails the transfer for good
func IsBusinessRejection(err error) bool {
	var unavailable *models.AccountUnavailableError
	return errors.As(err, &unavailable) ||
		errors.Is(err, models.ErrInsufficientFunds) ||
		errors.Is(err, models.ErrInvalidAmount) ||
		errors.Is(err, repositories.ErrAccountNotFound)
}

type transferService struct {
	accountRepo  repositories.AccountRepositoryInterface
	transferRepo repositories.TransferRepositoryInterface
	queueRepo    repositories.TransferQueueRepositoryInterface
	auditService AuditServiceInterface
	auditLogger  AuditLoggerInterface
	notifier     WebhookNotifierInterface
	metrics      MetricsRecorderInterface
	asyncDelay   time.Duration
	logger       *slog.Logger
}

// NewTransferService creates the service behind the /transfers endpoints.
// Async transfers are queued asyncDelay into the future.
func NewTransferService(
	accountRepo repositories.AccountRepositoryInterface,
	transferRepo repositories.TransferRepositoryInterface,
	queueRepo repositories.TransferQueueRepositoryInterface,
	auditService AuditServiceInterface,
	auditLogger AuditLoggerInterface,
	notifier WebhookNotifierInterface,
	metrics MetricsRecorderInterface,
	asyncDelay time.Duration,
	logger *slog.Logger,
) TransferServiceInterface {
	return &transferService{
		accountRepo:  accountRepo,
		transferRepo: transferRepo,
		queueRepo:    queueRepo,
		auditService: auditService,
		auditLogger:  auditLogger,
		notifier:     notifier,
		metrics:      metrics,
		asyncDelay:   asyncDelay,
		logger:       logger,
	}
}

// CreateTransfer validates and records a transfer, then settles it now (sync) or schedules it (async).
// A repeated (from, to, amount, key) tuple resolves to the transfer created first.
func (s *transferService) CreateTransfer(
	ctx context.Context,
	userID uuid.UUID,
	req *dto.TransferRequest,
	idempotencyKey string,
	meta RequestMeta,
) (*models.Transfer, error) {
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if idempotencyKey == "" {
		return nil, ErrIdempotencyKeyRequired
	}

	amount := req.Amount.Round(2)
	if err := s.validateTransferRequest(userID, req, amount); err != nil {
		return nil, err
	}

	if existing, err := s.transferRepo.FindByIdempotency(req.FromAcct, req.ToAcct, amount, idempotencyKey); err == nil {
		return s.existingResult(ctx, existing, idempotencyKey)
	} else if !errors.Is(err, repositories.ErrTransferNotFound) {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	mode := req.Mode
	if mode == "" {
		mode = models.TransferModeSync
	}

	transfer := &models.Transfer{
		FromAccountID:  req.FromAcct,
		ToAccountID:    req.ToAcct,
		Amount:         amount,
		IdempotencyKey: idempotencyKey,
		Mode:           mode,
		Status:         models.TransferStatusProcessing,
	}

	if err := s.transferRepo.Create(transfer); err != nil {
		if errors.Is(err, repositories.ErrTransferIdempotencyKeyExists) {
			existing, findErr := s.transferRepo.FindByIdempotency(req.FromAcct, req.ToAcct, amount, idempotencyKey)
			if findErr != nil {
				return nil, fmt.Errorf("failed to load concurrent transfer: %w", findErr)
			}
			return s.existingResult(ctx, existing, idempotencyKey)
		}
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	if err := s.auditService.LogTransferCreated(userID, transfer, meta); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "action", models.AuditActionTransferCreate)
	}
	s.auditLogger.LogTransferInitiated(ctx, transfer, userID)
	s.metrics.RecordGauge(MetricTransferAmount, amount.InexactFloat64(), nil)

	if mode == models.TransferModeAsync {
		return s.schedule(ctx, transfer)
	}

	settled, err := s.SettleTransfer(ctx, transfer.ID)
	if err == nil {
		return settled, nil
	}
	if IsBusinessRejection(err) {
		return settled, err
	}

	s.logger.Error("sync settlement failed", "transfer_id", transfer.ID.String(), "error", err)
	failed, failErr := s.FailTransfer(ctx, transfer.ID, TransactionFailedReason)
	if failErr != nil {
		s.logger.Error("failed to mark transfer failed", "transfer_id", transfer.ID.String(), "error", failErr)
		failed = transfer
	}
	return failed, &TransferFailedError{TransferID: transfer.ID, Reason: TransactionFailedReason}
}

func (s *transferService) validateTransferRequest(userID uuid.UUID, req *dto.TransferRequest, amount decimal.Decimal) error {
	if req.FromAcct == req.ToAcct {
		return ErrSameAccountTransfer
	}

	from, err := s.accountRepo.GetByIDForOwner(req.FromAcct, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return ErrSourceAccountNotFound
		}
		return fmt.Errorf("failed to get source account: %w", err)
	}

	to, err := s.accountRepo.GetByID(req.ToAcct)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return ErrDestinationAccountNotFound
		}
		return fmt.Errorf("failed to get destination account: %w", err)
	}

	if err := models.CheckTransferAccounts(from, to); err != nil {
		return err
	}

	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	if req.Mode != "" && !models.IsValidTransferMode(req.Mode) {
		return fmt.Errorf("invalid transfer mode: %s", req.Mode)
	}

	return nil
}

// existingResult replays an earlier transfer. A FAILED one reports its recorded reason.
func (s *transferService) existingResult(ctx context.Context, existing *models.Transfer, idempotencyKey string) (*models.Transfer, error) {
	s.auditLogger.LogTransferIdempotencyCheck(ctx, idempotencyKey, existing.ID, existing.Status)

	if existing.Status == models.TransferStatusFailed {
		reason := TransactionFailedReason
		if existing.FailureReason != nil && *existing.FailureReason != "" {
			reason = *existing.FailureReason
		}
		return existing, &TransferFailedError{TransferID: existing.ID, Reason: reason}
	}

	return existing, nil
}

func (s *transferService) schedule(ctx context.Context, transfer *models.Transfer) (*models.Transfer, error) {
	scheduledAt := time.Now().Add(s.asyncDelay)

	if err := s.queueRepo.Enqueue(transfer.ID, scheduledAt); err != nil {
		s.logger.Error("failed to enqueue transfer", "transfer_id", transfer.ID.String(), "error", err)
		failed, failErr := s.FailTransfer(ctx, transfer.ID, TransactionFailedReason)
		if failErr != nil {
			failed = transfer
		}
		return failed, &TransferFailedError{TransferID: transfer.ID, Reason: TransactionFailedReason}
	}

	s.auditLogger.LogQueueItemEnqueued(ctx, transfer.ID, scheduledAt)
	s.metrics.IncrementCounter(MetricQueueEnqueued, nil)

	return transfer, nil
}

// SettleTransfer applies a PROCESSING transfer. Business rejections mark it FAILED and are returned
// alongside the failed transfer. Infrastructure errors leave it PROCESSING.
func (s *transferService) SettleTransfer(ctx context.Context, transferID uuid.UUID) (*models.Transfer, error) {
	start := time.Now()

	settled, err := s.accountRepo.ExecuteAtomicTransfer(transferID)
	if err == nil {
		s.finalize(ctx, settled, start)
		return settled, nil
	}

	switch {
	case errors.Is(err, repositories.ErrTransferNotFound):
		return nil, ErrTransferNotFound

	case errors.Is(err, repositories.ErrTransferNotPending):
		current, findErr := s.transferRepo.FindByID(transferID)
		if findErr != nil {
			return nil, fmt.Errorf("failed to load transfer: %w", findErr)
		}
		return current, ErrTransferNotPending

	case IsBusinessRejection(err):
		failed, markErr := s.transferRepo.MarkFailed(transferID, failureReason(err))
		if markErr != nil {
			return nil, fmt.Errorf("failed to mark transfer failed: %w", markErr)
		}
		s.finalize(ctx, failed, start)
		return failed, err

	default:
		return nil, err
	}
}

// failureReason is the client facing text stored on a rejected transfer
func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(err, models.ErrInvalidAmount):
		return "Amount must be greater than zero"
	case errors.Is(err, repositories.ErrAccountNotFound):
		return "Account not found"
	default:
		return err.Error()
	}
}

// FailTransfer marks a PROCESSING transfer FAILED with reason. Final transfers are returned as they are.
func (s *transferService) FailTransfer(ctx context.Context, transferID uuid.UUID, reason string) (*models.Transfer, error) {
	current, err := s.transferRepo.FindByID(transferID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to load transfer: %w", err)
	}
	if current.IsFinal() {
		return current, nil
	}

	failed, err := s.transferRepo.MarkFailed(transferID, reason)
	if err != nil {
		return nil, err
	}

	s.finalize(ctx, failed, current.CreatedAt)
	return failed, nil
}

func (s *transferService) finalize(ctx context.Context, transfer *models.Transfer, start time.Time) {
	duration := time.Since(start)

	s.metrics.IncrementCounter(MetricTransfersTotal, map[string]string{"status": transfer.Status})
	if transfer.Status == models.TransferStatusSuccess {
		s.metrics.RecordProcessingTime(MetricTransferDuration+"_success", duration)
		s.auditLogger.LogTransferCompleted(ctx, transfer.ID, duration.Milliseconds())
	} else {
		s.metrics.RecordProcessingTime(MetricTransferDuration+"_failed", duration)
		reason := ""
		if transfer.FailureReason != nil {
			reason = *transfer.FailureReason
		}
		s.auditLogger.LogTransferFailed(ctx, transfer.ID, reason, duration.Milliseconds())
	}

	if err := s.auditService.LogTransferFinalized(transfer); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "transfer_id", transfer.ID.String())
	}

	s.notifier.NotifyTransferStatus(ctx, transfer)
}

// GetTransfer returns a transfer sent from one of the user's accounts
func (s *transferService) GetTransfer(userID, transferID uuid.UUID) (*models.Transfer, error) {
	transfer, err := s.transferRepo.FindByID(transferID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	from, err := s.accountRepo.GetByID(transfer.FromAccountID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrTransferForbidden
		}
		return nil, fmt.Errorf("failed to get source account: %w", err)
	}
	if from.OwnerID != userID {
		return nil, ErrTransferForbidden
	}

	return transfer, nil
}

// ListTransfers returns the user's outgoing transfers, newest first
func (s *transferService) ListTransfers(userID uuid.UUID, limit int) ([]models.Transfer, error) {
	if limit < 1 || limit > MaxListLimit {
		return nil, ErrInvalidLimit
	}

	transfers, err := s.transferRepo.FindByOwner(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, nil
}
