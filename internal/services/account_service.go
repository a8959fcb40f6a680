package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mockbank/internal/models"
	"mockbank/internal/repositories"

	"github.com/google/uuid"
)

const MaxListLimit = 200

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidAccountStatus = errors.New("invalid account status")
	ErrAccountStatusLocked  = errors.New("closed accounts cannot change status")
	ErrInvalidLimit         = fmt.Errorf("limit must be between 1 and %d", MaxListLimit)
)

// accountService implements AccountServiceInterface
type accountService struct {
	accountRepo  repositories.AccountRepositoryInterface
	ledgerRepo   repositories.LedgerRepositoryInterface
	auditService AuditServiceInterface
	auditLogger  AuditLoggerInterface
	metrics      MetricsRecorderInterface
	logger       *slog.Logger
}

// NewAccountService creates the service behind the /accounts endpoints
func NewAccountService(
	accountRepo repositories.AccountRepositoryInterface,
	ledgerRepo repositories.LedgerRepositoryInterface,
	auditService AuditServiceInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AccountServiceInterface {
	return &accountService{
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		auditService: auditService,
		auditLogger:  auditLogger,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *accountService) ListAccounts(userID uuid.UUID) ([]models.Account, error) {
	accounts, err := s.accountRepo.GetByOwnerID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// GetBalance returns the account if the user owns it. Someone else's account reads as not found.
func (s *accountService) GetBalance(userID uuid.UUID, accountID string) (*models.Account, error) {
	return s.ownedAccount(userID, accountID)
}

// ListTransactions returns the newest ledger entries first. Limits above MaxListLimit are clamped.
func (s *accountService) ListTransactions(userID uuid.UUID, accountID string, limit int) ([]models.LedgerEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	if _, err := s.ownedAccount(userID, accountID); err != nil {
		return nil, err
	}

	entries, err := s.ledgerRepo.GetRecentByAccountID(accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return entries, nil
}

// UpdateStatus moves an owned account to active, frozen or closed. Closed is terminal.
func (s *accountService) UpdateStatus(ctx context.Context, userID uuid.UUID, accountID, status string, meta RequestMeta) (*models.Account, error) {
	account, err := s.ownedAccount(userID, accountID)
	if err != nil {
		return nil, err
	}
	if !models.IsValidAccountStatus(status) {
		return nil, ErrInvalidAccountStatus
	}

	if !account.CanTransitionTo(status) {
		return nil, ErrAccountStatusLocked
	}

	oldStatus := account.Status
	if err := s.accountRepo.UpdateStatus(account.ID, status); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update account status: %w", err)
	}
	account.Status = status

	if err := s.auditService.LogAccountStatusUpdate(userID, account.ID, oldStatus, status, meta); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "action", models.AuditActionAccountStatusUpdate)
	}
	s.auditLogger.LogAccountStatusChange(ctx, account.ID, oldStatus, status, userID)
	s.metrics.IncrementCounter(MetricAccountStatusUpdated, map[string]string{"status": status})

	return account, nil
}

func (s *accountService) ownedAccount(userID uuid.UUID, accountID string) (*models.Account, error) {
	account, err := s.accountRepo.GetByIDForOwner(accountID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}
