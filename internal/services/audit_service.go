package services

import (
	"errors"
	"fmt"
	"time"

	"mockbank/internal/models"
	"mockbank/internal/repositories"

	"github.com/google/uuid"
)

var ErrInvalidAuditLog = errors.New("invalid audit log")

var auditActions = map[string]struct{}{
	models.AuditActionLoginSuccess:        {},
	models.AuditActionLoginFailed:         {},
	models.AuditActionLogout:              {},
	models.AuditActionTransferCreate:      {},
	models.AuditActionTransferCompleted:   {},
	models.AuditActionTransferFailed:      {},
	models.AuditActionAccountStatusUpdate: {},
}

// AuditService writes the persistent security trail. Failures here are logged by callers
// and never fail the user's request.
type AuditService struct {
	repo repositories.AuditLogRepositoryInterface
}

func NewAuditService(repo repositories.AuditLogRepositoryInterface) AuditServiceInterface {
	return &AuditService{repo: repo}
}

// ValidateActivityType rejects actions the trail does not know about
func ValidateActivityType(action string) error {
	if _, ok := auditActions[action]; !ok {
		return fmt.Errorf("invalid activity type: %q", action)
	}
	return nil
}

func (s *AuditService) CreateAuditLog(entry *models.AuditLog) error {
	if entry == nil {
		return ErrInvalidAuditLog
	}
	if err := ValidateActivityType(entry.Action); err != nil {
		return err
	}
	if err := s.repo.Create(entry); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// Trail returns the newest entries recorded against one account, transfer or session
func (s *AuditService) Trail(resource, resourceID string, limit int) ([]*models.AuditLog, error) {
	return s.repo.Find(repositories.AuditFilter{Resource: resource, ResourceID: resourceID, Limit: limit})
}

// Purge drops entries older than retention. A non-positive retention keeps everything.
func (s *AuditService) Purge(retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.PurgeBefore(time.Now().Add(-retention))
}

func (s *AuditService) LogLogin(userID uuid.UUID, meta RequestMeta) error {
	return s.CreateAuditLog(newAuditLog(&userID, models.AuditActionLoginSuccess, models.AuditResourceSession, userID.String(), meta))
}

// LogFailedLogin keeps the attempted username in the details since there may be no user row
func (s *AuditService) LogFailedLogin(username, reason string, meta RequestMeta) error {
	entry := newAuditLog(nil, models.AuditActionLoginFailed, models.AuditResourceSession, "", meta).
		With("username", username).
		With("reason", reason)
	return s.CreateAuditLog(entry)
}

func (s *AuditService) LogLogout(userID uuid.UUID, meta RequestMeta) error {
	return s.CreateAuditLog(newAuditLog(&userID, models.AuditActionLogout, models.AuditResourceSession, userID.String(), meta))
}

func (s *AuditService) LogTransferCreated(userID uuid.UUID, transfer *models.Transfer, meta RequestMeta) error {
	entry := newAuditLog(&userID, models.AuditActionTransferCreate, models.AuditResourceTransfer, transfer.ID.String(), meta).
		With("from_acct", transfer.FromAccountID).
		With("to_acct", transfer.ToAccountID).
		With("amount", transfer.Amount.StringFixed(2)).
		With("mode", transfer.Mode)
	return s.CreateAuditLog(entry)
}

// LogTransferFinalized runs from the settlement worker, so there is no request metadata
func (s *AuditService) LogTransferFinalized(transfer *models.Transfer) error {
	action := models.AuditActionTransferCompleted
	if transfer.Status == models.TransferStatusFailed {
		action = models.AuditActionTransferFailed
	}

	entry := newAuditLog(nil, action, models.AuditResourceTransfer, transfer.ID.String(), RequestMeta{}).
		With("status", transfer.Status)
	if transfer.FailureReason != nil {
		entry.With("reason", *transfer.FailureReason)
	}
	return s.CreateAuditLog(entry)
}

func (s *AuditService) LogAccountStatusUpdate(userID uuid.UUID, accountID, oldStatus, newStatus string, meta RequestMeta) error {
	entry := newAuditLog(&userID, models.AuditActionAccountStatusUpdate, models.AuditResourceAccount, accountID, meta).
		With("old_status", oldStatus).
		With("new_status", newStatus)
	return s.CreateAuditLog(entry)
}

func newAuditLog(userID *uuid.UUID, action, resource, resourceID string, meta RequestMeta) *models.AuditLog {
	return &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		RequestID:  meta.RequestID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	}
}
