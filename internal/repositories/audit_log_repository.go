package repositories

import (
	"errors"
	"fmt"
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultAuditLimit = 100

// AuditFilter narrows an audit trail query. Zero fields are ignored.
type AuditFilter struct {
	UserID     *uuid.UUID
	Action     string
	Resource   string
	ResourceID string
	Limit      int
}

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) AuditLogRepositoryInterface {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(entry *models.AuditLog) error {
	if entry == nil {
		return errors.New("audit log cannot be nil")
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// Find returns matching entries, newest first
func (r *AuditLogRepository) Find(filter AuditFilter) ([]*models.AuditLog, error) {
	query := r.db.Model(&models.AuditLog{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.ResourceID != "" {
		query = query.Where("resource_id = ?", filter.ResourceID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	var entries []*models.AuditLog
	if err := query.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return entries, nil
}

// PurgeBefore deletes entries created before cutoff and reports how many went
func (r *AuditLogRepository) PurgeBefore(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&models.AuditLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge audit logs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
