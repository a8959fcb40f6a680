package repositories

import (
	"errors"
	"fmt"
	"time"

	"mockbank/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrIdempotencyRecordNotFound = errors.New("idempotency record not found")

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a database backed idempotency store
func NewIdempotencyRepository(db *gorm.DB) IdempotencyRepositoryInterface {
	return &idempotencyRepository{db: db}
}

// Get returns a live record. Expired records are reported as not found.
func (r *idempotencyRepository) Get(key string) (*models.IdempotencyRecord, error) {
	var record models.IdempotencyRecord
	if err := r.db.Where("idem_key = ?", key).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIdempotencyRecordNotFound
		}
		return nil, fmt.Errorf("failed to get idempotency record: %w", err)
	}

	if record.IsExpired(time.Now()) {
		return nil, ErrIdempotencyRecordNotFound
	}

	return &record, nil
}

// Save upserts the record so an expired key can be reused
func (r *idempotencyRepository) Save(record *models.IdempotencyRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "idem_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"status_code", "content_type", "body", "expires_at", "created_at"}),
	}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to save idempotency record: %w", err)
	}

	return nil
}

func (r *idempotencyRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at <= ?", time.Now()).Delete(&models.IdempotencyRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired idempotency records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
