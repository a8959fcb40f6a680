package repositories

import (
	"errors"
	"fmt"
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrQueueItemNotFound = errors.New("queue item not found")

type transferQueueRepository struct {
	db *gorm.DB
}

// NewTransferQueueRepository creates the repository behind the async settlement worker
func NewTransferQueueRepository(db *gorm.DB) TransferQueueRepositoryInterface {
	return &transferQueueRepository{
		db: db,
	}
}

func (r *transferQueueRepository) Enqueue(transferID uuid.UUID, scheduledAt time.Time) error {
	item := &models.TransferQueueItem{
		TransferID:  transferID,
		ScheduledAt: scheduledAt,
	}

	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to enqueue transfer: %w", err)
	}

	return nil
}

// FetchDue returns pending items whose scheduled time has passed, oldest first
func (r *transferQueueRepository) FetchDue(limit int) ([]*models.TransferQueueItem, error) {
	var items []*models.TransferQueueItem

	err := r.db.Where("status = ? AND scheduled_at <= ?", models.QueueStatusPending, time.Now()).
		Order("scheduled_at ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch due items: %w", err)
	}

	return items, nil
}

// MarkProcessing claims a pending item. ErrQueueItemNotFound means another worker got it first.
func (r *transferQueueRepository) MarkProcessing(queueItemID uuid.UUID) error {
	result := r.db.Model(&models.TransferQueueItem{}).
		Where("id = ? AND status = ?", queueItemID, models.QueueStatusPending).
		Updates(map[string]interface{}{
			"status":     models.QueueStatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark item as processing: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrQueueItemNotFound
	}

	return nil
}

func (r *transferQueueRepository) MarkCompleted(queueItemID uuid.UUID) error {
	return r.finish(queueItemID, models.QueueStatusCompleted, "")
}

func (r *transferQueueRepository) MarkFailed(queueItemID uuid.UUID, errorMessage string) error {
	return r.finish(queueItemID, models.QueueStatusFailed, errorMessage)
}

func (r *transferQueueRepository) finish(queueItemID uuid.UUID, status, errorMessage string) error {
	now := time.Now()
	result := r.db.Model(&models.TransferQueueItem{}).
		Where("id = ?", queueItemID).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMessage,
			"processed_at":  now,
			"updated_at":    now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark item as %s: %w", status, result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrQueueItemNotFound
	}

	return nil
}

// IncrementRetry puts the item back to pending with exponential backoff
func (r *transferQueueRepository) IncrementRetry(queueItemID uuid.UUID, errorMessage string) error {
	var item models.TransferQueueItem
	if err := r.db.Where("id = ?", queueItemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQueueItemNotFound
		}
		return fmt.Errorf("failed to find queue item: %w", err)
	}

	item.RetryCount++
	if err := r.db.Model(&models.TransferQueueItem{}).
		Where("id = ?", queueItemID).
		Updates(map[string]interface{}{
			"retry_count":   item.RetryCount,
			"scheduled_at":  item.NextScheduledTime(),
			"status":        models.QueueStatusPending,
			"error_message": errorMessage,
			"updated_at":    time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to increment retry: %w", err)
	}

	return nil
}

func (r *transferQueueRepository) GetPendingCount() (int64, error) {
	var count int64
	err := r.db.Model(&models.TransferQueueItem{}).
		Where("status = ?", models.QueueStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count pending items: %w", err)
	}

	return count, nil
}

// RequeueStale returns items stuck in processing since before olderThan to pending.
// A worker that died after MarkProcessing leaves its item in that state.
func (r *transferQueueRepository) RequeueStale(olderThan time.Duration) (int64, error) {
	now := time.Now()
	result := r.db.Model(&models.TransferQueueItem{}).
		Where("status = ? AND updated_at < ?", models.QueueStatusProcessing, now.Add(-olderThan)).
		Updates(map[string]interface{}{
			"status":       models.QueueStatusPending,
			"scheduled_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to requeue stale items: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *transferQueueRepository) CleanupCompleted(olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	result := r.db.Where("status = ? AND processed_at < ?", models.QueueStatusCompleted, cutoffTime).
		Delete(&models.TransferQueueItem{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup completed items: %w", result.Error)
	}

	return result.RowsAffected, nil
}
