package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	QueueStatusPending    = "pending"
	QueueStatusProcessing = "processing"
	QueueStatusCompleted  = "completed"
	QueueStatusFailed     = "failed"

	DefaultQueueMaxRetries = 3
)

// TransferQueueItem schedules an accepted async transfer for settlement
type TransferQueueItem struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	TransferID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"transfer_id"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index:idx_transfer_queue_due,priority:1" json:"status"`
	RetryCount   int        `gorm:"not null;default:0" json:"retry_count"`
	MaxRetries   int        `gorm:"not null;default:3" json:"max_retries"`
	ScheduledAt  time.Time  `gorm:"not null;index:idx_transfer_queue_due,priority:2" json:"scheduled_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}

func (*TransferQueueItem) TableName() string {
	return "transfer_queue"
}

func (q *TransferQueueItem) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	if q.Status == "" {
		q.Status = QueueStatusPending
	}
	if q.MaxRetries == 0 {
		q.MaxRetries = DefaultQueueMaxRetries
	}
	now := time.Now()
	if q.ScheduledAt.IsZero() {
		q.ScheduledAt = now
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = now
	}
	return nil
}

// NextScheduledTime backs off exponentially: 1s, 2s, 4s...
func (q *TransferQueueItem) NextScheduledTime() time.Time {
	backoffSeconds := 1 << uint(q.RetryCount)
	return time.Now().Add(time.Duration(backoffSeconds) * time.Second)
}

// CanRetry reports whether a failed attempt may be rescheduled. The failed attempt counts
// toward MaxRetries.
func (q *TransferQueueItem) CanRetry() bool {
	return q.RetryCount+1 < q.MaxRetries
}
