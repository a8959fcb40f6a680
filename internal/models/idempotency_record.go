package models

import (
	"time"
)

// IdempotencyRecord is a stored API response replayed for a repeated Idempotency-Key
type IdempotencyRecord struct {
	Key         string    `gorm:"column:idem_key;type:varchar(512);primary_key" json:"key"`
	StatusCode  int       `gorm:"not null" json:"status_code"`
	ContentType string    `gorm:"type:varchar(100)" json:"content_type"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func (r *IdempotencyRecord) TableName() string {
	return "idempotency_records"
}
