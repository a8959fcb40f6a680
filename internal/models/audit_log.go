package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuditActionLoginSuccess        = "login_success"
	AuditActionLoginFailed         = "login_failed"
	AuditActionLogout              = "logout"
	AuditActionTransferCreate      = "transfer_create"
	AuditActionTransferCompleted   = "transfer_completed"
	AuditActionTransferFailed      = "transfer_failed"
	AuditActionAccountStatusUpdate = "account_status_update"

	AuditResourceAccount  = "account"
	AuditResourceTransfer = "transfer"
	AuditResourceSession  = "session"
)

// AuditLog is one row of the security trail: who did what to which account, transfer or session
type AuditLog struct {
	ID         uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	UserID     *uuid.UUID   `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action     string       `gorm:"type:varchar(100);not null;index" json:"action"`
	Resource   string       `gorm:"type:varchar(100);not null" json:"resource"`
	ResourceID string       `gorm:"type:varchar(255);index" json:"resource_id,omitempty"`
	RequestID  string       `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	IPAddress  string       `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent  string       `gorm:"type:text" json:"user_agent,omitempty"`
	Details    AuditDetails `gorm:"column:metadata;type:text" json:"details,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;index" json:"created_at"`
}

func (al *AuditLog) TableName() string {
	return "audit_logs"
}

func (al *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if al.ID == uuid.Nil {
		al.ID = uuid.New()
	}
	if al.CreatedAt.IsZero() {
		al.CreatedAt = time.Now()
	}
	return nil
}

// With records a detail and returns the entry so calls can be chained
func (al *AuditLog) With(key, value string) *AuditLog {
	if al.Details == nil {
		al.Details = make(AuditDetails)
	}
	al.Details[key] = value
	return al
}

// Detail returns the recorded value for key, or "" when absent
func (al *AuditLog) Detail(key string) string {
	return al.Details[key]
}

// AuditDetails holds the string facts of an audit entry (amounts, statuses, reasons).
// It is persisted as a JSON object.
type AuditDetails map[string]string

func (d AuditDetails) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(map[string]string(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *AuditDetails) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into AuditDetails", value)
	}

	if len(raw) == 0 {
		*d = nil
		return nil
	}
	details := AuditDetails{}
	if err := json.Unmarshal(raw, (*map[string]string)(&details)); err != nil {
		return fmt.Errorf("decode audit details: %w", err)
	}
	*d = details
	return nil
}
