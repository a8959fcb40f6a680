package dto

import "time"

// TransferStatusEvent is posted to the configured webhook when a transfer reaches a final state
type TransferStatusEvent struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
}

// WebhookAck echoes whatever payload the webhook receiver got
type WebhookAck struct {
	Received bool           `json:"received"`
	Payload  map[string]any `json:"payload"`
}

type HealthResponse struct {
	OK     bool      `json:"ok"`
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}
