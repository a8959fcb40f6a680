package services

import (
	"context"
	"log/slog"
	"time"

	"mockbank/internal/models"

	"github.com/google/uuid"
)

type contextKey string

// CorrelationIDKey carries the request trace id into service calls
const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID returns a context tagged with the given correlation id
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{
		logger: logger,
	}
}

func (al *AuditLogger) LogTransferInitiated(ctx context.Context, transfer *models.Transfer, userID uuid.UUID) {
	al.logger.InfoContext(ctx, "transfer initiated",
		slog.String("event_type", "transfer_initiated"),
		slog.String("transfer_id", transfer.ID.String()),
		slog.String("from_acct", transfer.FromAccountID),
		slog.String("to_acct", transfer.ToAccountID),
		slog.String("amount", transfer.Amount.StringFixed(2)),
		slog.String("mode", transfer.Mode),
		slog.String("user_id", userID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransferCompleted(ctx context.Context, transferID uuid.UUID, durationMs int64) {
	al.logger.InfoContext(ctx, "transfer completed",
		slog.String("event_type", "transfer_completed"),
		slog.String("transfer_id", transferID.String()),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransferFailed(ctx context.Context, transferID uuid.UUID, errorMsg string, durationMs int64) {
	al.logger.WarnContext(ctx, "transfer failed",
		slog.String("event_type", "transfer_failed"),
		slog.String("transfer_id", transferID.String()),
		slog.String("error", errorMsg),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransferIdempotencyCheck(ctx context.Context, idempotencyKey string, existingTransferID uuid.UUID, status string) {
	al.logger.InfoContext(ctx, "transfer idempotency check",
		slog.String("event_type", "transfer_idempotency_check"),
		slog.String("idempotency_key", idempotencyKey),
		slog.String("existing_transfer_id", existingTransferID.String()),
		slog.String("status", status),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogQueueItemEnqueued(ctx context.Context, transferID uuid.UUID, scheduledAt time.Time) {
	al.logger.InfoContext(ctx, "queue item enqueued",
		slog.String("event_type", "queue_item_enqueued"),
		slog.String("transfer_id", transferID.String()),
		slog.Time("scheduled_at", scheduledAt),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogQueueItemProcessed(ctx context.Context, queueItemID, transferID uuid.UUID, retryCount int) {
	al.logger.InfoContext(ctx, "queue item processed",
		slog.String("event_type", "queue_item_processed"),
		slog.String("queue_item_id", queueItemID.String()),
		slog.String("transfer_id", transferID.String()),
		slog.Int("retry_count", retryCount),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogRetryAttempt(ctx context.Context, queueItemID, transferID uuid.UUID, retryCount, maxRetries int, backoffMs int64) {
	al.logger.WarnContext(ctx, "retry attempt",
		slog.String("event_type", "retry_attempt"),
		slog.String("queue_item_id", queueItemID.String()),
		slog.String("transfer_id", transferID.String()),
		slog.Int("retry_count", retryCount),
		slog.Int("max_retries", maxRetries),
		slog.Int64("backoff_ms", backoffMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogCircuitBreakerStateChange(ctx context.Context, service string, oldState, newState string) {
	al.logger.WarnContext(ctx, "circuit breaker state change",
		slog.String("event_type", "circuit_breaker_state_change"),
		slog.String("service", service),
		slog.String("old_state", oldState),
		slog.String("new_state", newState),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogWebhookDelivery(ctx context.Context, transferID uuid.UUID, status string, statusCode int, err error) {
	attrs := []slog.Attr{
		slog.String("event_type", "webhook_delivery"),
		slog.String("transfer_id", transferID.String()),
		slog.String("status", status),
		slog.Int("status_code", statusCode),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	}

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	al.logger.LogAttrs(ctx, level, "webhook delivery", attrs...)
}

func (al *AuditLogger) LogAccountStatusChange(ctx context.Context, accountID, oldStatus, newStatus string, userID uuid.UUID) {
	al.logger.InfoContext(ctx, "account status change",
		slog.String("event_type", "account_status_change"),
		slog.String("account_id", accountID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", newStatus),
		slog.String("user_id", userID.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return correlationID
	}

	return ""
}
