package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"mockbank/internal/config"
	"mockbank/internal/dto"
	"mockbank/internal/models"
)

// WebhookNotifier posts transfer status events to WEBHOOK_URL
type WebhookNotifier struct {
	config         *config.WebhookConfig
	client         *http.Client
	circuitBreaker CircuitBreakerInterface
	auditLogger    AuditLoggerInterface
	metrics        MetricsRecorderInterface
	logger         *slog.Logger
}

// NewWebhookNotifier creates a notifier. With an empty URL every notification is skipped.
func NewWebhookNotifier(
	cfg *config.WebhookConfig,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) WebhookNotifierInterface {
	cbConfig := DefaultCircuitBreakerConfig("webhook")
	cbConfig.OnStateChange = func(name string, from, to CircuitState) {
		auditLogger.LogCircuitBreakerStateChange(context.Background(), name, from.String(), to.String())
		metrics.RecordGauge(MetricCircuitBreakerState, float64(to), map[string]string{"service": name})
	}

	return &WebhookNotifier{
		config: cfg,
		client: &http.Client{
			Transport: &jsonTransport{base: http.DefaultTransport},
			Timeout:   cfg.Timeout,
		},
		circuitBreaker: NewCircuitBreaker(cbConfig),
		auditLogger:    auditLogger,
		metrics:        metrics,
		logger:         logger,
	}
}

type jsonTransport struct {
	base http.RoundTripper
}

func (t *jsonTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mockbank-webhook/1.0")
	if id := getCorrelationID(req.Context()); id != "" {
		req.Header.Set("X-Trace-ID", id)
	}
	return t.base.RoundTrip(req)
}

// NotifyTransferStatus delivers {transfer_id, status}. Failures are logged and counted only.
func (n *WebhookNotifier) NotifyTransferStatus(ctx context.Context, transfer *models.Transfer) {
	if n.config.URL == "" || transfer == nil {
		return
	}

	if n.circuitBreaker.IsOpen() {
		n.recordOutcome(ctx, transfer, "skipped", 0, ErrCircuitBreakerOpen)
		return
	}

	req, err := n.buildRequest(ctx, dto.TransferStatusEvent{
		TransferID: transfer.ID.String(),
		Status:     transfer.Status,
	})
	if err != nil {
		n.recordOutcome(ctx, transfer, "error", 0, err)
		return
	}

	resp, err := n.do(req)
	if err != nil {
		n.circuitBreaker.RecordFailure()
		n.recordOutcome(ctx, transfer, "error", 0, err)
		return
	}

	if resp.StatusCode >= http.StatusBadRequest {
		n.circuitBreaker.RecordFailure()
		n.recordOutcome(ctx, transfer, "rejected", resp.StatusCode, fmt.Errorf("webhook responded with status %d", resp.StatusCode))
		return
	}

	n.circuitBreaker.RecordSuccess()
	n.recordOutcome(ctx, transfer, "delivered", resp.StatusCode, nil)
}

func (n *WebhookNotifier) buildRequest(ctx context.Context, event dto.TransferStatusEvent) (*http.Request, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal webhook event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("create webhook request: %w", err)
	}

	return req, nil
}

func (n *WebhookNotifier) do(req *http.Request) (*http.Response, error) {
	resp, err := n.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("webhook timed out after %s: %w", n.config.Timeout, err)
		}
		return nil, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return resp, nil
}

func (n *WebhookNotifier) recordOutcome(ctx context.Context, transfer *models.Transfer, outcome string, statusCode int, err error) {
	n.metrics.IncrementCounter(MetricWebhookDelivery, map[string]string{"outcome": outcome})
	n.auditLogger.LogWebhookDelivery(ctx, transfer.ID, transfer.Status, statusCode, err)

	if err != nil {
		n.logger.Warn("webhook delivery failed",
			"transfer_id", transfer.ID.String(),
			"outcome", outcome,
			"url", n.config.URL,
			"error", err,
		)
	}
}
