package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric names accepted by MetricsRecorderInterface
const (
	MetricTransfersTotal       = "transfers_total"
	MetricTransferDuration     = "transfer_duration"
	MetricTransferAmount       = "transfer_amount"
	MetricQueueEnqueued        = "queue.enqueued"
	MetricQueueDepth           = "queue.depth"
	MetricQueueRetry           = "queue.retry"
	MetricCircuitBreakerState  = "circuit_breaker.state"
	MetricWebhookDelivery      = "webhook_delivery"
	MetricAuthenticationEvent  = "authentication_event"
	MetricAPIError             = "api_error"
	MetricRateLimitRejected    = "rate_limit_rejected"
	MetricIdempotentReplay     = "idempotent_replay"
	MetricAccountStatusUpdated = "account_status_updated"
)

type PrometheusMetrics struct {
	transfersTotal            *prometheus.CounterVec
	transferDuration          *prometheus.HistogramVec
	transferAmount            prometheus.Histogram
	queueDepth                *prometheus.GaugeVec
	queueEnqueued             prometheus.Counter
	retryAttempts             prometheus.Counter
	circuitBreakerState       *prometheus.GaugeVec
	webhookDeliveries         *prometheus.CounterVec
	authenticationEventsTotal *prometheus.CounterVec
	apiErrorsTotal            *prometheus.CounterVec
	rateLimitRejections       *prometheus.CounterVec
	idempotentReplays         prometheus.Counter
	accountStatusUpdates      *prometheus.CounterVec
}

// NewPrometheusMetrics registers the collectors with reg. Pass prometheus.DefaultRegisterer
// to expose them on the process /metrics endpoint.
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsRecorderInterface {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		transfersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transfers_total",
				Help: "Total number of transfers by final status",
			},
			[]string{"status"},
		),
		transferDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "transfer_duration_milliseconds",
				Help:    "Transfer settlement duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"status"},
		),
		transferAmount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transfer_amount",
				Help:    "Transfer amount in base currency units",
				Buckets: prometheus.ExponentialBuckets(1, 10, 8),
			},
		),
		queueDepth: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "transfer_queue_depth",
				Help: "Current depth of the async transfer queue",
			},
			[]string{"status"},
		),
		queueEnqueued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "transfer_queue_enqueued_total",
				Help: "Total number of transfers scheduled for async settlement",
			},
		),
		retryAttempts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "transfer_retry_attempts_total",
				Help: "Total number of async settlement retries",
			},
		),
		circuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"service"},
		),
		webhookDeliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_deliveries_total",
				Help: "Total number of webhook delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		authenticationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
		apiErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "api_errors_total",
				Help: "Total number of error responses by code",
			},
			[]string{"code", "status"},
		),
		rateLimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_rejections_total",
				Help: "Total number of requests rejected by the per-route limiter",
			},
			[]string{"route"},
		),
		idempotentReplays: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "idempotent_replays_total",
				Help: "Total number of responses replayed from the idempotency store",
			},
		),
		accountStatusUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_status_updates_total",
				Help: "Total number of account status changes by new status",
			},
			[]string{"status"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case MetricTransfersTotal:
		if status != "" {
			m.transfersTotal.WithLabelValues(status).Inc()
		}
	case MetricQueueEnqueued:
		m.queueEnqueued.Inc()
	case MetricQueueRetry:
		m.retryAttempts.Inc()
	case MetricWebhookDelivery:
		if outcome := tags["outcome"]; outcome != "" {
			m.webhookDeliveries.WithLabelValues(outcome).Inc()
		}
	case MetricAuthenticationEvent:
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEventsTotal.WithLabelValues(eventType).Inc()
		}
	case MetricAPIError:
		m.apiErrorsTotal.WithLabelValues(tags["code"], status).Inc()
	case MetricRateLimitRejected:
		m.rateLimitRejections.WithLabelValues(tags["route"]).Inc()
	case MetricIdempotentReplay:
		m.idempotentReplays.Inc()
	case MetricAccountStatusUpdated:
		if status != "" {
			m.accountStatusUpdates.WithLabelValues(status).Inc()
		}
	}
}

// RecordProcessingTime accepts "transfer_duration_success" and "transfer_duration_failed"
func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case MetricTransferDuration + "_success":
		m.transferDuration.WithLabelValues("success").Observe(float64(duration.Milliseconds()))
	case MetricTransferDuration + "_failed":
		m.transferDuration.WithLabelValues("failed").Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case MetricTransferAmount:
		m.transferAmount.Observe(value)
	case MetricCircuitBreakerState:
		m.circuitBreakerState.WithLabelValues(tags["service"]).Set(value)
	case MetricQueueDepth:
		if status := tags["status"]; status != "" {
			m.queueDepth.WithLabelValues(status).Set(value)
		}
	}
}
