package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"mockbank/internal/config"
	"mockbank/internal/dto"
	"mockbank/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNotifier(url string, timeout time.Duration) *WebhookNotifier {
	return NewWebhookNotifier(
		&config.WebhookConfig{URL: url, Timeout: timeout},
		NewAuditLogger(discardLogger()),
		testMetrics(),
		discardLogger(),
	).(*WebhookNotifier)
}

func TestWebhookNotifier_PostsTransferStatus(t *testing.T) {
	received := make(chan dto.TransferStatusEvent, 1)
	var contentType, traceID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		traceID = r.Header.Get("X-Trace-ID")
		var event dto.TransferStatusEvent
		_ = json.NewDecoder(r.Body).Decode(&event)
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := newTestNotifier(server.URL, time.Second)
	transfer := &models.Transfer{ID: uuid.New(), Status: models.TransferStatusSuccess}

	notifier.NotifyTransferStatus(WithCorrelationID(context.Background(), "trace-1"), transfer)

	select {
	case event := <-received:
		assert.Equal(t, transfer.ID.String(), event.TransferID)
		assert.Equal(t, models.TransferStatusSuccess, event.Status)
	default:
		t.Fatal("webhook was not called")
	}
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "trace-1", traceID)
	assert.Equal(t, StateClosed, notifier.circuitBreaker.GetState())
}

func TestWebhookNotifier_EmptyURLSkips(t *testing.T) {
	notifier := newTestNotifier("", time.Second)

	assert.NotPanics(t, func() {
		notifier.NotifyTransferStatus(context.Background(), &models.Transfer{ID: uuid.New(), Status: models.TransferStatusFailed})
	})
}

func TestWebhookNotifier_TimeoutDoesNotPropagate(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	notifier := newTestNotifier(server.URL, 50*time.Millisecond)

	start := time.Now()
	notifier.NotifyTransferStatus(context.Background(), &models.Transfer{ID: uuid.New(), Status: models.TransferStatusSuccess})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, notifier.circuitBreaker.GetFailureCount())
}

func TestWebhookNotifier_OpensCircuitOnRepeatedFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	notifier := newTestNotifier(server.URL, time.Second)
	transfer := &models.Transfer{ID: uuid.New(), Status: models.TransferStatusFailed}

	for i := 0; i < 7; i++ {
		notifier.NotifyTransferStatus(context.Background(), transfer)
	}

	require.Equal(t, StateOpen, notifier.circuitBreaker.GetState())
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}
