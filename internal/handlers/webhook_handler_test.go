package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookHandler_TransferStatus(t *testing.T) {
	e := newTestEcho()
	handler := NewWebhookHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("echoes payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/transfer-status",
			strings.NewReader(`{"transfer_id":"abc","status":"SUCCESS"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		require.NoError(t, handler.TransferStatus(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"received":true,"payload":{"transfer_id":"abc","status":"SUCCESS"}}`, rec.Body.String())
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/transfer-status", strings.NewReader(`{not json`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		require.NoError(t, handler.TransferStatus(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
