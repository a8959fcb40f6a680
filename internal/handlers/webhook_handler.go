package handlers

import (
	"log/slog"
	"net/http"

	"mockbank/internal/dto"
	apierrors "mockbank/internal/errors"

	"github.com/labstack/echo/v4"
)

// WebhookHandler receives transfer status callbacks. Pointing WEBHOOK_URL at the API itself
// makes every finalized transfer visible in the logs.
type WebhookHandler struct {
	logger *slog.Logger
}

func NewWebhookHandler(logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{logger: logger}
}

// TransferStatus echoes the received payload
// @Router /webhooks/transfer-status [post]
func (h *WebhookHandler) TransferStatus(c echo.Context) error {
	payload := map[string]any{}
	if err := c.Bind(&payload); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	h.logger.Info("transfer status webhook received",
		"trace_id", getTraceID(c),
		"transfer_id", payload["transfer_id"],
		"status", payload["status"],
	)

	return c.JSON(http.StatusOK, dto.WebhookAck{Received: true, Payload: payload})
}
