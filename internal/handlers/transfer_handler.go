package handlers

import (
	"errors"
	"net/http"
	"strings"

	"mockbank/internal/dto"
	apierrors "mockbank/internal/errors"
	"mockbank/internal/models"
	"mockbank/internal/repositories"
	"mockbank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// IdempotencyKeyHeader must be sent with every POST /transfers
const IdempotencyKeyHeader = "Idempotency-Key"

// TransferHandler handles transfer endpoints
type TransferHandler struct {
	transferService services.TransferServiceInterface
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService services.TransferServiceInterface) *TransferHandler {
	return &TransferHandler{
		transferService: transferService,
	}
}

// CreateTransfer moves funds from one of the caller's accounts.
// sync transfers answer 200 once settled; async ones answer 202 while still PROCESSING.
// @Router /transfers [post]
func (h *TransferHandler) CreateTransfer(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	idempotencyKey := strings.TrimSpace(c.Request().Header.Get(IdempotencyKeyHeader))
	if idempotencyKey == "" {
		return SendError(c, apierrors.ValidationRequiredField, apierrors.WithMessage("Idempotency-Key header required"))
	}

	var req dto.TransferRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	transfer, err := h.transferService.CreateTransfer(c.Request().Context(), userID, &req, idempotencyKey, requestMeta(c))
	if err != nil {
		return mapTransferErr(c, err)
	}

	if transfer.IsProcessing() {
		return c.JSON(http.StatusAccepted, dto.TransferCreatedResponse{
			Status:     dto.TransferResultAccepted,
			TransferID: transfer.ID.String(),
		})
	}

	return c.JSON(http.StatusOK, dto.TransferCreatedResponse{
		Status:     dto.TransferResultSuccess,
		TransferID: transfer.ID.String(),
	})
}

// GetTransfer returns one transfer sent from the caller's accounts
// @Router /transfers/{id} [get]
func (h *TransferHandler) GetTransfer(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	transferID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apierrors.TransferNotFound)
	}

	transfer, err := h.transferService.GetTransfer(userID, transferID)
	if err != nil {
		return mapTransferErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransferResponse(transfer))
}

// ListTransfers returns the caller's most recent outgoing transfers
// @Router /transfers [get]
func (h *TransferHandler) ListTransfers(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	limit, err := getIntParam(c, "limit", DefaultListLimit)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithMessage(err.Error()))
	}

	transfers, err := h.transferService.ListTransfers(userID, limit)
	if err != nil {
		return mapTransferErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransferListResponse(transfers))
}

func mapTransferErr(c echo.Context, err error) error {
	var unavailable *models.AccountUnavailableError
	var failed *services.TransferFailedError

	switch {
	case errors.As(err, &unavailable):
		code := apierrors.TransferDestinationUnavailable
		if unavailable.IsSource() {
			code = apierrors.TransferSourceUnavailable
		}
		return SendError(c, code, apierrors.WithMessage(unavailable.Error()))
	case errors.As(err, &failed):
		return SendError(c, apierrors.TransferFailed, apierrors.WithMessage(failed.Reason))
	case errors.Is(err, services.ErrSameAccountTransfer):
		return SendError(c, apierrors.TransferSameAccount)
	case errors.Is(err, services.ErrSourceAccountNotFound):
		return SendError(c, apierrors.TransferSourceNotFound)
	case errors.Is(err, services.ErrDestinationAccountNotFound):
		return SendError(c, apierrors.TransferDestinationNotFound)
	case errors.Is(err, services.ErrInsufficientFunds):
		return SendError(c, apierrors.TransferInsufficientFunds)
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, models.ErrInvalidAmount):
		return SendError(c, apierrors.TransferInvalidAmount)
	case errors.Is(err, services.ErrIdempotencyKeyRequired):
		return SendError(c, apierrors.ValidationRequiredField, apierrors.WithMessage("Idempotency-Key header required"))
	case errors.Is(err, services.ErrTransferNotFound):
		return SendError(c, apierrors.TransferNotFound)
	case errors.Is(err, services.ErrTransferForbidden):
		return SendError(c, apierrors.AuthInsufficientPermission)
	case errors.Is(err, repositories.ErrAccountNotFound):
		return SendError(c, apierrors.AccountNotFound)
	case errors.Is(err, services.ErrInvalidLimit):
		return SendError(c, apierrors.ValidationOutOfRange, apierrors.WithMessage(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
