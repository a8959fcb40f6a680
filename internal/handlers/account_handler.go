package handlers

import (
	"errors"
	"net/http"

	"mockbank/internal/dto"
	apierrors "mockbank/internal/errors"
	"mockbank/internal/models"
	"mockbank/internal/services"

	"github.com/labstack/echo/v4"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService services.AccountServiceInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accountService services.AccountServiceInterface) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// ListAccounts returns the caller's accounts
// @Router /accounts/me [get]
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	accounts, err := h.accountService.ListAccounts(userID)
	if err != nil {
		return mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewAccountSummaries(accounts))
}

// GetBalance returns the balance of one of the caller's accounts
// @Router /accounts/{id}/balance [get]
func (h *AccountHandler) GetBalance(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	account, err := h.accountService.GetBalance(userID, c.Param("id"))
	if err != nil {
		return mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID: account.ID,
		Balance:   account.Balance.InexactFloat64(),
	})
}

// ListTransactions returns the most recent ledger entries of an account, newest first
// @Router /accounts/{id}/transactions [get]
func (h *AccountHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	limit, err := getIntParam(c, "limit", DefaultListLimit)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithMessage(err.Error()))
	}

	entries, err := h.accountService.ListTransactions(userID, c.Param("id"), limit)
	if err != nil {
		return mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewLedgerEntryResponses(entries))
}

// UpdateStatus freezes, reactivates or closes an account
// @Router /accounts/{id}/status [patch]
func (h *AccountHandler) UpdateStatus(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	var req dto.UpdateAccountStatusRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	account, err := h.accountService.UpdateStatus(c.Request().Context(), userID, c.Param("id"), req.Status, requestMeta(c))
	if err != nil {
		return mapAccountErr(c, err)
	}

	return c.JSON(http.StatusOK, dto.UpdateAccountStatusResponse{
		AccountID: account.ID,
		Status:    account.Status,
		Message:   "Account status updated successfully",
	})
}

func mapAccountErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrAccountNotFound):
		return SendError(c, apierrors.AccountNotFound)
	case errors.Is(err, services.ErrInvalidAccountStatus), errors.Is(err, models.ErrInvalidAccountStatus):
		return SendError(c, apierrors.AccountInvalidStatus)
	case errors.Is(err, services.ErrAccountStatusLocked):
		return SendError(c, apierrors.AccountStatusNotChangeable)
	case errors.Is(err, services.ErrInvalidLimit):
		return SendError(c, apierrors.ValidationOutOfRange, apierrors.WithMessage(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
