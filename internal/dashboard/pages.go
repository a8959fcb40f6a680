package dashboard

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mockbank/internal/bankclient"
	"mockbank/internal/dto"
	"mockbank/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const (
	defaultTransferLimit    = 50
	transactionHistoryLimit = 50

	confirmCloseMessage = "Are you sure you want to close this account? This action cannot be undone."
)

var transferLimitOptions = []int{10, 25, 50, 100, 200}

type basePage struct {
	Title        string
	LoggedIn     bool
	Flash        string
	FlashIsError bool
	ClearAfterMs int64
}

func (h *Handler) base(title string, loggedIn bool, flash string) basePage {
	return basePage{
		Title:        title,
		LoggedIn:     loggedIn,
		Flash:        flash,
		FlashIsError: strings.HasPrefix(flash, "Error"),
		ClearAfterMs: h.cfg.MessageClearAfter.Milliseconds(),
	}
}

type loginPage struct {
	basePage
	Username string
	Password string
	Success  bool
}

func (h *Handler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login", loginPage{
		basePage: h.base("Login", false, ""),
		Username: h.cfg.DefaultUsername,
		Password: h.cfg.DefaultPassword,
	})
}

func (h *Handler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	page := loginPage{
		basePage: h.base("Login", false, ""),
		Username: username,
		Password: password,
	}

	tokens, err := h.newAPI("").Login(c.Request().Context(), username, password)
	if err != nil {
		h.logger.Info("dashboard login failed", "username", username, "error", err)
		page.Flash = "Login failed"
		page.FlashIsError = true
		return c.Render(http.StatusUnauthorized, "login", page)
	}

	h.setSession(c, tokens.AccessToken, tokens.ExpiresIn)
	page.LoggedIn = true
	page.Success = true
	page.Flash = "Login success. Go to Dashboard."
	return c.Render(http.StatusOK, "login", page)
}

// Logout revokes the token with the API. The cookie is cleared even if that call fails.
func (h *Handler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.newAPI(cookie.Value).Logout(c.Request().Context()); err != nil {
			h.logger.Warn("api logout failed", "error", err)
		}
	}
	h.clearSession(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

type dashboardPage struct {
	basePage
	Accounts       []dto.AccountSummary
	Selected       string
	SelectedStatus string
	Balance        *dto.BalanceResponse
	PollSeconds    int64
}

func (p dashboardPage) CanFreeze() bool   { return p.SelectedStatus != models.AccountStatusFrozen }
func (p dashboardPage) CanActivate() bool { return p.SelectedStatus != models.AccountStatusActive }
func (p dashboardPage) CanClose() bool    { return p.SelectedStatus != models.AccountStatusClosed }

func (h *Handler) DashboardPage(c echo.Context) error {
	api := apiFrom(c)
	ctx := c.Request().Context()

	page := dashboardPage{
		basePage:    h.base("Dashboard", true, h.popFlash(c)),
		PollSeconds: int64(h.cfg.BalancePollInterval.Seconds()),
	}

	accounts, err := api.ListAccounts(ctx)
	if err != nil {
		if isUnauthorized(err) {
			return h.expireSession(c)
		}
		page.Flash = "Error: " + err.Error()
		page.FlashIsError = true
		return c.Render(http.StatusOK, "dashboard", page)
	}
	page.Accounts = accounts
	page.Selected, page.SelectedStatus = selectAccount(accounts, c.QueryParam("account_id"))

	if page.Selected != "" {
		balance, err := api.GetBalance(ctx, page.Selected)
		if err != nil {
			h.logger.Warn("failed to load balance", "account_id", page.Selected, "error", err)
		} else {
			page.Balance = balance
		}
	}

	return c.Render(http.StatusOK, "dashboard", page)
}

// selectAccount returns the requested account when the caller owns it, else the first one
func selectAccount(accounts []dto.AccountSummary, requested string) (id, status string) {
	for _, a := range accounts {
		if a.AccountID == requested {
			return a.AccountID, a.Status
		}
	}
	if len(accounts) > 0 {
		return accounts[0].AccountID, accounts[0].Status
	}
	return "", ""
}

type confirmClosePage struct {
	basePage
	AccountID string
	Message   string
}

// UpdateStatus applies freeze/activate/close. Closing asks for confirmation first.
func (h *Handler) UpdateStatus(c echo.Context) error {
	accountID := c.Param("id")
	status := c.FormValue("status")

	if status == models.AccountStatusClosed && c.FormValue("confirm") != "yes" {
		return c.Render(http.StatusOK, "confirm_close", confirmClosePage{
			basePage:  h.base("Close account", true, ""),
			AccountID: accountID,
			Message:   confirmCloseMessage,
		})
	}

	if _, err := apiFrom(c).UpdateAccountStatus(c.Request().Context(), accountID, status); err != nil {
		if isUnauthorized(err) {
			return h.expireSession(c)
		}
		h.setFlash(c, "Error: "+err.Error())
	} else {
		h.setFlash(c, statusUpdatedMessage(status))
	}

	return c.Redirect(http.StatusSeeOther, "/?account_id="+url.QueryEscape(accountID))
}

func statusUpdatedMessage(status string) string {
	switch status {
	case models.AccountStatusFrozen:
		return "Account frozen successfully"
	case models.AccountStatusClosed:
		return "Account closed successfully"
	default:
		return "Account activated successfully"
	}
}

type transferPage struct {
	basePage
	Accounts       []dto.AccountSummary
	From           string
	To             string
	Amount         string
	Mode           string
	IdempotencyKey string
	Result         string
}

// TransferPage renders the form with a fresh idempotency key. The key is kept across a submit
// only when the API never answered it, so a retry replays instead of moving money twice.
func (h *Handler) TransferPage(c echo.Context) error {
	accounts, err := apiFrom(c).ListAccounts(c.Request().Context())
	if err != nil && isUnauthorized(err) {
		return h.expireSession(c)
	}

	page := transferPage{
		basePage:       h.base("Transfer", true, ""),
		Accounts:       accounts,
		From:           "ACC1001",
		To:             "ACC2001",
		Amount:         "10",
		Mode:           models.TransferModeSync,
		IdempotencyKey: bankclient.NewIdempotencyKey(),
	}
	if len(accounts) > 0 {
		page.From = accounts[0].AccountID
		if len(accounts) > 1 {
			page.To = accounts[1].AccountID
		}
	}

	return c.Render(http.StatusOK, "transfer", page)
}

func (h *Handler) SubmitTransfer(c echo.Context) error {
	api := apiFrom(c)
	ctx := c.Request().Context()

	page := transferPage{
		basePage:       h.base("Transfer", true, ""),
		From:           c.FormValue("from_acct"),
		To:             strings.TrimSpace(c.FormValue("to_acct")),
		Amount:         strings.TrimSpace(c.FormValue("amount")),
		Mode:           c.FormValue("mode"),
		IdempotencyKey: c.FormValue("idempotency_key"),
	}
	if page.IdempotencyKey == "" {
		page.IdempotencyKey = bankclient.NewIdempotencyKey()
	}

	amount, err := decimal.NewFromString(page.Amount)
	if err != nil {
		page.Result = "Error: amount must be a number"
	} else {
		result, err := api.CreateTransfer(ctx, dto.TransferRequest{
			FromAcct: page.From,
			ToAcct:   page.To,
			Amount:   amount,
			Mode:     page.Mode,
		}, page.IdempotencyKey)
		switch {
		case isUnauthorized(err):
			return h.expireSession(c)
		case err != nil:
			page.Result = "Error: " + err.Error()
		default:
			body, _ := json.Marshal(result.TransferCreatedResponse)
			page.Result = "OK: " + string(body)
		}
		if answered(err) {
			page.IdempotencyKey = bankclient.NewIdempotencyKey()
		}
	}

	if accounts, err := api.ListAccounts(ctx); err == nil {
		page.Accounts = accounts
	}

	return c.Render(http.StatusOK, "transfer", page)
}

type transferStatusPage struct {
	basePage
	TransferID string
	Transfer   *dto.TransferResponse
	Error      string
}

func (h *Handler) TransferStatusPage(c echo.Context) error {
	page := transferStatusPage{basePage: h.base("Transfer Status", true, "")}

	if !c.QueryParams().Has("id") {
		return c.Render(http.StatusOK, "transfer_status", page)
	}

	page.TransferID = strings.TrimSpace(c.QueryParam("id"))
	if page.TransferID == "" {
		page.Error = "Please enter a transfer ID"
		return c.Render(http.StatusOK, "transfer_status", page)
	}

	transfer, err := apiFrom(c).GetTransfer(c.Request().Context(), page.TransferID)
	switch {
	case isUnauthorized(err):
		return h.expireSession(c)
	case err != nil:
		page.Error = err.Error()
	default:
		page.Transfer = transfer
	}

	return c.Render(http.StatusOK, "transfer_status", page)
}

type recentTransfersPage struct {
	basePage
	Limit     int
	Options   []int
	Transfers []dto.TransferResponse
	Error     string
}

// Summary is the footer line under the transfers table
func (p recentTransfersPage) Summary() string {
	n := len(p.Transfers)
	if n == 1 {
		return "Showing 1 transfer"
	}
	return "Showing " + strconv.Itoa(n) + " transfers"
}

func (h *Handler) RecentTransfersPage(c echo.Context) error {
	page := recentTransfersPage{
		basePage: h.base("Recent Transfers", true, ""),
		Limit:    defaultTransferLimit,
		Options:  transferLimitOptions,
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			page.Limit = limit
		}
	}

	transfers, err := apiFrom(c).ListTransfers(c.Request().Context(), page.Limit)
	switch {
	case isUnauthorized(err):
		return h.expireSession(c)
	case err != nil:
		page.Error = err.Error()
	default:
		page.Transfers = transfers
	}

	return c.Render(http.StatusOK, "recent_transfers", page)
}

type transactionsPage struct {
	basePage
	Accounts []dto.AccountSummary
	Selected string
	Entries  []dto.LedgerEntryResponse
	Error    string
}

func (h *Handler) TransactionsPage(c echo.Context) error {
	api := apiFrom(c)
	ctx := c.Request().Context()
	page := transactionsPage{basePage: h.base("Transactions", true, "")}

	accounts, err := api.ListAccounts(ctx)
	if err != nil {
		if isUnauthorized(err) {
			return h.expireSession(c)
		}
		page.Error = err.Error()
		return c.Render(http.StatusOK, "transactions", page)
	}
	page.Accounts = accounts
	page.Selected, _ = selectAccount(accounts, c.QueryParam("account_id"))

	if page.Selected != "" {
		entries, err := api.ListTransactions(ctx, page.Selected, transactionHistoryLimit)
		if err != nil {
			page.Error = err.Error()
		} else {
			page.Entries = entries
		}
	}

	return c.Render(http.StatusOK, "transactions", page)
}

func encodeFlash(message string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(message))
}

func decodeFlash(value string) string {
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return ""
	}
	return string(b)
}
