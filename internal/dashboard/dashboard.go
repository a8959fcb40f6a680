// Package dashboard serves the browser UI for the banking API: login, balances, account
// controls, transfers and history. Pages are rendered on the server and talk to the API
// through bankclient with the token kept in an HTTP-only cookie.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mockbank/internal/bankclient"
	"mockbank/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/olahol/melody"
)

const (
	sessionCookieName = "mockbank_session"
	flashCookieName   = "mockbank_flash"

	apiContextKey = "bank_api"
)

// Handler serves every dashboard page
type Handler struct {
	cfg    *config.DashboardConfig
	newAPI APIFactory
	melody *melody.Melody
	logger *slog.Logger
}

// New creates the dashboard handler and its balance websocket hub
func New(cfg *config.DashboardConfig, newAPI APIFactory, logger *slog.Logger) *Handler {
	h := &Handler{
		cfg:    cfg,
		newAPI: newAPI,
		melody: melody.New(),
		logger: logger,
	}

	h.melody.Config.PingPeriod = 30 * time.Second
	h.melody.Config.PongWait = 60 * time.Second
	h.melody.HandleConnect(h.startBalancePolling)
	h.melody.HandleDisconnect(h.stopBalancePolling)
	h.melody.HandleError(func(s *melody.Session, err error) {
		accountID, _ := s.Get(sessionAccountKey)
		logger.Warn("balance socket error", "account_id", accountID, "error", err)
	})

	return h
}

// Register mounts the pages on e. The caller sets e.Renderer.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.Login)
	e.GET("/logout", h.Logout)
	e.POST("/logout", h.Logout)

	pages := e.Group("", h.requireSession)
	pages.GET("/", h.DashboardPage)
	pages.GET("/dashboard", h.DashboardPage)
	pages.POST("/accounts/:id/status", h.UpdateStatus)
	pages.GET("/ws/balance", h.BalanceSocket)
	pages.GET("/transfer", h.TransferPage)
	pages.POST("/transfer", h.SubmitTransfer)
	pages.GET("/transfer-status", h.TransferStatusPage)
	pages.GET("/recent-transfers", h.RecentTransfersPage)
	pages.GET("/transactions", h.TransactionsPage)
}

// Close disconnects every balance socket
func (h *Handler) Close() error {
	return h.melody.Close()
}

// requireSession redirects to /login unless the session cookie carries a token
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		c.Set(apiContextKey, h.newAPI(cookie.Value))
		return next(c)
	}
}

func apiFrom(c echo.Context) BankAPI {
	api, _ := c.Get(apiContextKey).(BankAPI)
	return api
}

func (h *Handler) setSession(c echo.Context, token string, expiresIn int) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   expiresIn,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// expireSession handles a 401 from the API by dropping the stale token
func (h *Handler) expireSession(c echo.Context) error {
	h.clearSession(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

func isUnauthorized(err error) bool {
	var apiErr *bankclient.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// answered reports whether the API responded to the request and so stored a response under the
// idempotency key. Transport failures, 429 and 5xx are not stored and may be retried with the same key.
func answered(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *bankclient.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status < http.StatusInternalServerError && apiErr.Status != http.StatusTooManyRequests
}

func (h *Handler) setFlash(c echo.Context, message string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    encodeFlash(message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears the pending flash message
func (h *Handler) popFlash(c echo.Context) string {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	c.SetCookie(&http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1})
	return decodeFlash(cookie.Value)
}
