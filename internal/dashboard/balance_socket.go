package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/olahol/melody"
)

const (
	sessionAccountKey = "account_id"
	sessionAPIKey     = "api"
	sessionCancelKey  = "cancel"

	balanceRequestTimeout = 3 * time.Second
)

type balanceMessage struct {
	AccountID string   `json:"account_id,omitempty"`
	Balance   *float64 `json:"balance,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// BalanceSocket upgrades to a websocket that receives the account balance every poll interval
func (h *Handler) BalanceSocket(c echo.Context) error {
	accountID := c.QueryParam("account_id")
	if accountID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "account_id is required")
	}

	return h.melody.HandleRequestWithKeys(c.Response(), c.Request(), map[string]interface{}{
		sessionAccountKey: accountID,
		sessionAPIKey:     apiFrom(c),
	})
}

func (h *Handler) startBalancePolling(s *melody.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	s.Set(sessionCancelKey, cancel)

	accountID, _ := s.Get(sessionAccountKey)
	h.logger.Debug("balance socket connected", "account_id", accountID)

	go h.pollBalance(ctx, s)
}

func (h *Handler) stopBalancePolling(s *melody.Session) {
	if v, ok := s.Get(sessionCancelKey); ok {
		if cancel, ok := v.(context.CancelFunc); ok {
			cancel()
		}
	}
	accountID, _ := s.Get(sessionAccountKey)
	h.logger.Debug("balance socket disconnected", "account_id", accountID)
}

func (h *Handler) pollBalance(ctx context.Context, s *melody.Session) {
	ticker := time.NewTicker(h.cfg.BalancePollInterval)
	defer ticker.Stop()

	for {
		h.pushBalance(ctx, s)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) pushBalance(ctx context.Context, s *melody.Session) {
	if s.IsClosed() {
		return
	}

	rawID, _ := s.Get(sessionAccountKey)
	accountID, _ := rawID.(string)
	rawAPI, _ := s.Get(sessionAPIKey)
	api, ok := rawAPI.(BankAPI)
	if !ok {
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, balanceRequestTimeout)
	defer cancel()

	var msg balanceMessage
	balance, err := api.GetBalance(reqCtx, accountID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		msg.Error = err.Error()
	} else {
		msg.AccountID = balance.AccountID
		msg.Balance = &balance.Balance
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode balance message", "error", err)
		return
	}
	if err := s.Write(payload); err != nil {
		h.logger.Debug("balance socket write failed", "account_id", accountID, "error", err)
	}
}
