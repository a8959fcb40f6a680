// Package bankclient is the HTTP client the dashboard uses to talk to the banking API.
package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mockbank/internal/dto"

	"github.com/google/uuid"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replay"
)

// AuthTransport adds the bearer token and a JSON content type to every request
type AuthTransport struct {
	token string
	base  http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return t.base.RoundTrip(req)
}

// APIError is returned for every non-2xx response
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return e.Detail
}

type errorBody struct {
	Detail string `json:"detail"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client calls the banking API. A Client is bound to at most one access token; use WithToken
// to derive a client for a signed-in session.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
}

// New creates an unauthenticated client for baseURL
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return newClient(strings.TrimRight(baseURL, "/"), timeout, "", logger)
}

func newClient(baseURL string, timeout time.Duration, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Transport: &AuthTransport{token: token, base: http.DefaultTransport},
			Timeout:   timeout,
		},
		logger: logger,
	}
}

// WithToken returns a copy of the client that authenticates with token
func (c *Client) WithToken(token string) *Client {
	return newClient(c.baseURL, c.timeout, token, c.logger)
}

// NewIdempotencyKey returns a fresh random key for POST /transfers
func NewIdempotencyKey() string {
	return uuid.NewString()
}

func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return req, nil
}

// do sends req and returns the raw body of a 2xx response, or an *APIError
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("bank api request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"error", err,
		)
		return nil, nil, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, body, newAPIError(resp.StatusCode, body)
	}

	return resp, body, nil
}

func newAPIError(status int, body []byte) *APIError {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &APIError{Status: status, Detail: "Request failed"}
	}

	switch {
	case parsed.Detail != "":
		return &APIError{Status: status, Detail: parsed.Detail}
	case parsed.Error.Message != "":
		return &APIError{Status: status, Detail: parsed.Error.Message}
	default:
		return &APIError{Status: status, Detail: "HTTP " + strconv.Itoa(status)}
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	_, body, err := c.do(req)
	if err != nil {
		return err
	}
	return decode(body, out)
}

func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Login exchanges credentials for an access token using the form encoding the API expects
func (c *Client) Login(ctx context.Context, username, password string) (*dto.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	_, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var tokens dto.TokenResponse
	if err := decode(body, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout revokes the client's token
func (c *Client) Logout(ctx context.Context) error {
	req, err := c.buildRequest(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	_, _, err = c.do(req)
	return err
}

func (c *Client) ListAccounts(ctx context.Context) ([]dto.AccountSummary, error) {
	var accounts []dto.AccountSummary
	if err := c.getJSON(ctx, "/accounts/me", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) GetBalance(ctx context.Context, accountID string) (*dto.BalanceResponse, error) {
	var balance dto.BalanceResponse
	if err := c.getJSON(ctx, "/accounts/"+url.PathEscape(accountID)+"/balance", &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) ListTransactions(ctx context.Context, accountID string, limit int) ([]dto.LedgerEntryResponse, error) {
	path := fmt.Sprintf("/accounts/%s/transactions?limit=%d", url.PathEscape(accountID), limit)

	var entries []dto.LedgerEntryResponse
	if err := c.getJSON(ctx, path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) UpdateAccountStatus(ctx context.Context, accountID, status string) (*dto.UpdateAccountStatusResponse, error) {
	req, err := c.buildRequest(ctx, http.MethodPatch, "/accounts/"+url.PathEscape(accountID)+"/status",
		dto.UpdateAccountStatusRequest{Status: status})
	if err != nil {
		return nil, err
	}

	_, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var updated dto.UpdateAccountStatusResponse
	if err := decode(body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// TransferResult is the API answer to POST /transfers
type TransferResult struct {
	dto.TransferCreatedResponse
	HTTPStatus int  `json:"-"`
	Replayed   bool `json:"-"`
}

// CreateTransfer submits a transfer. Reusing idempotencyKey for the same body returns the
// stored response instead of moving money twice.
func (c *Client) CreateTransfer(ctx context.Context, transfer dto.TransferRequest, idempotencyKey string) (*TransferResult, error) {
	req, err := c.buildRequest(ctx, http.MethodPost, "/transfers", transfer)
	if err != nil {
		return nil, err
	}
	req.Header.Set(IdempotencyKeyHeader, idempotencyKey)

	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{
		HTTPStatus: resp.StatusCode,
		Replayed:   resp.Header.Get(IdempotentReplayHeader) == "true",
	}
	if err := decode(body, &result.TransferCreatedResponse); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetTransfer(ctx context.Context, transferID string) (*dto.TransferResponse, error) {
	var transfer dto.TransferResponse
	if err := c.getJSON(ctx, "/transfers/"+url.PathEscape(transferID), &transfer); err != nil {
		return nil, err
	}
	return &transfer, nil
}

func (c *Client) ListTransfers(ctx context.Context, limit int) ([]dto.TransferResponse, error) {
	var list dto.TransferListResponse
	if err := c.getJSON(ctx, "/transfers?limit="+strconv.Itoa(limit), &list); err != nil {
		return nil, err
	}
	if list.Transfers == nil {
		return []dto.TransferResponse{}, nil
	}
	return list.Transfers, nil
}
