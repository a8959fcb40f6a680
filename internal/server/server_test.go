package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mockbank/internal/config"
	"mockbank/internal/database"
	"mockbank/internal/dto"
	"mockbank/internal/models"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type ServerSuite struct {
	suite.Suite
	db     *database.DB
	server *Server
	token  string
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}

func (s *ServerSuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	_, err := s.db.SeedDemoData(bcrypt.MinCost)
	s.Require().NoError(err)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:             "0",
			Host:             "127.0.0.1",
			Environment:      "testing",
			CORSAllowOrigins: []string{"http://localhost:3000"},
		},
		JWT: config.JWTConfig{
			SecretKey:           "server-test-secret",
			AccessTokenDuration: 30 * time.Minute,
			Issuer:              "mockbank-test",
		},
		Security: config.SecurityConfig{
			BCryptCost:         bcrypt.MinCost,
			RateLimitPerSecond: 1000,
			RateLimitBurst:     1000,
		},
		RateLimit: config.RateLimitConfig{
			BalancePerMin:  2,
			TransferPerMin: 10,
		},
		Transfer: config.TransferConfig{
			AsyncDelay:     time.Hour,
			IdempotencyTTL: time.Hour,
			Workers:        1,
		},
		Webhook: config.WebhookConfig{Timeout: time.Second},
		Audit:   config.AuditConfig{Retention: 24 * time.Hour},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.server = New(cfg, s.db, prometheus.NewRegistry(), logger)
	s.token = s.login()
}

func (s *ServerSuite) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) authed(extra map[string]string) map[string]string {
	headers := map[string]string{"Authorization": "Bearer " + s.token}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}

func (s *ServerSuite) login() string {
	form := url.Values{"username": {database.SeedUsername}, "password": {database.SeedPassword}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.server.Handler().ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var tokens dto.TokenResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tokens))
	s.Equal("bearer", tokens.TokenType)
	return tokens.AccessToken
}

func (s *ServerSuite) balance(accountID string) float64 {
	rec := s.do(http.MethodGet, "/accounts/"+accountID+"/balance", "", s.authed(nil))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var body dto.BalanceResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Balance
}

func (s *ServerSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/health", "", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"status":"healthy"`)
	s.NotEmpty(rec.Header().Get("X-Trace-ID"))
	s.Equal("nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func (s *ServerSuite) TestMetricsEndpoint() {
	rec := s.do(http.MethodGet, "/metrics", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestProtectedRouteRequiresToken() {
	rec := s.do(http.MethodGet, "/accounts/me", "", nil)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_002")
}

func (s *ServerSuite) TestListAccounts() {
	rec := s.do(http.MethodGet, "/accounts/me", "", s.authed(nil))
	s.Require().Equal(http.StatusOK, rec.Code)

	var accounts []dto.AccountSummary
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &accounts))
	s.Require().Len(accounts, 2)
	s.Equal("ACC1001", accounts[0].AccountID)
	s.Equal("ACC2001", accounts[1].AccountID)
}

func (s *ServerSuite) TestSyncTransferReplaysWithoutDoubleDebit() {
	body := `{"from_acct":"ACC1001","to_acct":"ACC2001","amount":"100.00","mode":"sync"}`
	headers := s.authed(map[string]string{"Idempotency-Key": "server-key-1"})

	first := s.do(http.MethodPost, "/transfers", body, headers)
	s.Require().Equal(http.StatusOK, first.Code, first.Body.String())
	s.Empty(first.Header().Get("Idempotent-Replay"))

	second := s.do(http.MethodPost, "/transfers", body, headers)
	s.Require().Equal(http.StatusOK, second.Code)
	s.Equal("true", second.Header().Get("Idempotent-Replay"))
	s.JSONEq(first.Body.String(), second.Body.String())

	s.Equal(900.0, s.balance("ACC1001"))
}

func (s *ServerSuite) TestAsyncTransferAccepted() {
	body := `{"from_acct":"ACC1001","to_acct":"ACC2001","amount":"5","mode":"async"}`
	rec := s.do(http.MethodPost, "/transfers", body, s.authed(map[string]string{"Idempotency-Key": "async-1"}))

	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())

	var created dto.TransferCreatedResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &created))
	s.Equal("accepted", created.Status)

	lookup := s.do(http.MethodGet, "/transfers/"+created.TransferID, "", s.authed(nil))
	s.Equal(http.StatusOK, lookup.Code)
	s.Contains(lookup.Body.String(), `"status":"PROCESSING"`)
}

func (s *ServerSuite) TestBalanceRouteLimit() {
	s.balance("ACC1001")
	s.balance("ACC1001")

	rec := s.do(http.MethodGet, "/accounts/ACC1001/balance", "", s.authed(nil))

	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Contains(rec.Body.String(), `"limit_per_min":2`)
	s.Contains(rec.Body.String(), `"route":"balance"`)
}

func (s *ServerSuite) TestLogoutRevokesToken() {
	rec := s.do(http.MethodPost, "/auth/logout", "", s.authed(nil))
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/accounts/me", "", s.authed(nil))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_004")
}

func (s *ServerSuite) TestWebhookEcho() {
	rec := s.do(http.MethodPost, "/webhooks/transfer-status", `{"transfer_id":"abc","status":"SUCCESS"}`, nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"received":true`)
}

func (s *ServerSuite) TestUnknownRoute() {
	for _, headers := range []map[string]string{nil, s.authed(nil)} {
		rec := s.do(http.MethodGet, "/nope", "", headers)

		s.Equal(http.StatusNotFound, rec.Code)
		s.Contains(rec.Body.String(), "SYSTEM_005")
	}
}

func (s *ServerSuite) TestAuthIsScopedToProtectedRoutes() {
	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/auth/logout"},
		{http.MethodGet, "/accounts/ACC1001/transactions"},
		{http.MethodPatch, "/accounts/ACC1001/status"},
		{http.MethodPost, "/transfers"},
		{http.MethodGet, "/transfers"},
		{http.MethodGet, "/transfers/" + uuid.NewString()},
	} {
		rec := s.do(route.method, route.path, "", nil)
		s.Equal(http.StatusUnauthorized, rec.Code, route.path)
	}

	rec := s.do(http.MethodGet, "/transfers", "", s.authed(nil))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *ServerSuite) TestRejectedTransferDoesNotBlockNextKey() {
	rejected := s.do(http.MethodPost, "/transfers",
		`{"from_acct":"ACC1001","to_acct":"ACC2001","amount":"5000","mode":"sync"}`,
		s.authed(map[string]string{"Idempotency-Key": "first-try"}))
	s.Require().Equal(http.StatusBadRequest, rejected.Code, rejected.Body.String())

	corrected := s.do(http.MethodPost, "/transfers",
		`{"from_acct":"ACC1001","to_acct":"ACC2001","amount":"10","mode":"sync"}`,
		s.authed(map[string]string{"Idempotency-Key": "second-try"}))
	s.Require().Equal(http.StatusOK, corrected.Code, corrected.Body.String())
	s.Empty(corrected.Header().Get("Idempotent-Replay"))

	s.Equal(990.0, s.balance("ACC1001"))
}

func (s *ServerSuite) TestCleanup_SweepsExpiredRows() {
	user := database.CreateTestUser(s.T(), s.db, "sweeper")
	s.Require().NoError(s.db.Create(&models.BlacklistedToken{JTI: "old", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	s.Require().NoError(s.db.Create(&models.BlacklistedToken{JTI: "live", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}).Error)
	s.Require().NoError(s.db.Create(&models.IdempotencyRecord{Key: "idem:old", Body: "{}", ExpiresAt: time.Now().Add(-time.Hour)}).Error)

	s.server.cleanup()

	var tokens, records int64
	s.Require().NoError(s.db.Model(&models.BlacklistedToken{}).Count(&tokens).Error)
	s.Require().NoError(s.db.Model(&models.IdempotencyRecord{}).Where("idem_key = ?", "idem:old").Count(&records).Error)
	s.Equal(int64(1), tokens)
	s.Zero(records)
}

func (s *ServerSuite) TestCleanup_RequeuesStuckQueueItems() {
	item := &models.TransferQueueItem{
		TransferID: uuid.New(),
		Status:     models.QueueStatusProcessing,
		UpdatedAt:  time.Now().Add(-time.Hour),
	}
	s.Require().NoError(s.db.Create(item).Error)

	s.server.cleanup()

	var reloaded models.TransferQueueItem
	s.Require().NoError(s.db.Where("id = ?", item.ID).First(&reloaded).Error)
	s.Equal(models.QueueStatusPending, reloaded.Status)
}

func (s *ServerSuite) TestCleanup_PurgesExpiredAuditLogs() {
	stale := &models.AuditLog{
		Action:    models.AuditActionLoginFailed,
		Resource:  models.AuditResourceSession,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	s.Require().NoError(s.db.Create(stale).Error)

	s.server.cleanup()

	var count int64
	s.Require().NoError(s.db.Model(&models.AuditLog{}).Where("id = ?", stale.ID).Count(&count).Error)
	s.Zero(count)

	// the login from SetupTest is recent and survives
	s.Require().NoError(s.db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionLoginSuccess).Count(&count).Error)
	s.Equal(int64(1), count)
}
