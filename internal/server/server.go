// Package server wires the banking API: repositories, services, middleware and routes.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"mockbank/internal/config"
	"mockbank/internal/database"
	"mockbank/internal/handlers"
	"mockbank/internal/middleware"
	"mockbank/internal/repositories"
	"mockbank/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	cleanupInterval     = time.Minute
	visitorIdleTimeout  = 3 * time.Minute
	queuePollInterval   = 500 * time.Millisecond
	queueRetention      = 24 * time.Hour
	queueStaleAfter     = 5 * time.Minute
	shutdownGracePeriod = 10 * time.Second

	routeBalance  = "balance"
	routeTransfer = "transfer"
)

// sweeper deletes one kind of stale row and reports how many went
type sweeper struct {
	name string
	run  func() (int64, error)
}

// Server owns the echo instance and the background jobs that back it
type Server struct {
	cfg       *config.Config
	echo      *echo.Echo
	ipLimiter *middleware.IPRateLimiter
	limiter   *middleware.FixedWindowLimiter
	sweepers  []sweeper
	processor services.TransferProcessingServiceInterface
	logger    *slog.Logger
}

// New builds the full dependency graph on top of an initialized database.
// Metrics are registered with reg and served from /metrics.
func New(cfg *config.Config, db *database.DB, reg *prometheus.Registry, logger *slog.Logger) *Server {
	accountRepo := repositories.NewAccountRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)
	blacklistRepo := repositories.NewBlacklistedTokenRepository(db.DB)
	idempotencyRepo := repositories.NewIdempotencyRepository(db.DB)
	ledgerRepo := repositories.NewLedgerRepository(db.DB)
	queueRepo := repositories.NewTransferQueueRepository(db.DB)
	transferRepo := repositories.NewTransferRepository(db.DB)
	userRepo := repositories.NewUserRepository(db.DB)

	metrics := services.NewPrometheusMetrics(reg)
	auditLogger := services.NewAuditLogger(logger)
	auditService := services.NewAuditService(auditRepo)
	tokenService := services.NewTokenService(&cfg.JWT)
	passwordService := services.NewPasswordService(cfg.Security.BCryptCost)
	notifier := services.NewWebhookNotifier(&cfg.Webhook, auditLogger, metrics, logger)

	authService := services.NewAuthService(userRepo, blacklistRepo, passwordService, tokenService, auditService, metrics, logger)
	accountService := services.NewAccountService(accountRepo, ledgerRepo, auditService, auditLogger, metrics, logger)
	transferService := services.NewTransferService(
		accountRepo, transferRepo, queueRepo, auditService, auditLogger, notifier, metrics, cfg.Transfer.AsyncDelay, logger,
	)
	processor := services.NewTransferProcessingService(
		queueRepo, transferService, auditLogger, metrics, cfg.Transfer.Workers, queuePollInterval, logger,
	)

	s := &Server{
		cfg:       cfg,
		echo:      echo.New(),
		ipLimiter: middleware.NewIPRateLimiter(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst),
		limiter:   middleware.NewFixedWindowLimiter(),
		sweepers: []sweeper{
			{name: "blacklisted_tokens", run: blacklistRepo.DeleteExpired},
			{name: "idempotency_records", run: idempotencyRepo.DeleteExpired},
			{name: "stale_queue_items", run: func() (int64, error) { return queueRepo.RequeueStale(queueStaleAfter) }},
			{name: "transfer_queue", run: func() (int64, error) { return queueRepo.CleanupCompleted(queueRetention) }},
			{name: "audit_logs", run: func() (int64, error) { return auditService.Purge(cfg.Audit.Retention) }},
		},
		processor: processor,
		logger:    logger,
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(metrics, logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			middleware.IdempotencyKeyHeader,
			middleware.RequestIDHeader,
		},
		ExposeHeaders:    []string{middleware.TraceIDHeader, middleware.IdempotentReplayHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"remote_ip", v.RemoteIP,
				"trace_id", middleware.GetTraceID(c),
			)
			return nil
		},
	}))
	e.Use(s.ipLimiter.Middleware())

	healthHandler := handlers.NewHealthCheckHandler(db.DB)
	authHandler := handlers.NewAuthHandler(authService)
	accountHandler := handlers.NewAccountHandler(accountService)
	transferHandler := handlers.NewTransferHandler(transferService)
	webhookHandler := handlers.NewWebhookHandler(logger)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	e.POST("/webhooks/transfer-status", webhookHandler.TransferStatus)
	e.POST("/auth/login", authHandler.Login)

	requireAuth := middleware.RequireAuth(tokenService, blacklistRepo)
	e.POST("/auth/logout", authHandler.Logout, requireAuth)

	// auth is never attached at the root so unknown paths stay 404 without a token
	accounts := e.Group("/accounts", requireAuth)
	accounts.GET("/me", accountHandler.ListAccounts)
	accounts.GET("/:id/balance", accountHandler.GetBalance,
		middleware.RouteRateLimit(s.limiter, routeBalance, cfg.RateLimit.BalancePerMin, metrics))
	accounts.GET("/:id/transactions", accountHandler.ListTransactions)
	accounts.PATCH("/:id/status", accountHandler.UpdateStatus)

	transfers := e.Group("/transfers", requireAuth)
	// Replays are served before the route limiter so retrying a stored request never counts against it
	transfers.POST("", transferHandler.CreateTransfer,
		middleware.Idempotency(middleware.IdempotencyConfig{
			Repo:    idempotencyRepo,
			TTL:     cfg.Transfer.IdempotencyTTL,
			Metrics: metrics,
			Logger:  logger,
		}),
		middleware.RouteRateLimit(s.limiter, routeTransfer, cfg.RateLimit.TransferPerMin, metrics))
	transfers.GET("", transferHandler.ListTransfers)
	transfers.GET("/:id", transferHandler.GetTransfer)

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves HTTP and runs the settlement worker and cleanup loop until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	go s.processor.StartProcessing(ctx)
	go s.cleanupLoop(ctx)

	httpServer := &http.Server{
		Addr:         s.cfg.Server.Host + ":" + s.cfg.Server.Port,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", "addr", httpServer.Addr, "env", s.cfg.Server.Environment)
		if err := s.echo.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	s.logger.Info("shutting down api")
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Server) cleanup() {
	s.ipLimiter.Cleanup(visitorIdleTimeout)
	s.limiter.Cleanup()

	for _, sw := range s.sweepers {
		removed, err := sw.run()
		if err != nil {
			s.logger.Error("cleanup failed", "table", sw.name, "error", err)
			continue
		}
		if removed > 0 {
			s.logger.Info("cleanup removed rows", "table", sw.name, "count", removed)
		}
	}
}
