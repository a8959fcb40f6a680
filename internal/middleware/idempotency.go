package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"mockbank/internal/models"
	"mockbank/internal/repositories"
	"mockbank/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	IdempotencyKeyHeader   = "Idempotency-Key"
	IdempotentReplayHeader = "Idempotent-Replay"
)

// IdempotencyConfig configures response replay for repeated Idempotency-Key requests
type IdempotencyConfig struct {
	Repo    repositories.IdempotencyRepositoryInterface
	TTL     time.Duration
	Metrics services.MetricsRecorderInterface
	Logger  *slog.Logger
}

// Idempotency stores the first 2xx or 4xx response (429 excluded) of a POST carrying an Idempotency-Key and replays
// it verbatim for the same caller, path and key until the record expires
func Idempotency(cfg IdempotencyConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			key := strings.TrimSpace(req.Header.Get(IdempotencyKeyHeader))
			if req.Method != http.MethodPost || key == "" {
				return next(c)
			}

			storeKey := idempotencyStoreKey(req.Header.Get(echo.HeaderAuthorization), req.URL.Path, key)

			record, err := cfg.Repo.Get(storeKey)
			switch {
			case err == nil:
				cfg.Metrics.IncrementCounter(services.MetricIdempotentReplay, nil)
				c.Response().Header().Set(IdempotentReplayHeader, "true")
				contentType := record.ContentType
				if contentType == "" {
					contentType = echo.MIMEApplicationJSON
				}
				return c.Blob(record.StatusCode, contentType, []byte(record.Body))
			case !errors.Is(err, repositories.ErrIdempotencyRecordNotFound):
				cfg.Logger.Error("idempotency lookup failed", "trace_id", GetTraceID(c), "error", err)
				return next(c)
			}

			store := echomw.BodyDump(func(c echo.Context, _, resBody []byte) {
				status := c.Response().Status
				if status >= http.StatusInternalServerError || status == http.StatusTooManyRequests {
					return
				}
				rec := &models.IdempotencyRecord{
					Key:         storeKey,
					StatusCode:  status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        string(resBody),
					ExpiresAt:   time.Now().Add(cfg.TTL),
				}
				if err := cfg.Repo.Save(rec); err != nil {
					cfg.Logger.Error("failed to store idempotent response", "trace_id", GetTraceID(c), "error", err)
				}
			})

			return store(next)(c)
		}
	}
}

func idempotencyStoreKey(authorization, path, key string) string {
	return fmt.Sprintf("idem:%s:%s:%s", lastN(authorization, 24), path, key)
}
