package middleware

import (
	"regexp"

	"mockbank/internal/handlers"
	"mockbank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	TraceIDHeader   = "X-Trace-ID"
	RequestIDHeader = "X-Request-ID"

	TraceIDContextKey = handlers.TraceIDContextKey
)

// inbound ids end up in logs and audit rows, so only short token-like values are trusted
var clientTraceID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,64}$`)

// RequestID picks the request's trace id (X-Trace-ID, then X-Request-ID, else a new UUID),
// echoes it in X-Trace-ID and stores it on both the echo context and the request context.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			traceID := pickTraceID(req.Header.Get(TraceIDHeader), req.Header.Get(RequestIDHeader))

			c.Set(TraceIDContextKey, traceID)
			c.SetRequest(req.WithContext(services.WithCorrelationID(req.Context(), traceID)))
			c.Response().Header().Set(TraceIDHeader, traceID)
			return next(c)
		}
	}
}

func pickTraceID(candidates ...string) string {
	for _, id := range candidates {
		if clientTraceID.MatchString(id) {
			return id
		}
	}
	return uuid.NewString()
}

// GetTraceID returns "" outside a request that passed through RequestID
func GetTraceID(c echo.Context) string {
	id, _ := c.Get(TraceIDContextKey).(string)
	return id
}
