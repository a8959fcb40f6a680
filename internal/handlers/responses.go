package handlers

import (
	"log/slog"
	"net/http"

	"mockbank/internal/errors"

	"github.com/labstack/echo/v4"
)

// TraceIDContextKey is where the request id middleware leaves the trace id
const TraceIDContextKey = "trace_id"

// ErrorResponse is the body every failed call returns
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	id, _ := c.Get(TraceIDContextKey).(string)
	return id
}

// SendError writes a client or business error. The HTTP status follows from the code.
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	resp := errors.NewErrorResponse(code, getTraceID(c), opts...)
	return c.JSON(resp.GetHTTPStatus(), resp)
}

// SendSystemError answers 500 with SYSTEM_001. err is logged, never returned to the client.
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	resp, internal := errors.WrapSystemError(err, traceID)
	slog.ErrorContext(c.Request().Context(), "internal error",
		"trace_id", traceID,
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", internal,
	)
	return c.JSON(http.StatusInternalServerError, resp)
}
