package handlers

import (
	"fmt"
	"strconv"

	"mockbank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ErrUnauthorized is returned when user context is invalid
var ErrUnauthorized = fmt.Errorf("unauthorized")

// ErrInvalidInteger is returned for a query parameter that is not a whole number
var ErrInvalidInteger = fmt.Errorf("must be an integer")

// DefaultListLimit applies when a list endpoint is called without ?limit
const DefaultListLimit = 50

// getUserIDFromContext returns the user set by the auth middleware
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.UUID{}, ErrUnauthorized
	}
	return userID, nil
}

func getIntParam(c echo.Context, name string, defaultValue int) (int, error) {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(param)
	if err != nil {
		return 0, fmt.Errorf("%s %w", name, ErrInvalidInteger)
	}
	return value, nil
}

// requestMeta describes the caller for audit rows. X-Request-ID wins over the trace id.
func requestMeta(c echo.Context) services.RequestMeta {
	requestID := c.Request().Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = getTraceID(c)
	}
	return services.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		RequestID: requestID,
	}
}
