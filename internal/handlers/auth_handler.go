package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"mockbank/internal/dto"
	apierrors "mockbank/internal/errors"
	"mockbank/internal/services"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService services.AuthServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login exchanges a username and password for a bearer token.
// The credentials may be posted as a form or as JSON.
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest

	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(&req, requestMeta(c))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return SendError(c, apierrors.AuthInvalidCredentials)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout revokes the bearer token the request was made with
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return SendError(c, apierrors.AuthMissingToken)
	}

	token := authHeader
	if i := strings.IndexByte(authHeader, ' '); i >= 0 {
		token = strings.TrimSpace(authHeader[i+1:])
	}

	if err := h.authService.Logout(token, requestMeta(c)); err != nil {
		slog.Error("logout failed", "trace_id", getTraceID(c), "error", err)
	}

	return c.NoContent(http.StatusNoContent)
}
