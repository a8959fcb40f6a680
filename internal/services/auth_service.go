package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mockbank/internal/dto"
	"mockbank/internal/models"
	"mockbank/internal/repositories"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService handles authentication business logic
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	auditService         AuditServiceInterface
	metrics              MetricsRecorderInterface
	logger               *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	auditService AuditServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:             userRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		auditService:         auditService,
		metrics:              metrics,
		logger:               logger,
	}
}

// Login verifies the credentials and issues a bearer access token
func (s *AuthService) Login(req *dto.LoginRequest, meta RequestMeta) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.passwordService.CompareDecoy(req.Password)
			s.auditFailedLogin(username, "user_not_found", meta)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		s.auditFailedLogin(username, "invalid_password", meta)
		return nil, ErrInvalidCredentials
	}

	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if err := s.auditService.LogLogin(user.ID, meta); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "action", models.AuditActionLoginSuccess)
	}
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": models.AuditActionLoginSuccess})

	return &dto.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   int(time.Until(expiresAt).Round(time.Second).Seconds()),
	}, nil
}

// Logout revokes the token's jti until the token would have expired anyway
func (s *AuthService) Logout(accessToken string, meta RequestMeta) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ErrInvalidSubject
	}

	expiresAt := time.Now().Add(time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.blacklistedTokenRepo.Create(&models.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := s.auditService.LogLogout(userID, meta); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "action", models.AuditActionLogout)
	}
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": models.AuditActionLogout})

	return nil
}

func (s *AuthService) auditFailedLogin(username, reason string, meta RequestMeta) {
	if err := s.auditService.LogFailedLogin(username, reason, meta); err != nil {
		s.logger.Error("failed to create audit log", "error", err, "action", models.AuditActionLoginFailed)
	}
	s.metrics.IncrementCounter(MetricAuthenticationEvent, map[string]string{"event_type": models.AuditActionLoginFailed})
}
