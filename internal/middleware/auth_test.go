package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mockbank/internal/config"
	"mockbank/internal/database"
	apierrors "mockbank/internal/errors"
	"mockbank/internal/models"
	"mockbank/internal/repositories"
	"mockbank/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

type AuthMiddlewareSuite struct {
	suite.Suite
	jwtConfig     *config.JWTConfig
	tokenService  services.TokenServiceInterface
	blacklistRepo repositories.BlacklistedTokenRepositoryInterface
	user          *models.User
	e             *echo.Echo
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.jwtConfig = &config.JWTConfig{
		SecretKey:           "test-secret",
		AccessTokenDuration: time.Hour,
		Issuer:              "test-issuer",
	}
	s.tokenService = services.NewTokenService(s.jwtConfig)

	db := database.SetupTestDB(s.T())
	s.blacklistRepo = repositories.NewBlacklistedTokenRepository(db.DB)
	s.user = &models.User{ID: uuid.New(), Username: "student"}
	s.e = echo.New()
}

func (s *AuthMiddlewareSuite) serve(authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodGet, "/accounts/me", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	handler := RequireAuth(s.tokenService, s.blacklistRepo)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	s.Require().NoError(handler(c))
	return rec, c
}

func (s *AuthMiddlewareSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func (s *AuthMiddlewareSuite) TestValidToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, c := s.serve("Bearer " + token)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(s.user.ID, c.Get("user_id"))
	s.Equal("student", c.Get("username"))
	s.NotEmpty(c.Get("token_jti"))
}

func (s *AuthMiddlewareSuite) TestMissingHeader() {
	rec, _ := s.serve("")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthMissingToken), s.errorCode(rec))
}

func (s *AuthMiddlewareSuite) TestNonBearerScheme() {
	rec, _ := s.serve("Basic dXNlcjpwYXNz")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthMissingToken), s.errorCode(rec))
}

func (s *AuthMiddlewareSuite) TestExpiredToken() {
	expiredConfig := *s.jwtConfig
	expiredConfig.AccessTokenDuration = -time.Minute
	token, _, err := services.NewTokenService(&expiredConfig).GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, _ := s.serve("Bearer " + token)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthExpiredToken), s.errorCode(rec))
}

func (s *AuthMiddlewareSuite) TestMalformedToken() {
	rec, _ := s.serve("Bearer not-a-jwt")

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthInvalidTokenFormat), s.errorCode(rec))
}

func (s *AuthMiddlewareSuite) TestRevokedToken() {
	token, expiresAt, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)
	jti, err := s.tokenService.GetJTI(token)
	s.Require().NoError(err)
	s.Require().NoError(s.blacklistRepo.Create(&models.BlacklistedToken{JTI: jti, UserID: s.user.ID, ExpiresAt: expiresAt}))

	rec, _ := s.serve("Bearer " + token)

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthInvalidTokenFormat), s.errorCode(rec))
}
