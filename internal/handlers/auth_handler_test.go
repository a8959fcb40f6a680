package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mockbank/internal/dto"
	"mockbank/internal/services"
	"mockbank/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

type AuthHandlerSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	authService *service_mocks.MockAuthServiceInterface
	handler     *AuthHandler
	e           *echo.Echo
}

func (s *AuthHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.authService = service_mocks.NewMockAuthServiceInterface(s.ctrl)
	s.handler = NewAuthHandler(s.authService)
	s.e = newTestEcho()
}

func (s *AuthHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthHandlerSuite) TestLogin_JSON() {
	s.authService.EXPECT().
		Login(&dto.LoginRequest{Username: "student", Password: "studentpass"}, gomock.Any()).
		Return(&dto.TokenResponse{AccessToken: "jwt", TokenType: "bearer", ExpiresIn: 1800}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(map[string]string{
		"username": "student",
		"password": "studentpass",
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Login(s.e.NewContext(req, rec)))
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"access_token":"jwt","token_type":"bearer","expires_in":1800}`, rec.Body.String())
}

func (s *AuthHandlerSuite) TestLogin_Form() {
	s.authService.EXPECT().
		Login(&dto.LoginRequest{Username: "student", Password: "studentpass"}, gomock.Any()).
		Return(&dto.TokenResponse{AccessToken: "jwt", TokenType: "bearer", ExpiresIn: 1800}, nil)

	form := url.Values{"username": {"student"}, "password": {"studentpass"}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Login(s.e.NewContext(req, rec)))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *AuthHandlerSuite) TestLogin_InvalidCredentials() {
	s.authService.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, services.ErrInvalidCredentials)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(map[string]string{
		"username": "student",
		"password": "wrong",
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Login(s.e.NewContext(req, rec)))
	s.Equal(http.StatusUnauthorized, rec.Code)

	resp := decodeError(rec)
	s.Equal("AUTH_001", resp.Error.Code)
	s.Equal("Invalid credentials", resp.Detail)
}

func (s *AuthHandlerSuite) TestLogin_MissingPassword() {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(map[string]string{"username": "student"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	err := s.handler.Login(s.e.NewContext(req, rec))
	s.Error(err, "validation errors are left to the HTTP error handler")
}

func (s *AuthHandlerSuite) TestLogin_SystemError() {
	s.authService.EXPECT().
		Login(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("db down"))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(map[string]string{
		"username": "student",
		"password": "studentpass",
	}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Login(s.e.NewContext(req, rec)))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "db down")
}

func (s *AuthHandlerSuite) TestLogout() {
	s.authService.EXPECT().Logout("jwt-token", gomock.Any()).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer jwt-token")
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Logout(s.e.NewContext(req, rec)))
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *AuthHandlerSuite) TestLogout_ServiceErrorStillNoContent() {
	s.authService.EXPECT().Logout("jwt-token", gomock.Any()).Return(errors.New("db down"))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "bearer jwt-token")
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Logout(s.e.NewContext(req, rec)))
	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *AuthHandlerSuite) TestLogout_MissingHeader() {
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()

	s.NoError(s.handler.Logout(s.e.NewContext(req, rec)))
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal("AUTH_002", decodeError(rec).Error.Code)
}
