package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "mockbank/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	handler echo.HTTPErrorHandler
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.handler = NewHTTPErrorHandler(testMetrics(), discardLogger())
	s.echo.HTTPErrorHandler = s.handler
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) handle(method string, err error) (*httptest.ResponseRecorder, apierrors.ErrorResponse) {
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")

	s.handler(err, c)

	var body apierrors.ErrorResponse
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	rec, body := s.handle(http.MethodGet, echo.NewHTTPError(http.StatusNotFound, "Resource not found"))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(apierrors.SystemNotFound), body.Error.Code)
	s.Equal("Resource not found", body.Error.Message)
	s.Equal("Resource not found", body.Detail)
	s.Equal("test-trace-id", body.Error.TraceID)
}

func (s *ErrorHandlerTestSuite) TestMethodNotAllowed() {
	rec, body := s.handle(http.MethodGet, echo.ErrMethodNotAllowed)

	s.Equal(http.StatusMethodNotAllowed, rec.Code)
	s.Equal(string(apierrors.ValidationGeneral), body.Error.Code)
}

func (s *ErrorHandlerTestSuite) TestValidationErrors() {
	type payload struct {
		Status string `validate:"required"`
	}
	err := validator.New().Struct(payload{})
	s.Require().Error(err)

	rec, body := s.handle(http.MethodPost, err)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationGeneral), body.Error.Code)
	s.Equal([]string{"Status is required"}, body.Error.Details)
	s.Equal("Status is required", body.Detail)
}

func (s *ErrorHandlerTestSuite) TestGenericError() {
	rec, body := s.handle(http.MethodGet, errors.New("database exploded"))

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(string(apierrors.SystemInternalError), body.Error.Code)
	s.NotContains(rec.Body.String(), "database exploded")
}

func (s *ErrorHandlerTestSuite) TestHeadRequestHasNoBody() {
	rec, _ := s.handle(http.MethodHead, echo.NewHTTPError(http.StatusNotFound, "gone"))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Zero(rec.Body.Len())
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	s.Require().NoError(c.String(http.StatusAccepted, "done"))

	s.handler(errors.New("late failure"), c)

	s.Equal(http.StatusAccepted, rec.Code)
	s.Equal("done", rec.Body.String())
}

func (s *ErrorHandlerTestSuite) TestMapHTTPStatusToErrorCode() {
	tests := []struct {
		status int
		code   apierrors.ErrorCode
	}{
		{http.StatusBadRequest, apierrors.ValidationGeneral},
		{http.StatusUnauthorized, apierrors.AuthMissingToken},
		{http.StatusForbidden, apierrors.AuthInsufficientPermission},
		{http.StatusNotFound, apierrors.SystemNotFound},
		{http.StatusRequestEntityTooLarge, apierrors.ValidationGeneral},
		{http.StatusTooManyRequests, apierrors.SystemRateLimitExceeded},
		{http.StatusServiceUnavailable, apierrors.SystemServiceUnavailable},
		{http.StatusTeapot, apierrors.SystemInternalError},
	}

	for _, tt := range tests {
		s.Equal(tt.code, mapHTTPStatusToErrorCode(tt.status), "status %d", tt.status)
	}
}
