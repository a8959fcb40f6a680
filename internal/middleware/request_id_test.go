package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// RequestIDTestSuite defines the test suite for request ID middleware
type RequestIDTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func (s *RequestIDTestSuite) SetupTest() {
	s.echo = echo.New()
}

func TestRequestIDTestSuite(t *testing.T) {
	suite.Run(t, new(RequestIDTestSuite))
}

func (s *RequestIDTestSuite) run(req *http.Request) (*httptest.ResponseRecorder, string) {
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	var seen string
	handler := RequestID()(func(c echo.Context) error {
		seen = GetTraceID(c)
		return c.NoContent(http.StatusOK)
	})

	s.Require().NoError(handler(c))
	return rec, seen
}

func (s *RequestIDTestSuite) TestGeneratesTraceID() {
	rec, traceID := s.run(httptest.NewRequest(http.MethodGet, "/", nil))

	s.NotEmpty(traceID)
	s.Equal(traceID, rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestUsesExistingTraceID() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "existing-trace-id")

	rec, traceID := s.run(req)

	s.Equal("existing-trace-id", traceID)
	s.Equal("existing-trace-id", rec.Header().Get(TraceIDHeader))
}

func (s *RequestIDTestSuite) TestFallsBackToRequestIDHeader() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "client-request-id")

	_, traceID := s.run(req)

	s.Equal("client-request-id", traceID)
}

func (s *RequestIDTestSuite) TestUniquePerRequest() {
	_, first := s.run(httptest.NewRequest(http.MethodGet, "/", nil))
	_, second := s.run(httptest.NewRequest(http.MethodGet, "/", nil))

	s.NotEqual(first, second)
}

func (s *RequestIDTestSuite) TestGetTraceID_Missing() {
	c := s.echo.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	s.Empty(GetTraceID(c))
}

func (s *RequestIDTestSuite) TestRejectsUnsafeClientIDs() {
	cases := map[string]string{
		"newline":  "abc\ninjected",
		"too long": strings.Repeat("a", 65),
		"spaces":   "trace id",
		"html":     "<script>",
	}

	for name, value := range cases {
		s.Run(name, func() {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(TraceIDHeader, value)

			_, traceID := s.run(req)

			s.NotEqual(value, traceID)
			_, err := uuid.Parse(traceID)
			s.NoError(err)
		})
	}
}

func (s *RequestIDTestSuite) TestUnsafeTraceIDFallsBackToRequestID() {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(TraceIDHeader, "bad value")
	req.Header.Set(RequestIDHeader, "req-42")

	_, traceID := s.run(req)

	s.Equal("req-42", traceID)
}
