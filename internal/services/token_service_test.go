package services

import (
	"testing"
	"time"

	"mockbank/internal/config"
	"mockbank/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// TokenServiceTestSuite defines the test suite for TokenService
type TokenServiceTestSuite struct {
	suite.Suite
	service        TokenServiceInterface
	secret         string
	issuer         string
	accessDuration time.Duration
	user           *models.User
}

func (s *TokenServiceTestSuite) SetupTest() {
	s.secret = "test-secret"
	s.issuer = "test-issuer"
	s.accessDuration = 30 * time.Minute
	s.user = &models.User{ID: uuid.New(), Username: "student"}

	s.service = NewTokenService(&config.JWTConfig{
		SecretKey:           s.secret,
		Issuer:              s.issuer,
		AccessTokenDuration: s.accessDuration,
	})
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceTestSuite))
}

func (s *TokenServiceTestSuite) signWith(secret string, claims models.CustomClaims, method jwt.SigningMethod) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	s.Require().NoError(err)
	return token
}

func (s *TokenServiceTestSuite) claimsFor(expiresAt time.Time) models.CustomClaims {
	return models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   s.user.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: s.user.Username,
	}
}

func (s *TokenServiceTestSuite) TestGenerateAccessToken() {
	token, expiresAt, err := s.service.GenerateAccessToken(s.user)
	s.NoError(err)
	s.NotEmpty(token)
	s.WithinDuration(time.Now().Add(s.accessDuration), expiresAt, 5*time.Second)
}

func (s *TokenServiceTestSuite) TestGenerateAccessToken_NilUser() {
	_, _, err := s.service.GenerateAccessToken(nil)
	s.Error(err)
}

func (s *TokenServiceTestSuite) TestValidateAccessToken_Success() {
	token, _, err := s.service.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	claims, err := s.service.ValidateAccessToken(token)
	s.Require().NoError(err)
	s.Equal(s.user.ID.String(), claims.Subject)
	s.Equal("student", claims.Username)
	s.Equal(s.issuer, claims.Issuer)
	s.NotEmpty(claims.ID)
}

func (s *TokenServiceTestSuite) TestValidateAccessToken_EmptyToken() {
	_, err := s.service.ValidateAccessToken("")
	s.ErrorIs(err, ErrEmptyToken)
}

func (s *TokenServiceTestSuite) TestValidateAccessToken_MalformedToken() {
	_, err := s.service.ValidateAccessToken("not.a.jwt")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestExpiredToken() {
	token := s.signWith(s.secret, s.claimsFor(time.Now().Add(-time.Minute)), jwt.SigningMethodHS256)

	_, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrExpiredToken)
}

func (s *TokenServiceTestSuite) TestWrongIssuer() {
	claims := s.claimsFor(time.Now().Add(time.Hour))
	claims.Issuer = "someone-else"
	token := s.signWith(s.secret, claims, jwt.SigningMethodHS256)

	_, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidIssuer)
}

func (s *TokenServiceTestSuite) TestWrongSecret() {
	token := s.signWith("another-secret", s.claimsFor(time.Now().Add(time.Hour)), jwt.SigningMethodHS256)

	_, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestRejectsOtherHMACAlgorithms() {
	token := s.signWith(s.secret, s.claimsFor(time.Now().Add(time.Hour)), jwt.SigningMethodHS512)

	_, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestInvalidSubject() {
	claims := s.claimsFor(time.Now().Add(time.Hour))
	claims.Subject = "42"
	token := s.signWith(s.secret, claims, jwt.SigningMethodHS256)

	_, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidSubject)
}

func (s *TokenServiceTestSuite) TestExtractTokenFromHeader() {
	cases := map[string]struct {
		header  string
		want    string
		wantErr bool
	}{
		"valid bearer":     {header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		"lowercase bearer": {header: "bearer abc.def.ghi", want: "abc.def.ghi"},
		"no bearer":        {header: "abc.def.ghi", wantErr: true},
		"empty":            {header: "", wantErr: true},
		"only bearer":      {header: "Bearer", wantErr: true},
		"bearer space":     {header: "Bearer    ", wantErr: true},
	}

	for name, tc := range cases {
		s.Run(name, func() {
			token, err := s.service.ExtractTokenFromHeader(tc.header)
			if tc.wantErr {
				s.ErrorIs(err, ErrInvalidAuthHeader)
				return
			}
			s.NoError(err)
			s.Equal(tc.want, token)
		})
	}
}

func (s *TokenServiceTestSuite) TestGetJTI() {
	token, _, err := s.service.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	claims, err := s.service.ValidateAccessToken(token)
	s.Require().NoError(err)

	jti, err := s.service.GetJTI(token)
	s.NoError(err)
	s.Equal(claims.ID, jti)

	_, err = s.service.GetJTI("")
	s.ErrorIs(err, ErrEmptyToken)

	_, err = s.service.GetJTI("garbage")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenServiceTestSuite) TestMissingExpiryIsRejected() {
	claims := s.claimsFor(time.Now())
	claims.ExpiresAt = nil
	token := s.signWith(s.secret, claims, jwt.SigningMethodHS256)

	_, err := s.service.ValidateAccessToken(token)
	s.ErrorIs(err, ErrInvalidToken)
}
