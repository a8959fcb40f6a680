package models

import "github.com/golang-jwt/jwt/v5"

// CustomClaims are the access token claims. Subject carries the user ID.
type CustomClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}
