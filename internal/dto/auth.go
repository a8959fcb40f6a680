package dto

// Auth Request DTOs

// LoginRequest accepts credentials as JSON or as an OAuth2 password form
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=50"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Auth Response DTOs

// TokenResponse contains the bearer access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}
