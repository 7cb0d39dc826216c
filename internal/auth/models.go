package auth

import (
	"errors"

	"beatsbook/internal/users"
)

// Sentinel errors returned by the auth service.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrDuplicateIdentifier = errors.New("email or username already in use")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrWrongPassword       = errors.New("current password is incorrect")
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	FirstName     string `json:"first_name" binding:"required,min=1,max=100"`
	LastName      string `json:"last_name" binding:"required,min=1,max=100"`
	Username      string `json:"username" binding:"required,min=3,max=100"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8,max=72"`
	ContactNumber string `json:"contact_number" binding:"omitempty,max=20"`
	StreetAddress string `json:"street_address" binding:"omitempty,max=255"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest is the payload for refreshing an access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest is the payload for changing the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// UpdateAccountRequest is the payload for updating account details.
// All fields are optional; absent fields are left unchanged.
type UpdateAccountRequest struct {
	FirstName     *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName      *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Username      *string `json:"username" binding:"omitempty,min=3,max=100"`
	Email         *string `json:"email" binding:"omitempty,email"`
	ContactNumber *string `json:"contact_number" binding:"omitempty,max=20"`
	StreetAddress *string `json:"street_address" binding:"omitempty,max=255"`
}

// TokenPair holds an access/refresh token pair with expiry info.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime in seconds
	TokenType    string `json:"token_type"`
}

// AuthResponse is returned on register and login.
type AuthResponse struct {
	User   *users.UserResponse `json:"user"`
	Tokens *TokenPair          `json:"tokens"`
}
