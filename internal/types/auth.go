// Package types holds the JSON request and response bodies of the HTTP API.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TokenTypeBearer is the token_type of every issued token.
const TokenTypeBearer = "bearer"

var validate = validator.New()

// SignupRequest creates an account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name,omitempty" validate:"max=200"`
}

// LoginRequest exchanges credentials for a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name,omitempty"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        *UserResponse `json:"user"`
}

// VerifyTokenResponse is returned by GET /auth/verify-token.
type VerifyTokenResponse struct {
	Valid bool          `json:"valid"`
	User  *UserResponse `json:"user"`
}

// MessageResponse carries a human readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// Validate validates the SignupRequest using the validator.
func (r *SignupRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}
