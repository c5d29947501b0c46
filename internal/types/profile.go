package types

import (
	"time"

	"github.com/google/uuid"
)

// ProfileRequest is the body of POST /profile.
type ProfileRequest struct {
	Location string `json:"location,omitempty" validate:"max=200"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=50"`
	LinkedIn string `json:"linkedin" validate:"required,max=300"`
	GitHub   string `json:"github,omitempty" validate:"max=300"`
}

// ProfileResponse is the stored profile.
type ProfileResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Location  string    `json:"location,omitempty"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	LinkedIn  string    `json:"linkedin"`
	GitHub    string    `json:"github,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate validates the ProfileRequest using the validator.
func (r *ProfileRequest) Validate() error {
	return validate.Struct(r)
}
