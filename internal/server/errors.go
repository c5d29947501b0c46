// Package server provides the HTTP REST API for resume revamping.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrNotFound indicates a missing resource other than a user.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrForbidden indicates the caller does not own the resource.
type ErrForbidden struct {
	Resource string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("access denied to %s", e.Resource)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists *ErrEmailAlreadyExists
		badCreds    *ErrInvalidCredentials
		noUser      *ErrUserNotFound
		notFound    *ErrNotFound
		forbidden   *ErrForbidden
		invalid     *ErrValidation
		jdErr       *jobdesc.Error
		atsErr      *ats.ServiceError
	)
	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds):
		return http.StatusUnauthorized
	case errors.As(err, &noUser), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &invalid), errors.As(err, &jdErr), errors.Is(err, jobdesc.ErrEmpty):
		return http.StatusBadRequest
	case errors.As(err, &atsErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
