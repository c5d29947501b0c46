package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/jobdesc"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"email exists", &ErrEmailAlreadyExists{Email: "a@b.c"}, http.StatusConflict},
		{"bad credentials", &ErrInvalidCredentials{}, http.StatusUnauthorized},
		{"user not found", &ErrUserNotFound{UserID: uuid.New()}, http.StatusNotFound},
		{"project not found", &ErrNotFound{Resource: "project"}, http.StatusNotFound},
		{"forbidden", &ErrForbidden{Resource: "project"}, http.StatusForbidden},
		{"validation", &ErrValidation{Field: "email", Message: "required"}, http.StatusBadRequest},
		{"job description", &jobdesc.Error{Source: "upload", Message: "unsupported"}, http.StatusBadRequest},
		{"empty job description", jobdesc.ErrEmpty, http.StatusBadRequest},
		{"ats service", &ats.ServiceError{Endpoint: "/analyze", StatusCode: 500}, http.StatusBadGateway},
		{"wrapped", fmt.Errorf("loading: %w", &ErrForbidden{Resource: "project"}), http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "project not found: 42", (&ErrNotFound{Resource: "project", ID: "42"}).Error())
	assert.Equal(t, "validation error: bad input", (&ErrValidation{Message: "bad input"}).Error())
	assert.Equal(t, "validation error: email - required", (&ErrValidation{Field: "email", Message: "required"}).Error())
}
