// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

const identityKey ContextKey = "identity"

// ErrNoIdentity is returned when a request carries no authenticated user.
var ErrNoIdentity = errors.New("user identity not found in request context")

// Identity is the authenticated user behind a request.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	FullName string
}

// TokenValidator validates a bearer token and returns the identity it names.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Identity, error)
}

// AuthMiddleware rejects requests without a valid bearer token with 401 and
// adds the token's identity to the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := authenticate(validator, r)
			if !ok {
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth adds the identity of a valid bearer token to the context and
// lets every other request through anonymously.
func OptionalAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := authenticate(validator, r); ok {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func authenticate(validator TokenValidator, r *http.Request) (*Identity, bool) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, false
	}
	id, err := validator.ValidateToken(token)
	if err != nil || id == nil || id.UserID == uuid.Nil {
		return nil, false
	}
	return id, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Could not validate credentials"})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the authenticated identity of the request.
func GetIdentity(r *http.Request) (*Identity, error) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	if !ok || id == nil {
		return nil, ErrNoIdentity
	}
	return id, nil
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	id, err := GetIdentity(r)
	if err != nil {
		return uuid.Nil, err
	}
	return id.UserID, nil
}
