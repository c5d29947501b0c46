package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testTokenValidator struct {
	validTokens map[string]*Identity
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]*Identity)}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (*Identity, error) {
	id, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return id, nil
}

func serve(h http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	want := &Identity{UserID: uuid.New(), Email: "ada@example.com", FullName: "Ada"}
	validator.validTokens["good"] = want

	var got *Identity
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetIdentity(r)
		require.NoError(t, err)
		got = id
		w.WriteHeader(http.StatusOK)
	}))

	for _, header := range []string{"Bearer good", "bearer good", "BEARER   good"} {
		got = nil
		w := serve(handler, header)
		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.Equal(t, want, got, header)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["nil-user"] = &Identity{}

	called := false
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer"},
		{"extra parts", "Bearer a b"},
		{"unknown token", "Bearer nope"},
		{"nil user id", "Bearer nil-user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(handler, tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"error":"Could not validate credentials"}`, w.Body.String())
		})
	}
	assert.False(t, called)
}

func TestOptionalAuth(t *testing.T) {
	validator := newTestTokenValidator()
	userID := uuid.New()
	validator.validTokens["good"] = &Identity{UserID: userID}

	var gotID uuid.UUID
	var gotErr error
	handler := OptionalAuth(validator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotErr = GetUserID(r)
	}))

	w := serve(handler, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, gotErr)
	assert.Equal(t, userID, gotID)

	for _, header := range []string{"", "Bearer bad"} {
		w = serve(handler, header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.ErrorIs(t, gotErr, ErrNoIdentity)
		assert.Equal(t, uuid.Nil, gotID)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "Bearer abc.def")
	token, ok := BearerToken(req)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", token)
}
