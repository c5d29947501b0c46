package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
		"email":     "Jane@Example.com",
		"password":  "password123",
		"full_name": "Jane Doe",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp types.AuthResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, types.TokenTypeBearer, resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	require.NotNil(t, resp.User)
	assert.Equal(t, "jane@example.com", resp.User.Email)
	assert.Equal(t, "Jane Doe", resp.User.FullName)

	claims, err := env.deps.JWT.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	stored, err := env.store.GetUser(t.Context(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		w := env.do(jsonRequest(t, http.MethodPost, "/auth/signup", map[string]string{
			"email":    "jane@example.com",
			"password": "password123",
		}))
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSignup_Invalid(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed json", `{"email":`, "Invalid request body"},
		{"bad email", `{"email":"nope","password":"password123"}`, "Email"},
		{"short password", `{"email":"a@b.co","password":"short"}`, "Password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))
			w := env.do(req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.seedUser(t, "jane@example.com")

	w := env.do(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    "JANE@example.com",
		"password": "password123",
	}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.AuthResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	for _, body := range []map[string]string{
		{"email": "jane@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "password123"},
	} {
		w := env.do(jsonRequest(t, http.MethodPost, "/auth/login", body))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())
	}
}

func TestMeAndVerifyToken(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.seedUser(t, "jane@example.com")

	w := env.do(withToken(httptest.NewRequest(http.MethodGet, "/auth/me", nil), token))
	require.Equal(t, http.StatusOK, w.Code)
	var me types.UserResponse
	decodeBody(t, w, &me)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "jane@example.com", me.Email)

	w = env.do(withToken(httptest.NewRequest(http.MethodGet, "/auth/verify-token", nil), token))
	require.Equal(t, http.StatusOK, w.Code)
	var verify types.VerifyTokenResponse
	decodeBody(t, w, &verify)
	assert.True(t, verify.Valid)
	assert.Equal(t, user.ID, verify.User.ID)

	w = env.do(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	t.Run("deleted user", func(t *testing.T) {
		token, err := env.deps.JWT.GenerateToken(uuid.New(), "ghost@example.com", "")
		require.NoError(t, err)
		w := env.do(withToken(httptest.NewRequest(http.MethodGet, "/auth/me", nil), token))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Successfully logged out"}`, w.Body.String())
}
