package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
	"github.com/jonathan/resume-revamp/internal/types"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(userService *UserService, jwtService *JWTService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		logger:      logger.With("component", "auth"),
	}
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req types.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Signup(r.Context(), &req)
	if err != nil {
		h.failure(w, "signup failed", err)
		return
	}
	h.logger.Info("user signed up", "user_id", user.ID)
	h.issueToken(w, http.StatusCreated, user)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(h.logger, w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.failure(w, "login failed", err)
		return
	}
	h.issueToken(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout. Tokens are stateless, so the client
// discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(h.logger, w, http.StatusOK, types.MessageResponse{Message: "Successfully logged out"})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(h.logger, w, http.StatusOK, user)
}

// VerifyToken handles GET /auth/verify-token.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(h.logger, w, http.StatusOK, types.VerifyTokenResponse{Valid: true, User: user})
}

func (h *AuthHandler) currentUser(w http.ResponseWriter, r *http.Request) (*types.UserResponse, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(h.logger, w, http.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		h.failure(w, "failed to load current user", err)
		return nil, false
	}
	return toUserResponse(user), true
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, status int, user *db.User) {
	token, err := h.jwtService.GenerateToken(user.ID, user.Email, user.FullName)
	if err != nil {
		h.logger.Error("failed to generate token", "error", err)
		writeError(h.logger, w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(h.logger, w, status, types.AuthResponse{
		AccessToken: token,
		TokenType:   types.TokenTypeBearer,
		ExpiresIn:   int64(h.jwtService.Expiration().Seconds()),
		User:        toUserResponse(user),
	})
}

func (h *AuthHandler) failure(w http.ResponseWriter, msg string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
		writeError(h.logger, w, status, "Internal server error")
		return
	}
	writeError(h.logger, w, status, err.Error())
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}

// toValidationError converts the first validator failure to ErrValidation.
func toValidationError(err error) *ErrValidation {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Message: "invalid request"}
}
