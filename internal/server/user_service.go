package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/resume-revamp/internal/config"
	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/types"
)

// UserService provides business logic for user authentication operations
type UserService struct {
	db             UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             store,
		passwordConfig: passwordConfig,
	}
}

// toUserResponse converts a stored user to its public view.
func toUserResponse(u *db.User) *types.UserResponse {
	if u == nil {
		return nil
	}
	return &types.UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		EmailConfirmed: true,
		CreatedAt:      u.CreatedAt,
	}
}

// Signup creates a user with a hashed password.
func (s *UserService) Signup(ctx context.Context, req *types.SignupRequest) (*db.User, error) {
	exists, err := s.db.CheckEmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: req.Email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, req.Email, strings.TrimSpace(req.FullName), passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*db.User, error) {
	user, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// unknown email and wrong password are indistinguishable
	if user == nil || user.PasswordHash == "" {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return user, nil
}

// GetUser returns the user or ErrUserNotFound.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*db.User, error) {
	user, err := s.db.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: id}
	}
	return user, nil
}
