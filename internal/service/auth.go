package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for both unknown users and wrong
// passwords so login failures do not leak which usernames exist.
var ErrInvalidCredentials = errors.New("invalid credentials")

// LoginResult carries the issued token plus the forced-change flag the UI
// needs before letting the user in.
type LoginResult struct {
	Token              string `json:"token"`
	Username           string `json:"username"`
	Privileged         bool   `json:"privileged"`
	MustChangePassword bool   `json:"must_change_password"`
	ExpiresIn          int64  `json:"expires_in"`
}

// AuthService handles authentication operations
type AuthService struct {
	users      domain.UserRepository
	jwtManager *security.JWTManager
}

// NewAuthService creates a new auth service
func NewAuthService(users domain.UserRepository, jwtManager *security.JWTManager) *AuthService {
	return &AuthService{users: users, jwtManager: jwtManager}
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input domain.UserLogin) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.Username, user.Privileged)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		Token:              token,
		Username:           user.Username,
		Privileged:         user.Privileged,
		MustChangePassword: user.MustChange,
		ExpiresIn:          int64(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// ChangePassword sets a new password and clears the forced-change flag
func (s *AuthService) ChangePassword(ctx context.Context, input domain.PasswordChange) error {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.MustChange = false
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// CreateUser registers a new account with a password that must be changed
// on first login. Only privileged callers reach this; the handler enforces
// it.
func (s *AuthService) CreateUser(ctx context.Context, username, password string, privileged bool) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, errors.New("username already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Privileged:   privileged,
		MustChange:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
