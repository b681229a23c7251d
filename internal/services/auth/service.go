package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"note-weave/internal/utils/crypto"

	"github.com/google/uuid"
)

// Service handles authentication business logic
type Service struct {
	repo       UsersRepo
	tokens     *Tokens
	bcryptCost int
	log        *slog.Logger
}

// NewService creates a new auth service
func NewService(repo UsersRepo, tokens *Tokens, bcryptCost int, log *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		log:        log,
	}
}

// SignUpRequest represents a user registration request
type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required,password" example:"Password123"`
}

// SignInRequest represents a user login request
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email" example:"test@example.com"`
	Password string `json:"password" validate:"required" example:"Password123"`
}

// AuthResponse represents the response for successful authentication
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// SignUp registers a new user
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrRegistrationFailed
	}
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		s.log.Error("failed to look up user by email", "error", err)
		return nil, errors.New("failed to create user")
	}

	hashedPassword, err := crypto.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.New("failed to process password")
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrRegistrationFailed
		}
		s.log.Error("failed to create user", "error", err)
		return nil, errors.New("failed to create user")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Error("failed to generate token", "error", err)
		return nil, ErrGenAccessToken
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// SignIn authenticates a user
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			s.log.Error("failed to find user by email", "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := crypto.CheckPassword(req.Password, user.PasswordHash); err != nil {
		s.log.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		s.log.Error("failed to generate token", "error", err)
		return nil, ErrGenAccessToken
	}

	return &AuthResponse{User: user, Token: token}, nil
}

// Me resolves the user behind an identity.
func (s *Service) Me(ctx context.Context, id Identity) (*User, error) {
	return s.repo.FindByID(ctx, id.UserID)
}

// Tokens returns the signer shared with the transport layer.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
