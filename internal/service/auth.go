package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// TokenPair holds an access token and its companion refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService implements registration, login and token management.
type AuthService struct {
	users  repository.UserRepository
	jwt    *auth.JWTManager
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(users repository.UserRepository, jwt *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		jwt:    jwt,
		logger: logger,
	}
}

// RegisterInput holds the parameters for registering a user.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, *TokenPair, error) {
	if len(input.Password) < 8 {
		return nil, nil, apperrors.InvalidInput("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hashedPassword),
		Name:         input.Name,
		Phone:        input.Phone,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// LoginInput holds the parameters for a password login.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the user with fresh tokens. Both a
// missing account and a wrong password produce the same generic error.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.Unauthorized("invalid credentials")
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, tokens, nil
}

// GoogleLoginInput holds a verified Google profile.
type GoogleLoginInput struct {
	Email     string
	Name      string
	SubjectID string
}

// GoogleLogin upserts the user for a verified Google identity and returns tokens.
func (s *AuthService) GoogleLogin(ctx context.Context, input GoogleLoginInput) (*domain.User, *TokenPair, error) {
	if input.Email == "" || input.SubjectID == "" {
		return nil, nil, apperrors.InvalidInput("email and subject id are required")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.New().String(),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Name:          input.Name,
		Role:          domain.RoleUser,
		OAuthProvider: domain.ProviderGoogle,
		OAuthID:       input.SubjectID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	saved, err := s.users.UpsertOAuth(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	tokens, err := s.generateTokenPair(saved)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "google login",
		slog.String("user_id", saved.ID),
	)

	return saved, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid refresh token")
		}
		return nil, err
	}

	return s.generateTokenPair(user)
}

// Profile returns the authenticated user's account.
func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) generateTokenPair(user *domain.User) (*TokenPair, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
