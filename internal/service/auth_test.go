package service

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// --- Mock Repository ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpsertOAuth(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newAuthService(repo *mockUserRepository) *AuthService {
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(repo, jwtManager, newTestLogger())
}

// --- Register Tests ---

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "asha@example.com" &&
			u.Role == domain.RoleUser &&
			u.PasswordHash != "" &&
			u.PasswordHash != "secret-password"
	})).Return(nil)

	user, tokens, err := svc.Register(context.Background(), RegisterInput{
		Email:    "Asha@Example.com",
		Password: "secret-password",
		Name:     "Asha Verma",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", user.Email)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Email:    "asha@example.com",
		Password: "short",
		Name:     "Asha",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create")
}

// --- Login Tests ---

func TestAuthService_Login_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.On("GetByEmail", mock.Anything, "asha@example.com").Return(&domain.User{
		ID:           "user-001",
		Email:        "asha@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}, nil)

	user, tokens, err := svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-001", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret-password"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.On("GetByEmail", mock.Anything, "asha@example.com").Return(&domain.User{
		PasswordHash: string(hash),
	}, nil)

	_, _, err = svc.Login(context.Background(), LoginInput{
		Email:    "asha@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.NotFound("user", "ghost@example.com"))

	_, _, err := svc.Login(context.Background(), LoginInput{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	// Unknown account and wrong password are indistinguishable.
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

// --- GoogleLogin Tests ---

func TestAuthService_GoogleLogin_UpsertsUser(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	repo.On("UpsertOAuth", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.OAuthProvider == domain.ProviderGoogle && u.OAuthID == "sub-123"
	})).Return(&domain.User{ID: "user-001", Email: "asha@example.com", Role: domain.RoleUser}, nil)

	user, tokens, err := svc.GoogleLogin(context.Background(), GoogleLoginInput{
		Email:     "asha@example.com",
		Name:      "Asha",
		SubjectID: "sub-123",
	})
	require.NoError(t, err)
	assert.Equal(t, "user-001", user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	repo.AssertExpectations(t)
}

// --- Refresh Tests ---

func TestAuthService_Refresh_Success(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, tokens, err := svc.Register(context.Background(), RegisterInput{
		Email:    "asha@example.com",
		Password: "secret-password",
		Name:     "Asha",
	})
	require.NoError(t, err)

	repo.On("GetByID", mock.Anything, mock.Anything).
		Return(&domain.User{ID: "user-001", Email: "asha@example.com", Role: domain.RoleUser}, nil)

	fresh, err := svc.Refresh(context.Background(), tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	repo := new(mockUserRepository)
	svc := newAuthService(repo)

	_, err := svc.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}
