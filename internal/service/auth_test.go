package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ai-image-studio/internal/core/auth"
	"ai-image-studio/internal/domain"
	"ai-image-studio/internal/domain/mocks"
	"ai-image-studio/internal/service"
)

var testJWTer = &auth.JWTer{Secret: []byte("test-secret"), TTL: 24 * time.Hour}

func newAuthService(t *testing.T, repo domain.UserRepository) *service.AuthService {
	t.Helper()
	svc, err := service.NewAuthService(repo, testJWTer, auth.Hasher{Cost: bcrypt.MinCost}, nil)
	require.NoError(t, err)
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := newAuthService(t, repo)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "new@example.com").Return(nil, domain.ErrNotFound).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		assert.Equal(t, "new@example.com", u.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
		return true
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.User).ID = 5
	}).Return(nil).Once()

	res, err := svc.Register(ctx, "new@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.UserID)

	claims, err := testJWTer.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)

	repo.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := newAuthService(t, repo)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "taken@example.com").Return(&domain.User{ID: 1, Email: "taken@example.com"}, nil).Once()

	_, err := svc.Register(ctx, "taken@example.com", "secret1")
	assert.True(t, errors.Is(err, domain.ErrDuplicateUser))

	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_Register_LosesRace(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := newAuthService(t, repo)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "race@example.com").Return(nil, domain.ErrNotFound).Once()
	repo.On("Create", ctx, mock.AnythingOfType("*domain.User")).
		Return(errors.Join(errors.New("UNIQUE constraint failed"), domain.ErrDuplicateUser)).Once()

	_, err := svc.Register(ctx, "race@example.com", "secret1")
	assert.Equal(t, domain.ErrDuplicateUser, err)
	repo.AssertExpectations(t)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	repo := new(mocks.UserRepository)
	svc := newAuthService(t, repo)
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	repo.On("FindByEmail", ctx, "x@example.com").Return(nil, boom).Once()

	_, err := svc.Register(ctx, "x@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, domain.ErrDuplicateUser))
}

func TestAuthService_Authenticate(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: 9, Email: "user@example.com", PasswordHash: string(hashed)}

	t.Run("success", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		svc := newAuthService(t, repo)
		ctx := context.Background()
		repo.On("FindByEmail", ctx, "user@example.com").Return(stored, nil).Once()

		res, err := svc.Authenticate(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, int64(9), res.UserID)
		claims, err := testJWTer.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(9), claims.UserID)
		repo.AssertExpectations(t)
	})

	// 两种失败必须完全一致
	var failures []error
	for name, tc := range map[string]struct {
		email, password string
		found           *domain.User
		findErr         error
	}{
		"unknown email":  {"nobody@example.com", "password123", nil, domain.ErrNotFound},
		"wrong password": {"user@example.com", "password124", stored, nil},
	} {
		t.Run(name, func(t *testing.T) {
			repo := new(mocks.UserRepository)
			svc := newAuthService(t, repo)
			ctx := context.Background()
			repo.On("FindByEmail", ctx, tc.email).Return(tc.found, tc.findErr).Once()

			res, err := svc.Authenticate(ctx, tc.email, tc.password)
			assert.Nil(t, res)
			require.Error(t, err)
			failures = append(failures, err)
			repo.AssertExpectations(t)
		})
	}
	require.Len(t, failures, 2)
	assert.Equal(t, domain.ErrInvalidCredentials, failures[0])
	assert.Equal(t, failures[0], failures[1])
}

func TestNewAuthService_RejectsEmptySecret(t *testing.T) {
	_, err := service.NewAuthService(new(mocks.UserRepository), &auth.JWTer{}, auth.Hasher{Cost: bcrypt.MinCost}, nil)
	assert.Error(t, err)
}
