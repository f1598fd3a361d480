package service_test

import (
	"context"
	"testing"
	"time"

	"go-gin-meetup/internal/auth"
	cachemocks "go-gin-meetup/internal/mocks/cache"
	"go-gin-meetup/internal/repository"
	"go-gin-meetup/internal/service"
	apperrors "go-gin-meetup/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (service.AuthService, *auth.TokenIssuer, *cachemocks.UserSummaryCacheMock) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	summaryCache := cachemocks.NewUserSummaryCacheMock()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	return service.NewAuthService(users, service.NewUserDirectory(users, summaryCache), tokens), tokens, summaryCache
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, tokens, _ := newAuthService(t)

		resp, err := svc.Register(ctx, service.RegisterParams{
			Name:     " Alice ",
			Email:    "Alice@Example.com",
			Password: "secret123",
			City:     "Taipei",
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice", resp.User.Name)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.NotEqual(t, "secret123", resp.User.PasswordHash)

		userID, err := tokens.Parse(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID, userID)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		params := service.RegisterParams{Name: "Alice", Email: "alice@example.com", Password: "secret123"}

		_, err := svc.Register(ctx, params)
		require.NoError(t, err)

		params.Email = "ALICE@example.com"
		_, err = svc.Register(ctx, params)
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("Validation", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		cases := map[string]service.RegisterParams{
			"missing name":   {Email: "a@example.com", Password: "secret123"},
			"invalid email":  {Name: "A", Email: "not-an-email", Password: "secret123"},
			"short password": {Name: "A", Email: "a@example.com", Password: "12345"},
		}
		for name, params := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.Register(ctx, params)
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			})
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService(t)
	registered, err := svc.Register(ctx, service.RegisterParams{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		resp, err := svc.Login(ctx, service.LoginParams{Email: " ALICE@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, resp.User.ID)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, service.LoginParams{Email: "alice@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("Unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, service.LoginParams{Email: "bob@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, summaryCache := newAuthService(t)
	registered, err := svc.Register(ctx, service.RegisterParams{Name: "Alice", Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	userID := registered.User.ID

	t.Run("Success invalidates cached summary", func(t *testing.T) {
		summaryCache.On("Invalidate", mock.Anything, userID).Return(nil).Once()

		city := " Kaohsiung "
		hobbies := []string{" hiking ", ""}
		user, err := svc.UpdateProfile(ctx, userID, service.UpdateProfileParams{City: &city, Hobbies: &hobbies})
		require.NoError(t, err)
		assert.Equal(t, "Alice", user.Name)
		assert.Equal(t, "Kaohsiung", user.City)
		assert.Equal(t, []string{"hiking"}, user.Hobbies)
		summaryCache.AssertExpectations(t)
	})

	t.Run("Empty name rejected", func(t *testing.T) {
		name := "  "
		_, err := svc.UpdateProfile(ctx, userID, service.UpdateProfileParams{Name: &name})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("No fields rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, userID, service.UpdateProfileParams{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Me", func(t *testing.T) {
		me, err := svc.Me(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "Kaohsiung", me.City)
	})
}
