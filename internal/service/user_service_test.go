package service_test

import (
	"context"
	"testing"

	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/akuzmin/shortlinks/internal/repository"
	"github.com/akuzmin/shortlinks/internal/service"
	"github.com/akuzmin/shortlinks/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupUserService() (service.UserService, *mocks.MockUserRepository) {
	userRepo := mocks.NewMockUserRepository()
	logger, _ := zap.NewDevelopment()
	return service.NewUserService(userRepo, logger), userRepo
}

// TestUserService_Register_Success проверяет регистрацию с хэшированием пароля
func TestUserService_Register_Success(t *testing.T) {
	svc, _ := setupUserService()

	user, err := svc.Register(context.Background(), "alice", "secret123")

	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret123", user.PasswordHash, "пароль не должен храниться открытым текстом")
}

// TestUserService_Register_Validation проверяет отклонение плохого ввода
func TestUserService_Register_Validation(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "secret123")
	assert.ErrorIs(t, err, service.ErrUsernameRequired)

	_, err = svc.Register(ctx, "alice", "short")
	assert.ErrorIs(t, err, service.ErrPasswordTooShort)
}

// TestUserService_Register_DuplicateUsername проверяет конфликт имён
func TestUserService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "another456")
	assert.ErrorIs(t, err, repository.ErrUserExists)
}

// TestUserService_Authenticate проверяет вход по паролю
func TestUserService_Authenticate(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()

	created, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	// Неверный пароль и несуществующий пользователь дают один ответ
	_, errBadPass := svc.Authenticate(ctx, "alice", "wrong-pass")
	_, errNoUser := svc.Authenticate(ctx, "ghost", "secret123")
	assert.ErrorIs(t, errBadPass, service.ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, service.ErrInvalidCredentials)
}

// TestUserService_UpsertOAuthUser проверяет создание и привязку OAuth-профиля
func TestUserService_UpsertOAuthUser(t *testing.T) {
	svc, userRepo := setupUserService()
	ctx := context.Background()

	profile := &service.OAuthProfile{
		Provider:   models.ProviderGithub,
		ProviderID: "12345",
		Username:   "alice",
		Email:      "alice@example.com",
		Avatar:     "https://avatars.example.com/alice",
	}

	// Первый вход создаёт пользователя
	user, err := svc.UpsertOAuthUser(ctx, profile)
	require.NoError(t, err)
	require.NotNil(t, user.GithubID)
	assert.Equal(t, "12345", *user.GithubID)
	require.NotNil(t, user.Email)
	assert.Equal(t, "alice@example.com", *user.Email)

	// Повторный вход возвращает того же пользователя
	again, err := svc.UpsertOAuthUser(ctx, profile)
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	// Другой провайдер с тем же email привязывается к существующему аккаунту
	googleProfile := &service.OAuthProfile{
		Provider:   models.ProviderGoogle,
		ProviderID: "g-777",
		Username:   "alice",
		Email:      "alice@example.com",
	}
	linked, err := svc.UpsertOAuthUser(ctx, googleProfile)
	require.NoError(t, err)
	assert.Equal(t, user.ID, linked.ID)

	stored, err := userRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GoogleID)
	assert.Equal(t, "g-777", *stored.GoogleID)
}

// TestUserService_UpsertOAuthUser_UsernameTaken проверяет суффикс при занятом имени
func TestUserService_UpsertOAuthUser_UsernameTaken(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret123")
	require.NoError(t, err)

	user, err := svc.UpsertOAuthUser(ctx, &service.OAuthProfile{
		Provider:   models.ProviderGoogle,
		ProviderID: "g-1",
		Username:   "alice",
		Email:      "other@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice_google", user.Username)
}
