package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/akuzmin/shortlinks/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Ошибки сервиса пользователей
var (
	ErrUsernameRequired   = errors.New("username is required")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const minPasswordLength = 6

// OAuthProfile - данные профиля, полученные от внешнего провайдера
type OAuthProfile struct {
	Provider   models.OAuthProvider
	ProviderID string
	Username   string
	Email      string
	Avatar     string
}

// UserService управляет регистрацией и аутентификацией владельцев ссылок
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	UpsertOAuthUser(ctx context.Context, profile *OAuthProfile) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserService(userRepo repository.UserRepository, logger *zap.Logger) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{userRepo: userRepo, logger: logger}
}

// Register создаёт пользователя с bcrypt-хэшем пароля.
// Уникальность username обеспечивает хранилище (ErrUserExists).
func (s *userService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("username", username))
	return user, nil
}

// Authenticate проверяет пару username/password. Несуществующий пользователь
// и неверный пароль дают один и тот же ответ.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// UpsertOAuthUser находит пользователя по email внешнего профиля, при
// необходимости привязывает провайдера, либо создаёт нового пользователя
// со случайным паролем
func (s *userService) UpsertOAuthUser(ctx context.Context, profile *OAuthProfile) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, profile.Email)
	if err == nil {
		if err := s.userRepo.SetProviderID(ctx, user.ID, profile.Provider, profile.ProviderID, profile.Avatar); err != nil {
			return nil, err
		}
		return s.userRepo.GetByID(ctx, user.ID)
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	username := profile.Username
	if username == "" {
		username = string(profile.Provider) + "_" + profile.ProviderID
	}

	// OAuth-пользователь не логинится по паролю, но поле обязательное -
	// кладём хэш случайного значения
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	email := profile.Email
	user = &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        &email,
		PasswordHash: string(hash),
		Avatar:       profile.Avatar,
		CreatedAt:    time.Now(),
	}
	switch profile.Provider {
	case models.ProviderGithub:
		user.GithubID = &profile.ProviderID
	case models.ProviderGoogle:
		user.GoogleID = &profile.ProviderID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			// Имя занято локальным аккаунтом - добавляем суффикс провайдера
			user.Username = username + "_" + string(profile.Provider)
			if err := s.userRepo.Create(ctx, user); err != nil {
				return nil, err
			}
			return user, nil
		}
		return nil, err
	}

	s.logger.Info("OAuth user created",
		zap.String("provider", string(profile.Provider)),
		zap.String("username", user.Username),
	)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
