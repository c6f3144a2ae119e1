package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetProviderID(ctx context.Context, id uuid.UUID, provider models.OAuthProvider, providerID, avatar string) error
}

type userRepository struct {
	db *PostgresDB
}

func NewUserRepository(db *PostgresDB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, password_hash, github_id, google_id, avatar, created_at`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, github_id, google_id, avatar, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.GithubID,
		user.GoogleID,
		user.Avatar,
		user.CreatedAt,
	).Scan(&user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// SetProviderID привязывает внешний OAuth-аккаунт к существующему пользователю
func (r *userRepository) SetProviderID(ctx context.Context, id uuid.UUID, provider models.OAuthProvider, providerID, avatar string) error {
	var column string
	switch provider {
	case models.ProviderGithub:
		column = "github_id"
	case models.ProviderGoogle:
		column = "google_id"
	default:
		return fmt.Errorf("unknown oauth provider: %s", provider)
	}

	query := `UPDATE users SET ` + column + ` = $1, avatar = COALESCE(NULLIF($2, ''), avatar) WHERE id = $3`

	result, err := r.db.Pool.Exec(ctx, query, providerID, avatar, id)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to link oauth account: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.GithubID,
		&user.GoogleID,
		&user.Avatar,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
