package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/akuzmin/shortlinks/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresDB struct {
	Pool *pgxpool.Pool
}

func NewPostgresDB(cfg config.DBConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB config: %w", err)
	}

	// Настройка пула соединений
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверка подключения
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &PostgresDB{Pool: pool}
	if err := db.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return db, nil
}

// initSchema создаёт таблицы при первом запуске. Уникальный индекс на
// links.short_code обеспечивает глобальную уникальность кодов между всеми
// пользователями на уровне хранилища.
func (db *PostgresDB) initSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     TEXT UNIQUE,
			google_id     TEXT UNIQUE,
			avatar        TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS links (
			id         UUID PRIMARY KEY,
			seq        BIGSERIAL,
			user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title      TEXT NOT NULL,
			target_url TEXT NOT NULL,
			short_code TEXT NOT NULL UNIQUE,
			status     TEXT NOT NULL DEFAULT 'active',
			clicks     BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_links_user_id ON links(user_id);
	`

	_, err := db.Pool.Exec(ctx, schema)
	return err
}

func (db *PostgresDB) Close() {
	db.Pool.Close()
}
