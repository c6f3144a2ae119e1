package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LinkRepository interface {
	Append(ctx context.Context, link *models.Link) error
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	FindActiveByShortCode(ctx context.Context, code string) (*models.Link, error)
	Update(ctx context.Context, userID, linkID uuid.UUID, patch *models.LinkPatch) (*models.Link, error)
	Remove(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error)
	IncrementClicks(ctx context.Context, userID, linkID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error)
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

const linkColumns = `id, user_id, title, target_url, short_code, status, clicks, created_at`

// Append сохраняет полностью сформированную ссылку. Уникальный индекс на
// short_code атомарно закрывает гонку check-then-act между конкурентными
// созданиями: проигравший insert возвращает ErrCodeExists.
func (r *linkRepository) Append(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (id, user_id, title, target_url, short_code, status, clicks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.ID,
		link.UserID,
		link.Title,
		link.TargetURL,
		link.ShortCode,
		link.Status,
		link.Clicks,
		link.CreatedAt,
	).Scan(&link.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// ShortCodeExists - глобальная проверка по всем ссылкам всех пользователей.
// Всегда свежий запрос к базе, без какого-либо кэша.
func (r *linkRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return exists, nil
}

// FindActiveByShortCode ищет единственную активную ссылку с данным кодом.
// Неактивная ссылка неотличима от несуществующей - в обоих случаях ErrLinkNotFound.
func (r *linkRepository) FindActiveByShortCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE short_code = $1 AND status = $2
	`

	link, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, code, models.LinkStatusActive))
	if err != nil {
		return nil, err
	}

	return link, nil
}

func (r *linkRepository) Update(ctx context.Context, userID, linkID uuid.UUID, patch *models.LinkPatch) (*models.Link, error) {
	// Патч ограничен title и status, остальные поля записи неизменяемы
	query := `
		UPDATE links
		SET title = COALESCE($1, title), status = COALESCE($2, status)
		WHERE id = $3 AND user_id = $4
		RETURNING ` + linkColumns

	link, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, patch.Title, (*string)(patch.Status), linkID, userID))
	if err != nil {
		return nil, err
	}

	return link, nil
}

func (r *linkRepository) Remove(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error) {
	query := `DELETE FROM links WHERE id = $1 AND user_id = $2 RETURNING ` + linkColumns

	link, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, linkID, userID))
	if err != nil {
		return nil, err
	}

	return link, nil
}

// IncrementClicks атомарно увеличивает счётчик на единицу. Конкурентные
// редиректы не теряют инкременты - это одиночный UPDATE на стороне базы.
func (r *linkRepository) IncrementClicks(ctx context.Context, userID, linkID uuid.UUID) error {
	query := `UPDATE links SET clicks = clicks + 1 WHERE id = $1 AND user_id = $2`

	result, err := r.db.Pool.Exec(ctx, query, linkID, userID)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// ListByUser возвращает ссылки пользователя в порядке вставки. Сортировка
// по монотонному seq, а не по created_at: метки времени могут совпасть
// до микросекунды и сломать порядок.
func (r *linkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	query := `
		SELECT ` + linkColumns + `
		FROM links
		WHERE user_id = $1
		ORDER BY seq
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	links := []models.Link{}
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(
			&link.ID,
			&link.UserID,
			&link.Title,
			&link.TargetURL,
			&link.ShortCode,
			&link.Status,
			&link.Clicks,
			&link.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating links: %w", err)
	}

	return links, nil
}

func (r *linkRepository) scanOne(row pgx.Row) (*models.Link, error) {
	link := &models.Link{}
	err := row.Scan(
		&link.ID,
		&link.UserID,
		&link.Title,
		&link.TargetURL,
		&link.ShortCode,
		&link.Status,
		&link.Clicks,
		&link.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}
