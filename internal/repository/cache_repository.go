package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/akuzmin/shortlinks/internal/models"
)

// CacheRepository кэширует активные ссылки для пути редиректа (cache-aside).
// Кэш инвалидируется при любом изменении или удалении ссылки, поэтому
// смена статуса видна уже следующему редиректу.
type CacheRepository interface {
	Get(ctx context.Context, code string) (*models.Link, error)
	Set(ctx context.Context, code string, link *models.Link, ttl time.Duration) error
	Delete(ctx context.Context, code string) error
}

type cacheRepository struct {
	redis *RedisDB
}

func NewCacheRepository(redis *RedisDB) CacheRepository {
	return &cacheRepository{redis: redis}
}

func (r *cacheRepository) Get(ctx context.Context, code string) (*models.Link, error) {
	data, err := r.redis.Client.Get(ctx, r.key(code)).Bytes()
	if err != nil {
		return nil, err
	}

	var link models.Link
	if err := json.Unmarshal(data, &link); err != nil {
		return nil, fmt.Errorf("failed to unmarshal link: %w", err)
	}

	return &link, nil
}

func (r *cacheRepository) Set(ctx context.Context, code string, link *models.Link, ttl time.Duration) error {
	data, err := json.Marshal(link)
	if err != nil {
		return fmt.Errorf("failed to marshal link: %w", err)
	}

	return r.redis.Client.Set(ctx, r.key(code), data, ttl).Err()
}

func (r *cacheRepository) Delete(ctx context.Context, code string) error {
	return r.redis.Client.Del(ctx, r.key(code)).Err()
}

func (r *cacheRepository) key(code string) string {
	return "link:" + code
}
