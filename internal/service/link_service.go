package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akuzmin/shortlinks/internal/metrics"
	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/akuzmin/shortlinks/internal/repository"
	"github.com/akuzmin/shortlinks/internal/shortcode"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Ошибки валидации сервиса ссылок
var (
	ErrTitleRequired  = errors.New("title is required")
	ErrURLRequired    = errors.New("url is required")
	ErrUserIDRequired = errors.New("user id is required")
	ErrInvalidURL     = errors.New("invalid URL format")
	ErrInvalidStatus  = errors.New("invalid link status")
	ErrEmptyPatch     = errors.New("no recognized fields to update")

	// ErrCodeExhausted - все попытки генерации кода столкнулись с коллизией.
	// Терминальная ошибка, сервис сам повторно не ретраит.
	ErrCodeExhausted = errors.New("could not generate a unique short code")
)

// Константы сервиса
const (
	maxCodeAttempts = 5
	cacheTTL        = 24 * time.Hour
)

// LinkService - ядро сервиса коротких ссылок
type LinkService interface {
	CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.Link, []models.Link, error)
	Resolve(ctx context.Context, code string) (string, error)
	UpdateLink(ctx context.Context, userID, linkID uuid.UUID, patch *models.LinkPatch) ([]models.Link, error)
	RemoveLink(ctx context.Context, userID, linkID uuid.UUID) ([]models.Link, error)
	ListLinks(ctx context.Context, userID uuid.UUID) ([]models.Link, error)
}

type linkService struct {
	userRepo  repository.UserRepository
	linkRepo  repository.LinkRepository
	cacheRepo repository.CacheRepository
	generator shortcode.Generator
	logger    *zap.Logger
}

// NewLinkService создаёт новый экземпляр сервиса
func NewLinkService(
	userRepo repository.UserRepository,
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	generator shortcode.Generator,
	logger *zap.Logger,
) LinkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &linkService{
		userRepo:  userRepo,
		linkRepo:  linkRepo,
		cacheRepo: cacheRepo,
		generator: generator,
		logger:    logger,
	}
}

// CreateLink создаёт новую короткую ссылку: нормализация и валидация URL,
// проверка пользователя, затем ограниченный цикл подбора уникального кода.
// Возвращает созданную ссылку и обновлённый список ссылок пользователя.
func (s *linkService) CreateLink(ctx context.Context, input *models.CreateLinkInput) (*models.Link, []models.Link, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.TargetURL) == "" {
		return nil, nil, ErrURLRequired
	}
	if input.UserID == uuid.Nil {
		return nil, nil, ErrUserIDRequired
	}

	status := input.Status
	if status == "" {
		status = models.LinkStatusActive
	}
	if !status.Valid() {
		return nil, nil, ErrInvalidStatus
	}

	// Сначала нормализация, потом валидация: "not a url" превращается в
	// "https://not a url" и отклоняется парсером
	normalized := shortcode.NormalizeURL(input.TargetURL)
	if !shortcode.IsValidURL(normalized) {
		return nil, nil, ErrInvalidURL
	}

	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, nil, err
	}

	link, err := s.createWithUniqueCode(ctx, input.UserID, title, normalized, status)
	if err != nil {
		return nil, nil, err
	}

	metrics.LinksCreated.Inc()

	links, err := s.linkRepo.ListByUser(ctx, input.UserID)
	if err != nil {
		return nil, nil, err
	}

	return link, links, nil
}

// createWithUniqueCode - ограниченный цикл подбора кода: не больше
// maxCodeAttempts попыток, выход на первом незанятом коде. Проверка занятости -
// всегда свежий запрос к хранилищу. Проигрыш гонки на insert (уникальный
// индекс) считается той же коллизией и тратит попытку.
func (s *linkService) createWithUniqueCode(ctx context.Context, userID uuid.UUID, title, targetURL string, status models.LinkStatus) (*models.Link, error) {
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := s.generator.Generate(shortcode.DefaultLength)

		exists, err := s.linkRepo.ShortCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			s.logger.Debug("Short code collision",
				zap.String("code", code),
				zap.Int("attempt", attempt),
			)
			continue
		}

		link := &models.Link{
			ID:        uuid.New(),
			UserID:    userID,
			Title:     title,
			TargetURL: targetURL,
			ShortCode: code,
			Status:    status,
			Clicks:    0,
			CreatedAt: time.Now(),
		}

		if err := s.linkRepo.Append(ctx, link); err != nil {
			if errors.Is(err, repository.ErrCodeExists) {
				// Конкурентное создание успело занять код между проверкой и insert
				continue
			}
			return nil, err
		}

		return link, nil
	}

	return nil, ErrCodeExhausted
}

// Resolve находит активную ссылку по коду, инкрементирует счётчик кликов и
// возвращает целевой URL. "Код не существует" и "ссылка неактивна" намеренно
// неразличимы для вызывающего.
func (s *linkService) Resolve(ctx context.Context, code string) (string, error) {
	// Проверка кэша - там лежат только активные ссылки
	if link, err := s.cacheRepo.Get(ctx, code); err == nil {
		metrics.CacheHits.Inc()
		if err := s.linkRepo.IncrementClicks(ctx, link.UserID, link.ID); err != nil {
			if errors.Is(err, repository.ErrLinkNotFound) {
				// Кэш пережил саму ссылку - чистим и идём в базу
				s.invalidate(ctx, code)
				return s.resolveFromStore(ctx, code)
			}
			return "", err
		}
		metrics.RedirectsServed.Inc()
		return link.TargetURL, nil
	}

	metrics.CacheMisses.Inc()
	return s.resolveFromStore(ctx, code)
}

func (s *linkService) resolveFromStore(ctx context.Context, code string) (string, error) {
	link, err := s.linkRepo.FindActiveByShortCode(ctx, code)
	if err != nil {
		return "", err
	}

	if err := s.linkRepo.IncrementClicks(ctx, link.UserID, link.ID); err != nil {
		return "", err
	}

	if err := s.cacheRepo.Set(ctx, code, link, cacheTTL); err != nil {
		s.logger.Warn("Failed to cache link", zap.String("code", code), zap.Error(err))
	}

	metrics.RedirectsServed.Inc()
	return link.TargetURL, nil
}

// UpdateLink применяет типизированный патч (title и/или status) к ссылке
// пользователя и возвращает обновлённый список его ссылок
func (s *linkService) UpdateLink(ctx context.Context, userID, linkID uuid.UUID, patch *models.LinkPatch) ([]models.Link, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &trimmed
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	link, err := s.linkRepo.Update(ctx, userID, linkID, patch)
	if err != nil {
		return nil, err
	}

	// Смена статуса или заголовка должна быть видна следующему редиректу
	s.invalidate(ctx, link.ShortCode)

	return s.linkRepo.ListByUser(ctx, userID)
}

// RemoveLink удаляет ссылку из коллекции пользователя
func (s *linkService) RemoveLink(ctx context.Context, userID, linkID uuid.UUID) ([]models.Link, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	link, err := s.linkRepo.Remove(ctx, userID, linkID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, link.ShortCode)

	return s.linkRepo.ListByUser(ctx, userID)
}

// ListLinks возвращает ссылки пользователя в порядке добавления
func (s *linkService) ListLinks(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	return s.linkRepo.ListByUser(ctx, userID)
}

func (s *linkService) invalidate(ctx context.Context, code string) {
	if err := s.cacheRepo.Delete(ctx, code); err != nil {
		s.logger.Warn("Failed to invalidate link cache", zap.String("code", code), zap.Error(err))
	}
}
