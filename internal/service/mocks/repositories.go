package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akuzmin/shortlinks/internal/models"
	"github.com/akuzmin/shortlinks/internal/repository"
	"github.com/google/uuid"
)

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrUserExists
		}
		if user.Email != nil && u.Email != nil && *u.Email == *user.Email {
			return repository.ErrUserExists
		}
	}
	clone := *user
	m.users[user.ID] = &clone
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) SetProviderID(ctx context.Context, id uuid.UUID, provider models.OAuthProvider, providerID, avatar string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[id]
	if !exists {
		return repository.ErrUserNotFound
	}
	switch provider {
	case models.ProviderGithub:
		user.GithubID = &providerID
	case models.ProviderGoogle:
		user.GoogleID = &providerID
	default:
		return fmt.Errorf("unknown oauth provider: %s", provider)
	}
	if avatar != "" {
		user.Avatar = avatar
	}
	return nil
}

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu              sync.RWMutex
	links           map[uuid.UUID]*models.Link // link id -> link
	order           []uuid.UUID                // insertion order
	appendConflicts int
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{links: make(map[uuid.UUID]*models.Link)}
}

// Seed вставляет ссылку напрямую, минуя проверки (для подготовки тестов)
func (m *MockLinkRepository) Seed(link *models.Link) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *link
	m.links[link.ID] = &clone
	m.order = append(m.order, link.ID)
}

// FailNextAppends заставляет следующие n вставок вернуть ErrCodeExists,
// имитируя проигрыш гонки на уникальном индексе: код заняли между
// проверкой занятости и самим insert
func (m *MockLinkRepository) FailNextAppends(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendConflicts = n
}

func (m *MockLinkRepository) Append(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendConflicts > 0 {
		m.appendConflicts--
		return repository.ErrCodeExists
	}
	for _, l := range m.links {
		if l.ShortCode == link.ShortCode {
			return repository.ErrCodeExists
		}
	}
	clone := *link
	m.links[link.ID] = &clone
	m.order = append(m.order, link.ID)
	return nil
}

func (m *MockLinkRepository) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.links {
		if l.ShortCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockLinkRepository) FindActiveByShortCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.links {
		if l.ShortCode == code && l.Status == models.LinkStatusActive {
			clone := *l
			return &clone, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *MockLinkRepository) Update(ctx context.Context, userID, linkID uuid.UUID, patch *models.LinkPatch) (*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[linkID]
	if !exists || link.UserID != userID {
		return nil, repository.ErrLinkNotFound
	}
	if patch.Title != nil {
		link.Title = *patch.Title
	}
	if patch.Status != nil {
		link.Status = *patch.Status
	}
	clone := *link
	return &clone, nil
}

func (m *MockLinkRepository) Remove(ctx context.Context, userID, linkID uuid.UUID) (*models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[linkID]
	if !exists || link.UserID != userID {
		return nil, repository.ErrLinkNotFound
	}
	delete(m.links, linkID)
	for i, id := range m.order {
		if id == linkID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	clone := *link
	return &clone, nil
}

func (m *MockLinkRepository) IncrementClicks(ctx context.Context, userID, linkID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[linkID]
	if !exists || link.UserID != userID {
		return repository.ErrLinkNotFound
	}
	link.Clicks++
	return nil
}

func (m *MockLinkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := []models.Link{}
	for _, id := range m.order {
		if l, ok := m.links[id]; ok && l.UserID == userID {
			links = append(links, *l)
		}
	}
	return links, nil
}

// GetByID возвращает ссылку напрямую (для проверок в тестах)
func (m *MockLinkRepository) GetByID(linkID uuid.UUID) (*models.Link, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[linkID]
	if !exists {
		return nil, false
	}
	clone := *link
	return &clone, true
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	cache map[string]*models.Link
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{cache: make(map[string]*models.Link)}
}

func (m *MockCacheRepository) Get(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.cache[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	clone := *link
	return &clone, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, code string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *link
	m.cache[code] = &clone
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, code)
	return nil
}

// FixedGenerator implements shortcode.Generator returning a scripted
// sequence of codes (последний код повторяется при исчерпании)
type FixedGenerator struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func NewFixedGenerator(codes ...string) *FixedGenerator {
	return &FixedGenerator{codes: codes}
}

func (g *FixedGenerator) Generate(length int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.codes) == 0 {
		return ""
	}
	code := g.codes[g.next]
	if g.next < len(g.codes)-1 {
		g.next++
	}
	return code
}
