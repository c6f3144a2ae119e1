package models

import (
	"time"

	"github.com/google/uuid"
)

// LinkStatus определяет видимость ссылки для редиректа
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusInactive LinkStatus = "inactive"
)

// Valid проверяет, что статус один из двух допустимых
func (s LinkStatus) Valid() bool {
	return s == LinkStatusActive || s == LinkStatusInactive
}

type Link struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	TargetURL string     `json:"target_url"`
	ShortCode string     `json:"short_code"`
	Status    LinkStatus `json:"status"`
	Clicks    int64      `json:"clicks"`
	CreatedAt time.Time  `json:"created_at"`
}

type CreateLinkInput struct {
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	TargetURL string     `json:"target_url"`
	Status    LinkStatus `json:"status,omitempty"`
}

// LinkPatch - частичное обновление ссылки. Только title и status,
// остальные поля (clicks, short_code) менять через патч нельзя.
type LinkPatch struct {
	Title  *string     `json:"title,omitempty"`
	Status *LinkStatus `json:"status,omitempty"`
}

// Empty сообщает, что патч не содержит ни одного распознанного поля
func (p *LinkPatch) Empty() bool {
	return p == nil || (p.Title == nil && p.Status == nil)
}
