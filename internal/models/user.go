package models

import (
	"time"

	"github.com/google/uuid"
)

// OAuthProvider - внешний провайдер аутентификации
type OAuthProvider string

const (
	ProviderGoogle OAuthProvider = "google"
	ProviderGithub OAuthProvider = "github"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	GithubID     *string   `json:"-"`
	GoogleID     *string   `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
