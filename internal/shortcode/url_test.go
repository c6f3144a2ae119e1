package shortcode_test

import (
	"testing"

	"github.com/akuzmin/shortlinks/internal/shortcode"
	"github.com/stretchr/testify/assert"
)

// TestNormalizeURL проверяет добавление схемы
func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"пустая строка", "", ""},
		{"без схемы", "example.com", "https://example.com"},
		{"https сохраняется", "https://example.com", "https://example.com"},
		{"http сохраняется", "http://example.com/path", "http://example.com/path"},
		{"схема в верхнем регистре", "HTTPS://example.com", "HTTPS://example.com"},
		{"ftp не считается схемой", "ftp://example.com", "https://ftp://example.com"},
		{"путь и query не трогаем", "example.com/a?b=c", "https://example.com/a?b=c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortcode.NormalizeURL(tt.raw))
		})
	}
}

// TestNormalizeURL_Idempotent проверяет, что повторная нормализация ничего не меняет
func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{"", "example.com", "https://example.com", "HTTP://X.com", "not a url"}

	for _, raw := range inputs {
		once := shortcode.NormalizeURL(raw)
		assert.Equal(t, once, shortcode.NormalizeURL(once))
	}
}

// TestIsValidURL проверяет валидацию абсолютных URL
func TestIsValidURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?query=value",
		"https://sub.example.com:8443/a/b",
	}
	invalid := []string{
		"",
		"example.com",
		"https://not a url",
		"https://",
		"://missing-scheme.com",
		"https://bad\x00host",
	}

	for _, u := range valid {
		assert.True(t, shortcode.IsValidURL(u), "URL должен быть валидным: %s", u)
	}
	for _, u := range invalid {
		assert.False(t, shortcode.IsValidURL(u), "URL должен быть невалидным: %s", u)
	}
}

// TestIsValidURL_RoundTrip проверяет связку нормализация+валидация
func TestIsValidURL_RoundTrip(t *testing.T) {
	normalized := shortcode.NormalizeURL("example.com")
	assert.Equal(t, "https://example.com", normalized)
	assert.True(t, shortcode.IsValidURL(normalized))

	// "not a url" после нормализации всё равно отклоняется - пробел в хосте
	assert.False(t, shortcode.IsValidURL(shortcode.NormalizeURL("not a url")))
}
