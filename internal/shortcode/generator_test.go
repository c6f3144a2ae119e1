package shortcode_test

import (
	"regexp"
	"testing"

	"github.com/akuzmin/shortlinks/internal/shortcode"
	"github.com/stretchr/testify/assert"
)

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// TestGenerator_Generate_Length проверяет длину и алфавит кода
func TestGenerator_Generate_Length(t *testing.T) {
	gen := shortcode.NewGenerator()

	for _, length := range []int{1, 6, 12} {
		code := gen.Generate(length)
		assert.Len(t, code, length)
		assert.Regexp(t, codePattern, code)
	}
}

// TestGenerator_Generate_DefaultLength проверяет fallback на длину по умолчанию
func TestGenerator_Generate_DefaultLength(t *testing.T) {
	gen := shortcode.NewGenerator()

	assert.Len(t, gen.Generate(0), shortcode.DefaultLength)
	assert.Len(t, gen.Generate(-3), shortcode.DefaultLength)
}

// TestGenerator_Generate_Spread проверяет, что повторные вызовы независимы
// (вероятность коллизии на 6 символах из 62 ничтожна для 1000 вызовов)
func TestGenerator_Generate_Spread(t *testing.T) {
	gen := shortcode.NewGenerator()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code := gen.Generate(shortcode.DefaultLength)
		assert.NotContains(t, seen, code)
		seen[code] = true
	}
}
