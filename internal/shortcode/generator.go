package shortcode

import (
	"math/rand/v2"
)

// DefaultLength - длина короткого кода по умолчанию
const DefaultLength = 6

const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Generator выдаёт случайные короткие коды. Генератор не отвечает за
// уникальность - коллизии обрабатывает вызывающая сторона повторной генерацией.
type Generator interface {
	Generate(length int) string
}

type randomGenerator struct{}

// NewGenerator создаёт генератор случайных кодов из алфавита [A-Za-z0-9]
func NewGenerator() Generator {
	return randomGenerator{}
}

func (randomGenerator) Generate(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	result := make([]byte, length)
	for i := range result {
		result[i] = charset[rand.IntN(len(charset))]
	}
	return string(result)
}
