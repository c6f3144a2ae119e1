package shortcode

import (
	"net/url"
	"regexp"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeURL гарантирует наличие схемы у URL. Пустая строка остаётся пустой,
// существующий префикс http:// или https:// (в любом регистре) сохраняется,
// иначе добавляется https://. Больше ничего в строке не переписывается.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if schemeRe.MatchString(raw) {
		return raw
	}
	return "https://" + raw
}

// IsValidURL проверяет, что строка разбирается как абсолютный URL
// со схемой и хостом. Никогда не паникует.
func IsValidURL(candidate string) bool {
	u, err := url.Parse(candidate)
	return err == nil && u.Scheme != "" && u.Host != ""
}
