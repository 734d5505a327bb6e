package shortlink

import (
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidURL = errors.New("invalid url")

// MaxURLLen 超长的 URL 直接拒绝，避免 links.url 唯一索引过大
const MaxURLLen = 2048

// ValidateURL 要求 http/https 且 host 非空。
func ValidateURL(raw string) error {
	if raw == "" || len(raw) > MaxURLLen {
		return ErrInvalidURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}
	if strings.TrimSpace(u.Hostname()) == "" {
		return ErrInvalidURL
	}
	return nil
}
