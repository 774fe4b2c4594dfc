package fetch

import (
	"context"
	"fmt"
	"net/url"
)

type Service struct {
	f Fetcher
}

func NewService(f Fetcher) *Service {
	return &Service{f: f}
}

// Download проверяет адрес и скачивает PDF.
func (s *Service) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}
	return s.f.Fetch(ctx, rawURL)
}

// ValidateURL пропускает только абсолютные http(s) адреса.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url: scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url: missing host")
	}
	return nil
}
