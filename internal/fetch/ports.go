package fetch

import (
	"context"
	"errors"
)

var (
	ErrBadStatus = errors.New("unexpected status")
	ErrNotPDF    = errors.New("url does not point to a pdf file")
	ErrTooLarge  = errors.New("pdf file is too large")
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
