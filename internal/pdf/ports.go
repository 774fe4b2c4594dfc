package pdf

import (
	"context"
	"errors"
	"image"
)

var ErrTooManyPages = errors.New("pdf has too many pages")

type PDFPage struct {
	Number   int // с 1
	Bytes    []byte
	FileName string
	MimeType string
}

type PDFConverter interface {
	ConvertToImages(ctx context.Context, pdf []byte, dpi int) ([]PDFPage, error)
}

// Document — то, что нужно конвертеру от go-fitz.
type Document interface {
	NumPage() int
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}
