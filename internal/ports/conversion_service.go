package ports

import (
	"context"

	"github.com/plitvinphd/azurepdf2png/internal/pdf"
)

type ConversionRequest struct {
	SourceURL string
	DPI       int // 0 — значение по умолчанию
}

type ConversionResponse struct {
	ImageURLs []string `json:"image_urls"`
}

type ConversionService interface {
	Convert(ctx context.Context, req ConversionRequest) (*ConversionResponse, error)
}

type PDFDownloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type PDFRasterizer interface {
	Convert(ctx context.Context, pdf []byte, dpi int) ([]pdf.PDFPage, error)
}
