package pdf

import (
	"context"
)

type PDFService struct {
	conv       PDFConverter
	defaultDPI int
}

func NewPDFService(c PDFConverter, defaultDPI int) *PDFService {
	return &PDFService{conv: c, defaultDPI: defaultDPI}
}

// Convert рендерит все страницы; dpi <= 0 — берём значение по умолчанию.
func (s *PDFService) Convert(ctx context.Context, pdf []byte, dpi int) ([]PDFPage, error) {
	if dpi <= 0 {
		dpi = s.defaultDPI
	}
	return s.conv.ConvertToImages(ctx, pdf, dpi)
}
