package ports

import (
	"context"

	"github.com/plitvinphd/azurepdf2png/internal/pdf"
)

type S3Service interface {
	ObjectKey(conversionID, sourceURL string, page int) string
	SavePage(ctx context.Context, key string, page pdf.PDFPage) (string, error)
	// Discard — best-effort удаление уже загруженных объектов
	Discard(ctx context.Context, keys []string)
}
