package domain

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/plitvinphd/azurepdf2png/internal/pdf"
	"github.com/plitvinphd/azurepdf2png/internal/ports"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type s3Service struct {
	client ports.S3Client
}

func NewS3Service(client ports.S3Client) ports.S3Service {
	return &s3Service{client: client}
}

// ObjectKey — путь в бакете: {conversionID}/{имя исходника}/page-{n}.png
func (s *s3Service) ObjectKey(conversionID, sourceURL string, page int) string {
	return fmt.Sprintf("%s/%s/%s", conversionID, SourceBaseName(sourceURL), pdf.PageFileName(page))
}

func (s *s3Service) SavePage(ctx context.Context, key string, page pdf.PDFPage) (string, error) {
	return s.client.PutObject(ctx, key, bytes.NewReader(page.Bytes), int64(len(page.Bytes)), page.MimeType)
}

func (s *s3Service) Discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.client.RemoveObject(ctx, key); err != nil {
			log.Printf("[s3] discard %s failed: %v", key, err)
		}
	}
}

// SourceBaseName — имя файла из URL без .pdf, пригодное для ключа.
func SourceBaseName(sourceURL string) string {
	name := ""
	if u, err := url.Parse(sourceURL); err == nil {
		name = path.Base(u.Path)
	}
	if ext := path.Ext(name); strings.EqualFold(ext, ".pdf") {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.Trim(unsafeKeyChars.ReplaceAllString(name, "_"), "._")
	if name == "" {
		return "document"
	}
	return name
}
