package domain

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/plitvinphd/azurepdf2png/internal/error_notificator"
	"github.com/plitvinphd/azurepdf2png/internal/pdf"
	"github.com/plitvinphd/azurepdf2png/internal/ports"
)

type convertService struct {
	fetcher    ports.PDFDownloader
	rasterizer ports.PDFRasterizer
	s3         ports.S3Service
	notifier   error_notificator.Notificator
	workers    int
	newID      func() string
}

func NewConvertService(
	fetcher ports.PDFDownloader,
	rasterizer ports.PDFRasterizer,
	s3 ports.S3Service,
	n error_notificator.Notificator,
	uploadWorkers int,
) ports.ConversionService {
	if uploadWorkers <= 0 {
		uploadWorkers = 1
	}
	return &convertService{
		fetcher:    fetcher,
		rasterizer: rasterizer,
		s3:         s3,
		notifier:   n,
		workers:    uploadWorkers,
		newID:      func() string { return uuid.New().String() },
	}
}

func (s *convertService) Convert(ctx context.Context, req ports.ConversionRequest) (*ports.ConversionResponse, error) {
	conversionID := s.newID()
	log.Printf("[convert] START id=%s url=%s dpi=%d", conversionID, req.SourceURL, req.DPI)

	// 1. PDF
	data, err := s.fetcher.Download(ctx, req.SourceURL)
	if err != nil {
		return nil, s.fail(ctx, NewFetchError(err), req, conversionID)
	}

	// 2. PDF → PNG
	pages, err := s.rasterizer.Convert(ctx, data, req.DPI)
	if err != nil {
		return nil, s.fail(ctx, NewRasterizationError(err), req, conversionID)
	}
	log.Printf("[convert] id=%s pages generated: %d", conversionID, len(pages))

	// 3. загрузка страниц
	urls, err := s.uploadPages(ctx, conversionID, req.SourceURL, pages)
	if err != nil {
		return nil, s.fail(ctx, err, req, conversionID)
	}

	log.Printf("[convert] DONE id=%s pages=%d", conversionID, len(urls))
	return &ports.ConversionResponse{ImageURLs: urls}, nil
}

// uploadPages грузит страницы пулом из s.workers горутин. Первая ошибка
// отменяет остальные загрузки, всё, что начали грузить, удаляется.
func (s *convertService) uploadPages(
	ctx context.Context,
	conversionID, sourceURL string,
	pages []pdf.PDFPage,
) ([]string, error) {

	urls := make([]string, len(pages))

	var (
		mu       sync.Mutex
		uploaded []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, p := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			key := s.s3.ObjectKey(conversionID, sourceURL, p.Number)

			// ключ запоминаем до загрузки: объект мог записаться, а ошибка
			// прийти позже (например, при подписи URL)
			mu.Lock()
			uploaded = append(uploaded, key)
			mu.Unlock()

			url, err := s.s3.SavePage(gctx, key, p)
			if err != nil {
				log.Printf("[convert] S3 ERROR id=%s page=%d: %v", conversionID, p.Number, err)
				return NewUploadError(p.Number, err)
			}

			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// ctx запроса может быть уже отменён, чистим в отвязанном
		s.s3.Discard(context.WithoutCancel(ctx), uploaded)
		if StageOf(err) == "" {
			err = &StageError{Stage: StageUpload, Err: err}
		}
		return nil, err
	}

	return urls, nil
}

func (s *convertService) fail(ctx context.Context, err error, req ports.ConversionRequest, conversionID string) error {
	log.Printf("[convert] FAIL id=%s: %v", conversionID, err)

	details := fmt.Sprintf("id=%s url=%s dpi=%d", conversionID, req.SourceURL, req.DPI)
	if nerr := s.notifier.Notify(ctx, string(StageOf(err)), err, details); nerr != nil {
		log.Printf("[convert] notify failed: %v", nerr)
	}
	return err
}
