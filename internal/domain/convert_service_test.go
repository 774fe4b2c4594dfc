package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plitvinphd/azurepdf2png/internal/fetch"
	"github.com/plitvinphd/azurepdf2png/internal/pdf"
	"github.com/plitvinphd/azurepdf2png/internal/ports"
)

type fakeDownloader struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeDownloader) Download(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type fakeRasterizer struct {
	pages int
	err   error
	dpi   int
}

func (f *fakeRasterizer) Convert(_ context.Context, _ []byte, dpi int) ([]pdf.PDFPage, error) {
	f.dpi = dpi
	if f.err != nil {
		return nil, f.err
	}
	out := make([]pdf.PDFPage, 0, f.pages)
	for i := 1; i <= f.pages; i++ {
		out = append(out, pdf.PDFPage{
			Number:   i,
			Bytes:    []byte(fmt.Sprintf("png-%d", i)),
			FileName: pdf.PageFileName(i),
			MimeType: "image/png",
		})
	}
	return out, nil
}

type fakeS3Client struct {
	mu      sync.Mutex
	failKey string
	// failAfterStore: объект для failKey записывается, но URL не получить
	failAfterStore bool
	puts           []string
	removed        []string
}

func (f *fakeS3Client) PutObject(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	failing := f.failKey != "" && strings.HasSuffix(key, f.failKey)
	if failing && !f.failAfterStore {
		return "", errors.New("storage unavailable")
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.puts = append(f.puts, key)
	f.mu.Unlock()
	if failing {
		return "", errors.New("presign failed")
	}
	return "https://storage.example.com/pages/" + key, nil
}

func (f *fakeS3Client) RemoveObject(_ context.Context, key string) error {
	f.mu.Lock()
	f.removed = append(f.removed, key)
	f.mu.Unlock()
	return nil
}

type fakeNotifier struct {
	stages []string
}

func (f *fakeNotifier) Notify(_ context.Context, stage string, _ error, _ string) error {
	f.stages = append(f.stages, stage)
	return nil
}

type pipeline struct {
	downloader *fakeDownloader
	rasterizer *fakeRasterizer
	storage    *fakeS3Client
	notifier   *fakeNotifier
	svc        ports.ConversionService
}

func newPipeline(pages, workers int) *pipeline {
	p := &pipeline{
		downloader: &fakeDownloader{data: []byte("%PDF")},
		rasterizer: &fakeRasterizer{pages: pages},
		storage:    &fakeS3Client{},
		notifier:   &fakeNotifier{},
	}
	p.svc = NewConvertService(p.downloader, p.rasterizer, NewS3Service(p.storage), p.notifier, workers)
	return p
}

const source = "https://example.com/files/report.pdf"

func TestConvertReturnsURLPerPageInOrder(t *testing.T) {
	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			p := newPipeline(7, workers)

			resp, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
			require.NoError(t, err)
			require.Len(t, resp.ImageURLs, 7)

			for i, u := range resp.ImageURLs {
				assert.True(t, strings.HasSuffix(u, fmt.Sprintf("/report/page-%d.png", i+1)), u)
			}
			assert.Empty(t, p.notifier.stages)
		})
	}
}

func TestConvertSinglePage(t *testing.T) {
	p := newPipeline(1, 4)

	resp, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.NoError(t, err)
	require.Len(t, resp.ImageURLs, 1)
	assert.True(t, strings.HasPrefix(resp.ImageURLs[0], "https://storage.example.com/pages/"))
	assert.True(t, strings.HasSuffix(resp.ImageURLs[0], "/page-1.png"))
}

func TestConvertEmptyDocument(t *testing.T) {
	p := newPipeline(0, 4)

	resp, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.NoError(t, err)
	require.NotNil(t, resp.ImageURLs)
	assert.Empty(t, resp.ImageURLs)
	assert.Empty(t, p.storage.puts)
}

func TestConvertPassesDPI(t *testing.T) {
	p := newPipeline(1, 1)

	_, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source, DPI: 220})
	require.NoError(t, err)
	assert.Equal(t, 220, p.rasterizer.dpi)
}

func TestConvertFetchFailureSkipsStorage(t *testing.T) {
	p := newPipeline(3, 2)
	p.downloader.err = fmt.Errorf("%w: status code 404", fetch.ErrBadStatus)

	resp, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsFetchError(err))
	assert.ErrorIs(t, err, fetch.ErrBadStatus)
	assert.Empty(t, p.storage.puts)
	assert.Equal(t, []string{"fetch"}, p.notifier.stages)
}

func TestConvertRasterizationFailure(t *testing.T) {
	p := newPipeline(0, 2)
	p.rasterizer.err = errors.New("open pdf: not a pdf")

	_, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.Error(t, err)
	assert.True(t, IsRasterizationError(err))
	assert.Empty(t, p.storage.puts)
}

func TestConvertUploadFailureFailsWholeRequest(t *testing.T) {
	p := newPipeline(5, 1)
	p.storage.failKey = "/page-3.png"

	resp, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsUploadError(err))

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Page)
	assert.Contains(t, err.Error(), "page 3")

	// страницы 1 и 2 успели загрузиться, 3 пытались — все три чистим
	require.Len(t, p.storage.puts, 2)
	require.Len(t, p.storage.removed, 3)
	assert.Subset(t, p.storage.removed, p.storage.puts)
	assert.True(t, strings.HasSuffix(p.storage.removed[2], "/page-3.png"))
	assert.Equal(t, []string{"upload"}, p.notifier.stages)
}

func TestConvertUploadFailureConcurrent(t *testing.T) {
	p := newPipeline(20, 4)
	p.storage.failKey = "/page-3.png"

	_, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.Error(t, err)
	assert.True(t, IsUploadError(err))
	assert.Subset(t, p.storage.removed, p.storage.puts)
}

func TestConvertDiscardsObjectStoredBeforeError(t *testing.T) {
	p := newPipeline(3, 1)
	p.storage.failKey = "/page-2.png"
	p.storage.failAfterStore = true

	resp, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, IsUploadError(err))

	require.Len(t, p.storage.puts, 2)
	assert.ElementsMatch(t, p.storage.puts, p.storage.removed)
}

func TestConvertZeroBytePDF(t *testing.T) {
	storage := &fakeS3Client{}
	downloader := &fakeDownloader{data: []byte{}}
	rasterizer := pdf.NewPDFService(pdf.NewFitzPDFConverter(3000), 100)
	svc := NewConvertService(downloader, rasterizer, NewS3Service(storage), &fakeNotifier{}, 4)

	resp, err := svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.NoError(t, err)
	require.NotNil(t, resp.ImageURLs)
	assert.Empty(t, resp.ImageURLs)
	assert.Empty(t, storage.puts)
	assert.Empty(t, storage.removed)
}

func TestConvertSameSourceUsesDistinctKeys(t *testing.T) {
	p := newPipeline(1, 1)

	a, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.NoError(t, err)
	b, err := p.svc.Convert(context.Background(), ports.ConversionRequest{SourceURL: source})
	require.NoError(t, err)

	assert.NotEqual(t, a.ImageURLs[0], b.ImageURLs[0])
}
