package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"runtime"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/go-fitz"
)

var openDocument = func(data []byte) (Document, error) {
	return fitz.NewFromMemory(data)
}

type FitzPDFConverter struct {
	maxPages int
}

func NewFitzPDFConverter(maxPages int) *FitzPDFConverter {
	return &FitzPDFConverter{maxPages: maxPages}
}

func (c *FitzPDFConverter) ConvertToImages(
	ctx context.Context,
	data []byte,
	dpi int,
) ([]PDFPage, error) {

	// пустое тело — документ без страниц, fitz такое не открывает
	if len(data) == 0 {
		log.Printf("[pdf] empty document, nothing to render")
		return []PDFPage{}, nil
	}

	logResourceUsage("before conversion")

	doc, err := openDocument(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	log.Printf("[pdf] document has %d pages, dpi=%d", total, dpi)

	if c.maxPages > 0 && total > c.maxPages {
		return nil, fmt.Errorf("%w (%d), maximum allowed is %d", ErrTooManyPages, total, c.maxPages)
	}

	pages := make([]PDFPage, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.ImageDPI(i, float64(dpi))
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", i+1, err)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}

		pages = append(pages, PDFPage{
			Number:   i + 1,
			Bytes:    buf.Bytes(),
			FileName: PageFileName(i + 1),
			MimeType: "image/png",
		})
	}

	logResourceUsage("after conversion")
	return pages, nil
}

func PageFileName(n int) string {
	return fmt.Sprintf("page-%d.png", n)
}

func logResourceUsage(stage string) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("[pdf] %s - heap: %s, sys: %s, goroutines: %d",
		stage, humanize.IBytes(m.HeapAlloc), humanize.IBytes(m.Sys), runtime.NumGoroutine())
}
