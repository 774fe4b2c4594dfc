package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plitvinphd/azurepdf2png/internal/pdf"
)

func TestSourceBaseName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com/files/report.pdf", want: "report"},
		{url: "https://example.com/files/Report.PDF?x=1", want: "Report"},
		{url: "https://example.com/files/my%20annual%20report.pdf", want: "my_annual_report"},
		{url: "https://example.com/download?id=7", want: "download"},
		{url: "https://example.com/", want: "document"},
		{url: "https://example.com", want: "document"},
		{url: "https://example.com/..pdf", want: "document"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, SourceBaseName(tt.url))
		})
	}
}

func TestObjectKey(t *testing.T) {
	svc := NewS3Service(&fakeS3Client{})
	assert.Equal(t, "abc/report/page-12.png", svc.ObjectKey("abc", "https://example.com/report.pdf", 12))
}

func TestSavePageAndDiscard(t *testing.T) {
	client := &fakeS3Client{}
	svc := NewS3Service(client)

	url, err := svc.SavePage(context.Background(), "abc/report/page-1.png", pdf.PDFPage{Number: 1, Bytes: []byte("png"), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/pages/abc/report/page-1.png", url)

	svc.Discard(context.Background(), []string{"abc/report/page-1.png"})
	assert.Equal(t, []string{"abc/report/page-1.png"}, client.removed)
}
