package extract

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

func newExtractor() *Extractor {
	return New(1024, []string{".PDF", ".txt"})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		wantErr  bool
	}{
		{"plain text", "notes.txt", []byte("Some plain text."), false},
		{"extension case-insensitive", "NOTES.TXT", []byte("Some plain text."), false},
		{"disallowed extension", "image.png", []byte("Some plain text."), true},
		{"no extension", "README", []byte("Some plain text."), true},
		{"empty file", "notes.txt", nil, true},
		{"too large", "notes.txt", bytes.Repeat([]byte("a"), 1025), true},
		{"pdf without pdf header", "report.pdf", []byte("just text pretending"), true},
		{"binary as text", "notes.txt", []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0x00}, true},
	}

	e := newExtractor()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := e.Validate(tc.filename, tc.data)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperr.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_ListsAllowedTypes(t *testing.T) {
	err := newExtractor().Validate("x.doc", []byte("abc"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".pdf, .txt")
}

func TestExtract_Text(t *testing.T) {
	res, err := newExtractor().Extract("notes.txt", []byte("\ufeff  Hello world.\n\nSecond paragraph.  \n"))

	require.NoError(t, err)
	assert.Equal(t, "Hello world.\n\nSecond paragraph.", res.Text)
	assert.Contains(t, res.ContentType, "text/plain")
	assert.Zero(t, res.PageCount)
}

func TestDecodeText_Latin1Fallback(t *testing.T) {
	text, err := decodeText([]byte{'c', 'a', 'f', 0xe9})

	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestExtract_CorruptPDF(t *testing.T) {
	_, err := newExtractor().Extract("broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf\n%%EOF"))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	_, err := newExtractor().Extract("slides.pptx", []byte("PK"))

	assert.ErrorIs(t, err, apperr.ErrValidation)
}
