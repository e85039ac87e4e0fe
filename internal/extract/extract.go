// Package extract validates uploaded files and pulls plain text out of them.
package extract

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"

	"github.com/mansoorahmed084/AI-Document-Summarizer-QA-RAG/internal/apperr"
)

const (
	ExtPDF = ".pdf"
	ExtTXT = ".txt"
)

// SupportedExtensions lists every file extension the extractor can read.
var SupportedExtensions = []string{ExtPDF, ExtTXT}

func init() {
	// pdfcpu would otherwise create a config directory under $HOME, which is
	// read-only on Cloud Functions.
	api.DisableConfigDir()
}

// Result is the text pulled out of one file.
type Result struct {
	Text        string
	ContentType string
	PageCount   int
}

// Extractor validates uploads against size and type limits and extracts text.
type Extractor struct {
	maxUploadSize int64
	allowed       map[string]bool
}

// New creates an Extractor. Extensions are matched case-insensitively.
func New(maxUploadSize int64, allowedExtensions []string) *Extractor {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &Extractor{maxUploadSize: maxUploadSize, allowed: allowed}
}

// Validate checks the file name, size and sniffed content type of an upload.
func (e *Extractor) Validate(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !e.allowed[ext] {
		return fmt.Errorf("%w: file type not allowed. Allowed types: %s", apperr.ErrValidation, e.allowedList())
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: file %q is empty", apperr.ErrValidation, filename)
	}
	if int64(len(data)) > e.maxUploadSize {
		return fmt.Errorf("%w: file size exceeds maximum allowed size of %.1fMB",
			apperr.ErrValidation, float64(e.maxUploadSize)/(1024*1024))
	}

	detected := mimetype.Detect(data)
	switch ext {
	case ExtPDF:
		if !detected.Is("application/pdf") {
			return fmt.Errorf("%w: file claims to be a PDF but its content is %s", apperr.ErrValidation, detected.String())
		}
	case ExtTXT:
		if !isText(detected) {
			return fmt.Errorf("%w: file claims to be text but its content is %s", apperr.ErrValidation, detected.String())
		}
	}
	return nil
}

// Extract returns the trimmed text of a validated file.
func (e *Extractor) Extract(filename string, data []byte) (*Result, error) {
	contentType := mimetype.Detect(data).String()

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ExtPDF:
		text, pages, err := extractPDF(data)
		if err != nil {
			return nil, err
		}
		return &Result{Text: text, ContentType: contentType, PageCount: pages}, nil
	case ExtTXT:
		text, err := decodeText(data)
		if err != nil {
			return nil, err
		}
		return &Result{Text: text, ContentType: contentType}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported file type: %s", apperr.ErrValidation, ext)
	}
}

func (e *Extractor) allowedList() string {
	exts := make([]string, 0, len(e.allowed))
	for ext := range e.allowed {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

func isText(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func extractPDF(data []byte) (string, int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return "", 0, fmt.Errorf("%w: failed to extract text from PDF: %v", apperr.ErrValidation, err)
	}
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to read PDF page count: %v", apperr.ErrValidation, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: failed to open PDF: %v", apperr.ErrValidation, err)
	}

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := pageText(reader.Page(i))
		if err != nil {
			// Keep going; one unreadable page should not sink the document.
			slog.Warn("Failed to extract text from page", "page", i, "error", err)
			continue
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return "", pageCount, fmt.Errorf("%w: no text content found in PDF. The PDF might be image-based or corrupted", apperr.ErrValidation)
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n")), pageCount, nil
}

// pageText extracts one page, converting parser panics on malformed content
// streams into errors.
func pageText(page pdf.Page) (text string, err error) {
	if page.V.IsNull() {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()
	return page.GetPlainText(nil)
}

// decodeText reads UTF-8, falling back to Latin-1 which accepts any byte sequence.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimSpace(strings.TrimPrefix(string(data), "\ufeff")), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract text from file: %v", apperr.ErrValidation, err)
	}
	return strings.TrimSpace(string(decoded)), nil
}
