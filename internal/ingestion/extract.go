// Package ingestion turns an uploaded résumé into plain text and pulls the
// candidate's contact fields out of it.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"go.uber.org/zap"

	"github.com/jonathan/interview-assistant/internal/types"
)

// MaxResumeBytes caps the size of an uploaded résumé.
const MaxResumeBytes = 10 << 20

// pdfTimeout bounds a single PDF parse.
const pdfTimeout = 30 * time.Second

// Result is the outcome of ingesting one résumé.
type Result struct {
	Text   string            `json:"text"`
	Fields Fields            `json:"fields"`
	Meta   *types.ResumeMeta `json:"resumeMeta"`
	Hash   string            `json:"hash"`
}

// Extractor reads résumé text. It is safe for concurrent use.
type Extractor struct {
	pdf    *pdf.PDFParser
	logger *zap.Logger
}

// NewExtractor builds the PDF parser. The whole document is returned as one
// text block rather than one per page.
func NewExtractor(ctx context.Context, logger *zap.Logger) (*Extractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF parser: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{pdf: p, logger: logger}, nil
}

// readUpload checks the extension and reads at most MaxResumeBytes from r.
// Any other extension yields *UnsupportedFileTypeError before r is read.
func readUpload(filename string, r io.Reader) (string, []byte, error) {
	ext := Extension(filename)
	if _, ok := contentTypes[ext]; !ok {
		return "", nil, &UnsupportedFileTypeError{Filename: filename}
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxResumeBytes+1))
	if err != nil {
		return "", nil, &ExtractionError{Format: ext, Cause: err}
	}
	if len(data) > MaxResumeBytes {
		return "", nil, &ExtractionError{Format: ext, Cause: fmt.Errorf("file exceeds %d bytes", MaxResumeBytes)}
	}
	return ext, data, nil
}

func (e *Extractor) extract(ctx context.Context, filename, ext string, data []byte) (string, error) {
	start := time.Now()
	var text string
	var err error
	switch ext {
	case "pdf":
		text, err = e.extractPDF(ctx, filename, data)
	case "docx":
		text, err = extractDOCX(data)
	case "doc":
		text, err = extractDOC(data)
	}
	if err != nil {
		e.logger.Warn("résumé extraction failed", zap.String("file", filename), zap.Error(err))
		return "", &ExtractionError{Format: ext, Cause: err}
	}

	text = CleanText(text)
	e.logger.Debug("résumé extracted",
		zap.String("file", filename),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return text, nil
}

func (e *Extractor) extractPDF(ctx context.Context, uri string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfTimeout)
	defer cancel()

	docs, err := e.pdf.Parse(ctx, bytes.NewReader(data), einoParser.WithURI(uri))
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Ingest extracts best-effort plain text and contact fields from a pdf, doc
// or docx file.
func (e *Extractor) Ingest(ctx context.Context, filename, contentType string, r io.Reader) (*Result, error) {
	ext, data, err := readUpload(filename, r)
	if err != nil {
		return nil, err
	}

	text, err := e.extract(ctx, filename, ext, data)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:   text,
		Fields: ExtractFields(text),
		Meta:   NewResumeMeta(filename, contentType, int64(len(data))),
		Hash:   computeHash(data),
	}, nil
}
