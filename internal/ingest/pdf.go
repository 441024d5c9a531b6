package ingest

import (
	"context"
	"os"

	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/ports"
)

// PDFIngestor parses .pdf corpora by converting the document to plain text
// through a PageTextConverter, staging the text in a temp file, and applying
// the line rule to the staged text. The temp file is removed on every exit
// path.
type PDFIngestor struct {
	converter ports.PageTextConverter
}

// NewPDFIngestor creates a PDF ingestor backed by the given converter.
func NewPDFIngestor(converter ports.PageTextConverter) *PDFIngestor {
	return &PDFIngestor{converter: converter}
}

// CanIngest reports whether path has a .pdf extension.
func (i *PDFIngestor) CanIngest(path string) bool {
	return hasExtension(path, ".pdf")
}

// Parse converts the document to text and returns every well-formed quote.
// Conversion failure is a ParseError.
func (i *PDFIngestor) Parse(ctx context.Context, path string) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := i.converter.ConvertToText(ctx, path)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	tmp, err := os.CreateTemp("", "memeforge-pdf-*.txt")
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return nil, domain.NewParseError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, domain.NewParseError(path, err)
	}

	staged, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	return quotesFromText(string(staged)), nil
}
