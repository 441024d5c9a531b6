package ingest

import (
	"bufio"
	"context"
	"os"

	"github.com/memeforge/memeforge/internal/domain"
)

// TextIngestor parses .txt corpora, one quote per line.
type TextIngestor struct{}

// NewTextIngestor creates a plain-text ingestor.
func NewTextIngestor() *TextIngestor {
	return &TextIngestor{}
}

// CanIngest reports whether path has a .txt extension.
func (i *TextIngestor) CanIngest(path string) bool {
	return hasExtension(path, ".txt")
}

// Parse reads the file line by line and returns every well-formed quote.
func (i *TextIngestor) Parse(ctx context.Context, path string) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	defer f.Close()

	var quotes []domain.Quote

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if q, ok := quoteFromLine(scanner.Text()); ok {
			quotes = append(quotes, q)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, domain.NewParseError(path, err)
	}

	return quotes, nil
}
