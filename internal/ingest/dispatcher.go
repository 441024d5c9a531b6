package ingest

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/ports"
)

// Dispatcher routes files to the first registered ingestor that claims them.
// Registration order is the dispatch order.
type Dispatcher struct {
	ingestors []ports.Ingestor
}

// NewDispatcher creates a dispatcher over the given ingestors in order.
func NewDispatcher(ingestors ...ports.Ingestor) *Dispatcher {
	return &Dispatcher{ingestors: ingestors}
}

// NewDefaultDispatcher creates a dispatcher with all built-in ingestors
// registered: txt, csv, docx and pdf.
func NewDefaultDispatcher() *Dispatcher {
	return NewDispatcher(
		NewTextIngestor(),
		NewCSVIngestor(),
		NewDocxIngestor(),
		NewPDFIngestor(NewPDFTextConverter()),
	)
}

// CanIngest reports whether any registered ingestor claims the path.
func (d *Dispatcher) CanIngest(path string) bool {
	for _, ing := range d.ingestors {
		if ing.CanIngest(path) {
			return true
		}
	}

	return false
}

// Parse dispatches the file to the first ingestor claiming it. Returns an
// UnsupportedFormatError when none does.
func (d *Dispatcher) Parse(ctx context.Context, path string) ([]domain.Quote, error) {
	for _, ing := range d.ingestors {
		if ing.CanIngest(path) {
			return ing.Parse(ctx, path)
		}
	}

	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	return nil, domain.NewUnsupportedFormatError(path, ext)
}

// ParseAll parses every path in order and returns the concatenated quotes.
// The first failing file aborts the run.
func (d *Dispatcher) ParseAll(ctx context.Context, paths []string) ([]domain.Quote, error) {
	var quotes []domain.Quote

	for _, path := range paths {
		parsed, err := d.Parse(ctx, path)
		if err != nil {
			return nil, err
		}

		quotes = append(quotes, parsed...)
	}

	return quotes, nil
}
