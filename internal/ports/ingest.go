// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrParse, ErrNoAssets, etc.)
//   - Methods represent business operations, not CRUD operations
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/memeforge/memeforge/internal/domain"
)

// Ingestor parses quotes from a single file format. Implementations are
// registered with a dispatcher that routes each file to the first ingestor
// claiming it.
type Ingestor interface {
	// CanIngest reports whether this ingestor handles the given path.
	// The decision is based on the file extension only; the file is not opened.
	CanIngest(path string) bool

	// Parse reads the file and returns every well-formed quote it contains.
	// Malformed records are skipped, not errored. Structural failures
	// (unreadable file, corrupt container) return a domain.ParseError.
	Parse(ctx context.Context, path string) ([]domain.Quote, error)
}

// QuoteDispatcher routes files to the appropriate ingestor.
type QuoteDispatcher interface {
	// Parse dispatches the file to the first registered ingestor that claims
	// it. Returns domain.UnsupportedFormatError when no ingestor does.
	Parse(ctx context.Context, path string) ([]domain.Quote, error)

	// ParseAll parses every path in order and returns the concatenated
	// quotes. A failing file aborts the whole run.
	ParseAll(ctx context.Context, paths []string) ([]domain.Quote, error)
}

// PageTextConverter extracts plain text from a PDF document, one line of
// output per line of source text. Implementations may shell out or use a
// native parser.
type PageTextConverter interface {
	// ConvertToText extracts the text content of the PDF at path.
	ConvertToText(ctx context.Context, path string) (string, error)
}
