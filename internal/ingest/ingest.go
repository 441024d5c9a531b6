// Package ingest parses quote corpora from heterogeneous file formats.
//
// Each supported format has its own Ingestor implementation. A Dispatcher
// routes files to the first registered ingestor that claims the extension,
// so adding a format means adding an ingestor and registering it.
//
// All ingestors share the same tolerance policy: malformed records are
// skipped silently, but a file that cannot be read or decoded at all is a
// domain.ParseError.
package ingest

import (
	"path/filepath"
	"strings"

	"github.com/memeforge/memeforge/internal/domain"
)

// quoteSeparator splits a line into body and author. Only the first
// occurrence counts; authors never contain the separator, bodies may.
const quoteSeparator = " - "

// hasExtension reports whether path ends in ext (case-insensitive).
// ext includes the leading dot.
func hasExtension(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

// quoteFromLine applies the shared line rule: split on the first literal
// " - ", trim both sides. Lines without the separator, or where either side
// trims to empty, yield ok=false.
func quoteFromLine(line string) (domain.Quote, bool) {
	idx := strings.Index(line, quoteSeparator)
	if idx < 0 {
		return domain.Quote{}, false
	}

	return domain.NewQuote(line[:idx], line[idx+len(quoteSeparator):])
}

// quotesFromText applies the line rule to every line of a plain-text blob.
func quotesFromText(text string) []domain.Quote {
	var quotes []domain.Quote

	for _, line := range strings.Split(text, "\n") {
		if q, ok := quoteFromLine(line); ok {
			quotes = append(quotes, q)
		}
	}

	return quotes
}
