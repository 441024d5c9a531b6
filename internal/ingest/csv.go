package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/memeforge/memeforge/internal/domain"
)

// CSVIngestor parses .csv corpora. The header row must name a body and an
// author column, in any order and any letter case. Extra columns are ignored.
type CSVIngestor struct{}

// NewCSVIngestor creates a CSV ingestor.
func NewCSVIngestor() *CSVIngestor {
	return &CSVIngestor{}
}

// CanIngest reports whether path has a .csv extension.
func (i *CSVIngestor) CanIngest(path string) bool {
	return hasExtension(path, ".csv")
}

// Parse reads the file and returns a quote for every row with non-empty
// body and author fields. Rows with too few fields are skipped.
func (i *CSVIngestor) Parse(ctx context.Context, path string) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	bodyCol, authorCol := -1, -1
	for idx, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "body":
			bodyCol = idx
		case "author":
			authorCol = idx
		}
	}

	if bodyCol < 0 || authorCol < 0 {
		return nil, domain.NewParseError(path, errors.New("header must name body and author columns"))
	}

	var quotes []domain.Quote

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewParseError(path, err)
		}

		if bodyCol >= len(record) || authorCol >= len(record) {
			continue
		}

		if q, ok := domain.NewQuote(record[bodyCol], record[authorCol]); ok {
			quotes = append(quotes, q)
		}
	}

	return quotes, nil
}
