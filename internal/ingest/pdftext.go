package ingest

import (
	"context"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextConverter extracts plain text from PDF documents with a pure Go
// parser. One output line per source text row.
type PDFTextConverter struct{}

// NewPDFTextConverter creates the default page text converter.
func NewPDFTextConverter() *PDFTextConverter {
	return &PDFTextConverter{}
}

// ConvertToText extracts the text content of the PDF at path. Rows are
// grouped by their vertical position so that quote lines survive the
// glyph-level extraction intact.
func (c *PDFTextConverter) ConvertToText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder

	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", err
		}

		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}

	return sb.String(), nil
}
