package ingest

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/memeforge/memeforge/internal/domain"
)

// docxDocumentPath is the archive member holding the document body.
const docxDocumentPath = "word/document.xml"

// DocxIngestor parses .docx corpora, one quote per paragraph. A docx file is
// a zip archive; the paragraph text lives in word/document.xml as w:t runs
// inside w:p elements.
type DocxIngestor struct{}

// NewDocxIngestor creates a docx ingestor.
func NewDocxIngestor() *DocxIngestor {
	return &DocxIngestor{}
}

// CanIngest reports whether path has a .docx extension.
func (i *DocxIngestor) CanIngest(path string) bool {
	return hasExtension(path, ".docx")
}

// Parse extracts the document paragraphs and applies the line rule to each.
func (i *DocxIngestor) Parse(ctx context.Context, path string) ([]domain.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	defer archive.Close()

	doc, err := archive.Open(docxDocumentPath)
	if err != nil {
		return nil, domain.NewParseError(path, errors.New("missing "+docxDocumentPath))
	}
	defer doc.Close()

	paragraphs, err := docxParagraphs(doc)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	var quotes []domain.Quote

	for _, p := range paragraphs {
		if q, ok := quoteFromLine(p); ok {
			quotes = append(quotes, q)
		}
	}

	return quotes, nil
}

// docxParagraphs streams the document XML and returns the concatenated text
// runs of each w:p element. Formatting runs split a paragraph into multiple
// w:t elements; they are joined without separators, matching how Word
// renders them.
func docxParagraphs(r io.Reader) ([]string, error) {
	var (
		paragraphs  []string
		current     strings.Builder
		inParagraph bool
		inRun       bool
	)

	decoder := xml.NewDecoder(r)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				current.Reset()
			case "t":
				inRun = inParagraph
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "p":
				if inParagraph {
					inParagraph = false
					paragraphs = append(paragraphs, current.String())
				}
			case "t":
				inRun = false
			}
		case xml.CharData:
			if inRun {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
