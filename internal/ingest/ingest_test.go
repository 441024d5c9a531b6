package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/domain"
)

func TestQuoteFromLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		expected   domain.Quote
		expectedOK bool
	}{
		{
			name:       "plain quote",
			line:       "Be yourself. - Oscar Wilde",
			expected:   domain.Quote{Body: "Be yourself.", Author: "Oscar Wilde"},
			expectedOK: true,
		},
		{
			name:       "quoted body",
			line:       `"Chase the mailman" - Skye`,
			expected:   domain.Quote{Body: "Chase the mailman", Author: "Skye"},
			expectedOK: true,
		},
		{
			name:       "separator inside body splits on first occurrence",
			line:       "To be - or not to be - Shakespeare",
			expected:   domain.Quote{Body: "To be", Author: "or not to be - Shakespeare"},
			expectedOK: true,
		},
		{
			name:       "no separator",
			line:       "no separator here",
			expectedOK: false,
		},
		{
			name:       "hyphen without spaces is not a separator",
			line:       "well-known saying",
			expectedOK: false,
		},
		{
			name:       "empty author",
			line:       "Bark more -  ",
			expectedOK: false,
		},
		{
			name:       "empty body",
			line:       " - Rex",
			expectedOK: false,
		},
		{
			name:       "empty line",
			line:       "",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := quoteFromLine(tt.line)

			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expected, q)
			}
		})
	}
}

func writeCorpusFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestTextIngestor_CanIngest(t *testing.T) {
	ing := NewTextIngestor()

	assert.True(t, ing.CanIngest("quotes.txt"))
	assert.True(t, ing.CanIngest("QUOTES.TXT"))
	assert.False(t, ing.CanIngest("quotes.csv"))
	assert.False(t, ing.CanIngest("quotes"))
}

func TestTextIngestor_Parse(t *testing.T) {
	content := "Be yourself. - Oscar Wilde\n" +
		"malformed line\n" +
		"\n" +
		`"Treats now" - Rex` + "\n"

	path := writeCorpusFile(t, "quotes.txt", content)

	quotes, err := NewTextIngestor().Parse(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, domain.Quote{Body: "Be yourself.", Author: "Oscar Wilde"}, quotes[0])
	assert.Equal(t, domain.Quote{Body: "Treats now", Author: "Rex"}, quotes[1])
}

func TestTextIngestor_Parse_MissingFile(t *testing.T) {
	_, err := NewTextIngestor().Parse(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))

	require.Error(t, err)
	assert.True(t, domain.IsParse(err))
}

func TestCSVIngestor_Parse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []domain.Quote
	}{
		{
			name:    "standard header order",
			content: "body,author\nBe yourself.,Oscar Wilde\nTreats now,Rex\n",
			expected: []domain.Quote{
				{Body: "Be yourself.", Author: "Oscar Wilde"},
				{Body: "Treats now", Author: "Rex"},
			},
		},
		{
			name:    "reversed header and mixed case",
			content: "Author,Body\nOscar Wilde,Be yourself.\n",
			expected: []domain.Quote{
				{Body: "Be yourself.", Author: "Oscar Wilde"},
			},
		},
		{
			name:    "rows with empty fields skipped",
			content: "body,author\nBe yourself.,\n,Rex\nGood quote,Good author\n",
			expected: []domain.Quote{
				{Body: "Good quote", Author: "Good author"},
			},
		},
		{
			name:    "extra columns ignored",
			content: "id,body,author\n1,Be yourself.,Oscar Wilde\n",
			expected: []domain.Quote{
				{Body: "Be yourself.", Author: "Oscar Wilde"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCorpusFile(t, "quotes.csv", tt.content)

			quotes, err := NewCSVIngestor().Parse(context.Background(), path)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, quotes)
		})
	}
}

func TestCSVIngestor_Parse_MissingColumns(t *testing.T) {
	path := writeCorpusFile(t, "quotes.csv", "text,speaker\nBe yourself.,Oscar Wilde\n")

	_, err := NewCSVIngestor().Parse(context.Background(), path)

	require.Error(t, err)
	assert.True(t, domain.IsParse(err))
	assert.Contains(t, err.Error(), "body")
}

func TestCSVIngestor_CanIngest(t *testing.T) {
	ing := NewCSVIngestor()

	assert.True(t, ing.CanIngest("quotes.csv"))
	assert.False(t, ing.CanIngest("quotes.txt"))
}
