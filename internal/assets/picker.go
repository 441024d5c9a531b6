// Package assets selects random source material for meme generation:
// an image from the local image directory, or a quote from the configured
// corpus files.
package assets

import (
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/ports"
)

// Picker selects random assets. The random source is injected so tests can
// fix the seed; access to it is serialized because rand.Rand is not safe for
// concurrent use.
type Picker struct {
	imagesDir  string
	quoteFiles []string
	dispatcher ports.QuoteDispatcher

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a picker over the given corpora.
func NewPicker(imagesDir string, quoteFiles []string, dispatcher ports.QuoteDispatcher, rng *rand.Rand) *Picker {
	return &Picker{
		imagesDir:  imagesDir,
		quoteFiles: quoteFiles,
		dispatcher: dispatcher,
		rng:        rng,
	}
}

// RandomImage scans the image directory recursively and returns the path of
// a uniformly chosen image. A candidate is any regular file whose content
// sniffs as an image MIME type; extension alone is not trusted.
func (p *Picker) RandomImage(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pattern := filepath.Join(p.imagesDir, "**", "*")

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return "", domain.NewNoAssetsError("image", p.imagesDir)
	}

	var candidates []string

	for _, match := range matches {
		detected, err := mimetype.DetectFile(match)
		if err != nil {
			continue
		}

		if strings.HasPrefix(detected.String(), "image/") {
			candidates = append(candidates, match)
		}
	}

	if len(candidates) == 0 {
		return "", domain.NewNoAssetsError("image", p.imagesDir)
	}

	return candidates[p.intn(len(candidates))], nil
}

// RandomQuote parses the whole quote corpus and returns a uniformly chosen
// quote from the aggregate.
func (p *Picker) RandomQuote(ctx context.Context) (domain.Quote, error) {
	quotes, err := p.dispatcher.ParseAll(ctx, p.quoteFiles)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(quotes) == 0 {
		return domain.Quote{}, domain.NewNoAssetsError("quote", strings.Join(p.quoteFiles, ", "))
	}

	return quotes[p.intn(len(quotes))], nil
}

func (p *Picker) intn(n int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.rng.Intn(n)
}
