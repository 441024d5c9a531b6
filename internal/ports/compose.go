package ports

import (
	"context"

	"github.com/memeforge/memeforge/internal/domain"
)

// MemeCompositor renders a quote onto an image and persists the result.
type MemeCompositor interface {
	// Compose loads the image at imgPath, scales it down to the configured
	// maximum width, draws the quote at a random position, and writes the
	// result as a new JPEG file. The source image is never modified.
	Compose(ctx context.Context, imgPath string, quote domain.Quote) (domain.Meme, error)
}

// AssetPicker selects random source material for meme generation.
type AssetPicker interface {
	// RandomImage returns the path of a randomly chosen image from the
	// configured image directory. Returns domain.NoAssetsError when the
	// directory yields no usable images.
	RandomImage(ctx context.Context) (string, error)

	// RandomQuote returns a randomly chosen quote from the configured quote
	// corpus. Returns domain.NoAssetsError when the corpus is empty.
	RandomQuote(ctx context.Context) (domain.Quote, error)
}

// ImageFetcher downloads a remote image to a local temporary file.
// Used by the web form flow where the user supplies an image URL.
type ImageFetcher interface {
	// Fetch downloads the resource at url into a temporary file and returns
	// its path. The caller owns the file and must remove it when done.
	Fetch(ctx context.Context, url string) (string, error)
}
