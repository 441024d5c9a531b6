// Package meme composites quotes onto images. The source image is scaled
// down to a maximum width, the quote is drawn at a random position, and the
// result is written as a new JPEG file. Source images are never modified.
package meme

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/memeforge/memeforge/internal/domain"
)

const (
	defaultMaxWidth    = 500
	defaultJPEGQuality = 85

	textMargin    = 10
	bodyFontSize  = 28.0
	minFontSize   = 12.0
	fontSizeStep  = 2.0
	authorRatio   = 0.75
	lineGapPixels = 6
)

// Options configures a Compositor. Zero values fall back to defaults.
type Options struct {
	// OutputDir receives the generated JPEG files. Created if absent.
	OutputDir string

	// MaxWidth is the widest output in pixels. Wider sources are scaled
	// down preserving aspect ratio; narrower sources are never upsized.
	MaxWidth int

	// JPEGQuality is the encoder quality, 1 to 100.
	JPEGQuality int

	// FontPath optionally points at a TTF file. Empty means the embedded
	// Go Regular font.
	FontPath string

	// Rand drives text placement. Injected so tests can fix the seed.
	Rand *rand.Rand
}

// Compositor renders quotes onto images.
type Compositor struct {
	outputDir string
	maxWidth  int
	quality   int
	font      *sfnt.Font

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCompositor creates a compositor, loading and parsing the font up front
// so a bad font path fails at startup rather than per request.
func NewCompositor(opts Options) (*Compositor, error) {
	parsed, err := loadFont(opts.FontPath)
	if err != nil {
		return nil, err
	}

	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(uuidSeed()))
	}

	return &Compositor{
		outputDir: opts.OutputDir,
		maxWidth:  maxWidth,
		quality:   quality,
		font:      parsed,
		rng:       rng,
	}, nil
}

// uuidSeed derives a seed from a fresh uuid so that compositors built
// without an explicit source do not share placement sequences.
func uuidSeed() int64 {
	id := uuid.New()

	var seed int64
	for _, b := range id[:8] {
		seed = seed<<8 | int64(b)
	}

	return seed
}

// Compose implements ports.MemeCompositor.
func (c *Compositor) Compose(ctx context.Context, imgPath string, quote domain.Quote) (domain.Meme, error) {
	if err := ctx.Err(); err != nil {
		return domain.Meme{}, err
	}

	src, err := c.loadImage(imgPath)
	if err != nil {
		return domain.Meme{}, err
	}

	canvas := c.scale(src)

	if err := c.drawQuote(canvas, quote); err != nil {
		return domain.Meme{}, err
	}

	return c.save(canvas)
}

func (c *Compositor) loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewImageLoadError(path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, domain.NewImageLoadError(path, err)
	}

	return img, nil
}

// scale returns an RGBA canvas no wider than the configured maximum,
// preserving aspect ratio. Narrow sources are copied at original size.
func (c *Compositor) scale(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > c.maxWidth {
		scaled := c.maxWidth
		height = (height*scaled + width/2) / width
		width = scaled

		// Extreme aspect ratios can round the height down to zero, which
		// would encode an empty canvas. Keep at least one row.
		if height < 1 {
			height = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)

	return dst
}

// drawQuote renders the body with the author underneath at a smaller size.
// The block is placed uniformly at random inside the margin-safe band.
func (c *Compositor) drawQuote(canvas *image.RGBA, quote domain.Quote) error {
	bounds := canvas.Bounds()
	maxTextWidth := bounds.Dx() - 2*textMargin

	bodyText := quote.Body
	authorText := "- " + quote.Author

	size := bodyFontSize

	var (
		bodyFace, authorFace   font.Face
		bodyWidth, authorWidth int
		err                    error
	)

	// Step the size down until both lines fit the drawable width.
	for {
		bodyFace, err = newFace(c.font, size)
		if err != nil {
			return fmt.Errorf("building face: %w", err)
		}

		authorFace, err = newFace(c.font, size*authorRatio)
		if err != nil {
			bodyFace.Close()
			return fmt.Errorf("building face: %w", err)
		}

		bodyWidth = font.MeasureString(bodyFace, bodyText).Ceil()
		authorWidth = font.MeasureString(authorFace, authorText).Ceil()

		if (bodyWidth <= maxTextWidth && authorWidth <= maxTextWidth) || size <= minFontSize {
			break
		}

		bodyFace.Close()
		authorFace.Close()
		size -= fontSizeStep
	}
	defer bodyFace.Close()
	defer authorFace.Close()

	bodyMetrics := bodyFace.Metrics()
	authorMetrics := authorFace.Metrics()

	bodyHeight := (bodyMetrics.Ascent + bodyMetrics.Descent).Ceil()
	authorHeight := (authorMetrics.Ascent + authorMetrics.Descent).Ceil()
	blockHeight := bodyHeight + lineGapPixels + authorHeight
	blockWidth := max(bodyWidth, authorWidth)

	x := textMargin + c.intn(bounds.Dx()-2*textMargin-blockWidth+1)
	yTop := textMargin + c.intn(bounds.Dy()-2*textMargin-blockHeight+1)

	white := image.NewUniform(color.White)

	drawer := font.Drawer{
		Dst:  canvas,
		Src:  white,
		Face: bodyFace,
		Dot:  fixed.P(x, yTop+bodyMetrics.Ascent.Ceil()),
	}
	drawer.DrawString(bodyText)

	drawer.Face = authorFace
	drawer.Dot = fixed.P(x, yTop+bodyHeight+lineGapPixels+authorMetrics.Ascent.Ceil())
	drawer.DrawString(authorText)

	return nil
}

// intn tolerates non-positive bands, which happen when the text block is
// wider or taller than the canvas minus margins.
func (c *Compositor) intn(n int) int {
	if n <= 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.rng.Intn(n)
}

// save encodes the canvas to outputDir/meme-<uuid>.jpg. The uuid suffix
// keeps concurrent invocations from colliding.
func (c *Compositor) save(canvas *image.RGBA) (domain.Meme, error) {
	if err := os.MkdirAll(c.outputDir, 0o750); err != nil {
		return domain.Meme{}, fmt.Errorf("creating output dir: %w", err)
	}

	path := filepath.Join(c.outputDir, fmt.Sprintf("meme-%s.jpg", uuid.NewString()))

	f, err := os.Create(path)
	if err != nil {
		return domain.Meme{}, fmt.Errorf("creating %s: %w", path, err)
	}

	if err := jpeg.Encode(f, canvas, &jpeg.Options{Quality: c.quality}); err != nil {
		f.Close()
		os.Remove(path)

		return domain.Meme{}, fmt.Errorf("encoding %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return domain.Meme{}, fmt.Errorf("closing %s: %w", path, err)
	}

	return domain.Meme{Path: path}, nil
}
