package assets

import (
	"context"
	"fmt"
	"os"
)

// ImageDirChecker reports whether the image directory exists and is readable.
type ImageDirChecker struct {
	dir string
}

// NewImageDirChecker creates a checker for the given image directory.
func NewImageDirChecker(dir string) *ImageDirChecker {
	return &ImageDirChecker{dir: dir}
}

// Name implements ports.HealthChecker.
func (c *ImageDirChecker) Name() string { return "image-dir" }

// Check implements ports.HealthChecker.
func (c *ImageDirChecker) Check(_ context.Context) error {
	info, err := os.Stat(c.dir)
	if err != nil {
		return fmt.Errorf("image dir: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("image dir: %s is not a directory", c.dir)
	}

	return nil
}

// QuoteCorpusChecker reports whether every configured corpus file exists.
// It does not parse the files; parse failures surface per request.
type QuoteCorpusChecker struct {
	files []string
}

// NewQuoteCorpusChecker creates a checker for the given corpus files.
func NewQuoteCorpusChecker(files []string) *QuoteCorpusChecker {
	return &QuoteCorpusChecker{files: files}
}

// Name implements ports.HealthChecker.
func (c *QuoteCorpusChecker) Name() string { return "quote-corpus" }

// Check implements ports.HealthChecker.
func (c *QuoteCorpusChecker) Check(_ context.Context) error {
	for _, f := range c.files {
		_, err := os.Stat(f)
		if err != nil {
			return fmt.Errorf("quote corpus: %w", err)
		}
	}

	return nil
}
