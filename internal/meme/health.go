package meme

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// OutputDirChecker reports whether the meme output directory is writable.
// A probe file is created and removed on every check.
type OutputDirChecker struct {
	dir string
}

// NewOutputDirChecker creates a checker for the given output directory.
func NewOutputDirChecker(dir string) *OutputDirChecker {
	return &OutputDirChecker{dir: dir}
}

// Name implements ports.HealthChecker.
func (c *OutputDirChecker) Name() string { return "output-dir" }

// Check implements ports.HealthChecker.
func (c *OutputDirChecker) Check(_ context.Context) error {
	err := os.MkdirAll(c.dir, 0o750)
	if err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	probe, err := os.CreateTemp(c.dir, ".readycheck-*")
	if err != nil {
		return fmt.Errorf("output dir not writable: %w", err)
	}

	name := probe.Name()
	probe.Close()

	return os.Remove(filepath.Clean(name))
}
