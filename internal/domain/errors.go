// Package domain contains business logic types and errors.
// Domain errors represent business-level failures, NOT HTTP errors.
// They are infrastructure-agnostic and can be mapped to HTTP status codes or
// CLI exit codes by adapters.
package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnsupportedFormat indicates no ingestor is registered for a file's
	// extension.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrParse indicates a quote source file could not be opened or decoded.
	// Individual malformed records never produce this error; they are skipped.
	ErrParse = errors.New("parse failed")

	// ErrImageLoad indicates a source image could not be opened or decoded.
	ErrImageLoad = errors.New("image load failed")

	// ErrNoAssets indicates a random selection ran over an empty corpus.
	ErrNoAssets = errors.New("no assets found")

	// ErrValidation indicates caller input failed business rule validation.
	ErrValidation = errors.New("validation failed")
)

// UnsupportedFormatError provides context for unsupported format errors.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	if e.Ext != "" {
		return fmt.Sprintf("no ingestor registered for extension %q (%s)", e.Ext, e.Path)
	}

	return "no ingestor registered for " + e.Path
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// NewUnsupportedFormatError creates an unsupported format error with context.
func NewUnsupportedFormatError(path, ext string) error {
	return &UnsupportedFormatError{Path: path, Ext: ext}
}

// ParseError provides context for file-level parse failures.
type ParseError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parsing %s: %v", e.Path, e.Cause)
	}

	return fmt.Sprintf("parsing %s failed", e.Path)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// NewParseError creates a parse error wrapping the underlying cause.
func NewParseError(path string, cause error) error {
	return &ParseError{Path: path, Cause: cause}
}

// ImageLoadError provides context for image decode failures.
type ImageLoadError struct {
	Path  string
	Cause error
}

// Error implements the error interface.
func (e *ImageLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("loading image %s: %v", e.Path, e.Cause)
	}

	return fmt.Sprintf("loading image %s failed", e.Path)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ImageLoadError) Unwrap() error {
	return ErrImageLoad
}

// NewImageLoadError creates an image load error wrapping the underlying cause.
func NewImageLoadError(path string, cause error) error {
	return &ImageLoadError{Path: path, Cause: cause}
}

// NoAssetsError provides context for empty-corpus selection failures.
type NoAssetsError struct {
	// Kind names what was being selected, e.g. "image" or "quote".
	Kind string

	// Source describes the corpus that came up empty.
	Source string
}

// Error implements the error interface.
func (e *NoAssetsError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("no %s assets found in %s", e.Kind, e.Source)
	}

	return fmt.Sprintf("no %s assets found", e.Kind)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *NoAssetsError) Unwrap() error {
	return ErrNoAssets
}

// NewNoAssetsError creates a no-assets error with context.
func NewNoAssetsError(kind, source string) error {
	return &NoAssetsError{Kind: kind, Source: source}
}

// ValidationError provides context for validation errors.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsUnsupportedFormat checks if an error is an unsupported format error.
func IsUnsupportedFormat(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat)
}

// IsParse checks if an error is a file-level parse error.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

// IsImageLoad checks if an error is an image load error.
func IsImageLoad(err error) bool {
	return errors.Is(err, ErrImageLoad)
}

// IsNoAssets checks if an error is an empty-corpus error.
func IsNoAssets(err error) bool {
	return errors.Is(err, ErrNoAssets)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
