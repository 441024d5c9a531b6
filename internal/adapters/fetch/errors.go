// Package fetch downloads user-supplied image URLs to local temporary files.
package fetch

import "errors"

// Fetch errors represent failures in the download layer.
// These are distinct from domain errors - they represent infrastructure failures
// that are translated to domain errors before leaving the adapter.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	// This indicates remote downloads keep failing and requests are being blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after all retry attempts have been exhausted.
	// The original error is wrapped for context.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrTooLarge is returned when the response body exceeds the configured limit.
	ErrTooLarge = errors.New("response exceeds size limit")

	// ErrNotAnImage is returned when the downloaded content does not sniff as an image.
	ErrNotAnImage = errors.New("content is not an image")
)
