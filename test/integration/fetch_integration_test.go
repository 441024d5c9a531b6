//go:build integration

package integration

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/adapters/fetch"
	"github.com/memeforge/memeforge/internal/adapters/http/middleware"
	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/platform/config"
)

// testPNG returns an encoded PNG suitable for download tests.
func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for x := 0; x < 32; x++ {
		for y := 0; y < 32; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

// testFetchConfig returns a config tuned for fast integration testing.
func testFetchConfig() *fetch.Config {
	return &fetch.Config{
		Timeout:  5 * time.Second,
		MaxBytes: 1 << 20,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 2,
		},
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

// TestFetcher_RetryBehavior_TransientFailures verifies that the fetcher
// retries on transient server failures and eventually downloads the image.
func TestFetcher_RetryBehavior_TransientFailures(t *testing.T) {
	payload := testPNG(t)

	var attempts int32

	// Server fails twice, then serves the image
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attempts, 1)
		if count <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	fetcher, err := fetch.New(testFetchConfig())
	require.NoError(t, err)

	path, err := fetcher.Fetch(context.Background(), server.URL+"/cat.png")
	require.NoError(t, err)
	defer os.Remove(path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, payload, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts), "expected 3 attempts (2 failures + 1 success)")
}

// TestFetcher_CircuitBreaker_StateTransitions verifies the circuit breaker
// transitions through all states correctly.
func TestFetcher_CircuitBreaker_StateTransitions(t *testing.T) {
	payload := testPNG(t)

	var calls int32
	var shouldFail atomic.Bool
	shouldFail.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if shouldFail.Load() {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.Retry.MaxAttempts = 1 // No retries for clearer circuit breaker testing
	cfg.Circuit.MaxFailures = 2
	cfg.Circuit.Timeout = 50 * time.Millisecond

	fetcher, err := fetch.New(cfg)
	require.NoError(t, err)

	// Phase 1: Closed state - failures accumulate
	assert.Equal(t, fetch.StateClosed, fetcher.CircuitState())

	_, err = fetcher.Fetch(context.Background(), server.URL+"/a.png")
	require.Error(t, err)
	assert.Equal(t, fetch.StateClosed, fetcher.CircuitState())

	_, err = fetcher.Fetch(context.Background(), server.URL+"/b.png")
	require.Error(t, err)

	// Phase 2: Open state after 2 failures
	assert.Equal(t, fetch.StateOpen, fetcher.CircuitState())

	// Phase 3: Requests fail fast without reaching the server
	callsBefore := atomic.LoadInt32(&calls)
	_, err = fetcher.Fetch(context.Background(), server.URL+"/c.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrCircuitOpen)
	assert.True(t, domain.IsImageLoad(err), "circuit failures surface as image load errors")
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "no server call when circuit is open")

	// Phase 4: After the timeout the circuit half-opens and successes close it
	time.Sleep(60 * time.Millisecond)
	shouldFail.Store(false)

	path, err := fetcher.Fetch(context.Background(), server.URL+"/d.png")
	require.NoError(t, err)
	os.Remove(path)

	path, err = fetcher.Fetch(context.Background(), server.URL+"/e.png")
	require.NoError(t, err)
	os.Remove(path)

	// Phase 5: Circuit is closed again
	assert.Equal(t, fetch.StateClosed, fetcher.CircuitState())
}

// TestFetcher_Timeout_SlowResponse verifies the fetcher times out
// when the server responds slowly.
func TestFetcher_Timeout_SlowResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond) // Slower than fetcher timeout
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.Retry.MaxAttempts = 1

	fetcher, err := fetch.New(cfg)
	require.NoError(t, err)

	start := time.Now()
	_, err = fetcher.Fetch(context.Background(), server.URL+"/slow.png")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, 300*time.Millisecond, "should timeout quickly")
}

// TestFetcher_ContextCancellation_Integration verifies that downloads
// are cancelled promptly when the context is cancelled.
func TestFetcher_ContextCancellation_Integration(t *testing.T) {
	requestStarted := make(chan struct{})
	requestCompleted := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requestStarted)
		<-r.Context().Done() // Wait for cancellation
		close(requestCompleted)
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.Timeout = 5 * time.Second // Long timeout so cancellation triggers first

	fetcher, err := fetch.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		<-requestStarted
		cancel()
	}()

	start := time.Now()
	_, err = fetcher.Fetch(ctx, server.URL+"/cancel.png")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Less(t, elapsed, time.Second, "cancellation should be prompt")

	select {
	case <-requestCompleted:
		// Server saw the cancellation
	case <-time.After(time.Second):
		t.Fatal("server did not receive cancellation")
	}
}

// TestFetcher_HeaderPropagation_Integration verifies that request ID and
// correlation ID headers are propagated to the remote host.
func TestFetcher_HeaderPropagation_Integration(t *testing.T) {
	payload := testPNG(t)

	var receivedRequestID, receivedCorrelationID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedRequestID = r.Header.Get(middleware.HeaderRequestID)
		receivedCorrelationID = r.Header.Get(middleware.HeaderCorrelationID)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	fetcher, err := fetch.New(testFetchConfig())
	require.NoError(t, err)

	ctx := context.Background()
	ctx = middleware.ContextWithRequestID(ctx, "req-integration-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-integration-456")

	path, err := fetcher.Fetch(ctx, server.URL+"/tracked.png")
	require.NoError(t, err)
	defer os.Remove(path)

	assert.Equal(t, "req-integration-123", receivedRequestID)
	assert.Equal(t, "corr-integration-456", receivedCorrelationID)
}

// TestFetcher_RejectsOversizedAndNonImagePayloads verifies the download
// guards hold when talking to a real HTTP server.
func TestFetcher_RejectsOversizedAndNonImagePayloads(t *testing.T) {
	payload := testPNG(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/big.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(bytes.Repeat(payload, 64))
		default:
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>not an image</body></html>"))
		}
	}))
	defer server.Close()

	cfg := testFetchConfig()
	cfg.MaxBytes = int64(len(payload)) * 2

	fetcher, err := fetch.New(cfg)
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/big.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrTooLarge)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/page.html")
	require.Error(t, err)
	assert.ErrorIs(t, err, fetch.ErrNotAnImage)
}
