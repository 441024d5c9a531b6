package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/memeforge/memeforge/internal/adapters/http/middleware"
	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/platform/config"
	"github.com/memeforge/memeforge/internal/platform/logging"
)

const (
	// instrumentationName is used for OpenTelemetry tracer and meter.
	instrumentationName = "github.com/memeforge/memeforge/internal/adapters/fetch"

	// defaultTimeout is the default per-attempt timeout if not configured.
	defaultTimeout = 10 * time.Second

	// defaultMaxBytes caps downloads when no limit is configured (10MB).
	defaultMaxBytes = 10 << 20

	// jitterRangeMultiplier converts rand [0,1) to [-1,1) for symmetric jitter.
	jitterRangeMultiplier = 2
)

// Config configures a Fetcher instance.
type Config struct {
	// Timeout is the per-attempt request timeout.
	// Total wall-clock time may exceed this value due to retries and backoff.
	Timeout time.Duration

	// MaxBytes caps the size of a downloaded image.
	MaxBytes int64

	// Retry configures retry behavior.
	Retry config.RetryConfig

	// Circuit configures circuit breaker behavior.
	Circuit config.CircuitBreakerConfig

	// Logger is an optional logger. If nil, a default logger is used.
	Logger *slog.Logger
}

// Fetcher downloads remote images to temporary files. It provides:
//   - Retry with exponential backoff and jitter
//   - Circuit breaker protection
//   - OpenTelemetry tracing and metrics
//   - Content sniffing so only real images reach the compositor
//
// Unlike the core pipeline, downloads retry on transient failures: the
// network is the one genuinely transient dependency in the system.
type Fetcher struct {
	http   *http.Client
	cfg    *Config
	logger *slog.Logger
	cb     *CircuitBreaker

	tracer trace.Tracer

	downloadDuration metric.Float64Histogram
	downloadTotal    metric.Int64Counter
}

// New creates a new instrumented image fetcher.
func New(cfg *Config) (*Fetcher, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "fetch.Fetcher"))

	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	tracer := otel.Tracer(instrumentationName)
	meter := otel.Meter(instrumentationName)

	downloadDuration, err := meter.Float64Histogram(
		"image.download.duration",
		metric.WithDescription("Duration of image downloads"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	downloadTotal, err := meter.Int64Counter(
		"image.download.total",
		metric.WithDescription("Total number of image downloads"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating download counter: %w", err)
	}

	return &Fetcher{
		http:             &http.Client{Timeout: cfg.Timeout},
		cfg:              cfg,
		logger:           logger,
		cb:               cb,
		tracer:           tracer,
		downloadDuration: downloadDuration,
		downloadTotal:    downloadTotal,
	}, nil
}

// Fetch implements ports.ImageFetcher. It downloads the resource at url into
// a temporary file and returns its path. The caller owns the file and must
// remove it when done. All failure modes surface as domain.ImageLoadError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	startTime := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("component", "fetch.Fetcher"),
		slog.String("url", url),
	)

	if !f.cb.Allow() {
		f.recordMetrics(ctx, time.Since(startTime), "circuit_open")
		logger.Warn("download blocked by circuit breaker")

		return "", domain.NewImageLoadError(url, ErrCircuitOpen)
	}

	ctx, span := f.tracer.Start(ctx, "image download",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", url)),
	)
	defer span.End()

	path, err := f.fetchWithRetry(ctx, url, logger)

	duration := time.Since(startTime)

	if err != nil {
		f.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		f.recordMetrics(ctx, duration, "error")
		logger.Error("download failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

		return "", domain.NewImageLoadError(url, err)
	}

	f.cb.RecordSuccess()
	f.recordMetrics(ctx, duration, "success")
	logger.Debug("download completed",
		slog.String("path", path),
		slog.Duration("duration", duration),
	)

	return path, nil
}

// fetchWithRetry performs the download with retry logic. Server errors and
// transient network failures retry; anything else fails immediately.
func (f *Fetcher) fetchWithRetry(ctx context.Context, url string, logger *slog.Logger) (string, error) {
	var lastErr error

	for attempt := 0; attempt < f.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := f.calculateBackoff(attempt)
			logger.Debug("retrying download",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", backoff),
			)

			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		path, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return path, nil
		}

		lastErr = err
		if !retryable {
			return "", err
		}
	}

	return "", fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, lastErr)
}

// fetchOnce performs a single download attempt. Returns the temp file path on
// success, or (retryable, error) on failure. The temp file is removed on
// every failing path.
func (f *Fetcher) fetchOnce(ctx context.Context, url string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}

	// Propagate request tracking headers for log correlation on the remote side
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", isRetryableError(err), err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", true, fmt.Errorf("server error: %d", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "memeforge-fetch-*")
	if err != nil {
		return "", false, fmt.Errorf("creating temp file: %w", err)
	}

	written, err := io.Copy(tmp, io.LimitReader(resp.Body, f.cfg.MaxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", isRetryableError(err), fmt.Errorf("writing temp file: %w", err)
	}

	if written > f.cfg.MaxBytes {
		os.Remove(tmp.Name())
		return "", false, ErrTooLarge
	}

	detected, err := mimetype.DetectFile(tmp.Name())
	if err != nil || !strings.HasPrefix(detected.String(), "image/") {
		os.Remove(tmp.Name())
		return "", false, ErrNotAnImage
	}

	return tmp.Name(), false, nil
}

// CircuitState returns the current state of the circuit breaker.
func (f *Fetcher) CircuitState() State {
	return f.cb.State()
}

// calculateBackoff returns the backoff duration for the given attempt.
// Uses exponential backoff with jitter.
func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	// Exponential: initial * multiplier^attempt
	backoff := float64(f.cfg.Retry.InitialInterval) * math.Pow(f.cfg.Retry.Multiplier, float64(attempt))

	// Cap at max interval
	if backoff > float64(f.cfg.Retry.MaxInterval) {
		backoff = float64(f.cfg.Retry.MaxInterval)
	}

	// Add jitter (±jitter factor)
	jitterMultiplier := rand.Float64()*jitterRangeMultiplier - 1 //nolint:gosec // No need for crypto-grade randomness
	jitter := backoff * f.cfg.Retry.JitterFactor * jitterMultiplier
	backoff += jitter

	return time.Duration(backoff)
}

// recordMetrics records download metrics.
func (f *Fetcher) recordMetrics(ctx context.Context, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("result", result),
	}

	f.downloadDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	f.downloadTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// isRetryableError determines if an error is retryable.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// Network timeout errors are retryable
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// Connection refused, reset, etc. are retryable
	var opErr *net.OpError

	return errors.As(err, &opErr)
}
