// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"log/slog"

	"github.com/memeforge/memeforge/internal/domain"
	"github.com/memeforge/memeforge/internal/ports"
)

// MemeService orchestrates meme generation use cases.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type MemeService struct {
	picker     ports.AssetPicker
	compositor ports.MemeCompositor
	dispatcher ports.QuoteDispatcher
	logger     *slog.Logger
}

// MemeServiceConfig contains configuration for the meme service.
type MemeServiceConfig struct {
	Picker     ports.AssetPicker
	Compositor ports.MemeCompositor
	Dispatcher ports.QuoteDispatcher
	Logger     *slog.Logger
}

// NewMemeService creates a new meme service with the provided dependencies.
func NewMemeService(cfg MemeServiceConfig) *MemeService {
	return &MemeService{
		picker:     cfg.Picker,
		compositor: cfg.Compositor,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
	}
}

// GenerateInput carries the optional overrides for a generation run.
// Empty fields fall back to random selection.
type GenerateInput struct {
	// ImagePath optionally names a local source image.
	ImagePath string

	// Body and Author must be supplied together or not at all.
	Body   string
	Author string
}

// Generate composites a meme from the given input. Missing pieces are filled
// by random selection: no image path picks a random local image, no quote
// picks a random quote from the corpus.
func (s *MemeService) Generate(ctx context.Context, input GenerateInput) (domain.Meme, error) {
	if (input.Body == "") != (input.Author == "") {
		field := "author"
		if input.Author != "" {
			field = "body"
		}

		return domain.Meme{}, domain.NewValidationError(field, "body and author must be supplied together")
	}

	imgPath := input.ImagePath
	if imgPath == "" {
		var err error

		imgPath, err = s.picker.RandomImage(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to pick random image",
				slog.Any("error", err),
			)
			return domain.Meme{}, err
		}
	}

	var (
		quote domain.Quote
		ok    bool
	)

	if input.Body != "" {
		quote, ok = domain.NewQuote(input.Body, input.Author)
		if !ok {
			return domain.Meme{}, domain.NewValidationError("body", "body and author must be non-empty")
		}
	} else {
		var err error

		quote, err = s.picker.RandomQuote(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to pick random quote",
				slog.Any("error", err),
			)
			return domain.Meme{}, err
		}
	}

	s.logger.InfoContext(ctx, "compositing meme",
		slog.String("image", imgPath),
		slog.String("author", quote.Author),
	)

	meme, err := s.compositor.Compose(ctx, imgPath, quote)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to composite meme",
			slog.String("image", imgPath),
			slog.Any("error", err),
		)
		return domain.Meme{}, err
	}

	s.logger.InfoContext(ctx, "composited meme",
		slog.String("path", meme.Path),
	)

	return meme, nil
}

// IngestAll parses every given corpus file and returns the concatenated
// quotes. A failing file aborts the whole run.
func (s *MemeService) IngestAll(ctx context.Context, paths []string) ([]domain.Quote, error) {
	s.logger.InfoContext(ctx, "ingesting quote corpus",
		slog.Int("files", len(paths)),
	)

	quotes, err := s.dispatcher.ParseAll(ctx, paths)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to ingest quote corpus",
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "ingested quote corpus",
		slog.Int("quotes", len(quotes)),
	)

	return quotes, nil
}
