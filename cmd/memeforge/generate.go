package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/memeforge/memeforge/internal/app"
	"github.com/memeforge/memeforge/internal/assets"
	"github.com/memeforge/memeforge/internal/ingest"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/platform/config"
)

// newMemeService wires the generation pipeline from config.
func newMemeService(cfg *config.Config, logger *slog.Logger) (*app.MemeService, error) {
	dispatcher := ingest.NewDefaultDispatcher()

	rng := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // Selection does not need crypto-grade randomness
	picker := assets.NewPicker(cfg.Assets.ImagesDir, cfg.Assets.QuoteFiles, dispatcher, rng)

	compositor, err := meme.NewCompositor(meme.Options{
		OutputDir:   cfg.Meme.OutputDir,
		MaxWidth:    cfg.Meme.MaxWidth,
		JPEGQuality: cfg.Meme.JPEGQuality,
		FontPath:    cfg.Meme.FontPath,
	})
	if err != nil {
		return nil, fmt.Errorf("creating compositor: %w", err)
	}

	return app.NewMemeService(app.MemeServiceConfig{
		Picker:     picker,
		Compositor: compositor,
		Dispatcher: dispatcher,
		Logger:     logger,
	}), nil
}

// newGenerateCmd builds the one-shot CLI generation command.
func newGenerateCmd(profile *string) *cobra.Command {
	var (
		imagePath string
		body      string
		author    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a single meme and print its path",
		Long: `Generate composites one meme and prints the output path on stdout.

Without flags it pairs a random image from the configured image directory
with a random quote from the corpus. --path overrides the image, --body and
--author (which must be given together) override the quote.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*profile)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)

			service, err := newMemeService(cfg, logger)
			if err != nil {
				return err
			}

			generated, err := service.Generate(cmd.Context(), app.GenerateInput{
				ImagePath: imagePath,
				Body:      body,
				Author:    author,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), generated.Path)

			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "path", "", "source image (blank picks a random local image)")
	cmd.Flags().StringVar(&body, "body", "", "quote body (blank picks a random corpus quote)")
	cmd.Flags().StringVar(&author, "author", "", "quote author (required with --body)")

	return cmd
}
