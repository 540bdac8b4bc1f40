package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/simonhull/audiometa"

	"github.com/listenupapp/listenup-player/internal/domain"
)

// NativeExtractor reads tags and chapters directly from audio files
// using audiometa (M4B/M4A, MP3, FLAC, Ogg).
type NativeExtractor struct {
	logger *slog.Logger
}

// NewNativeExtractor creates a new native extractor.
func NewNativeExtractor(logger *slog.Logger) *NativeExtractor {
	return &NativeExtractor{logger: logger}
}

// Chapters returns the ordered chapter list embedded in the file.
func (e *NativeExtractor) Chapters(ctx context.Context, path string) ([]domain.Chapter, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read-only open, nothing to do about close errors

	chapters := make([]domain.Chapter, 0, len(file.Chapters))
	for _, ch := range file.Chapters {
		chapters = append(chapters, domain.Chapter{
			Title: ch.Title,
			Start: ch.StartTime,
		})
	}

	e.logger.Debug("extracted chapters",
		"path", path,
		"count", len(chapters),
	)

	return chapters, nil
}

// Metadata returns full tag metadata for the file, including cover bytes
// when the file carries embedded artwork.
func (e *NativeExtractor) Metadata(ctx context.Context, path string) (*domain.Metadata, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close() //nolint:errcheck // Read-only open, nothing to do about close errors

	meta := &domain.Metadata{
		Title:       file.Tags.Title,
		Author:      file.Tags.Artist,
		Year:        file.Tags.Year,
		Duration:    file.Audio.Duration,
		HasChapters: len(file.Chapters) > 0,
	}
	if len(file.Tags.Genres) > 0 {
		meta.Genre = file.Tags.Genres[0]
	}

	// Cover extraction failures degrade to metadata without a cover.
	artworks, err := file.ExtractArtwork()
	if err != nil {
		e.logger.Warn("failed to extract artwork",
			"path", path,
			"error", err,
		)
	} else if len(artworks) > 0 {
		meta.CoverImage = artworks[0].Data
	}

	return meta, nil
}
