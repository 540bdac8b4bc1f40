// Package extract provides metadata and chapter extraction from audio files.
package extract

import (
	"context"

	"github.com/listenupapp/listenup-player/internal/domain"
)

// Extractor parses chapter marks and tag metadata from a local audio file.
type Extractor interface {
	// Chapters returns the ordered chapter list for the file.
	// The list is sorted ascending by start time; it may be empty.
	Chapters(ctx context.Context, path string) ([]domain.Chapter, error)

	// Metadata returns full tag metadata for the file.
	Metadata(ctx context.Context, path string) (*domain.Metadata, error)
}
