package download

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/listenupapp/listenup-player/internal/domain"
	domainerrors "github.com/listenupapp/listenup-player/internal/errors"
	"github.com/listenupapp/listenup-player/internal/extract"
	"github.com/listenupapp/listenup-player/internal/store"
)

// ProgressFunc receives download progress fractions in [0,1].
type ProgressFunc func(fraction float64)

// Monitor runs materializations and estimates their progress.
type Monitor struct {
	materializer Materializer
	stater       Stater
	extractor    extract.Extractor
	store        store.Store
	logger       *slog.Logger
	pollInterval time.Duration
}

// NewMonitor creates a new download monitor.
func NewMonitor(
	materializer Materializer,
	stater Stater,
	extractor extract.Extractor,
	store store.Store,
	pollInterval time.Duration,
	logger *slog.Logger,
) *Monitor {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Monitor{
		materializer: materializer,
		stater:       stater,
		extractor:    extractor,
		store:        store,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Run materializes the book's file, reporting progress via onProgress
// until the transfer completes, fails, or ctx is cancelled.
//
// On success the book's metadata is re-extracted from the now-local file,
// merged into the record (existing values win over empty ones), persisted,
// and the updated book is returned ready for local playback. On failure or
// cancellation no playback should be attempted; the error describes why.
//
// The caller's record is never written to. Run works on a private copy
// and returns it; the caller installs the refreshed record into its own
// session state under its own lock.
//
// onProgress is called from the monitor's goroutines; the caller owns
// serializing the updates into its session state.
func (m *Monitor) Run(ctx context.Context, book *domain.Book, onProgress ProgressFunc) (*domain.Book, error) {
	refreshed := *book
	book = &refreshed

	// The platform reports the full size before any bytes are local.
	// If it can't, run without percentages; only completion matters.
	size, err := m.stater.ReportedSize(book.Path)
	if err != nil {
		m.logger.Warn("reported size unavailable, progress disabled",
			"book_id", book.ID,
			"path", book.Path,
			"error", err,
		)
		size = 0
	}

	onProgress(0)

	m.logger.Info("starting materialization",
		"book_id", book.ID,
		"path", book.Path,
		"size", size,
	)

	// Both children hang off one cancellable parent: cancelling ctx
	// stops the materializer and the poll loop together.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.pollProgress(runCtx, book.Path, size, onProgress)
	}()

	err = m.materializer.Materialize(runCtx, book.Path)
	cancel()
	wg.Wait()

	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeDownloadFailed, "materialize %s", book.Path)
	}

	onProgress(1.0)

	m.refreshMetadata(ctx, book)
	book.RemoteOnly = false
	book.UpdatedAt = time.Now()

	// A failed save leaves the in-memory record usable; playback still works.
	if err := m.store.SaveBook(ctx, book); err != nil {
		m.logger.Warn("failed to persist refreshed book",
			"book_id", book.ID,
			"error", err,
		)
	}

	m.logger.Info("materialization complete", "book_id", book.ID)
	return book, nil
}

// pollProgress samples the on-disk footprint once per interval and reports
// the estimated fraction. It exits as soon as allocated bytes reach the
// reported size, which may happen before the materializer itself returns.
//
// Allocated-block counts can fluctuate downward mid-transfer (compaction,
// preallocation release); reported fractions are floored at the previous
// one so observers only ever see the estimate advance.
func (m *Monitor) pollProgress(ctx context.Context, path string, size int64, onProgress ProgressFunc) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	var last float64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			allocated, err := m.stater.AllocatedBytes(path)
			if err != nil {
				// Transient status failure: skip this tick, retry next.
				continue
			}
			if size <= 0 {
				continue
			}

			fraction := min(float64(allocated)/float64(size), 1.0)
			if fraction >= last {
				last = fraction
				onProgress(fraction)
			}

			if allocated >= size {
				return
			}
		}
	}
}

// refreshMetadata re-runs extraction against the now-local file and merges
// newly discovered fields into the book. Extraction failure degrades to
// keeping the existing record.
func (m *Monitor) refreshMetadata(ctx context.Context, book *domain.Book) {
	meta, err := m.extractor.Metadata(ctx, book.Path)
	if err != nil {
		m.logger.Warn("metadata refresh failed after download",
			"book_id", book.ID,
			"error", err,
		)
		return
	}
	book.MergeMetadata(meta)

	chapters, err := m.extractor.Chapters(ctx, book.Path)
	if err != nil {
		m.logger.Warn("chapter refresh failed after download",
			"book_id", book.ID,
			"error", err,
		)
		return
	}
	if len(chapters) > 0 {
		book.Chapters = chapters
		book.HasChapters = true
	}
}
