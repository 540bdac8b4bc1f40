package player

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/listenupapp/listenup-player/internal/domain"
	"github.com/listenupapp/listenup-player/internal/download"
	"github.com/listenupapp/listenup-player/internal/engine"
	domainerrors "github.com/listenupapp/listenup-player/internal/errors"
	"github.com/listenupapp/listenup-player/internal/events"
	"github.com/listenupapp/listenup-player/internal/extract"
	"github.com/listenupapp/listenup-player/internal/library"
	"github.com/listenupapp/listenup-player/internal/store"
)

const (
	// discoverGraceDefault is how long discover mode lets the engine settle
	// before seeking to the random sample point.
	discoverGraceDefault = 500 * time.Millisecond

	minSleepTimerMinutes = 1
	maxSleepTimerMinutes = 480

	// defaultSleepTimerMinutes is the fallback countdown length when the
	// configured default is missing or out of range.
	defaultSleepTimerMinutes = 15
)

// Controller is the playback session. It owns the current book, the
// chapter position, the sleep timer, and any in-flight download, and it
// is the only consumer of the engine's change-notification stream.
//
// All session state lives behind one mutex. Engine changes and sleep
// timer ticks are applied from the single Run goroutine, so their
// relative order is the order they occurred.
type Controller struct {
	engine    engine.Engine
	monitor   *download.Monitor
	library   library.Library
	store     store.Store
	bookmarks *BookmarkManager
	extractor extract.Extractor
	bus       *events.Bus
	logger    *slog.Logger

	defaultSleepMin int

	// Swapped out in tests for deterministic selection.
	intN      func(n int) int
	randFloat func() float64
	grace     time.Duration

	mu           sync.Mutex
	current      *domain.Book
	chapterIndex int
	hasChapter   bool
	position     time.Duration
	duration     time.Duration
	playing      bool
	discover     bool
	sleep        *SleepTimer
	task         *downloadTask
	taskProgress float64
}

// downloadTask tracks one in-flight materialization. A task superseded by
// a newer open request is cancelled without surfacing its failure.
type downloadTask struct {
	bookID     string
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// NewController creates the session controller. Run must be started for
// engine changes and sleep timer ticks to take effect.
func NewController(
	e engine.Engine,
	monitor *download.Monitor,
	lib library.Library,
	s store.Store,
	bookmarks *BookmarkManager,
	extractor extract.Extractor,
	bus *events.Bus,
	defaultSleepMinutes int,
	logger *slog.Logger,
) *Controller {
	if defaultSleepMinutes < minSleepTimerMinutes || defaultSleepMinutes > maxSleepTimerMinutes {
		defaultSleepMinutes = defaultSleepTimerMinutes
	}
	return &Controller{
		engine:          e,
		monitor:         monitor,
		library:         lib,
		store:           s,
		bookmarks:       bookmarks,
		extractor:       extractor,
		bus:             bus,
		logger:          logger,
		defaultSleepMin: defaultSleepMinutes,
		intN:            rand.IntN,
		randFloat:       rand.Float64,
		grace:           discoverGraceDefault,
		sleep:           NewSleepTimer(),
	}
}

// Run consumes the engine's change stream and drives the sleep timer's
// one-second tick until ctx is cancelled. It must run in exactly one
// goroutine.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-c.engine.Changes():
			if !ok {
				return
			}
			c.handleChange(change)
		case <-ticker.C:
			c.handleTick()
		}
	}
}

// handleChange folds one engine change into the session: position and
// playing state first, then the chapter index, then the end-of-chapter
// sleep check against the fresh index.
func (c *Controller) handleChange(change engine.Change) {
	c.mu.Lock()

	c.position = change.Position
	c.duration = change.Duration
	c.playing = change.Playing

	var (
		book           = c.current
		chapterMoved   bool
		newIndex       int
		pauseForTimer  bool
		announceFinish bool
	)

	if book != nil && book.HasChapters {
		index, ok := ChapterIndex(change.Position, book.Chapters)
		if ok {
			if !c.hasChapter || index != c.chapterIndex {
				chapterMoved = true
			}
			c.chapterIndex = index
			c.hasChapter = true
			newIndex = index
		}
	}

	// The boundary check only counts while audio is actually moving;
	// a paused seek across a boundary must not burn the timer.
	if chapterMoved && change.Playing {
		if c.sleep.CheckChapterBoundary(newIndex) {
			pauseForTimer = true
			announceFinish = true
		}
	}
	c.mu.Unlock()

	if book != nil {
		c.bus.Emit(events.New(events.TypePositionChanged, book.ID, change.Position))
		if chapterMoved {
			c.bus.Emit(events.New(events.TypeChapterChanged, book.ID, newIndex))
		}
	}

	if pauseForTimer {
		c.engine.Pause()
		// Leave the playhead parked on the boundary so resuming starts
		// the new chapter cleanly.
		c.engine.Seek(book.Chapters[newIndex].Start)
	}
	if announceFinish {
		c.emitSleepFinished(book)
	}
}

// handleTick advances a counting-down sleep timer by one second.
func (c *Controller) handleTick() {
	c.mu.Lock()
	pauseNow := c.sleep.Tick()
	book := c.current
	c.mu.Unlock()

	if pauseNow {
		c.engine.Pause()
		c.emitSleepFinished(book)
	}
}

func (c *Controller) emitSleepFinished(book *domain.Book) {
	bookID := ""
	if book != nil {
		bookID = book.ID
	}
	c.bus.Emit(events.New(events.TypeSleepTimerFinished, bookID, nil))
	c.logger.Info("sleep timer finished, playback paused", "book_id", bookID)
}

// OpenBook makes the given book the current book. A local book starts
// playing immediately; a remote-only book starts a background download
// and begins playing once it lands. Opening a book whose download is
// already in flight is a no-op; opening a different book silently
// supersedes the old download.
func (c *Controller) OpenBook(ctx context.Context, bookID string) error {
	book, err := c.store.GetBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("open book %s: %w", bookID, err)
	}

	c.mu.Lock()
	c.exitDiscoverLocked()

	if c.task != nil {
		if c.task.bookID == bookID {
			c.mu.Unlock()
			return nil
		}
		// The newer request wins; the old transfer dies quietly.
		c.task.superseded.Store(true)
		c.task.cancel()
		c.task = nil
		c.taskProgress = 0
	}

	if book.RemoteOnly {
		c.current = book
		c.chapterIndex = 0
		c.hasChapter = false
		c.startDownloadLocked(book)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.playLocal(ctx, book)
}

// startDownloadLocked launches the materialization goroutine for a
// remote-only book. Caller holds c.mu.
func (c *Controller) startDownloadLocked(book *domain.Book) {
	taskCtx, cancel := context.WithCancel(context.Background())
	task := &downloadTask{bookID: book.ID, cancel: cancel}
	c.task = task
	c.taskProgress = 0

	c.logger.Info("book is remote, starting download",
		"book_id", book.ID,
		"path", book.Path,
	)

	go c.runDownload(taskCtx, task, book)
}

func (c *Controller) runDownload(ctx context.Context, task *downloadTask, book *domain.Book) {
	defer task.cancel()

	updated, err := c.monitor.Run(ctx, book, func(fraction float64) {
		c.setDownloadProgress(task, fraction)
	})

	if err != nil {
		if task.superseded.Load() {
			c.logger.Debug("superseded download stopped", "book_id", book.ID)
			return
		}

		c.mu.Lock()
		if c.task == task {
			c.task = nil
			c.taskProgress = 0
		}
		// The book never became playable; the session resets to empty.
		if c.current != nil && c.current.ID == book.ID {
			c.current = nil
			c.chapterIndex = 0
			c.hasChapter = false
		}
		c.mu.Unlock()

		c.logger.Error("download failed", "book_id", book.ID, "error", err)
		c.bus.Emit(events.New(events.TypeDownloadFailed, book.ID, err.Error()))
		c.engine.ReportError(fmt.Sprintf("Could not download %q: %v", book.Title, err))
		return
	}

	c.mu.Lock()
	if task.superseded.Load() || c.task != task {
		c.mu.Unlock()
		return
	}
	c.task = nil
	c.taskProgress = 0
	c.mu.Unlock()

	c.bus.Emit(events.New(events.TypeDownloadCompleted, updated.ID, nil))

	if err := c.playLocal(context.Background(), updated); err != nil {
		c.logger.Error("playback failed after download", "book_id", updated.ID, "error", err)
		c.engine.ReportError(fmt.Sprintf("Could not play %q: %v", updated.Title, err))
	}
}

// setDownloadProgress records a progress fraction if it belongs to the
// live task. Reports from tasks that lost the race are dropped, and the
// fraction never regresses below the last one observers saw.
func (c *Controller) setDownloadProgress(task *downloadTask, fraction float64) {
	c.mu.Lock()
	if c.task != task || task.superseded.Load() {
		c.mu.Unlock()
		return
	}
	if fraction < c.taskProgress {
		c.mu.Unlock()
		return
	}
	c.taskProgress = fraction
	c.mu.Unlock()

	c.bus.Emit(events.New(events.TypeDownloadProgress, task.bookID, fraction))
}

// playLocal hands a local book to the engine and installs it as the
// current book.
func (c *Controller) playLocal(ctx context.Context, book *domain.Book) error {
	if err := c.engine.Play(book); err != nil {
		return fmt.Errorf("play %s: %w", book.ID, err)
	}

	index, hasChapter := 0, false
	if book.HasChapters {
		index, hasChapter = ChapterIndex(c.engine.Position(), book.Chapters)
	}

	c.mu.Lock()
	c.current = book
	c.chapterIndex = index
	c.hasChapter = hasChapter
	c.position = c.engine.Position()
	c.duration = c.engine.Duration()
	c.mu.Unlock()

	// Chapters populate asynchronously; the list may legitimately be
	// empty for a brief window after playback starts.
	if book.HasChapters && len(book.Chapters) == 0 {
		go c.loadChapters(ctx, book.ID, book.Path)
	}

	if err := c.bookmarks.Load(ctx, book); err != nil {
		c.logger.Warn("bookmark load failed", "book_id", book.ID, "error", err)
	}

	c.bus.Emit(events.New(events.TypeBookOpened, book.ID, nil))
	c.logger.Info("book opened", "book_id", book.ID, "title", book.Title)
	return nil
}

// loadChapters runs extraction off the main line of control and folds
// the result into session state if the book is still current.
func (c *Controller) loadChapters(ctx context.Context, bookID, path string) {
	chapters, err := c.extractor.Chapters(ctx, path)
	if err != nil {
		c.logger.Warn("chapter load failed", "book_id", bookID, "error", err)
		return
	}
	if len(chapters) == 0 {
		return
	}

	c.mu.Lock()
	if c.current == nil || c.current.ID != bookID {
		c.mu.Unlock()
		return
	}
	// Install on a fresh record; snapshots handed out earlier keep
	// seeing the old, unchanging one.
	refreshed := *c.current
	refreshed.Chapters = chapters
	refreshed.HasChapters = true
	c.current = &refreshed

	index, ok := ChapterIndex(c.position, chapters)
	if ok {
		c.chapterIndex = index
		c.hasChapter = true
	}
	c.mu.Unlock()

	if ok {
		c.bus.Emit(events.New(events.TypeChapterChanged, bookID, index))
	}
	c.logger.Debug("chapters loaded", "book_id", bookID, "count", len(chapters))
}

// CloseBook stops playback and clears the current book. Any in-flight
// download keeps running; it belongs to the book, not the session.
func (c *Controller) CloseBook() {
	c.mu.Lock()
	book := c.current
	c.exitDiscoverLocked()
	c.current = nil
	c.hasChapter = false
	c.chapterIndex = 0
	c.sleep.Cancel()
	c.mu.Unlock()

	if book == nil {
		return
	}

	c.engine.Stop()
	c.bookmarks.Clear()
	c.bus.Emit(events.New(events.TypeBookClosed, book.ID, nil))
}

// NextChapter seeks to the start of the following chapter. At the last
// chapter, or without chapters, it does nothing.
func (c *Controller) NextChapter() {
	c.mu.Lock()
	book := c.current
	index := c.chapterIndex
	ok := book != nil && c.hasChapter
	c.mu.Unlock()

	if !ok || index+1 >= len(book.Chapters) {
		return
	}
	c.engine.Seek(book.Chapters[index+1].Start)
}

// PreviousChapter restarts the current chapter when the playhead is more
// than three seconds into it, otherwise seeks to the previous chapter's
// start. Within the first three seconds of the first chapter there is no
// previous chapter to go to, so it does nothing.
func (c *Controller) PreviousChapter() {
	c.mu.Lock()
	book := c.current
	index := c.chapterIndex
	ok := book != nil && c.hasChapter
	c.mu.Unlock()

	if !ok {
		return
	}

	start := book.Chapters[index].Start
	if c.engine.Position()-start > previousChapterThreshold {
		c.engine.Seek(start)
		return
	}
	if index == 0 {
		return
	}
	c.engine.Seek(book.Chapters[index-1].Start)
}

// UpdateCurrentChapter recomputes the chapter index from the engine's
// current position, for callers that moved the playhead out of band.
func (c *Controller) UpdateCurrentChapter() {
	position := c.engine.Position()

	c.mu.Lock()
	book := c.current
	if book == nil || !book.HasChapters {
		c.mu.Unlock()
		return
	}

	index, ok := ChapterIndex(position, book.Chapters)
	moved := ok && (!c.hasChapter || index != c.chapterIndex)
	if ok {
		c.chapterIndex = index
		c.hasChapter = true
	}
	c.mu.Unlock()

	if moved {
		c.bus.Emit(events.New(events.TypeChapterChanged, book.ID, index))
	}
}

// DiscoverRandomBook picks a random candidate from the library, starts it
// with position saving suppressed, and after a short grace period seeks
// to a random point between 10% and 80% of the book's duration. With no
// candidates it does nothing.
func (c *Controller) DiscoverRandomBook(ctx context.Context) error {
	candidates, err := c.library.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("discover candidates: %w", err)
	}

	eligible := candidates[:0:0]
	for _, b := range candidates {
		if !b.RemoteOnly {
			eligible = append(eligible, b)
		}
	}
	if len(eligible) == 0 {
		c.logger.Debug("discover: no eligible books")
		return nil
	}

	book := eligible[c.intN(len(eligible))]

	c.mu.Lock()
	if !c.discover {
		c.discover = true
		c.engine.SetSkipPositionSave(true)
		c.bus.Emit(events.New(events.TypeDiscoverEntered, book.ID, nil))
	}
	c.mu.Unlock()

	if err := c.playLocal(ctx, book); err != nil {
		return err
	}

	// Give the engine a beat to load the file and report a real duration
	// before sampling into it.
	go c.discoverSeek(ctx, book.ID)
	return nil
}

func (c *Controller) discoverSeek(ctx context.Context, bookID string) {
	timer := time.NewTimer(c.grace)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	c.mu.Lock()
	stillCurrent := c.discover && c.current != nil && c.current.ID == bookID
	c.mu.Unlock()
	if !stillCurrent {
		return
	}

	duration := c.engine.Duration()
	if duration <= 0 {
		return
	}

	fraction := 0.1 + 0.7*c.randFloat()
	c.engine.Seek(time.Duration(fraction * float64(duration)))
}

// ExitDiscoverMode leaves discover mode: position persistence is
// restored, the engine stops, and the sampled book is cleared.
func (c *Controller) ExitDiscoverMode() {
	c.mu.Lock()
	c.exitDiscoverLocked()
	c.mu.Unlock()
}

// exitDiscoverLocked leaves discover mode. Caller holds c.mu.
func (c *Controller) exitDiscoverLocked() {
	if !c.discover {
		return
	}
	c.discover = false
	c.engine.SetSkipPositionSave(false)
	c.engine.Stop()

	bookID := ""
	if c.current != nil {
		bookID = c.current.ID
	}
	c.current = nil
	c.chapterIndex = 0
	c.hasChapter = false
	c.bookmarks.Clear()

	c.bus.Emit(events.New(events.TypeDiscoverExited, bookID, nil))
}

// StartSleepTimer arms a fixed countdown, replacing any armed timer.
func (c *Controller) StartSleepTimer(minutes int) error {
	if minutes < minSleepTimerMinutes || minutes > maxSleepTimerMinutes {
		return domainerrors.Validationf("sleep timer must be between %d and %d minutes",
			minSleepTimerMinutes, maxSleepTimerMinutes)
	}

	c.mu.Lock()
	c.sleep.StartFixed(minutes)
	bookID := c.currentIDLocked()
	c.mu.Unlock()

	c.bus.Emit(events.New(events.TypeSleepTimerStarted, bookID, minutes))
	c.logger.Info("sleep timer started", "minutes", minutes)
	return nil
}

// StartDefaultSleepTimer arms a countdown of the configured default
// length.
func (c *Controller) StartDefaultSleepTimer() error {
	return c.StartSleepTimer(c.defaultSleepMin)
}

// StartSleepTimerEndOfChapter arms the timer to pause at the next chapter
// boundary, replacing any armed timer.
func (c *Controller) StartSleepTimerEndOfChapter() {
	c.mu.Lock()
	c.sleep.StartEndOfChapter(c.chapterIndex)
	bookID := c.currentIDLocked()
	c.mu.Unlock()

	c.bus.Emit(events.New(events.TypeSleepTimerStarted, bookID, "end_of_chapter"))
	c.logger.Info("sleep timer armed for end of chapter")
}

// CancelSleepTimer disarms the sleep timer. Cancelling an idle timer does
// nothing.
func (c *Controller) CancelSleepTimer() {
	c.mu.Lock()
	wasArmed := c.sleep.State() != SleepIdle
	c.sleep.Cancel()
	bookID := c.currentIDLocked()
	c.mu.Unlock()

	if wasArmed {
		c.bus.Emit(events.New(events.TypeSleepTimerCancelled, bookID, nil))
	}
}

func (c *Controller) currentIDLocked() string {
	if c.current == nil {
		return ""
	}
	return c.current.ID
}

// TogglePlayPause flips the engine between playing and paused.
func (c *Controller) TogglePlayPause() { c.engine.TogglePlayPause() }

// Seek moves the playhead and recomputes the current chapter.
func (c *Controller) Seek(position time.Duration) {
	c.engine.Seek(position)
	c.UpdateCurrentChapter()
}

// SkipForward and SkipBackward jump by the engine's skip amounts.
func (c *Controller) SkipForward()  { c.engine.SkipForward() }
func (c *Controller) SkipBackward() { c.engine.SkipBackward() }

// SetSpeed sets the playback rate.
func (c *Controller) SetSpeed(rate float64) { c.engine.SetSpeed(rate) }

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Book             *domain.Book
	ChapterIndex     int
	ChapterName      string
	HasChapter       bool
	Position         time.Duration
	Duration         time.Duration
	Playing          bool
	Discover         bool
	SleepState       SleepState
	SleepRemaining   string
	Downloading      bool
	DownloadProgress float64
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Book:             c.current,
		ChapterIndex:     c.chapterIndex,
		HasChapter:       c.hasChapter,
		Position:         c.position,
		Duration:         c.duration,
		Playing:          c.playing,
		Discover:         c.discover,
		SleepState:       c.sleep.State(),
		SleepRemaining:   c.sleep.FormatRemaining(),
		Downloading:      c.task != nil,
		DownloadProgress: c.taskProgress,
	}
	if c.current != nil && c.hasChapter {
		snap.ChapterName = c.current.Chapters[c.chapterIndex].Title
	}
	return snap
}
