package player

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/listenupapp/listenup-player/internal/domain"
	"github.com/listenupapp/listenup-player/internal/engine"
	"github.com/listenupapp/listenup-player/internal/events"
	"github.com/listenupapp/listenup-player/internal/id"
	"github.com/listenupapp/listenup-player/internal/store"
)

// BookmarkManager maintains the bookmark list for the active book.
//
// The in-memory list is reloaded from the store after every mutation
// rather than patched in place, so it can never drift from persisted
// truth; a failed save leaves the prior list untouched.
type BookmarkManager struct {
	store  store.Store
	engine engine.Engine
	bus    *events.Bus
	logger *slog.Logger

	mu        sync.Mutex
	bookID    string
	bookmarks []*domain.Bookmark
}

// NewBookmarkManager creates a new bookmark manager.
func NewBookmarkManager(s store.Store, e engine.Engine, bus *events.Bus, logger *slog.Logger) *BookmarkManager {
	return &BookmarkManager{
		store:  s,
		engine: e,
		bus:    bus,
		logger: logger,
	}
}

// AddBookmarkRequest contains the data for creating a bookmark.
type AddBookmarkRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Note string `json:"note" validate:"max=2000"`
}

// Load fetches the book's bookmark set from the store and replaces the
// in-memory list, sorted ascending by position.
func (m *BookmarkManager) Load(ctx context.Context, book *domain.Book) error {
	list, err := m.store.ListBookmarks(ctx, book.ID)
	if err != nil {
		return fmt.Errorf("load bookmarks: %w", err)
	}
	sortBookmarks(list)

	m.mu.Lock()
	m.bookID = book.ID
	m.bookmarks = list
	m.mu.Unlock()

	m.logger.Debug("loaded bookmarks",
		"book_id", book.ID,
		"count", len(list),
	)
	return nil
}

// Clear drops the in-memory list when no book is active.
func (m *BookmarkManager) Clear() {
	m.mu.Lock()
	m.bookID = ""
	m.bookmarks = nil
	m.mu.Unlock()
}

// Add creates a bookmark at the engine's current position and reloads the
// list. With no current book it is a silent no-op.
func (m *BookmarkManager) Add(ctx context.Context, req AddBookmarkRequest) (*domain.Bookmark, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	m.mu.Lock()
	bookID := m.bookID
	m.mu.Unlock()
	if bookID == "" {
		return nil, nil
	}

	bookmarkID, err := id.Generate("bmk")
	if err != nil {
		return nil, fmt.Errorf("generate bookmark ID: %w", err)
	}

	bookmark := domain.NewBookmark(bookmarkID, bookID, m.engine.Position(), req.Name, req.Note)
	if err := m.store.CreateBookmark(ctx, bookmark); err != nil {
		return nil, fmt.Errorf("store bookmark: %w", err)
	}

	if err := m.reload(ctx, bookID); err != nil {
		return nil, err
	}

	m.bus.Emit(events.New(events.TypeBookmarkAdded, bookID, bookmark))
	return bookmark, nil
}

// Delete removes a bookmark and reloads the list. With no current book it
// is a silent no-op.
func (m *BookmarkManager) Delete(ctx context.Context, bookmarkID string) error {
	m.mu.Lock()
	bookID := m.bookID
	m.mu.Unlock()
	if bookID == "" {
		return nil
	}

	if err := m.store.DeleteBookmark(ctx, bookID, bookmarkID); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}

	if err := m.reload(ctx, bookID); err != nil {
		return err
	}

	m.bus.Emit(events.New(events.TypeBookmarkDeleted, bookID, bookmarkID))
	return nil
}

// Jump seeks the engine to the bookmark's stored position.
func (m *BookmarkManager) Jump(bookmark *domain.Bookmark) {
	m.engine.Seek(bookmark.Position)
}

// Bookmarks returns a copy of the current list, sorted ascending by position.
func (m *BookmarkManager) Bookmarks() []*domain.Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Bookmark(nil), m.bookmarks...)
}

func (m *BookmarkManager) reload(ctx context.Context, bookID string) error {
	list, err := m.store.ListBookmarks(ctx, bookID)
	if err != nil {
		// Leave the prior list in place; it still matches the last
		// state we successfully read.
		return fmt.Errorf("reload bookmarks: %w", err)
	}
	sortBookmarks(list)

	m.mu.Lock()
	if m.bookID == bookID {
		m.bookmarks = list
	}
	m.mu.Unlock()
	return nil
}

func sortBookmarks(list []*domain.Bookmark) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Position < list[j].Position
	})
}
