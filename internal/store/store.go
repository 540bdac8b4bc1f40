// Package store defines the persistence port for the ListenUp player
// and its Badger-backed implementation.
package store

import (
	"context"
	"errors"

	"github.com/listenupapp/listenup-player/internal/domain"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a record that already exists.
	ErrAlreadyExists = errors.New("already exists")
)

// Store is the persistence port consumed by the player core.
// All operations may fail and surface as recoverable errors; callers must
// leave their in-memory state untouched on failure.
type Store interface {
	// Close releases the underlying database.
	Close() error

	// SaveBook creates or replaces a book record.
	SaveBook(ctx context.Context, book *domain.Book) error

	// GetBook retrieves a book by ID. Returns ErrNotFound if missing.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// ListBooks returns all book records.
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// DeleteBook removes a book record and its bookmarks.
	DeleteBook(ctx context.Context, id string) error

	// CreateBookmark persists a new bookmark.
	// Returns ErrAlreadyExists if the ID is already taken.
	CreateBookmark(ctx context.Context, bookmark *domain.Bookmark) error

	// DeleteBookmark removes a bookmark. Returns ErrNotFound if missing.
	DeleteBookmark(ctx context.Context, bookID, bookmarkID string) error

	// ListBookmarks returns all bookmarks for a book, in key order.
	ListBookmarks(ctx context.Context, bookID string) ([]*domain.Bookmark, error)
}
