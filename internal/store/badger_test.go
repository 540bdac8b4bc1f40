package store

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-player/internal/domain"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()

	s, err := Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestBadgerStore_BookRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	book := &domain.Book{
		ID:          "book-1",
		Title:       "The Stars My Destination",
		Author:      "Alfred Bester",
		Path:        "/library/stars.m4b",
		Duration:    8 * time.Hour,
		HasChapters: true,
	}

	require.NoError(t, s.SaveBook(ctx, book))

	got, err := s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, book, got)

	// Saving again replaces.
	book.Title = "Tiger! Tiger!"
	require.NoError(t, s.SaveBook(ctx, book))

	got, err = s.GetBook(ctx, "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Tiger! Tiger!", got.Title)
}

func TestBadgerStore_GetBook_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_ListBooks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBook(ctx, &domain.Book{ID: "book-a", Title: "A"}))
	require.NoError(t, s.SaveBook(ctx, &domain.Book{ID: "book-b", Title: "B"}))

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestBadgerStore_BookmarkRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bm := domain.NewBookmark("bmk-1", "book-1", 120500*time.Millisecond, "intro", "")
	require.NoError(t, s.CreateBookmark(ctx, bm))

	// Duplicate IDs are rejected.
	assert.ErrorIs(t, s.CreateBookmark(ctx, bm), ErrAlreadyExists)

	list, err := s.ListBookmarks(ctx, "book-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "intro", list[0].Name)
	assert.Equal(t, 120500*time.Millisecond, list[0].Position)

	// Bookmarks for other books are not visible.
	other, err := s.ListBookmarks(ctx, "book-2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.DeleteBookmark(ctx, "book-1", "bmk-1"))
	assert.ErrorIs(t, s.DeleteBookmark(ctx, "book-1", "bmk-1"), ErrNotFound)

	list, err = s.ListBookmarks(ctx, "book-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBadgerStore_DeleteBook_RemovesBookmarks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveBook(ctx, &domain.Book{ID: "book-1"}))
	require.NoError(t, s.CreateBookmark(ctx, domain.NewBookmark("bmk-1", "book-1", time.Minute, "one", "")))
	require.NoError(t, s.CreateBookmark(ctx, domain.NewBookmark("bmk-2", "book-1", 2*time.Minute, "two", "")))

	require.NoError(t, s.DeleteBook(ctx, "book-1"))

	_, err := s.GetBook(ctx, "book-1")
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := s.ListBookmarks(ctx, "book-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBadgerStore_ContextCancelled(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, s.SaveBook(ctx, &domain.Book{ID: "book-1"}))
	_, err := s.ListBooks(ctx)
	assert.Error(t, err)
}
