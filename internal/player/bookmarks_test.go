package player

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-player/internal/domain"
	"github.com/listenupapp/listenup-player/internal/events"
	"github.com/listenupapp/listenup-player/internal/store"
)

func newBookmarkFixture(t *testing.T) (*BookmarkManager, *fakeEngine, store.Store) {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	s, err := store.Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	bus := events.NewBus(logger)
	t.Cleanup(bus.Close)

	eng := newFakeEngine()
	return NewBookmarkManager(s, eng, bus, logger), eng, s
}

func TestBookmarkManager_AddAndList(t *testing.T) {
	m, eng, _ := newBookmarkFixture(t)
	book := &domain.Book{ID: "book-1", Title: "Test Book"}
	require.NoError(t, m.Load(context.Background(), book))

	positions := []time.Duration{
		500 * time.Second,
		120500 * time.Millisecond,
		10 * time.Second,
	}
	for i, pos := range positions {
		eng.setPosition(pos)
		name := "mark"
		if pos == 120500*time.Millisecond {
			name = "intro"
		}
		bm, err := m.Add(context.Background(), AddBookmarkRequest{Name: name})
		require.NoError(t, err, "add %d", i)
		require.NotNil(t, bm)
		assert.Equal(t, pos, bm.Position)
		assert.Equal(t, "book-1", bm.BookID)
	}

	// Sorted ascending by position regardless of creation order.
	list := m.Bookmarks()
	require.Len(t, list, 3)
	assert.Equal(t, 10*time.Second, list[0].Position)
	assert.Equal(t, 120500*time.Millisecond, list[1].Position)
	assert.Equal(t, "intro", list[1].Name)
	assert.Equal(t, 500*time.Second, list[2].Position)
}

func TestBookmarkManager_AddWithoutBookIsNoOp(t *testing.T) {
	m, _, _ := newBookmarkFixture(t)

	bm, err := m.Add(context.Background(), AddBookmarkRequest{Name: "orphan"})
	require.NoError(t, err)
	assert.Nil(t, bm)
	assert.Empty(t, m.Bookmarks())
}

func TestBookmarkManager_AddValidation(t *testing.T) {
	m, _, _ := newBookmarkFixture(t)
	require.NoError(t, m.Load(context.Background(), &domain.Book{ID: "book-1"}))

	_, err := m.Add(context.Background(), AddBookmarkRequest{Name: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
}

func TestBookmarkManager_Delete(t *testing.T) {
	m, eng, _ := newBookmarkFixture(t)
	require.NoError(t, m.Load(context.Background(), &domain.Book{ID: "book-1"}))

	eng.setPosition(time.Minute)
	bm, err := m.Add(context.Background(), AddBookmarkRequest{Name: "keep"})
	require.NoError(t, err)

	eng.setPosition(2 * time.Minute)
	doomed, err := m.Add(context.Background(), AddBookmarkRequest{Name: "drop"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(context.Background(), doomed.ID))

	list := m.Bookmarks()
	require.Len(t, list, 1)
	assert.Equal(t, bm.ID, list[0].ID)
}

func TestBookmarkManager_DeleteWithoutBookIsNoOp(t *testing.T) {
	m, _, _ := newBookmarkFixture(t)
	assert.NoError(t, m.Delete(context.Background(), "bmk_whatever"))
}

func TestBookmarkManager_Jump(t *testing.T) {
	m, eng, _ := newBookmarkFixture(t)

	m.Jump(&domain.Bookmark{Position: 42 * time.Second})
	assert.Equal(t, 42*time.Second, eng.Position())
}

func TestBookmarkManager_LoadSurvivesReopen(t *testing.T) {
	m, eng, s := newBookmarkFixture(t)
	book := &domain.Book{ID: "book-1"}
	require.NoError(t, m.Load(context.Background(), book))

	eng.setPosition(30 * time.Second)
	_, err := m.Add(context.Background(), AddBookmarkRequest{Name: "persisted", Note: "check me"})
	require.NoError(t, err)

	// A fresh manager over the same store sees the bookmark.
	fresh := NewBookmarkManager(s, eng, events.NewBus(slog.New(slog.DiscardHandler)), slog.New(slog.DiscardHandler))
	require.NoError(t, fresh.Load(context.Background(), book))

	list := fresh.Bookmarks()
	require.Len(t, list, 1)
	assert.Equal(t, "persisted", list[0].Name)
	assert.Equal(t, "check me", list[0].Note)
	assert.Equal(t, 30*time.Second, list[0].Position)
}

func TestBookmarkManager_Clear(t *testing.T) {
	m, eng, _ := newBookmarkFixture(t)
	require.NoError(t, m.Load(context.Background(), &domain.Book{ID: "book-1"}))

	eng.setPosition(time.Second)
	_, err := m.Add(context.Background(), AddBookmarkRequest{Name: "gone from memory"})
	require.NoError(t, err)

	m.Clear()
	assert.Empty(t, m.Bookmarks())

	// Cleared means no current book; adds become no-ops.
	bm, err := m.Add(context.Background(), AddBookmarkRequest{Name: "after clear"})
	require.NoError(t, err)
	assert.Nil(t, bm)
}
