package library

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/listenup-player/internal/domain"
	"github.com/listenupapp/listenup-player/internal/store"
)

func TestStoreLibrary_Candidates(t *testing.T) {
	s, err := store.Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	ctx := context.Background()
	require.NoError(t, s.SaveBook(ctx, &domain.Book{ID: "visible-1", Title: "One"}))
	require.NoError(t, s.SaveBook(ctx, &domain.Book{ID: "visible-2", Title: "Two", RemoteOnly: true}))
	require.NoError(t, s.SaveBook(ctx, &domain.Book{ID: "hidden-1", Title: "Secret", Hidden: true}))

	lib := NewStoreLibrary(s)
	books, err := lib.Candidates(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(books))
	for _, b := range books {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{"visible-1", "visible-2"}, ids)
}

func TestStoreLibrary_CandidatesEmpty(t *testing.T) {
	s, err := store.Open(t.TempDir(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	lib := NewStoreLibrary(s)
	books, err := lib.Candidates(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}
