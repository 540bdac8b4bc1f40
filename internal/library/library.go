// Package library exposes the read-only view of the book collection the
// player selects from. The library owns the books; the player only holds
// a lookup handle into it.
package library

import (
	"context"
	"fmt"

	"github.com/listenupapp/listenup-player/internal/domain"
	"github.com/listenupapp/listenup-player/internal/store"
)

// Library is the collaborator the player uses for discover mode.
type Library interface {
	// Candidates returns the books eligible for random selection,
	// already filtered to exclude hidden titles.
	Candidates(ctx context.Context) ([]*domain.Book, error)
}

// StoreLibrary is a Library backed by the player's persistent store.
type StoreLibrary struct {
	store store.Store
}

// NewStoreLibrary creates a store-backed library view.
func NewStoreLibrary(s store.Store) *StoreLibrary {
	return &StoreLibrary{store: s}
}

// Candidates returns all non-hidden books in the store.
func (l *StoreLibrary) Candidates(ctx context.Context) ([]*domain.Book, error) {
	books, err := l.store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	eligible := make([]*domain.Book, 0, len(books))
	for _, book := range books {
		if book.Hidden {
			continue
		}
		eligible = append(eligible, book)
	}
	return eligible, nil
}
