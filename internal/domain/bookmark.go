package domain

import "time"

// Bookmark marks a position within a book.
type Bookmark struct {
	ID        string        `json:"id"`
	BookID    string        `json:"book_id"`
	Position  time.Duration `json:"position,format:nano"`
	Name      string        `json:"name"`
	Note      string        `json:"note,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewBookmark creates a bookmark for a book at the given position.
func NewBookmark(id, bookID string, position time.Duration, name, note string) *Bookmark {
	return &Bookmark{
		ID:        id,
		BookID:    bookID,
		Position:  position,
		Name:      name,
		Note:      note,
		CreatedAt: time.Now(),
	}
}
