package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBook_MergeMetadata(t *testing.T) {
	tests := []struct {
		name string
		meta *Metadata
		want Book
	}{
		{
			name: "full metadata overwrites everything",
			meta: &Metadata{
				Title:       "New Title",
				Author:      "New Author",
				Genre:       "Sci-Fi",
				Year:        2021,
				Duration:    2 * time.Hour,
				CoverImage:  []byte{0x1},
				HasChapters: true,
			},
			want: Book{
				Title:       "New Title",
				Author:      "New Author",
				Genre:       "Sci-Fi",
				Year:        2021,
				Duration:    2 * time.Hour,
				CoverImage:  []byte{0x1},
				HasChapters: true,
			},
		},
		{
			name: "empty fields keep existing values",
			meta: &Metadata{Title: "New Title"},
			want: Book{
				Title:    "New Title",
				Author:   "Old Author",
				Genre:    "Fantasy",
				Year:     1999,
				Duration: time.Hour,
			},
		},
		{
			name: "nil metadata is a no-op",
			meta: nil,
			want: Book{
				Title:    "Old Title",
				Author:   "Old Author",
				Genre:    "Fantasy",
				Year:     1999,
				Duration: time.Hour,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := Book{
				Title:    "Old Title",
				Author:   "Old Author",
				Genre:    "Fantasy",
				Year:     1999,
				Duration: time.Hour,
			}
			book.MergeMetadata(tt.meta)
			assert.Equal(t, tt.want, book)
		})
	}
}

func TestNewBookmark(t *testing.T) {
	bm := NewBookmark("bmk-1", "book-1", 90*time.Second, "intro", "the good part")

	assert.Equal(t, "bmk-1", bm.ID)
	assert.Equal(t, "book-1", bm.BookID)
	assert.Equal(t, 90*time.Second, bm.Position)
	assert.Equal(t, "intro", bm.Name)
	assert.Equal(t, "the good part", bm.Note)
	assert.False(t, bm.CreatedAt.IsZero())
}
