// Package domain contains the core entities for the ListenUp player.
package domain

import "time"

// Book represents an audiobook known to the player.
// The persistent store owns the record; the player holds a transient
// in-memory snapshot while a session is open.
type Book struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Author      string        `json:"author,omitempty"`
	Genre       string        `json:"genre,omitempty"`
	Year        int           `json:"year,omitempty"`
	Path        string        `json:"path"`
	Duration    time.Duration `json:"duration,format:nano"`
	CoverImage  []byte        `json:"cover_image,omitempty"`
	HasChapters bool          `json:"has_chapters"`
	Chapters    []Chapter     `json:"chapters,omitempty"`
	RemoteOnly  bool          `json:"remote_only"`
	Hidden      bool          `json:"hidden,omitempty"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Chapter represents a chapter marker within an audiobook.
// Chapter lists are ordered ascending by start time as produced by the
// extractor; the player never re-sorts them.
type Chapter struct {
	Title string        `json:"title"`
	Start time.Duration `json:"start,format:nano"`
}

// Metadata holds tag metadata extracted from an audio file.
type Metadata struct {
	Title       string
	Author      string
	Genre       string
	Year        int
	Duration    time.Duration
	CoverImage  []byte
	HasChapters bool
}

// MergeMetadata overwrites book fields from freshly extracted metadata.
// A field is only overwritten when the new value is non-empty/non-zero,
// so a re-extraction that comes back blank keeps the existing value.
func (b *Book) MergeMetadata(meta *Metadata) {
	if meta == nil {
		return
	}
	if meta.Title != "" {
		b.Title = meta.Title
	}
	if meta.Author != "" {
		b.Author = meta.Author
	}
	if meta.Genre != "" {
		b.Genre = meta.Genre
	}
	if meta.Year != 0 {
		b.Year = meta.Year
	}
	if meta.Duration != 0 {
		b.Duration = meta.Duration
	}
	if len(meta.CoverImage) > 0 {
		b.CoverImage = meta.CoverImage
	}
	if meta.HasChapters {
		b.HasChapters = true
	}
}
