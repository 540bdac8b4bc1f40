// Package player implements the playback session core: the session
// controller, sleep timer, chapter model, and bookmark manager.
package player

import (
	"time"

	"github.com/listenupapp/listenup-player/internal/domain"
)

// previousChapterThreshold is how far into a chapter the playhead must be
// before "previous chapter" restarts the current chapter instead of
// jumping back.
const previousChapterThreshold = 3 * time.Second

// ChapterIndex returns the index of the chapter with the greatest start
// time <= position. When position precedes the first chapter the index
// falls back to 0. Returns false when the list is empty.
//
// The list is assumed sorted ascending by start time; among chapters
// sharing a start time the later index wins.
func ChapterIndex(position time.Duration, chapters []domain.Chapter) (int, bool) {
	if len(chapters) == 0 {
		return 0, false
	}

	index := 0
	for i, ch := range chapters {
		if ch.Start <= position {
			index = i
		}
	}
	return index, true
}

// ChapterName returns the title of the chapter at the given position.
// Returns false when the list is empty.
func ChapterName(position time.Duration, chapters []domain.Chapter) (string, bool) {
	index, ok := ChapterIndex(position, chapters)
	if !ok {
		return "", false
	}
	return chapters[index].Title, true
}
