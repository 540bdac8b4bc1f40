// Package events implements the player's state-change notification stream.
//
// The session controller publishes here; observers (UI layers, scrobblers)
// subscribe. This stream is distinct from the audio engine's own
// change-notification stream, which only the controller consumes.
package events

import "time"

// Type represents the type of player event.
type Type string

const (
	// TypeBookOpened fires when a book becomes the current book.
	TypeBookOpened Type = "book.opened"
	// TypeBookClosed fires when the current book is cleared.
	TypeBookClosed Type = "book.closed"

	// TypeChapterChanged fires when the current chapter index moves.
	TypeChapterChanged Type = "chapter.changed"
	// TypePositionChanged fires as the playhead advances. Throttled.
	TypePositionChanged Type = "position.changed"

	// TypeDownloadProgress carries a progress fraction in [0,1]. Throttled.
	TypeDownloadProgress Type = "download.progress"
	// TypeDownloadCompleted fires when a materialization finishes.
	TypeDownloadCompleted Type = "download.completed"
	// TypeDownloadFailed fires when a download fails for any reason other
	// than a deliberate superseding request.
	TypeDownloadFailed Type = "download.failed"

	// TypeSleepTimerStarted fires when a sleep timer is armed.
	TypeSleepTimerStarted Type = "sleep_timer.started"
	// TypeSleepTimerFinished fires when the sleep timer pauses playback.
	TypeSleepTimerFinished Type = "sleep_timer.finished"
	// TypeSleepTimerCancelled fires when a sleep timer is cancelled.
	TypeSleepTimerCancelled Type = "sleep_timer.cancelled"

	// TypeBookmarkAdded fires after a bookmark is persisted.
	TypeBookmarkAdded Type = "bookmark.added"
	// TypeBookmarkDeleted fires after a bookmark is removed.
	TypeBookmarkDeleted Type = "bookmark.deleted"

	// TypeDiscoverEntered and TypeDiscoverExited bracket discover mode.
	TypeDiscoverEntered Type = "discover.entered"
	TypeDiscoverExited  Type = "discover.exited"
)

// Event is a single entry on the player's notification stream.
type Event struct {
	Type      Type      `json:"type"`
	BookID    string    `json:"book_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates an event with the current timestamp.
func New(t Type, bookID string, data any) Event {
	return Event{
		Type:      t,
		BookID:    bookID,
		Data:      data,
		Timestamp: time.Now(),
	}
}
