// Package engine defines the port to the low-level audio engine.
//
// The player core never decodes audio itself. It drives playback through
// this narrow interface and reacts to the engine's change-notification
// stream; the concrete engine lives in the embedding application.
package engine

import (
	"time"

	"github.com/listenupapp/listenup-player/internal/domain"
)

// Change is a single entry on the engine's change-notification stream.
// The engine publishes one whenever its playback state moves (position
// advance, play/pause flip, seek, rate change).
type Change struct {
	Position time.Duration
	Duration time.Duration
	Playing  bool
}

// Engine is the audio engine port.
//
// Methods are playback primitives; implementations own their own clock
// and are responsible for delivering changes in order on the stream
// returned by Changes.
type Engine interface {
	// Play starts playback of the given book from its last position.
	Play(book *domain.Book) error

	// Pause pauses playback.
	Pause()

	// Stop stops playback and releases the current file.
	Stop()

	// TogglePlayPause flips between playing and paused.
	TogglePlayPause()

	// Seek moves the playhead to the given position.
	Seek(position time.Duration)

	// SkipForward and SkipBackward jump by the engine's configured skip amounts.
	SkipForward()
	SkipBackward()

	// SetSpeed sets the playback rate (1.0 is normal speed).
	SetSpeed(rate float64)

	// Position reports the current playhead position.
	Position() time.Duration

	// Duration reports the total duration of the loaded book,
	// or 0 while it is not yet known.
	Duration() time.Duration

	// IsPlaying reports whether the engine is currently playing.
	IsPlaying() bool

	// PlaybackRate reports the current playback rate.
	PlaybackRate() float64

	// SetSkipPositionSave tells the engine whether to suppress persisting
	// the playback position. Discover mode turns this on.
	SetSkipPositionSave(skip bool)

	// Changes returns the engine's change-notification stream.
	// The player consumes it from a single goroutine, one change at a time.
	Changes() <-chan Change

	// ReportError surfaces a human-readable error message on the engine's
	// error surface (whatever the embedding application shows the user).
	ReportError(message string)
}
