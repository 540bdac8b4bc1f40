package player

import "fmt"

// SleepState is the sleep timer's state.
type SleepState string

const (
	// SleepIdle means no sleep timer is armed.
	SleepIdle SleepState = "idle"
	// SleepCountingDown means playback pauses when the countdown hits zero.
	SleepCountingDown SleepState = "counting_down"
	// SleepArmedEndOfChapter means playback pauses at the next chapter boundary.
	SleepArmedEndOfChapter SleepState = "end_of_chapter"
)

// SleepTimer decides when a sleep timer should pause playback.
//
// It is a plain state machine: the session controller owns it, drives
// Tick once per second, and feeds it chapter indexes on every engine
// change. It is not safe for concurrent use on its own.
type SleepTimer struct {
	state       SleepState
	remaining   int // seconds, only meaningful while counting down
	lastChapter int // chapter index recorded at the last boundary check
}

// NewSleepTimer creates an idle sleep timer.
func NewSleepTimer() *SleepTimer {
	return &SleepTimer{state: SleepIdle}
}

// StartFixed arms a countdown of the given minutes, cancelling any
// existing timer.
func (t *SleepTimer) StartFixed(minutes int) {
	t.Cancel()
	t.state = SleepCountingDown
	t.remaining = minutes * 60
}

// StartEndOfChapter arms the timer to pause at the next chapter boundary,
// cancelling any existing timer. currentChapter seeds the boundary check.
func (t *SleepTimer) StartEndOfChapter(currentChapter int) {
	t.Cancel()
	t.state = SleepArmedEndOfChapter
	t.lastChapter = currentChapter
}

// Cancel returns the timer to idle from any state.
func (t *SleepTimer) Cancel() {
	t.state = SleepIdle
	t.remaining = 0
	t.lastChapter = 0
}

// Tick advances the countdown by one second. It reports true exactly once,
// on the tick that reaches zero; the timer is then idle again.
func (t *SleepTimer) Tick() (pauseNow bool) {
	if t.state != SleepCountingDown {
		return false
	}

	t.remaining--
	if t.remaining <= 0 {
		t.Cancel()
		return true
	}
	return false
}

// CheckChapterBoundary evaluates the end-of-chapter condition for the
// chapter index computed from the latest position change. It reports true
// when the index moved forward past the one recorded at the last check;
// moving backward (a rewind) never pauses, it only re-seeds the check.
// Only called while the engine reports playing.
func (t *SleepTimer) CheckChapterBoundary(chapterIndex int) (pauseNow bool) {
	if t.state != SleepArmedEndOfChapter {
		return false
	}

	previous := t.lastChapter
	t.lastChapter = chapterIndex

	if chapterIndex != previous && chapterIndex > previous {
		t.Cancel()
		return true
	}
	return false
}

// State returns the timer's current state.
func (t *SleepTimer) State() SleepState {
	return t.state
}

// Remaining returns the seconds left in a countdown, 0 otherwise.
func (t *SleepTimer) Remaining() int {
	return t.remaining
}

// FormatRemaining renders the remaining time as M:SS. Minutes are not
// padded and there is no hour component, even past 59 minutes.
func (t *SleepTimer) FormatRemaining() string {
	return fmt.Sprintf("%d:%02d", t.remaining/60, t.remaining%60)
}
