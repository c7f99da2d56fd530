// Package match scores live instrument input against a loaded timeline.
package match

import (
	"sync"

	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/model"
)

// Matcher owns exactly one note list for the life of a play-along run.
// Switching songs or difficulty levels means discarding the matcher and
// building a fresh one over a freshly loaded list.
//
// The mutex serializes the two callers that share the note states and
// counters: the periodic scheduler tick (UpdateMisses) and asynchronous
// instrument input (OnNotePlayed). Neither path blocks or performs I/O; the
// scan is linear over a song-length note count.
type Matcher struct {
	mu        sync.Mutex
	notes     []*model.NoteEvent
	tolerance float64

	hits   uint64
	misses uint64
	extras uint64
}

// New wraps a note list sorted ascending by start time, as produced by the
// timeline parser. A non-positive tolerance selects the default window.
func New(notes []*model.NoteEvent, tolerance float64) *Matcher {
	if tolerance <= 0 {
		tolerance = constants.DefaultTolerance
	}
	return &Matcher{notes: notes, tolerance: tolerance}
}

// OnNotePlayed scores one live onset at the given clock position. The first
// still-upcoming note of the same pitch whose start lies within the
// tolerance window is marked hit; the ascending scan makes the
// earliest-starting candidate win when a repeated pitch leaves several in
// range. When no candidate exists the onset counts as an extra. At most one
// note is consumed per call.
func (m *Matcher) OnNotePlayed(pitch uint8, at float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, note := range m.notes {
		if note.Start > at+m.tolerance {
			// notes are sorted by start, nothing later can be in range
			break
		}
		if note.State != model.NoteUpcoming || note.Pitch != pitch {
			continue
		}
		if at-note.Start <= m.tolerance {
			note.State = model.NoteHit
			m.hits++
			return true
		}
	}

	m.extras++
	return false
}

// UpdateMisses expires every upcoming note whose tolerance window has fully
// elapsed at the given clock position. Intended to run once per scheduler
// tick; idempotent, an already-missed note is never counted again.
func (m *Matcher) UpdateMisses(at float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, note := range m.notes {
		if note.Start+m.tolerance >= at {
			break
		}
		if note.State != model.NoteUpcoming {
			continue
		}
		note.State = model.NoteMissed
		m.misses++
	}
}

// Reset returns every note to upcoming and zeroes the counters, for
// replaying the same timeline.
func (m *Matcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, note := range m.notes {
		note.State = model.NoteUpcoming
	}
	m.hits = 0
	m.misses = 0
	m.extras = 0
}

// Session projects the current counters into a scoreboard view. The caller
// fills in the elapsed duration, which the matcher does not track.
func (m *Matcher) Session() model.PlaySession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return model.PlaySession{Hits: m.hits, Misses: m.misses, Extras: m.extras}
}

// Snapshot copies the note list with its live states, taken under the lock
// so a renderer never observes a half-applied update.
func (m *Matcher) Snapshot() []model.NoteEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	res := make([]model.NoteEvent, len(m.notes))
	for i, note := range m.notes {
		res[i] = *note
	}
	return res
}

// Tolerance is the half-width of the acceptance window in seconds.
func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}
