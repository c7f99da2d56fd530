// Package session ties one loaded timeline to a clock and a matcher for a
// single play-along run.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seejay/notefall/clock"
	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/match"
	"github.com/seejay/notefall/model"
)

// Engine drives one play-along run. A scheduler goroutine ticks at the
// display refresh rate and expires missed notes against the clock position;
// live input is scored through HandleInput. Switching songs or difficulty
// levels discards the engine outright: a closed engine drops in-flight input
// instead of merging it into a successor's session.
type Engine struct {
	ID string

	clk     *clock.Clock
	matcher *match.Matcher

	done      chan struct{}
	closeOnce sync.Once
}

// New builds an engine over a freshly loaded note list and starts its
// scheduler goroutine. A non-positive tolerance selects the default window.
func New(notes []*model.NoteEvent, tolerance float64) *Engine {
	e := &Engine{
		ID:      uuid.New().String(),
		clk:     clock.New(),
		matcher: match.New(notes, tolerance),
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	ticker := time.NewTicker(constants.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.matcher.UpdateMisses(e.clk.Position())
		}
	}
}

// HandleInput scores one live instrument message. Only note onsets are
// scored; note-offs and velocity-0 note-ons are ignored. Returns whether the
// onset hit an expected note.
func (e *Engine) HandleInput(msg model.NoteMessage) bool {
	if e.Closed() || !msg.NoteOn || msg.Velocity == 0 {
		return false
	}
	return e.matcher.OnNotePlayed(msg.Pitch, e.clk.Position())
}

// Close stops the scheduler and invalidates the engine. Safe to call more
// than once.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.clk.Pause()
	})
}

func (e *Engine) Closed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Clock is the control surface for start/pause/seek/tempo.
func (e *Engine) Clock() *clock.Clock {
	return e.clk
}

// Notes is the ordered note sequence with live lifecycle states.
func (e *Engine) Notes() []model.NoteEvent {
	return e.matcher.Snapshot()
}

// Restart rewinds for a replay of the same timeline: every note back to
// upcoming, counters zeroed, clock at zero and paused.
func (e *Engine) Restart() {
	e.clk.Reset()
	e.matcher.Reset()
}

// Session is the scoreboard view, with the elapsed duration filled in from
// the clock.
func (e *Engine) Session() model.PlaySession {
	s := e.matcher.Session()
	s.DurationSeconds = e.clk.Position()
	return s
}
