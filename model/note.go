package model

// NoteState is the lifecycle state of an expected note. Hit and Missed are
// terminal. Active is never written by the matcher; it exists so a renderer
// can label notes that are currently sounding without owning any state.
type NoteState uint8

const (
	NoteUpcoming NoteState = iota
	NoteActive
	NoteHit
	NoteMissed
)

func (s NoteState) String() string {
	switch s {
	case NoteUpcoming:
		return "upcoming"
	case NoteActive:
		return "active"
	case NoteHit:
		return "hit"
	case NoteMissed:
		return "missed"
	}
	return "unknown"
}

// NoteEvent is one expected note occurrence in a loaded timeline.
// Everything except State is immutable after parsing; State is owned by the
// matcher that holds the list.
type NoteEvent struct {
	Pitch    uint8
	Velocity uint8
	Start    float64 // seconds
	Duration float64 // seconds, always > 0
	State    NoteState
}

func (n *NoteEvent) End() float64 {
	return n.Start + n.Duration
}

// SoundingAt reports whether the note's nominal span covers t. Display-only
// helper for renderers inferring an Active look.
func (n *NoteEvent) SoundingAt(t float64) bool {
	return t >= n.Start && t <= n.End()
}

// NoteMessage is a normalized live instrument message. A note-on with
// velocity 0 is a note-off.
type NoteMessage struct {
	Pitch    uint8
	Velocity uint8
	NoteOn   bool
}
