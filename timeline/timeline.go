package timeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"

	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/model"
)

// ErrMalformedTimeline marks timeline bytes that cannot be loaded: a bad
// header, a truncated stream, or an unsupported time format. Callers surface
// it as "cannot play this song".
var ErrMalformedTimeline = errors.New("malformed timeline")

type pendingNote struct {
	tick     uint64
	velocity uint8
}

// Read parses raw SMF bytes.
func Read(data []byte) (s *smf.SMF, e error) {
	// the smf reader panics on some inputs instead of returning an error
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			e = fmt.Errorf("%w: %v", ErrMalformedTimeline, r)
		}
	}()

	res, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTimeline, err)
	}
	return res, nil
}

// ReadFile reads and parses a timeline file in full.
func ReadFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading timeline file: %w", err)
	}
	return Read(dat)
}

// Parse converts timeline bytes into the ordered note sequence: sorted
// ascending by start time, ties broken by pitch ascending. Pure function, no
// shared state across calls.
func Parse(data []byte) ([]*model.NoteEvent, error) {
	s, err := Read(data)
	if err != nil {
		return nil, err
	}
	return Extract(s)
}

// Extract pulls the note sequence out of an already-parsed SMF.
func Extract(s *smf.SMF) ([]*model.NoteEvent, error) {
	tempo, err := NewTempoMap(s)
	if err != nil {
		return nil, err
	}

	var events []*model.NoteEvent
	for _, track := range s.Tracks {
		var absTicks uint64
		// currently sounding notes within this track, keyed by pitch
		pending := make(map[uint8]pendingNote)
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var channel, key, velocity uint8
			switch {
			case evt.Message.GetNoteStart(&channel, &key, &velocity):
				// a second note-on for an open pitch overwrites the
				// pending note, last note-on wins
				pending[key] = pendingNote{tick: absTicks, velocity: velocity}
			case evt.Message.GetNoteEnd(&channel, &key):
				p, ok := pending[key]
				if !ok {
					// note-off without a matching note-on, tolerated
					continue
				}
				delete(pending, key)
				start := tempo.Seconds(p.tick)
				duration := tempo.Seconds(absTicks) - start
				if duration < constants.MinNoteDuration {
					duration = constants.MinNoteDuration
				}
				events = append(events, &model.NoteEvent{
					Pitch:    key,
					Velocity: p.velocity,
					Start:    start,
					Duration: duration,
				})
			}
		}
	}

	slices.SortStableFunc(events, func(a, b *model.NoteEvent) bool {
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.Pitch < b.Pitch
	})

	return events, nil
}
