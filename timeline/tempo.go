package timeline

import (
	"fmt"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"

	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/util"
)

type tempoChange struct {
	tick   uint64
	micros uint32 // microseconds per beat
}

// TempoMap converts absolute ticks to seconds. It holds every set-tempo
// event found across all tracks, sorted by tick with a synthetic 120 BPM
// entry at tick 0 when the file has none.
type TempoMap struct {
	ticksPerBeat uint32
	changes      []tempoChange
}

// NewTempoMap scans every track of s for set-tempo metas. Only metric time
// formats are supported; SMPTE files are rejected.
func NewTempoMap(s *smf.SMF) (*TempoMap, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported time format %v", ErrMalformedTimeline, s.TimeFormat)
	}
	ticksPerBeat := uint32(mt)
	if ticksPerBeat == 0 {
		ticksPerBeat = constants.DefaultTicksPerBeat
	}

	// Last writer per tick wins, tempo events may sit on any track.
	byTick := make(map[uint64]uint32)
	for _, track := range s.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var bpm float64
			if evt.Message.GetMetaTempo(&bpm) && bpm > 0 {
				byTick[absTicks] = uint32(math.Round(60000000 / bpm))
			}
		}
	}
	if _, ok := byTick[0]; !ok {
		byTick[0] = constants.DefaultTempoMicros
	}

	ticks := util.GetKeys(byTick)
	slices.Sort(ticks)

	changes := make([]tempoChange, 0, len(ticks))
	for _, tick := range ticks {
		changes = append(changes, tempoChange{tick: tick, micros: byTick[tick]})
	}

	return &TempoMap{ticksPerBeat: ticksPerBeat, changes: changes}, nil
}

// Seconds converts an absolute tick to seconds, accumulating each tempo
// segment fully before the tick and the remainder under the tempo in effect
// at the tick itself.
func (m *TempoMap) Seconds(tick uint64) float64 {
	var secs float64
	for i, change := range m.changes {
		if change.tick >= tick {
			break
		}
		segmentEnd := tick
		if i+1 < len(m.changes) && m.changes[i+1].tick < tick {
			segmentEnd = m.changes[i+1].tick
		}
		deltaTicks := segmentEnd - change.tick
		secs += float64(deltaTicks) * float64(change.micros) / (float64(m.ticksPerBeat) * 1e6)
	}
	return secs
}

// TicksPerBeat is the resolution the map was built with.
func (m *TempoMap) TicksPerBeat() uint32 {
	return m.ticksPerBeat
}
