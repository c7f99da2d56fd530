// Package difficulty rates piano arrangements and produces simplified
// versions for each playing level. It is an offline producer of the
// timelines the play-along engine consumes.
package difficulty

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/seejay/notefall/timeline"
	"github.com/seejay/notefall/util"
)

// Report summarizes the complexity metrics of an arrangement.
type Report struct {
	Level          int    // 1 (beginner) to 10 (concert)
	Label          string // human-readable
	NotesPerSecond float64
	AvgPolyphony   float64
	PitchRange     int // semitones
	MaxHandSpan    int // max interval among near-simultaneous notes
	TotalNotes     int
	DurationSecs   float64
}

func (r Report) String() string {
	return fmt.Sprintf(
		"Difficulty: %v (level %v/10)\n"+
			"  Notes/sec:      %.1f\n"+
			"  Avg polyphony:  %.1f\n"+
			"  Pitch range:    %v semitones\n"+
			"  Max hand span:  %v semitones\n"+
			"  Total notes:    %v\n"+
			"  Duration:       %.1fs",
		r.Label, r.Level, r.NotesPerSecond, r.AvgPolyphony,
		r.PitchRange, r.MaxHandSpan, r.TotalNotes, r.DurationSecs)
}

// Analyse estimates how hard an arrangement is to play, from note density,
// polyphony, pitch range and required hand span.
func Analyse(s *smf.SMF) (Report, error) {
	tempo, err := timeline.NewTempoMap(s)
	if err != nil {
		return Report{}, err
	}

	var onsets []noteOnset
	var lastTick uint64
	for _, track := range s.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			lastTick = util.Max(lastTick, absTicks)
			var channel, key, velocity uint8
			if evt.Message.GetNoteStart(&channel, &key, &velocity) {
				onsets = append(onsets, noteOnset{tick: absTicks, pitch: key})
			}
		}
	}

	duration := tempo.Seconds(lastTick)
	if len(onsets) == 0 || duration == 0 {
		return Report{Level: 1, Label: levelLabels[1], DurationSecs: duration}, nil
	}

	var lo, hi uint8 = 127, 0
	for _, o := range onsets {
		if o.pitch < lo {
			lo = o.pitch
		}
		if o.pitch > hi {
			hi = o.pitch
		}
	}

	// near-simultaneity window of roughly 50ms at 120 BPM
	window := tempo.TicksPerBeat() / 8
	buckets := make(map[uint64][]uint8)
	for _, o := range onsets {
		slot := o.tick / uint64(window)
		buckets[slot] = append(buckets[slot], o.pitch)
	}

	var polySum int
	var maxSpan int
	for _, pitches := range buckets {
		polySum += len(pitches)
		if len(pitches) > 1 {
			var bLo, bHi uint8 = 127, 0
			for _, p := range pitches {
				if p < bLo {
					bLo = p
				}
				if p > bHi {
					bHi = p
				}
			}
			if span := int(bHi - bLo); span > maxSpan {
				maxSpan = span
			}
		}
	}

	nps := float64(len(onsets)) / duration
	avgPolyphony := float64(polySum) / float64(len(buckets))
	level := estimateLevel(nps, avgPolyphony, int(hi-lo), maxSpan)

	return Report{
		Level:          level,
		Label:          levelLabels[level],
		NotesPerSecond: nps,
		AvgPolyphony:   avgPolyphony,
		PitchRange:     int(hi - lo),
		MaxHandSpan:    maxSpan,
		TotalNotes:     len(onsets),
		DurationSecs:   duration,
	}, nil
}

type noteOnset struct {
	tick  uint64
	pitch uint8
}

// estimateLevel is a rough heuristic; the boundaries come from analysis of
// graded piano repertoire.
func estimateLevel(nps, polyphony float64, pitchRange, handSpan int) int {
	var score int

	switch {
	case nps < 2:
		score += 1
	case nps < 4:
		score += 3
	case nps < 7:
		score += 5
	case nps < 10:
		score += 7
	default:
		score += 9
	}

	switch {
	case polyphony < 1.5:
		score += 1
	case polyphony < 2.5:
		score += 3
	case polyphony < 4:
		score += 5
	default:
		score += 8
	}

	switch {
	case pitchRange < 24:
		score += 1
	case pitchRange < 36:
		score += 3
	case pitchRange < 48:
		score += 5
	default:
		score += 7
	}

	switch {
	case handSpan < 8:
		score += 1
	case handSpan < 12:
		score += 3
	case handSpan < 15:
		score += 5
	default:
		score += 7
	}

	level := (score + 2) / 4
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}
	return level
}
