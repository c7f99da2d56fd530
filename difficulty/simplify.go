package difficulty

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
	"golang.org/x/exp/slices"

	"github.com/seejay/notefall/timeline"
	"github.com/seejay/notefall/util"
)

const (
	maxPolyphony = 4   // intermediate: simultaneous note cap
	minVelocity  = 40  // intermediate: quiet notes dropped below this
	melodyVelCap = 100 // beginner: velocity ceiling
)

// Simplify produces a new arrangement at the given level:
//
//	Advanced:     quantise to a 16th grid, drop zero-length artifacts
//	Intermediate: cap polyphony at 4, drop quiet notes
//	Beginner:     highest-note melody line on a quarter grid, slower tempo
func Simplify(s *smf.SMF, level Level) (*smf.SMF, error) {
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported time format %v", timeline.ErrMalformedTimeline, s.TimeFormat)
	}
	ticksPerBeat := uint64(mt)
	if ticksPerBeat == 0 {
		ticksPerBeat = 480
	}

	switch level {
	case Advanced:
		return simplifyAdvanced(s, ticksPerBeat), nil
	case Intermediate:
		return simplifyIntermediate(s, mt), nil
	case Beginner:
		return simplifyBeginner(s, ticksPerBeat, mt), nil
	}
	return nil, fmt.Errorf("unknown difficulty level %d", level)
}

// timedMsg is a message pinned to an absolute tick, used to rebuild delta
// times after filtering.
type timedMsg struct {
	tick uint64
	off  bool // note-offs sort before note-ons at the same tick
	msg  []byte
}

func rebuildTrack(msgs []timedMsg) smf.Track {
	slices.SortStableFunc(msgs, func(a, b timedMsg) bool {
		if a.tick != b.tick {
			return a.tick < b.tick
		}
		return a.off && !b.off
	})

	var track smf.Track
	var prev uint64
	for _, m := range msgs {
		track.Add(uint32(m.tick-prev), m.msg)
		prev = m.tick
	}
	track.Close(0)
	return track
}

func quantiseTick(tick, grid uint64) uint64 {
	return (tick + grid/2) / grid * grid
}

type spanNote struct {
	start, end uint64
	channel    uint8
	pitch      uint8
	velocity   uint8
}

// collectTrack splits one track into closed note spans and its tempo metas.
func collectTrack(track smf.Track) (notes []spanNote, tempos []timedMsg) {
	type open struct {
		tick     uint64
		channel  uint8
		velocity uint8
	}
	pending := make(map[uint8]open)

	var absTicks uint64
	for _, evt := range track {
		absTicks += uint64(evt.Delta)
		var channel, key, velocity uint8
		var bpm float64
		switch {
		case evt.Message.GetNoteStart(&channel, &key, &velocity):
			pending[key] = open{tick: absTicks, channel: channel, velocity: velocity}
		case evt.Message.GetNoteEnd(&channel, &key):
			p, ok := pending[key]
			if !ok {
				continue
			}
			delete(pending, key)
			notes = append(notes, spanNote{
				start: p.tick, end: absTicks,
				channel: p.channel, pitch: key, velocity: p.velocity,
			})
		case evt.Message.GetMetaTempo(&bpm):
			tempos = append(tempos, timedMsg{tick: absTicks, msg: smf.MetaTempo(bpm)})
		}
	}
	return notes, tempos
}

// simplifyAdvanced is a light cleanup of the original transcription: note
// boundaries snapped to a 16th-note grid, notes collapsing to nothing on the
// grid treated as transcription artifacts and removed.
func simplifyAdvanced(s *smf.SMF, ticksPerBeat uint64) *smf.SMF {
	grid := ticksPerBeat / 4

	out := smf.New()
	out.TimeFormat = s.TimeFormat
	for _, track := range s.Tracks {
		notes, msgs := collectTrack(track)
		for _, n := range notes {
			start := quantiseTick(n.start, grid)
			end := quantiseTick(n.end, grid)
			if end <= start {
				continue
			}
			msgs = append(msgs,
				timedMsg{tick: start, msg: midi.NoteOn(n.channel, n.pitch, n.velocity)},
				timedMsg{tick: end, off: true, msg: midi.NoteOff(n.channel, n.pitch)},
			)
		}
		out.Add(rebuildTrack(msgs))
	}
	return out
}

// simplifyIntermediate reduces density while keeping harmonic structure:
// quiet notes go, and when more than four notes would sound at once the
// lowest active one is released to make room.
func simplifyIntermediate(s *smf.SMF, mt smf.MetricTicks) *smf.SMF {
	out := smf.New()
	out.TimeFormat = mt

	for _, track := range s.Tracks {
		var msgs []timedMsg
		active := make(map[uint8]uint8) // pitch -> channel

		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var channel, key, velocity uint8
			var bpm float64
			switch {
			case evt.Message.GetNoteStart(&channel, &key, &velocity):
				if velocity < minVelocity {
					continue
				}
				if len(active) >= maxPolyphony {
					lowest := lowestActive(active)
					if key <= lowest {
						continue
					}
					msgs = append(msgs, timedMsg{tick: absTicks, off: true, msg: midi.NoteOff(active[lowest], lowest)})
					delete(active, lowest)
				}
				active[key] = channel
				msgs = append(msgs, timedMsg{tick: absTicks, msg: midi.NoteOn(channel, key, velocity)})
			case evt.Message.GetNoteEnd(&channel, &key):
				if _, ok := active[key]; !ok {
					// the matching note-on was filtered out
					continue
				}
				delete(active, key)
				msgs = append(msgs, timedMsg{tick: absTicks, off: true, msg: midi.NoteOff(channel, key)})
			case evt.Message.GetMetaTempo(&bpm):
				msgs = append(msgs, timedMsg{tick: absTicks, msg: smf.MetaTempo(bpm)})
			}
		}
		out.Add(rebuildTrack(msgs))
	}
	return out
}

func lowestActive(active map[uint8]uint8) uint8 {
	pitches := util.GetKeys(active)
	lowest := pitches[0]
	for _, p := range pitches[1:] {
		if p < lowest {
			lowest = p
		}
	}
	return lowest
}

// simplifyBeginner extracts a single melody line: the highest onset in each
// quarter-note slot, played monophonically at a quarter of the tempo less.
func simplifyBeginner(s *smf.SMF, ticksPerBeat uint64, mt smf.MetricTicks) *smf.SMF {
	grid := ticksPerBeat

	type onset struct {
		pitch    uint8
		velocity uint8
	}
	slots := make(map[uint64]onset)
	for _, track := range s.Tracks {
		var absTicks uint64
		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			var channel, key, velocity uint8
			if !evt.Message.GetNoteStart(&channel, &key, &velocity) {
				continue
			}
			slot := quantiseTick(absTicks, grid)
			if cur, ok := slots[slot]; !ok || key > cur.pitch {
				slots[slot] = onset{pitch: key, velocity: util.Min(velocity, melodyVelCap)}
			}
		}
	}

	out := smf.New()
	out.TimeFormat = mt

	// 25% slower than the source tempo
	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTempo(firstTempo(s)/1.25))
	tempoTrack.Close(0)
	out.Add(tempoTrack)

	ticks := util.GetKeys(slots)
	slices.Sort(ticks)

	var melody smf.Track
	var prev uint64
	var sounding *onset
	for _, tick := range ticks {
		next := slots[tick]
		delta := uint32(tick - prev)
		if sounding != nil {
			melody.Add(delta, midi.NoteOff(0, sounding.pitch))
			delta = 0
		}
		melody.Add(delta, midi.NoteOn(0, next.pitch, next.velocity))
		sounding = &next
		prev = tick
	}
	if sounding != nil {
		melody.Add(uint32(grid), midi.NoteOff(0, sounding.pitch))
	}
	melody.Close(0)
	out.Add(melody)

	return out
}

// firstTempo finds the BPM of the first set-tempo event, default 120.
func firstTempo(s *smf.SMF) float64 {
	for _, track := range s.Tracks {
		for _, evt := range track {
			var bpm float64
			if evt.Message.GetMetaTempo(&bpm) {
				return bpm
			}
		}
	}
	return 120
}
