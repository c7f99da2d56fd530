package timeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/model"
)

func encode(t *testing.T, s *smf.SMF) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("could not encode test file: %v", err)
	}
	return buf.Bytes()
}

func newFile(tracks ...smf.Track) *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, track := range tracks {
		s.Add(track)
	}
	return s
}

func TestParseSingleNote(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Close(0)

	notes, err := Parse(encode(t, newFile(tr)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.Equal(uint8(60), notes[0].Pitch)
	assert.Equal(uint8(100), notes[0].Velocity)
	assert.InDelta(0.0, notes[0].Start, 1e-9)
	// one beat at 120 BPM
	assert.InDelta(0.5, notes[0].Duration, 1e-9)
	assert.Equal(model.NoteUpcoming, notes[0].State)
}

func TestParseDefaultsTo120BPM(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 72, 64))
	tr.Add(960, midi.NoteOff(0, 72))
	tr.Close(0)

	notes, err := Parse(encode(t, newFile(tr)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.InDelta(1.0, notes[0].Duration, 1e-9)
}

func TestParseSortsByStartThenPitch(t *testing.T) {
	// chord added in scrambled pitch order, later note first in the file
	var tr1 smf.Track
	tr1.Add(960, midi.NoteOn(0, 48, 100))
	tr1.Add(480, midi.NoteOff(0, 48))
	tr1.Close(0)

	var tr2 smf.Track
	tr2.Add(0, midi.NoteOn(0, 67, 100))
	tr2.Add(0, midi.NoteOn(0, 60, 100))
	tr2.Add(0, midi.NoteOn(0, 64, 100))
	tr2.Add(480, midi.NoteOff(0, 67))
	tr2.Add(0, midi.NoteOff(0, 60))
	tr2.Add(0, midi.NoteOff(0, 64))
	tr2.Close(0)

	notes, err := Parse(encode(t, newFile(tr1, tr2)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 4)
	assert.Equal(uint8(60), notes[0].Pitch)
	assert.Equal(uint8(64), notes[1].Pitch)
	assert.Equal(uint8(67), notes[2].Pitch)
	assert.Equal(uint8(48), notes[3].Pitch)
	for i := 1; i < len(notes); i++ {
		assert.LessOrEqual(notes[i-1].Start, notes[i].Start)
	}
}

func TestParseRespectsTempoChangeWithinNote(t *testing.T) {
	// tempo halves one beat into a two-beat note; its second half takes
	// twice as long as a constant-tempo computation would give
	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTempo(120))
	tempoTrack.Add(480, smf.MetaTempo(60))
	tempoTrack.Close(0)

	var noteTrack smf.Track
	noteTrack.Add(0, midi.NoteOn(0, 60, 100))
	noteTrack.Add(960, midi.NoteOff(0, 60))
	noteTrack.Close(0)

	notes, err := Parse(encode(t, newFile(tempoTrack, noteTrack)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.InDelta(1.5, notes[0].Duration, 1e-9)
}

func TestParseNoteOnVelocityZeroEndsNote(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOn(0, 60, 0))
	tr.Close(0)

	notes, err := Parse(encode(t, newFile(tr)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.InDelta(0.5, notes[0].Duration, 1e-9)
}

func TestParseIgnoresUnmatchedNoteOff(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOff(0, 60))
	tr.Add(480, midi.NoteOn(0, 62, 80))
	tr.Add(480, midi.NoteOff(0, 62))
	tr.Close(0)

	notes, err := Parse(encode(t, newFile(tr)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.Equal(uint8(62), notes[0].Pitch)
}

func TestParseOverlappingNoteOnLastWins(t *testing.T) {
	// a second note-on for a still-open pitch replaces the pending note
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(240, midi.NoteOn(0, 60, 90))
	tr.Add(240, midi.NoteOff(0, 60))
	tr.Close(0)

	notes, err := Parse(encode(t, newFile(tr)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.InDelta(0.25, notes[0].Start, 1e-9)
	assert.Equal(uint8(90), notes[0].Velocity)
}

func TestParseFloorsDuration(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(0, midi.NoteOff(0, 60))
	tr.Close(0)

	notes, err := Parse(encode(t, newFile(tr)))

	assert := assert.New(t)
	assert.NoError(err)
	assert.Len(notes, 1)
	assert.Greater(notes[0].Duration, 0.0)
	assert.InDelta(constants.MinNoteDuration, notes[0].Duration, 1e-9)
}

func TestParseMalformedBytes(t *testing.T) {
	_, err := Parse([]byte("this is not a timeline"))
	assert.ErrorIs(t, err, ErrMalformedTimeline)
}

func TestParseTruncatedStream(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Close(0)
	data := encode(t, newFile(tr))

	_, err := Parse(data[:10])
	assert.ErrorIs(t, err, ErrMalformedTimeline)
}

func TestTempoMapSecondsIsMonotonic(t *testing.T) {
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(480, smf.MetaTempo(240))
	tr.Add(480, smf.MetaTempo(30))
	tr.Close(0)

	s, err := Read(encode(t, newFile(tr)))
	assert.NoError(t, err)
	tempo, err := NewTempoMap(s)
	assert.NoError(t, err)

	prev := -1.0
	for tick := uint64(0); tick <= 4800; tick += 120 {
		secs := tempo.Seconds(tick)
		assert.GreaterOrEqual(t, secs, prev, "tick %v", tick)
		prev = secs
	}
}

func TestTempoMapLastWriterPerTickWins(t *testing.T) {
	var tr1 smf.Track
	tr1.Add(0, smf.MetaTempo(120))
	tr1.Close(0)
	var tr2 smf.Track
	tr2.Add(0, smf.MetaTempo(60))
	tr2.Close(0)

	s, err := Read(encode(t, newFile(tr1, tr2)))
	assert.NoError(t, err)
	tempo, err := NewTempoMap(s)
	assert.NoError(t, err)

	// one beat at the surviving 60 BPM entry
	assert.InDelta(t, 1.0, tempo.Seconds(480), 1e-9)
}

func TestParseIsPure(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))
	tr.Close(0)
	data := encode(t, newFile(tr))

	first, err := Parse(data)
	assert.NoError(t, err)
	first[0].State = model.NoteHit

	second, err := Parse(data)
	assert.NoError(t, err)
	assert.Equal(t, model.NoteUpcoming, second[0].State)
}
