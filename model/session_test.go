package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	assert.InDelta(t, 50.0, PlaySession{Hits: 1, Misses: 1}.Accuracy(), 1e-9)
	assert.InDelta(t, 100.0, PlaySession{Hits: 7}.Accuracy(), 1e-9)
	assert.InDelta(t, 0.0, PlaySession{Misses: 3}.Accuracy(), 1e-9)
}

func TestAccuracyWithNoScoredNotes(t *testing.T) {
	assert.InDelta(t, 0.0, PlaySession{Extras: 5}.Accuracy(), 1e-9)
	assert.InDelta(t, 0.0, PlaySession{}.Accuracy(), 1e-9)
}

func TestNoteEventSoundingAt(t *testing.T) {
	n := NoteEvent{Pitch: 60, Start: 1.0, Duration: 0.5}

	assert := assert.New(t)
	assert.InDelta(1.5, n.End(), 1e-9)
	assert.False(n.SoundingAt(0.9))
	assert.True(n.SoundingAt(1.0))
	assert.True(n.SoundingAt(1.4))
	assert.False(n.SoundingAt(1.6))
}
