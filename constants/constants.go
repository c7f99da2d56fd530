package constants

import (
	"os"
	"time"
)

// Ticks-per-beat assumed when the SMF header carries none.
const DefaultTicksPerBeat = 480

// 120 BPM, the implicit tempo before the first set-tempo event.
const DefaultTempoMicros = 500000

// Floor for note durations in seconds so downstream geometry never sees a
// zero-length note.
const MinNoteDuration = 0.05

// Half-width of the acceptance window around a note's start, in seconds.
const DefaultTolerance = 0.3

// Scheduler tick driving miss detection, matches a 60Hz display refresh.
const TickInterval = time.Second / 60

const MetadataTable = "notefall-metadata"

func GetMediaDir() string {
	path := os.Getenv("MEDIA_PATH")
	if path != "" {
		return path
	}
	return "./media"
}

func GetMetadataEndpoint() string {
	endpoint := os.Getenv("METADATA_ENDPOINT")
	if endpoint != "" {
		return endpoint
	}
	return "http://localhost:8000"
}
