// Package audio plays a song's backing track. It is the playback
// collaborator of the engine: the engine itself never touches audio, it only
// exposes the clock the track is started against.
package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

type Player struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
}

func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening backing track: %w", err)
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding backing track: %w", err)
	}
	return &Player{streamer: streamer, format: format}, nil
}

// Start begins playback at the given tempo multiplier. The speaker is
// initialized at a scaled sample rate, which stretches the track to match a
// slowed or sped-up clock.
func (p *Player) Start(rate float64) error {
	sr := beep.SampleRate(math.Round(float64(p.format.SampleRate) * rate))
	if err := speaker.Init(sr, p.format.SampleRate.N(time.Second/60)); err != nil {
		return fmt.Errorf("initializing speaker: %w", err)
	}
	p.ctrl = &beep.Ctrl{Streamer: p.streamer}
	speaker.Play(p.ctrl)
	return nil
}

// SetPaused pauses or resumes the track in step with the playback clock.
func (p *Player) SetPaused(paused bool) {
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = paused
	speaker.Unlock()
}

func (p *Player) Close() error {
	return p.streamer.Close()
}
