package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/seejay/notefall/audio"
	"github.com/seejay/notefall/difficulty"
	"github.com/seejay/notefall/model"
	"github.com/seejay/notefall/session"
	"github.com/seejay/notefall/song"
	"github.com/seejay/notefall/timeline"
)

var (
	playLevel     string
	playPort      int
	playTempo     float64
	playTolerance float64
	playNoAudio   bool
)

func init() {
	playCmd.Flags().StringVarP(&playLevel, "level", "l", "advanced", "difficulty level (beginner|intermediate|advanced)")
	playCmd.Flags().IntVarP(&playPort, "port", "p", 0, "MIDI input port number")
	playCmd.Flags().Float64VarP(&playTempo, "tempo", "t", 1.0, "tempo multiplier (0.25-1.5)")
	playCmd.Flags().Float64Var(&playTolerance, "tolerance", 0, "hit window half-width in seconds (0 for default)")
	playCmd.Flags().BoolVar(&playNoAudio, "no-audio", false, "skip the backing track")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play <song dir>",
	Short: "Plays along with a song",
	Long:  `Plays along with a song`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return play(args[0])
	},
}

func parseLevel(s string) (difficulty.Level, error) {
	for _, level := range difficulty.Levels() {
		if s == level.String() {
			return level, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty level %q", s)
}

func play(dir string) error {
	if playTempo < 0.25 || playTempo > 1.5 {
		return fmt.Errorf("tempo multiplier %v out of range [0.25, 1.5]", playTempo)
	}

	s, err := song.FromDir(dir)
	if err != nil {
		return err
	}
	level, err := parseLevel(playLevel)
	if err != nil {
		return err
	}
	path, err := song.TimelinePath(s, level)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	notes, err := timeline.Parse(data)
	if err != nil {
		return fmt.Errorf("cannot load this song: %w", err)
	}
	if len(notes) == 0 {
		return fmt.Errorf("timeline %v has no notes", path)
	}

	printSongHeader(s, level, len(notes))

	eng := session.New(notes, playTolerance)
	defer eng.Close()
	eng.Clock().SetMultiplier(playTempo)

	defer midi.CloseDriver()
	in, err := midi.InPort(playPort)
	if err != nil {
		return fmt.Errorf("opening MIDI input port %v: %w", playPort, err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var channel, key, velocity uint8
		if msg.GetNoteStart(&channel, &key, &velocity) {
			eng.HandleInput(model.NoteMessage{Pitch: key, Velocity: velocity, NoteOn: true})
		}
		// note-offs are not scored
	})
	if err != nil {
		return fmt.Errorf("listening on MIDI input: %w", err)
	}
	defer stop()

	if !playNoAudio && s.AudioPath != "" {
		player, err := audio.Open(s.AudioPath)
		if err != nil {
			log.Println("backing track unavailable:", err)
		} else {
			defer player.Close()
			if err := player.Start(playTempo); err != nil {
				log.Println("backing track unavailable:", err)
			}
		}
	}

	eng.Clock().Start()
	waitForEnd(eng, notes[len(notes)-1].End())

	printScoreboard(eng.Session())
	return nil
}

// waitForEnd blocks until the clock has passed the last note's window with
// some slack, or the user interrupts.
func waitForEnd(eng *session.Engine, lastEnd float64) {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			return
		case <-ticker.C:
			if eng.Clock().Position() > lastEnd+2.0 {
				return
			}
		}
	}
}

func printSongHeader(s model.Song, level difficulty.Level, noteCount int) {
	title := s.Title
	if meta, err := song.Metadata([]string{s.ID}); err == nil {
		if m, ok := meta[s.ID]; ok {
			title = fmt.Sprintf("%v - %v (%v)", m.Artist, m.Title, m.Year)
		}
	}
	fmt.Printf("%v [%v, %v notes]\n", title, level, noteCount)
}

func printScoreboard(ps model.PlaySession) {
	fmt.Printf("\n")
	fmt.Printf("    Hits:  %6v\n", ps.Hits)
	fmt.Printf("  Misses:  %6v\n", ps.Misses)
	fmt.Printf("  Extras:  %6v\n", ps.Extras)
	fmt.Printf("Accuracy:  %5.1f%%\n", ps.Accuracy())
	fmt.Printf("    Time:  %6.1fs\n", ps.DurationSeconds)
}
