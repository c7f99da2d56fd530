package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"

	"github.com/seejay/notefall/constants"
	"github.com/seejay/notefall/model"
	"github.com/seejay/notefall/session"
	"github.com/seejay/notefall/song"
	"github.com/seejay/notefall/timeline"
)

var (
	serveAddr     string
	serveMidiPort int
	serveNoMidi   bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveMidiPort, "midi-port", 0, "MIDI input port number")
	serveCmd.Flags().BoolVar(&serveNoMidi, "no-midi", false, "run without a MIDI input device")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the play-along state API",
	Long:  `Serves the play-along state API`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

// the one live engine; replaced wholesale when a song or difficulty is
// loaded, never mutated across a switch
var (
	engineMu sync.Mutex
	engine   *session.Engine
)

func currentEngine() *session.Engine {
	engineMu.Lock()
	defer engineMu.Unlock()
	return engine
}

func setEngine(e *session.Engine) {
	engineMu.Lock()
	old := engine
	engine = e
	engineMu.Unlock()
	if old != nil {
		old.Close()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func sessionResponse(eng *session.Engine) model.SessionResponse {
	ps := eng.Session()
	return model.SessionResponse{
		SessionID: eng.ID,
		Running:   eng.Clock().Running(),
		Position:  eng.Clock().Position(),
		Tempo:     eng.Clock().Multiplier(),
		Accuracy:  ps.Accuracy(),
		Session:   ps,
	}
}

func HandleSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := song.Discover(constants.GetMediaDir())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func HandleLoad(w http.ResponseWriter, r *http.Request) {
	var req model.LoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return
	}

	s, err := song.FromDir(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	level, err := parseLevel(levelName(req.Level))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	path, err := song.TimelinePath(s, level)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	notes, err := timeline.Parse(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot load this song: "+err.Error())
		return
	}

	eng := session.New(notes, 0)
	setEngine(eng)
	log.Printf("loaded %v [%v] with %v notes as session %v", s.ID, level, len(notes), eng.ID)
	writeJSON(w, http.StatusOK, sessionResponse(eng))
}

func HandleSession(w http.ResponseWriter, r *http.Request) {
	eng := currentEngine()
	if eng == nil {
		writeError(w, http.StatusNotFound, "no session loaded")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(eng))
}

func HandleNotes(w http.ResponseWriter, r *http.Request) {
	eng := currentEngine()
	if eng == nil {
		writeError(w, http.StatusNotFound, "no session loaded")
		return
	}
	position := eng.Clock().Position()
	notes := eng.Notes()
	views := make([]model.NoteView, len(notes))
	for i, n := range notes {
		state := n.State
		if state == model.NoteUpcoming && n.SoundingAt(position) {
			state = model.NoteActive
		}
		views[i] = model.NoteView{
			Pitch:    n.Pitch,
			Velocity: n.Velocity,
			Start:    n.Start,
			Duration: n.Duration,
			State:    state.String(),
		}
	}
	writeJSON(w, http.StatusOK, views)
}

func HandleControl(w http.ResponseWriter, r *http.Request) {
	eng := currentEngine()
	if eng == nil {
		writeError(w, http.StatusNotFound, "no session loaded")
		return
	}

	var req model.ControlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "could not parse request body: "+err.Error())
		return
	}

	switch req.Action {
	case "start":
		eng.Clock().Start()
	case "pause":
		eng.Clock().Pause()
	case "reset":
		eng.Restart()
	case "seek":
		if req.Value < 0 {
			writeError(w, http.StatusBadRequest, "seek target must be non-negative")
			return
		}
		eng.Clock().Seek(req.Value)
	case "tempo":
		if req.Value < 0.25 || req.Value > 1.5 {
			writeError(w, http.StatusBadRequest, "tempo multiplier out of range [0.25, 1.5]")
			return
		}
		eng.Clock().SetMultiplier(req.Value)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse(eng))
}

func levelName(level int) string {
	switch level {
	case 1:
		return "beginner"
	case 2:
		return "intermediate"
	case 3:
		return "advanced"
	}
	return fmt.Sprintf("level %v", level)
}

func listenMidi() error {
	in, err := midi.InPort(serveMidiPort)
	if err != nil {
		return err
	}

	// burst of input settles before the session line is logged
	logSettle := debounce.New(500 * time.Millisecond)

	_, err = midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var channel, key, velocity uint8
		if !msg.GetNoteStart(&channel, &key, &velocity) {
			return
		}
		eng := currentEngine()
		if eng == nil {
			return
		}
		eng.HandleInput(model.NoteMessage{Pitch: key, Velocity: velocity, NoteOn: true})
		logSettle(func() {
			ps := eng.Session()
			log.Printf("session %v: hits=%v misses=%v extras=%v accuracy=%.1f%%",
				eng.ID, ps.Hits, ps.Misses, ps.Extras, ps.Accuracy())
		})
	})
	return err
}

func serve() error {
	if !serveNoMidi {
		defer midi.CloseDriver()
		if err := listenMidi(); err != nil {
			log.Println("MIDI input unavailable, running without live input:", err)
		}
	}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/songs", HandleSongs).Methods("GET")
	router.HandleFunc("/load", HandleLoad).Methods("POST")
	router.HandleFunc("/session", HandleSession).Methods("GET")
	router.HandleFunc("/notes", HandleNotes).Methods("GET")
	router.HandleFunc("/control", HandleControl).Methods("POST")

	log.Printf("listening on %v", serveAddr)
	return http.ListenAndServe(serveAddr, cors.Default().Handler(router))
}
