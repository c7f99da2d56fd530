package model

// NoteView is the wire form of a timeline note with its live state.
type NoteView struct {
	Pitch    uint8   `json:"pitch"`
	Velocity uint8   `json:"velocity"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	State    string  `json:"state"`
}

type SessionResponse struct {
	SessionID string      `json:"session_id"`
	Running   bool        `json:"running"`
	Position  float64     `json:"position"`
	Tempo     float64     `json:"tempo"`
	Accuracy  float64     `json:"accuracy"`
	Session   PlaySession `json:"session"`
}

type ControlRequest struct {
	Action string  `json:"action"` // start | pause | reset | seek | tempo
	Value  float64 `json:"value,omitempty"`
}

type LoadRequest struct {
	Path  string `json:"path"`
	Level int    `json:"level"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
