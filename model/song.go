package model

// Song locates one playable song on disk. The catalogue fills AudioPath and
// StemPath only when the files exist.
type Song struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	BasePath  string `json:"base_path"`
	AudioPath string `json:"audio_path,omitempty"`
	StemPath  string `json:"stem_path,omitempty"`
}

// SongMetadata is the optional catalogue metadata looked up per song.
type SongMetadata struct {
	Artist  string
	Release string
	Title   string
	Year    uint
}
