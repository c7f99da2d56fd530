package model

// PlaySession is the derived scoreboard view over a matcher's counters.
// It is recomputed on demand, never cached.
type PlaySession struct {
	Hits            uint64  `json:"hits"`
	Misses          uint64  `json:"misses"`
	Extras          uint64  `json:"extras"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Accuracy is hits/(hits+misses) as a percentage, 0 when nothing has been
// judged yet.
func (p PlaySession) Accuracy() float64 {
	total := p.Hits + p.Misses
	if total == 0 {
		return 0
	}
	return float64(p.Hits) / float64(total) * 100
}
