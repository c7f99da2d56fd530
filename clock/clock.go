// Package clock implements the tempo-scalable playback stopwatch. Position
// is always computed from wall-clock deltas rather than accumulated
// incrementally, so repeated seeks and tempo changes cannot compound drift.
package clock

import (
	"sync"
	"time"
)

// Clock tracks elapsed musical time. Position advances at the rate of the
// tempo multiplier while running. Safe for concurrent use; every mutation
// commits the current position into the offset before changing rate or base,
// so a reader can never observe a jump or a torn offset/running pair.
type Clock struct {
	mu         sync.Mutex
	offset     float64 // seconds of musical time already accumulated
	base       time.Time
	running    bool
	multiplier float64

	now func() time.Time // stubbed in tests
}

func New() *Clock {
	return &Clock{multiplier: 1.0, now: time.Now}
}

// position assumes c.mu is held.
func (c *Clock) position() float64 {
	if !c.running {
		return c.offset
	}
	return c.offset + c.now().Sub(c.base).Seconds()*c.multiplier
}

// commit materializes the running position into the offset and restarts the
// wall-clock base. Assumes c.mu is held.
func (c *Clock) commit() {
	c.offset = c.position()
	c.base = c.now()
}

func (c *Clock) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position()
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Clock) Multiplier() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.multiplier
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	c.base = c.now()
	c.running = true
}

// Pause freezes the position at its current value. The position is snapshot
// into the offset first, so a tempo change while paused cannot corrupt the
// resumed position.
func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.commit()
	c.running = false
}

func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = 0
	c.base = c.now()
	c.running = false
}

func (c *Clock) Seek(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offset = seconds
	c.base = c.now()
}

// SetMultiplier changes the playback rate without a discontinuity in
// position. The valid range is the caller's concern.
func (c *Clock) SetMultiplier(m float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commit()
	c.multiplier = m
}
