// Package engine drives the economy forward: a fixed-interval clock, the
// shared advance-by-Δt production step, offline catch-up and the session
// that serialises ticks with player actions.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Clock fires OnTick at a fixed interval until stopped.
type Clock struct {
	Interval    time.Duration // Base tick interval
	ReportEvery uint64        // Ticks between OnReport calls; 0 disables

	// Callbacks, populated during setup.
	OnTick   func(tick uint64, dt float64) // Every tick; dt is Interval in seconds
	OnReport func(tick uint64)             // Every ReportEvery ticks

	mu      sync.Mutex
	tick    uint64
	speed   float64
	running bool
	stop    chan struct{}
}

// NewClock creates a clock at real-time speed.
func NewClock(interval time.Duration) *Clock {
	return &Clock{
		Interval: interval,
		speed:    1.0,
	}
}

// Run starts the tick loop. Blocks until Stop is called.
func (c *Clock) Run() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stop = make(chan struct{})
	stop := c.stop
	c.mu.Unlock()

	slog.Info("simulation clock started", "tick", c.Tick(), "interval", c.Interval, "speed", c.Speed())

	for {
		speed := c.Speed()
		if speed <= 0 {
			// Paused.
			select {
			case <-stop:
				slog.Info("simulation clock stopped", "tick", c.Tick())
				return
			case <-time.After(100 * time.Millisecond):
			}
			continue
		}

		start := time.Now()
		c.Step()

		// Sleep for the remainder of the interval, adjusted for speed.
		wait := time.Duration(float64(c.Interval)/speed) - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-stop:
			slog.Info("simulation clock stopped", "tick", c.Tick())
			return
		case <-time.After(wait):
		}
	}
}

// Stop halts the loop. It is safe to call more than once.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.running = false
	close(c.stop)
}

// Step advances the clock by one tick.
func (c *Clock) Step() {
	c.mu.Lock()
	c.tick++
	tick := c.tick
	c.mu.Unlock()

	if c.OnTick != nil {
		c.OnTick(tick, c.Interval.Seconds())
	}
	if c.ReportEvery > 0 && tick%c.ReportEvery == 0 && c.OnReport != nil {
		c.OnReport(tick)
	}
}

// Tick returns the number of ticks processed.
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Speed returns the speed multiplier: 1.0 is real time, 0 is paused.
func (c *Clock) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetSpeed changes the speed multiplier. Negative values pause.
func (c *Clock) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = max(speed, 0)
}

// Running reports whether Run is active.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
