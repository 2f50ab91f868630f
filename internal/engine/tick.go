package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Engine drives a Simulation forward in real time.
type Engine struct {
	Interval time.Duration // Base tick interval at speed 1

	// Callbacks populated during setup.
	OnTick     func(tick uint64) // Every tick
	OnAutosave func(tick uint64) // Every AutosaveEvery ticks

	AutosaveEvery uint64 // 0 disables autosave

	mu      sync.Mutex
	tick    uint64
	speed   float64 // 1.0 = real time, 0 = paused
	running bool
}

// NewEngine creates an engine ticking framesPerSecond times a second.
func NewEngine(framesPerSecond int) *Engine {
	if framesPerSecond <= 0 {
		framesPerSecond = 1
	}
	return &Engine{
		Interval: time.Second / time.Duration(framesPerSecond),
		speed:    1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier. Zero pauses the engine.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = max(speed, 0)
}

// Running reports whether Run is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Tick returns the number of ticks run by this engine.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tick
}

// Run steps the simulation until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	e.mu.Lock()
	e.running = true
	e.mu.Unlock()
	slog.Info("simulation engine started", "interval", e.Interval, "speed", e.Speed())

	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
		slog.Info("simulation engine stopped", "tick", e.Tick())
	}()

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond
		if speed > 0 {
			start := time.Now()
			e.step()
			wait = max(time.Duration(float64(e.Interval)/speed)-time.Since(start), 0)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// step advances by one tick and fires the callbacks due.
func (e *Engine) step() {
	e.mu.Lock()
	e.tick++
	tick := e.tick
	e.mu.Unlock()

	if e.OnTick != nil {
		e.OnTick(tick)
	}
	if e.AutosaveEvery > 0 && tick%e.AutosaveEvery == 0 && e.OnAutosave != nil {
		e.OnAutosave(tick)
	}
}
