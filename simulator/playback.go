package simulator

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// PlaybackStatus is the controller state machine:
// Idle -> Ready -> (Playing <-> Paused) -> Finished
type PlaybackStatus int

const (
	StatusIdle     PlaybackStatus = iota // No trace loaded
	StatusReady                          // Trace loaded, cursor at 0, never advanced
	StatusPlaying                        // Timer running
	StatusPaused                         // Stopped somewhere inside the trace
	StatusFinished                       // Tried to advance past the last step, or empty trace
)

func (s PlaybackStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

func (s PlaybackStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// PlaybackState is a read-only snapshot of a controller
type PlaybackState struct {
	Status         PlaybackStatus `json:"status"`
	Cursor         int            `json:"cursor"`
	Length         int            `json:"length"`
	IsPlaying      bool           `json:"isPlaying"`
	StepIntervalMs int            `json:"stepIntervalMs"`
	StepKind       string         `json:"stepKind,omitempty"`
	Step           Step           `json:"step,omitempty"` // Step under the cursor, nil for an empty trace
}

// tickerFactory starts a periodic tick source and returns its stop func
type tickerFactory func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Controller steps through a precomputed trace. It never recomputes the
// trace; it only moves a cursor over it.
//
// At most one play timer exists per controller. Every timer carries the
// generation it was started under; Pause, Reset, Load and a new Play bump
// the generation so a tick that was already in flight is dropped instead of
// moving the cursor.
type Controller struct {
	mu             sync.Mutex
	notifyMu       sync.Mutex // Serializes OnChange so snapshots arrive in mutation order
	trace          Trace
	loaded         bool
	cursor         int
	status         PlaybackStatus
	stepIntervalMs int
	generation     uint64
	stopTimer      func()
	newTicker      tickerFactory

	// OnChange receives a snapshot after every state change. Set it before
	// the first call; it must not call back into the controller.
	OnChange func(PlaybackState)
}

// NewController creates an idle controller with the given default speed
func NewController(stepIntervalMs int) *Controller {
	if stepIntervalMs < 1 {
		stepIntervalMs = DefaultRunConfig().StepIntervalMs
	}
	return &Controller{
		status:         StatusIdle,
		stepIntervalMs: stepIntervalMs,
		newTicker:      realTicker,
	}
}

// Load replaces whatever the controller held with a new trace. The cursor
// returns to 0 and any running timer is cancelled. An empty trace is
// immediately finished.
func (c *Controller) Load(trace Trace) PlaybackState {
	return c.mutate(func() {
		c.stopTimerLocked()
		c.trace = trace
		c.loaded = true
		c.cursor = 0
		c.status = c.initialStatusLocked()
	})
}

// Next moves the cursor forward by one. Advancing from the last step
// finishes playback; after that Next is a no-op.
func (c *Controller) Next() PlaybackState {
	return c.mutate(func() {
		if c.status == StatusIdle || c.status == StatusFinished {
			return
		}
		c.advanceLocked()
		if c.status == StatusReady {
			c.status = StatusPaused
		}
	})
}

// Previous moves the cursor back by one, clamped at 0. Stepping back out of
// Finished leaves the controller paused, even when the cursor is already at
// 0 because the trace has a single step. An empty trace stays finished.
func (c *Controller) Previous() PlaybackState {
	return c.mutate(func() {
		switch {
		case c.status == StatusIdle || len(c.trace) == 0:
			return
		case c.cursor > 0:
			c.cursor--
		case c.status != StatusFinished:
			return
		}
		if c.status == StatusFinished || c.status == StatusReady {
			c.status = StatusPaused
		}
	})
}

// Play starts advancing every speedMs milliseconds. Playing while already
// playing replaces the running timer with one at the new speed. Play on an
// idle or finished controller does nothing.
func (c *Controller) Play(speedMs int) (PlaybackState, error) {
	if speedMs < 1 {
		return c.State(), ErrInvalidConfig(fmt.Sprintf("play speed must be >= 1ms, got %d", speedMs))
	}
	return c.mutate(func() {
		if c.status == StatusIdle || c.status == StatusFinished {
			return
		}
		c.stopTimerLocked()
		c.stepIntervalMs = speedMs
		c.status = StatusPlaying
		c.startTimerLocked(time.Duration(speedMs) * time.Millisecond)
	}), nil
}

// Pause stops the play timer. No-op unless playing.
func (c *Controller) Pause() PlaybackState {
	return c.mutate(func() {
		if c.status != StatusPlaying {
			return
		}
		c.stopTimerLocked()
		c.status = StatusPaused
	})
}

// Reset stops playback and returns the cursor to 0
func (c *Controller) Reset() PlaybackState {
	return c.mutate(func() {
		c.stopTimerLocked()
		c.cursor = 0
		c.status = c.initialStatusLocked()
	})
}

// Close cancels any running timer. The controller stays readable.
func (c *Controller) Close() {
	c.Pause()
}

// State returns the current snapshot
func (c *Controller) State() PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// mutate applies fn under the lock and publishes the resulting snapshot
func (c *Controller) mutate(fn func()) PlaybackState {
	return c.mutateIf(func() bool {
		fn()
		return true
	})
}

// mutateIf publishes only when fn reports that it acted
func (c *Controller) mutateIf(fn func() bool) PlaybackState {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	acted := fn()
	state := c.snapshotLocked()
	c.mu.Unlock()

	if acted && c.OnChange != nil {
		c.OnChange(state)
	}
	return state
}

func (c *Controller) initialStatusLocked() PlaybackStatus {
	switch {
	case !c.loaded:
		return StatusIdle
	case len(c.trace) == 0:
		return StatusFinished
	default:
		return StatusReady
	}
}

func (c *Controller) advanceLocked() {
	if c.cursor < len(c.trace)-1 {
		c.cursor++
		return
	}
	c.stopTimerLocked()
	c.status = StatusFinished
}

func (c *Controller) snapshotLocked() PlaybackState {
	state := PlaybackState{
		Status:         c.status,
		Cursor:         c.cursor,
		Length:         len(c.trace),
		IsPlaying:      c.status == StatusPlaying,
		StepIntervalMs: c.stepIntervalMs,
		Step:           c.trace.At(c.cursor),
	}
	if state.Step != nil {
		state.StepKind = state.Step.Kind().String()
	}
	return state
}

func (c *Controller) startTimerLocked(d time.Duration) {
	c.generation++
	gen := c.generation
	ticks, stop := c.newTicker(d)
	done := make(chan struct{})
	c.stopTimer = func() {
		stop()
		close(done)
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticks:
				c.tick(gen)
			}
		}
	}()
}

// stopTimerLocked cancels the current timer and invalidates its in-flight ticks
func (c *Controller) stopTimerLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
	c.generation++
}

func (c *Controller) tick(gen uint64) {
	c.mutateIf(func() bool {
		if gen != c.generation || c.status != StatusPlaying {
			return false
		}
		c.advanceLocked()
		return true
	})
}
