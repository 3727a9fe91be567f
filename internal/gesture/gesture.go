// Package gesture turns a raw press/drag/release pointer stream into the
// discrete events that drive a hold-to-record interaction. It owns no timers
// and no recording logic; the caller schedules the hold timer and reports back
// through Elapse.
package gesture

import "time"

// Defaults used when a Config field is left zero.
const (
	DefaultHoldDelay       = 200 * time.Millisecond
	DefaultLockThreshold   = -100.0
	DefaultCancelThreshold = -140.0
	DefaultDamping         = 0.5
)

// Config holds the directional pixel-space thresholds for one deployment.
type Config struct {
	HoldDelay time.Duration
	// LockThreshold is a negative vertical offset (upward drag).
	LockThreshold float64
	// CancelThreshold is a negative horizontal offset (leftward drag).
	CancelThreshold float64
	// Damping scales drag offsets sent to the animation layer only.
	Damping float64
}

// WithDefaults fills zero fields with the package defaults.
func (c Config) WithDefaults() Config {
	if c.HoldDelay <= 0 {
		c.HoldDelay = DefaultHoldDelay
	}
	if c.LockThreshold == 0 {
		c.LockThreshold = DefaultLockThreshold
	}
	if c.CancelThreshold == 0 {
		c.CancelThreshold = DefaultCancelThreshold
	}
	if c.Damping <= 0 || c.Damping > 1 {
		c.Damping = DefaultDamping
	}
	return c
}

// Sample is one pointer-move reading, cumulative from the press origin.
// Elapsed is the time since the press.
type Sample struct {
	DX      float64
	DY      float64
	Elapsed time.Duration
}

// Offset is a drag position in pixel space.
type Offset struct {
	X float64
	Y float64
}

// Kind identifies a gesture event.
type Kind int

const (
	HoldStarted Kind = iota
	Armed
	Dragged
	LockCrossed
	CancelCrossed
	Released
	Tapped
	Terminated
)

func (k Kind) String() string {
	switch k {
	case HoldStarted:
		return "holdStarted"
	case Armed:
		return "armed"
	case Dragged:
		return "dragged"
	case LockCrossed:
		return "lockCrossed"
	case CancelCrossed:
		return "cancelCrossed"
	case Released:
		return "released"
	case Tapped:
		return "tapped"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Event is emitted by the Interpreter.
type Event struct {
	Kind        Kind
	Interaction uint64

	// Raw is the undamped drag used for every threshold comparison.
	Raw Offset
	// Damped is Raw scaled for the animation layer.
	Damped Offset
	// Held is the time since the press as of the latest drag sample.
	Held time.Duration

	// HoldDelay is set on HoldStarted so the caller can schedule the timer.
	HoldDelay time.Duration

	// Set on Released.
	Cancel bool
	Locked bool
}
