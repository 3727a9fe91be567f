// Package feedback turns capture transitions into tactile feedback.
package feedback

import (
	"io"
	"sync"
	"time"

	"github.com/jwulff/holdtalk/internal/capture"
)

// Pulse lengths.
const (
	StartPulse = 30 * time.Millisecond
	LockPulse  = 50 * time.Millisecond
)

// Pulser fires a fire-and-forget pulse.
type Pulser interface {
	Pulse(d time.Duration)
}

// Haptics pulses when a recording starts and when it locks.
type Haptics struct {
	capture.NopListener
	pulser Pulser
}

func NewHaptics(p Pulser) *Haptics {
	return &Haptics{pulser: p}
}

func (h *Haptics) Transitioned(t capture.Transition) {
	switch {
	case t.From == capture.Arming && t.To == capture.Recording:
		h.pulser.Pulse(StartPulse)
	case t.To == capture.Locked:
		h.pulser.Pulse(LockPulse)
	}
}

// Bell is the terminal's closest thing to a vibration motor: it rings the
// bell on w. Durations are ignored.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Pulse(time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	// write errors are irrelevant for a bell
	_, _ = io.WriteString(b.w, "\a")
}
