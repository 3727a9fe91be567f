package gesture

import "time"

type phase int

const (
	phaseIdle phase = iota
	phaseHolding
	phaseArmed
	// phaseDetached: pointer released while locked; the interaction continues
	// hands-free until the owner resets it.
	phaseDetached
	phaseDone
)

// Interpreter classifies a single continuous drag. It is not safe for
// concurrent use; it is driven from one event loop.
type Interpreter struct {
	cfg Config

	phase       phase
	interaction uint64
	pressedAt   time.Time
	raw         Offset
	held        time.Duration
	active      bool
	locked      bool
}

// NewInterpreter returns an idle interpreter.
func NewInterpreter(cfg Config) *Interpreter {
	return &Interpreter{cfg: cfg.WithDefaults()}
}

// Config returns the effective configuration.
func (in *Interpreter) Config() Config { return in.cfg }

// Press starts a new interaction. It returns false if one is already in
// flight; the interpreter does not re-arm until Reset.
func (in *Interpreter) Press(now time.Time) (Event, bool) {
	if in.phase != phaseIdle {
		return Event{}, false
	}
	in.interaction++
	in.phase = phaseHolding
	in.pressedAt = now
	in.raw = Offset{}
	in.held = 0
	in.active = false
	in.locked = false
	return Event{
		Kind:        HoldStarted,
		Interaction: in.interaction,
		HoldDelay:   in.cfg.HoldDelay,
	}, true
}

// Elapse reports that the hold timer for interaction id fired. Timers from
// earlier interactions, or for a press that was already released, are ignored.
func (in *Interpreter) Elapse(id uint64) []Event {
	if in.phase != phaseHolding || id != in.interaction {
		return nil
	}
	in.phase = phaseArmed
	return []Event{in.event(Armed)}
}

// Activate tells the interpreter that recording is running, which enables the
// lock check. A drag already past the lock threshold latches immediately.
func (in *Interpreter) Activate() []Event {
	if in.phase != phaseArmed {
		return nil
	}
	in.active = true
	return in.checkLock(nil)
}

// Move records the cumulative drag since the press origin.
func (in *Interpreter) Move(s Sample) []Event {
	if in.phase != phaseHolding && in.phase != phaseArmed {
		return nil
	}
	in.raw = Offset{X: s.DX, Y: s.DY}
	in.held = s.Elapsed
	events := []Event{in.event(Dragged)}
	return in.checkLock(events)
}

// Release ends the pointer gesture. Before the hold delay it is a tap. The
// cancel threshold is only evaluated here, and never for a locked interaction.
// A drag must go past a threshold; landing exactly on it does not count.
func (in *Interpreter) Release() []Event {
	switch in.phase {
	case phaseHolding:
		in.phase = phaseDone
		return []Event{in.event(Tapped)}
	case phaseArmed:
		if in.locked {
			in.phase = phaseDetached
			ev := in.event(Released)
			ev.Locked = true
			return []Event{ev}
		}
		in.phase = phaseDone
		ev := in.event(Released)
		if in.raw.X < in.cfg.CancelThreshold {
			ev.Cancel = true
			return []Event{in.event(CancelCrossed), ev}
		}
		return []Event{ev}
	}
	return nil
}

// Terminate handles an interruption from outside the gesture lifecycle. Intent
// cannot be confirmed, so it always resolves to cancel.
func (in *Interpreter) Terminate() []Event {
	switch in.phase {
	case phaseHolding, phaseArmed, phaseDetached:
		in.phase = phaseDone
		ev := in.event(Terminated)
		ev.Cancel = true
		ev.Locked = in.locked
		return []Event{ev}
	}
	return nil
}

// Reset returns to idle so the next press can start an interaction.
func (in *Interpreter) Reset() {
	in.phase = phaseIdle
	in.raw = Offset{}
	in.held = 0
	in.active = false
	in.locked = false
}

// Interaction returns the id of the current or most recent interaction.
func (in *Interpreter) Interaction() uint64 { return in.interaction }

// Locked reports whether the lock latch is set.
func (in *Interpreter) Locked() bool { return in.locked }

// Armed reports whether the hold delay elapsed for the current interaction.
func (in *Interpreter) Armed() bool {
	return in.phase == phaseArmed || in.phase == phaseDetached
}

// Idle reports whether a new press would be accepted.
func (in *Interpreter) Idle() bool { return in.phase == phaseIdle }

// Raw returns the undamped cumulative drag.
func (in *Interpreter) Raw() Offset { return in.raw }

// PressedAt returns when the current interaction started.
func (in *Interpreter) PressedAt() time.Time { return in.pressedAt }

func (in *Interpreter) checkLock(events []Event) []Event {
	if !in.active || in.locked {
		return events
	}
	if in.raw.Y < in.cfg.LockThreshold {
		in.locked = true
		events = append(events, in.event(LockCrossed))
	}
	return events
}

func (in *Interpreter) event(k Kind) Event {
	return Event{
		Kind:        k,
		Interaction: in.interaction,
		Raw:         in.raw,
		Held:        in.held,
		Damped:      Offset{X: in.raw.X * in.cfg.Damping, Y: in.raw.Y * in.cfg.Damping},
	}
}
