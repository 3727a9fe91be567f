package capture

import (
	"time"

	"github.com/jwulff/holdtalk/internal/gesture"
)

// State is the controller's position in the capture lifecycle.
type State int

const (
	Idle State = iota
	Arming
	Recording
	Locked
	Resolving
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Arming:
		return "arming"
	case Recording:
		return "recording"
	case Locked:
		return "locked"
	case Resolving:
		return "resolving"
	default:
		return "unknown"
	}
}

// Outcome is how a recording is resolved.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeComplete
	OutcomeCancel
	OutcomeReject
	// OutcomeAbort: the interaction ended before the session finished
	// opening. The session is closed and discarded with no callbacks.
	OutcomeAbort
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomeCancel:
		return "cancel"
	case OutcomeReject:
		return "reject"
	case OutcomeAbort:
		return "abort"
	default:
		return "none"
	}
}

// InteractionContext lives for one press-to-release cycle and is replaced on
// every Idle to Arming transition.
type InteractionContext struct {
	ID        uint64
	StartedAt time.Time
	Armed     bool
	Locked    bool
}

// Transition is published to listeners on every state change.
type Transition struct {
	From        State
	To          State
	Outcome     Outcome
	Interaction uint64
	At          time.Time
}

// Listener observes the controller without feeding anything back. Animation
// and haptics subscribe here.
type Listener interface {
	Transitioned(t Transition)
	// Dragged receives damped offsets, for display only.
	Dragged(offset gesture.Offset)
	Ticked(elapsed time.Duration)
}

// NopListener can be embedded to implement only part of Listener.
type NopListener struct{}

func (NopListener) Transitioned(Transition) {}
func (NopListener) Dragged(gesture.Offset)  {}
func (NopListener) Ticked(time.Duration)    {}
