package capture

import (
	"time"

	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/audio"
)

// PressMsg is a pointer-down on the record control.
type PressMsg struct{}

// DragMsg carries the cumulative, undamped drag from the press origin in
// pixels. Negative DX is leftward, negative DY is upward.
type DragMsg struct {
	DX float64
	DY float64
}

// ReleaseMsg is a pointer-up.
type ReleaseMsg struct{}

// TerminateMsg is an interruption from outside the gesture lifecycle.
type TerminateMsg struct{}

// SendMsg is the explicit send action offered while locked.
type SendMsg struct{}

// DeleteMsg is the explicit delete action offered while locked.
type DeleteMsg struct{}

// Results of collaborator calls. Each is tagged with the interaction it was
// issued for so late arrivals can be recognized.

type holdElapsedMsg struct{ id uint64 }

type permissionMsg struct {
	id      uint64
	granted bool
	err     error
}

type openedMsg struct {
	id     uint64
	handle audio.Handle
	err    error
}

type tickMsg struct{ gen uint64 }

type statusMsg struct {
	gen    uint64
	status audio.Status
	err    error
}

type stoppedMsg struct {
	id      uint64
	outcome Outcome
	result  audio.StopResult
	err     error
	wall    time.Duration
}

type discardedMsg struct{}

type finalizedMsg struct {
	id       uint64
	artifact artifact.RecordedArtifact
	err      error
}
