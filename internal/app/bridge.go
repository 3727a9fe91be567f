package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/capture"
	"github.com/jwulff/holdtalk/internal/gesture"
)

// bridge queues the controller's synchronous callbacks and toasts as
// messages. The model drains it right after each controller update.
type bridge struct {
	queue []tea.Msg
}

func (b *bridge) callbacks() capture.Callbacks {
	return capture.Callbacks{
		OnRecordingStateChange: func(recording bool) {
			b.queue = append(b.queue, RecordingStateMsg{Recording: recording})
		},
		OnRecordingComplete: func(a artifact.RecordedArtifact) {
			b.queue = append(b.queue, RecordingCompleteMsg{Artifact: a})
		},
		OnCancel: func() {
			b.queue = append(b.queue, RecordingCancelledMsg{})
		},
	}
}

func (b *bridge) ShowError(err error) {
	b.queue = append(b.queue, ToastMsg{Text: err.Error()})
}

func (b *bridge) ShowWarning(msg string) {
	b.queue = append(b.queue, ToastMsg{Text: msg, Warning: true})
}

func (b *bridge) drain() []tea.Msg {
	q := b.queue
	b.queue = nil
	return q
}

// pad is the animation state of the record button. It only ever sees damped
// offsets.
type pad struct {
	state   capture.State
	offset  gesture.Offset
	elapsed time.Duration
}

func (p *pad) Transitioned(t capture.Transition) {
	p.state = t.To
	switch t.To {
	case capture.Recording:
		p.elapsed = 0
	case capture.Locked, capture.Idle:
		// locked shows fixed send/delete controls; idle resets everything
		p.offset = gesture.Offset{}
	}
}

func (p *pad) Dragged(o gesture.Offset) {
	if p.state == capture.Locked {
		return
	}
	p.offset = o
}

func (p *pad) Ticked(elapsed time.Duration) {
	p.elapsed = elapsed
}
