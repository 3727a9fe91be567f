package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/audio"
	"github.com/jwulff/holdtalk/internal/gesture"
	"github.com/jwulff/holdtalk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

type fakeHandle struct {
	clock    *fakeClock
	openedAt time.Time
	uri      string
	stopErr  error
	// skew is added to the length the hardware reports on stop
	skew     time.Duration

	mu    sync.Mutex
	stops int
}

func (h *fakeHandle) Status(ctx context.Context) (audio.Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return audio.Status{Active: h.stops == 0, Elapsed: h.clock.now().Sub(h.openedAt)}, nil
}

func (h *fakeHandle) Stop(ctx context.Context) (audio.StopResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stops++
	if h.stops > 1 {
		return audio.StopResult{}, audio.ErrNotRecording
	}
	return audio.StopResult{Elapsed: h.clock.now().Sub(h.openedAt) + h.skew, URI: h.uri}, h.stopErr
}

type fakeRecorder struct {
	clock   *fakeClock
	dir     string
	granted bool
	permErr error
	openErr error
	stopErr error
	skew    time.Duration

	permCalls int
	handles   []*fakeHandle
}

func (r *fakeRecorder) RequestPermission(ctx context.Context) (bool, error) {
	r.permCalls++
	return r.granted, r.permErr
}

func (r *fakeRecorder) Open(ctx context.Context, opts audio.Options) (audio.Handle, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	path := filepath.Join(opts.Dir, fmt.Sprintf("rec_%d.wav", len(r.handles)))
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		return nil, err
	}
	h := &fakeHandle{clock: r.clock, openedAt: r.clock.now(), uri: path, stopErr: r.stopErr, skew: r.skew}
	r.handles = append(r.handles, h)
	return h, nil
}

type toasts struct {
	errors   []error
	warnings []string
}

func (t *toasts) ShowError(err error)    { t.errors = append(t.errors, err) }
func (t *toasts) ShowWarning(msg string) { t.warnings = append(t.warnings, msg) }

type recordingListener struct {
	transitions []Transition
	drags       []gesture.Offset
	ticks       int
}

func (l *recordingListener) Transitioned(t Transition)    { l.transitions = append(l.transitions, t) }
func (l *recordingListener) Dragged(o gesture.Offset)     { l.drags = append(l.drags, o) }
func (l *recordingListener) Ticked(elapsed time.Duration) { l.ticks++ }

type timer struct {
	due time.Time
	msg tea.Msg
}

// harness drives a Controller with a fake clock. Commands run synchronously
// unless deferCmds is set, in which case they queue until flush.
type harness struct {
	t         *testing.T
	c         *Controller
	clock     *fakeClock
	rec       *fakeRecorder
	toasts    *toasts
	listener  *recordingListener
	notesDir  string
	timers    []timer
	deferCmds bool
	queued    []tea.Cmd

	calls     []string
	artifacts []artifact.RecordedArtifact
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	root := t.TempDir()
	h := &harness{
		t:        t,
		clock:    &fakeClock{t: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)},
		toasts:   &toasts{},
		listener: &recordingListener{},
		notesDir: filepath.Join(root, "notes"),
	}
	h.rec = &fakeRecorder{clock: h.clock, granted: true}

	opts := audio.Profile(filepath.Join(root, "cache"))
	fin := artifact.NewFinalizer(storage.Local{}, h.notesDir, zap.NewNop())
	h.c = New(Config{}, h.rec, fin, opts,
		WithClock(h.clock.now),
		WithScheduler(func(d time.Duration, msg tea.Msg) tea.Cmd {
			h.timers = append(h.timers, timer{due: h.clock.now().Add(d), msg: msg})
			return nil
		}),
		WithNotifier(h.toasts),
		WithListener(h.listener),
		WithCallbacks(Callbacks{
			OnRecordingStateChange: func(rec bool) { h.calls = append(h.calls, fmt.Sprintf("recording:%v", rec)) },
			OnRecordingComplete: func(a artifact.RecordedArtifact) {
				h.calls = append(h.calls, "complete")
				h.artifacts = append(h.artifacts, a)
			},
			OnCancel: func() { h.calls = append(h.calls, "cancel") },
		}),
	)
	return h
}

func (h *harness) send(msg tea.Msg) { h.run(h.c.Update(msg)) }

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if h.deferCmds {
		h.queued = append(h.queued, cmd)
		return
	}
	h.exec(cmd)
}

func (h *harness) exec(cmd tea.Cmd) {
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.send(msg)
	}
}

// step runs the queued commands once; anything they produce queues again.
func (h *harness) step() {
	queued := h.queued
	h.queued = nil
	for _, cmd := range queued {
		h.exec(cmd)
	}
}

func (h *harness) flush() {
	h.deferCmds = false
	h.step()
}

// advance moves the clock forward, firing timers in due order.
func (h *harness) advance(d time.Duration) {
	target := h.clock.now().Add(d)
	for {
		sort.SliceStable(h.timers, func(i, j int) bool { return h.timers[i].due.Before(h.timers[j].due) })
		if len(h.timers) == 0 || h.timers[0].due.After(target) {
			break
		}
		next := h.timers[0]
		h.timers = h.timers[1:]
		h.clock.t = next.due
		h.send(next.msg)
	}
	h.clock.t = target
}

func (h *harness) assertStoppedOnce() {
	h.t.Helper()
	for i, hd := range h.rec.handles {
		assert.Equal(h.t, 1, hd.stops, "handle %d must be stopped exactly once", i)
	}
}

func TestScenarioA_QuickTap(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	assert.Equal(t, Arming, h.c.State())
	h.advance(50 * time.Millisecond)
	h.send(ReleaseMsg{})
	h.advance(time.Second)

	assert.Equal(t, Idle, h.c.State())
	assert.Zero(t, h.rec.permCalls)
	assert.Empty(t, h.rec.handles, "no session opened")
	assert.Empty(t, h.calls, "no callbacks")
	assert.Empty(t, h.toasts.warnings)
}

func TestScenarioB_HoldAndRelease(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(2000 * time.Millisecond)
	require.Equal(t, Recording, h.c.State())
	h.send(ReleaseMsg{})

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "recording:false", "complete"}, h.calls)
	require.Len(t, h.artifacts, 1)

	a := h.artifacts[0]
	assert.InDelta(t, 2000, a.DurationMs(), 250)
	assert.Equal(t, "audio/wav", a.MimeType)
	assert.Equal(t, filepath.Join(h.notesDir, a.FileName), a.URI)
	require.NotNil(t, a.FileSizeBytes)
	assert.Equal(t, int64(2048), *a.FileSizeBytes)

	_, err := os.Stat(h.rec.handles[0].uri)
	assert.True(t, os.IsNotExist(err), "transient file cleaned up")
	h.assertStoppedOnce()

	var path []State
	for _, tr := range h.listener.transitions {
		path = append(path, tr.To)
	}
	assert.Equal(t, []State{Arming, Recording, Resolving, Idle}, path)
}

func TestScenarioC_DragToCancel(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DX: -160})
	assert.Equal(t, Recording, h.c.State(), "cancel is only evaluated on release")
	h.send(ReleaseMsg{})

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "cancel", "recording:false"}, h.calls)
	assert.Empty(t, h.artifacts)
	assert.Empty(t, h.toasts.warnings)

	_, err := os.Stat(h.rec.handles[0].uri)
	assert.True(t, os.IsNotExist(err), "cancelled recording discarded")
	h.assertStoppedOnce()
}

func TestScenarioD_LockThenSend(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DY: -120})
	require.Equal(t, Locked, h.c.State())
	assert.True(t, h.c.Interaction().Locked)

	h.send(ReleaseMsg{})
	assert.Equal(t, Locked, h.c.State(), "release does not stop a locked recording")
	assert.Zero(t, h.rec.handles[0].stops)

	h.advance(500 * time.Millisecond)
	h.send(SendMsg{})

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "recording:false", "complete"}, h.calls)
	h.assertStoppedOnce()
}

func TestScenarioE_TooShort(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(500 * time.Millisecond)
	h.send(ReleaseMsg{})

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "cancel", "recording:false"}, h.calls)
	assert.Equal(t, []string{"recording too short"}, h.toasts.warnings)
	assert.Empty(t, h.toasts.errors, "too short is a warning, not an error")
	assert.Empty(t, h.artifacts)
	h.assertStoppedOnce()
}

func TestScenarioF_PermissionDenied(t *testing.T) {
	h := newHarness(t)
	h.rec.granted = false

	h.send(PressMsg{})
	h.advance(300 * time.Millisecond)

	assert.Equal(t, Idle, h.c.State())
	require.Len(t, h.toasts.errors, 1)
	assert.ErrorIs(t, h.toasts.errors[0], ErrPermissionDenied)
	assert.Empty(t, h.rec.handles, "no hardware handle created")
	assert.Empty(t, h.calls)

	// the next press asks again
	h.send(PressMsg{})
	h.advance(300 * time.Millisecond)
	assert.Equal(t, 2, h.rec.permCalls)
}

func TestPermissionRequestError(t *testing.T) {
	h := newHarness(t)
	h.rec.permErr = errors.New("prompt dismissed")

	h.send(PressMsg{})
	h.advance(300 * time.Millisecond)

	assert.Equal(t, Idle, h.c.State())
	require.Len(t, h.toasts.errors, 1)
	assert.ErrorIs(t, h.toasts.errors[0], ErrPermissionDenied)
}

func TestPermissionCachedAfterGrant(t *testing.T) {
	h := newHarness(t)

	for i := 0; i < 2; i++ {
		h.send(PressMsg{})
		h.advance(1500 * time.Millisecond)
		h.send(ReleaseMsg{})
	}
	assert.Equal(t, 1, h.rec.permCalls)
	assert.Len(t, h.artifacts, 2)
	h.assertStoppedOnce()
}

func TestOpenFailure(t *testing.T) {
	h := newHarness(t)
	h.rec.openErr = errors.New("device busy")

	h.send(PressMsg{})
	h.advance(300 * time.Millisecond)

	assert.Equal(t, Idle, h.c.State())
	require.Len(t, h.toasts.errors, 1)
	assert.ErrorIs(t, h.toasts.errors[0], ErrSessionStart)
	assert.Contains(t, h.toasts.errors[0].Error(), "device busy")
	assert.Empty(t, h.calls)

	// the controller accepts a new interaction
	h.rec.openErr = nil
	h.send(PressMsg{})
	assert.Equal(t, Arming, h.c.State())
}

func TestStopFailureStillReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	h.rec.stopErr = errors.New("session faulted")

	h.send(PressMsg{})
	h.advance(2 * time.Second)
	h.send(ReleaseMsg{})

	assert.Equal(t, Idle, h.c.State())
	require.Len(t, h.toasts.errors, 1)
	assert.ErrorIs(t, h.toasts.errors[0], ErrSessionStop)
	assert.Equal(t, []string{"recording:true", "recording:false"}, h.calls)
	assert.Empty(t, h.artifacts)
	h.assertStoppedOnce()
}

func TestLockedDelete(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DY: -150})
	h.send(ReleaseMsg{})
	h.send(DeleteMsg{})

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "cancel", "recording:false"}, h.calls)
	h.assertStoppedOnce()
}

func TestLockLatchSurvivesDragBack(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DY: -120})
	h.send(DragMsg{DY: -10})
	h.send(DragMsg{DY: 40, DX: -200})
	assert.Equal(t, Locked, h.c.State())

	h.send(ReleaseMsg{})
	assert.Equal(t, Locked, h.c.State(), "locked release ignores the cancel threshold")
}

func TestLockIgnoredBeforeRecording(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.send(DragMsg{DY: -130})
	assert.Equal(t, Arming, h.c.State())

	// the held drag latches as soon as the session opens
	h.advance(300 * time.Millisecond)
	assert.Equal(t, Locked, h.c.State())
}

func TestSendOrDeleteOutsideLockIgnored(t *testing.T) {
	h := newHarness(t)

	h.send(SendMsg{})
	h.send(DeleteMsg{})
	assert.Equal(t, Idle, h.c.State())

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(SendMsg{})
	assert.Equal(t, Recording, h.c.State())
}

func TestTerminateResolvesToCancel(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(3 * time.Second)
	h.send(TerminateMsg{})

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "cancel", "recording:false"}, h.calls)
	assert.Empty(t, h.artifacts, "interrupted gestures never complete")
	h.assertStoppedOnce()
}

func TestTerminateWhileHolding(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.send(TerminateMsg{})
	h.advance(time.Second)

	assert.Equal(t, Idle, h.c.State())
	assert.Empty(t, h.rec.handles)
	assert.Empty(t, h.calls)
}

func TestSecondPressIgnored(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	id := h.c.Interaction().ID
	h.send(PressMsg{})
	h.advance(500 * time.Millisecond)

	assert.Equal(t, id, h.c.Interaction().ID)
	assert.Len(t, h.rec.handles, 1)
	assert.Equal(t, Recording, h.c.State())
}

func TestReleaseWhilePermissionPending(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.deferCmds = true
	h.advance(200 * time.Millisecond)
	require.Len(t, h.queued, 1, "permission request in flight")
	h.send(ReleaseMsg{})
	assert.Equal(t, Arming, h.c.State())

	h.flush()

	assert.Equal(t, Idle, h.c.State())
	assert.Empty(t, h.rec.handles, "no session opened for a finished interaction")
	assert.Equal(t, []string{"recording too short"}, h.toasts.warnings)
	assert.Empty(t, h.calls)
}

func TestReleaseWhileOpenPending(t *testing.T) {
	h := newHarness(t)
	h.c.granted = true

	h.send(PressMsg{})
	h.deferCmds = true
	h.advance(200 * time.Millisecond)
	h.send(ReleaseMsg{})
	h.send(PressMsg{})

	h.flush()

	assert.Equal(t, Idle, h.c.State())
	require.Len(t, h.rec.handles, 1)
	h.assertStoppedOnce()
	assert.Equal(t, []string{"recording too short"}, h.toasts.warnings)
	assert.Empty(t, h.calls)

	_, err := os.Stat(h.rec.handles[0].uri)
	assert.True(t, os.IsNotExist(err))
}

func TestTerminateWhileOpenPendingIsSilent(t *testing.T) {
	h := newHarness(t)
	h.c.granted = true

	h.send(PressMsg{})
	h.deferCmds = true
	h.advance(200 * time.Millisecond)
	h.send(TerminateMsg{})
	h.flush()

	assert.Equal(t, Idle, h.c.State())
	h.assertStoppedOnce()
	assert.Empty(t, h.toasts.warnings)
	assert.Empty(t, h.calls)
}

func TestDurationTicksStopAfterResolve(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1200 * time.Millisecond)
	ticks := h.listener.ticks
	assert.GreaterOrEqual(t, ticks, 9)
	assert.InDelta(t, float64(time.Second), float64(h.c.Elapsed()), float64(100*time.Millisecond))

	h.send(ReleaseMsg{})
	h.advance(time.Second)
	assert.Equal(t, ticks, h.listener.ticks, "no tick after teardown")
}

func TestDampedOffsetsReachListener(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DX: -100, DY: -40})

	require.Len(t, h.listener.drags, 1)
	assert.Equal(t, gesture.Offset{X: -50, Y: -20}, h.listener.drags[0])
	assert.Equal(t, Recording, h.c.State())
}

func TestShutdownWhileRecording(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(2 * time.Second)
	h.c.Shutdown(context.Background())

	assert.Equal(t, Idle, h.c.State())
	assert.Equal(t, []string{"recording:true", "recording:false"}, h.calls)
	h.assertStoppedOnce()
	_, err := os.Stat(h.rec.handles[0].uri)
	assert.True(t, os.IsNotExist(err))

	h.send(PressMsg{})
	assert.Equal(t, Idle, h.c.State(), "no interactions after shutdown")
	h.c.Shutdown(context.Background())
	h.assertStoppedOnce()
}

func TestShutdownSwallowsStopFailure(t *testing.T) {
	h := newHarness(t)
	h.rec.stopErr = errors.New("gone")

	h.send(PressMsg{})
	h.advance(2 * time.Second)
	h.c.Shutdown(context.Background())

	assert.Equal(t, Idle, h.c.State())
	assert.Empty(t, h.toasts.errors, "no UI feedback after unmount")
	h.assertStoppedOnce()
}

func (h *harness) assertCacheEmpty() {
	h.t.Helper()
	for i, hd := range h.rec.handles {
		_, err := os.Stat(hd.uri)
		assert.True(h.t, os.IsNotExist(err), "transient file of handle %d left behind", i)
	}
}

func TestShutdownWhilePermissionPending(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.deferCmds = true
	h.advance(200 * time.Millisecond)
	require.Len(t, h.queued, 1)

	h.c.Shutdown(context.Background())
	assert.False(t, h.c.Settled(), "permission result still outstanding")

	h.flush()

	assert.Equal(t, Idle, h.c.State())
	assert.True(t, h.c.Settled())
	assert.Empty(t, h.rec.handles, "no session opened after shutdown")
	assert.Empty(t, h.calls)
	assert.Empty(t, h.toasts.warnings)
}

func TestShutdownWhileOpenPending(t *testing.T) {
	h := newHarness(t)
	h.c.granted = true

	h.send(PressMsg{})
	h.deferCmds = true
	h.advance(200 * time.Millisecond)
	require.Len(t, h.queued, 1)

	h.c.Shutdown(context.Background())
	assert.False(t, h.c.Settled(), "open result still outstanding")

	h.flush()

	assert.Equal(t, Idle, h.c.State())
	assert.True(t, h.c.Settled())
	require.Len(t, h.rec.handles, 1)
	h.assertStoppedOnce()
	h.assertCacheEmpty()
	assert.Empty(t, h.calls)
	assert.Empty(t, h.toasts.warnings)
}

func TestShutdownWhileSendResolving(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DY: -120})
	h.send(ReleaseMsg{})
	h.deferCmds = true
	h.send(SendMsg{})
	require.Equal(t, Resolving, h.c.State())

	h.c.Shutdown(context.Background())
	assert.False(t, h.c.Settled(), "stop still outstanding")

	h.flush()

	assert.True(t, h.c.Settled())
	h.assertStoppedOnce()
	h.assertCacheEmpty()
	assert.Equal(t, []string{"recording:true", "recording:false", "complete"}, h.calls,
		"a send confirmed before shutdown is still delivered")
	require.Len(t, h.artifacts, 1)
	_, err := os.Stat(h.artifacts[0].URI)
	assert.NoError(t, err)
}

func TestShutdownWhileCancelResolving(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DX: -200})
	h.deferCmds = true
	h.send(ReleaseMsg{})
	require.Equal(t, Resolving, h.c.State())

	h.c.Shutdown(context.Background())
	h.flush()

	assert.True(t, h.c.Settled())
	h.assertStoppedOnce()
	h.assertCacheEmpty()
	assert.Equal(t, []string{"recording:true", "recording:false"}, h.calls, "no cancel callback after shutdown")
	assert.Empty(t, h.toasts.warnings)
}

func TestSettledWaitsForCleanup(t *testing.T) {
	h := newHarness(t)

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.deferCmds = true
	h.send(ReleaseMsg{})
	h.flush()
	require.True(t, h.c.Settled())

	h.send(PressMsg{})
	h.advance(1500 * time.Millisecond)
	h.send(DragMsg{DX: -200})
	h.deferCmds = true
	h.send(ReleaseMsg{})
	h.step()
	assert.Equal(t, Idle, h.c.State())
	assert.False(t, h.c.Settled(), "discard still outstanding")
	h.flush()
	assert.True(t, h.c.Settled())
	h.assertCacheEmpty()
}

func TestLengthCheckUsesRecordedDuration(t *testing.T) {
	h := newHarness(t)
	h.rec.skew = -100 * time.Millisecond

	h.send(PressMsg{})
	h.advance(1250 * time.Millisecond)
	h.send(ReleaseMsg{})

	assert.Equal(t, []string{"recording too short"}, h.toasts.warnings,
		"950ms of audio is too short even though 1050ms passed on the wall clock")
	assert.Empty(t, h.artifacts)

	h.rec.skew = 100 * time.Millisecond
	h.send(PressMsg{})
	h.advance(1150 * time.Millisecond)
	h.send(ReleaseMsg{})

	require.Len(t, h.artifacts, 1, "1050ms of audio is enough even though only 950ms passed on the wall clock")
	assert.GreaterOrEqual(t, h.artifacts[0].DurationMs(), int64(1000))
	assert.Equal(t, h.c.Elapsed(), h.artifacts[0].Duration)
}

func TestErrorKinds(t *testing.T) {
	err := &Error{Kind: SessionStopFailed, Err: errors.New("boom")}
	assert.True(t, errors.Is(err, ErrSessionStop))
	assert.False(t, errors.Is(err, ErrSessionStart))
	assert.Equal(t, "failed to stop recording: boom", err.Error())
	assert.Equal(t, "recording too short", ErrTooShort.Error())
	assert.Equal(t, "SessionStopFailed", SessionStopFailed.String())
}
