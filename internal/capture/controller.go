// Package capture implements the hold-to-record session controller. It is a
// bubbletea-style state machine: pointer and action messages go into Update,
// hardware and storage calls come back out as tea.Cmds whose results are fed
// into Update again. All state lives on the Controller and is only touched
// from Update, so nothing read inside a command can go stale.
package capture

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/audio"
	"github.com/jwulff/holdtalk/internal/gesture"
	"go.uber.org/zap"
)

// Defaults used when a Config field is left zero.
const (
	DefaultMinDuration  = time.Second
	DefaultTickInterval = 100 * time.Millisecond
	DefaultCallTimeout  = 5 * time.Second
)

// Config tunes the controller.
type Config struct {
	Gesture      gesture.Config
	MinDuration  time.Duration
	TickInterval time.Duration
	// CallTimeout bounds each permission, open, status and stop call.
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	c.Gesture = c.Gesture.WithDefaults()
	if c.MinDuration <= 0 {
		c.MinDuration = DefaultMinDuration
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	return c
}

// Callbacks are synchronous notifications to the surrounding UI. Each fires at
// most once per interaction.
type Callbacks struct {
	OnRecordingStateChange func(recording bool)
	OnRecordingComplete    func(a artifact.RecordedArtifact)
	OnCancel               func()
}

// Notifier is the user-visible toast surface.
type Notifier interface {
	ShowError(err error)
	ShowWarning(msg string)
}

type nopNotifier struct{}

func (nopNotifier) ShowError(error)    {}
func (nopNotifier) ShowWarning(string) {}

// Scheduler turns a delay into a command that delivers msg afterwards.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

func tickScheduler(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// Option configures a Controller.
type Option func(*Controller)

func WithLogger(l *zap.Logger) Option       { return func(c *Controller) { c.logger = l.Named("capture") } }
func WithCallbacks(cb Callbacks) Option     { return func(c *Controller) { c.callbacks = cb } }
func WithNotifier(n Notifier) Option        { return func(c *Controller) { c.notifier = n } }
func WithListener(l Listener) Option        { return func(c *Controller) { c.listeners = append(c.listeners, l) } }
func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }
func WithScheduler(s Scheduler) Option      { return func(c *Controller) { c.schedule = s } }

// WithContext sets the parent context for collaborator calls.
func WithContext(ctx context.Context) Option { return func(c *Controller) { c.ctx = ctx } }

// pending records a release or interruption that arrived while the session
// was still being opened.
type pending int

const (
	pendingNone pending = iota
	pendingTooShort
	pendingCancel
	pendingSilent
)

// Controller owns the recording state machine and the single RecordingHandle.
type Controller struct {
	cfg       Config
	recorder  audio.Recorder
	finalizer *artifact.Finalizer
	opts      audio.Options
	gesture   *gesture.Interpreter

	logger    *zap.Logger
	callbacks Callbacks
	notifier  Notifier
	listeners []Listener
	now       func() time.Time
	schedule  Scheduler
	ctx       context.Context

	state       State
	interaction InteractionContext
	handle      audio.Handle
	recordStart time.Time
	elapsed     time.Duration
	tickGen     uint64
	granted     bool
	inflight    bool
	pending     pending
	notified    bool
	closed      bool
	// outstanding counts stop, discard and finalize commands whose result
	// has not come back yet.
	outstanding int
}

// New returns an idle controller.
func New(cfg Config, rec audio.Recorder, fin *artifact.Finalizer, opts audio.Options, options ...Option) *Controller {
	cfg = cfg.withDefaults()
	c := &Controller{
		cfg:       cfg,
		recorder:  rec,
		finalizer: fin,
		opts:      opts,
		gesture:   gesture.NewInterpreter(cfg.Gesture),
		logger:    zap.NewNop(),
		notifier:  nopNotifier{},
		now:       time.Now,
		schedule:  tickScheduler,
		ctx:       context.Background(),
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Interaction returns the current interaction context.
func (c *Controller) Interaction() InteractionContext { return c.interaction }

// Elapsed returns the last measured recording duration.
func (c *Controller) Elapsed() time.Duration { return c.elapsed }

// Config returns the effective configuration.
func (c *Controller) Config() Config { return c.cfg }

// Settled reports whether the controller is idle with no session, stop,
// discard or finalization still in flight. After Shutdown the host must keep
// delivering messages until Settled is true, or in-flight sessions leak.
func (c *Controller) Settled() bool {
	return c.state == Idle && c.outstanding == 0
}

// Update applies msg and returns any follow-up work.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PressMsg:
		return c.press()
	case DragMsg:
		c.drag(msg)
		return nil
	case ReleaseMsg:
		return c.release()
	case TerminateMsg:
		return c.terminate()
	case SendMsg:
		if c.state == Locked {
			return c.resolve(OutcomeComplete)
		}
	case DeleteMsg:
		if c.state == Locked {
			return c.resolve(OutcomeCancel)
		}
	case holdElapsedMsg:
		return c.armed(msg.id)
	case permissionMsg:
		return c.permissionResult(msg)
	case openedMsg:
		return c.opened(msg)
	case tickMsg:
		return c.tick(msg)
	case statusMsg:
		return c.status(msg)
	case stoppedMsg:
		return c.stopped(msg)
	case finalizedMsg:
		c.finalized(msg)
	case discardedMsg:
		c.outstanding--
	}
	return nil
}

func (c *Controller) press() tea.Cmd {
	if c.closed || c.state != Idle {
		return nil
	}
	now := c.now()
	ev, ok := c.gesture.Press(now)
	if !ok {
		return nil
	}
	c.interaction = InteractionContext{ID: ev.Interaction, StartedAt: now}
	c.pending = pendingNone
	c.elapsed = 0
	c.transition(Arming, OutcomeNone)
	return c.schedule(ev.HoldDelay, holdElapsedMsg{id: ev.Interaction})
}

func (c *Controller) drag(msg DragMsg) {
	switch c.state {
	case Arming, Recording, Locked:
	default:
		return
	}
	events := c.gesture.Move(gesture.Sample{
		DX:      msg.DX,
		DY:      msg.DY,
		Elapsed: c.now().Sub(c.interaction.StartedAt),
	})
	c.apply(events)
}

func (c *Controller) release() tea.Cmd {
	switch c.state {
	case Arming:
		events := c.gesture.Release()
		if !c.interaction.Armed {
			// released inside the hold window: a tap, nothing was started
			c.gesture.Reset()
			c.transition(Idle, OutcomeNone)
			return nil
		}
		c.pending = pendingTooShort
		for _, ev := range events {
			if ev.Kind == gesture.Released && ev.Cancel {
				c.pending = pendingCancel
			}
		}
		return nil

	case Recording:
		for _, ev := range c.gesture.Release() {
			if ev.Kind != gesture.Released {
				continue
			}
			if ev.Cancel {
				return c.resolve(OutcomeCancel)
			}
			return c.resolve(OutcomeComplete)
		}

	case Locked:
		// hands-free: the pointer going up does not stop the recording
		c.gesture.Release()
	}
	return nil
}

func (c *Controller) terminate() tea.Cmd {
	switch c.state {
	case Arming:
		c.gesture.Terminate()
		if c.inflight {
			c.pending = pendingSilent
			return nil
		}
		c.gesture.Reset()
		c.transition(Idle, OutcomeNone)
	case Recording, Locked:
		c.gesture.Terminate()
		return c.resolve(OutcomeCancel)
	}
	return nil
}

func (c *Controller) armed(id uint64) tea.Cmd {
	if c.state != Arming || id != c.interaction.ID {
		return nil
	}
	if len(c.gesture.Elapse(id)) == 0 {
		return nil
	}
	c.interaction.Armed = true
	c.inflight = true
	if c.granted {
		return c.openCmd(id)
	}
	return c.permissionCmd(id)
}

func (c *Controller) permissionCmd(id uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := c.callContext()
		defer cancel()
		granted, err := c.recorder.RequestPermission(ctx)
		return permissionMsg{id: id, granted: granted, err: err}
	}
}

func (c *Controller) openCmd(id uint64) tea.Cmd {
	opts := c.opts
	return func() tea.Msg {
		ctx, cancel := c.callContext()
		defer cancel()
		h, err := c.recorder.Open(ctx, opts)
		return openedMsg{id: id, handle: h, err: err}
	}
}

func (c *Controller) permissionResult(msg permissionMsg) tea.Cmd {
	if c.state != Arming || msg.id != c.interaction.ID {
		return nil
	}
	switch {
	case msg.err != nil:
		c.abortArming(&Error{Kind: PermissionDenied, Err: msg.err})
		return nil
	case !msg.granted:
		c.abortArming(ErrPermissionDenied)
		return nil
	}
	c.granted = true
	if c.pending != pendingNone || c.closed {
		// the interaction already ended; never open a session for it
		c.abortPending()
		return nil
	}
	return c.openCmd(msg.id)
}

func (c *Controller) opened(msg openedMsg) tea.Cmd {
	live := c.state == Arming && msg.id == c.interaction.ID
	if msg.err != nil {
		if live {
			c.abortArming(&Error{Kind: SessionStartFailed, Err: msg.err})
		} else {
			c.logger.Warn("late open failure", zap.Uint64("interaction", msg.id), zap.Error(msg.err))
		}
		return nil
	}
	if !live {
		c.logger.Warn("closing orphaned session", zap.Uint64("interaction", msg.id))
		return c.stopCmd(msg.id, msg.handle, OutcomeAbort, 0)
	}

	c.inflight = false
	c.handle = msg.handle
	c.recordStart = c.now()

	if c.pending != pendingNone || c.closed {
		c.transition(Resolving, OutcomeAbort)
		return c.stopCmd(msg.id, c.handle, OutcomeAbort, 0)
	}

	c.transition(Recording, OutcomeNone)
	c.notified = true
	if cb := c.callbacks.OnRecordingStateChange; cb != nil {
		cb(true)
	}
	c.apply(c.gesture.Activate())
	return c.startTicks()
}

// resolve stops the session. The handle stays set until the stop returns.
// A complete outcome is checked against MinDuration once the stop reports the
// recorded length.
func (c *Controller) resolve(outcome Outcome) tea.Cmd {
	if c.handle == nil {
		return nil
	}
	c.stopTicks()
	wall := c.now().Sub(c.recordStart)
	c.elapsed = wall
	c.transition(Resolving, outcome)
	return c.stopCmd(c.interaction.ID, c.handle, outcome, wall)
}

func (c *Controller) stopCmd(id uint64, h audio.Handle, outcome Outcome, wall time.Duration) tea.Cmd {
	c.outstanding++
	return func() tea.Msg {
		ctx, cancel := c.callContext()
		defer cancel()
		res, err := h.Stop(ctx)
		return stoppedMsg{id: id, outcome: outcome, result: res, err: err, wall: wall}
	}
}

func (c *Controller) stopped(msg stoppedMsg) tea.Cmd {
	c.outstanding--
	uri := msg.result.URI
	if c.state != Resolving || msg.id != c.interaction.ID {
		// orphaned session or a stop that outlived Shutdown
		if msg.err != nil {
			c.logger.Warn("stop failed", zap.Uint64("interaction", msg.id), zap.Error(msg.err))
		}
		return c.discardCmd(uri)
	}

	outcome := msg.outcome
	c.handle = nil

	if msg.err != nil {
		c.logger.Warn("stop failed", zap.Uint64("interaction", msg.id),
			zap.Stringer("outcome", outcome), zap.Error(msg.err))
		c.showError(&Error{Kind: SessionStopFailed, Err: msg.err})
		if outcome == OutcomeCancel {
			c.fireCancel()
		}
		c.finish(outcome)
		return c.discardCmd(uri)
	}

	// one duration decides the length check and is what the artifact reports
	recorded := msg.wall
	if msg.result.Elapsed > 0 {
		recorded = msg.result.Elapsed
	}
	if outcome == OutcomeComplete {
		c.elapsed = recorded
		if recorded < c.cfg.MinDuration {
			outcome = OutcomeReject
		}
	}

	switch outcome {
	case OutcomeComplete:
		raw := artifact.Raw{
			URI:       uri,
			Duration:  recorded,
			MimeType:  c.opts.MimeType,
			Extension: c.opts.Extension,
		}
		c.finish(outcome)
		return c.finalizeCmd(msg.id, raw)

	case OutcomeReject:
		c.showWarning(ErrTooShort.Error())
		c.fireCancel()

	case OutcomeCancel:
		c.fireCancel()

	case OutcomeAbort:
		if c.pending == pendingTooShort {
			c.showWarning(ErrTooShort.Error())
		}
	}
	c.finish(outcome)
	return c.discardCmd(uri)
}

func (c *Controller) finalizeCmd(id uint64, raw artifact.Raw) tea.Cmd {
	c.outstanding++
	return func() tea.Msg {
		ctx, cancel := c.callContext()
		defer cancel()
		a, err := c.finalizer.Finalize(ctx, raw)
		return finalizedMsg{id: id, artifact: a, err: err}
	}
}

// finalized delivers the artifact. A send confirmed before Shutdown is still
// delivered so the durable file does not go unreferenced.
func (c *Controller) finalized(msg finalizedMsg) {
	c.outstanding--
	if msg.err != nil {
		// the artifact still points at the transient file; nothing to surface
		c.logger.Warn("finalization degraded", zap.Uint64("interaction", msg.id),
			zap.Error(&Error{Kind: ArtifactFinalizationFailed, Err: msg.err}))
	}
	if cb := c.callbacks.OnRecordingComplete; cb != nil {
		cb(msg.artifact)
	}
}

func (c *Controller) discardCmd(uri string) tea.Cmd {
	if uri == "" {
		return nil
	}
	c.outstanding++
	return func() tea.Msg {
		ctx, cancel := c.callContext()
		defer cancel()
		c.finalizer.Discard(ctx, uri)
		return discardedMsg{}
	}
}

func (c *Controller) startTicks() tea.Cmd {
	c.tickGen++
	return c.schedule(c.cfg.TickInterval, tickMsg{gen: c.tickGen})
}

// stopTicks invalidates any tick or status poll still in flight.
func (c *Controller) stopTicks() { c.tickGen++ }

func (c *Controller) recordingState() bool {
	return c.state == Recording || c.state == Locked
}

func (c *Controller) tick(msg tickMsg) tea.Cmd {
	if msg.gen != c.tickGen || !c.recordingState() || c.handle == nil {
		return nil
	}
	h, gen := c.handle, msg.gen
	return func() tea.Msg {
		ctx, cancel := c.callContext()
		defer cancel()
		st, err := h.Status(ctx)
		return statusMsg{gen: gen, status: st, err: err}
	}
}

func (c *Controller) status(msg statusMsg) tea.Cmd {
	if msg.gen != c.tickGen || !c.recordingState() {
		return nil
	}
	if msg.err == nil && msg.status.Elapsed > 0 {
		c.elapsed = msg.status.Elapsed
	} else {
		c.elapsed = c.now().Sub(c.recordStart)
	}
	for _, l := range c.listeners {
		l.Ticked(c.elapsed)
	}
	return c.schedule(c.cfg.TickInterval, tickMsg{gen: c.tickGen})
}

// Shutdown is the unmount path. A recording session is stopped synchronously
// and discarded; failures are logged and swallowed. Work already in flight
// (a permission or open call, a stop, a finalization) completes through Update
// as usual, and an open that lands after Shutdown is stopped at once. The
// controller accepts no new interactions afterwards; see Settled.
func (c *Controller) Shutdown(ctx context.Context) {
	if c.closed {
		return
	}
	c.closed = true

	switch c.state {
	case Recording, Locked:
		c.stopTicks()
		h := c.handle
		c.handle = nil
		stopCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
		res, err := h.Stop(stopCtx)
		cancel()
		if err != nil {
			c.logger.Warn("stop during shutdown failed", zap.Error(err))
		}
		if res.URI != "" {
			c.finalizer.Discard(ctx, res.URI)
		}
		c.gesture.Terminate()
		c.finish(OutcomeCancel)
	case Arming:
		if c.inflight {
			c.pending = pendingSilent
			return
		}
		c.gesture.Reset()
		c.transition(Idle, OutcomeNone)
	case Resolving:
		// stop already issued; retrying against the same session is unsafe,
		// its result finishes the interaction
	}
}

func (c *Controller) apply(events []gesture.Event) {
	for _, ev := range events {
		switch ev.Kind {
		case gesture.Dragged:
			for _, l := range c.listeners {
				l.Dragged(ev.Damped)
			}
		case gesture.LockCrossed:
			if c.state == Recording {
				c.logger.Debug("locked", zap.Uint64("interaction", c.interaction.ID), zap.Duration("held", ev.Held))
				c.interaction.Locked = true
				c.transition(Locked, OutcomeNone)
			}
		}
	}
}

// abortArming fails the Arming to Recording step. No handle exists here.
func (c *Controller) abortArming(err error) {
	c.logger.Warn("recording not started", zap.Uint64("interaction", c.interaction.ID), zap.Error(err))
	c.inflight = false
	c.showError(err)
	c.gesture.Reset()
	c.transition(Idle, OutcomeNone)
}

func (c *Controller) abortPending() {
	if c.pending == pendingTooShort {
		c.showWarning(ErrTooShort.Error())
	}
	c.inflight = false
	c.gesture.Reset()
	c.transition(Idle, OutcomeAbort)
}

// No UI feedback is owed after Shutdown.
func (c *Controller) showError(err error) {
	if !c.closed {
		c.notifier.ShowError(err)
	}
}

func (c *Controller) showWarning(msg string) {
	if !c.closed {
		c.notifier.ShowWarning(msg)
	}
}

func (c *Controller) fireCancel() {
	if c.closed {
		return
	}
	if cb := c.callbacks.OnCancel; cb != nil {
		cb()
	}
}

// finish returns to Idle with the handle cleared and emits the single
// recording-stopped notification.
func (c *Controller) finish(outcome Outcome) {
	c.handle = nil
	c.inflight = false
	c.pending = pendingNone
	c.stopTicks()
	c.gesture.Reset()
	c.transition(Idle, outcome)
	if c.notified {
		c.notified = false
		if cb := c.callbacks.OnRecordingStateChange; cb != nil {
			cb(false)
		}
	}
}

func (c *Controller) transition(to State, outcome Outcome) {
	t := Transition{
		From:        c.state,
		To:          to,
		Outcome:     outcome,
		Interaction: c.interaction.ID,
		At:          c.now(),
	}
	c.state = to
	c.logger.Debug("transition",
		zap.Stringer("from", t.From), zap.Stringer("to", t.To),
		zap.Stringer("outcome", outcome), zap.Uint64("interaction", t.Interaction))
	for _, l := range c.listeners {
		l.Transitioned(t)
	}
}

func (c *Controller) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, c.cfg.CallTimeout)
}
