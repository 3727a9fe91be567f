// Package app is the bubbletea root model of the holdtalk terminal client.
// The mouse drives the record pad: press and hold to record, drag up to lock,
// drag left and release to cancel.
package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/audio"
	"github.com/jwulff/holdtalk/internal/capture"
	"github.com/jwulff/holdtalk/internal/db"
	"github.com/jwulff/holdtalk/internal/feedback"
	"github.com/jwulff/holdtalk/internal/storage"
	"github.com/jwulff/holdtalk/internal/ui"
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	padTop       = 3 // header, status bar, divider
	padHeight    = 7
	notesLimit   = 20
	toastTimeout = 5 * time.Second
	fileTimeout  = 5 * time.Second
	// quitGrace bounds how long quit waits for in-flight capture work.
	quitGrace = 10 * time.Second
)

// Options wires the model to its collaborators.
type Options struct {
	Capture   capture.Config
	Recorder  audio.Recorder
	Finalizer *artifact.Finalizer
	Audio     audio.Options
	Files     storage.Files
	// Store may be nil, which disables the notes list.
	Store  *db.Store
	Logger *zap.Logger
	// Pulser may be nil.
	Pulser feedback.Pulser

	CellWidthPx  int
	CellHeightPx int

	// Scheduler replaces tea.Tick for controller timers and toast expiry.
	Scheduler      capture.Scheduler
	CaptureOptions []capture.Option
}

// Model is the root bubbletea model for the holdtalk TUI.
type Model struct {
	ctrl   *capture.Controller
	bridge *bridge
	pad    *pad
	files  storage.Files
	store  *db.Store
	logger *zap.Logger
	after  capture.Scheduler

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	// Pointer tracking, in cells
	cellW       int
	cellH       int
	pointerDown bool
	originX     int
	originY     int

	recording  bool
	statusNote string

	// quitting is set once Shutdown ran; tea.Quit waits until the controller
	// settles and every completed recording is indexed.
	quitting bool
	saving   int

	notes    []db.Note
	selected int

	toast        string
	toastWarning bool
	toastSeq     int

	width  int
	height int
}

func tickAfter(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// New creates an idle Model.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	after := opts.Scheduler
	if after == nil {
		after = tickAfter
	}
	files := opts.Files
	if files == nil {
		files = storage.Local{}
	}
	cellW, cellH := opts.CellWidthPx, opts.CellHeightPx
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}

	b := &bridge{}
	p := &pad{}
	copts := []capture.Option{
		capture.WithLogger(logger),
		capture.WithCallbacks(b.callbacks()),
		capture.WithNotifier(b),
		capture.WithListener(p),
		capture.WithScheduler(after),
	}
	if opts.Pulser != nil {
		copts = append(copts, capture.WithListener(feedback.NewHaptics(opts.Pulser)))
	}
	copts = append(copts, opts.CaptureOptions...)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.SpinnerStyle

	return Model{
		ctrl:    capture.New(opts.Capture, opts.Recorder, opts.Finalizer, opts.Audio, copts...),
		bridge:  b,
		pad:     p,
		files:   files,
		store:   opts.Store,
		logger:  logger,
		after:   after,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
		cellW:   cellW,
		cellH:   cellH,
	}
}

// Init loads the notes list and starts the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadNotesCmd(m.store))
}

// loadNotesCmd reads the most recent notes from SQLite.
func loadNotesCmd(store *db.Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		notes, err := store.RecentNotes(notesLimit)
		return NotesLoadedMsg{Notes: notes, Err: err}
	}
}

// saveNoteCmd indexes a completed recording.
func saveNoteCmd(store *db.Store, a artifact.RecordedArtifact) tea.Cmd {
	return func() tea.Msg {
		n := db.Note{
			URI:        a.URI,
			FileName:   a.FileName,
			MimeType:   a.MimeType,
			DurationMs: a.DurationMs(),
			SizeBytes:  a.FileSizeBytes,
		}
		if store == nil {
			return NoteSavedMsg{Note: n}
		}
		err := store.SaveNote(&n)
		return NoteSavedMsg{Note: n, Err: err}
	}
}

// deleteNoteCmd removes the audio file, then the index row.
func deleteNoteCmd(store *db.Store, files storage.Files, n db.Note) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fileTimeout)
		defer cancel()
		if err := files.Delete(ctx, n.URI); err != nil && !errors.Is(err, storage.ErrNotExist) {
			return NoteDeletedMsg{ID: n.ID, Err: err}
		}
		return NoteDeletedMsg{ID: n.ID, Err: store.DeleteNote(n.ID)}
	}
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.BlurMsg:
		// the release will never reach us
		m.pointerDown = false
		return m.forward(capture.TerminateMsg{})

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ClearToastMsg:
		if msg.Seq == m.toastSeq {
			m.toast = ""
			m.toastWarning = false
		}
		return m, nil

	case NotesLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("load notes", zap.Error(msg.Err))
			return m, nil
		}
		m.notes = msg.Notes
		if m.selected >= len(m.notes) {
			m.selected = max(0, len(m.notes)-1)
		}
		return m, nil

	case NoteSavedMsg:
		if m.saving > 0 {
			m.saving--
		}
		if msg.Err != nil {
			m.logger.Error("index note", zap.String("uri", msg.Note.URI), zap.Error(msg.Err))
			return m.quitWhenSettled(m.showToast("saved but not indexed: "+msg.Err.Error(), true))
		}
		m.statusNote = fmt.Sprintf("Saved %s (%s)", msg.Note.FileName, formatElapsed(msg.Note.Duration()))
		m.selected = 0
		return m.quitWhenSettled(loadNotesCmd(m.store))

	case QuitTimeoutMsg:
		if m.quitting {
			m.logger.Warn("quitting before capture settled", zap.Stringer("state", m.ctrl.State()))
			return m, tea.Quit
		}
		return m, nil

	case NoteDeletedMsg:
		if msg.Err != nil {
			m.logger.Warn("delete note", zap.String("id", msg.ID), zap.Error(msg.Err))
			return m, tea.Batch(m.showToast("delete failed: "+msg.Err.Error(), false), loadNotesCmd(m.store))
		}
		m.statusNote = "Deleted"
		return m, loadNotesCmd(m.store)
	}

	// everything else belongs to the capture controller
	return m.forward(msg)
}

// forward hands msg to the controller and applies the callbacks it queued.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.ctrl.Update(msg)}
	for _, q := range m.bridge.drain() {
		cmds = append(cmds, m.apply(q))
	}
	return m.quitWhenSettled(cmds...)
}

// quitWhenSettled appends tea.Quit once a pending quit has nothing left to
// wait for. Quitting earlier would drop the results of in-flight commands.
func (m Model) quitWhenSettled(cmds ...tea.Cmd) (tea.Model, tea.Cmd) {
	if m.quitting && m.saving == 0 && m.ctrl.Settled() {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) apply(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case RecordingStateMsg:
		m.recording = msg.Recording
		if msg.Recording {
			m.statusNote = ""
		}
	case RecordingCompleteMsg:
		m.saving++
		return saveNoteCmd(m.store, msg.Artifact)
	case RecordingCancelledMsg:
		m.statusNote = "Discarded"
	case ToastMsg:
		return m.showToast(msg.Text, msg.Warning)
	}
	return nil
}

func (m *Model) showToast(text string, warning bool) tea.Cmd {
	m.toastSeq++
	m.toast = text
	m.toastWarning = warning
	return m.after(toastTimeout, ClearToastMsg{Seq: m.toastSeq})
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.quitting {
			// asked twice; stop waiting
			return m, tea.Quit
		}
		m.quitting = true
		m.statusNote = "Closing..."
		m.ctrl.Shutdown(context.Background())
		m.pointerDown = false
		cmds := []tea.Cmd{m.after(quitGrace, QuitTimeoutMsg{})}
		for _, q := range m.bridge.drain() {
			cmds = append(cmds, m.apply(q))
		}
		return m.quitWhenSettled(cmds...)

	case m.quitting:
		return m, nil

	case key.Matches(msg, m.keys.Send):
		if m.ctrl.State() == capture.Locked {
			return m.forward(capture.SendMsg{})
		}

	case key.Matches(msg, m.keys.Delete):
		if m.ctrl.State() == capture.Locked {
			return m.forward(capture.DeleteMsg{})
		}
		if m.store != nil && m.ctrl.State() == capture.Idle && m.selected < len(m.notes) {
			return m, deleteNoteCmd(m.store, m.files, m.notes[m.selected])
		}

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.notes)-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

// handleMouse maps the left button to the pointer stream. Drag deltas are
// cumulative from the press cell, scaled to pixels.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.pointerDown || !inPad(msg.Y) {
			return m, nil
		}
		m.pointerDown = true
		m.originX, m.originY = msg.X, msg.Y
		return m.forward(capture.PressMsg{})

	case tea.MouseActionMotion:
		if !m.pointerDown {
			return m, nil
		}
		return m.forward(capture.DragMsg{
			DX: float64((msg.X - m.originX) * m.cellW),
			DY: float64((msg.Y - m.originY) * m.cellH),
		})

	case tea.MouseActionRelease:
		if !m.pointerDown {
			return m, nil
		}
		m.pointerDown = false
		return m.forward(capture.ReleaseMsg{})
	}
	return m, nil
}

func inPad(row int) bool {
	return row >= padTop && row < padTop+padHeight
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	divider := ui.DividerStyle.Render(strings.Repeat("─", m.width))

	sections := []string{
		m.renderHeader(),
		m.renderStatusBar(),
		divider,
		m.renderPad(),
		divider,
		m.renderNotes(m.notesHeight()),
		divider,
	}
	if m.toast != "" {
		sections = append(sections, m.renderToast())
	}
	sections = append(sections, m.help.View(m.keys))

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	return ui.TitleStyle.Render("HOLDTALK") + ui.DimStyle.Render(" · voice notes")
}

func (m Model) renderStatusBar() string {
	switch m.pad.state {
	case capture.Arming:
		return ui.IdleDotStyle.Render("◌ HOLD")
	case capture.Recording:
		return ui.RecordingDotStyle.Render("● REC ") + formatElapsed(m.pad.elapsed)
	case capture.Locked:
		return ui.RecordingDotStyle.Render("● REC ") + formatElapsed(m.pad.elapsed) +
			"  " + ui.LockedBadgeStyle.Render("LOCKED")
	case capture.Resolving:
		return m.spinner.View() + ui.DimStyle.Render(" Finishing...")
	}
	status := ui.IdleDotStyle.Render("○ IDLE")
	if m.statusNote != "" {
		status += "  " + ui.SavedStyle.Render(m.statusNote)
	}
	return status
}

// cancelling reports whether a release now would cancel. The pad only has
// damped offsets, so the threshold is damped the same way.
func (m Model) cancelling() bool {
	g := m.ctrl.Config().Gesture
	return m.pad.state == capture.Recording && m.pad.offset.X < g.CancelThreshold*g.Damping
}

func (m Model) renderPad() string {
	lines := make([]string, padHeight)

	var style lipgloss.Style
	var label string
	switch {
	case m.pad.state == capture.Locked:
		style, label = ui.PadLockedStyle, "■ LOCKED"
		lines[padHeight-1] = center(ui.HintStyle.Render("enter send · x delete"), m.width)
	case m.cancelling():
		style, label = ui.PadCancelStyle, "✕ CANCEL"
		lines[padHeight-1] = center(ui.HintStyle.Render("release to cancel"), m.width)
	case m.pad.state == capture.Recording:
		style, label = ui.PadRecordingStyle, "● REC"
		lines[0] = center(ui.HintStyle.Render("↑ slide up to lock"), m.width)
		lines[padHeight-1] = center(ui.HintStyle.Render("← slide left to cancel"), m.width)
	default:
		style, label = ui.PadIdleStyle, "● HOLD"
		lines[padHeight-1] = center(ui.HintStyle.Render("press and hold to record"), m.width)
	}

	button := strings.Split(style.Render(label), "\n")
	bw := lipgloss.Width(style.Render(label))
	col := (m.width-bw)/2 + int(m.pad.offset.X)/m.cellW
	row := (padHeight-len(button))/2 + int(m.pad.offset.Y)/m.cellH
	col = clamp(col, 0, max(0, m.width-bw))
	row = clamp(row, 0, max(0, padHeight-len(button)))
	for i, l := range button {
		if row+i < padHeight {
			lines[row+i] = strings.Repeat(" ", col) + l
		}
	}

	return strings.Join(lines, "\n")
}

func (m Model) notesHeight() int {
	// header rows, pad, two dividers, footer
	reserved := padTop + padHeight + 2 + 1
	if m.toast != "" {
		reserved++
	}
	if m.height == 0 {
		return 8
	}
	return max(3, m.height-reserved)
}

func (m Model) renderNotes(height int) string {
	lines := []string{ui.PanelTitleStyle.Render(fmt.Sprintf("NOTES (%d)", len(m.notes)))}

	switch {
	case m.store == nil:
		lines = append(lines, ui.DimStyle.Render("  Notes index unavailable"))
	case len(m.notes) == 0:
		lines = append(lines, ui.DimStyle.Render("  No notes yet"))
	default:
		visible := height - 1
		start := 0
		if m.selected >= visible {
			start = m.selected - visible + 1
		}
		for i := start; i < len(m.notes) && i < start+visible; i++ {
			n := m.notes[i]
			ts := ui.TimestampStyle.Render(n.CreatedAt.Format("[2006-01-02 15:04]"))
			text := n.FileName + " " + ui.DimStyle.Render(formatElapsed(n.Duration()))
			var line string
			if i == m.selected {
				line = ui.SelectedStyle.Render("> ") + ts + " " + text
			} else {
				line = "  " + ts + " " + text
			}
			lines = append(lines, truncateToWidth(line, m.width))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

func (m Model) renderToast() string {
	if m.toastWarning {
		return ui.WarningStyle.Render("Warning: ") + ui.WarningTextStyle.Render(m.toast)
	}
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.toast)
}

// Helpers

// formatElapsed renders d as m:ss.t.
func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%d:%04.1f", int(d.Minutes()), math.Mod(d.Seconds(), 60))
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}
