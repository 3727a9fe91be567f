package app

import (
	"github.com/jwulff/holdtalk/internal/artifact"
	"github.com/jwulff/holdtalk/internal/db"
)

// RecordingStateMsg mirrors OnRecordingStateChange.
type RecordingStateMsg struct {
	Recording bool
}

// RecordingCompleteMsg carries a finalized artifact.
type RecordingCompleteMsg struct {
	Artifact artifact.RecordedArtifact
}

// RecordingCancelledMsg mirrors OnCancel.
type RecordingCancelledMsg struct{}

// ToastMsg is an error or warning from the capture controller.
type ToastMsg struct {
	Text    string
	Warning bool
}

// ClearToastMsg clears the toast it was scheduled for after a timeout.
type ClearToastMsg struct {
	Seq int
}

// NotesLoadedMsg carries the most recent notes from SQLite.
type NotesLoadedMsg struct {
	Notes []db.Note
	Err   error
}

// NoteSavedMsg reports indexing of a completed recording.
type NoteSavedMsg struct {
	Note db.Note
	Err  error
}

// NoteDeletedMsg reports removal of a note from disk and index.
type NoteDeletedMsg struct {
	ID  string
	Err error
}

// QuitTimeoutMsg ends a quit that is still waiting on the capture controller.
type QuitTimeoutMsg struct{}
