// Package db is the SQLite index of finalized voice notes.
package db

import "time"

// Note is one finalized recording.
type Note struct {
	ID         string
	URI        string
	FileName   string
	MimeType   string
	DurationMs int64
	SizeBytes  *int64
	CreatedAt  time.Time
}

// Duration returns the recorded length.
func (n Note) Duration() time.Duration {
	return time.Duration(n.DurationMs) * time.Millisecond
}
