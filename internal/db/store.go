package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNoteNotFound is returned when deleting a note that is not indexed.
var ErrNoteNotFound = errors.New("note not found")

const schema = `
	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		uri TEXT NOT NULL,
		fileName TEXT NOT NULL,
		mimeType TEXT NOT NULL,
		durationMs INTEGER NOT NULL,
		sizeBytes INTEGER,
		createdAt REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS notes_createdAt ON notes(createdAt DESC);
`

// Store wraps the notes database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "Holdtalk", "holdtalk.sqlite")
}

// Open opens the database read-write with WAL, creating it and its schema if
// needed. ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer; also keeps an in-memory database on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database without write access.
func OpenReadOnly(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveNote inserts n, assigning an ID and creation time when unset.
func (s *Store) SaveNote(n *Note) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	var size sql.NullInt64
	if n.SizeBytes != nil {
		size = sql.NullInt64{Int64: *n.SizeBytes, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO notes (id, uri, fileName, mimeType, durationMs, sizeBytes, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.URI, n.FileName, n.MimeType, n.DurationMs, size, unixFromTime(n.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

// RecentNotes returns up to limit notes, newest first.
func (s *Store) RecentNotes(limit int) ([]Note, error) {
	rows, err := s.db.Query(`
		SELECT id, uri, fileName, mimeType, durationMs, sizeBytes, createdAt
		FROM notes
		ORDER BY createdAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Note returns the note with the given id, or nil if there is none.
func (s *Store) Note(id string) (*Note, error) {
	row := s.db.QueryRow(`
		SELECT id, uri, fileName, mimeType, durationMs, sizeBytes, createdAt
		FROM notes
		WHERE id = ?
	`, id)

	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

// DeleteNote removes a note from the index. The audio file is not touched.
func (s *Store) DeleteNote(id string) error {
	res, err := s.db.Exec(`DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoteNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(sc scanner) (Note, error) {
	var n Note
	var size sql.NullInt64
	var createdAt float64
	if err := sc.Scan(&n.ID, &n.URI, &n.FileName, &n.MimeType,
		&n.DurationMs, &size, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return n, err
		}
		return n, fmt.Errorf("scan note: %w", err)
	}
	if size.Valid {
		n.SizeBytes = &size.Int64
	}
	n.CreatedAt = timeFromUnix(createdAt)
	return n, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
