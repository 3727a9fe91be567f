// Package storage is the durable file API used to finalize recordings.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotExist is returned by Stat when the uri does not exist.
var ErrNotExist = errors.New("storage: file does not exist")

// Info describes a stored file.
type Info struct {
	Exists    bool
	SizeBytes int64
}

// Files copies, inspects and deletes files addressed by uri.
type Files interface {
	Copy(ctx context.Context, srcURI, destURI string) error
	Stat(ctx context.Context, uri string) (Info, error)
	Delete(ctx context.Context, uri string) error
}

// Local implements Files on the local filesystem. URIs may be plain paths or
// file:// URLs.
type Local struct{}

// Path strips a file:// scheme.
func Path(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

// Copy writes src to dest, creating dest's directory. A partially written
// dest is removed on failure.
func (Local) Copy(ctx context.Context, srcURI, destURI string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, dest := Path(srcURI), Path(destURI)

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copy: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}

// Stat reports existence and size. A missing file is not an error.
func (Local) Stat(ctx context.Context, uri string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	fi, err := os.Stat(Path(uri))
	if errors.Is(err, os.ErrNotExist) {
		return Info{}, nil
	}
	if err != nil {
		return Info{}, fmt.Errorf("stat: %w", err)
	}
	return Info{Exists: true, SizeBytes: fi.Size()}, nil
}

// Delete removes uri. Deleting a missing file returns ErrNotExist.
func (Local) Delete(ctx context.Context, uri string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(Path(uri))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotExist
	}
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
