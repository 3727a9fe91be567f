// Package artifact moves a finished recording out of its transient location
// into the durable notes directory.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jwulff/holdtalk/internal/storage"
	"go.uber.org/zap"
)

// RecordedArtifact is handed to the caller on successful completion. The
// controller keeps no reference to it afterwards.
type RecordedArtifact struct {
	URI      string
	Duration time.Duration
	FileName string
	MimeType string
	// FileSizeBytes is nil when the size could not be determined.
	FileSizeBytes *int64
}

// DurationMs returns the duration in whole milliseconds.
func (a RecordedArtifact) DurationMs() int64 { return a.Duration.Milliseconds() }

// Raw is a stopped recording still at its transient location.
type Raw struct {
	URI       string
	Duration  time.Duration
	MimeType  string
	Extension string
}

// Finalizer copies recordings into Dir.
type Finalizer struct {
	files  storage.Files
	dir    string
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewFinalizer returns a Finalizer writing into dir.
func NewFinalizer(files storage.Files, dir string, logger *zap.Logger) *Finalizer {
	return &Finalizer{
		files:  files,
		dir:    dir,
		logger: logger.Named("artifact"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// FileName builds a collision-resistant name from the timestamp and a random
// suffix.
func (f *Finalizer) FileName(ext string) string {
	id := f.newID()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("voice_%s_%s%s", f.now().Format("20060102-150405.000"), id, ext)
}

// Finalize copies raw into the durable directory, verifies the copy and then
// deletes the transient file. If the copy cannot be confirmed the returned
// artifact points at the transient uri and err describes why; the artifact is
// usable either way.
func (f *Finalizer) Finalize(ctx context.Context, raw Raw) (RecordedArtifact, error) {
	name := f.FileName(raw.Extension)
	dest := filepath.Join(f.dir, name)

	if err := f.files.Copy(ctx, raw.URI, dest); err != nil {
		return f.fallback(ctx, raw, fmt.Errorf("copy to %s: %w", dest, err))
	}

	info, err := f.files.Stat(ctx, dest)
	if err != nil {
		// the copy may be there; nothing will reference it
		if derr := f.files.Delete(ctx, dest); derr != nil && !errors.Is(derr, storage.ErrNotExist) {
			f.logger.Warn("unverified copy not removed", zap.String("uri", dest), zap.Error(derr))
		}
		return f.fallback(ctx, raw, fmt.Errorf("verify %s: %w", dest, err))
	}
	if !info.Exists {
		return f.fallback(ctx, raw, fmt.Errorf("verify %s: %w", dest, storage.ErrNotExist))
	}

	if err := f.files.Delete(ctx, raw.URI); err != nil {
		f.logger.Warn("transient recording not removed", zap.String("uri", raw.URI), zap.Error(err))
	}

	size := info.SizeBytes
	return RecordedArtifact{
		URI:           dest,
		Duration:      raw.Duration,
		FileName:      name,
		MimeType:      raw.MimeType,
		FileSizeBytes: &size,
	}, nil
}

// Discard deletes a recording that will not be delivered. Failures are logged
// and otherwise ignored.
func (f *Finalizer) Discard(ctx context.Context, uri string) {
	if uri == "" {
		return
	}
	if err := f.files.Delete(ctx, uri); err != nil {
		f.logger.Warn("discarded recording not removed", zap.String("uri", uri), zap.Error(err))
	}
}

func (f *Finalizer) fallback(ctx context.Context, raw Raw, cause error) (RecordedArtifact, error) {
	f.logger.Warn("finalization fell back to transient uri", zap.String("uri", raw.URI), zap.Error(cause))

	a := RecordedArtifact{
		URI:      raw.URI,
		Duration: raw.Duration,
		FileName: filepath.Base(storage.Path(raw.URI)),
		MimeType: raw.MimeType,
	}
	if info, err := f.files.Stat(ctx, raw.URI); err == nil && info.Exists {
		size := info.SizeBytes
		a.FileSizeBytes = &size
	}
	return a, cause
}
