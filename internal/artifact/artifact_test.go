package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jwulff/holdtalk/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyFiles wraps Local and fails selected operations.
type flakyFiles struct {
	storage.Local
	copyErr   error
	deleteErr error
	statMiss  bool
	statErr   error
	deleted   []string
}

func (f *flakyFiles) Copy(ctx context.Context, src, dest string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	return f.Local.Copy(ctx, src, dest)
}

func (f *flakyFiles) Stat(ctx context.Context, uri string) (storage.Info, error) {
	if !strings.Contains(uri, "cache") {
		if f.statErr != nil {
			return storage.Info{}, f.statErr
		}
		if f.statMiss {
			return storage.Info{}, nil
		}
	}
	return f.Local.Stat(ctx, uri)
}

func (f *flakyFiles) Delete(ctx context.Context, uri string) error {
	f.deleted = append(f.deleted, uri)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Local.Delete(ctx, uri)
}

func writeTransient(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "cache", "rec_1.wav")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, 1044), 0o644))
	return path
}

func newTestFinalizer(files storage.Files, dir string) *Finalizer {
	f := NewFinalizer(files, dir, zap.NewNop())
	f.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	f.newID = func() string { return "0123abcd-ffff-4000-8000-000000000000" }
	return f
}

func TestFinalizeCopiesAndCleansUp(t *testing.T) {
	root := t.TempDir()
	src := writeTransient(t, root)
	notes := filepath.Join(root, "notes")

	f := newTestFinalizer(storage.Local{}, notes)
	a, err := f.Finalize(context.Background(), Raw{
		URI: src, Duration: 2 * time.Second, MimeType: "audio/wav", Extension: ".wav",
	})
	require.NoError(t, err)

	assert.Equal(t, "voice_20261017-093000.000_0123abcd.wav", a.FileName)
	assert.Equal(t, filepath.Join(notes, a.FileName), a.URI)
	assert.Equal(t, int64(2000), a.DurationMs())
	assert.Equal(t, "audio/wav", a.MimeType)
	require.NotNil(t, a.FileSizeBytes)
	assert.Equal(t, int64(1044), *a.FileSizeBytes)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "transient file removed")
}

func TestFinalizeCopyFailureFallsBack(t *testing.T) {
	root := t.TempDir()
	src := writeTransient(t, root)
	files := &flakyFiles{copyErr: errors.New("disk full")}

	a, err := newTestFinalizer(files, filepath.Join(root, "notes")).
		Finalize(context.Background(), Raw{URI: src, Duration: time.Second, Extension: ".wav"})
	require.Error(t, err)

	assert.Equal(t, src, a.URI, "caller still gets the transient uri")
	assert.Equal(t, "rec_1.wav", a.FileName)
	require.NotNil(t, a.FileSizeBytes)
	assert.Empty(t, files.deleted, "transient file must survive a failed copy")
}

func TestFinalizeUnverifiedCopyKeepsTransient(t *testing.T) {
	root := t.TempDir()
	src := writeTransient(t, root)
	files := &flakyFiles{statMiss: true}

	a, err := newTestFinalizer(files, filepath.Join(root, "notes")).
		Finalize(context.Background(), Raw{URI: src, Extension: ".wav"})
	require.ErrorIs(t, err, storage.ErrNotExist)
	assert.Equal(t, src, a.URI)
	assert.Empty(t, files.deleted)
}

func TestFinalizeStatErrorRemovesCopy(t *testing.T) {
	root := t.TempDir()
	src := writeTransient(t, root)
	notes := filepath.Join(root, "notes")
	files := &flakyFiles{statErr: errors.New("permission denied")}

	a, err := newTestFinalizer(files, notes).
		Finalize(context.Background(), Raw{URI: src, Extension: ".wav"})
	require.Error(t, err)
	assert.Equal(t, src, a.URI)

	dest := filepath.Join(notes, "voice_20261017-093000.000_0123abcd.wav")
	assert.Equal(t, []string{dest}, files.deleted, "only the unverified copy is removed")
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(src)
	assert.NoError(t, err, "transient file kept")
}

func TestFinalizeDeleteFailureIsIgnored(t *testing.T) {
	root := t.TempDir()
	src := writeTransient(t, root)
	files := &flakyFiles{deleteErr: errors.New("busy")}

	a, err := newTestFinalizer(files, filepath.Join(root, "notes")).
		Finalize(context.Background(), Raw{URI: src, Extension: ".wav"})
	require.NoError(t, err)
	assert.NotEqual(t, src, a.URI)
	assert.Equal(t, []string{src}, files.deleted)
}

func TestDiscard(t *testing.T) {
	root := t.TempDir()
	src := writeTransient(t, root)
	f := newTestFinalizer(storage.Local{}, root)

	f.Discard(context.Background(), src)
	_, err := os.Stat(src)
	assert.True(t, os.IsNotExist(err))

	// missing and empty uris are tolerated
	f.Discard(context.Background(), src)
	f.Discard(context.Background(), "")
}

func TestFileNamesDiffer(t *testing.T) {
	f := NewFinalizer(storage.Local{}, t.TempDir(), zap.NewNop())
	assert.NotEqual(t, f.FileName(".wav"), f.FileName(".wav"))
}
