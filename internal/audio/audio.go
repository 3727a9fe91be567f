// Package audio defines the microphone recording contract used by the capture
// controller, the fixed per-platform recording profile, and a PortAudio
// implementation that writes 16-bit PCM WAV files.
package audio

import (
	"context"
	"errors"
	"runtime"
	"time"
)

var (
	// ErrNotRecording is returned by a Handle that was already stopped.
	ErrNotRecording = errors.New("audio: not recording")
	// ErrNoInputDevice means no microphone is available to grant access to.
	ErrNoInputDevice = errors.New("audio: no input device")
)

// Options describe the recording format. They come from the platform profile
// and are not user-configurable.
type Options struct {
	Channels   int
	SampleRate int
	BitRate    int
	Codec      string
	Container  string
	MimeType   string
	Extension  string
	// Dir is where transient recordings are written.
	Dir string
}

// Status is a snapshot of a running session.
type Status struct {
	Active  bool
	Elapsed time.Duration
}

// StopResult is what a stopped session leaves behind.
type StopResult struct {
	Elapsed time.Duration
	URI     string
}

// Handle is one open hardware recording session. Stop must be called exactly
// once; implementations must allow Status and Stop from different goroutines.
type Handle interface {
	Status(ctx context.Context) (Status, error)
	Stop(ctx context.Context) (StopResult, error)
}

// Recorder opens recording sessions.
type Recorder interface {
	RequestPermission(ctx context.Context) (bool, error)
	Open(ctx context.Context, opts Options) (Handle, error)
}

// Profile returns the fixed recording options for the current platform.
func Profile(dir string) Options {
	opts := Options{
		Channels:   1,
		SampleRate: 44100,
		Codec:      "pcm_s16le",
		Container:  "wav",
		MimeType:   "audio/wav",
		Extension:  ".wav",
		Dir:        dir,
	}
	if runtime.GOOS == "linux" {
		// ALSA default devices are happiest at 48k
		opts.SampleRate = 48000
	}
	opts.BitRate = opts.SampleRate * opts.Channels * bitsPerSample
	return opts
}
