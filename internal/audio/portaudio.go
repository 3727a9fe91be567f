package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

const framesPerBuffer = 1024

// PortAudio records from the default input device.
type PortAudio struct {
	logger *zap.Logger
}

// NewPortAudio returns a Recorder backed by the system PortAudio library.
func NewPortAudio(logger *zap.Logger) *PortAudio {
	return &PortAudio{logger: logger.Named("audio")}
}

// RequestPermission reports whether a default input device can be opened.
// Desktop platforms surface the OS microphone prompt on first open; a missing
// device is treated as a denial.
func (p *PortAudio) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := portaudio.Initialize(); err != nil {
		return false, fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil || dev.MaxInputChannels == 0 {
		p.logger.Warn("no usable input device", zap.Error(err))
		return false, nil
	}
	p.logger.Debug("input device available", zap.String("device", dev.Name))
	return true, nil
}

// Open starts a stream writing into a new WAV file under opts.Dir.
func (p *PortAudio) Open(ctx context.Context, opts Options) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create recording dir: %w", err)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initialize portaudio: %w", err)
	}

	path := filepath.Join(opts.Dir, fmt.Sprintf("rec_%d%s", time.Now().UnixNano(), opts.Extension))
	file, err := os.Create(path)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("create recording file: %w", err)
	}
	if err := writeWAVHeader(file, opts.SampleRate, opts.Channels, 0); err != nil {
		file.Close()
		os.Remove(path)
		portaudio.Terminate()
		return nil, err
	}

	h := &portAudioHandle{
		logger: p.logger,
		file:   file,
		path:   path,
		opts:   opts,
	}

	stream, err := portaudio.OpenDefaultStream(opts.Channels, 0, float64(opts.SampleRate), framesPerBuffer, h.process)
	if err != nil {
		h.abort()
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	h.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		h.abort()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	p.logger.Debug("recording started", zap.String("path", path),
		zap.Int("sampleRate", opts.SampleRate), zap.Int("channels", opts.Channels))
	return h, nil
}

type portAudioHandle struct {
	logger *zap.Logger
	stream *portaudio.Stream
	opts   Options
	path   string

	mu       sync.Mutex
	file     *os.File
	written  int64
	writeErr error
	stopped  bool
}

// process runs on the audio callback thread.
func (h *portAudioHandle) process(in []int16) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped || h.writeErr != nil {
		return
	}
	if err := binary.Write(h.file, binary.LittleEndian, in); err != nil {
		h.writeErr = err
		return
	}
	h.written += int64(len(in) * bytesPerSample)
}

func (h *portAudioHandle) Status(ctx context.Context) (Status, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Status{
		Active:  !h.stopped,
		Elapsed: pcmDuration(h.written, h.opts.SampleRate, h.opts.Channels),
	}, h.writeErr
}

func (h *portAudioHandle) Stop(ctx context.Context) (StopResult, error) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return StopResult{}, ErrNotRecording
	}
	h.stopped = true
	h.mu.Unlock()

	// Stream.Stop waits for the callback, so the lock must not be held here.
	var errs []error
	if err := h.stream.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop stream: %w", err))
	}
	if err := h.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stream: %w", err))
	}
	if err := portaudio.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("terminate portaudio: %w", err))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.writeErr != nil {
		errs = append(errs, fmt.Errorf("write samples: %w", h.writeErr))
	}
	if err := patchWAVSizes(h.file, uint32(h.written)); err != nil {
		errs = append(errs, err)
	}
	if err := h.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close recording file: %w", err))
	}

	res := StopResult{
		Elapsed: pcmDuration(h.written, h.opts.SampleRate, h.opts.Channels),
		URI:     h.path,
	}
	h.logger.Debug("recording stopped", zap.String("path", h.path), zap.Duration("elapsed", res.Elapsed))
	return res, errors.Join(errs...)
}

// abort releases everything acquired by a failed Open.
func (h *portAudioHandle) abort() {
	h.stopped = true
	h.file.Close()
	os.Remove(h.path)
	portaudio.Terminate()
}
