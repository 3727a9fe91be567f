package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const (
	bitsPerSample  = 16
	bytesPerSample = bitsPerSample / 8
	wavHeaderSize  = 44
	pcmFormat      = 1
)

// writeWAVHeader writes a canonical 44-byte PCM header for dataSize bytes of
// samples.
func writeWAVHeader(w io.Writer, sampleRate, channels int, dataSize uint32) error {
	header := make([]byte, wavHeaderSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], pcmFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*channels*bytesPerSample))
	binary.LittleEndian.PutUint16(header[32:34], uint16(channels*bytesPerSample))
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// patchWAVSizes rewrites the RIFF and data sizes once recording has finished.
func patchWAVSizes(w io.WriterAt, dataSize uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], 36+dataSize)
	if _, err := w.WriteAt(buf[:], 4); err != nil {
		return fmt.Errorf("patch riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(buf[:], dataSize)
	if _, err := w.WriteAt(buf[:], 40); err != nil {
		return fmt.Errorf("patch data size: %w", err)
	}
	return nil
}

// pcmDuration converts a byte count of interleaved 16-bit samples to time.
func pcmDuration(dataBytes int64, sampleRate, channels int) time.Duration {
	frame := int64(channels * bytesPerSample)
	if frame == 0 || sampleRate == 0 {
		return 0
	}
	frames := dataBytes / frame
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
