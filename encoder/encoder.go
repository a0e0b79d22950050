/*
DESCRIPTION
  encoder.go defines the movie-encoder sink the session Recorder writes
  post-processed frames to (spec §4.4/§6's record path). The actual
  compression/muxing implementation is out of core scope; this package
  defines the interface and a simple raw-file reference implementation
  used by tests and the cmd/iidcd daemon.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package encoder defines the movie-encoder Sink interface frames are
// committed to during recording, plus a FileSink reference
// implementation that writes raw interleaved frames to disk.
package encoder

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned by operations on a Sink that has been finalized.
var ErrClosed = errors.New("encoder: sink is closed")

// CodecSpec identifies the codec a Sink should encode with and any
// codec-specific settings, parsed from a TargetMovie filename's
// ":CodecType="/":CodecSettings=" suffix (spec §6 "Recording filename
// suffixes").
type CodecSpec struct {
	Type     string
	Settings string
}

// Sink is the movie-encoder the Recorder commits frames to. Open is
// called once when recording starts, with the negotiated frame
// dimensions, framerate, channel count, per-channel bit depth and codec
// choice (spec §6: "open(path, w, h, fps, channels, bpc, codec_spec)");
// GetWritableBuffer/CommitFrame are called once per recorded frame;
// Finalize flushes and closes the underlying movie.
type Sink interface {
	Open(path string, width, height int, fps float64, channels, bpc int, codec CodecSpec) error
	GetWritableBuffer() ([]byte, error)
	CommitFrame(buf []byte) error
	Finalize() error
}

// FileSink is a reference Sink that writes raw interleaved frames
// sequentially to a single file, grounded on the teacher's
// lumberjack-backed logging writer: a straightforward io.WriteCloser
// wrapped with a mutex for concurrent-safe use from the Recorder
// goroutine. It records the full Open contract (fps, bpc, codec) for
// inspection but, being a raw-frame reference sink rather than a real
// muxer, doesn't act on the codec choice.
type FileSink struct {
	mu       sync.Mutex
	w        io.WriteCloser
	width    int
	height   int
	channels int
	fps      float64
	bpc      int
	codec    CodecSpec
	frames   int
}

// Open creates path and prepares the sink for width x height x channels
// raw frames.
func (f *FileSink) Open(path string, width, height int, fps float64, channels, bpc int, codec CodecSpec) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "encoder: could not create sink file")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.w = file
	f.width, f.height, f.channels = width, height, channels
	f.fps, f.bpc, f.codec = fps, bpc, codec
	f.frames = 0
	return nil
}

// Codec reports the codec spec passed to Open, for tests and diagnostics.
func (f *FileSink) Codec() CodecSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codec
}

// GetWritableBuffer returns a correctly sized buffer for one frame.
func (f *FileSink) GetWritableBuffer() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w == nil {
		return nil, ErrClosed
	}
	return make([]byte, f.width*f.height*f.channels), nil
}

// CommitFrame writes buf to the underlying file. buf must have been
// obtained from GetWritableBuffer and be unmodified in length.
func (f *FileSink) CommitFrame(buf []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w == nil {
		return ErrClosed
	}
	want := f.width * f.height * f.channels
	if len(buf) != want {
		return fmt.Errorf("encoder: frame buffer is %d bytes, want %d", len(buf), want)
	}
	if _, err := f.w.Write(buf); err != nil {
		return errors.Wrap(err, "encoder: write failed")
	}
	f.frames++
	return nil
}

// Finalize closes the underlying file. Frames is the number of frames
// successfully committed before Finalize was called.
func (f *FileSink) Finalize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.w == nil {
		return nil
	}
	err := f.w.Close()
	f.w = nil
	if err != nil {
		return errors.Wrap(err, "encoder: close failed")
	}
	return nil
}

// Frames reports how many frames have been committed so far.
func (f *FileSink) Frames() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}
