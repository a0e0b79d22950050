/*
DESCRIPTION
  pull.go implements spec §4.4's pull_frame and get_image operations: the
  poll/wait/commit bifurcation, the consumer-path drop-newest policy
  (distinct from the Recorder's overwrite-on-produce policy in
  recorder.go), timestamp normalization, and the three get_image output
  branches (summed intensity, raw buffer with bit-depth shift, texture
  format selection).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/postprocess"
	"github.com/ausocean/iidc/texture"
)

// CheckMode selects get_image's poll/wait/commit/no-op behaviour (spec
// §4.4 "checkForImage").
type CheckMode int

const (
	CheckCommit CheckMode = 0
	CheckPoll   CheckMode = 1
	CheckWait   CheckMode = 2
	CheckNone   CheckMode = 4
)

// get_image status codes (spec §4.4).
const (
	StatusReady    = 0
	StatusNotReady = -1
	StatusStopped  = -2
)

// PullResult is pull_frame's outcome (spec §4.4 "Returns Pending, End, or
// Frame").
type PullResult int

const (
	ResultFrame PullResult = iota
	ResultPending
	ResultEnd
)

// GetImageOptions selects which of get_image's optional output branches
// to populate on a commit call.
type GetImageOptions struct {
	WantSummedIntensity bool
	WantRaw             bool
	TextureCaps         *texture.Caps
}

// ImageResult is get_image's commit-call output.
type ImageResult struct {
	PTS             float64
	Dropped         int
	SummedIntensity float64
	Raw             []byte
	TextureSpec     texture.Spec
	TextureScale    int
}

// PullFrame implements spec §4.4 "pull_frame(mode)": a simplified
// poll/wait dequeue that doesn't expose get_image's intensity/raw/texture
// branches, for callers that only want the next frame's bytes.
func (s *Session) PullFrame(ctx context.Context, mode device.DequeueMode) (PullResult, Frame, error) {
	s.mu.Lock()
	valid := s.valid
	s.mu.Unlock()
	if !valid {
		return ResultPending, Frame{}, ErrBadIndex
	}

	buf, status, err := s.probeAndDequeue(ctx, mode == device.DequeueWait)
	if err != nil {
		return ResultPending, Frame{}, err
	}
	switch status {
	case StatusStopped:
		return ResultEnd, Frame{}, nil
	case StatusNotReady:
		return ResultPending, Frame{}, nil
	default:
		return ResultFrame, Frame{Pixels: buf.pixels, Width: buf.width, Height: buf.height, Channels: buf.channels, PTS: buf.pts, Dropped: buf.dropped}, nil
	}
}

// Frame is the pixel buffer PullFrame hands back to a consumer.
type Frame struct {
	Pixels        []byte
	Width, Height int
	Channels      int
	PTS           float64
	Dropped       int
}

// GetImage implements spec §4.4 "get_image". check==CheckNone is a no-op.
// check==CheckPoll/CheckWait probes for a frame without transferring
// ownership. check==CheckCommit transfers ownership of the last probed
// frame to the caller and populates opts' requested output branches,
// returning the dropped-count for that cycle.
func (s *Session) GetImage(ctx context.Context, check CheckMode, opts GetImageOptions) (int, ImageResult, error) {
	s.mu.Lock()
	valid := s.valid
	s.mu.Unlock()
	if !valid {
		return 0, ImageResult{}, ErrBadIndex
	}

	switch check {
	case CheckNone:
		return StatusReady, ImageResult{}, nil

	case CheckPoll, CheckWait:
		buf, status, err := s.probeAndDequeue(ctx, check == CheckWait)
		if err != nil {
			return 0, ImageResult{}, err
		}
		if status == StatusReady {
			s.mu.Lock()
			s.probedFrame = buf
			s.mu.Unlock()
		}
		return status, ImageResult{}, nil

	case CheckCommit:
		return s.commit(opts)
	}
	return 0, ImageResult{}, fmt.Errorf("session: unknown check mode %d", check)
}

func (s *Session) commit(opts GetImageOptions) (int, ImageResult, error) {
	start := s.clock.MonotonicSeconds()

	s.mu.Lock()
	buf := s.probedFrame
	s.probedFrame = nil
	s.pulledFrame = buf
	actualBPC := s.negotiated.actualBPC
	reqLayers := s.requested.ReqLayers
	s.mu.Unlock()

	if buf == nil {
		return 0, ImageResult{}, fmt.Errorf("session: commit called with no probed frame")
	}

	result := ImageResult{PTS: buf.pts, Dropped: buf.dropped}
	if opts.WantSummedIntensity {
		result.SummedIntensity = summedIntensity(buf)
	}
	if opts.WantRaw {
		result.Raw = rawBuffer(buf, actualBPC)
	}
	if opts.TextureCaps != nil {
		layers := reqLayers
		if layers == 0 {
			layers = buf.channels
		}
		format, depth, scale := texture.SelectFormat(layers, actualBPC, *opts.TextureCaps)
		result.TextureSpec = texture.Spec{
			InternalFormat: format,
			Data:           buf.pixels,
			Width:          buf.width,
			Height:         buf.height,
			Depth:          depth,
		}
		result.TextureScale = scale
	}

	s.mu.Lock()
	s.nrGfxFrames++
	s.gfx.add(s.clock.MonotonicSeconds() - start)
	s.mu.Unlock()

	return buf.dropped, result, nil
}

// summedIntensity computes the mean sample value over all channels,
// normalized to [0,1] (spec §4.4's "summed-intensity branch").
func summedIntensity(buf *frameBuf) float64 {
	if len(buf.pixels) == 0 {
		return 0
	}
	var sum float64
	for _, b := range buf.pixels {
		sum += float64(b)
	}
	return sum / float64(len(buf.pixels)) / 255
}

// rawBuffer returns buf's raw sensor payload, left-shifting 9-15 bpc
// 16-bit samples by (16-actualBPC) so black=0 and the sensor maximum lands
// just below 0xFFFF (0xFFF0 at 12 bpc) (spec §4.4
// raw-buffer branch, testable property 6 / scenario E6).
func rawBuffer(buf *frameBuf, actualBPC int) []byte {
	raw := append([]byte(nil), buf.raw...)
	if actualBPC <= 8 || actualBPC == 16 || len(raw) < 2 {
		return raw
	}

	samples := make([]uint16, len(raw)/2)
	for i := range samples {
		samples[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}
	postprocess.ShiftUp16(samples, actualBPC)
	for i, v := range samples {
		binary.LittleEndian.PutUint16(raw[i*2:], v)
	}
	return raw
}

// probeAndDequeue routes to the async (Recorder-fed) or sync (direct
// dequeue) path depending on whether a Recorder goroutine is active.
func (s *Session) probeAndDequeue(ctx context.Context, wait bool) (*frameBuf, int, error) {
	s.mu.Lock()
	active := s.grabberActive
	async := s.recorderCancel != nil
	s.mu.Unlock()
	if !active {
		return nil, StatusStopped, nil
	}
	if async {
		return s.probeAsync(ctx, wait)
	}
	return s.probeSync(ctx, wait)
}

// probeAsync reads from the Recorder-maintained current_frame_slot,
// optionally blocking on the session condition variable (spec §5
// "suspension points ... on the session's condition variable").
func (s *Session) probeAsync(ctx context.Context, wait bool) (*frameBuf, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.currentFrame == nil && wait {
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.cond.Broadcast()
			case <-done:
			}
		}()
		for s.currentFrame == nil && s.grabberActive && ctx.Err() == nil {
			s.cond.Wait()
		}
		close(done)
	}

	if !s.grabberActive {
		return nil, StatusStopped, nil
	}
	if s.currentFrame == nil {
		return nil, StatusNotReady, nil
	}
	return s.currentFrame, StatusReady, nil
}

// probeSync dequeues directly from the camera (no Recorder goroutine),
// applying the consumer-path drop-newest policy: while the DMA ring has
// more frames queued, re-enqueue the stale one and dequeue again, always
// ending at the newest frame (spec §4.4 "Drop policy").
func (s *Session) probeSync(ctx context.Context, wait bool) (*frameBuf, int, error) {
	dqMode := device.DequeuePoll
	if wait {
		dqMode = device.DequeueWait
	}

	var last *device.Frame
	dropped := 0
	for {
		f, err := s.cam.Dequeue(ctx, dqMode)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrDequeue, err)
		}
		if f == nil {
			if last == nil {
				return nil, StatusNotReady, nil
			}
			break
		}
		if last != nil {
			if err := s.cam.Enqueue(last); err != nil {
				return nil, 0, fmt.Errorf("%w: %v", ErrEnqueue, err)
			}
			dropped++
		}
		last = f

		s.mu.Lock()
		dropOn := s.dropFrames
		s.mu.Unlock()
		if !dropOn || f.FramesBehind == 0 {
			break
		}
		dqMode = device.DequeuePoll
	}

	pts := device.Normalize(s.clock, last.TimestampUsec)
	out, perr := s.proc.Process(last)
	rawCopy := append([]byte(nil), last.Image...)
	if err := s.cam.Enqueue(last); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrEnqueue, err)
	}
	if perr != nil {
		return nil, 0, perr
	}

	s.mu.Lock()
	s.frameCounter += int64(dropped) + 1 // one DMA dequeue per dropped frame plus the delivered one.
	s.nrFrames++
	s.nrDroppedFrames += int64(dropped)
	s.mu.Unlock()

	buf := &frameBuf{
		pixels:   append([]byte(nil), out.Pixels...),
		raw:      rawCopy,
		width:    out.Width,
		height:   out.Height,
		channels: out.Channels,
		pts:      pts,
		dropped:  dropped,
	}
	return buf, StatusReady, nil
}
