/*
DESCRIPTION
  recorder.go implements the Recorder goroutine (spec §4.4/§5): the
  background loop that polls the DMA ring, post-processes each dequeued
  frame, forwards it to the encoder sink (no drop, capture order), and
  overwrites the single-slot consumer handoff buffer (drop-newest). A
  goroutine + context.Context + sync.WaitGroup stands in for spec §5's
  "joinable thread", the same shape as the teacher's revid.Revid.wg /
  r.stop chan struct{} pairing.

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
	"fmt"
	"time"

	"github.com/ausocean/iidc/device"
)

// Poll intervals between empty DMA polls (spec §5: "1 ms in low-latency
// mode, 4 ms otherwise").
const (
	pollIntervalLowLatency = time.Millisecond
	pollIntervalDefault    = 4 * time.Millisecond
)

// runRecorder is the Recorder goroutine body, spawned by Start when
// RecordingFlags&FlagAsync is set. It exits when ctx is canceled (by
// Stop) or on a fatal Dequeue/Enqueue error, which it reports on
// s.recorderErr before returning.
func (s *Session) runRecorder(ctx context.Context) {
	defer s.recorderWG.Done()

	interval := pollIntervalDefault
	s.mu.Lock()
	if s.dropFrames {
		interval = pollIntervalLowLatency
	}
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := s.clock.MonotonicSeconds()
		f, err := s.cam.Dequeue(ctx, device.DequeuePoll)
		if err != nil {
			s.reportFatal(fmt.Errorf("%w: %v", ErrDequeue, err))
			return
		}
		if f == nil {
			time.Sleep(interval)
			continue
		}

		pts := device.Normalize(s.clock, f.TimestampUsec)
		dropped := f.FramesBehind

		out, perr := s.proc.Process(f)
		rawCopy := append([]byte(nil), f.Image...)
		if err := s.cam.Enqueue(f); err != nil {
			s.reportFatal(fmt.Errorf("%w: %v", ErrEnqueue, err))
			return
		}
		if perr != nil {
			s.log().Error("post-process failed", "error", perr.Error())
			continue
		}

		elapsed := s.clock.MonotonicSeconds() - start
		buf := &frameBuf{
			pixels:   append([]byte(nil), out.Pixels...),
			raw:      rawCopy,
			width:    out.Width,
			height:   out.Height,
			channels: out.Channels,
			pts:      pts,
			dropped:  dropped,
		}

		s.mu.Lock()
		s.currentFrame = buf // overwrite-on-produce, spec §4.4 drop policy (recorder path).
		s.frameCounter++
		s.nrFrames++
		s.nrDroppedFrames += int64(dropped)
		s.decompress.add(elapsed)
		deliveryDisabled := s.deliveryDisabled
		s.mu.Unlock()

		if !deliveryDisabled {
			s.cond.Signal()
		}

		if s.recording.active {
			wbuf, err := s.recording.sink.GetWritableBuffer()
			if err != nil {
				s.log().Error("encoder buffer unavailable", "error", err.Error())
				continue
			}
			copy(wbuf, buf.pixels)
			if err := s.recording.sink.CommitFrame(wbuf); err != nil {
				s.log().Error("encoder commit failed", "error", err.Error())
			}
		}
	}
}

func (s *Session) reportFatal(err error) {
	select {
	case s.recorderErr <- err:
	default:
	}
}
