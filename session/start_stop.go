/*
DESCRIPTION
  start_stop.go implements spec §4.4's start()/stop() contracts: mode
  negotiation, camera programming, DMA setup, transmission enable/disable
  via the sync-role state machine, scratch-frame allocation, encoder
  open/finalize, and Recorder goroutine spawn/join.

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
	"github.com/ausocean/iidc/encoder"
	"github.com/ausocean/iidc/mode"
	"github.com/ausocean/iidc/postprocess"
	"github.com/ausocean/iidc/probe"
)

// Start implements spec §4.4 "start(capturerate, dropframes,
// startattime)". newSink, if non-nil, is used as the recording Sink when
// req.TargetMovie was set at Open; tests supply an encoder.FileSink (or
// nil to exercise the non-recording path).
func (s *Session) Start(capturerate float64, dropFrames bool, startAt time.Time, newSink func() encoder.Sink) error {
	s.mu.Lock()
	if !s.valid {
		s.mu.Unlock()
		return ErrBadIndex
	}
	if s.grabberActive {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	req := s.requested
	s.syncRole = device.SyncRole(req.SyncRole)
	s.mu.Unlock()

	if err := device.ValidateSyncRole(s.syncRole); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}

	caps, err := probe.Probe(s.cam)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBusSpeedQuery, err)
	}

	req.CaptureRate = capturerate
	mreq := req.modeRequest()
	sel, warnings, err := mode.Select(mreq, caps)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	for _, w := range warnings {
		s.log().Warning(w)
	}

	if err := s.cam.SetISOSpeed(caps.BusSpeed); err != nil {
		return fmt.Errorf("%w: %v", ErrCameraInitFailed, err)
	}

	if sel.Mode.IsFormat7 {
		if err := s.cam.SetFormat7ROI(sel.Mode, sel.X, sel.Y, sel.W, sel.H); err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		if err := s.cam.SetPacketSize(sel.Mode, sel.PacketSize); err != nil {
			return fmt.Errorf("%w: %v", ErrPacketSizeOutOfRange, err)
		}
	} else {
		if err := s.cam.SetVideoMode(sel.Mode); err != nil {
			return fmt.Errorf("%w: %v", ErrCameraInitFailed, err)
		}
		if err := s.cam.SetFramerate(sel.Framerate); err != nil {
			return fmt.Errorf("%w: %v", ErrCameraInitFailed, err)
		}
	}

	dmaBuffers := req.DMABuffers
	if dmaBuffers == 0 {
		dmaBuffers = DefaultDMABuffers
	}
	if err := s.cam.SetupDMA(dmaBuffers); err != nil {
		return fmt.Errorf("%w: %v", ErrDMASetup, err)
	}

	if !startAt.IsZero() {
		if d := time.Until(startAt); d > 0 {
			time.Sleep(d)
		}
	}

	proc := &postprocess.Processor{
		NegotiatedCoding:     sel.ColorCoding,
		ActualLayers:         sel.ActualLayers,
		DebayerMethod:        req.DebayerMethod,
		BayerPatternOverride: req.BayerPatternOverride,
	}
	proc.Allocate(sel.W, sel.H)

	s.mu.Lock()
	s.negotiated = negotiatedState{
		mode:         sel.Mode,
		colorCoding:  sel.ColorCoding,
		framerate:    sel.Framerate,
		packetSize:   sel.PacketSize,
		x:            sel.X,
		y:            sel.Y,
		w:            sel.W,
		h:            sel.H,
		actualLayers: sel.ActualLayers,
		actualBPC:    sel.ActualBitDepth,
	}
	s.proc = proc
	s.dropFrames = dropFrames
	s.deliveryDisabled = req.RecordingFlags&FlagDeliveryDisabled != 0
	s.decompress.reset()
	s.gfx.reset()
	s.frameCounter, s.nrFrames, s.nrGfxFrames, s.nrDroppedFrames = 0, 0, 0, 0
	s.mu.Unlock()

	if err := s.syncStart(); err != nil {
		s.cam.StopDMA()
		return fmt.Errorf("%w: %v", ErrTransmissionStart, err)
	}

	s.mu.Lock()
	s.grabberActive = true
	s.mu.Unlock()

	if s.recording.spec.Path != "" && newSink != nil {
		sink := newSink()
		channels := 3
		if sel.ActualLayers == 1 {
			channels = 1
		}
		if err := sink.Open(s.recording.spec.Path, sel.W, sel.H, sel.Framerate, channels, sel.ActualBitDepth, s.recording.spec.encoderSpec()); err != nil {
			s.syncStop()
			s.cam.StopDMA()
			s.mu.Lock()
			s.grabberActive = false
			s.mu.Unlock()
			return fmt.Errorf("%w: %v", ErrRecording, err)
		}
		s.recording.sink = sink
		s.recording.active = true
	}

	if req.RecordingFlags&FlagAsync != 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.recorderCancel = cancel
		s.recorderErr = make(chan error, 1)
		s.recorderWG.Add(1)
		go s.runRecorder(ctx)
	}

	return nil
}

// Stop implements spec §4.4 "stop()": disables transmission per the sync
// role, joins the Recorder goroutine if any, finalizes the encoder, frees
// the scratch frame and any outstanding buffers, and emits a stats
// summary.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.valid {
		s.mu.Unlock()
		return ErrBadIndex
	}
	if !s.grabberActive {
		s.mu.Unlock()
		return nil
	}
	s.grabberActive = false
	s.mu.Unlock()

	if err := s.syncStop(); err != nil {
		s.log().Error("sync stop sequence failed", "error", err.Error())
	}

	if s.recorderCancel != nil {
		s.recorderCancel()
		s.recorderWG.Wait()
		select {
		case err := <-s.recorderErr:
			if err != nil {
				s.log().Error("recorder goroutine exited with error", "error", err.Error())
			}
		default:
		}
		s.recorderCancel = nil
	}

	if err := s.cam.StopDMA(); err != nil {
		s.log().Error("stop dma failed", "error", err.Error())
	}

	if s.recording.active {
		if err := s.recording.sink.Finalize(); err != nil {
			s.log().Error("encoder finalize failed", "error", err.Error())
		}
		s.recording.active = false
	}

	s.mu.Lock()
	if s.proc != nil {
		s.proc.Free()
	}
	s.currentFrame = nil
	s.pulledFrame = nil
	decompressAvg := s.decompress.mean()
	gfxAvg := s.gfx.mean()
	frames := s.frameCounter
	dropped := s.nrDroppedFrames
	s.mu.Unlock()

	s.log().Info("session stopped",
		"frames", frames,
		"dropped", dropped,
		"avg_decompresstime", decompressAvg,
		"avg_gfxtime", gfxAvg,
	)
	return nil
}

// AvgDecompressTime and AvgGfxTime report the running averages computed
// during the session's last Start/Stop cycle (spec §4.4 "Statistics").
func (s *Session) AvgDecompressTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decompress.mean()
}

func (s *Session) AvgGfxTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gfx.mean()
}

// FrameStats reports frameCounter (every DMA dequeue attempted during the
// session's last Start/Stop cycle, including ones subsequently dropped)
// and nrDroppedFrames (the subset of those discarded under the
// drop-newest policy), per spec §5's counters.
func (s *Session) FrameStats() (frames, dropped int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameCounter, s.nrDroppedFrames
}
