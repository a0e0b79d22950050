/*
DESCRIPTION
  session.go implements the Capture Session's slot-array lifecycle: the
  Engine (lazy-init library handle + fixed-size Session slot array, spec
  §3 "Global library state") and Session.Open/Close (spec §4.4). Start,
  Stop, PullFrame, GetImage and SetParameter live in their own files.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package session implements the Capture Session and Recorder
// goroutine: the engine that owns an open camera, its DMA ring, the
// negotiated capture parameters, the single-slot consumer handoff
// buffer, and multi-camera synchronization.
package session

import (
	"fmt"
	"sync"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/encoder"
	"github.com/ausocean/iidc/postprocess"
)

// NumSlots is the fixed size of the Engine's Session slot array (spec §3:
// "N small and fixed").
const NumSlots = 16

// Engine owns the lazily-initialized device.Library handle and the fixed
// Session slot array (spec §3 "Global library state"). One Engine is
// normally shared process-wide, mirroring how the teacher repo avoids
// package-level mutable state beyond what a physical resource forces.
type Engine struct {
	mu      sync.Mutex
	newLib  func() (device.Library, error)
	lib     device.Library
	libInit bool
	slots   [NumSlots]*Session
	log     logging.Logger
}

// NewEngine returns an Engine that lazily constructs its device.Library
// via newLib on first Open.
func NewEngine(newLib func() (device.Library, error), log logging.Logger) *Engine {
	return &Engine{newLib: newLib, log: log}
}

func (e *Engine) library() (device.Library, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.libInit {
		return e.lib, nil
	}
	lib, err := e.newLib()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLibraryInit, err)
	}
	e.lib, e.libInit = lib, true
	return e.lib, nil
}

// Teardown closes every open session and releases the library handle
// (spec §3: "teardown closes all sessions and releases the library
// handle").
func (e *Engine) Teardown() error {
	e.mu.Lock()
	slots := e.slots
	e.mu.Unlock()

	var firstErr error
	for _, s := range slots {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.libInit {
		if err := e.lib.Teardown(); err != nil && firstErr == nil {
			firstErr = err
		}
		e.libInit = false
		e.lib = nil
	}
	return firstErr
}

// frameBuf is one owned, caller-visible pixel buffer (spec §3
// current_frame_slot / pulled_frame).
type frameBuf struct {
	pixels        []byte
	raw           []byte // Pre-postprocessing sensor payload, for get_image's raw-buffer branch.
	width, height int
	channels      int
	pts           float64
	dropped       int
}

// recordingState wraps the optional encoder.Sink a Session forwards
// frames to while recording is active (spec §3 "recording").
type recordingState struct {
	active   bool
	sink     encoder.Sink
	spec     codecSpec
	flags    RecordingFlags
}

// Session is one open camera (spec §3 "Session"), addressed by the slot
// index Engine.Open returned it at.
type Session struct {
	mu   sync.Mutex
	cond *sync.Cond

	engine *Engine
	index  int
	valid  bool

	cam   device.Camera
	clock device.Clock

	requested Request
	negotiated negotiatedState
	syncRole  device.SyncRole

	proc *postprocess.Processor

	grabberActive bool
	dropFrames    bool

	currentFrame *frameBuf
	probedFrame  *frameBuf
	pulledFrame  *frameBuf

	frameCounter    int64
	nrFrames        int64
	nrGfxFrames     int64
	nrDroppedFrames int64

	decompress timingStat
	gfx        timingStat

	recording recordingState

	recorderErr    chan error
	recorderCancel func()
	recorderWG     sync.WaitGroup

	wg           sync.WaitGroup // Background watchers only (see watcher.go); recorderWG is separate to avoid Stop() blocking on them.
	watchDone    chan struct{}
	bayerWatcher interface{ Close() error }

	deliveryDisabled bool
}

// negotiatedState is the Mode Selector's output in effect for this
// session (spec §3 "negotiated"). The bayer pattern override is held in
// requested and in the Processor, not here.
type negotiatedState struct {
	mode         device.VideoMode
	colorCoding  device.ColorCoding
	framerate    float64
	packetSize   int
	x, y, w, h   int
	actualLayers int
	actualBPC    int
}

func (s *Session) log() logging.Logger {
	if s.requested.Logger != nil {
		return s.requested.Logger
	}
	return s.engine.log
}

// Open implements spec §4.4 "open": enumerates cameras, selects
// device_index, powers it on and resets it. Streaming is not started.
func (e *Engine) Open(req Request) (*Session, error) {
	if err := req.Validate(e.log); err != nil {
		return nil, err
	}

	lib, err := e.library()
	if err != nil {
		return nil, err
	}

	cams, err := lib.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCameras, err)
	}
	if len(cams) == 0 {
		return nil, ErrNoCameras
	}
	if req.DeviceIndex < 0 || req.DeviceIndex >= len(cams) {
		return nil, fmt.Errorf("%w: index %d, %d cameras enumerated", ErrBadIndex, req.DeviceIndex, len(cams))
	}
	cam := cams[req.DeviceIndex]

	if err := cam.PowerOn(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCameraInitFailed, err)
	}
	if err := cam.Reset(); err != nil {
		cam.PowerOff()
		return nil, fmt.Errorf("%w: %v", ErrCameraInitFailed, err)
	}

	e.mu.Lock()
	slot := -1
	for i, s := range e.slots {
		if s == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		e.mu.Unlock()
		cam.PowerOff()
		return nil, fmt.Errorf("%w: no free session slots", ErrConfig)
	}

	s := &Session{
		engine:    e,
		index:     slot,
		valid:     true,
		cam:       cam,
		clock:     &device.SystemClock{},
		requested: req,
		watchDone: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	e.slots[slot] = s
	e.mu.Unlock()

	if req.TargetMovie != "" {
		s.recording.spec = parseTargetMovie(req.TargetMovie)
		s.recording.flags = req.RecordingFlags
	}

	if w, err := s.startBayerWatch(req.BayerOverridePath); err != nil {
		s.log().Warning("could not start bayer override watch", "error", err.Error())
	} else if w != nil {
		s.bayerWatcher = w
	}

	return s, nil
}

// Index returns the slot this session occupies (the "handle").
func (s *Session) Index() int { return s.index }

// Close implements spec §4.4 "close": stops if still running, powers the
// camera off, frees it, and marks the slot invalid.
func (s *Session) Close() error {
	s.mu.Lock()
	if !s.valid {
		s.mu.Unlock()
		return ErrBadIndex
	}
	active := s.grabberActive
	s.mu.Unlock()

	if active {
		if err := s.Stop(); err != nil {
			s.log().Error("stop during close failed", "error", err.Error())
		}
	}

	close(s.watchDone)
	if s.bayerWatcher != nil {
		s.bayerWatcher.Close()
	}
	s.wg.Wait()

	err := s.cam.PowerOff()
	s.cam.Close()

	s.engine.mu.Lock()
	s.engine.slots[s.index] = nil
	s.engine.mu.Unlock()

	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()

	return err
}
