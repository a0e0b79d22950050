/*
DESCRIPTION
  sim.go provides a deterministic fake implementation of device.Camera,
  the way the teacher repo provides device.ManualInput as a fake AVDevice
  driven entirely by software rather than hardware. Camera is used by
  every test in probe, mode and session that needs a capability set and
  a controllable frame source without real Firewire hardware.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sim provides a software-only device.Camera used by tests.
package sim

import (
	"context"
	"errors"
	"sync"

	"github.com/ausocean/iidc/device"
)

// Camera is a fully in-memory device.Camera. Its capability set and frame
// feed are configured directly by test code; no field is touched by a
// real bus.
type Camera struct {
	mu sync.Mutex

	modes    []device.ModeCapability
	busSpeed device.BusSpeed
	vendor   string
	model    string

	isoSpeed      device.BusSpeed
	videoMode     device.VideoMode
	framerate     float64
	roi           [4]int // x, y, w, h
	packetSize    int
	dmaBuffers    int
	transmitting  bool
	broadcasting  bool
	triggerOn     bool
	hasTrigger    bool
	triggerMode   int
	triggerSource int
	triggerPol    device.TriggerPolarity
	featureModes  map[device.Feature]device.FeatureMode
	featureValues map[device.Feature]float64

	// queue is the simulated DMA ring: frames pushed by test code via
	// Feed, consumed by Dequeue in FIFO order.
	queue []*device.Frame
	ready chan struct{}

	closed bool
}

// New returns a new simulated Camera with the given vendor/model and mode
// capability set.
func New(vendor, model string, modes []device.ModeCapability) *Camera {
	return &Camera{
		modes:         modes,
		busSpeed:      device.BusSpeed400,
		vendor:        vendor,
		model:         model,
		featureModes:  make(map[device.Feature]device.FeatureMode),
		featureValues: make(map[device.Feature]float64),
		ready:         make(chan struct{}, 1024),
	}
}

// SetHasExternalTrigger configures whether the simulated camera exposes a
// trigger input (used to exercise the "Slave|Hw fails silently" rule).
func (c *Camera) SetHasExternalTrigger(v bool) { c.hasTrigger = v }

// Feed pushes a frame into the simulated DMA ring, as if the camera's
// isochronous receive engine had just filled it.
func (c *Camera) Feed(f *device.Frame) {
	c.mu.Lock()
	c.queue = append(c.queue, f)
	c.mu.Unlock()
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// QueueLen reports how many frames are currently queued, for test
// assertions about frames_behind / drop counting.
func (c *Camera) QueueLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Camera) Modes() ([]device.ModeCapability, error) { return c.modes, nil }

func (c *Camera) BusSpeed() (device.BusSpeed, error) { return c.busSpeed, nil }

func (c *Camera) SetISOSpeed(s device.BusSpeed) error {
	c.isoSpeed = s
	return nil
}

func (c *Camera) SetVideoMode(m device.VideoMode) error {
	c.videoMode = m
	return nil
}

func (c *Camera) SetFramerate(fps float64) error {
	c.framerate = fps
	return nil
}

func (c *Camera) SetFormat7ROI(mode device.VideoMode, x, y, w, h int) error {
	c.roi = [4]int{x, y, w, h}
	return nil
}

func (c *Camera) SetPacketSize(mode device.VideoMode, bytes int) error {
	c.packetSize = bytes
	return nil
}

func (c *Camera) SetupDMA(buffers int) error {
	if buffers < 1 {
		return errors.New("sim: dma buffers must be >= 1")
	}
	c.dmaBuffers = buffers
	return nil
}

func (c *Camera) StopDMA() error {
	c.mu.Lock()
	c.queue = nil
	c.mu.Unlock()
	return nil
}

func (c *Camera) Dequeue(ctx context.Context, mode device.DequeueMode) (*device.Frame, error) {
	for {
		c.mu.Lock()
		if len(c.queue) > 0 {
			f := c.queue[0]
			c.queue = c.queue[1:]
			f.FramesBehind = len(c.queue)
			c.mu.Unlock()
			return f, nil
		}
		c.mu.Unlock()

		if mode == device.DequeuePoll {
			return nil, nil
		}

		select {
		case <-c.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Camera) Enqueue(*device.Frame) error { return nil }

func (c *Camera) SetTransmission(enable bool) error {
	c.transmitting = enable
	return nil
}

// Transmitting reports the last value passed to SetTransmission, for test
// assertions about sync-start/stop sequencing.
func (c *Camera) Transmitting() bool { return c.transmitting }

func (c *Camera) SetBroadcast(enable bool) error {
	c.broadcasting = enable
	return nil
}

// Broadcasting reports the last value passed to SetBroadcast.
func (c *Camera) Broadcasting() bool { return c.broadcasting }

func (c *Camera) SetExternalTrigger(enable bool) error {
	c.triggerOn = enable
	return nil
}

func (c *Camera) HasExternalTrigger() bool { return c.hasTrigger }

func (c *Camera) SetTriggerMode(mode int) error {
	c.triggerMode = mode
	return nil
}

func (c *Camera) SetTriggerSource(source int) error {
	c.triggerSource = source
	return nil
}

func (c *Camera) SetTriggerPolarity(p device.TriggerPolarity) error {
	c.triggerPol = p
	return nil
}

func (c *Camera) TriggerSources() ([]int, error) { return []int{0, 1}, nil }

func (c *Camera) SetFeature(f device.Feature, v float64) (float64, error) {
	prev := c.featureValues[f]
	c.featureValues[f] = v
	c.featureModes[f] = device.FeatureModeManual
	return prev, nil
}

func (c *Camera) SetFeatureMode(f device.Feature, m device.FeatureMode) error {
	c.featureModes[f] = m
	return nil
}

func (c *Camera) FeatureRange(device.Feature) (float64, float64, error) {
	return 0, 1023, nil
}

func (c *Camera) BandwidthUsage() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.packetSize) / 4915, nil
}

func (c *Camera) VendorName() string { return c.vendor }
func (c *Camera) ModelName() string  { return c.model }

func (c *Camera) PowerOn() error  { return nil }
func (c *Camera) PowerOff() error { return nil }
func (c *Camera) Reset() error    { return nil }

func (c *Camera) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (c *Camera) Closed() bool { return c.closed }

// Library is a trivial device.Library that enumerates a fixed set of
// cameras, mirroring how a real dc1394 library handle would be populated
// once by bus enumeration.
type Library struct {
	Cameras []device.Camera
}

func (l *Library) Enumerate() ([]device.Camera, error) { return l.Cameras, nil }

func (l *Library) Teardown() error { return nil }
