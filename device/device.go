/*
DESCRIPTION
  device.go defines Camera, the abstract capability surface of an
  IIDC-compliant IEEE-1394 Firewire machine-vision camera. Everything
  above this package (probe, mode, session) talks to a camera only
  through this interface; the concrete libdc1394-equivalent binding is
  intentionally out of scope (see device/sim for the fake used by tests).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package device provides the abstract IIDC camera surface (enumeration,
// mode/colour-coding/framerate/Format-7 parameters, DMA dequeue/enqueue,
// transmission and trigger control, feature access) that the rest of this
// module is built on, plus a bus-speed table and the multi-camera sync-role
// state machine.
package device

import (
	"context"
	"fmt"
)

// ColorCoding enumerates the IIDC pixel encodings this engine understands.
// Values are a dense range so they can be used directly as slice indices,
// mirroring the way the original dc1394 bindings expose a MIN..MAX enum.
type ColorCoding int

const (
	ColorCodingUnknown ColorCoding = iota
	ColorCodingMono8
	ColorCodingMono16
	ColorCodingRaw8
	ColorCodingRaw16
	ColorCodingRGB8
	ColorCodingRGB16
	ColorCodingYUV422
	ColorCodingYUV411
)

func (c ColorCoding) String() string {
	switch c {
	case ColorCodingMono8:
		return "MONO8"
	case ColorCodingMono16:
		return "MONO16"
	case ColorCodingRaw8:
		return "RAW8"
	case ColorCodingRaw16:
		return "RAW16"
	case ColorCodingRGB8:
		return "RGB8"
	case ColorCodingRGB16:
		return "RGB16"
	case ColorCodingYUV422:
		return "YUV422"
	case ColorCodingYUV411:
		return "YUV411"
	default:
		return "UNKNOWN"
	}
}

// IsRaw reports whether c is one of the Bayer-filtered raw codings.
func (c ColorCoding) IsRaw() bool { return c == ColorCodingRaw8 || c == ColorCodingRaw16 }

// IsMono reports whether c is one of the single-channel monochrome codings.
func (c ColorCoding) IsMono() bool { return c == ColorCodingMono8 || c == ColorCodingMono16 }

// IsYUV reports whether c is one of the YUV codings.
func (c ColorCoding) IsYUV() bool { return c == ColorCodingYUV422 || c == ColorCodingYUV411 }

// IsRGB reports whether c is a native RGB coding.
func (c ColorCoding) IsRGB() bool { return c == ColorCodingRGB8 || c == ColorCodingRGB16 }

// BitsPerChannel returns the nominal per-channel bit depth that coding is
// carried in (8 for the 8-bit variants, 16 for the 16-bit-container
// variants -- the true sensor depth may be smaller, see
// ModeCapability.ActualBitDepth).
func (c ColorCoding) BitsPerChannel() int {
	switch c {
	case ColorCodingMono16, ColorCodingRaw16, ColorCodingRGB16:
		return 16
	default:
		return 8
	}
}

// VideoMode identifies one camera-advertised mode. Fixed (non-Format-7)
// modes and Format-7 modes share this type; IsFormat7 distinguishes them.
type VideoMode struct {
	ID        int  // Opaque camera-scoped identifier (dc1394video_mode_t equivalent).
	IsFormat7 bool
	Width     int // Maximum width for this mode (F7) or fixed width (non-F7).
	Height    int
}

// BusSpeed is the IEEE-1394 isochronous bus speed code, as reported by the
// camera, in units of 100 Mb/s steps starting at 2^0.
type BusSpeed int

const (
	BusSpeed100 BusSpeed = iota
	BusSpeed200
	BusSpeed400
	BusSpeed800
	BusSpeed1600
	BusSpeed3200
)

// BusPeriod returns the isochronous cycle period, in seconds, for the given
// bus speed. This table is a fixed part of the wire contract (see spec
// §4.1 / §6): 100, 200, 400, 800, 1600, 3200 Mb/s map to 500, 250, 125,
// 62.5, 31.25, 15.625 microseconds respectively.
func BusPeriod(s BusSpeed) (float64, error) {
	switch s {
	case BusSpeed100:
		return 500e-6, nil
	case BusSpeed200:
		return 250e-6, nil
	case BusSpeed400:
		return 125e-6, nil
	case BusSpeed800:
		return 62.5e-6, nil
	case BusSpeed1600:
		return 31.25e-6, nil
	case BusSpeed3200:
		return 15.625e-6, nil
	default:
		return 0, fmt.Errorf("device: unknown bus speed code %d", s)
	}
}

// Format7Info describes the programmable parameters of a single Format-7
// mode: the packet-size boundaries and the per-pixel payload depth used in
// the packet-size arithmetic of spec §4.2.
type Format7Info struct {
	PacketSizeMin int
	PacketSizeMax int
	DepthBPP      int // Bits per pixel of the mode's raw payload.
	MaxWidth      int
	MaxHeight     int
	ColorCoding   ColorCoding
}

// ModeCapability is everything the Capability Probe needs to know about one
// advertised video mode.
type ModeCapability struct {
	Mode        VideoMode
	ColorCoding ColorCoding

	// DataDepth is the camera-reported true per-channel sensor depth for
	// this mode, 8..16. For an 8-bit coding this is always 8; for a
	// 16-bit-container coding it may be anywhere from 9 to 16, reflecting
	// the sensor's actual payload (spec §4.2 bit-depth reconciliation).
	// Zero means "same as ColorCoding.BitsPerChannel()".
	DataDepth int

	// Framerates holds the fixed-mode framerate table (empty for
	// Format-7 modes, which instead populate Format7).
	Framerates []float64

	// Format7 is populated iff Mode.IsFormat7.
	Format7 Format7Info
}

// ActualBitDepth returns m.DataDepth if set, otherwise the coding's
// nominal per-channel depth.
func (m ModeCapability) ActualBitDepth() int {
	if m.DataDepth != 0 {
		return m.DataDepth
	}
	return m.ColorCoding.BitsPerChannel()
}

// Feature identifies a controllable camera feature (§6 set_parameter).
type Feature int

const (
	FeatureBrightness Feature = iota
	FeatureGain
	FeatureExposure
	FeatureShutter
	FeatureSharpness
	FeatureSaturation
	FeatureGamma
)

// FeatureMode selects manual or automatic control of a Feature.
type FeatureMode int

const (
	FeatureModeManual FeatureMode = iota
	FeatureModeAuto
)

// TriggerPolarity is the electrical polarity of an external trigger input.
type TriggerPolarity int

const (
	TriggerActiveLow TriggerPolarity = iota
	TriggerActiveHigh
)

// Frame is one dequeued DMA buffer, borrowed from the camera's DMA ring.
// The caller must return it via Camera.Enqueue exactly once.
type Frame struct {
	Image         []byte      // Raw payload, owned by the DMA ring until Enqueue.
	ColorCoding   ColorCoding // Actual per-frame coding (may be unknown on fixed modes; see ColorFilter).
	ColorFilter   int         // Bayer filter code reported by the camera, or an out-of-range sentinel if unknown.
	Width, Height int
	TimestampUsec int64 // Host wall-clock microseconds at dequeue, per the camera's DMA engine.
	FramesBehind  int   // Number of additional frames already queued in the DMA ring.
}

// DequeueMode selects blocking behaviour for Camera.Dequeue.
type DequeueMode int

const (
	DequeuePoll DequeueMode = iota
	DequeueWait
)

// Camera is the abstract IIDC capability and control surface (spec §6).
// Every method that can fail returns an error; there is no panic-based
// error signalling anywhere in this interface.
type Camera interface {
	// Modes enumerates every video mode the camera advertises.
	Modes() ([]ModeCapability, error)

	// BusSpeed returns the camera's current isochronous bus speed.
	BusSpeed() (BusSpeed, error)

	// SetISOSpeed programs the isochronous bus speed to use for capture.
	SetISOSpeed(BusSpeed) error

	// SetVideoMode programs the fixed video mode (no-op for Format-7 modes,
	// which are programmed via SetFormat7ROI/SetPacketSize instead).
	SetVideoMode(VideoMode) error

	// SetFramerate programs one of the fixed-mode framerate table entries.
	SetFramerate(fps float64) error

	// SetFormat7ROI programs the Format-7 region of interest.
	SetFormat7ROI(mode VideoMode, x, y, w, h int) error

	// SetPacketSize programs the Format-7 isochronous packet size.
	SetPacketSize(mode VideoMode, bytes int) error

	// SetupDMA allocates the DMA ring with the given number of buffers.
	SetupDMA(buffers int) error

	// StopDMA releases the DMA ring.
	StopDMA() error

	// Dequeue borrows one frame from the DMA ring. DequeuePoll returns
	// immediately with (nil, nil) if no frame is ready; DequeueWait blocks
	// until one is, or ctx is done.
	Dequeue(ctx context.Context, mode DequeueMode) (*Frame, error)

	// Enqueue returns a previously dequeued frame to the DMA ring. Every
	// successful Dequeue must be matched by exactly one Enqueue.
	Enqueue(*Frame) error

	// SetTransmission enables or disables isochronous data transmission.
	SetTransmission(enable bool) error

	// SetBroadcast enables or disables bus-wide broadcast of subsequent
	// control commands (used only by a sync master in Bus mode).
	SetBroadcast(enable bool) error

	// SetExternalTrigger powers the external-trigger input on or off.
	SetExternalTrigger(enable bool) error

	// HasExternalTrigger reports whether the camera exposes a trigger
	// input at all (used to fail Slave|Hw silently per spec §4.5).
	HasExternalTrigger() bool

	// SetTriggerMode, SetTriggerSource and SetTriggerPolarity configure an
	// already-powered external trigger.
	SetTriggerMode(mode int) error
	SetTriggerSource(source int) error
	SetTriggerPolarity(TriggerPolarity) error
	TriggerSources() ([]int, error)

	// SetFeature sets a manual feature value; SetFeatureMode switches a
	// feature between manual and automatic control.
	SetFeature(Feature, float64) (prev float64, err error)
	SetFeatureMode(Feature, FeatureMode) error
	FeatureRange(Feature) (min, max float64, err error)

	// BandwidthUsage returns the camera's current raw bus bandwidth
	// consumption, in the same units as the §6 4915-denominator fraction.
	BandwidthUsage() (float64, error)

	// VendorName and ModelName identify the physical camera.
	VendorName() string
	ModelName() string

	// PowerOn and PowerOff control the camera's power state; Reset issues
	// a camera-level reset. Close releases the underlying handle.
	PowerOn() error
	PowerOff() error
	Reset() error
	Close() error
}

// Library is the lazily-initialized IIDC library handle shared by every
// open Session (spec §3 "Global library state"). Enumerate returns one
// Camera per physical device currently visible on the bus.
type Library interface {
	Enumerate() ([]Camera, error)
	Teardown() error
}
