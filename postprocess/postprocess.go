/*
DESCRIPTION
  postprocess.go implements the Frame Post-Processor (spec §4.3):
  converting one dequeued DMA frame into the consumer-visible pixel
  buffer, either by aliasing the DMA buffer directly (passthrough) or by
  writing into an internally held scratch frame (debayer / YUV->RGB).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package postprocess converts a dequeued DMA frame into the
// consumer-visible pixel buffer: passthrough, Bayer debayering, or
// YUV->RGB conversion, plus the 9-15 bpc left-shift applied to raw/mono
// payloads before they reach an encoder or raw-buffer consumer.
package postprocess

import (
	"fmt"

	"github.com/ausocean/iidc/device"
)

// Errors matching spec §4.3 / §7's taxonomy.
var (
	ErrInvalidBayerPattern = fmt.Errorf("postprocess: invalid bayer pattern")
	ErrInvalidDebayerMethod = fmt.Errorf("postprocess: invalid debayer method")
)

// Frame is the post-processor's output: a pointer into either the DMA
// buffer (passthrough) or the scratch frame.
type Frame struct {
	Pixels        []byte
	Width, Height int
	Channels      int // 1 or 3.
}

// Processor holds the scratch frame state for one Session. A scratch
// frame is allocated once at Session.Start iff actual_layers == 3 and the
// negotiated coding is neither RGB8 nor RGB16 (spec §4.3), and freed at
// Stop.
type Processor struct {
	NegotiatedCoding     device.ColorCoding
	ActualLayers         int
	DebayerMethod        DebayerMethod
	BayerPatternOverride int

	scratch []byte
	width   int
	height  int
}

// NeedsScratch reports whether p's configuration requires a scratch
// frame, per spec §4.3.
func (p *Processor) NeedsScratch() bool {
	return p.ActualLayers == 3 &&
		p.NegotiatedCoding != device.ColorCodingRGB8 &&
		p.NegotiatedCoding != device.ColorCodingRGB16
}

// Allocate reserves the scratch frame for width x height RGB8 output.
// Called once at Session.Start.
func (p *Processor) Allocate(width, height int) {
	if !p.NeedsScratch() {
		return
	}
	p.width, p.height = width, height
	p.scratch = make([]byte, width*height*3)
}

// Free releases the scratch frame. Called at Session.Stop.
func (p *Processor) Free() {
	p.scratch = nil
}

// Process converts f into the consumer-visible Frame. If no scratch frame
// is held, the result aliases f.Image directly (passthrough, spec §4.3
// "native RGB at 8 or 16 bpc").
func (p *Processor) Process(f *device.Frame) (Frame, error) {
	if p.scratch == nil {
		return Frame{Pixels: f.Image, Width: f.Width, Height: f.Height, Channels: channelsFor(f.ColorCoding)}, nil
	}

	coding := f.ColorCoding
	if coding == device.ColorCodingUnknown {
		coding = p.NegotiatedCoding
	}

	switch {
	case coding.IsRaw() || coding.IsMono():
		pattern := f.ColorFilter
		if !validBayerPattern(pattern) {
			pattern = p.BayerPatternOverride
			if !validBayerPattern(pattern) {
				return Frame{}, ErrInvalidBayerPattern
			}
		}
		if err := debayer(f.Image, p.scratch, f.Width, f.Height, pattern, p.DebayerMethod); err != nil {
			return Frame{}, err
		}
	case coding.IsYUV():
		if err := yuvToRGB(f.Image, p.scratch, f.Width, f.Height, coding); err != nil {
			return Frame{}, err
		}
	default:
		copy(p.scratch, f.Image)
	}

	return Frame{Pixels: p.scratch, Width: f.Width, Height: f.Height, Channels: 3}, nil
}

func channelsFor(c device.ColorCoding) int {
	if c.IsMono() || c.IsRaw() {
		return 1
	}
	return 3
}

// ShiftUp16 left-shifts every uint16 sample in place by (16-actualBitDepth)
// so that the top bits carry the sample, black=0, and the sensor maximum
// lands just below 0xFFFF with its low bits zero (0x0FFF becomes 0xFFF0 at
// 12 bpc) (spec testable property 6 / scenario E6). Valid for actualBitDepth in [9,15];
// 8 and 16 bit payloads are untouched.
func ShiftUp16(samples []uint16, actualBitDepth int) {
	if actualBitDepth < 9 || actualBitDepth > 15 {
		return
	}
	shift := uint(16 - actualBitDepth)
	for i, v := range samples {
		samples[i] = v << shift
	}
}
