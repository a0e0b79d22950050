/*
DESCRIPTION
  types.go defines the Mode Selector's inputs and outputs (spec §4.2):
  Request (the caller's constraints), Selection (the negotiated result)
  and the "standard" ROI/framerate lists used by the preference gate.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mode implements the Mode Selector: given a camera's capability
// set and a user request, it chooses (video_mode, color_coding, ROI,
// framerate, packet_size) across the two IIDC mode families -- fixed
// modes and Format-7 -- per spec §4.2.
package mode

import (
	"math"

	"github.com/ausocean/iidc/device"
)

// FastestFPS is the request sentinel meaning "pick the fastest available
// framerate" (spec's DBL_MAX).
const FastestFPS = math.MaxFloat64

// Request is the caller's mode-negotiation constraints (the subset of
// session.Request the selector needs).
type Request struct {
	ReqLayers            int // 0..5, see spec §3/§4.2.
	BitDepth             int // 8 or 16.
	DataConversionMode   int // 0..4.
	DebayerMethod        int
	BayerPatternOverride int
	PreferFormat7        bool

	// ROI. The all-zero/unit rectangle (x=0,y=0,w<=1,h<=1) is the "don't
	// care" sentinel, per spec §3.
	X, Y, W, H int

	TargetFPS float64
}

// roiDontCare reports whether r's ROI is the "don't care" sentinel.
func (r Request) roiDontCare() bool {
	return r.X == 0 && r.Y == 0 && r.W <= 1 && r.H <= 1
}

// bpc returns the per-channel bit depth implied by r.BitDepth (spec §4.2:
// bpc = 8 if bitdepth <= 8 else 16).
func (r Request) bpc() int {
	if r.BitDepth <= 8 {
		return 8
	}
	return 16
}

// Selection is the Mode Selector's output (spec §4.2 Outputs).
type Selection struct {
	Mode        device.VideoMode
	ColorCoding device.ColorCoding
	Framerate   float64 // Effective framerate (exact for fixed modes, recomputed for Format-7).
	PacketSize  int      // 0 for non-Format-7 selections.
	X, Y, W, H  int

	ReqLayers     int // Reconciled (spec §4.2 "Layer reconciliation").
	ActualLayers  int
	ActualBitDepth int
}

// StandardROIs is the list of "standard" non-Format-7 sizes used by the
// preference gate (spec §4.2).
var StandardROIs = [][2]int{
	{320, 240}, {640, 480}, {800, 600}, {1024, 768},
	{1280, 960}, {1600, 1200}, {160, 120},
}

// StandardFramerates is the list of "standard" framerates used by the
// preference gate.
var StandardFramerates = []float64{1.875, 3.75, 7.5, 15, 30, 60, 120, 240}

func isStandardROI(w, h int) bool {
	for _, s := range StandardROIs {
		if s[0] == w && s[1] == h {
			return true
		}
	}
	return false
}

func isStandardFramerate(fps float64) bool {
	for _, f := range StandardFramerates {
		if f == fps {
			return true
		}
	}
	return false
}

// Warnings accumulates non-fatal negotiation warnings (framerate not
// exactly matched, layer count downgraded, and so on); Select returns
// them for the caller to log.
type Warnings []string

func (w *Warnings) add(msg string) { *w = append(*w, msg) }
