/*
DESCRIPTION
  select.go implements the Mode Selector's two strategies (non-Format-7
  enumeration and Format-7 packet-size arithmetic) and the preference
  gate between them (spec §4.2).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import (
	"errors"
	"math"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/probe"
)

// ErrNoMatch is returned when no admissible mode exists at all (spec's
// ConfigError for mode selection).
var ErrNoMatch = errors.New("mode: no admissible video mode for request")

// Select runs the Mode Selector against caps for req, returning the
// negotiated Selection plus any non-fatal warnings.
func Select(req Request, caps probe.Capabilities) (Selection, Warnings, error) {
	var warn Warnings

	useF7First := req.PreferFormat7 ||
		(!req.roiDontCare() && !isStandardROI(req.W, req.H)) ||
		(req.TargetFPS != FastestFPS && !isStandardFramerate(req.TargetFPS))

	var sel Selection
	var err error

	if useF7First {
		sel, err = selectFormat7(req, caps)
		if err != nil {
			sel, err = selectNonFormat7(req, caps, &warn)
		}
	} else {
		sel, err = selectNonFormat7(req, caps, &warn)
	}
	if err != nil {
		return Selection{}, warn, err
	}

	sel.ReqLayers = reconcileLayers(req, sel.ActualLayers, &warn)
	return sel, warn, nil
}

// selectNonFormat7 implements spec §4.2's non-Format-7 strategy.
func selectNonFormat7(req Request, caps probe.Capabilities, warn *Warnings) (Selection, error) {
	candidates := caps.NonFormat7Modes()

	var group []device.ModeCapability
	if req.roiDontCare() {
		maxArea := -1
		for _, m := range candidates {
			if !admits(req, m.ColorCoding) {
				continue
			}
			area := m.Mode.Width * m.Mode.Height
			if area > maxArea {
				maxArea = area
				group = []device.ModeCapability{m}
			} else if area == maxArea {
				group = append(group, m)
			}
		}
	} else {
		for _, m := range candidates {
			if !admits(req, m.ColorCoding) {
				continue
			}
			if m.Mode.Width == req.W && m.Mode.Height == req.H {
				group = append(group, m)
			}
		}
	}

	if len(group) == 0 {
		return Selection{}, ErrNoMatch
	}

	wantColor := actualLayers(req, group[0].ColorCoding) >= 3 || req.ReqLayers == 0 || req.ReqLayers >= 3

	var best *device.ModeCapability
	var bestRate float64
	var bestMet bool
	bestDiff := math.Inf(1)
	for i := range group {
		m := &group[i]
		rate, met := bestFramerate(m.Framerates, req.TargetFPS)
		diff := math.Abs(req.TargetFPS - rate)
		if req.TargetFPS == FastestFPS {
			diff = -rate // maximize rate when "fastest" was requested.
		}

		switch {
		case best == nil:
			best, bestRate, bestMet, bestDiff = m, rate, met, diff
		case diff < bestDiff:
			best, bestRate, bestMet, bestDiff = m, rate, met, diff
		case diff == bestDiff && wantColor && m.ColorCoding == device.ColorCodingRGB8 && best.ColorCoding != device.ColorCodingRGB8:
			// RGB8 tie-break bonus: cheaper than YUV for a color-wanting consumer.
			best, bestRate, bestMet, bestDiff = m, rate, met, diff
		}
	}

	if !bestMet {
		warn.add("no framerate met target; using fastest available")
	}

	actual := actualLayers(req, best.ColorCoding)
	return Selection{
		Mode:           best.Mode,
		ColorCoding:    best.ColorCoding,
		Framerate:      bestRate,
		PacketSize:     0,
		X:              0,
		Y:              0,
		W:              best.Mode.Width,
		H:              best.Mode.Height,
		ActualLayers:   actual,
		ActualBitDepth: best.ActualBitDepth(),
	}, nil
}

// bestFramerate picks the smallest rate >= target, or the fastest
// available if none qualifies (spec §4.2, testable property 3).
func bestFramerate(rates []float64, target float64) (rate float64, met bool) {
	if len(rates) == 0 {
		return 0, false
	}
	best := rates[0]
	fastest := rates[0]
	found := false
	for _, r := range rates {
		if r > fastest {
			fastest = r
		}
		if r >= target && (!found || r < best) {
			best = r
			found = true
		}
	}
	if found {
		return best, true
	}
	return fastest, false
}

// selectFormat7 implements spec §4.2's Format-7 strategy.
func selectFormat7(req Request, caps probe.Capabilities) (Selection, error) {
	candidates := caps.Format7Modes()

	var best *device.ModeCapability
	var bestPacketSize, bestW, bestH, bestX, bestY int
	var bestFPS float64
	bestDiff := math.Inf(1)

	for i := range candidates {
		m := &candidates[i]
		if !admits(req, m.ColorCoding) {
			continue
		}

		var x, y, w, h int
		if req.roiDontCare() {
			x, y = 0, 0
			w, h = m.Format7.MaxWidth, m.Format7.MaxHeight
		} else {
			if req.W > m.Format7.MaxWidth || req.H > m.Format7.MaxHeight {
				continue
			}
			x, y, w, h = req.X, req.Y, req.W, req.H
		}

		pbmin, pbmax := m.Format7.PacketSizeMin, m.Format7.PacketSizeMax
		if pbmin == 0 {
			pbmin = pbmax
		}
		if pbmin <= 0 || pbmax <= 0 {
			continue
		}

		numPackets := roundInt(1.0 / (caps.BusPeriod * req.TargetFPS))
		if numPackets < 1 {
			numPackets = 1
		} else if numPackets > 4095 {
			numPackets = 4095
		}
		numPackets *= 8

		depth := m.Format7.DepthBPP
		packetSize := ceilDivInt(w*h*depth, numPackets)
		if packetSize < pbmin {
			packetSize = pbmin
		} else if packetSize%pbmin != 0 {
			packetSize -= packetSize % pbmin
		}
		for packetSize > pbmax {
			packetSize -= pbmin
		}
		if packetSize <= 0 {
			continue
		}

		recomputedPackets := ceilDivInt(w*h*depth, packetSize*8)
		if recomputedPackets <= 0 {
			recomputedPackets = 1
		}
		fps := 1.0 / (caps.BusPeriod * float64(recomputedPackets))

		diff := math.Abs(req.TargetFPS - fps)
		if req.TargetFPS == FastestFPS {
			diff = -fps
		}

		if best == nil || diff < bestDiff {
			best = m
			bestDiff = diff
			bestPacketSize = packetSize
			bestW, bestH, bestX, bestY = w, h, x, y
			bestFPS = fps
		}
	}

	if best == nil {
		return Selection{}, ErrNoMatch
	}

	actual := actualLayers(req, best.ColorCoding)
	return Selection{
		Mode:           best.Mode,
		ColorCoding:    best.ColorCoding,
		Framerate:      bestFPS,
		PacketSize:     bestPacketSize,
		X:              bestX,
		Y:              bestY,
		W:              bestW,
		H:              bestH,
		ActualLayers:   actual,
		ActualBitDepth: best.ActualBitDepth(),
	}, nil
}

func roundInt(f float64) int { return int(math.Floor(f + 0.5)) }

func ceilDivInt(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
