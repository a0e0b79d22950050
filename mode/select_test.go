package mode

import (
	"math"
	"testing"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/probe"
)

func busCaps(modes []device.ModeCapability) probe.Capabilities {
	return probe.Capabilities{
		Modes:     modes,
		BusSpeed:  device.BusSpeed400,
		BusPeriod: 125e-6,
	}
}

func yuv640() device.ModeCapability {
	return device.ModeCapability{
		Mode:        device.VideoMode{ID: 0, Width: 640, Height: 480},
		ColorCoding: device.ColorCodingYUV422,
		Framerates:  []float64{7.5, 15, 30},
	}
}

func mono320() device.ModeCapability {
	return device.ModeCapability{
		Mode:        device.VideoMode{ID: 1, Width: 320, Height: 240},
		ColorCoding: device.ColorCodingMono8,
		Framerates:  []float64{15, 30, 60},
	}
}

// TestSelectNonFormat7PrefersLargestOnDontCareROI covers spec §4.2's
// non-Format-7 ROI rule: a don't-care ROI picks the largest-area
// admissible mode.
func TestSelectNonFormat7PrefersLargestOnDontCareROI(t *testing.T) {
	caps := busCaps([]device.ModeCapability{mono320(), yuv640()})
	req := Request{ReqLayers: 0, BitDepth: 8, TargetFPS: 15}

	sel, _, err := Select(req, caps)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.W != 640 || sel.H != 480 {
		t.Errorf("W,H = %d,%d, want 640,480 (largest area)", sel.W, sel.H)
	}
}

// TestBestFramerateSmallestAtOrAboveTarget exercises testable property 3:
// the smallest framerate >= target is chosen, falling back to the fastest
// available when nothing meets the target.
func TestBestFramerateSmallestAtOrAboveTarget(t *testing.T) {
	cases := []struct {
		target   float64
		wantRate float64
		wantMet  bool
	}{
		{target: 10, wantRate: 15, wantMet: true},
		{target: 30, wantRate: 30, wantMet: true},
		{target: 1000, wantRate: 30, wantMet: false},
	}
	for _, c := range cases {
		rate, met := bestFramerate([]float64{7.5, 15, 30}, c.target)
		if rate != c.wantRate || met != c.wantMet {
			t.Errorf("bestFramerate(target=%v) = (%v,%v), want (%v,%v)", c.target, rate, met, c.wantRate, c.wantMet)
		}
	}
}

// TestSelectFastestSentinel exercises the "fastest framerate" don't-care
// sentinel (spec §3 FastestFPS / DBL_MAX).
func TestSelectFastestSentinel(t *testing.T) {
	caps := busCaps([]device.ModeCapability{mono320()})
	req := Request{ReqLayers: 0, BitDepth: 8, TargetFPS: FastestFPS}

	sel, _, err := Select(req, caps)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Framerate != 60 {
		t.Errorf("Framerate = %v, want 60 (fastest available)", sel.Framerate)
	}
}

// TestSelectFastestSentinelPicksFastestCandidate covers the multi-mode
// case of the "fastest" sentinel: among several admissible non-Format-7
// modes, the one whose table's highest framerate is fastest overall wins,
// not merely the fastest entry within the first mode considered.
func TestSelectFastestSentinelPicksFastestCandidate(t *testing.T) {
	slow := device.ModeCapability{
		Mode:        device.VideoMode{ID: 0, Width: 320, Height: 240},
		ColorCoding: device.ColorCodingMono8,
		Framerates:  []float64{15, 30},
	}
	fast := device.ModeCapability{
		Mode:        device.VideoMode{ID: 1, Width: 320, Height: 240},
		ColorCoding: device.ColorCodingMono8,
		Framerates:  []float64{15, 60},
	}
	caps := busCaps([]device.ModeCapability{slow, fast})
	req := Request{ReqLayers: 0, BitDepth: 8, X: 0, Y: 0, W: 320, H: 240, TargetFPS: FastestFPS}

	sel, _, err := Select(req, caps)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.Framerate != 60 {
		t.Errorf("Framerate = %v, want 60 (fastest across candidates)", sel.Framerate)
	}
}

// TestSelectFormat7PacketSizeArithmetic independently reproduces spec
// §4.2's Format-7 packet-size computation for a 640x480 16bpp raw mode on
// a 400 Mb/s bus (period 125us) targeting 30fps, testable property 4.
//
//	numPackets = round(1/(125e-6*30)) = round(266.667) = 267, *8 = 2136
//	packetSize = ceilDiv(640*480*16, 2136) = ceilDiv(4915200, 2136) = 2302
//	2302 is not a multiple of packetSizeMin(4): 2302-2 = 2300
//	recomputedPackets = ceilDiv(4915200, 2300*8) = ceilDiv(4915200, 18400) = 268
//	fps = 1/(125e-6*268) = 29.850746...
func TestSelectFormat7PacketSizeArithmetic(t *testing.T) {
	f7 := device.ModeCapability{
		Mode:        device.VideoMode{ID: 2, IsFormat7: true, Width: 640, Height: 480},
		ColorCoding: device.ColorCodingRaw16,
		DataDepth:   16,
		Format7: device.Format7Info{
			PacketSizeMin: 4, PacketSizeMax: 8192,
			DepthBPP: 16, MaxWidth: 640, MaxHeight: 480,
			ColorCoding: device.ColorCodingRaw16,
		},
	}
	caps := busCaps([]device.ModeCapability{f7})
	req := Request{ReqLayers: 1, BitDepth: 16, TargetFPS: 30, PreferFormat7: true}

	sel, _, err := Select(req, caps)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.PacketSize != 2300 {
		t.Errorf("PacketSize = %d, want 2300", sel.PacketSize)
	}
	wantFPS := 1.0 / (125e-6 * 268)
	if math.Abs(sel.Framerate-wantFPS) > 1e-9 {
		t.Errorf("Framerate = %v, want %v", sel.Framerate, wantFPS)
	}
	if sel.W != 640 || sel.H != 480 {
		t.Errorf("W,H = %d,%d, want 640,480", sel.W, sel.H)
	}
}

// TestSelectFormat7RejectsOversizedROI covers the edge case where a
// requested Format-7 ROI exceeds a candidate mode's max dimensions: that
// candidate is skipped rather than clamped.
func TestSelectFormat7RejectsOversizedROI(t *testing.T) {
	small := device.ModeCapability{
		Mode:        device.VideoMode{ID: 3, IsFormat7: true, Width: 320, Height: 240},
		ColorCoding: device.ColorCodingRaw8,
		Format7: device.Format7Info{
			PacketSizeMin: 4, PacketSizeMax: 4096,
			DepthBPP: 8, MaxWidth: 320, MaxHeight: 240,
		},
	}
	caps := busCaps([]device.ModeCapability{small})
	req := Request{ReqLayers: 1, BitDepth: 8, TargetFPS: 30, PreferFormat7: true, X: 0, Y: 0, W: 640, H: 480}

	if _, _, err := Select(req, caps); err != ErrNoMatch {
		t.Errorf("Select with oversized ROI: err = %v, want ErrNoMatch", err)
	}
}

// TestReconcileLayersDowngradesWithWarning exercises testable property 5:
// a requested layer count that the device cannot actually deliver is
// downgraded and a warning is recorded.
func TestReconcileLayersDowngradesWithWarning(t *testing.T) {
	caps := busCaps([]device.ModeCapability{mono320()})
	req := Request{ReqLayers: 2, BitDepth: 8, TargetFPS: 15}

	sel, warn, err := Select(req, caps)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.ReqLayers != 1 {
		t.Errorf("ReqLayers = %d, want 1 (downgraded from 2)", sel.ReqLayers)
	}
	if len(warn) == 0 {
		t.Error("want a downgrade warning, got none")
	}
}

// TestReconcileLayersFiveCollapsesToThree covers reqlayers==5 (YUV-only
// request) always reconciling to 3.
func TestReconcileLayersFiveCollapsesToThree(t *testing.T) {
	caps := busCaps([]device.ModeCapability{yuv640()})
	req := Request{ReqLayers: 5, BitDepth: 8, TargetFPS: 15}

	sel, _, err := Select(req, caps)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sel.ReqLayers != 3 {
		t.Errorf("ReqLayers = %d, want 3", sel.ReqLayers)
	}
}

// TestSelectNoAdmissibleMode covers the pixel-format admission table's
// negative case: no candidate mode satisfies it at all.
func TestSelectNoAdmissibleMode(t *testing.T) {
	caps := busCaps([]device.ModeCapability{mono320()})
	req := Request{ReqLayers: 3, BitDepth: 8, DataConversionMode: 2, TargetFPS: 15}

	if _, _, err := Select(req, caps); err != ErrNoMatch {
		t.Errorf("Select: err = %v, want ErrNoMatch", err)
	}
}
