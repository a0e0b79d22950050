package probe

import (
	"testing"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/device/sim"
	"github.com/google/go-cmp/cmp"
)

func testModes() []device.ModeCapability {
	return []device.ModeCapability{
		{
			Mode:        device.VideoMode{ID: 0, Width: 640, Height: 480},
			ColorCoding: device.ColorCodingYUV422,
			Framerates:  []float64{7.5, 15, 30},
		},
		{
			Mode:        device.VideoMode{ID: 1, IsFormat7: true, Width: 1280, Height: 960},
			ColorCoding: device.ColorCodingRaw16,
			DataDepth:   12,
			Format7: device.Format7Info{
				PacketSizeMin: 4, PacketSizeMax: 8192,
				DepthBPP: 16, MaxWidth: 1280, MaxHeight: 960,
				ColorCoding: device.ColorCodingRaw16,
			},
		},
	}
}

func TestProbe(t *testing.T) {
	cam := sim.New("Point Grey", "Flea3", testModes())

	caps, err := Probe(cam)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if caps.VendorName != "Point Grey" || caps.ModelName != "Flea3" {
		t.Errorf("vendor/model = %q/%q", caps.VendorName, caps.ModelName)
	}
	if caps.BusSpeed != device.BusSpeed400 {
		t.Errorf("BusSpeed = %v, want BusSpeed400", caps.BusSpeed)
	}
	wantPeriod := 125e-6
	if caps.BusPeriod != wantPeriod {
		t.Errorf("BusPeriod = %v, want %v", caps.BusPeriod, wantPeriod)
	}
	if diff := cmp.Diff(testModes(), caps.Modes); diff != "" {
		t.Errorf("Modes mismatch (-want +got):\n%s", diff)
	}
}

func TestCapabilitiesModeSplit(t *testing.T) {
	caps := Capabilities{Modes: testModes()}

	nonF7 := caps.NonFormat7Modes()
	if len(nonF7) != 1 || nonF7[0].Mode.ID != 0 {
		t.Errorf("NonFormat7Modes = %+v, want one mode with ID 0", nonF7)
	}

	f7 := caps.Format7Modes()
	if len(f7) != 1 || f7[0].Mode.ID != 1 {
		t.Errorf("Format7Modes = %+v, want one mode with ID 1", f7)
	}
}

func TestProbePropagatesModesError(t *testing.T) {
	cam := &erroringCamera{Camera: sim.New("v", "m", nil), err: errModes}
	if _, err := Probe(cam); err == nil {
		t.Fatal("Probe: want error when Modes fails")
	}
}

var errModes = &sentinelErr{"modes failed"}

type sentinelErr struct{ msg string }

func (e *sentinelErr) Error() string { return e.msg }

// erroringCamera wraps sim.Camera to force a Modes() failure without
// adding a second constructor knob to the sim package itself.
type erroringCamera struct {
	*sim.Camera
	err error
}

func (c *erroringCamera) Modes() ([]device.ModeCapability, error) { return nil, c.err }
