package postprocess

import (
	"testing"

	"github.com/ausocean/iidc/device"
)

func TestProcessPassthroughAliasesDMABuffer(t *testing.T) {
	p := &Processor{NegotiatedCoding: device.ColorCodingRGB8, ActualLayers: 3}
	p.Allocate(4, 4) // RGB8 needs no scratch frame.
	if p.NeedsScratch() {
		t.Fatal("RGB8 at actual_layers=3 should not need a scratch frame")
	}

	img := make([]byte, 4*4*3)
	for i := range img {
		img[i] = byte(i)
	}
	f := &device.Frame{Image: img, ColorCoding: device.ColorCodingRGB8, Width: 4, Height: 4}

	out, err := p.Process(f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Channels != 3 || out.Width != 4 || out.Height != 4 {
		t.Errorf("out dims = %dx%dx%d, want 4x4x3", out.Width, out.Height, out.Channels)
	}
	if &out.Pixels[0] != &img[0] {
		t.Error("passthrough output does not alias the DMA buffer")
	}
}

func TestProcessMono8PassthroughSingleChannel(t *testing.T) {
	p := &Processor{NegotiatedCoding: device.ColorCodingMono8, ActualLayers: 1}
	p.Allocate(4, 4)

	img := make([]byte, 16)
	f := &device.Frame{Image: img, ColorCoding: device.ColorCodingMono8, Width: 4, Height: 4}

	out, err := p.Process(f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Channels != 1 {
		t.Errorf("Channels = %d, want 1", out.Channels)
	}
}

func TestProcessInvalidBayerPatternWithoutOverride(t *testing.T) {
	p := &Processor{NegotiatedCoding: device.ColorCodingRaw8, ActualLayers: 3, BayerPatternOverride: -1}
	p.Allocate(4, 4)

	f := &device.Frame{
		Image:       make([]byte, 16),
		ColorCoding: device.ColorCodingRaw8,
		ColorFilter: -1, // out-of-range, and the override is also invalid.
		Width:       4, Height: 4,
	}

	if _, err := p.Process(f); err != ErrInvalidBayerPattern {
		t.Errorf("Process: err = %v, want ErrInvalidBayerPattern", err)
	}
}

func TestProcessFallsBackToBayerOverride(t *testing.T) {
	p := &Processor{NegotiatedCoding: device.ColorCodingRaw8, ActualLayers: 3, BayerPatternOverride: BayerGRBG}
	p.Allocate(2, 2)

	f := &device.Frame{
		Image:       []byte{10, 20, 30, 40},
		ColorCoding: device.ColorCodingRaw8,
		ColorFilter: -1, // camera didn't report a filter; override must be used.
		Width:       2, Height: 2,
	}

	out, err := p.Process(f)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out.Channels != 3 || len(out.Pixels) != 2*2*3 {
		t.Errorf("out = %d channels, %d bytes; want 3 channels, 12 bytes", out.Channels, len(out.Pixels))
	}
}

func TestValidBayerPattern(t *testing.T) {
	for p := BayerRGGB; p < bayerPatternCount; p++ {
		if !validBayerPattern(p) {
			t.Errorf("validBayerPattern(%d) = false, want true", p)
		}
	}
	for _, p := range []int{-1, bayerPatternCount, 99} {
		if validBayerPattern(p) {
			t.Errorf("validBayerPattern(%d) = true, want false", p)
		}
	}
}

func TestDebayerRejectsUnknownMethod(t *testing.T) {
	err := debayer(make([]byte, 4), make([]byte, 12), 2, 2, BayerRGGB, DebayerMethod(99))
	if err != ErrInvalidDebayerMethod {
		t.Errorf("debayer: err = %v, want ErrInvalidDebayerMethod", err)
	}
}

// TestShiftUp16 exercises testable property 6 / scenario E6: a 12-bit
// sample is left-shifted by 4 so black stays 0 and the sensor's maximum
// (0x0FFF) becomes 0xFFF0, not a scaled 0xFFFF.
func TestShiftUp16(t *testing.T) {
	samples := []uint16{0x0000, 0x0800, 0x0FFF}
	ShiftUp16(samples, 12)

	want := []uint16{0x0000, 0x8000, 0xFFF0}
	for i := range samples {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = 0x%04X, want 0x%04X", i, samples[i], want[i])
		}
	}
}

func TestShiftUp16OutOfRangeIsNoop(t *testing.T) {
	for _, depth := range []int{8, 16, 0, 20} {
		samples := []uint16{0x1234, 0xABCD}
		orig := append([]uint16(nil), samples...)
		ShiftUp16(samples, depth)
		for i := range samples {
			if samples[i] != orig[i] {
				t.Errorf("depth=%d: sample[%d] changed from 0x%04X to 0x%04X, want no-op", depth, i, orig[i], samples[i])
			}
		}
	}
}

func TestUnpack411to422(t *testing.T) {
	// One 4-luma macropixel group: U Y0 Y1 V Y2 Y3.
	src := []byte{0x10, 0x20, 0x21, 0x11, 0x22, 0x23}
	got := unpack411to422(src, 4, 1)

	want := []byte{
		0x10, 0x20, // U Y0
		0x11, 0x21, // V Y1
		0x10, 0x22, // U Y2
		0x11, 0x23, // V Y3
	}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = 0x%02X, want 0x%02X", i, got[i], want[i])
		}
	}
}

func TestChannelsFor(t *testing.T) {
	cases := map[device.ColorCoding]int{
		device.ColorCodingMono8:  1,
		device.ColorCodingMono16: 1,
		device.ColorCodingRaw8:   1,
		device.ColorCodingRaw16:  1,
		device.ColorCodingRGB8:   3,
		device.ColorCodingRGB16:  3,
		device.ColorCodingYUV422: 3,
		device.ColorCodingYUV411: 3,
	}
	for coding, want := range cases {
		if got := channelsFor(coding); got != want {
			t.Errorf("channelsFor(%s) = %d, want %d", coding, got, want)
		}
	}
}
