package session

import (
	"errors"
	"testing"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/device/sim"
)

// testLogger is a minimal logging.Logger implementation recording calls
// for assertions, standing in for the teacher's netlog/logrus-backed
// loggers in tests that don't care about actual log output.
type testLogger struct {
	entries []string
}

func (l *testLogger) Debug(msg string, args ...interface{})   { l.entries = append(l.entries, msg) }
func (l *testLogger) Info(msg string, args ...interface{})    { l.entries = append(l.entries, msg) }
func (l *testLogger) Warning(msg string, args ...interface{}) { l.entries = append(l.entries, msg) }
func (l *testLogger) Error(msg string, args ...interface{})   { l.entries = append(l.entries, msg) }
func (l *testLogger) Fatal(msg string, args ...interface{})   { l.entries = append(l.entries, msg) }

func testMode() device.ModeCapability {
	return device.ModeCapability{
		Mode:        device.VideoMode{ID: 0, Width: 320, Height: 240},
		ColorCoding: device.ColorCodingMono8,
		Framerates:  []float64{15, 30},
	}
}

// newTestEngine returns an Engine backed by a single simulated camera,
// and the camera itself for feeding frames / asserting state.
func newTestEngine(t *testing.T, modes ...device.ModeCapability) (*Engine, *sim.Camera) {
	t.Helper()
	if len(modes) == 0 {
		modes = []device.ModeCapability{testMode()}
	}
	cam := sim.New("TestVendor", "TestModel", modes)
	lib := &sim.Library{Cameras: []device.Camera{cam}}
	log := &testLogger{}
	e := NewEngine(func() (device.Library, error) { return lib, nil }, log)
	return e, cam
}

// TestOpenBadIndexReturnsErrBadIndex exercises testable property 1: an
// out-of-range device index is rejected at Open rather than later.
func TestOpenBadIndexReturnsErrBadIndex(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Open(Request{DeviceIndex: 5})
	if !errors.Is(err, ErrBadIndex) {
		t.Fatalf("Open with out-of-range index: err = %v, want ErrBadIndex", err)
	}
}

// TestOpenAndCloseLifecycle covers the happy path: Open assigns a slot,
// Close frees it and powers the camera off.
func TestOpenAndCloseLifecycle(t *testing.T) {
	e, cam := newTestEngine(t)

	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Index() < 0 {
		t.Fatalf("Index() = %d, want >= 0", s.Index())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !cam.Closed() {
		t.Error("camera was not closed")
	}

	// Operations on a closed session's handle must fail, not panic.
	if err := s.Close(); err != ErrBadIndex {
		t.Errorf("second Close: err = %v, want ErrBadIndex", err)
	}
}

// TestEngineOpenRejectsInvalidRequest covers Validate's accumulate-then-
// report path being honoured by Open.
func TestEngineOpenRejectsInvalidRequest(t *testing.T) {
	e, _ := newTestEngine(t)
	_, err := e.Open(Request{DeviceIndex: 0, ReqLayers: 9})
	if err != ErrConfig {
		t.Errorf("Open with reqlayers=9: err = %v, want ErrConfig", err)
	}
}

// TestEngineSlotsAreFixedAndReusable covers spec §3's "N small and
// fixed" slot array: closing a session frees its slot for reuse, and
// exhausting all slots is rejected cleanly.
func TestEngineSlotsAreFixedAndReusable(t *testing.T) {
	modes := []device.ModeCapability{testMode()}
	cams := make([]device.Camera, NumSlots)
	for i := range cams {
		cams[i] = sim.New("v", "m", modes)
	}
	lib := &sim.Library{Cameras: cams}
	e := NewEngine(func() (device.Library, error) { return lib, nil }, &testLogger{})

	var sessions []*Session
	for i := 0; i < NumSlots; i++ {
		s, err := e.Open(Request{DeviceIndex: i})
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		sessions = append(sessions, s)
	}

	if _, err := e.Open(Request{DeviceIndex: 0}); err == nil {
		t.Fatal("Open with all slots full: want error, got nil")
	}

	if err := sessions[0].Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := e.Open(Request{DeviceIndex: 0}); err != nil {
		t.Errorf("Open after freeing a slot: %v", err)
	}
}

func TestEngineTeardownClosesEverySession(t *testing.T) {
	e, cam := newTestEngine(t)
	if _, err := e.Open(Request{DeviceIndex: 0}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := e.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if !cam.Closed() {
		t.Error("Teardown did not close the open session's camera")
	}
}
