package session

import (
	"testing"
	"time"
)

func TestSetParameterUnrecognizedNameReturnsUnsupported(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := s.SetParameter("NotARealParameter", 1)
	if err != nil {
		t.Fatalf("SetParameter: %v", err)
	}
	if got != UnsupportedValue {
		t.Errorf("SetParameter(unknown) = %v, want UnsupportedValue", got)
	}
}

func TestSetParameterFeatureClampsOutOfRangeValue(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	// sim.Camera.FeatureRange always returns [0,1023].
	if _, err := s.SetParameter("Brightness", 5000); err != nil {
		t.Fatalf("SetParameter(Brightness): %v", err)
	}
	prev, err := s.SetParameter("Brightness", 10)
	if err != nil {
		t.Fatalf("SetParameter(Brightness) again: %v", err)
	}
	if prev != 1023 {
		t.Errorf("previous value = %v, want 1023 (clamped)", prev)
	}
}

func TestSetParameterAutoFeatureSwitchesMode(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.SetParameter("AutoGain", 0); err != nil {
		t.Errorf("SetParameter(AutoGain): %v", err)
	}
}

func TestSetParameterSyncModeDelegatesToSetSyncRole(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.SetParameter("SyncMode", 0); err != nil {
		t.Errorf("SetParameter(SyncMode, 0): %v", err)
	}
}

func TestSetParameterNewMovieNameRequiresActiveRecording(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.SetParameter("SetNewMoviename=/tmp/x.mov", 0); err != ErrRecording {
		t.Errorf("SetParameter(SetNewMoviename) without recording: err = %v, want ErrRecording", err)
	}
}

func TestSetParameterDebayerMethodUpdatesProcessorWhenStarted(t *testing.T) {
	e, _ := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Start(30, false, time.Time{}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if _, err := s.SetParameter("DebayerMethod", 2); err != nil {
		t.Fatalf("SetParameter(DebayerMethod): %v", err)
	}
	s.mu.Lock()
	got := s.proc.DebayerMethod
	s.mu.Unlock()
	if int(got) != 2 {
		t.Errorf("proc.DebayerMethod = %v, want 2", got)
	}
}
