package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/encoder"
)

// TestAsyncRecorderCommitsEveryFrame exercises testable property 8: the
// Recorder path forwards every produced frame to the encoder sink in
// capture order, regardless of how many accumulate before a consumer
// pulls one (distinct from the consumer-path drop-newest policy).
func TestAsyncRecorderCommitsEveryFrame(t *testing.T) {
	e, cam := newTestEngine(t)
	s, err := e.Open(Request{
		DeviceIndex:    0,
		TargetMovie:    filepath.Join(t.TempDir(), "out.raw") + ":CodecType=mjpeg:CodecSettings=q=80",
		RecordingFlags: FlagAsync,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	sink := &encoder.FileSink{}

	if err := s.Start(30, true, time.Time{}, func() encoder.Sink { return sink }); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	s.mu.Lock()
	recording := s.recording.active
	s.mu.Unlock()
	if !recording {
		t.Fatal("recording was not activated by Start")
	}

	const n = 5
	for i := 1; i <= n; i++ {
		feedFrame(cam, i)
	}

	// Give the Recorder goroutine time to drain the queue; it polls every
	// pollIntervalLowLatency (1ms) since dropFrames was requested true.
	deadline := time.Now().Add(2 * time.Second)
	for sink.Frames() < n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := sink.Frames(); got != n {
		t.Errorf("sink.Frames() = %d, want %d (every frame recorded, no drop)", got, n)
	}

	if got := sink.Codec(); got.Type != "mjpeg" || got.Settings != "q=80" {
		t.Errorf("sink.Codec() = %+v, want {Type:mjpeg Settings:q=80} (parsed codec suffix threaded through to Open)", got)
	}
}

// TestAsyncProbeDeliversLatestCurrentFrame exercises the async consumer
// path: PullFrame/GetImage read from the Recorder-maintained
// current_frame_slot rather than dequeuing the camera directly.
func TestAsyncProbeDeliversLatestCurrentFrame(t *testing.T) {
	e, cam := newTestEngine(t)
	s, err := e.Open(Request{DeviceIndex: 0, RecordingFlags: FlagAsync})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Start(30, false, time.Time{}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	feedFrame(cam, 7)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, frame, err := s.PullFrame(ctx, device.DequeueWait)
	if err != nil {
		t.Fatalf("PullFrame: %v", err)
	}
	if result != ResultFrame {
		t.Fatalf("PullFrame result = %v, want ResultFrame", result)
	}
	if frame.Width != 320 || frame.Height != 240 {
		t.Errorf("frame dims = %dx%d, want 320x240", frame.Width, frame.Height)
	}
}
