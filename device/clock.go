/*
DESCRIPTION
  clock.go defines the two clock readings the session needs to normalize
  DMA frame timestamps (spec §4.4 "Timestamp normalization", §9 clock-skew
  note): a host wall-clock reading in microseconds (matching the IIDC
  frame timestamp's own clock source) and a host-monotonic uptime reading
  in seconds, sampled independently at every dequeue rather than once at
  Start, because the wall clock can step.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

// Clock supplies the two time sources the session needs. The production
// implementation (see clock_linux.go) reads CLOCK_MONOTONIC and
// CLOCK_REALTIME directly via golang.org/x/sys/unix rather than through
// time.Now(), since normalization needs both clocks sampled back-to-back
// at the same instant and time.Now() only exposes a single fused value.
type Clock interface {
	// MonotonicSeconds returns a host-monotonic uptime reading, in
	// seconds, suitable for storing as current_pts/pulled_pts.
	MonotonicSeconds() float64

	// WallMicros returns a host wall-clock reading, in microseconds,
	// in the same clock domain as the camera's own frame timestamps.
	WallMicros() int64
}

// Normalize converts an IIDC frame timestamp (host wall-clock
// microseconds) into a host-monotonic pts by sampling both clocks "now"
// and subtracting the instantaneous offset between them.
func Normalize(c Clock, frameWallMicros int64) float64 {
	nowMono := c.MonotonicSeconds()
	nowWall := c.WallMicros()
	offsetSeconds := float64(nowWall-frameWallMicros) / 1e6
	return nowMono - offsetSeconds
}
