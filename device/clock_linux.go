//go:build linux

/*
DESCRIPTION
  clock_linux.go provides the production Clock implementation, reading
  CLOCK_MONOTONIC and CLOCK_REALTIME directly via golang.org/x/sys/unix.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import "golang.org/x/sys/unix"

// SystemClock is the Clock implementation used by a Session against a
// real camera. The Firewire/IIDC stack this engine targets is Linux-only
// in practice (libdc1394 + libraw1394), so this file has no portable
// fallback compiled in by default; see clock_other.go for non-Linux
// builds (tests, CI on other platforms).
type SystemClock struct{}

func (SystemClock) MonotonicSeconds() float64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return float64(ts.Sec) + float64(ts.Nsec)/1e9
}

func (SystemClock) WallMicros() int64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return 0
	}
	return ts.Sec*1e6 + ts.Nsec/1e3
}
