//go:build !linux

/*
DESCRIPTION
  clock_other.go provides a time.Now()-based Clock fallback for non-Linux
  builds, used only by tests and development tooling -- real capture
  sessions run on Linux against libdc1394-equivalent hardware.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package device

import "time"

// processStart anchors MonotonicSeconds so SystemClock stays zero-value
// constructible, matching the Linux build's API.
var processStart = time.Now()

// SystemClock is a time.Now()-based fallback. It cannot observe wall-clock
// stepping independently of the monotonic reading the way clock_linux.go
// can, but is sufficient for development off Linux.
type SystemClock struct{}

func (SystemClock) MonotonicSeconds() float64 { return time.Since(processStart).Seconds() }

func (SystemClock) WallMicros() int64 { return time.Now().UnixMicro() }
