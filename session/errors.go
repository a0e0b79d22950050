/*
DESCRIPTION
  errors.go defines the Capture Session error taxonomy of spec §7, as
  sentinel values wrapped with github.com/pkg/errors context, the way the
  teacher repo's codec packages wrap sentinel errors with %w but keep a
  comparable base value for callers that need to branch on error kind.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"math"

	"github.com/pkg/errors"
)

// Sentinel errors matching spec §7's taxonomy. Use errors.Is to test for
// a specific kind after Open/Start/SetParameter returns a wrapped error.
var (
	ErrConfig              = errors.New("session: configuration rejected")
	ErrLibraryInit         = errors.New("session: IIDC library unavailable")
	ErrNoCameras           = errors.New("session: no cameras enumerated")
	ErrBadIndex            = errors.New("session: invalid session handle")
	ErrCameraInitFailed    = errors.New("session: camera initialization failed")
	ErrBusSpeedQuery       = errors.New("session: could not query bus speed")
	ErrDMASetup            = errors.New("session: DMA setup failed")
	ErrTransmissionStart   = errors.New("session: could not enable transmission")
	ErrPacketSizeOutOfRange = errors.New("session: packet size out of range")
	ErrDequeue             = errors.New("session: dequeue failed")
	ErrEnqueue             = errors.New("session: enqueue failed")
	ErrRecording           = errors.New("session: recording sink rejected frame")
	ErrFeatureUnsupported  = errors.New("session: feature unsupported by camera")
	ErrNotStarted          = errors.New("session: not started")
	ErrAlreadyStarted      = errors.New("session: already started")
)

// UnsupportedValue is the sentinel SetParameter returns as the "previous
// value" for a parameter the camera doesn't support (spec §6: DBL_MAX).
const UnsupportedValue = math.MaxFloat64
