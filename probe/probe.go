/*
DESCRIPTION
  probe.go wraps a device.Camera to enumerate its advertised modes, colour
  codings, framerates and Format-7 parameters (spec §4.1). Probe never
  mutates camera state -- every method here is a pure read.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package probe implements the Capability Probe: a read-only wrapper
// around a device.Camera that enumerates modes, colour codings,
// framerates and Format-7 parameters for mode negotiation.
package probe

import (
	"fmt"

	"github.com/ausocean/iidc/device"
)

// Capabilities is the full capability set of one camera, as needed by the
// Mode Selector.
type Capabilities struct {
	Modes      []device.ModeCapability
	BusSpeed   device.BusSpeed
	BusPeriod  float64
	VendorName string
	ModelName  string
}

// Probe queries cam for its full capability set. It issues no write
// operations against the camera.
func Probe(cam device.Camera) (Capabilities, error) {
	modes, err := cam.Modes()
	if err != nil {
		return Capabilities{}, fmt.Errorf("probe: could not enumerate modes: %w", err)
	}

	speed, err := cam.BusSpeed()
	if err != nil {
		return Capabilities{}, fmt.Errorf("probe: could not query bus speed: %w", err)
	}

	period, err := device.BusPeriod(speed)
	if err != nil {
		return Capabilities{}, fmt.Errorf("probe: could not map bus speed to period: %w", err)
	}

	return Capabilities{
		Modes:      modes,
		BusSpeed:   speed,
		BusPeriod:  period,
		VendorName: cam.VendorName(),
		ModelName:  cam.ModelName(),
	}, nil
}

// NonFormat7Modes returns the subset of caps.Modes that are fixed modes.
func (caps Capabilities) NonFormat7Modes() []device.ModeCapability {
	var out []device.ModeCapability
	for _, m := range caps.Modes {
		if !m.Mode.IsFormat7 {
			out = append(out, m)
		}
	}
	return out
}

// Format7Modes returns the subset of caps.Modes that are Format-7 modes.
func (caps Capabilities) Format7Modes() []device.ModeCapability {
	var out []device.ModeCapability
	for _, m := range caps.Modes {
		if m.Mode.IsFormat7 {
			out = append(out, m)
		}
	}
	return out
}
