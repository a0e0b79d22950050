/*
DESCRIPTION
  params.go implements spec §6's set_parameter dispatch: the string name
  is translated exactly once, at the boundary, via iidcparam.Parse, and
  every recognized kind is then handled by a compile-time-checked switch
  arm rather than further string comparison (spec §9's tagged-variant
  design note).

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package session

import (
	"github.com/ausocean/iidc/device"
	"github.com/ausocean/iidc/iidcparam"
	"github.com/ausocean/iidc/postprocess"
)

var featureByName = map[iidcparam.Name]device.Feature{
	iidcparam.Brightness: device.FeatureBrightness,
	iidcparam.Gain:       device.FeatureGain,
	iidcparam.Exposure:   device.FeatureExposure,
	iidcparam.Shutter:    device.FeatureShutter,
	iidcparam.Sharpness:  device.FeatureSharpness,
	iidcparam.Saturation: device.FeatureSaturation,
	iidcparam.Gamma:      device.FeatureGamma,
}

// SetParameter implements spec §6's set_parameter. Manual feature
// settings, PreferFormat7Modes, DataConversionMode, DebayerMethod,
// OverrideBayerPattern and SyncMode return the previous value;
// GetFramerate and GetBandwidthUsage return the current value. The other
// recognized names (PrintParameters, Auto<feature>, TriggerMode,
// TriggerSource, TriggerPolarity, SetNewMoviename, GetROI, GetVendorname,
// GetModelname, GetTriggerSources) do not report a previous value and
// return UnsupportedValue. An unrecognized name returns UnsupportedValue
// with no error (spec: "DBL_MAX ⇒ unsupported", not fatal). A closed
// session returns ErrBadIndex. Parameter-setting errors never tear down
// the session; on failure the prior value stands.
func (s *Session) SetParameter(raw string, value float64) (float64, error) {
	s.mu.Lock()
	valid := s.valid
	s.mu.Unlock()
	if !valid {
		return UnsupportedValue, ErrBadIndex
	}

	parsed, ok := iidcparam.Parse(raw)
	if !ok {
		return UnsupportedValue, nil
	}

	if feature, isFeature := featureByName[parsed.Name]; isFeature {
		return s.setFeatureParam(feature, parsed.Auto, value)
	}

	switch parsed.Name {
	case iidcparam.PrintParameters:
		s.printParameters()
		return UnsupportedValue, nil

	case iidcparam.GetFramerate:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.negotiated.framerate, nil

	case iidcparam.GetBandwidthUsage:
		usage, err := s.cam.BandwidthUsage()
		if err != nil {
			return UnsupportedValue, err
		}
		return usage, nil

	case iidcparam.PreferFormat7Modes:
		s.mu.Lock()
		prev := boolToFloat(s.requested.PreferFormat7)
		s.requested.PreferFormat7 = value != 0
		s.mu.Unlock()
		return prev, nil

	case iidcparam.DataConversionMode:
		s.mu.Lock()
		defer s.mu.Unlock()
		prev := float64(s.requested.DataConversionMode)
		if value < 0 || value > 4 {
			s.log().Warning("dataconversionmode out of range, ignored", "value", value)
			return prev, nil
		}
		s.requested.DataConversionMode = int(value)
		return prev, nil

	case iidcparam.DebayerMethod:
		s.mu.Lock()
		defer s.mu.Unlock()
		prev := float64(s.requested.DebayerMethod)
		s.requested.DebayerMethod = postprocess.DebayerMethod(int(value))
		if s.proc != nil {
			s.proc.DebayerMethod = s.requested.DebayerMethod
		}
		return prev, nil

	case iidcparam.OverrideBayerPattern:
		s.mu.Lock()
		defer s.mu.Unlock()
		prev := float64(s.requested.BayerPatternOverride)
		s.requested.BayerPatternOverride = int(value)
		if s.proc != nil {
			s.proc.BayerPatternOverride = int(value)
		}
		return prev, nil

	case iidcparam.SyncMode:
		s.mu.Lock()
		prev := float64(s.syncRole)
		s.mu.Unlock()
		if err := s.SetSyncRole(device.SyncRole(int(value))); err != nil {
			return prev, err
		}
		return prev, nil

	case iidcparam.TriggerMode:
		return s.setTriggerInt(value, s.cam.SetTriggerMode)

	case iidcparam.TriggerSource:
		return s.setTriggerInt(value, s.cam.SetTriggerSource)

	case iidcparam.TriggerPolarity:
		prev := UnsupportedValue
		if err := s.cam.SetTriggerPolarity(device.TriggerPolarity(int(value))); err != nil {
			return prev, err
		}
		return prev, nil

	case iidcparam.SetNewMoviename:
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.recording.active {
			return UnsupportedValue, ErrRecording
		}
		s.recording.spec.Path = parsed.StrValue
		return UnsupportedValue, nil

	case iidcparam.GetROI, iidcparam.GetVendorname, iidcparam.GetModelname, iidcparam.GetTriggerSources:
		// String/tuple-valued gets don't fit set_parameter's float64
		// channel; use ROI/VendorName/ModelName/TriggerSources directly.
		return UnsupportedValue, nil
	}

	return UnsupportedValue, nil
}

// ROI, VendorName, ModelName and TriggerSources are the string/tuple
// accessors GetROI/GetVendorname/GetModelname/GetTriggerSources proxy to
// in a real scripting-host binding.
func (s *Session) ROI() (x, y, w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.negotiated.x, s.negotiated.y, s.negotiated.w, s.negotiated.h
}

func (s *Session) VendorName() string { return s.cam.VendorName() }
func (s *Session) ModelName() string  { return s.cam.ModelName() }

func (s *Session) TriggerSources() ([]int, error) { return s.cam.TriggerSources() }

func (s *Session) setTriggerInt(value float64, set func(int) error) (float64, error) {
	if err := set(int(value)); err != nil {
		return UnsupportedValue, err
	}
	return UnsupportedValue, nil
}

// setFeatureParam implements the Brightness|Gain|Exposure|Shutter|
// Sharpness|Saturation|Gamma / Auto<Name> branch of spec §6: setting a
// value switches the feature to manual mode; the Auto prefix switches it
// to automatic; an out-of-range manual value is clamped with a warning.
func (s *Session) setFeatureParam(feature device.Feature, auto bool, value float64) (float64, error) {
	if auto {
		if err := s.cam.SetFeatureMode(feature, device.FeatureModeAuto); err != nil {
			return UnsupportedValue, err
		}
		return UnsupportedValue, nil
	}

	lo, hi, err := s.cam.FeatureRange(feature)
	if err != nil {
		return UnsupportedValue, ErrFeatureUnsupported
	}
	clamped := value
	if clamped < lo {
		clamped = lo
		s.log().Warning("feature value below device range, clamped", "feature", feature, "requested", value, "clamped", clamped)
	} else if clamped > hi {
		clamped = hi
		s.log().Warning("feature value above device range, clamped", "feature", feature, "requested", value, "clamped", clamped)
	}

	if err := s.cam.SetFeatureMode(feature, device.FeatureModeManual); err != nil {
		return UnsupportedValue, err
	}
	prev, err := s.cam.SetFeature(feature, clamped)
	if err != nil {
		return UnsupportedValue, err
	}
	return prev, nil
}

func (s *Session) printParameters() {
	s.mu.Lock()
	req, neg := s.requested, s.negotiated
	s.mu.Unlock()
	s.log().Info("session parameters",
		"reqlayers", req.ReqLayers, "bitdepth", req.BitDepth,
		"mode", neg.mode.ID, "coding", neg.colorCoding.String(), "framerate", neg.framerate)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
