/*
DESCRIPTION
  iidcparam.go implements the scripting-host parameter marshaling surface
  of spec §6's set_parameter: a tagged variant (Name enum) with the
  string<->enum translation kept strictly at the host boundary, per
  spec §9's "function-pointer-like string-keyed dispatch should become a
  tagged variant" design note.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package iidcparam translates the string-keyed set_parameter names of
// spec §6 into a typed, compile-time-checked Name enum. Every name is
// parsed exactly once, at the host boundary; the session package never
// compares parameter strings.
package iidcparam

import "strings"

// Name identifies one recognized set_parameter kind (spec §6).
type Name int

const (
	Unknown Name = iota
	PrintParameters
	GetFramerate
	GetROI
	GetVendorname
	GetModelname
	GetBandwidthUsage
	PreferFormat7Modes
	DataConversionMode
	DebayerMethod
	OverrideBayerPattern
	SyncMode
	TriggerMode
	TriggerSource
	GetTriggerSources
	TriggerPolarity
	SetNewMoviename
	Brightness
	Gain
	Exposure
	Shutter
	Sharpness
	Saturation
	Gamma
)

var byString = map[string]Name{
	"PrintParameters":      PrintParameters,
	"GetFramerate":         GetFramerate,
	"GetROI":               GetROI,
	"GetVendorname":        GetVendorname,
	"GetModelname":         GetModelname,
	"GetBandwidthUsage":    GetBandwidthUsage,
	"PreferFormat7Modes":   PreferFormat7Modes,
	"DataConversionMode":   DataConversionMode,
	"DebayerMethod":        DebayerMethod,
	"OverrideBayerPattern": OverrideBayerPattern,
	"SyncMode":             SyncMode,
	"TriggerMode":          TriggerMode,
	"TriggerSource":        TriggerSource,
	"GetTriggerSources":    GetTriggerSources,
	"TriggerPolarity":      TriggerPolarity,
	"SetNewMoviename":      SetNewMoviename,
	"Brightness":           Brightness,
	"Gain":                 Gain,
	"Exposure":             Exposure,
	"Shutter":              Shutter,
	"Sharpness":            Sharpness,
	"Saturation":           Saturation,
	"Gamma":                Gamma,
}

// featureNames is the subset of Name values that back a device.Feature,
// eligible for the "Auto" prefix (spec §6: "prefixing name with Auto
// switches to auto mode").
var featureNames = map[Name]bool{
	Brightness: true, Gain: true, Exposure: true, Shutter: true,
	Sharpness: true, Saturation: true, Gamma: true,
}

// Parsed is one parsed set_parameter call.
type Parsed struct {
	Name      Name
	Auto      bool   // "Auto" prefix was present; only meaningful for feature names.
	StrValue  string // populated for SetNewMoviename's "=<path>" suffix.
}

// Parse translates a raw set_parameter name (as received from the
// scripting host) into a Parsed value. Unrecognized names return
// Unknown with ok=false; the session package maps that straight to
// UnsupportedValue with a nil error, never panicking on malformed host
// input.
func Parse(raw string) (Parsed, bool) {
	name := raw
	var strValue string
	if i := strings.IndexByte(raw, '='); i >= 0 {
		name, strValue = raw[:i], raw[i+1:]
	}

	auto := false
	if strings.HasPrefix(name, "Auto") {
		candidate := strings.TrimPrefix(name, "Auto")
		if n, ok := byString[candidate]; ok && featureNames[n] {
			return Parsed{Name: n, Auto: true}, true
		}
	}

	n, ok := byString[name]
	if !ok {
		return Parsed{}, false
	}
	return Parsed{Name: n, Auto: auto, StrValue: strValue}, true
}

func (n Name) String() string {
	for s, v := range byString {
		if v == n {
			return s
		}
	}
	return "unknown"
}

// IsFeature reports whether n addresses a manual/auto device.Feature
// (Brightness, Gain, Exposure, Shutter, Sharpness, Saturation, Gamma).
func (n Name) IsFeature() bool { return featureNames[n] }
