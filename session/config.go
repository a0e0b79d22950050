/*
DESCRIPTION
  config.go defines Request, the Capture Session's caller-facing
  configuration struct (spec §3 "requested" fields plus the open/start
  arguments of §4.4), its validation/defaulting pass, and the recording
  filename suffix parser. The live Bayer-pattern-override watcher that
  Request.BayerOverridePath configures is in watcher.go.
  Request mirrors the role of revid/config.Config in the teacher repo: a
  flat struct, package-level defaults, and an explicit Validate method
  that accumulates every problem before returning, rather than failing on
  the first one.

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
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/iidc/encoder"
	"github.com/ausocean/iidc/mode"
	"github.com/ausocean/iidc/postprocess"
)

// RecordingFlags is the bitset of spec §6 "Recording flags".
type RecordingFlags int

const (
	FlagAudio            RecordingFlags = 1 << iota // Always force-cleared; audio is a non-goal.
	FlagDeliveryDisabled                             // Record only; consumer-visible delivery suppressed.
	FlagAsync                                        // Run capture on the background Recorder goroutine.
)

// Request is the caller's configuration for one Session, covering both
// Open and Start's arguments (spec §3 "requested", §4.4 open/start).
type Request struct {
	DeviceIndex int

	ReqLayers            int // 0..5.
	BitDepth             int // 8 or 16.
	DMABuffers           int
	X, Y, W, H           int // ROI; all-zero/unit rect ⇒ don't care.
	DataConversionMode   int // 0..4.
	DebayerMethod        postprocess.DebayerMethod
	BayerPatternOverride int
	PreferFormat7        bool

	CaptureRate float64 // mode.FastestFPS ⇒ fastest.
	DropFrames  bool

	TargetMovie       string // May carry a ":CodecSettings="/":CodecType=" suffix.
	RecordingFlags    RecordingFlags
	BayerOverridePath string // Optional; watched live via fsnotify.

	SyncRole int // device.SyncRole bits; validated at Start.

	Logger logging.Logger
}

// DefaultDMABuffers is used when Request.DMABuffers is left at zero,
// matching the teacher's pattern of package-level default constants for
// zero-valued config fields (config.DefaultOutputFPS and friends).
const DefaultDMABuffers = 8

// Validate checks req for internal consistency, following the
// accumulate-then-report shape of config.Config.Validate /
// device.MultiError: every problem is collected and logged via log
// before a single error is returned.
func (req *Request) Validate(log logging.Logger) error {
	var problems []string

	if req.ReqLayers < 0 || req.ReqLayers > 5 {
		problems = append(problems, "reqlayers must be in [0,5]")
	}
	if req.BitDepth != 0 && req.BitDepth != 8 && req.BitDepth != 16 {
		problems = append(problems, "bitdepth must be 8 or 16")
	}
	if req.DataConversionMode < 0 || req.DataConversionMode > 4 {
		problems = append(problems, "dataconversionmode must be in [0,4]")
	}
	if req.DMABuffers < 0 {
		problems = append(problems, "dma_buffers must be >= 0")
	}

	if req.DMABuffers == 0 {
		req.DMABuffers = DefaultDMABuffers
	}
	if req.BitDepth == 0 {
		req.BitDepth = 8
	}

	req.RecordingFlags &^= FlagAudio // audio is always force-cleared (non-goal).

	if len(problems) > 0 {
		for _, p := range problems {
			log.Error("invalid session request field", "problem", p)
		}
		return ErrConfig
	}
	return nil
}

// modeRequest projects req into the mode package's negotiation inputs.
func (req *Request) modeRequest() mode.Request {
	return mode.Request{
		ReqLayers:            req.ReqLayers,
		BitDepth:             req.BitDepth,
		DataConversionMode:   req.DataConversionMode,
		DebayerMethod:        int(req.DebayerMethod),
		BayerPatternOverride: req.BayerPatternOverride,
		PreferFormat7:        req.PreferFormat7,
		X:                    req.X,
		Y:                    req.Y,
		W:                    req.W,
		H:                    req.H,
		TargetFPS:            req.CaptureRate,
	}
}

// codecSpec is the parsed form of a TargetMovie filename's optional
// ":CodecSettings="/":CodecType=" suffix (spec §6 "Recording filename
// suffixes"), parsed with stdlib strings.Cut; no pack library handles
// this path:key=val:key=val suffix-splitting more directly.
type codecSpec struct {
	Path     string
	Type     string // "DEFAULTenc" if unspecified.
	Settings string
}

const defaultCodec = "DEFAULTenc"

// parseTargetMovie splits path's optional codec suffix off, returning
// the bare movie path plus the resolved codec identifier/settings.
func parseTargetMovie(path string) codecSpec {
	spec := codecSpec{Path: path, Type: defaultCodec}

	if before, after, ok := strings.Cut(spec.Path, ":CodecSettings="); ok {
		spec.Path, spec.Settings = before, after
	}
	if before, after, ok := strings.Cut(spec.Path, ":CodecType="); ok {
		spec.Path, spec.Type = before, after
	}
	return spec
}

// encoderSpec projects the parsed codec suffix into the encoder
// package's wire type, the one Sink.Open actually takes.
func (c codecSpec) encoderSpec() encoder.CodecSpec {
	return encoder.CodecSpec{Type: c.Type, Settings: c.Settings}
}
