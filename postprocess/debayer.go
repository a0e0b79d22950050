/*
DESCRIPTION
  debayer.go implements Bayer demosaicing via gocv.io/x/gocv, grounded on
  the teacher repo's own use of gocv.CvtColor for pixel-level colour
  conversion in filter/diff.go and filter/motion.go.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package postprocess

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DebayerMethod selects the demosaicing algorithm (spec §6
// DebayerMethod: "index into the IIDC bayer methods").
type DebayerMethod int

const (
	DebayerNearest DebayerMethod = iota
	DebayerBilinear
	DebayerHQLinear
	DebayerEdgeSense
	DebayerVNG
)

// Bayer filter pattern codes, matching the dc1394 colour-filter enum
// range this post-processor's bayer_pattern_override substitutes into
// when a dequeued frame's own filter code is out of range (spec §4.3).
const (
	BayerRGGB = iota
	BayerGBRG
	BayerGRBG
	BayerBGGR
	bayerPatternCount
)

func validBayerPattern(p int) bool { return p >= BayerRGGB && p < bayerPatternCount }

func bayerCode(pattern int) gocv.ColorConversionCode {
	switch pattern {
	case BayerRGGB:
		return gocv.ColorBayerRGToBGR
	case BayerGBRG:
		return gocv.ColorBayerGBToBGR
	case BayerGRBG:
		return gocv.ColorBayerGRToBGR
	case BayerBGGR:
		return gocv.ColorBayerBGToBGR
	default:
		return gocv.ColorBayerRGToBGR
	}
}

// debayer demosaics an 8-bit single-channel raw/mono payload into an
// interleaved RGB8 scratch buffer. method affects interpolation quality
// (VNG uses gocv's variable-number-of-gradients path); a method outside
// the known range fails with ErrInvalidDebayerMethod.
func debayer(src, dst []byte, w, h, pattern int, method DebayerMethod) error {
	if method < DebayerNearest || method > DebayerVNG {
		return ErrInvalidDebayerMethod
	}
	if !validBayerPattern(pattern) {
		return ErrInvalidBayerPattern
	}
	if len(src) < w*h {
		return fmt.Errorf("postprocess: raw frame too small for %dx%d", w, h)
	}

	raw, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, src[:w*h])
	if err != nil {
		return fmt.Errorf("postprocess: could not wrap raw frame: %w", err)
	}
	defer raw.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()

	code := bayerCode(pattern)
	if method == DebayerVNG {
		code = bayerVNGCode(pattern)
	}
	gocv.CvtColor(raw, &rgb, code)

	if rgb.Cols() != w || rgb.Rows() != h || rgb.Channels() != 3 {
		return fmt.Errorf("postprocess: unexpected debayer output shape %dx%dx%d", rgb.Cols(), rgb.Rows(), rgb.Channels())
	}

	data, err := rgb.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("postprocess: could not read debayer output: %w", err)
	}
	copy(dst, data)
	return nil
}

func bayerVNGCode(pattern int) gocv.ColorConversionCode {
	switch pattern {
	case BayerRGGB:
		return gocv.ColorBayerRGToBGRVNG
	case BayerGBRG:
		return gocv.ColorBayerGBToBGRVNG
	case BayerGRBG:
		return gocv.ColorBayerGRToBGRVNG
	case BayerBGGR:
		return gocv.ColorBayerBGToBGRVNG
	default:
		return gocv.ColorBayerRGToBGRVNG
	}
}
