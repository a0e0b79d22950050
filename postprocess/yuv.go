/*
DESCRIPTION
  yuv.go converts YUV422/YUV411 payloads to RGB8 (spec §4.3's "otherwise
  (YUV): convert to RGB8" branch). 422 goes through gocv.CvtColor; 411 has
  no native gocv colour-conversion code, so it's unpacked to 422 first
  using the same per-pixel arithmetic style as the teacher's manual NAL
  byte-level parsing in codec/jpeg (kept only as a grounding reference,
  not imported here since that package was dropped for this domain).

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

	"github.com/ausocean/iidc/device"
)

// yuvToRGB converts a YUV422 or YUV411 payload into an interleaved RGB8
// scratch buffer.
func yuvToRGB(src, dst []byte, w, h int, coding device.ColorCoding) error {
	var yuv422 []byte
	switch coding {
	case device.ColorCodingYUV422:
		yuv422 = src
	case device.ColorCodingYUV411:
		yuv422 = unpack411to422(src, w, h)
	default:
		return fmt.Errorf("postprocess: %s is not a YUV coding", coding)
	}

	if len(yuv422) < w*h*2 {
		return fmt.Errorf("postprocess: yuv422 frame too small for %dx%d", w, h)
	}

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC2, yuv422[:w*h*2])
	if err != nil {
		return fmt.Errorf("postprocess: could not wrap yuv422 frame: %w", err)
	}
	defer mat.Close()

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(mat, &rgb, gocv.ColorYUVToRGBUYVY)

	data, err := rgb.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("postprocess: could not read yuv conversion output: %w", err)
	}
	copy(dst, data)
	return nil
}

// unpack411to422 expands IIDC's 4:1:1 macropixel layout (one U and one V
// sample shared across four luma samples) into 4:2:2 (one U/V pair per
// two luma samples) so it can be handed to the same gocv conversion path
// as native 422 data.
func unpack411to422(src []byte, w, h int) []byte {
	out := make([]byte, w*h*2)
	const groupLuma = 4
	srcGroupBytes := groupLuma + 2 // U Y0 Y1 V Y2 Y3 per IIDC 411 macropixel.
	groupsPerRow := w / groupLuma

	oi := 0
	si := 0
	for row := 0; row < h; row++ {
		for g := 0; g < groupsPerRow; g++ {
			if si+srcGroupBytes > len(src) {
				return out
			}
			u := src[si]
			y0 := src[si+1]
			y1 := src[si+2]
			v := src[si+3]
			y2 := src[si+4]
			y3 := src[si+5]
			si += srcGroupBytes

			out[oi+0], out[oi+1] = u, y0
			out[oi+2], out[oi+3] = v, y1
			out[oi+4], out[oi+5] = u, y2
			out[oi+6], out[oi+7] = v, y3
			oi += 8
		}
	}
	return out
}
