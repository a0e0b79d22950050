/*
DESCRIPTION
  admit.go implements the pixel-format admission rules of spec §4.2: for
  a given request (reqlayers, dataconversionmode, bpc), which color
  codings a candidate mode may offer.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package mode

import "github.com/ausocean/iidc/device"

// admits reports whether coding is an acceptable color coding for req,
// per the pixel-format admission table of spec §4.2.
func admits(req Request, coding device.ColorCoding) bool {
	bpc := req.bpc()

	switch {
	case req.ReqLayers == 1 || req.ReqLayers == 2:
		switch req.DataConversionMode {
		case 1, 2:
			return coding.IsRaw() && coding.BitsPerChannel() == bpc
		case 3:
			return coding.IsMono() && coding.BitsPerChannel() == bpc
		case 4:
			// Treated as raw: accept MONO data but post-process as if raw.
			return coding.IsMono() && coding.BitsPerChannel() == bpc
		default: // 0
			return (coding.IsRaw() || coding.IsMono()) && coding.BitsPerChannel() == bpc
		}

	case req.ReqLayers == 3 || req.ReqLayers == 4:
		switch req.DataConversionMode {
		case 2:
			return coding.IsRaw() && coding.BitsPerChannel() == bpc
		case 4:
			return coding.IsMono() && coding.BitsPerChannel() == bpc
		default: // 0 or 3
			return coding.BitsPerChannel() == bpc
		}

	case req.ReqLayers == 5:
		return coding.IsYUV()

	default: // 0: any
		return coding.BitsPerChannel() == bpc
	}
}

// actualLayers derives actual_layers for a chosen coding, applying the
// raw/mono-with-debayering override of spec §4.2.
func actualLayers(req Request, coding device.ColorCoding) int {
	layers := 1
	if !coding.IsMono() && !coding.IsRaw() {
		layers = 3
	}
	if layers == 1 && req.ReqLayers >= 3 && (req.DataConversionMode == 2 || req.DataConversionMode == 4) {
		layers = 3
	}
	return layers
}

// reconcileLayers applies spec §4.2 "Layer reconciliation": reqlayers==0
// adopts actual_layers; requested 2/4 downgraded to the achieved 1/3 with
// a warning; reqlayers==5 collapses to 3.
func reconcileLayers(req Request, actual int, warn *Warnings) int {
	reqLayers := req.ReqLayers
	if reqLayers == 0 {
		return actual
	}
	if reqLayers == 5 {
		return 3
	}
	if (reqLayers == 2 && actual != 2) || (reqLayers == 4 && actual != 4) {
		warn.add("requested layer count downgraded to match achieved layers")
		return actual
	}
	return reqLayers
}
