/*
DESCRIPTION
  texture.go implements the GPU-texture format-selection logic of spec
  §4.4's get_image texture branch. Texture upload itself is delegated to
  a Sink; this package only decides which internal/external format and
  pixel-transfer scale to use.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package texture selects GPU texture formats for captured frames and
// defines the Sink interface the actual upload is delegated through.
package texture

// InternalFormat identifies the GPU-side storage format chosen for a
// captured frame.
type InternalFormat int

const (
	FormatNormalizedInt16 InternalFormat = iota
	FormatFloat16
	FormatFloat32
)

// Spec is the parameters a Sink needs to create/update a texture.
type Spec struct {
	ExternalFormat int // Caller-defined enum (RGB, LUMINANCE, ...).
	ExternalType   int // Caller-defined enum (UNSIGNED_BYTE, UNSIGNED_SHORT, FLOAT, ...).
	InternalFormat InternalFormat
	Data           []byte
	Width, Height  int
	Depth          int // reqlayers * (8 | 16 | 32), per spec §4.4.
}

// Sink is the external GPU texture-creation facility (out of core scope,
// per spec §1; upload itself is delegated here).
type Sink interface {
	CreateTexture(spec Spec) error
}

// Caps describes the caller's floating-point texture support, used by
// SelectFormat to decide between a normalized-int16 fallback and a true
// floating-point internal format.
type Caps struct {
	SupportsFloat16 bool
	SupportsFloat32 bool
}

// SelectFormat implements spec §4.4's texture branch: out_texture.depth
// is reqlayers*(8|16|32); the internal format is float16/float32/
// normalized-int16 depending on whether actualBitDepth > 11 and the
// caller's floating-texture capability bits. scale is the pixel-transfer
// scale (1 << (16-actualBitDepth)) applied for 9-15 bpc payloads before
// upload and un-applied afterward; it is 1 outside that range.
func SelectFormat(reqLayers, actualBitDepth int, caps Caps) (format InternalFormat, depth int, scale int) {
	switch {
	case actualBitDepth > 11 && caps.SupportsFloat32:
		format = FormatFloat32
		depth = reqLayers * 32
	case actualBitDepth > 11 && caps.SupportsFloat16:
		format = FormatFloat16
		depth = reqLayers * 16
	case actualBitDepth > 8:
		format = FormatNormalizedInt16
		depth = reqLayers * 16
	default:
		format = FormatNormalizedInt16
		depth = reqLayers * 8
	}

	scale = 1
	if actualBitDepth >= 9 && actualBitDepth <= 15 {
		scale = 1 << uint(16-actualBitDepth)
	}
	return format, depth, scale
}
