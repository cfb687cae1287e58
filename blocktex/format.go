package blocktex

import "fmt"

// Format identifies a fixed-block texture encoding.
type Format int

const (
	// BC1Unorm is DXT1: 565 color endpoints with 2-bit palette indices.
	BC1Unorm Format = iota
	BC1Srgb
	// BC2Unorm is DXT3: explicit 4-bit alpha plus a BC1-style color block.
	BC2Unorm
	BC2Srgb
	// BC3Unorm is DXT5: interpolated 3-bit-index alpha plus a BC1-style color block.
	BC3Unorm
	BC3Srgb
	// BC4Unorm is RGTC1: one interpolated channel.
	BC4Unorm
	BC4Snorm
	// BC5Unorm is RGTC2: two interpolated channels.
	BC5Unorm
	BC5Snorm
	// BC6HUfloat holds unsigned half-float RGB endpoints.
	BC6HUfloat
	BC6HSfloat
	// BC7Unorm is the 8-mode partitioned RGBA format.
	BC7Unorm
	BC7Srgb
	R8Unorm
	RGBA8Unorm
	RGBA8Srgb
	RGBAF32
	BGRA8Unorm
	BGRA8Srgb

	formatCount
)

// DataKind describes how a format's channel values are interpreted.
type DataKind int

const (
	KindUnorm DataKind = iota
	KindSnorm
	KindFloat
	KindSrgb
)

// BlockDimensions returns the pixel footprint of one compressed block.
// Uncompressed formats report a 1x1x1 block.
func (f Format) BlockDimensions() (width, height, depth uint32) {
	switch f {
	case R8Unorm, RGBA8Unorm, RGBA8Srgb, RGBAF32, BGRA8Unorm, BGRA8Srgb:
		return 1, 1, 1
	default:
		return 4, 4, 1
	}
}

// BytesPerBlock returns the fixed size of one encoded block.
func (f Format) BytesPerBlock() uint32 {
	switch f {
	case BC1Unorm, BC1Srgb, BC4Unorm, BC4Snorm:
		return 8
	case R8Unorm:
		return 1
	case RGBA8Unorm, RGBA8Srgb, BGRA8Unorm, BGRA8Srgb:
		return 4
	default:
		// BC2, BC3, BC5, BC6H, BC7 and RGBAF32.
		return 16
	}
}

// ChannelCount returns the number of meaningful channels in the format.
func (f Format) ChannelCount() uint32 {
	switch f {
	case R8Unorm, BC4Unorm, BC4Snorm:
		return 1
	case BC5Unorm, BC5Snorm:
		return 2
	case BC1Unorm, BC1Srgb, BC6HUfloat, BC6HSfloat:
		return 3
	default:
		return 4
	}
}

// DataKind returns the channel interpretation of the format.
func (f Format) DataKind() DataKind {
	switch f {
	case BC1Srgb, BC2Srgb, BC3Srgb, BC7Srgb, RGBA8Srgb, BGRA8Srgb:
		return KindSrgb
	case BC4Snorm, BC5Snorm:
		return KindSnorm
	case BC6HUfloat, BC6HSfloat, RGBAF32:
		return KindFloat
	default:
		return KindUnorm
	}
}

// Compressed reports whether the format is block-compressed.
func (f Format) Compressed() bool {
	bw, bh, bd := f.BlockDimensions()
	return bw != 1 || bh != 1 || bd != 1
}

func (f Format) String() string {
	switch f {
	case BC1Unorm:
		return "BC1Unorm"
	case BC1Srgb:
		return "BC1Srgb"
	case BC2Unorm:
		return "BC2Unorm"
	case BC2Srgb:
		return "BC2Srgb"
	case BC3Unorm:
		return "BC3Unorm"
	case BC3Srgb:
		return "BC3Srgb"
	case BC4Unorm:
		return "BC4Unorm"
	case BC4Snorm:
		return "BC4Snorm"
	case BC5Unorm:
		return "BC5Unorm"
	case BC5Snorm:
		return "BC5Snorm"
	case BC6HUfloat:
		return "BC6HUfloat"
	case BC6HSfloat:
		return "BC6HSfloat"
	case BC7Unorm:
		return "BC7Unorm"
	case BC7Srgb:
		return "BC7Srgb"
	case R8Unorm:
		return "R8Unorm"
	case RGBA8Unorm:
		return "RGBA8Unorm"
	case RGBA8Srgb:
		return "RGBA8Srgb"
	case RGBAF32:
		return "RGBAF32"
	case BGRA8Unorm:
		return "BGRA8Unorm"
	case BGRA8Srgb:
		return "BGRA8Srgb"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Formats returns every supported format, useful for table-driven tests.
func Formats() []Format {
	all := make([]Format, 0, formatCount)
	for f := Format(0); f < formatCount; f++ {
		all = append(all, f)
	}
	return all
}
