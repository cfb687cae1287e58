package blocktex

import (
	"errors"
	"math/bits"
)

const maxByteCount = uint64(^uint(0) >> 1)

// Surface holds every layer and mip level of one compressed texture in a
// single flat buffer: layer outer, mip level inner, row-major blocks within a
// level. Levels are stored at their physical (block-aligned) size.
type Surface struct {
	Width, Height, Depth uint32
	Layers, Mipmaps      uint32
	Format               Format
	Data                 []byte
}

// SurfaceRGBA8 is an uncompressed surface, four bytes per pixel. Levels are
// stored at their virtual (unpadded) size.
type SurfaceRGBA8 struct {
	Width, Height, Depth uint32
	Layers, Mipmaps      uint32
	Data                 []byte
}

// mipDimension returns the virtual size of one axis at the given mip level.
func mipDimension(base, mip uint32) uint32 {
	d := base >> mip
	if d < 1 {
		return 1
	}
	return d
}

// maxMipmapCount is floor(log2(dim)) + 1, the automatic mip chain length.
func maxMipmapCount(dim uint32) uint32 {
	return uint32(bits.Len32(dim))
}

func roundUp(x, n uint32) uint32 {
	return ((x + n - 1) / n) * n
}

// mipSize returns the unit count for one level:
// ceil(w/bw) * ceil(h/bh) * ceil(d/bd) * unitsPerBlock.
// The second return is false when the product overflows the platform size
// limit.
func mipSize(w, h, d, bw, bh, bd, unitsPerBlock uint64) (int, bool) {
	blocks := func(x, b uint64) uint64 { return (x + b - 1) / b }
	total := blocks(w, bw)
	for _, m := range [3]uint64{blocks(h, bh), blocks(d, bd), unitsPerBlock} {
		hi, lo := bits.Mul64(total, m)
		if hi != 0 {
			return 0, false
		}
		total = lo
	}
	if total > maxByteCount {
		return 0, false
	}
	return int(total), true
}

// levelByteSize returns the stored size of one mip level of the format,
// including block padding.
func levelByteSize(f Format, w, h, d uint32) (int, bool) {
	bw, bh, bd := f.BlockDimensions()
	return mipSize(uint64(w), uint64(h), uint64(d),
		uint64(bw), uint64(bh), uint64(bd), uint64(f.BytesPerBlock()))
}

// Validate checks the surface invariants: at least one layer and level, no
// zero dimension, and a data buffer exactly as long as the sum of every
// layer and level.
func (s *Surface) Validate() error {
	if s.Width == 0 || s.Height == 0 || s.Depth == 0 || s.Layers < 1 || s.Mipmaps < 1 {
		return &ZeroSizedSurfaceError{
			Width: s.Width, Height: s.Height, Depth: s.Depth,
			Layers: s.Layers, Mipmaps: s.Mipmaps,
		}
	}
	total := 0
	for mip := uint32(0); mip < s.Mipmaps; mip++ {
		size, ok := levelByteSize(s.Format,
			mipDimension(s.Width, mip),
			mipDimension(s.Height, mip),
			mipDimension(s.Depth, mip))
		if !ok {
			return &PixelCountOverflowError{Width: s.Width, Height: s.Height, Depth: s.Depth}
		}
		total += size
	}
	total *= int(s.Layers)
	if len(s.Data) != total {
		return &NotEnoughDataError{Expected: total, Actual: len(s.Data)}
	}
	return nil
}

// Get returns the stored bytes for one layer and mip level.
func (s *Surface) Get(layer, mip uint32) ([]byte, error) {
	if layer >= s.Layers || mip >= s.Mipmaps {
		return nil, &MipmapAccessError{Layer: layer, Mipmap: mip}
	}
	layerSize := 0
	offset := 0
	target := 0
	for m := uint32(0); m < s.Mipmaps; m++ {
		size, ok := levelByteSize(s.Format,
			mipDimension(s.Width, m),
			mipDimension(s.Height, m),
			mipDimension(s.Depth, m))
		if !ok {
			return nil, &PixelCountOverflowError{Width: s.Width, Height: s.Height, Depth: s.Depth}
		}
		if m == mip {
			offset = layerSize
			target = size
		}
		layerSize += size
	}
	start := int(layer)*layerSize + offset
	end := start + target
	if end > len(s.Data) {
		return nil, &NotEnoughDataError{Expected: end, Actual: len(s.Data)}
	}
	return s.Data[start:end], nil
}

// Get returns the pixel bytes for one layer and mip level at its virtual
// size.
func (s *SurfaceRGBA8) Get(layer, mip uint32) ([]byte, error) {
	if layer >= s.Layers || mip >= s.Mipmaps {
		return nil, &MipmapAccessError{Layer: layer, Mipmap: mip}
	}
	layerSize := 0
	offset := 0
	target := 0
	for m := uint32(0); m < s.Mipmaps; m++ {
		size, ok := mipSize(
			uint64(mipDimension(s.Width, m)),
			uint64(mipDimension(s.Height, m)),
			uint64(mipDimension(s.Depth, m)),
			1, 1, 1, 4)
		if !ok {
			return nil, &PixelCountOverflowError{Width: s.Width, Height: s.Height, Depth: s.Depth}
		}
		if m == mip {
			offset = layerSize
			target = size
		}
		layerSize += size
	}
	start := int(layer)*layerSize + offset
	end := start + target
	if end > len(s.Data) {
		return nil, &NotEnoughDataError{Expected: end, Actual: len(s.Data)}
	}
	return s.Data[start:end], nil
}

// getAvailable returns whatever of one level's pixel data is actually stored,
// which may be shorter than the level's full size when the source carries
// truncated mip data. Only the layer/level bounds are hard errors.
func (s *SurfaceRGBA8) getAvailable(layer, mip uint32) ([]byte, error) {
	level, err := s.Get(layer, mip)
	if err == nil {
		return level, nil
	}
	var short *NotEnoughDataError
	if !errors.As(err, &short) {
		return nil, err
	}
	// Recompute the level start and clamp the end to the buffer.
	layerSize := 0
	offset := 0
	for m := uint32(0); m < s.Mipmaps; m++ {
		size, _ := mipSize(
			uint64(mipDimension(s.Width, m)),
			uint64(mipDimension(s.Height, m)),
			uint64(mipDimension(s.Depth, m)),
			1, 1, 1, 4)
		if m == mip {
			offset = layerSize
		}
		layerSize += size
	}
	from := int(layer)*layerSize + offset
	if from >= len(s.Data) {
		return nil, nil
	}
	return s.Data[from:], nil
}

// validateEncode performs the eager checks that run before any allocation or
// codec work: no zero dimension, base dimensions an integral number of
// blocks, and enough base level data.
func (s *SurfaceRGBA8) validateEncode(format Format) error {
	if s.Width == 0 || s.Height == 0 || s.Depth == 0 || s.Layers < 1 || s.Mipmaps < 1 {
		return &ZeroSizedSurfaceError{
			Width: s.Width, Height: s.Height, Depth: s.Depth,
			Layers: s.Layers, Mipmaps: s.Mipmaps,
		}
	}
	bw, bh, bd := format.BlockDimensions()
	if s.Width%bw != 0 || s.Height%bh != 0 || s.Depth%bd != 0 {
		return &NonIntegralDimensionsError{
			Width: s.Width, Height: s.Height, Depth: s.Depth,
			BlockWidth: bw, BlockHeight: bh,
		}
	}
	expected, ok := mipSize(uint64(s.Width), uint64(s.Height), uint64(s.Depth),
		uint64(bw), uint64(bh), uint64(bd), uint64(bw)*uint64(bh)*uint64(bd)*4)
	if !ok {
		return &PixelCountOverflowError{Width: s.Width, Height: s.Height, Depth: s.Depth}
	}
	if len(s.Data) < expected {
		return &NotEnoughDataError{Expected: expected, Actual: len(s.Data)}
	}
	return nil
}
