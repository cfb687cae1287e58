package blocktex

import "fmt"

// ZeroSizedSurfaceError reports a surface with a zero dimension, layer count
// or level count outside the explicitly-empty case.
type ZeroSizedSurfaceError struct {
	Width, Height, Depth uint32
	Layers, Mipmaps      uint32
}

func (e *ZeroSizedSurfaceError) Error() string {
	return fmt.Sprintf("blocktex: zero sized surface %dx%dx%d, %d layers, %d mipmaps",
		e.Width, e.Height, e.Depth, e.Layers, e.Mipmaps)
}

// PixelCountOverflowError reports dimensions whose pixel count overflows
// size arithmetic.
type PixelCountOverflowError struct {
	Width, Height, Depth uint32
}

func (e *PixelCountOverflowError) Error() string {
	return fmt.Sprintf("blocktex: pixel count for %dx%dx%d would overflow", e.Width, e.Height, e.Depth)
}

// NotEnoughDataError reports a buffer whose length does not satisfy the
// stated dimensions.
type NotEnoughDataError struct {
	Expected, Actual int
}

func (e *NotEnoughDataError) Error() string {
	return fmt.Sprintf("blocktex: expected %d bytes, got %d", e.Expected, e.Actual)
}

// NonIntegralDimensionsError reports encode dimensions that are not whole
// multiples of the block dimensions. Partial blocks cannot be represented,
// so this fails even when enough raw bytes are present.
type NonIntegralDimensionsError struct {
	Width, Height, Depth    uint32
	BlockWidth, BlockHeight uint32
}

func (e *NonIntegralDimensionsError) Error() string {
	return fmt.Sprintf("blocktex: surface %dx%dx%d is not an integral number of %dx%d blocks",
		e.Width, e.Height, e.Depth, e.BlockWidth, e.BlockHeight)
}

// UnsupportedFormatError reports an operation requested for a format without
// an available implementation.
type UnsupportedFormatError struct {
	Format Format
	Op     string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("blocktex: %s is not supported for %s", e.Op, e.Format)
}

// MipmapAccessError reports a layer/level pair outside a surface's bounds.
type MipmapAccessError struct {
	Layer, Mipmap uint32
}

func (e *MipmapAccessError) Error() string {
	return fmt.Sprintf("blocktex: no data for layer %d mipmap %d", e.Layer, e.Mipmap)
}
