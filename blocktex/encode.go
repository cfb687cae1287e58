package blocktex

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// EncodeSurface compresses an RGBA8 surface into format using the built-in
// encoder, generating mip levels per the mipmaps policy. Layers encode in
// parallel.
func EncodeSurface(ctx context.Context, src *SurfaceRGBA8, format Format, quality Quality, mipmaps Mipmaps) (*Surface, error) {
	return EncodeSurfaceWith(ctx, src, format, quality, mipmaps, NativeEncoder{})
}

// EncodeSurfaceWith is EncodeSurface with a caller-supplied block encoder,
// for delegating the per-block work to an external compressor.
func EncodeSurfaceWith(ctx context.Context, src *SurfaceRGBA8, format Format, quality Quality, mipmaps Mipmaps, enc BlockEncoder) (*Surface, error) {
	if err := src.validateEncode(format); err != nil {
		return nil, err
	}

	levels := mipmaps.levelCount(src)
	offsets := make([]int, levels)
	layerSize := 0
	for m := uint32(0); m < levels; m++ {
		size, ok := levelByteSize(format,
			mipDimension(src.Width, m),
			mipDimension(src.Height, m),
			mipDimension(src.Depth, m))
		if !ok {
			return nil, &PixelCountOverflowError{Width: src.Width, Height: src.Height, Depth: src.Depth}
		}
		offsets[m] = layerSize
		layerSize += size
	}

	out := &Surface{
		Width: src.Width, Height: src.Height, Depth: src.Depth,
		Layers: src.Layers, Mipmaps: levels,
		Format: format,
		Data:   make([]byte, layerSize*int(src.Layers)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for layer := uint32(0); layer < src.Layers; layer++ {
		layer := layer
		dst := out.Data[int(layer)*layerSize : (int(layer)+1)*layerSize]
		g.Go(func() error {
			return encodeLayer(ctx, enc, format, quality, src, layer, mipmaps, levels, dst, offsets)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// encodeLayer builds one layer's mip chain level by level. Levels past the
// base come either from the source surface (zero-padded to physical size) or
// from box-filtering the previous level, then compress slice by slice.
func encodeLayer(ctx context.Context, enc BlockEncoder, format Format, quality Quality, src *SurfaceRGBA8, layer uint32, mipmaps Mipmaps, levels uint32, dst []byte, offsets []int) error {
	bw, bh, _ := format.BlockDimensions()

	var prev []byte
	var prevW, prevH, prevD int
	for m := uint32(0); m < levels; m++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		vw := int(mipDimension(src.Width, m))
		vh := int(mipDimension(src.Height, m))
		vd := int(mipDimension(src.Depth, m))
		pw := int(roundUp(uint32(vw), bw))
		ph := int(roundUp(uint32(vh), bh))
		pd := vd

		var cur []byte
		switch {
		case m == 0:
			// Base dimensions are validated block-aligned, so virtual
			// and physical agree.
			base, err := src.Get(layer, 0)
			if err != nil {
				return err
			}
			cur = base
		case mipmaps.mode == mipFromSurface:
			level, err := src.getAvailable(layer, m)
			if err != nil {
				return err
			}
			cur = padRGBA8(pw, ph, pd, vw, vh, vd, level)
		default:
			cur = downsampleRGBA8(pw, ph, pd, prevW, prevH, prevD, prev)
		}

		sliceBlocks := (pw / int(bw)) * (ph / int(bh)) * int(format.BytesPerBlock())
		for z := 0; z < pd; z++ {
			blocks, err := enc.CompressBlocks(format, uint32(pw), uint32(ph), pw*4, cur[z*pw*ph*4:], quality)
			if err != nil {
				return err
			}
			copy(dst[offsets[m]+z*sliceBlocks:], blocks)
		}

		prev, prevW, prevH, prevD = cur, pw, ph, pd
	}
	return nil
}
