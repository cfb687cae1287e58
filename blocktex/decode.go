package blocktex

import (
	"context"
	"encoding/binary"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

func f32ToUnorm8(f float32) byte {
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return byte(f*255 + 0.5)
}

// DecodeBlock decodes one encoded block into an RGBA8 tile. dst receives the
// block's pixel footprint, four bytes per pixel, with pitch bytes between
// rows. For uncompressed formats the block is a single pixel and pitch is
// unused. Missing channels decode to zero with opaque alpha.
func DecodeBlock(format Format, block, dst []byte, pitch int) error {
	if n := int(format.BytesPerBlock()); len(block) < n {
		return &NotEnoughDataError{Expected: n, Actual: len(block)}
	}
	switch format {
	case BC1Unorm, BC1Srgb:
		decodeBC1(block, dst, pitch)
	case BC2Unorm, BC2Srgb:
		decodeBC2(block, dst, pitch)
	case BC3Unorm, BC3Srgb:
		decodeBC3(block, dst, pitch)
	case BC4Unorm:
		decodeBC4(block, dst, pitch, false)
	case BC4Snorm:
		decodeBC4(block, dst, pitch, true)
	case BC5Unorm:
		decodeBC5(block, dst, pitch, false)
	case BC5Snorm:
		decodeBC5(block, dst, pitch, true)
	case BC6HUfloat:
		decodeBC6H(block, dst, pitch, false)
	case BC6HSfloat:
		decodeBC6H(block, dst, pitch, true)
	case BC7Unorm, BC7Srgb:
		decodeBC7(block, dst, pitch)
	case R8Unorm:
		dst[0], dst[1], dst[2], dst[3] = block[0], 0, 0, 255
	case RGBA8Unorm, RGBA8Srgb:
		copy(dst[:4], block[:4])
	case BGRA8Unorm, BGRA8Srgb:
		dst[0], dst[1], dst[2], dst[3] = block[2], block[1], block[0], block[3]
	case RGBAF32:
		for c := 0; c < 4; c++ {
			f := math.Float32frombits(binary.LittleEndian.Uint32(block[c*4:]))
			dst[c] = f32ToUnorm8(f)
		}
	default:
		return &UnsupportedFormatError{Format: format, Op: "decode"}
	}
	return nil
}

// decodeLevel decodes one mip level into virtual-size row-major RGBA8.
// Compressed levels decode block by block into a physical-size scratch slice
// and then crop; the padding pixels never reach dst.
func decodeLevel(format Format, w, h, d uint32, src, dst []byte) error {
	bpb := int(format.BytesPerBlock())
	if !format.Compressed() {
		n := int(w) * int(h) * int(d)
		for i := 0; i < n; i++ {
			if err := DecodeBlock(format, src[i*bpb:(i+1)*bpb], dst[i*4:i*4+4], 0); err != nil {
				return err
			}
		}
		return nil
	}

	bw, bh, _ := format.BlockDimensions()
	pw := int(roundUp(w, bw))
	ph := int(roundUp(h, bh))
	bxCount := pw / int(bw)
	byCount := ph / int(bh)
	pitch := pw * 4
	scratch := make([]byte, pw*ph*4)
	for z := 0; z < int(d); z++ {
		base := z * bxCount * byCount * bpb
		for by := 0; by < byCount; by++ {
			for bx := 0; bx < bxCount; bx++ {
				off := base + (by*bxCount+bx)*bpb
				o := (by*int(bh)*pw + bx*int(bw)) * 4
				if err := DecodeBlock(format, src[off:off+bpb], scratch[o:], pitch); err != nil {
					return err
				}
			}
		}
		for y := 0; y < int(h); y++ {
			so := y * pitch
			do := ((z*int(h) + y) * int(w)) * 4
			copy(dst[do:do+int(w)*4], scratch[so:so+int(w)*4])
		}
	}
	return nil
}

// DecodeSurface decodes every layer and mip level of a compressed surface
// into an RGBA8 surface at virtual sizes. Layer/level pairs decode in
// parallel into disjoint slices of the output buffer.
func DecodeSurface(ctx context.Context, s *Surface) (*SurfaceRGBA8, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	offsets := make([]int, s.Mipmaps)
	sizes := make([]int, s.Mipmaps)
	layerSize := 0
	for m := uint32(0); m < s.Mipmaps; m++ {
		size, ok := mipSize(
			uint64(mipDimension(s.Width, m)),
			uint64(mipDimension(s.Height, m)),
			uint64(mipDimension(s.Depth, m)),
			1, 1, 1, 4)
		if !ok {
			return nil, &PixelCountOverflowError{Width: s.Width, Height: s.Height, Depth: s.Depth}
		}
		offsets[m] = layerSize
		sizes[m] = size
		layerSize += size
	}

	out := &SurfaceRGBA8{
		Width: s.Width, Height: s.Height, Depth: s.Depth,
		Layers: s.Layers, Mipmaps: s.Mipmaps,
		Data: make([]byte, layerSize*int(s.Layers)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for layer := uint32(0); layer < s.Layers; layer++ {
		for mip := uint32(0); mip < s.Mipmaps; mip++ {
			layer, mip := layer, mip
			start := int(layer)*layerSize + offsets[mip]
			dst := out.Data[start : start+sizes[mip]]
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				src, err := s.Get(layer, mip)
				if err != nil {
					return err
				}
				return decodeLevel(s.Format,
					mipDimension(s.Width, mip),
					mipDimension(s.Height, mip),
					mipDimension(s.Depth, mip),
					src, dst)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
