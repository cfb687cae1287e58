package blocktex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidSurfaceRGBA8(w, h uint32, px [4]byte) *SurfaceRGBA8 {
	data := make([]byte, int(w)*int(h)*4)
	for i := 0; i < len(data); i += 4 {
		copy(data[i:i+4], px[:])
	}
	return &SurfaceRGBA8{
		Width: w, Height: h, Depth: 1,
		Layers: 1, Mipmaps: 1,
		Data: data,
	}
}

func TestEncodeBC7MipChainSizes(t *testing.T) {
	src := solidSurfaceRGBA8(12, 12, [4]byte{100, 100, 100, 255})
	out, err := EncodeSurface(context.Background(), src, BC7Unorm, QualityFast, MipmapsAutomatic())
	require.NoError(t, err)

	// 12x12 (9 blocks), 6x6 (4), 3x3 (1), 1x1 (1).
	require.Equal(t, uint32(4), out.Mipmaps)
	require.Len(t, out.Data, (9+4+1+1)*16)
	require.NoError(t, out.Validate())
}

func TestEncodeZeroSizedSurface(t *testing.T) {
	src := &SurfaceRGBA8{Width: 0, Height: 4, Depth: 1, Layers: 1, Mipmaps: 1}
	_, err := EncodeSurface(context.Background(), src, BC1Unorm, QualityFast, MipmapsDisabled())
	var zse *ZeroSizedSurfaceError
	require.ErrorAs(t, err, &zse)
}

func TestEncodeNonIntegralDimensions(t *testing.T) {
	src := &SurfaceRGBA8{
		Width: 3, Height: 5, Depth: 1,
		Layers: 1, Mipmaps: 1,
		Data: make([]byte, 1024),
	}
	_, err := EncodeSurface(context.Background(), src, BC7Unorm, QualityFast, MipmapsDisabled())
	var nid *NonIntegralDimensionsError
	require.ErrorAs(t, err, &nid)
}

func TestEncodeDisabledMipmaps(t *testing.T) {
	src := solidSurfaceRGBA8(8, 8, [4]byte{255, 0, 0, 255})
	out, err := EncodeSurface(context.Background(), src, BC1Unorm, QualityFast, MipmapsDisabled())
	require.NoError(t, err)
	require.Equal(t, uint32(1), out.Mipmaps)
	require.Len(t, out.Data, 4*8)
}

func TestEncodeLosslessRoundTrips(t *testing.T) {
	px := map[Format][4]byte{
		RGBA8Unorm: {10, 20, 30, 40},
		BGRA8Unorm: {50, 60, 70, 80},
		RGBAF32:    {90, 100, 110, 120},
		R8Unorm:    {42, 0, 0, 255},
	}
	for format, want := range px {
		src := solidSurfaceRGBA8(4, 4, want)
		out, err := EncodeSurface(context.Background(), src, format, QualityFast, MipmapsDisabled())
		require.NoError(t, err, format.String())

		back, err := DecodeSurface(context.Background(), out)
		require.NoError(t, err, format.String())
		require.Equal(t, src.Data, back.Data, format.String())
	}
}

func TestEncodeBCnSolidRoundTrips(t *testing.T) {
	cases := []struct {
		format Format
		src    [4]byte
		want   [4]byte
	}{
		// 565-exact colors for the palette formats.
		{BC1Unorm, [4]byte{255, 0, 255, 255}, [4]byte{255, 0, 255, 255}},
		{BC2Unorm, [4]byte{0, 255, 0, 170}, [4]byte{0, 255, 0, 170}},
		{BC3Unorm, [4]byte{255, 255, 255, 123}, [4]byte{255, 255, 255, 123}},
		// Single- and dual-channel formats drop the other channels.
		{BC4Unorm, [4]byte{100, 55, 66, 77}, [4]byte{100, 0, 0, 255}},
		{BC5Unorm, [4]byte{100, 200, 66, 77}, [4]byte{100, 200, 0, 255}},
		{BC4Snorm, [4]byte{255, 0, 0, 0}, [4]byte{255, 0, 0, 255}},
		{BC5Snorm, [4]byte{0, 255, 0, 0}, [4]byte{0, 255, 0, 255}},
	}
	for _, tc := range cases {
		src := solidSurfaceRGBA8(8, 8, tc.src)
		out, err := EncodeSurface(context.Background(), src, tc.format, QualityNormal, MipmapsDisabled())
		require.NoError(t, err, tc.format.String())

		back, err := DecodeSurface(context.Background(), out)
		require.NoError(t, err, tc.format.String())
		for i := 0; i < len(back.Data); i += 4 {
			for c := 0; c < 4; c++ {
				require.Equal(t, tc.want[c], back.Data[i+c],
					"%s channel %d", tc.format, c)
			}
		}
	}
}

func TestEncodeBC7SolidRoundTrip(t *testing.T) {
	src := solidSurfaceRGBA8(8, 8, [4]byte{64, 32, 16, 200})
	out, err := EncodeSurface(context.Background(), src, BC7Unorm, QualityNormal, MipmapsDisabled())
	require.NoError(t, err)

	back, err := DecodeSurface(context.Background(), out)
	require.NoError(t, err)
	require.Equal(t, src.Data, back.Data)
}

func TestEncodeCubeLayers(t *testing.T) {
	// Six faces, each a different solid value; layers must land in
	// disjoint regions and decode back independently.
	const faces = 6
	base := 8 * 8 * 4
	data := make([]byte, faces*base)
	for layer := 0; layer < faces; layer++ {
		for i := 0; i < base; i += 4 {
			o := layer*base + i
			data[o] = byte(40 * layer)
			data[o+3] = 255
		}
	}
	src := &SurfaceRGBA8{
		Width: 8, Height: 8, Depth: 1,
		Layers: faces, Mipmaps: 1,
		Data: data,
	}
	out, err := EncodeSurface(context.Background(), src, RGBA8Unorm, QualityFast, MipmapsAutomatic())
	require.NoError(t, err)
	require.Equal(t, uint32(faces), out.Layers)
	require.Equal(t, uint32(4), out.Mipmaps)

	back, err := DecodeSurface(context.Background(), out)
	require.NoError(t, err)
	for layer := uint32(0); layer < faces; layer++ {
		level, err := back.Get(layer, 0)
		require.NoError(t, err)
		require.Equal(t, byte(40*layer), level[0])
		mip, err := back.Get(layer, 3)
		require.NoError(t, err)
		require.Equal(t, byte(40*layer), mip[0])
	}
}

func TestEncodeFromSurfaceShortLevelZeroPads(t *testing.T) {
	// The source declares two levels but stores only the base; the missing
	// level data encodes as zeros instead of reading out of bounds.
	src := solidSurfaceRGBA8(8, 8, [4]byte{200, 0, 0, 255})
	src.Mipmaps = 2

	out, err := EncodeSurface(context.Background(), src, RGBA8Unorm, QualityFast, MipmapsFromSurface())
	require.NoError(t, err)
	require.Equal(t, uint32(2), out.Mipmaps)

	back, err := DecodeSurface(context.Background(), out)
	require.NoError(t, err)
	mip, err := back.Get(0, 1)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 4*4*4), mip)
}

func TestEncodeGeneratedMipAverages(t *testing.T) {
	// 8x8 with left half 100, right half 200: level 1 keeps the halves,
	// level 3 averages everything.
	src := solidSurfaceRGBA8(8, 8, [4]byte{100, 100, 100, 255})
	for y := 0; y < 8; y++ {
		for x := 4; x < 8; x++ {
			o := (y*8 + x) * 4
			src.Data[o], src.Data[o+1], src.Data[o+2] = 200, 200, 200
		}
	}
	out, err := EncodeSurface(context.Background(), src, RGBA8Unorm, QualityFast, MipmapsAutomatic())
	require.NoError(t, err)

	back, err := DecodeSurface(context.Background(), out)
	require.NoError(t, err)

	mip1, err := back.Get(0, 1)
	require.NoError(t, err)
	require.Equal(t, byte(100), mip1[0])
	require.Equal(t, byte(200), mip1[3*4])

	top, err := back.Get(0, 3)
	require.NoError(t, err)
	require.Equal(t, byte(150), top[0])
	require.Equal(t, byte(255), top[3])
}

// recordingEncoder swaps the native per-block work for a canned byte stream,
// standing in for an external compressor.
type recordingEncoder struct {
	calls int
	fill  byte
}

func (r *recordingEncoder) CompressBlocks(format Format, width, height uint32, stride int, rgba []byte, quality Quality) ([]byte, error) {
	r.calls++
	bw, bh, _ := format.BlockDimensions()
	n := int(width/bw) * int(height/bh) * int(format.BytesPerBlock())
	out := make([]byte, n)
	for i := range out {
		out[i] = r.fill
	}
	return out, nil
}

func TestEncodeSurfaceWithExternalEncoder(t *testing.T) {
	src := solidSurfaceRGBA8(8, 8, [4]byte{1, 2, 3, 4})
	enc := &recordingEncoder{fill: 0x5A}
	out, err := EncodeSurfaceWith(context.Background(), src, BC7Unorm, QualitySlow, MipmapsAutomatic(), enc)
	require.NoError(t, err)
	require.Equal(t, 4, enc.calls)
	for _, b := range out.Data {
		require.Equal(t, byte(0x5A), b)
	}
}
