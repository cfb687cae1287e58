package blocktex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMipmapsLevelCount(t *testing.T) {
	src := &SurfaceRGBA8{Width: 12, Height: 12, Depth: 1, Layers: 1, Mipmaps: 3}

	require.Equal(t, uint32(1), MipmapsDisabled().levelCount(src))
	require.Equal(t, uint32(3), MipmapsFromSurface().levelCount(src))
	require.Equal(t, uint32(5), MipmapsExact(5).levelCount(src))
	require.Equal(t, uint32(1), MipmapsExact(0).levelCount(src))
	require.Equal(t, uint32(4), MipmapsAutomatic().levelCount(src))

	big := &SurfaceRGBA8{Width: 256, Height: 4, Depth: 1, Layers: 1, Mipmaps: 1}
	require.Equal(t, uint32(9), MipmapsAutomatic().levelCount(big))
}

func solidQuad(dst []byte, w int, x0, y0 int, v byte) {
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			o := ((y0+dy)*w + x0 + dx) * 4
			dst[o], dst[o+1], dst[o+2], dst[o+3] = v, v, v, 255
		}
	}
}

func TestDownsampleAverages(t *testing.T) {
	prev := make([]byte, 4*4*4)
	solidQuad(prev, 4, 0, 0, 10)
	solidQuad(prev, 4, 2, 0, 20)
	solidQuad(prev, 4, 0, 2, 30)
	solidQuad(prev, 4, 2, 2, 40)

	out := downsampleRGBA8(2, 2, 1, 4, 4, 1, prev)
	require.Len(t, out, 2*2*4)
	require.Equal(t, byte(10), out[0])
	require.Equal(t, byte(20), out[4])
	require.Equal(t, byte(30), out[8])
	require.Equal(t, byte(40), out[12])
	for _, o := range []int{3, 7, 11, 15} {
		require.Equal(t, byte(255), out[o])
	}
}

func TestDownsampleOddDims(t *testing.T) {
	// 3x3 previous level into a 4x4 physical target: positions past the
	// shrunken extent have no in-range samples and stay zero.
	prev := make([]byte, 3*3*4)
	for i := 0; i < 9; i++ {
		prev[i*4] = 100
		prev[i*4+3] = 255
	}
	out := downsampleRGBA8(4, 4, 1, 3, 3, 1, prev)
	require.Len(t, out, 4*4*4)

	// (0,0) averages a full 2x2; (1,0) only column x=2.
	require.Equal(t, byte(100), out[0])
	require.Equal(t, byte(100), out[4])
	// (2,0) and beyond have no source pixels.
	require.Equal(t, byte(0), out[8])
	require.Equal(t, byte(0), out[8+3])
	require.Equal(t, byte(0), out[3*4*4])
}

func TestDownsampleVolume(t *testing.T) {
	prev := make([]byte, 2*2*2*4)
	for i := 0; i < 8; i++ {
		prev[i*4] = byte(10 * (i + 1))
		prev[i*4+3] = 255
	}
	out := downsampleRGBA8(1, 1, 1, 2, 2, 2, prev)
	require.Len(t, out, 4)
	// Mean of 10..80.
	require.Equal(t, byte(45), out[0])
	require.Equal(t, byte(255), out[3])
}

func TestPadRGBA8(t *testing.T) {
	src := []byte{
		1, 2, 3, 4, 5, 6, 7, 8,
		9, 10, 11, 12, 13, 14, 15, 16,
	}
	out := padRGBA8(4, 4, 1, 2, 2, 1, src)
	require.Len(t, out, 4*4*4)
	require.Equal(t, src[0:8], out[0:8])
	require.Equal(t, src[8:16], out[16:24])
	// Padding columns and rows stay zero.
	require.Equal(t, make([]byte, 8), out[8:16])
	require.Equal(t, make([]byte, 32), out[32:64])
}

func TestPadRGBA8ShortSource(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5, 6}
	out := padRGBA8(4, 4, 1, 2, 2, 1, src)
	require.Equal(t, []byte{1, 2, 3, 4}, out[0:4])
	// The second pixel is cut off mid-value and is skipped entirely.
	require.Equal(t, make([]byte, 60), out[4:64])
}
