package blocktex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func solidTile(r, g, b, a byte) [16][4]byte {
	var tile [16][4]byte
	for i := range tile {
		tile[i] = [4]byte{r, g, b, a}
	}
	return tile
}

func TestBC7ReservedModeDecodesToZero(t *testing.T) {
	var block [16]byte
	block[1] = 0xAB // garbage after the empty mode prefix
	var tile [64]byte
	for i := range tile {
		tile[i] = 0xEE
	}
	decodeBC7(block[:], tile[:], 16)
	require.Equal(t, [64]byte{}, tile)
}

func TestBC7Mode5SolidRoundTrip(t *testing.T) {
	// Even values below 128 survive the 7-bit endpoint quantization
	// exactly; alpha is stored at full precision.
	for _, c := range [][4]byte{
		{64, 32, 16, 200},
		{0, 126, 2, 0},
		{100, 100, 100, 255},
	} {
		tile := solidTile(c[0], c[1], c[2], c[3])
		var block [16]byte
		encodeBC7Block(&tile, block[:])

		var out [64]byte
		decodeBC7(block[:], out[:], 16)
		for i := 0; i < 16; i++ {
			require.Equal(t, c[0], out[i*4+0])
			require.Equal(t, c[1], out[i*4+1])
			require.Equal(t, c[2], out[i*4+2])
			require.Equal(t, c[3], out[i*4+3])
		}
	}
}

func TestBC7Mode5TwoColorRoundTrip(t *testing.T) {
	tile := solidTile(0, 0, 0, 255)
	for i := 8; i < 16; i++ {
		tile[i] = [4]byte{126, 126, 126, 255}
	}
	var block [16]byte
	encodeBC7Block(&tile, block[:])

	var out [64]byte
	decodeBC7(block[:], out[:], 16)
	for i := 0; i < 16; i++ {
		want := tile[i]
		require.Equal(t, want[0], out[i*4+0], "pixel %d", i)
		require.Equal(t, want[3], out[i*4+3], "pixel %d", i)
	}
}

func TestBC7Mode5AnchorSwap(t *testing.T) {
	// Pixel 0 holding the bright end forces the index-plane inversion that
	// keeps the anchor's high bit zero.
	tile := solidTile(0, 0, 0, 255)
	tile[0] = [4]byte{126, 126, 126, 0}

	var block [16]byte
	encodeBC7Block(&tile, block[:])

	var out [64]byte
	decodeBC7(block[:], out[:], 16)
	require.Equal(t, byte(126), out[0])
	require.Equal(t, byte(0), out[3])
	require.Equal(t, byte(0), out[1*4+0])
	require.Equal(t, byte(255), out[1*4+3])
}

func TestBC7Mode5Rotation(t *testing.T) {
	tile := solidTile(126, 64, 2, 200)
	var block [16]byte
	encodeBC7Block(&tile, block[:])

	var plain [64]byte
	decodeBC7(block[:], plain[:], 16)

	// Rotation lives in bits 6..7 of a mode 5 block; set it to 1 (swap
	// R and A).
	block[0] |= 1 << 6
	var rotated [64]byte
	decodeBC7(block[:], rotated[:], 16)

	for i := 0; i < 16; i++ {
		require.Equal(t, plain[i*4+3], rotated[i*4+0])
		require.Equal(t, plain[i*4+0], rotated[i*4+3])
		require.Equal(t, plain[i*4+1], rotated[i*4+1])
		require.Equal(t, plain[i*4+2], rotated[i*4+2])
	}
}

func TestBC7PartitionTablesShape(t *testing.T) {
	for p := 0; p < 64; p++ {
		// Texel 0 always belongs to subset 0.
		require.Equal(t, uint8(0), bc7Partition2[p][0])
		require.Equal(t, uint8(0), bc7Partition3[p][0])

		var seen2, seen3 [3]bool
		for i := 0; i < 16; i++ {
			require.Less(t, bc7Partition2[p][i], uint8(2))
			require.Less(t, bc7Partition3[p][i], uint8(3))
			seen2[bc7Partition2[p][i]] = true
			seen3[bc7Partition3[p][i]] = true
		}
		require.True(t, seen2[0] && seen2[1], "partition %d", p)
		require.True(t, seen3[0] && seen3[1] && seen3[2], "partition %d", p)

		// Anchors sit inside their subsets.
		require.Equal(t, uint8(1), bc7Partition2[p][bc7Anchor2[p]], "partition %d", p)
		require.Equal(t, uint8(1), bc7Partition3[p][bc7Anchor3a[p]], "partition %d", p)
		require.Equal(t, uint8(2), bc7Partition3[p][bc7Anchor3b[p]], "partition %d", p)
	}
}

func TestBC7ExpandEndpoints(t *testing.T) {
	require.Equal(t, 255, bc7Expand(127, 7))
	require.Equal(t, 0, bc7Expand(0, 7))
	require.Equal(t, 255, bc7Expand(255, 8))
	require.Equal(t, 255, bc7Expand(15, 4))
	require.Equal(t, 64, bc7Expand(32, 7))
}
