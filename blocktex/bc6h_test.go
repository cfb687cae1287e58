package blocktex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBC6HZeroBlockIsBlack(t *testing.T) {
	var block [16]byte
	var half [16][3]uint16
	decodeBC6HBlock(block[:], false, &half)
	require.Equal(t, [16][3]uint16{}, half)

	var tile [64]byte
	decodeBC6H(block[:], tile[:], 16, false)
	for i := 0; i < 16; i++ {
		require.Equal(t, byte(0), tile[i*4+0])
		require.Equal(t, byte(0), tile[i*4+1])
		require.Equal(t, byte(0), tile[i*4+2])
		require.Equal(t, byte(255), tile[i*4+3])
	}
}

func TestBC6HReservedModeDecodesBlack(t *testing.T) {
	// Header value 19 is not an assigned mode.
	var block [16]byte
	block[0] = 0x13
	var half [16][3]uint16
	decodeBC6HBlock(block[:], false, &half)
	require.Equal(t, [16][3]uint16{}, half)
}

func TestBC6HUnsignedSolidRoundTrip(t *testing.T) {
	for _, c := range [][3]byte{
		{128, 64, 255},
		{0, 0, 0},
		{255, 255, 255},
		{10, 200, 90},
	} {
		tile := solidTile(c[0], c[1], c[2], 255)
		var block [16]byte
		encodeBC6HBlock(&tile, false, block[:])

		var out [64]byte
		decodeBC6H(block[:], out[:], 16, false)
		for i := 0; i < 16; i++ {
			requireClose(t, c[0], out[i*4+0], 2, "r")
			requireClose(t, c[1], out[i*4+1], 2, "g")
			requireClose(t, c[2], out[i*4+2], 2, "b")
			require.Equal(t, byte(255), out[i*4+3])
		}
	}
}

func TestBC6HSignedSolidRoundTrip(t *testing.T) {
	tile := solidTile(128, 64, 200, 255)
	var block [16]byte
	encodeBC6HBlock(&tile, true, block[:])

	var out [64]byte
	decodeBC6H(block[:], out[:], 16, true)
	for i := 0; i < 16; i++ {
		requireClose(t, 128, out[i*4+0], 2, "r")
		requireClose(t, 64, out[i*4+1], 2, "g")
		requireClose(t, 200, out[i*4+2], 2, "b")
	}
}

func TestBC6HTwoColorRoundTrip(t *testing.T) {
	tile := solidTile(20, 20, 20, 255)
	for i := 8; i < 16; i++ {
		tile[i] = [4]byte{240, 240, 240, 255}
	}
	var block [16]byte
	encodeBC6HBlock(&tile, false, block[:])

	var out [64]byte
	decodeBC6H(block[:], out[:], 16, false)
	for i := 0; i < 16; i++ {
		requireClose(t, tile[i][0], out[i*4+0], 2, "pixel")
	}
}

func TestBC6HUnquantize(t *testing.T) {
	// Unsigned: 0 and the maximum are pinned to the range ends.
	require.Equal(t, int32(0), bc6hUnquantize(0, 10, false))
	require.Equal(t, int32(0xFFFF), bc6hUnquantize(1023, 10, false))
	mid := bc6hUnquantize(512, 10, false)
	require.Greater(t, mid, int32(0x7000))
	require.Less(t, mid, int32(0x9000))

	// Signed magnitudes saturate symmetrically.
	require.Equal(t, int32(0x7FFF), bc6hUnquantize(511, 10, true))
	require.Equal(t, int32(-0x7FFF), bc6hUnquantize(-511, 10, true))
	require.Equal(t, int32(0), bc6hUnquantize(0, 10, true))
}

func TestBC6HFinish(t *testing.T) {
	// The full-range value maps back to the largest finite half, 0x7BFF.
	require.Equal(t, uint16(0x7BFF), bc6hFinish(0xFFFF, false))
	require.Equal(t, uint16(0), bc6hFinish(0, false))
	// Signed output is sign-magnitude half bits.
	require.Equal(t, uint16(0x7BFF), bc6hFinish(0x7FFF, true))
	require.Equal(t, uint16(0x8000|0x7BFF), bc6hFinish(-0x7FFF, true))
}

func TestHalfConversions(t *testing.T) {
	for _, f := range []float32{0, 0.25, 0.5, 1, 2, 255, -1, -0.125} {
		h := floatToHalf(f)
		require.InDelta(t, f, halfToFloat(h), 0.001*float64(absf(f))+1e-6)
	}
	require.Equal(t, byte(255), halfToUnorm8(floatToHalf(1)))
	require.Equal(t, byte(255), halfToUnorm8(floatToHalf(2)))
	require.Equal(t, byte(0), halfToUnorm8(floatToHalf(0)))
	require.Equal(t, byte(0), halfToUnorm8(floatToHalf(-0.5)))
	require.Equal(t, byte(128), halfToUnorm8(floatToHalf(0.5)))
}

func absf(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
