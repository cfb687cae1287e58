package blocktex

import "encoding/binary"

// expand565 widens packed 5:6:5 color channels to 8 bits, replicating the
// high bits into the low bits so 31 maps to 255 rather than 248.
func expand565(c uint16) (r, g, b byte) {
	r = byte(((c >> 8) & 0xf8) | ((c >> 13) & 0x7))
	g = byte(((c >> 3) & 0xfc) | ((c >> 9) & 0x3))
	b = byte(((c << 3) & 0xf8) | ((c >> 2) & 0x7))
	return
}

func mixThirds(a, b byte) byte {
	return byte((2*uint16(a) + uint16(b) + 1) / 3)
}

func mixHalf(a, b byte) byte {
	return byte((uint16(a) + uint16(b) + 1) / 2)
}

// decodeColorBlock decodes the 8-byte 565 palette block shared by BC1, BC2
// and BC3 into the RGB channels of a 4x4 RGBA tile. opaqueMode forces the
// four-color palette: the BC2/BC3 color halves never use the punch-through
// mode regardless of endpoint ordering.
func decodeColorBlock(block []byte, dst []byte, pitch int, opaqueMode, writeAlpha bool) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])
	codes := binary.LittleEndian.Uint32(block[4:8])

	var palette [4][4]byte
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)
	palette[0] = [4]byte{r0, g0, b0, 255}
	palette[1] = [4]byte{r1, g1, b1, 255}
	if c0 > c1 || opaqueMode {
		palette[2] = [4]byte{mixThirds(r0, r1), mixThirds(g0, g1), mixThirds(b0, b1), 255}
		palette[3] = [4]byte{mixThirds(r1, r0), mixThirds(g1, g0), mixThirds(b1, b0), 255}
	} else {
		palette[2] = [4]byte{mixHalf(r0, r1), mixHalf(g0, g1), mixHalf(b0, b1), 255}
		palette[3] = [4]byte{0, 0, 0, 0}
	}

	for i := 0; i < 16; i++ {
		p := palette[codes&3]
		o := (i/4)*pitch + (i%4)*4
		dst[o] = p[0]
		dst[o+1] = p[1]
		dst[o+2] = p[2]
		if writeAlpha {
			dst[o+3] = p[3]
		}
		codes >>= 2
	}
}

// decodeSharpAlphaBlock decodes the BC2 explicit alpha half: 4 bits per
// pixel, low-to-high address order.
func decodeSharpAlphaBlock(block []byte, dst []byte, pitch int) {
	a := binary.LittleEndian.Uint64(block[0:8])
	for i := 0; i < 16; i++ {
		o := (i/4)*pitch + (i%4)*4
		dst[o+3] = byte(a&0xf) * 0x11
		a >>= 4
	}
}

// mixSmoothAlpha interpolates the 8-entry BC3/BC4/BC5 value palette. The
// six-interpolant mode pins codes 6 and 7 to the extremes.
func mixSmoothAlpha(a0, a1, c int) int {
	switch {
	case c == 0:
		return a0
	case c == 1:
		return a1
	case a0 > a1:
		return (a0*(8-c) + a1*(c-1)) / 7
	case c == 6:
		return 0
	case c == 7:
		return 255
	default:
		return (a0*(6-c) + a1*(c-1)) / 5
	}
}

// mixSmoothSigned is the signed-endpoint variant, producing a value already
// remapped from [-1, 1] to [0, 255].
func mixSmoothSigned(v0, v1 int8, c int) int {
	toFloat := func(i int8) float32 {
		if int(i) > -128 {
			return float32(int(i)) / 127.0
		}
		return -1.0
	}
	f0 := toFloat(v0)
	f1 := toFloat(v1)
	var f float32
	switch {
	case c == 0:
		f = f0
	case c == 1:
		f = f1
	case f0 > f1:
		f = (f0*float32(8-c) + f1*float32(c-1)) / 7.0
	case c == 6:
		f = -1.0
	case c == 7:
		f = 1.0
	default:
		f = (f0*float32(6-c) + f1*float32(c-1)) / 5.0
	}
	return int((f + 1.0) * 255.0 / 2.0)
}

// decodeSmoothBlock decodes one 8-byte interpolated-value block (the BC3
// alpha half, or one BC4/BC5 channel) and hands each of the 16 values to
// put in tile order.
func decodeSmoothBlock(block []byte, signed bool, put func(i int, v byte)) {
	codes := uint64(binary.LittleEndian.Uint16(block[2:4])) |
		uint64(binary.LittleEndian.Uint32(block[4:8]))<<16
	for i := 0; i < 16; i++ {
		c := int(codes>>(3*i)) & 0x7
		var v int
		if signed {
			v = mixSmoothSigned(int8(block[0]), int8(block[1]), c)
		} else {
			v = mixSmoothAlpha(int(block[0]), int(block[1]), c)
		}
		put(i, byte(v))
	}
}

func decodeBC1(block, dst []byte, pitch int) {
	decodeColorBlock(block[0:8], dst, pitch, false, true)
}

func decodeBC2(block, dst []byte, pitch int) {
	decodeColorBlock(block[8:16], dst, pitch, true, false)
	decodeSharpAlphaBlock(block[0:8], dst, pitch)
}

func decodeBC3(block, dst []byte, pitch int) {
	decodeColorBlock(block[8:16], dst, pitch, true, false)
	decodeSmoothBlock(block[0:8], false, func(i int, v byte) {
		dst[(i/4)*pitch+(i%4)*4+3] = v
	})
}

func decodeBC4(block, dst []byte, pitch int, signed bool) {
	decodeSmoothBlock(block[0:8], signed, func(i int, v byte) {
		o := (i/4)*pitch + (i%4)*4
		dst[o] = v
		dst[o+1] = 0
		dst[o+2] = 0
		dst[o+3] = 255
	})
}

func decodeBC5(block, dst []byte, pitch int, signed bool) {
	decodeSmoothBlock(block[0:8], signed, func(i int, v byte) {
		o := (i/4)*pitch + (i%4)*4
		dst[o] = v
		dst[o+2] = 0
		dst[o+3] = 255
	})
	decodeSmoothBlock(block[8:16], signed, func(i int, v byte) {
		dst[(i/4)*pitch+(i%4)*4+1] = v
	})
}
