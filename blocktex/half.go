package blocktex

import "math"

// halfToFloat expands IEEE 754 binary16 bits to a float32.
func halfToFloat(h uint16) float32 {
	sign := uint32(h&0x8000) << 16
	exp := uint32(h>>10) & 0x1f
	man := uint32(h & 0x3ff)
	var out uint32
	switch {
	case exp == 0:
		if man == 0 {
			out = sign
			break
		}
		// Subnormal: renormalize.
		e := uint32(113)
		for man&0x400 == 0 {
			man <<= 1
			e--
		}
		out = sign | (e << 23) | ((man & 0x3ff) << 13)
	case exp == 0x1f:
		out = sign | 0x7f800000 | (man << 13)
	default:
		out = sign | ((exp + 112) << 23) | (man << 13)
	}
	return math.Float32frombits(out)
}

// floatToHalf truncates a float32 to binary16 bits.
func floatToHalf(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int32((b>>23)&0xff) - 127 + 15
	man := b & 0x7fffff
	switch {
	case exp >= 0x1f:
		return sign | 0x7c00
	case exp <= 0:
		if exp < -10 {
			return sign
		}
		man |= 0x800000
		return sign | uint16(man>>uint32(14-exp))
	default:
		return sign | uint16(exp)<<10 | uint16(man>>13)
	}
}

// halfToUnorm8 clamps a half value into [0, 1] and scales it to a byte.
func halfToUnorm8(h uint16) byte {
	f := halfToFloat(h)
	if !(f > 0) {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return byte(f*255 + 0.5)
}
