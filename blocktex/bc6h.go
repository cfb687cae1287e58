package blocktex

// BC6H endpoint fields. w is the first endpoint of the first region, x its
// pair; y and z are the second region's pair in two-region modes.
const (
	f6RW = iota
	f6GW
	f6BW
	f6RX
	f6GX
	f6BX
	f6RY
	f6GY
	f6BY
	f6RZ
	f6GZ
	f6BZ
	f6D
	f6Count
)

// bc6hOp places the next count bits of the stream into field at bit offset
// off. rev reverses the bit order within the run, which mode 15 uses for its
// high endpoint bits.
type bc6hOp struct {
	field uint8
	off   uint8
	count uint8
	rev   bool
}

type bc6hModeInfo struct {
	epBits      uint32
	deltaBits   [3]uint32
	transformed bool
	partitioned bool
	ops         []bc6hOp
}

// bc6hTail1055 is the layout shared by the 10.5.5.5 and 9.5.5.5 modes after
// their endpoint-w prefixes.
var bc6hTail1055 = []bc6hOp{
	{f6RX, 0, 5, false}, {f6GZ, 4, 1, false}, {f6GY, 0, 4, false},
	{f6GX, 0, 5, false}, {f6BZ, 0, 1, false}, {f6GZ, 0, 4, false},
	{f6BX, 0, 5, false}, {f6BZ, 1, 1, false}, {f6BY, 0, 4, false},
	{f6RY, 0, 5, false}, {f6BZ, 2, 1, false},
	{f6RZ, 0, 5, false}, {f6BZ, 3, 1, false},
	{f6D, 0, 5, false},
}

// bc6hModes maps the raw header value to the mode description. Header values
// absent from the table are reserved and decode to black.
var bc6hModes = map[uint32]bc6hModeInfo{
	0: {epBits: 10, deltaBits: [3]uint32{5, 5, 5}, transformed: true, partitioned: true,
		ops: append([]bc6hOp{
			{f6GY, 4, 1, false}, {f6BY, 4, 1, false}, {f6BZ, 4, 1, false},
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
		}, bc6hTail1055...)},
	1: {epBits: 7, deltaBits: [3]uint32{6, 6, 6}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6GY, 5, 1, false}, {f6GZ, 4, 1, false}, {f6GZ, 5, 1, false},
			{f6RW, 0, 7, false}, {f6BZ, 0, 1, false}, {f6BZ, 1, 1, false}, {f6BY, 4, 1, false},
			{f6GW, 0, 7, false}, {f6BY, 5, 1, false}, {f6BZ, 2, 1, false}, {f6GY, 4, 1, false},
			{f6BW, 0, 7, false}, {f6BZ, 3, 1, false}, {f6BZ, 5, 1, false}, {f6BZ, 4, 1, false},
			{f6RX, 0, 6, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 6, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 6, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 6, false}, {f6RZ, 0, 6, false},
			{f6D, 0, 5, false},
		}},
	2: {epBits: 11, deltaBits: [3]uint32{5, 4, 4}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 5, false}, {f6RW, 10, 1, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 4, false}, {f6GW, 10, 1, false}, {f6BZ, 0, 1, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 4, false}, {f6BW, 10, 1, false}, {f6BZ, 1, 1, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 5, false}, {f6BZ, 2, 1, false},
			{f6RZ, 0, 5, false}, {f6BZ, 3, 1, false},
			{f6D, 0, 5, false},
		}},
	6: {epBits: 11, deltaBits: [3]uint32{4, 5, 4}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 4, false}, {f6RW, 10, 1, false}, {f6GZ, 4, 1, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 5, false}, {f6GW, 10, 1, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 4, false}, {f6BW, 10, 1, false}, {f6BZ, 1, 1, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 4, false}, {f6BZ, 0, 1, false}, {f6BZ, 2, 1, false},
			{f6RZ, 0, 4, false}, {f6GY, 4, 1, false}, {f6BZ, 3, 1, false},
			{f6D, 0, 5, false},
		}},
	10: {epBits: 11, deltaBits: [3]uint32{4, 4, 5}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 4, false}, {f6RW, 10, 1, false}, {f6BY, 4, 1, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 4, false}, {f6GW, 10, 1, false}, {f6BZ, 0, 1, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 5, false}, {f6BW, 10, 1, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 4, false}, {f6BZ, 1, 1, false}, {f6BZ, 2, 1, false},
			{f6RZ, 0, 4, false}, {f6BZ, 4, 1, false}, {f6BZ, 3, 1, false},
			{f6D, 0, 5, false},
		}},
	14: {epBits: 9, deltaBits: [3]uint32{5, 5, 5}, transformed: true, partitioned: true,
		ops: append([]bc6hOp{
			{f6RW, 0, 9, false}, {f6BY, 4, 1, false},
			{f6GW, 0, 9, false}, {f6GY, 4, 1, false},
			{f6BW, 0, 9, false}, {f6BZ, 4, 1, false},
		}, bc6hTail1055...)},
	18: {epBits: 8, deltaBits: [3]uint32{6, 5, 5}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 8, false}, {f6GZ, 4, 1, false}, {f6BY, 4, 1, false},
			{f6GW, 0, 8, false}, {f6BZ, 2, 1, false}, {f6GY, 4, 1, false},
			{f6BW, 0, 8, false}, {f6BZ, 3, 1, false}, {f6BZ, 4, 1, false},
			{f6RX, 0, 6, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 5, false}, {f6BZ, 0, 1, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 5, false}, {f6BZ, 1, 1, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 6, false}, {f6RZ, 0, 6, false},
			{f6D, 0, 5, false},
		}},
	22: {epBits: 8, deltaBits: [3]uint32{5, 6, 5}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 8, false}, {f6BZ, 0, 1, false}, {f6BY, 4, 1, false},
			{f6GW, 0, 8, false}, {f6GY, 5, 1, false}, {f6GY, 4, 1, false},
			{f6BW, 0, 8, false}, {f6GZ, 5, 1, false}, {f6BZ, 4, 1, false},
			{f6RX, 0, 5, false}, {f6GZ, 4, 1, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 6, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 5, false}, {f6BZ, 1, 1, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 5, false}, {f6BZ, 2, 1, false},
			{f6RZ, 0, 5, false}, {f6BZ, 3, 1, false},
			{f6D, 0, 5, false},
		}},
	26: {epBits: 8, deltaBits: [3]uint32{5, 5, 6}, transformed: true, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 8, false}, {f6BZ, 1, 1, false}, {f6BY, 4, 1, false},
			{f6GW, 0, 8, false}, {f6BY, 5, 1, false}, {f6GY, 4, 1, false},
			{f6BW, 0, 8, false}, {f6BZ, 5, 1, false}, {f6BZ, 4, 1, false},
			{f6RX, 0, 5, false}, {f6GZ, 4, 1, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 4, false}, {f6BZ, 0, 1, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 6, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 5, false}, {f6BZ, 2, 1, false},
			{f6RZ, 0, 5, false}, {f6BZ, 3, 1, false},
			{f6D, 0, 5, false},
		}},
	30: {epBits: 6, partitioned: true,
		ops: []bc6hOp{
			{f6RW, 0, 6, false}, {f6GZ, 4, 1, false}, {f6BZ, 0, 1, false}, {f6BZ, 1, 1, false}, {f6BY, 4, 1, false},
			{f6GW, 0, 6, false}, {f6GY, 5, 1, false}, {f6BY, 5, 1, false}, {f6BZ, 2, 1, false}, {f6GY, 4, 1, false},
			{f6BW, 0, 6, false}, {f6GZ, 5, 1, false}, {f6BZ, 3, 1, false}, {f6BZ, 5, 1, false}, {f6BZ, 4, 1, false},
			{f6RX, 0, 6, false}, {f6GY, 0, 4, false},
			{f6GX, 0, 6, false}, {f6GZ, 0, 4, false},
			{f6BX, 0, 6, false}, {f6BY, 0, 4, false},
			{f6RY, 0, 6, false}, {f6RZ, 0, 6, false},
			{f6D, 0, 5, false},
		}},
	3: {epBits: 10,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 10, false}, {f6GX, 0, 10, false}, {f6BX, 0, 10, false},
		}},
	7: {epBits: 11, deltaBits: [3]uint32{9, 9, 9}, transformed: true,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 9, false}, {f6RW, 10, 1, false},
			{f6GX, 0, 9, false}, {f6GW, 10, 1, false},
			{f6BX, 0, 9, false}, {f6BW, 10, 1, false},
		}},
	11: {epBits: 12, deltaBits: [3]uint32{8, 8, 8}, transformed: true,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 8, false}, {f6RW, 11, 1, false}, {f6RW, 10, 1, false},
			{f6GX, 0, 8, false}, {f6GW, 11, 1, false}, {f6GW, 10, 1, false},
			{f6BX, 0, 8, false}, {f6BW, 11, 1, false}, {f6BW, 10, 1, false},
		}},
	15: {epBits: 16, deltaBits: [3]uint32{4, 4, 4}, transformed: true,
		ops: []bc6hOp{
			{f6RW, 0, 10, false}, {f6GW, 0, 10, false}, {f6BW, 0, 10, false},
			{f6RX, 0, 4, false}, {f6RW, 10, 6, true},
			{f6GX, 0, 4, false}, {f6GW, 10, 6, true},
			{f6BX, 0, 4, false}, {f6BW, 10, 6, true},
		}},
}

func signExtend(v int32, width uint32) int32 {
	shift := 32 - width
	return (v << shift) >> shift
}

// bc6hUnquantize maps a quantized endpoint channel into the 17-bit working
// range the palette is interpolated in.
func bc6hUnquantize(q int32, prec uint32, signed bool) int32 {
	if signed {
		if prec >= 16 {
			return q
		}
		neg := q < 0
		if neg {
			q = -q
		}
		var unq int32
		switch {
		case q == 0:
			unq = 0
		case q >= (1<<(prec-1))-1:
			unq = 0x7FFF
		default:
			unq = ((q << 15) + 0x4000) >> (prec - 1)
		}
		if neg {
			return -unq
		}
		return unq
	}
	if prec >= 15 {
		return q
	}
	switch {
	case q == 0:
		return 0
	case q == (1<<prec)-1:
		return 0xFFFF
	default:
		return ((q << 16) + 0x8000) >> prec
	}
}

// bc6hFinish scales an interpolated value back into half-float bits. Signed
// output is sign-magnitude, matching the half representation directly.
func bc6hFinish(v int32, signed bool) uint16 {
	if signed {
		neg := v < 0
		if neg {
			v = -v
		}
		v = (v * 31) >> 5
		if neg {
			return uint16(v) | 0x8000
		}
		return uint16(v)
	}
	return uint16((v * 31) >> 6)
}

// decodeBC6HBlock decodes one 16-byte block into 16 RGB half-float triples in
// tile order. Reserved modes decode to black.
func decodeBC6HBlock(block []byte, signed bool, out *[16][3]uint16) {
	br := &bitReader{data: block}
	raw := br.bits(2)
	if raw >= 2 {
		raw |= br.bits(3) << 2
	}
	mi, ok := bc6hModes[raw]
	if !ok {
		for i := range out {
			out[i] = [3]uint16{}
		}
		return
	}

	var f [f6Count]int32
	for _, op := range mi.ops {
		if op.rev {
			for k := uint8(0); k < op.count; k++ {
				f[op.field] |= int32(br.bit()) << (op.off + op.count - 1 - k)
			}
		} else {
			f[op.field] |= int32(br.bits(uint32(op.count))) << op.off
		}
	}

	numEndpoints := 2
	if mi.partitioned {
		numEndpoints = 4
	}
	ep := [4][3]int32{
		{f[f6RW], f[f6GW], f[f6BW]},
		{f[f6RX], f[f6GX], f[f6BX]},
		{f[f6RY], f[f6GY], f[f6BY]},
		{f[f6RZ], f[f6GZ], f[f6BZ]},
	}

	mask := int32(1)<<mi.epBits - 1
	if signed {
		for c := 0; c < 3; c++ {
			ep[0][c] = signExtend(ep[0][c], mi.epBits)
		}
	}
	for e := 1; e < numEndpoints; e++ {
		for c := 0; c < 3; c++ {
			if mi.transformed {
				d := signExtend(ep[e][c], mi.deltaBits[c])
				v := (ep[0][c] + d) & mask
				if signed {
					v = signExtend(v, mi.epBits)
				}
				ep[e][c] = v
			} else if signed {
				ep[e][c] = signExtend(ep[e][c], mi.epBits)
			}
		}
	}

	var unq [4][3]int32
	for e := 0; e < numEndpoints; e++ {
		for c := 0; c < 3; c++ {
			unq[e][c] = bc6hUnquantize(ep[e][c], mi.epBits, signed)
		}
	}

	partition := uint32(f[f6D])
	for i := 0; i < 16; i++ {
		s := 0
		var w int
		if mi.partitioned {
			s = int(bc7Partition2[partition][i])
			n := uint32(3)
			if i == 0 || i == int(bc7Anchor2[partition]) {
				n--
			}
			w = bc7Weights3[br.bits(n)]
		} else {
			n := uint32(4)
			if i == 0 {
				n--
			}
			w = bc7Weights4[br.bits(n)]
		}
		e0, e1 := unq[2*s], unq[2*s+1]
		for c := 0; c < 3; c++ {
			v := (e0[c]*int32(64-w) + e1[c]*int32(w) + 32) >> 6
			out[i][c] = bc6hFinish(v, signed)
		}
	}
}

// decodeBC6H decodes one block straight to 8-bit RGBA, clamping each channel
// into [0, 1]. Negative values in the signed variant clamp to zero.
func decodeBC6H(block, dst []byte, pitch int, signed bool) {
	var half [16][3]uint16
	decodeBC6HBlock(block, signed, &half)
	for i := 0; i < 16; i++ {
		o := (i/4)*pitch + (i%4)*4
		dst[o] = halfToUnorm8(half[i][0])
		dst[o+1] = halfToUnorm8(half[i][1])
		dst[o+2] = halfToUnorm8(half[i][2])
		dst[o+3] = 255
	}
}
