package blocktex

import (
	"encoding/binary"
	"math"
)

// Quality trades encode time for error. The native encoder uses it to decide
// how hard to work on endpoint selection; external encoders map it onto their
// own speed settings.
type Quality int

const (
	QualityFast Quality = iota
	QualityNormal
	QualitySlow
)

// BlockEncoder compresses one 2D slice of block-aligned RGBA8 pixels into the
// packed block stream of the requested format. Implementations are trusted to
// produce correctly sized output; the surface encoder never re-validates the
// returned bytes.
type BlockEncoder interface {
	CompressBlocks(format Format, width, height uint32, stride int, rgba []byte, quality Quality) ([]byte, error)
}

// NativeEncoder is the built-in pure-Go encoder. It favors speed over search
// depth: principal-axis endpoints for the 565 formats, min/max endpoints with
// a single-subset mode for BC6H and BC7.
type NativeEncoder struct{}

func (NativeEncoder) CompressBlocks(format Format, width, height uint32, stride int, rgba []byte, quality Quality) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, &ZeroSizedSurfaceError{Width: width, Height: height, Depth: 1, Layers: 1, Mipmaps: 1}
	}
	if need := (int(height)-1)*stride + int(width)*4; len(rgba) < need {
		return nil, &NotEnoughDataError{Expected: need, Actual: len(rgba)}
	}
	if !format.Compressed() {
		return encodeUncompressed(format, width, height, stride, rgba)
	}
	bw, bh, _ := format.BlockDimensions()
	if width%bw != 0 || height%bh != 0 {
		return nil, &NonIntegralDimensionsError{
			Width: width, Height: height, Depth: 1,
			BlockWidth: bw, BlockHeight: bh,
		}
	}

	bpb := int(format.BytesPerBlock())
	bxCount := int(width / bw)
	byCount := int(height / bh)
	out := make([]byte, bxCount*byCount*bpb)
	var tile [16][4]byte
	o := 0
	for by := 0; by < byCount; by++ {
		for bx := 0; bx < bxCount; bx++ {
			gatherTile(&tile, rgba, stride, bx*4, by*4)
			dst := out[o : o+bpb]
			switch format {
			case BC1Unorm, BC1Srgb:
				encodeColorBlock(&tile, dst, quality)
			case BC2Unorm, BC2Srgb:
				encodeBC2Alpha(&tile, dst[0:8])
				encodeColorBlock(&tile, dst[8:16], quality)
			case BC3Unorm, BC3Srgb:
				encodeSmoothBlock(&tile, 3, false, dst[0:8])
				encodeColorBlock(&tile, dst[8:16], quality)
			case BC4Unorm:
				encodeSmoothBlock(&tile, 0, false, dst)
			case BC4Snorm:
				encodeSmoothBlock(&tile, 0, true, dst)
			case BC5Unorm:
				encodeSmoothBlock(&tile, 0, false, dst[0:8])
				encodeSmoothBlock(&tile, 1, false, dst[8:16])
			case BC5Snorm:
				encodeSmoothBlock(&tile, 0, true, dst[0:8])
				encodeSmoothBlock(&tile, 1, true, dst[8:16])
			case BC6HUfloat:
				encodeBC6HBlock(&tile, false, dst)
			case BC6HSfloat:
				encodeBC6HBlock(&tile, true, dst)
			case BC7Unorm, BC7Srgb:
				encodeBC7Block(&tile, dst)
			default:
				return nil, &UnsupportedFormatError{Format: format, Op: "encode"}
			}
			o += bpb
		}
	}
	return out, nil
}

func encodeUncompressed(format Format, width, height uint32, stride int, rgba []byte) ([]byte, error) {
	bpp := int(format.BytesPerBlock())
	out := make([]byte, int(width)*int(height)*bpp)
	o := 0
	for y := 0; y < int(height); y++ {
		row := rgba[y*stride:]
		for x := 0; x < int(width); x++ {
			px := row[x*4 : x*4+4]
			switch format {
			case R8Unorm:
				out[o] = px[0]
			case RGBA8Unorm, RGBA8Srgb:
				copy(out[o:o+4], px)
			case BGRA8Unorm, BGRA8Srgb:
				out[o], out[o+1], out[o+2], out[o+3] = px[2], px[1], px[0], px[3]
			case RGBAF32:
				for c := 0; c < 4; c++ {
					f := float32(px[c]) / 255
					binary.LittleEndian.PutUint32(out[o+c*4:], math.Float32bits(f))
				}
			default:
				return nil, &UnsupportedFormatError{Format: format, Op: "encode"}
			}
			o += bpp
		}
	}
	return out, nil
}

func gatherTile(tile *[16][4]byte, rgba []byte, stride, x0, y0 int) {
	for dy := 0; dy < 4; dy++ {
		row := rgba[(y0+dy)*stride+x0*4:]
		for dx := 0; dx < 4; dx++ {
			copy(tile[dy*4+dx][:], row[dx*4:dx*4+4])
		}
	}
}

type vec3 [3]float64

func dot3(a, b vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func normalize3(v vec3) vec3 {
	n := math.Sqrt(dot3(v, v))
	if n == 0 {
		return vec3{}
	}
	return vec3{v[0] / n, v[1] / n, v[2] / n}
}

// principalAxis estimates the dominant eigenvector of the 3x3 covariance
// matrix by power iteration.
func principalAxis(s [3][3]float64, iterations int) vec3 {
	v := normalize3(vec3{1, 1, 1})
	for i := 0; i < iterations; i++ {
		v = normalize3(vec3{
			s[0][0]*v[0] + s[0][1]*v[1] + s[0][2]*v[2],
			s[1][0]*v[0] + s[1][1]*v[1] + s[1][2]*v[2],
			s[2][0]*v[0] + s[2][1]*v[1] + s[2][2]*v[2],
		})
	}
	return v
}

func pack565(r, g, b float64) uint16 {
	clamp := func(f float64) uint32 {
		return uint32(math.Round(math.Max(0, math.Min(255, f))))
	}
	return uint16((clamp(r)>>3)<<11 | (clamp(g)>>2)<<5 | clamp(b)>>3)
}

// encodeColorBlock packs the 565 endpoint half of a BC1/BC2/BC3 block.
// Endpoints come from projecting the tile onto its principal color axis.
// c0 == c1 would select the punch-through palette when decoded standalone,
// so that case pins every index to the first endpoint.
func encodeColorBlock(tile *[16][4]byte, dst []byte, quality Quality) {
	var avg vec3
	for _, p := range tile {
		avg[0] += float64(p[0])
		avg[1] += float64(p[1])
		avg[2] += float64(p[2])
	}
	avg[0] /= 16
	avg[1] /= 16
	avg[2] /= 16

	var s [3][3]float64
	for _, p := range tile {
		r := float64(p[0]) - avg[0]
		g := float64(p[1]) - avg[1]
		b := float64(p[2]) - avg[2]
		s[0][0] += r * r
		s[0][1] += r * g
		s[0][2] += r * b
		s[1][1] += g * g
		s[1][2] += g * b
		s[2][2] += b * b
	}
	s[1][0], s[2][0], s[2][1] = s[0][1], s[0][2], s[1][2]

	iterations := 3
	switch quality {
	case QualityNormal:
		iterations = 5
	case QualitySlow:
		iterations = 8
	}
	axis := principalAxis(s, iterations)

	minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
	for _, p := range tile {
		proj := dot3(vec3{float64(p[0]), float64(p[1]), float64(p[2])}, axis)
		minProj = math.Min(minProj, proj)
		maxProj = math.Max(maxProj, proj)
	}
	avgProj := dot3(avg, axis)
	tMin := minProj - avgProj
	tMax := maxProj - avgProj

	c0 := pack565(avg[0]+axis[0]*tMax, avg[1]+axis[1]*tMax, avg[2]+axis[2]*tMax)
	c1 := pack565(avg[0]+axis[0]*tMin, avg[1]+axis[1]*tMin, avg[2]+axis[2]*tMin)
	if c0 < c1 {
		c0, c1 = c1, c0
	}

	var palette [4][3]byte
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)
	palette[0] = [3]byte{r0, g0, b0}
	palette[1] = [3]byte{r1, g1, b1}
	palette[2] = [3]byte{mixThirds(r0, r1), mixThirds(g0, g1), mixThirds(b0, b1)}
	palette[3] = [3]byte{mixThirds(r1, r0), mixThirds(g1, g0), mixThirds(b1, b0)}

	var packed uint32
	if c0 != c1 {
		for i, p := range tile {
			best := 0
			bestDist := math.MaxInt32
			for j := 0; j < 4; j++ {
				dr := int(p[0]) - int(palette[j][0])
				dg := int(p[1]) - int(palette[j][1])
				db := int(p[2]) - int(palette[j][2])
				if d := dr*dr + dg*dg + db*db; d < bestDist {
					bestDist = d
					best = j
				}
			}
			packed |= uint32(best) << (2 * uint(i))
		}
	}

	binary.LittleEndian.PutUint16(dst[0:2], c0)
	binary.LittleEndian.PutUint16(dst[2:4], c1)
	binary.LittleEndian.PutUint32(dst[4:8], packed)
}

// encodeSmoothBlock packs one interpolated-value block (the BC3 alpha half,
// or one BC4/BC5 channel) from tile channel ch. Endpoints are the channel's
// extremes, in the eight-interpolant ordering.
func encodeSmoothBlock(tile *[16][4]byte, ch int, signed bool, dst []byte) {
	toSigned := func(u byte) int {
		s := int(u) - 128
		if s < -127 {
			s = -127
		}
		return s
	}

	var e0, e1 int
	if signed {
		e0, e1 = -127, 127
		for _, p := range tile {
			v := toSigned(p[ch])
			if v > e0 {
				e0 = v
			}
			if v < e1 {
				e1 = v
			}
		}
	} else {
		e0, e1 = 0, 255
		for _, p := range tile {
			v := int(p[ch])
			if v > e0 {
				e0 = v
			}
			if v < e1 {
				e1 = v
			}
		}
	}

	// Palette in decoded unorm space, so index selection matches what a
	// decoder will reproduce.
	var palette [8]int
	for c := 0; c < 8; c++ {
		if signed {
			palette[c] = mixSmoothSigned(int8(e0), int8(e1), c)
		} else {
			palette[c] = mixSmoothAlpha(e0, e1, c)
		}
	}

	var codes uint64
	for i, p := range tile {
		target := int(p[ch])
		best := 0
		bestDist := math.MaxInt32
		for c := 0; c < 8; c++ {
			d := target - palette[c]
			if d *= d; d < bestDist {
				bestDist = d
				best = c
			}
		}
		codes |= uint64(best) << (3 * uint(i))
	}

	dst[0] = byte(e0)
	dst[1] = byte(e1)
	binary.LittleEndian.PutUint16(dst[2:4], uint16(codes))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(codes>>16))
}

// encodeBC2Alpha packs the explicit 4-bit alpha half of a BC2 block,
// low-to-high address order.
func encodeBC2Alpha(tile *[16][4]byte, dst []byte) {
	var packed uint64
	for i, p := range tile {
		packed |= uint64(p[3]/17) << (4 * uint(i))
	}
	binary.LittleEndian.PutUint64(dst[0:8], packed)
}

type bitWriter struct {
	data []byte
	pos  uint
}

func (w *bitWriter) put(v uint32, n uint32) {
	for i := uint32(0); i < n; i++ {
		if v>>i&1 != 0 {
			w.data[w.pos>>3] |= 1 << (w.pos & 7)
		}
		w.pos++
	}
}

// encodeBC7Block emits a mode 5 block: one subset, 7-bit RGB endpoints, 8-bit
// alpha endpoints, separate 2-bit color and alpha index planes. Even channel
// values below 128 survive the 7-bit quantization exactly.
func encodeBC7Block(tile *[16][4]byte, dst []byte) {
	var lo, hi [4]int
	for c := 0; c < 4; c++ {
		lo[c], hi[c] = 255, 0
	}
	for _, p := range tile {
		for c := 0; c < 4; c++ {
			v := int(p[c])
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}

	var q0, q1 [3]uint32
	var d0, d1 [3]int
	for c := 0; c < 3; c++ {
		q0[c] = uint32(lo[c]) >> 1
		q1[c] = uint32(hi[c]) >> 1
		d0[c] = bc7Expand(q0[c], 7)
		d1[c] = bc7Expand(q1[c], 7)
	}
	a0, a1 := lo[3], hi[3]

	colorIdx := pickIndices2(tile, func(p [4]byte, w int) int {
		dist := 0
		for c := 0; c < 3; c++ {
			d := int(p[c]) - int(bc7Lerp(d0[c], d1[c], w))
			dist += d * d
		}
		return dist
	})
	alphaIdx := pickIndices2(tile, func(p [4]byte, w int) int {
		d := int(p[3]) - int(bc7Lerp(a0, a1, w))
		return d * d
	})

	// Anchor texel 0 stores one fewer bit, so its index must keep a zero
	// high bit; swapping endpoints and inverting the plane preserves the
	// decode.
	if colorIdx[0] >= 2 {
		q0, q1 = q1, q0
		for i := range colorIdx {
			colorIdx[i] = 3 - colorIdx[i]
		}
	}
	if alphaIdx[0] >= 2 {
		a0, a1 = a1, a0
		for i := range alphaIdx {
			alphaIdx[i] = 3 - alphaIdx[i]
		}
	}

	w := &bitWriter{data: dst}
	w.put(0x20, 6) // mode 5
	w.put(0, 2)    // no rotation
	for c := 0; c < 3; c++ {
		w.put(q0[c], 7)
		w.put(q1[c], 7)
	}
	w.put(uint32(a0), 8)
	w.put(uint32(a1), 8)
	w.put(uint32(colorIdx[0]), 1)
	for i := 1; i < 16; i++ {
		w.put(uint32(colorIdx[i]), 2)
	}
	w.put(uint32(alphaIdx[0]), 1)
	for i := 1; i < 16; i++ {
		w.put(uint32(alphaIdx[i]), 2)
	}
}

func pickIndices2(tile *[16][4]byte, dist func(p [4]byte, w int) int) [16]int {
	var idx [16]int
	for i, p := range tile {
		best := 0
		bestDist := math.MaxInt32
		for j, w := range bc7Weights2 {
			if d := dist(p, w); d < bestDist {
				bestDist = d
				best = j
			}
		}
		idx[i] = best
	}
	return idx
}

// bc6hQuantize maps half bits onto a 10-bit endpoint for the one-region
// untransformed mode. Out-of-range halves clamp to the representable span.
func bc6hQuantize(h uint16, signed bool) uint32 {
	if !signed {
		if h&0x8000 != 0 || h > 0x7BFF {
			h = 0
		}
		return uint32(h) * 1023 / 0x7BFF
	}
	mag := int32(h & 0x7FFF)
	if mag > 0x7BFF {
		mag = 0x7BFF
	}
	q := mag * 511 / 0x7BFF
	if h&0x8000 != 0 {
		q = -q
	}
	return uint32(q) & 0x3FF
}

// encodeBC6HBlock emits a one-region 10-bit-endpoint block (header value 3)
// with channel-wise min/max endpoints and 4-bit indices.
func encodeBC6HBlock(tile *[16][4]byte, signed bool, dst []byte) {
	var lo, hi [3]float32
	var px [16][3]float32
	for c := 0; c < 3; c++ {
		lo[c], hi[c] = 2, -2
	}
	for i, p := range tile {
		for c := 0; c < 3; c++ {
			f := float32(p[c]) / 255
			px[i][c] = f
			if f < lo[c] {
				lo[c] = f
			}
			if f > hi[c] {
				hi[c] = f
			}
		}
	}

	var q0, q1 [3]uint32
	for c := 0; c < 3; c++ {
		q0[c] = bc6hQuantize(floatToHalf(lo[c]), signed)
		q1[c] = bc6hQuantize(floatToHalf(hi[c]), signed)
	}

	// Palette in decoded float space.
	toVal := func(q uint32) int32 {
		v := int32(q)
		if signed {
			v = signExtend(v, 10)
		}
		return bc6hUnquantize(v, 10, signed)
	}
	var palette [16][3]float32
	for j, w := range bc7Weights4 {
		for c := 0; c < 3; c++ {
			e0, e1 := toVal(q0[c]), toVal(q1[c])
			v := (e0*int32(64-w) + e1*int32(w) + 32) >> 6
			palette[j][c] = halfToFloat(bc6hFinish(v, signed))
		}
	}

	var idx [16]int
	for i := range tile {
		best := 0
		bestDist := float32(math.MaxFloat32)
		for j := range palette {
			var d float32
			for c := 0; c < 3; c++ {
				dc := px[i][c] - palette[j][c]
				d += dc * dc
			}
			if d < bestDist {
				bestDist = d
				best = j
			}
		}
		idx[i] = best
	}
	if idx[0] >= 8 {
		q0, q1 = q1, q0
		for i := range idx {
			idx[i] = 15 - idx[i]
		}
	}

	w := &bitWriter{data: dst}
	w.put(3, 2)
	w.put(0, 3)
	for c := 0; c < 3; c++ {
		w.put(q0[c], 10)
	}
	for c := 0; c < 3; c++ {
		w.put(q1[c], 10)
	}
	w.put(uint32(idx[0]), 3)
	for i := 1; i < 16; i++ {
		w.put(uint32(idx[i]), 4)
	}
}
