package blocktex

// Mipmaps selects how many mip levels an encode produces and where their
// pixel data comes from.
type Mipmaps struct {
	mode  mipmapMode
	count uint32
}

type mipmapMode int

const (
	mipDisabled mipmapMode = iota
	mipFromSurface
	mipGeneratedExact
	mipGeneratedAutomatic
)

// MipmapsDisabled encodes only the base level.
func MipmapsDisabled() Mipmaps { return Mipmaps{mode: mipDisabled} }

// MipmapsFromSurface takes the level count and each level's pixel data from
// the source surface instead of generating them.
func MipmapsFromSurface() Mipmaps { return Mipmaps{mode: mipFromSurface} }

// MipmapsExact generates exactly count levels by downsampling.
func MipmapsExact(count uint32) Mipmaps { return Mipmaps{mode: mipGeneratedExact, count: count} }

// MipmapsAutomatic generates the full chain, floor(log2(max dim)) + 1 levels.
func MipmapsAutomatic() Mipmaps { return Mipmaps{mode: mipGeneratedAutomatic} }

func (m Mipmaps) levelCount(src *SurfaceRGBA8) uint32 {
	switch m.mode {
	case mipDisabled:
		return 1
	case mipFromSurface:
		return src.Mipmaps
	case mipGeneratedExact:
		if m.count < 1 {
			return 1
		}
		return m.count
	default:
		d := max(src.Width, max(src.Height, src.Depth))
		return maxMipmapCount(d)
	}
}

// downsampleRGBA8 box-filters prev (prevW x prevH x prevD pixels) into a new
// buffer of newW x newH x newD pixels. Each output pixel averages the
// in-range samples of its 2x2x2 source neighborhood; odd boundary positions
// use fewer samples and nothing is ever read outside the previous level.
// Output pixels with no in-range source stay zero; they are block padding.
func downsampleRGBA8(newW, newH, newD, prevW, prevH, prevD int, prev []byte) []byte {
	out := make([]byte, newW*newH*newD*4)
	for z := 0; z < newD; z++ {
		for y := 0; y < newH; y++ {
			for x := 0; x < newW; x++ {
				var sum [4]uint32
				samples := uint32(0)
				for sz := 0; sz < 2; sz++ {
					pz := z*2 + sz
					if pz >= prevD {
						continue
					}
					for sy := 0; sy < 2; sy++ {
						py := y*2 + sy
						if py >= prevH {
							continue
						}
						for sx := 0; sx < 2; sx++ {
							px := x*2 + sx
							if px >= prevW {
								continue
							}
							i := ((pz*prevH+py)*prevW + px) * 4
							sum[0] += uint32(prev[i])
							sum[1] += uint32(prev[i+1])
							sum[2] += uint32(prev[i+2])
							sum[3] += uint32(prev[i+3])
							samples++
						}
					}
				}
				if samples == 0 {
					continue
				}
				o := ((z*newH+y)*newW + x) * 4
				out[o] = byte(sum[0] / samples)
				out[o+1] = byte(sum[1] / samples)
				out[o+2] = byte(sum[2] / samples)
				out[o+3] = byte(sum[3] / samples)
			}
		}
	}
	return out
}

// padRGBA8 copies src pixels at their virtual size into a physical-size
// buffer, leaving the padding tail at zero. The virtual and physical strides
// differ, so every pixel is copied by position rather than as one flat slice.
// A short src only fills the positions it covers.
func padRGBA8(physW, physH, physD, virtW, virtH, virtD int, src []byte) []byte {
	out := make([]byte, physW*physH*physD*4)
	for z := 0; z < virtD; z++ {
		for y := 0; y < virtH; y++ {
			for x := 0; x < virtW; x++ {
				si := ((z*virtH+y)*virtW + x) * 4
				if si+4 > len(src) {
					continue
				}
				di := ((z*physH+y)*physW + x) * 4
				copy(out[di:di+4], src[si:si+4])
			}
		}
	}
	return out
}
