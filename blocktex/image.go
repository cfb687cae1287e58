package blocktex

import (
	"image"

	"golang.org/x/image/draw"
)

// SurfaceFromImage converts any image into a single-layer, single-level
// RGBA8 surface with straight (non-premultiplied) alpha.
func SurfaceFromImage(img image.Image) *SurfaceRGBA8 {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &SurfaceRGBA8{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Depth:  1, Layers: 1, Mipmaps: 1,
		Data: dst.Pix,
	}
}

// Image returns one layer and mip level as an NRGBA image. Depth slices of a
// volume stack vertically.
func (s *SurfaceRGBA8) Image(layer, mip uint32) (*image.NRGBA, error) {
	level, err := s.Get(layer, mip)
	if err != nil {
		return nil, err
	}
	w := int(mipDimension(s.Width, mip))
	h := int(mipDimension(s.Height, mip)) * int(mipDimension(s.Depth, mip))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	copy(img.Pix, level)
	return img, nil
}

// ScaledToBlocks scales an image up to the format's block multiple when its
// dimensions are not already aligned. Aligned images pass through untouched.
func ScaledToBlocks(img image.Image, format Format) image.Image {
	bw, bh, _ := format.BlockDimensions()
	b := img.Bounds()
	w := int(roundUp(uint32(b.Dx()), bw))
	h := int(roundUp(uint32(b.Dy()), bh))
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
