package macpaint

import "image"

// toGrayscale converts img to a Rec. 709 luma raster: Y = round(0.2126 R +
// 0.7152 G + 0.0722 B), clamped to [0,255]; alpha is ignored. The result is
// stored at 16-bit precision so downstream error-diffusion dithers can
// accumulate error beyond [0,255] without clipping prematurely.
func toGrayscale(img image.Image) *grayBuffer {
	b := img.Bounds()
	gb := newGrayBuffer(b.Dx(), b.Dy())

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			// RGBA() returns 16-bit-scaled premultiplied-by-alpha values;
			// for opaque sources (the only case this codec handles) this
			// is equivalent to the 8-bit channel shifted left 8 bits.
			r8 := float64(r >> 8)
			g8 := float64(g >> 8)
			b8 := float64(bl >> 8)
			y709 := 0.2126*r8 + 0.7152*g8 + 0.0722*b8
			v := clampRound(y709)
			gb.set(x-b.Min.X, y-b.Min.Y, int16(v))
		}
	}
	return gb
}

func clampRound(v float64) int {
	r := int(v + 0.5)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return r
}

// grayBuffer is a width*height grid of signed 16-bit grayscale samples,
// the "at least 16 bits of precision" working buffer spec.md §4.7 requires
// for error-diffusion dithers.
type grayBuffer struct {
	w, h int
	px   []int16
}

func newGrayBuffer(w, h int) *grayBuffer {
	return &grayBuffer{w: w, h: h, px: make([]int16, w*h)}
}

func (g *grayBuffer) clone() *grayBuffer {
	c := newGrayBuffer(g.w, g.h)
	copy(c.px, g.px)
	return c
}

func (g *grayBuffer) at(x, y int) int16 {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return 0
	}
	return g.px[y*g.w+x]
}

func (g *grayBuffer) set(x, y int, v int16) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.px[y*g.w+x] = v
}
