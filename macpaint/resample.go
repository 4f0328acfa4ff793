package macpaint

import (
	"image"
	"image/color"
	"image/draw"

	"macfs/mfserr"
)

// cropImage copies rect out of src, failing InvalidArgument if rect escapes
// src's bounds or has non-positive dimensions (spec.md §4.8).
func cropImage(src image.Image, rect image.Rectangle) (*image.NRGBA, error) {
	if rect.Dx() <= 0 || rect.Dy() <= 0 {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "crop rectangle %v has non-positive dimensions", rect)
	}
	if !rect.In(src.Bounds()) {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "crop rectangle %v escapes source bounds %v", rect, src.Bounds())
	}

	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), src, rect.Min, draw.Src)
	return out, nil
}

// padImage produces a targetW x targetH raster filled with fillBlack (black
// or white), with src copied in at (padX, padY); pixels of src that fall
// outside the target are silently clipped (spec.md §4.8).
func padImage(src image.Image, targetW, targetH, padX, padY int, fillBlack bool) *image.NRGBA {
	fill := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if fillBlack {
		fill = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	}

	out := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: fill}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(padX, padY, targetW, targetH), src, src.Bounds().Min, draw.Over)
	return out
}

// scaleImage bilinearly resamples src to targetW x targetH independently on
// all four RGBA channels, clamping source coordinates at the edges
// (spec.md §4.8). Callers should skip calling this when dimensions already
// match.
func scaleImage(src image.Image, targetW, targetH int) *image.NRGBA {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))

	if srcW == 0 || srcH == 0 || targetW == 0 || targetH == 0 {
		return out
	}

	xRatio := float64(srcW) / float64(targetW)
	yRatio := float64(srcH) / float64(targetH)

	for ty := 0; ty < targetH; ty++ {
		srcY := float64(ty) * yRatio
		y0 := clampInt(int(srcY), 0, srcH-1)
		y1 := clampInt(y0+1, 0, srcH-1)
		fy := srcY - float64(y0)

		for tx := 0; tx < targetW; tx++ {
			srcX := float64(tx) * xRatio
			x0 := clampInt(int(srcX), 0, srcW-1)
			x1 := clampInt(x0+1, 0, srcW-1)
			fx := srcX - float64(x0)

			c00 := src.At(b.Min.X+x0, b.Min.Y+y0)
			c10 := src.At(b.Min.X+x1, b.Min.Y+y0)
			c01 := src.At(b.Min.X+x0, b.Min.Y+y1)
			c11 := src.At(b.Min.X+x1, b.Min.Y+y1)

			out.SetNRGBA(tx, ty, bilerpNRGBA(c00, c10, c01, c11, fx, fy))
		}
	}
	return out
}

func bilerpNRGBA(c00, c10, c01, c11 color.Color, fx, fy float64) color.NRGBA {
	r00, g00, b00, a00 := nrgba8(c00)
	r10, g10, b10, a10 := nrgba8(c10)
	r01, g01, b01, a01 := nrgba8(c01)
	r11, g11, b11, a11 := nrgba8(c11)

	return color.NRGBA{
		R: bilerp8(r00, r10, r01, r11, fx, fy),
		G: bilerp8(g00, g10, g01, g11, fx, fy),
		B: bilerp8(b00, b10, b01, b11, fx, fy),
		A: bilerp8(a00, a10, a01, a11, fx, fy),
	}
}

func nrgba8(c color.Color) (r, g, b, a uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return n.R, n.G, n.B, n.A
}

func bilerp8(v00, v10, v01, v11 uint8, fx, fy float64) uint8 {
	top := float64(v00)*(1-fx) + float64(v10)*fx
	bot := float64(v01)*(1-fx) + float64(v11)*fx
	return uint8(clampRound(top*(1-fy) + bot*fy))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
