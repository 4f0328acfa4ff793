package macpaint

import (
	"github.com/sirupsen/logrus"

	"macfs/mfserr"
)

// Ditherer maps a grayscale raster to a packed 1-bit-per-pixel buffer,
// MSB-left, where 1 means black (spec.md §4.7).
type Ditherer interface {
	dither(g *grayBuffer) *bitmap
}

// bitmap is a packed (width/8)*height monochrome raster.
type bitmap struct {
	w, h   int
	stride int
	bits   []byte
}

func newBitmap(w, h int) *bitmap {
	stride := (w + 7) / 8
	return &bitmap{w: w, h: h, stride: stride, bits: make([]byte, stride*h)}
}

func (b *bitmap) setBlack(x, y int, black bool) {
	if x < 0 || x >= b.w || y < 0 || y >= b.h {
		return
	}
	idx := y*b.stride + x/8
	mask := byte(0x80 >> uint(x%8))
	if black {
		b.bits[idx] |= mask
	} else {
		b.bits[idx] &^= mask
	}
}

// Threshold is the stateless single-value ditherer. Pixels strictly below
// Value become black.
type Threshold struct {
	Value int
}

// NewThreshold returns a Threshold ditherer with the spec.md default of 128
// when value is zero, matching the "thresholdValue (default 128)" table.
func NewThreshold(value int) Threshold {
	if value == 0 {
		value = 128
	}
	return Threshold{Value: value}
}

func (t Threshold) dither(g *grayBuffer) *bitmap {
	out := newBitmap(g.w, g.h)
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			out.setBlack(x, y, int(g.at(x, y)) < t.Value)
		}
	}
	return out
}

// FloydSteinberg diffuses quantisation error to four neighbours
// (+7/16 right, +3/16 below-left, +5/16 below, +1/16 below-right).
type FloydSteinberg struct{}

func (FloydSteinberg) dither(g *grayBuffer) *bitmap {
	work := g.clone()
	out := newBitmap(g.w, g.h)

	for y := 0; y < work.h; y++ {
		for x := 0; x < work.w; x++ {
			old := work.at(x, y)
			black := old < 128
			var quant int16
			if black {
				quant = 0
			} else {
				quant = 255
			}
			out.setBlack(x, y, black)
			err := old - quant

			diffuse(work, x+1, y, err, 7, 16)
			diffuse(work, x-1, y+1, err, 3, 16)
			diffuse(work, x, y+1, err, 5, 16)
			diffuse(work, x+1, y+1, err, 1, 16)
		}
	}
	return out
}

// Atkinson spreads one eighth of the quantisation error to each of six
// neighbours, discarding the remaining quarter (the format's characteristic
// contrast-preserving dither).
type Atkinson struct{}

func (Atkinson) dither(g *grayBuffer) *bitmap {
	work := g.clone()
	out := newBitmap(g.w, g.h)

	offsets := [][2]int{{1, 0}, {2, 0}, {-1, 1}, {0, 1}, {1, 1}, {0, 2}}

	for y := 0; y < work.h; y++ {
		for x := 0; x < work.w; x++ {
			old := work.at(x, y)
			black := old < 128
			var quant int16
			if black {
				quant = 0
			} else {
				quant = 255
			}
			out.setBlack(x, y, black)
			err := old - quant

			for _, off := range offsets {
				diffuse(work, x+off[0], y+off[1], err, 1, 8)
			}
		}
	}
	return out
}

func diffuse(g *grayBuffer, x, y int, err int16, num, den int16) {
	if x < 0 || x >= g.w || y < 0 || y >= g.h {
		return
	}
	g.set(x, y, g.at(x, y)+err*num/den)
}

var bayer2 = [][]int{{0, 2}, {3, 1}}
var bayer4 = [][]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}
var bayer8 = [][]int{
	{0, 32, 8, 40, 2, 34, 10, 42},
	{48, 16, 56, 24, 50, 18, 58, 26},
	{12, 44, 4, 36, 14, 46, 6, 38},
	{60, 28, 52, 20, 62, 30, 54, 22},
	{3, 35, 11, 43, 1, 33, 9, 41},
	{51, 19, 59, 27, 49, 17, 57, 25},
	{15, 47, 7, 39, 13, 45, 5, 37},
	{63, 31, 55, 23, 61, 29, 53, 21},
}

// Bayer is the stateless ordered ditherer. MatrixSize selects the n in
// {2,4,8}; an unsupported size falls back to 4 with a logged warning,
// matching spec.md §7's InvalidArgument note ("unsupported Bayer matrix
// size - fall back to 4x4 with a warning, per source").
type Bayer struct {
	MatrixSize int
	Logger     *logrus.Logger
}

// NewBayer returns a Bayer ditherer for matrixSize, defaulting to 4.
func NewBayer(matrixSize int) Bayer {
	if matrixSize == 0 {
		matrixSize = 4
	}
	return Bayer{MatrixSize: matrixSize}
}

func (b Bayer) matrix() (matrix [][]int, n int) {
	switch b.MatrixSize {
	case 2:
		return bayer2, 2
	case 4:
		return bayer4, 4
	case 8:
		return bayer8, 8
	default:
		logger := b.Logger
		if logger == nil {
			logger = logrus.StandardLogger()
		}
		logger.WithFields(logrus.Fields{
			"op": "bayerDither", "requested": b.MatrixSize,
		}).Warn("unsupported Bayer matrix size, falling back to 4x4")
		return bayer4, 4
	}
}

func (b Bayer) dither(g *grayBuffer) *bitmap {
	m, n := b.matrix()
	out := newBitmap(g.w, g.h)
	n2 := float64(n * n)

	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			gs := float64(g.at(x, y))
			threshold := float64(m[y%n][x%n]) / n2
			out.setBlack(x, y, gs/255.0 <= threshold)
		}
	}
	return out
}

// ditherStrategy validates and resolves a strategy name for Options.Strategy
// (macpaint.go's Serialise), used when the caller selects a named strategy
// instead of constructing a Ditherer value directly.
func ditherStrategy(name string, thresholdValue, bayerSize int) (Ditherer, error) {
	switch name {
	case "", "threshold":
		return NewThreshold(thresholdValue), nil
	case "floyd-steinberg":
		return FloydSteinberg{}, nil
	case "atkinson":
		return Atkinson{}, nil
	case "bayer":
		return NewBayer(bayerSize), nil
	default:
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "unknown dither strategy %q", name)
	}
}
