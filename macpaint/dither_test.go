package macpaint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func grayFromInts(w, h int, vals []int) *grayBuffer {
	g := newGrayBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.set(x, y, int16(vals[y*w+x]))
		}
	}
	return g
}

func TestThresholdDefaultsTo128(t *testing.T) {
	th := NewThreshold(0)
	require.Equal(t, 128, th.Value)
}

func TestThresholdBlackBelowValue(t *testing.T) {
	g := grayFromInts(2, 1, []int{100, 200})
	bm := NewThreshold(128).dither(g)
	require.True(t, bm.bits[0]&0x80 != 0) // x=0, 100 < 128 -> black
	require.True(t, bm.bits[0]&0x40 == 0) // x=1, 200 >= 128 -> white
}

func TestThresholdDoesNotMutateInput(t *testing.T) {
	g := grayFromInts(2, 1, []int{100, 200})
	before := append([]int16{}, g.px...)
	_ = NewThreshold(128).dither(g)
	require.Equal(t, before, g.px)
}

func TestFloydSteinbergDoesNotMutateInput(t *testing.T) {
	g := grayFromInts(4, 4, []int{
		10, 200, 50, 90,
		5, 128, 255, 0,
		60, 60, 60, 60,
		0, 255, 0, 255,
	})
	before := append([]int16{}, g.px...)
	_ = FloydSteinberg{}.dither(g)
	require.Equal(t, before, g.px)
}

func TestAtkinsonDoesNotMutateInput(t *testing.T) {
	g := grayFromInts(4, 4, []int{
		10, 200, 50, 90,
		5, 128, 255, 0,
		60, 60, 60, 60,
		0, 255, 0, 255,
	})
	before := append([]int16{}, g.px...)
	_ = Atkinson{}.dither(g)
	require.Equal(t, before, g.px)
}

func TestBayerDefaultsTo4x4(t *testing.T) {
	b := NewBayer(0)
	require.Equal(t, 4, b.MatrixSize)
	_, n := b.matrix()
	require.Equal(t, 4, n)
}

func TestBayerFallsBackOnUnsupportedSize(t *testing.T) {
	b := NewBayer(6)
	m, n := b.matrix()
	require.Equal(t, 4, n)
	require.Equal(t, bayer4, m)
}

// TestBayerDeterministic is property P7.
func TestBayerDeterministic(t *testing.T) {
	g := grayFromInts(8, 8, func() []int {
		out := make([]int, 64)
		for i := range out {
			out[i] = (i * 7) % 256
		}
		return out
	}())

	b := NewBayer(8)
	a := b.dither(g)
	c := b.dither(g)
	require.Equal(t, a.bits, c.bits)
}

func TestBayerMatrixValues(t *testing.T) {
	require.Equal(t, [][]int{{0, 2}, {3, 1}}, bayer2)
	require.Equal(t, 0, bayer4[0][0])
	require.Equal(t, 5, bayer4[3][3])
	require.Equal(t, 21, bayer8[7][7])
}

func TestDitherStrategySelectsByName(t *testing.T) {
	d, err := ditherStrategy("threshold", 100, 0)
	require.NoError(t, err)
	require.Equal(t, Threshold{Value: 100}, d)

	d, err = ditherStrategy("floyd-steinberg", 0, 0)
	require.NoError(t, err)
	require.IsType(t, FloydSteinberg{}, d)

	d, err = ditherStrategy("atkinson", 0, 0)
	require.NoError(t, err)
	require.IsType(t, Atkinson{}, d)

	d, err = ditherStrategy("bayer", 0, 8)
	require.NoError(t, err)
	require.Equal(t, Bayer{MatrixSize: 8}, d)

	_, err = ditherStrategy("nonsense", 0, 0)
	require.Error(t, err)
}
