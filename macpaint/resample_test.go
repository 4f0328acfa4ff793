package macpaint

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCropRejectsOutOfBounds(t *testing.T) {
	src := solidImage(10, 10, color.White)
	_, err := cropImage(src, image.Rect(5, 5, 20, 20))
	require.Error(t, err)
}

func TestCropRejectsNonPositiveDimensions(t *testing.T) {
	src := solidImage(10, 10, color.White)
	_, err := cropImage(src, image.Rect(5, 5, 5, 8))
	require.Error(t, err)
}

func TestCropCopiesRectangle(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	out, err := cropImage(src, image.Rect(1, 1, 3, 3))
	require.NoError(t, err)
	require.Equal(t, 2, out.Bounds().Dx())
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, out.NRGBAAt(0, 0))
}

func TestPadFillsAndOffsets(t *testing.T) {
	src := solidImage(2, 2, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	out := padImage(src, 6, 6, 1, 1, false)

	require.Equal(t, 6, out.Bounds().Dx())
	require.Equal(t, uint8(255), out.NRGBAAt(0, 0).R)
	require.Equal(t, uint8(10), out.NRGBAAt(1, 1).R)
	require.Equal(t, uint8(10), out.NRGBAAt(2, 2).R)
}

func TestPadFillsBlackWhenConfigured(t *testing.T) {
	src := solidImage(1, 1, color.White)
	out := padImage(src, 3, 3, 0, 0, true)
	require.Equal(t, uint8(0), out.NRGBAAt(2, 2).R)
}

func TestScaleIsIdentityWhenDimensionsMatch(t *testing.T) {
	src := solidImage(4, 4, color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	out := scaleImage(src, 4, 4)
	require.Equal(t, uint8(9), out.NRGBAAt(0, 0).R)
}

func TestScaleUpscalesConsistently(t *testing.T) {
	src := solidImage(2, 2, color.NRGBA{R: 50, G: 60, B: 70, A: 255})
	out := scaleImage(src, 8, 8)
	require.Equal(t, 8, out.Bounds().Dx())
	require.Equal(t, uint8(50), out.NRGBAAt(4, 4).R)
}

func TestScaleDownscalesConsistently(t *testing.T) {
	src := solidImage(8, 8, color.NRGBA{R: 30, G: 40, B: 50, A: 255})
	out := scaleImage(src, 2, 2)
	require.Equal(t, uint8(30), out.NRGBAAt(0, 0).R)
	require.Equal(t, uint8(40), out.NRGBAAt(0, 0).G)
}
