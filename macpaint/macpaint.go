package macpaint

import (
	"image"
	"image/color"

	"github.com/sirupsen/logrus"

	"macfs/mfserr"
)

const (
	canvasWidth  = 576
	canvasHeight = 720
	headerSize   = 512
	versionSize  = 4
	numPatterns  = 38
	patternBytes = 8
	paddingBytes = 204
	versionMark  = 0x00000002
	macBinarySize = 128
)

// Pattern is one 8x8 1-bit fill-pattern tile, stored as 8 rows of 8 bits
// each (MSB-left), opaque byte content this codec preserves but never
// renders (spec.md §1: "no rendering of the 38 pattern tiles").
type Pattern [patternBytes]byte

// Bit reports whether pixel (x, y) of the pattern is set, for callers that
// want to inspect a tile without writing their own bit-unpacking.
func (p Pattern) Bit(x, y int) bool {
	if x < 0 || x >= 8 || y < 0 || y >= 8 {
		return false
	}
	return p[y]&(0x80>>uint(x)) != 0
}

// Image is the decoded result of Parse: a 576x720 raster plus the 38
// pattern tiles recorded in the header, opaque to this codec beyond their
// raw bytes (spec.md §6 "parse(bytes)"). Image itself implements
// image.Image by delegating to Raster, so a value returned by Parse can
// be passed straight back into Serialise.
type Image struct {
	Raster   *image.NRGBA
	Patterns [numPatterns]Pattern
}

// ColorModel implements image.Image.
func (img *Image) ColorModel() color.Model { return img.Raster.ColorModel() }

// Bounds implements image.Image.
func (img *Image) Bounds() image.Rectangle { return img.Raster.Bounds() }

// At implements image.Image.
func (img *Image) At(x, y int) color.Color { return img.Raster.At(x, y) }

// storedPatterns lets Serialise recover the pattern tiles of a
// previously-parsed Image when opts.Patterns is unset (spec.md §4.9
// "else the image's stored patterns").
func (img *Image) storedPatterns() [numPatterns]Pattern { return img.Patterns }

// patternSource is satisfied by *Image.
type patternSource interface {
	storedPatterns() [numPatterns]Pattern
}

// Options configures Serialise: optional crop/pad/scale geometry, the
// pattern tiles to embed, and the dither strategy (spec.md §4.9).
//
// Dither, when set, is used directly. Otherwise Strategy names one of
// "threshold" (default), "floyd-steinberg", "atkinson", or "bayer",
// resolved via ditherStrategy with ThresholdValue/BayerSize as that
// strategy's parameters — the named-strategy entry point spec.md §4.9
// exposes alongside constructing a Ditherer value directly.
type Options struct {
	Crop           *image.Rectangle
	Pad            *PadOptions
	Patterns       *[numPatterns]Pattern
	Dither         Ditherer
	Strategy       string
	ThresholdValue int
	BayerSize      int
	Logger         *logrus.Logger
}

// PadOptions describes a pad-to-canvas request (spec.md §4.8).
type PadOptions struct {
	X, Y      int
	FillBlack bool
}

func loggerOrDefault(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return logrus.StandardLogger()
}

// hasMacBinaryWrapper detects the optional 128-byte MacBinary header per
// spec.md §4.9 step 1: byte 0 == 0x00, 1 <= byte 1 <= 63, and bytes
// 65..68 spell "PNTG".
func hasMacBinaryWrapper(buf []byte) bool {
	if len(buf) < macBinarySize {
		return false
	}
	if buf[0] != 0x00 {
		return false
	}
	if buf[1] < 1 || buf[1] > 63 {
		return false
	}
	return string(buf[65:69]) == "PNTG"
}

// Parse decodes a PNTG byte stream into an Image (spec.md §4.9, §6).
func Parse(buf []byte, opts Options) (*Image, error) {
	logger := loggerOrDefault(opts.Logger)

	off := 0
	if hasMacBinaryWrapper(buf) {
		off = macBinarySize
	}

	if len(buf) < off+headerSize {
		return nil, mfserr.Wrap(mfserr.ErrInvalidFormat, "input too short to contain the %d-byte header", headerSize)
	}

	marker := getUint32(buf, off)
	if marker != versionMark {
		logger.WithFields(logrus.Fields{
			"op": "parse", "marker": marker,
		}).Warn("unexpected PNTG version marker")
	}
	off += versionSize

	var patterns [numPatterns]Pattern
	for i := 0; i < numPatterns; i++ {
		copy(patterns[i][:], buf[off:off+patternBytes])
		off += patternBytes
	}
	off += paddingBytes

	raster := image.NewNRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))

	for y := 0; y < canvasHeight; y++ {
		scan, consumed, err := decompressScanline(buf[off:])
		if err != nil {
			return nil, err
		}
		off += consumed

		for byteIdx, b := range scan {
			for bit := 0; bit < 8; bit++ {
				x := byteIdx*8 + bit
				black := b&(0x80>>uint(bit)) != 0
				if black {
					raster.SetNRGBA(x, y, color.NRGBA{A: 255})
				} else {
					raster.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
				}
			}
		}
	}

	return &Image{Raster: raster, Patterns: patterns}, nil
}

func getUint32(b []byte, off int) uint32 {
	return uint32(b[off])<<24 | uint32(b[off+1])<<16 | uint32(b[off+2])<<8 | uint32(b[off+3])
}

func putUint32(b []byte, off int, v uint32) {
	b[off] = byte(v >> 24)
	b[off+1] = byte(v >> 16)
	b[off+2] = byte(v >> 8)
	b[off+3] = byte(v)
}

// Serialise converts src into a PNTG byte stream, applying crop/pad/scale
// geometry, grayscale conversion, and dithering per opts (spec.md §4.9).
func Serialise(src image.Image, opts Options) ([]byte, error) {
	raster, err := prepareRaster(src, opts)
	if err != nil {
		return nil, err
	}

	gray := toGrayscale(raster)

	dither := opts.Dither
	if dither == nil {
		dither, err = ditherStrategy(opts.Strategy, opts.ThresholdValue, opts.BayerSize)
		if err != nil {
			return nil, err
		}
	}
	bm := dither.dither(gray)

	out := make([]byte, 0, headerSize+canvasHeight*73)
	header := make([]byte, headerSize)
	putUint32(header, 0, versionMark)

	patterns := opts.Patterns
	if patterns == nil {
		if ps, ok := src.(patternSource); ok {
			stored := ps.storedPatterns()
			patterns = &stored
		}
	}
	if patterns != nil {
		off := versionSize
		for i := 0; i < numPatterns; i++ {
			copy(header[off:off+patternBytes], patterns[i][:])
			off += patternBytes
		}
	}
	out = append(out, header...)

	for y := 0; y < canvasHeight; y++ {
		scanline := make([]byte, scanlineBytes)
		copy(scanline, bm.bits[y*bm.stride:(y+1)*bm.stride])
		compressed, err := compressScanline(scanline)
		if err != nil {
			return nil, err
		}
		out = append(out, compressed...)
	}

	return out, nil
}

// prepareRaster applies crop, then pad-to-canvas if configured and the
// image is smaller, then bilinear scale to the canvas size if dimensions
// still differ (spec.md §4.9 "Serialise" steps).
func prepareRaster(src image.Image, opts Options) (image.Image, error) {
	img := src

	if opts.Crop != nil {
		cropped, err := cropImage(img, *opts.Crop)
		if err != nil {
			return nil, err
		}
		img = cropped
	}

	b := img.Bounds()
	if opts.Pad != nil && (b.Dx() < canvasWidth || b.Dy() < canvasHeight) {
		img = padImage(img, canvasWidth, canvasHeight, opts.Pad.X, opts.Pad.Y, opts.Pad.FillBlack)
	}

	b = img.Bounds()
	if b.Dx() != canvasWidth || b.Dy() != canvasHeight {
		img = scaleImage(img, canvasWidth, canvasHeight)
	}

	return img, nil
}
