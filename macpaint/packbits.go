// Package macpaint implements the MacPaint (PNTG) image format: PackBits
// compression, grayscale/dithering monochromisation, resampling, and
// whole-file parse/serialise.
package macpaint

import (
	"macfs/mfserr"
)

// scanlineBytes is the packed width of one 576-pixel monochrome scanline.
const scanlineBytes = 72

// decompressScanline reads packets from in until exactly scanlineBytes
// output bytes are produced, per the signed-control-byte convention
// (n in [0,127]: literal run of n+1 bytes; n in [-127,-1]: repeat of the
// next byte 1-n times; n == -128: no-op). It returns the decoded
// scanline and the number of input bytes consumed.
func decompressScanline(in []byte) ([]byte, int, error) {
	out := make([]byte, 0, scanlineBytes)
	pos := 0

	for len(out) < scanlineBytes {
		if pos >= len(in) {
			return nil, 0, mfserr.Wrap(mfserr.ErrCorrupted, "packbits: input exhausted before %d bytes produced", scanlineBytes)
		}
		n := int8(in[pos])
		pos++

		switch {
		case n == -128:
			// no-op
		case n >= 0:
			count := int(n) + 1
			if pos+count > len(in) {
				return nil, 0, mfserr.Wrap(mfserr.ErrCorrupted, "packbits: literal run overruns input")
			}
			if len(out)+count > scanlineBytes {
				return nil, 0, mfserr.Wrap(mfserr.ErrCorrupted, "packbits: literal run overruns scanline")
			}
			out = append(out, in[pos:pos+count]...)
			pos += count
		default:
			count := 1 - int(n)
			if pos >= len(in) {
				return nil, 0, mfserr.Wrap(mfserr.ErrCorrupted, "packbits: repeat packet missing byte")
			}
			b := in[pos]
			pos++
			if len(out)+count > scanlineBytes {
				return nil, 0, mfserr.Wrap(mfserr.ErrCorrupted, "packbits: repeat run overruns scanline")
			}
			for i := 0; i < count; i++ {
				out = append(out, b)
			}
		}
	}

	if len(out) != scanlineBytes {
		return nil, 0, mfserr.Wrap(mfserr.ErrCorrupted, "packbits: produced %d bytes, want %d", len(out), scanlineBytes)
	}
	return out, pos, nil
}

// compressScanline encodes exactly scanlineBytes of input with a greedy
// run-length scheme: runs of 2 or more identical bytes (up to 128) become
// a 2-byte repeat packet, everything else accumulates into literal runs
// of up to 128 bytes. When that encoding would be longer than 73 bytes
// (lone bytes alternating with pairs cost more than they save), the
// scanline is emitted as one 72-byte literal packet instead, so output
// never exceeds 73 bytes.
func compressScanline(in []byte) ([]byte, error) {
	if len(in) != scanlineBytes {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "packbits: input must be exactly %d bytes, got %d", scanlineBytes, len(in))
	}

	out := make([]byte, 0, scanlineBytes+1)
	i := 0
	var literal []byte

	flushLiteral := func() {
		if len(literal) == 0 {
			return
		}
		out = append(out, byte(len(literal)-1))
		out = append(out, literal...)
		literal = nil
	}

	for i < len(in) {
		runLen := 1
		for i+runLen < len(in) && in[i+runLen] == in[i] && runLen < 128 {
			runLen++
		}

		if runLen >= 2 {
			flushLiteral()
			out = append(out, byte(-(runLen - 1)))
			out = append(out, in[i])
			i += runLen
			continue
		}

		literal = append(literal, in[i])
		i++
		if len(literal) == 128 {
			flushLiteral()
		}
	}
	flushLiteral()

	if len(out) > scanlineBytes+1 {
		out = append([]byte{byte(scanlineBytes - 1)}, in...)
	}

	return out, nil
}
