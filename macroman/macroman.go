// Package macroman transcodes between MacRoman, the 8-bit encoding MFS
// volume names and filenames are stored in, and UTF-8, for display
// purposes only. On-disk name comparisons never go through this package
// (spec.md §9's resolved open question: raw byte comparison).
package macroman

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Decode converts raw MacRoman bytes (as stored in a Pascal string) to a
// UTF-8 Go string, for display.
func Decode(b []byte) string {
	out, err := charmap.Macintosh.NewDecoder().Bytes(b)
	if err != nil {
		// charmap.Macintosh covers all 256 byte values, so decoding
		// cannot fail; fall back to the raw bytes rather than panic.
		return string(b)
	}
	return string(out)
}

// Encode converts a UTF-8 Go string to MacRoman bytes, for constructing a
// display-originated name before it is written as a Pascal string.
// Characters with no MacRoman representation are replaced per
// charmap.Macintosh's encoder policy.
func Encode(s string) []byte {
	out, err := encoding.ReplaceUnsupported(charmap.Macintosh.NewEncoder()).Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}
