package volume

import (
	"time"

	"macfs/mfserr"
)

// mfsEpochOffset is the number of seconds between the MFS epoch
// (1904-01-01T00:00:00Z) and the Unix epoch.
const mfsEpochOffset = 2082844800

// getUint16 / putUint16 / getUint32 / putUint32 read and write big-endian
// integers directly against a byte slice at a given offset, the way
// keks-dumbfs/blkfile/block.go reads its size header directly off the
// lower ReadWriterAt rather than through an intermediate buffer.

func getUint16(buf []byte, off int) uint16 {
	return uint16(buf[off])<<8 | uint16(buf[off+1])
}

func putUint16(buf []byte, off int, v uint16) {
	buf[off] = byte(v >> 8)
	buf[off+1] = byte(v)
}

func getUint32(buf []byte, off int) uint32 {
	return uint32(buf[off])<<24 | uint32(buf[off+1])<<16 | uint32(buf[off+2])<<8 | uint32(buf[off+3])
}

func putUint32(buf []byte, off int, v uint32) {
	buf[off] = byte(v >> 24)
	buf[off+1] = byte(v >> 16)
	buf[off+2] = byte(v >> 8)
	buf[off+3] = byte(v)
}

// getPString reads a Pascal string (1-byte length prefix + bytes) at off.
func getPString(buf []byte, off int) []byte {
	n := int(buf[off])
	return buf[off+1 : off+1+n]
}

// putPString writes s as a Pascal string into a fixed-size slot of
// slotSize bytes (including the length byte), zero-padding any trailing
// bytes in the slot.
func putPString(buf []byte, off, slotSize int, s []byte) {
	n := len(s)
	if n > slotSize-1 {
		n = slotSize - 1
	}
	buf[off] = byte(n)
	copy(buf[off+1:off+1+n], s[:n])
	for i := off + 1 + n; i < off+slotSize; i++ {
		buf[i] = 0
	}
}

// timeToMFS converts a wall-clock instant to seconds since the MFS epoch.
// The zero time.Time converts to 0, the "null date" convention.
func timeToMFS(t time.Time) uint32 {
	if t.IsZero() {
		return 0
	}
	return uint32(t.Unix() + mfsEpochOffset)
}

// mfsToTime converts seconds-since-MFS-epoch back to a wall-clock instant.
// A stored 0 is the "null date" convention and converts to the zero
// time.Time.
func mfsToTime(v uint32) time.Time {
	if v == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v)-mfsEpochOffset, 0).UTC()
}

// getABMValue reads the 12-bit value at logical ABM index n from the
// packed triplet buffer, per spec.md §4.1.
func getABMValue(buf []byte, n int) uint16 {
	triplet := n / 2
	b0, b1, b2 := buf[triplet*3], buf[triplet*3+1], buf[triplet*3+2]
	if n%2 == 0 {
		return uint16(b0)<<4 | uint16(b1>>4)
	}
	return uint16(b1&0x0F)<<8 | uint16(b2)
}

// putABMValue writes the 12-bit value v at logical ABM index n into the
// packed triplet buffer, preserving the untouched nibble of b1.
func putABMValue(buf []byte, n int, v uint16) error {
	if v > 0xFFF {
		return mfserr.Wrap(mfserr.ErrInvalidArgument, "ABM value %#x exceeds 0xFFF", v)
	}
	triplet := n / 2
	i := triplet * 3
	if n%2 == 0 {
		buf[i] = byte(v >> 4)
		buf[i+1] = (buf[i+1] & 0x0F) | byte((v&0x0F)<<4)
	} else {
		buf[i+1] = (buf[i+1] & 0xF0) | byte((v>>8)&0x0F)
		buf[i+2] = byte(v & 0xFF)
	}
	return nil
}

// abmTripletBytes returns the number of bytes needed to pack n 12-bit
// entries, rounding the final incomplete triplet up.
func abmTripletBytes(n int) int {
	return (n + 1) / 2 * 3
}
