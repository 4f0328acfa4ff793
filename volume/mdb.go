package volume

import (
	"time"

	"macfs/mfserr"
)

// mdbOffset is the byte offset of the Master Directory Block within the
// volume buffer: sectors 0-1 are boot blocks, the MDB starts at sector 2.
const mdbOffset = 2 * SectorSize

// infoSize is the fixed 64-byte volume-info prefix of the MDB (spec.md §3).
const infoSize = 64

// volNameSlot is the size, in bytes, of the drVN Pascal-string slot
// (length byte + up to 27 characters + zero padding).
const volNameSlot = 28

// abmOffset is the byte offset, relative to the start of the MDB, at
// which the packed Allocation Block Map begins.
const abmOffset = infoSize

func decodeInfo(buf []byte) Info {
	b := buf[mdbOffset:]
	return Info{
		Signature:       getUint16(b, 0),
		Created:         mfsToTime(getUint32(b, 2)),
		Modified:        mfsToTime(getUint32(b, 6)),
		Attributes:      getUint16(b, 10),
		FileCount:       getUint16(b, 12),
		DirStart:        getUint16(b, 14),
		DirLength:       getUint16(b, 16),
		NumAllocBlocks:  getUint16(b, 18),
		AllocBlockSize:  getUint32(b, 20),
		ClumpSize:       getUint32(b, 24),
		AllocBlockStart: getUint16(b, 28),
		NextFileNum:     getUint32(b, 30),
		FreeBlocks:      getUint16(b, 34),
		VolumeName:      string(getPString(b, 36)),
	}
}

func encodeInfo(buf []byte, info Info) {
	b := buf[mdbOffset:]
	putUint16(b, 0, info.Signature)
	putUint32(b, 2, timeToMFS(info.Created))
	putUint32(b, 6, timeToMFS(info.Modified))
	putUint16(b, 10, info.Attributes)
	putUint16(b, 12, info.FileCount)
	putUint16(b, 14, info.DirStart)
	putUint16(b, 16, info.DirLength)
	putUint16(b, 18, info.NumAllocBlocks)
	putUint32(b, 20, info.AllocBlockSize)
	putUint32(b, 24, info.ClumpSize)
	putUint16(b, 28, info.AllocBlockStart)
	putUint32(b, 30, info.NextFileNum)
	putUint16(b, 34, info.FreeBlocks)
	putPString(b, 36, volNameSlot, []byte(info.VolumeName))
}

// decodeABM unpacks n 12-bit entries starting at abmOffset within the MDB.
func decodeABM(buf []byte, n int) []uint16 {
	b := buf[mdbOffset+abmOffset:]
	abm := make([]uint16, n)
	for i := 0; i < n; i++ {
		abm[i] = getABMValue(b, i)
	}
	return abm
}

// encodeABM packs abm back into the MDB's ABM region.
func encodeABM(buf []byte, abm []uint16) error {
	b := buf[mdbOffset+abmOffset:]
	for i, v := range abm {
		if err := putABMValue(b, i, v); err != nil {
			return mfserr.Wrapf(mfserr.ErrInvalidArgument, err, "encoding ABM entry %d", i)
		}
	}
	return nil
}

// geometry is the derived on-disk layout for a given total sector count,
// resolving spec.md §9's non-default-size open question by scaling the
// 400 KB defaults proportionally rather than rejecting other sizes.
type geometry struct {
	dirStart        uint16
	dirLength       uint16
	allocBlockStart uint16
	allocBlockSize  uint32
	numAllocBlocks  uint16
	clumpSize       uint32
}

// defaultTotalSectors is the sector count of the reference 400 KB volume
// the default geometry table in spec.md §4.2 was measured against.
const defaultTotalSectors = 800

func deriveGeometry(totalSectors int) (geometry, error) {
	if totalSectors < 510 {
		return geometry{}, mfserr.Wrap(mfserr.ErrInvalidArgument,
			"volume of %d sectors is below the 510-sector minimum", totalSectors)
	}

	const defaultDirLen = 12
	dirLen := (defaultDirLen*totalSectors + defaultTotalSectors - 1) / defaultTotalSectors
	if dirLen < 1 {
		dirLen = 1
	}

	g := geometry{
		dirStart:       4,
		dirLength:      uint16(dirLen),
		allocBlockSize: 1024,
	}
	g.allocBlockStart = g.dirStart + g.dirLength

	sectorsPerBlock := int(g.allocBlockSize / SectorSize)
	remaining := totalSectors - int(g.allocBlockStart)
	if remaining < sectorsPerBlock {
		return geometry{}, mfserr.Wrap(mfserr.ErrInvalidArgument,
			"volume of %d sectors leaves no room for an allocation block", totalSectors)
	}

	g.numAllocBlocks = uint16(remaining / sectorsPerBlock)
	g.clumpSize = g.allocBlockSize * 8
	if g.clumpSize < g.allocBlockSize {
		g.clumpSize = g.allocBlockSize
	}
	return g, nil
}

// blockOffset returns the byte offset of the physical allocation block
// numbered blockNum (blocks are numbered from 2).
func (v *Volume) blockOffset(blockNum uint16) int64 {
	sectorsPerBlock := int64(v.info.AllocBlockSize / SectorSize)
	return int64(v.info.AllocBlockStart)*SectorSize + int64(blockNum-2)*sectorsPerBlock*SectorSize
}

// now returns the wall-clock instant truncated to whole seconds, the
// precision MFS timestamps store on disk; overridable in tests.
var now = func() time.Time { return time.Now().Truncate(time.Second) }
