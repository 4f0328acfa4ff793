package volume

import (
	"macfs/mfserr"
)

// entryHeaderSize is the fixed portion of a File Directory entry, before
// its Pascal-string name (spec.md §3: "51 header bytes plus a Pascal-
// string name").
const entryHeaderSize = 51

const (
	flagInUse = 1 << 7
)

// entrySize returns the total on-disk size of an entry with the given
// name length, including the odd-length padding byte (spec.md §3).
func entrySize(nameLen int) int {
	size := entryHeaderSize + 1 + nameLen
	if size%2 != 0 {
		size++
	}
	return size
}

// padString right-pads s with '?' up to n characters, per spec.md §4.4
// ("Fields that are strings shorter than 4 characters are right-padded
// with '?' rather than zero").
func padString(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	for i := len(s); i < n; i++ {
		b[i] = '?'
	}
	return b
}

// decodeEntry decodes one directory entry at byte offset off within buf.
// The caller has already checked that flags bit 7 is set.
func decodeEntry(buf []byte, off int) *Entry {
	h := buf[off:]

	e := &Entry{
		InUse:       h[0]&flagInUse != 0,
		Type:        string(h[3:7]),
		Creator:     string(h[7:11]),
		FinderFlags: getUint16(h, 11),
		IconV:       int16(getUint16(h, 13)),
		IconH:       int16(getUint16(h, 15)),
		FolderNum:   int16(getUint16(h, 17)),
		FileNum:     getUint32(h, 19),
		Data: ForkInfo{
			StartBlock:      getUint16(h, 23),
			LogicalLength:   getUint32(h, 25),
			AllocatedLength: getUint32(h, 29),
		},
		Rsrc: ForkInfo{
			StartBlock:      getUint16(h, 33),
			LogicalLength:   getUint32(h, 35),
			AllocatedLength: getUint32(h, 39),
		},
		Created:  mfsToTime(getUint32(h, 43)),
		Modified: mfsToTime(getUint32(h, 47)),
		offset:   off,
	}

	nameLen := int(h[entryHeaderSize])
	e.Name = string(h[entryHeaderSize+1 : entryHeaderSize+1+nameLen])
	e.size = entrySize(nameLen)
	return e
}

// encodeEntry writes e's canonical form at e.offset, including its name
// and any odd-length padding byte.
func encodeEntry(buf []byte, e *Entry) {
	off := e.offset
	h := buf[off:]

	flags := byte(0)
	if e.InUse {
		flags = flagInUse
	}
	h[0] = flags
	h[1] = 0
	h[2] = 0 // version, spec.md §3 "version (0)"
	copy(h[3:7], padString(e.Type, 4))
	copy(h[7:11], padString(e.Creator, 4))
	putUint16(h, 11, e.FinderFlags)
	putUint16(h, 13, uint16(e.IconV))
	putUint16(h, 15, uint16(e.IconH))
	putUint16(h, 17, uint16(e.FolderNum))
	putUint32(h, 19, e.FileNum)
	putUint16(h, 23, e.Data.StartBlock)
	putUint32(h, 25, e.Data.LogicalLength)
	putUint32(h, 29, e.Data.AllocatedLength)
	putUint16(h, 33, e.Rsrc.StartBlock)
	putUint32(h, 35, e.Rsrc.LogicalLength)
	putUint32(h, 39, e.Rsrc.AllocatedLength)
	putUint32(h, 43, timeToMFS(e.Created))
	putUint32(h, 47, timeToMFS(e.Modified))

	nameBytes := []byte(e.Name)
	h[entryHeaderSize] = byte(len(nameBytes))
	copy(h[entryHeaderSize+1:], nameBytes)

	e.size = entrySize(len(nameBytes))
	if e.size > entryHeaderSize+1+len(nameBytes) {
		h[e.size-1] = 0
	}
}

// scanDirectory decodes every in-use entry in the directory region,
// terminating each sector's scan at its first unused entry but always
// advancing to the next sector (spec.md §9's resolved open question:
// per-sector termination, not whole-scan termination).
func (v *Volume) scanDirectory() []*Entry {
	var entries []*Entry

	dirBase := int(v.info.DirStart) * SectorSize
	dirBytes := int(v.info.DirLength) * SectorSize

	for sectorOff := 0; sectorOff < dirBytes; sectorOff += SectorSize {
		pos := 0
		for pos < SectorSize {
			off := dirBase + sectorOff + pos
			if v.buf[off]&flagInUse == 0 {
				break
			}
			e := decodeEntry(v.buf, off)
			entries = append(entries, e)
			pos += e.size
		}
	}

	return entries
}

// findFreeSlot computes the byte offset at which an entry of newEntrySize
// bytes can be written, failing ErrDirectoryFull if it does not fit in
// the directory region. Entries never span a sector boundary (spec.md
// §4.2), which scanDirectory's per-sector termination depends on: if the
// slot immediately following the last in-use entry would cross into the
// next sector, the sector's unused tail is skipped and the entry starts
// at that next sector instead.
func (v *Volume) findFreeSlot(newEntrySize int) (int, error) {
	dirBase := int(v.info.DirStart) * SectorSize
	dirBytes := int(v.info.DirLength) * SectorSize
	dirEnd := dirBase + dirBytes

	end := dirBase
	for _, e := range v.dir {
		if e.offset+e.size > end {
			end = e.offset + e.size
		}
	}

	if sectorOff := end % SectorSize; sectorOff+newEntrySize > SectorSize {
		end += SectorSize - sectorOff
	}

	if dirEnd-end < newEntrySize {
		return 0, mfserr.Wrap(mfserr.ErrDirectoryFull, "no room for a new entry in the directory region")
	}
	return end, nil
}

// findEntry returns the in-memory entry named name, comparing raw bytes
// (spec.md §9's resolved open question: never MacRoman-decode for
// comparison).
func (v *Volume) findEntry(name string) *Entry {
	for _, e := range v.dir {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// invalidateEntry clears flags bit 7 at e's offset, leaving every other
// byte of the entry untouched as an informal tombstone (spec.md §4.4).
func (v *Volume) invalidateEntry(e *Entry) {
	v.buf[e.offset] &^= flagInUse
	e.InUse = false
}
