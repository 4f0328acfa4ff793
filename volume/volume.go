// Package volume implements the Macintosh File System (MFS) volume
// engine: formatting a blank volume, parsing an existing one, and
// performing create/read/write/delete of files with independent data and
// resource forks.
package volume

import (
	"sync"

	"github.com/sirupsen/logrus"

	"macfs/mfserr"
)

// DefaultSizeKB is the size, in kilobytes, of a standard 400 KB MFS
// floppy image, and the only size validated against period emulators
// (spec.md §9).
const DefaultSizeKB = 400

// DefaultVolumeName is used when Options.VolumeName is empty.
const DefaultVolumeName = "Untitled"

// Options configures a new, blank volume (spec.md §6, constructor case a).
type Options struct {
	// SizeKB is the target image size in kilobytes. Only 400 is tested
	// against real emulators; other sizes derive their geometry
	// proportionally (spec.md §9) and are experimental.
	SizeKB int
	// VolumeName is truncated to 27 characters if longer (spec.md §4.2).
	VolumeName string
	// Logger overrides the default *logrus.Logger used for operation
	// tracing and corruption warnings. Nil uses logrus.StandardLogger().
	Logger *logrus.Logger
}

// Volume is a handle onto one MFS volume image. It is not safe for
// concurrent use (spec.md §5): operations on a given handle must happen
// strictly in call order.
type Volume struct {
	buf []byte

	info Info
	abm  []uint16
	dir  []*Entry

	diagnostics []Diagnostic
	logger      *logrus.Logger

	// mu guards drNxtFNum/drFreeBks mutation within a single operation. The
	// library is not re-entrant (spec.md §5 disclaims multi-writer safety);
	// this is defensive against accidental concurrent calls, not a
	// concurrency guarantee.
	mu sync.Mutex
}

// Format creates a new, blank volume in memory per spec.md §4.2.
func Format(opts Options) (*Volume, error) {
	sizeKB := opts.SizeKB
	if sizeKB == 0 {
		sizeKB = DefaultSizeKB
	}
	if sizeKB <= 0 {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "sizeKB must be positive, got %d", sizeKB)
	}

	volName := opts.VolumeName
	if volName == "" {
		volName = DefaultVolumeName
	}
	if len(volName) > 27 {
		volName = volName[:27]
	}

	totalBytes := sizeKB * 1024
	if totalBytes%SectorSize != 0 {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "volume size %d bytes is not a multiple of %d", totalBytes, SectorSize)
	}
	totalSectors := totalBytes / SectorSize

	geo, err := deriveGeometry(totalSectors)
	if err != nil {
		return nil, err
	}

	v := &Volume{
		buf:    make([]byte, totalBytes),
		logger: loggerOrDefault(opts.Logger),
	}

	t := now()
	v.info = Info{
		Signature:       Signature,
		Created:         t,
		Modified:        t,
		FileCount:       0,
		DirStart:        geo.dirStart,
		DirLength:       geo.dirLength,
		NumAllocBlocks:  geo.numAllocBlocks,
		AllocBlockSize:  geo.allocBlockSize,
		ClumpSize:       geo.clumpSize,
		AllocBlockStart: geo.allocBlockStart,
		NextFileNum:     1,
		FreeBlocks:      geo.numAllocBlocks,
		VolumeName:      volName,
	}
	v.abm = make([]uint16, geo.numAllocBlocks)
	v.dir = nil

	v.writeback()

	v.logger.WithFields(logrus.Fields{
		"sizeKB": sizeKB, "numAllocBlocks": geo.numAllocBlocks, "volumeName": volName,
	}).Debug("formatted new volume")

	return v, nil
}

// Parse loads an existing volume image from buf per spec.md §4.2. buf is
// retained by the returned Volume, not copied.
func Parse(buf []byte, opts Options) (*Volume, error) {
	if len(buf) == 0 || len(buf)%SectorSize != 0 {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "buffer length %d is not a positive multiple of %d", len(buf), SectorSize)
	}
	if len(buf) < mdbOffset+infoSize {
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "buffer too small to hold a Master Directory Block")
	}

	v := &Volume{
		buf:    buf,
		logger: loggerOrDefault(opts.Logger),
	}

	v.info = decodeInfo(buf)
	if v.info.Signature != Signature {
		return nil, mfserr.Wrap(mfserr.ErrInvalidSignature, "expected %#04x, got %#04x", Signature, v.info.Signature)
	}

	v.abm = decodeABM(buf, int(v.info.NumAllocBlocks))
	v.dir = v.scanDirectory()

	v.logger.WithFields(logrus.Fields{
		"numAllocBlocks": v.info.NumAllocBlocks, "fileCount": v.info.FileCount,
	}).Debug("parsed existing volume")

	return v, nil
}

func loggerOrDefault(l *logrus.Logger) *logrus.Logger {
	if l != nil {
		return l
	}
	return logrus.StandardLogger()
}

// writeback serialises the in-memory Info and ABM back into the buffer.
// The directory area is written entry-by-entry by its callers (spec.md §5:
// "the directory area receives a single entry-sized byte update per
// operation").
func (v *Volume) writeback() {
	encodeInfo(v.buf, v.info)
	_ = encodeABM(v.buf, v.abm) // values are always in-range; constructed internally
}

// VolumeInfo returns a snapshot of the decoded MDB volume-info fields.
func (v *Volume) VolumeInfo() Info {
	return v.info
}

// Diagnostics returns every non-fatal warning recorded so far.
func (v *Volume) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(v.diagnostics))
	copy(out, v.diagnostics)
	return out
}

// Stat summarises free/used allocation space.
func (v *Volume) Stat() Stat {
	used := v.info.NumAllocBlocks - v.info.FreeBlocks
	return Stat{
		TotalBlocks: v.info.NumAllocBlocks,
		FreeBlocks:  v.info.FreeBlocks,
		UsedBlocks:  used,
		BytesFree:   uint32(v.info.FreeBlocks) * v.info.AllocBlockSize,
		BytesUsed:   uint32(used) * v.info.AllocBlockSize,
	}
}

// GetDiskImage returns the full volume byte buffer, reflecting every
// mutation applied so far.
func (v *Volume) GetDiskImage() []byte {
	return v.buf
}
