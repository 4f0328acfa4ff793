package volume

import "time"

// SectorSize is the fixed MFS sector size in bytes.
const SectorSize = 512

// Signature is the expected MFS volume signature (drSigWord): the ASCII
// letters 'R' and 'W' with their high bits set, written here in numeric
// form to match spec.md §3.
const Signature = 0xD2D7

// Info is the decoded 64-byte volume-info prefix of the Master Directory
// Block (spec.md §3 "Volume info").
type Info struct {
	Signature       uint16
	Created         time.Time
	Modified        time.Time
	Attributes      uint16
	FileCount       uint16
	DirStart        uint16
	DirLength       uint16
	NumAllocBlocks  uint16
	AllocBlockSize  uint32
	ClumpSize       uint32
	AllocBlockStart uint16
	NextFileNum     uint32
	FreeBlocks      uint16
	VolumeName      string
}

// ForkInfo describes the on-disk placement of one fork (data or resource).
type ForkInfo struct {
	StartBlock      uint16
	LogicalLength   uint32
	AllocatedLength uint32
}

// Entry is the in-memory decoding of one File Directory entry, including
// its byte offset within the volume buffer (spec.md §3 "File Directory").
type Entry struct {
	InUse       bool
	Type        string
	Creator     string
	FinderFlags uint16
	IconV       int16
	IconH       int16
	FolderNum   int16
	FileNum     uint32
	Data        ForkInfo
	Rsrc        ForkInfo
	Created     time.Time
	Modified    time.Time
	Name        string

	offset int // byte offset of this entry's first byte within the buffer
	size   int // total encoded size (header + padded name) in bytes
}

// ForkType selects which fork an operation addresses.
type ForkType string

const (
	DataFork     ForkType = "data"
	ResourceFork ForkType = "resource"
)

// Metadata supplies the caller-controlled fields of a new directory entry.
type Metadata struct {
	Type        string
	Creator     string
	FolderNum   int16
	FinderFlags uint16
	IconV       int16
	IconH       int16
	Created     time.Time // zero means "now"
	Modified    time.Time // zero means "now"
}

// MetaPatch updates selected fields of an existing directory entry in
// place, leaving unset fields (nil pointers) untouched.
type MetaPatch struct {
	FinderFlags *uint16
	IconV       *int16
	IconH       *int16
	FolderNum   *int16
}

// FileInfo is the public, read-only view of a directory entry returned by
// listFiles/getFileInfo/createFile/writeFile (spec.md §6).
type FileInfo struct {
	Name                    string
	Type                    string
	Creator                 string
	DataForkLogicalSize     uint32
	ResourceForkLogicalSize uint32
	DataForkAllocLength     uint32
	ResourceForkAllocLength uint32
	Created                 time.Time
	Modified                time.Time
	FileNum                 uint32
	FolderNum               int16
	FinderFlags             uint16
	IconV                   int16
	IconH                   int16
}

// Diagnostic is a non-fatal observation recorded during an operation, the
// "optional diagnostics channel" spec.md §9 calls for in place of a log
// print when ABM chain corruption is tolerated rather than raised.
type Diagnostic struct {
	Op     string
	Block  uint16
	Detail string
	Time   time.Time
}

// Stat summarises free/used allocation space.
type Stat struct {
	TotalBlocks uint16
	FreeBlocks  uint16
	UsedBlocks  uint16
	BytesFree   uint32
	BytesUsed   uint32
}

func entryToFileInfo(e *Entry) FileInfo {
	return FileInfo{
		Name:                    e.Name,
		Type:                    e.Type,
		Creator:                 e.Creator,
		DataForkLogicalSize:     e.Data.LogicalLength,
		ResourceForkLogicalSize: e.Rsrc.LogicalLength,
		DataForkAllocLength:     e.Data.AllocatedLength,
		ResourceForkAllocLength: e.Rsrc.AllocatedLength,
		Created:                 e.Created,
		Modified:                e.Modified,
		FileNum:                 e.FileNum,
		FolderNum:               e.FolderNum,
		FinderFlags:             e.FinderFlags,
		IconV:                   e.IconV,
		IconH:                   e.IconH,
	}
}
