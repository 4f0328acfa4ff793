package volume

import (
	"github.com/sirupsen/logrus"

	"macfs/mfserr"
)

func ceilDiv(a, b uint32) int {
	if a == 0 {
		return 0
	}
	return int((a + b - 1) / b)
}

func validateMetadata(name string, meta Metadata) error {
	if len(name) > 255 {
		return mfserr.Wrap(mfserr.ErrInvalidArgument, "name %q exceeds 255 bytes", name)
	}
	if len(meta.Type) != 4 {
		return mfserr.Wrap(mfserr.ErrInvalidArgument, "type %q must be exactly 4 characters", meta.Type)
	}
	if len(meta.Creator) != 4 {
		return mfserr.Wrap(mfserr.ErrInvalidArgument, "creator %q must be exactly 4 characters", meta.Creator)
	}
	return nil
}

// ListFiles returns every in-use directory entry, in the order they
// appear in the directory (spec.md §6).
func (v *Volume) ListFiles() []FileInfo {
	out := make([]FileInfo, 0, len(v.dir))
	for _, e := range v.dir {
		if e.InUse {
			out = append(out, entryToFileInfo(e))
		}
	}
	return out
}

// GetFileInfo looks up name, failing ErrNotFound if absent (spec.md §6).
func (v *Volume) GetFileInfo(name string) (FileInfo, error) {
	e := v.findEntry(name)
	if e == nil || !e.InUse {
		return FileInfo{}, mfserr.Wrap(mfserr.ErrNotFound, "no such file %q", name)
	}
	return entryToFileInfo(e), nil
}

// CreateFile is equivalent to WriteFile(name, nil, nil, meta) (spec.md §4.5).
func (v *Volume) CreateFile(name string, meta Metadata) (FileInfo, error) {
	return v.WriteFile(name, nil, nil, meta)
}

// WriteFile creates or overwrites name with the given fork contents
// (spec.md §4.5). An existing file with this name is deleted first,
// implementing overwrite as delete-then-create (spec.md §1).
func (v *Volume) WriteFile(name string, dataFork, resourceFork []byte, meta Metadata) (FileInfo, error) {
	if err := validateMetadata(name, meta); err != nil {
		return FileInfo{}, err
	}

	if existing := v.findEntry(name); existing != nil && existing.InUse {
		if err := v.DeleteFile(name); err != nil {
			return FileInfo{}, err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	nd := ceilDiv(uint32(len(dataFork)), v.info.AllocBlockSize)
	nr := ceilDiv(uint32(len(resourceFork)), v.info.AllocBlockSize)

	if nd+nr > int(v.info.FreeBlocks) {
		return FileInfo{}, mfserr.Wrap(mfserr.ErrDiskFull, "need %d blocks for %q, only %d free", nd+nr, name, v.info.FreeBlocks)
	}

	dataStart, dataBlocks, err := v.allocateChain(nd)
	if err != nil {
		return FileInfo{}, err
	}
	rsrcStart, rsrcBlocks, err := v.allocateChain(nr)
	if err != nil {
		v.freeChain(dataStart)
		return FileInfo{}, err
	}

	off, err := v.findFreeSlot(entrySize(len(name)))
	if err != nil {
		v.freeChain(dataStart)
		v.freeChain(rsrcStart)
		return FileInfo{}, err
	}

	t := now()
	created, modified := meta.Created, meta.Modified
	if created.IsZero() {
		created = t
	}
	if modified.IsZero() {
		modified = t
	}

	e := &Entry{
		InUse:       true,
		Type:        meta.Type,
		Creator:     meta.Creator,
		FinderFlags: meta.FinderFlags,
		IconV:       meta.IconV,
		IconH:       meta.IconH,
		FolderNum:   meta.FolderNum,
		FileNum:     v.info.NextFileNum,
		Data: ForkInfo{
			StartBlock:      dataStart,
			LogicalLength:   uint32(len(dataFork)),
			AllocatedLength: uint32(len(dataBlocks)) * v.info.AllocBlockSize,
		},
		Rsrc: ForkInfo{
			StartBlock:      rsrcStart,
			LogicalLength:   uint32(len(resourceFork)),
			AllocatedLength: uint32(len(rsrcBlocks)) * v.info.AllocBlockSize,
		},
		Created:  created,
		Modified: modified,
		Name:     name,
		offset:   off,
	}
	v.info.NextFileNum++

	encodeEntry(v.buf, e)
	v.writeForkBlocks(dataBlocks, dataFork)
	v.writeForkBlocks(rsrcBlocks, resourceFork)

	v.info.FileCount++
	v.info.Modified = t
	v.writeback()

	v.dir = append(v.dir, e)

	v.logger.WithFields(logrus.Fields{
		"op": "writeFile", "name": name, "fileNum": e.FileNum,
	}).Debug("wrote file")

	return entryToFileInfo(e), nil
}

// writeForkBlocks copies data across the physical blocks in chain order,
// leaving any unused tail of the final block untouched (spec.md §4.5
// step 8).
func (v *Volume) writeForkBlocks(blocks []uint16, data []byte) {
	remaining := data
	for _, block := range blocks {
		n := len(remaining)
		if n > int(v.info.AllocBlockSize) {
			n = int(v.info.AllocBlockSize)
		}
		off := v.blockOffset(block)
		copy(v.buf[off:off+int64(n)], remaining[:n])
		remaining = remaining[n:]
	}
}

// ReadFile returns forkType's contents for name (spec.md §4.5).
func (v *Volume) ReadFile(name string, forkType ForkType) ([]byte, error) {
	e := v.findEntry(name)
	if e == nil || !e.InUse {
		return nil, mfserr.Wrap(mfserr.ErrNotFound, "no such file %q", name)
	}

	var fork ForkInfo
	switch forkType {
	case DataFork, "":
		fork = e.Data
	case ResourceFork:
		fork = e.Rsrc
	default:
		return nil, mfserr.Wrap(mfserr.ErrInvalidArgument, "unknown fork type %q", forkType)
	}

	if fork.StartBlock == 0 || fork.LogicalLength == 0 {
		return []byte{}, nil
	}

	out := make([]byte, fork.LogicalLength)
	read := uint32(0)
	err := v.readChain(fork.StartBlock, func(block uint16) error {
		if read >= fork.LogicalLength {
			return nil
		}
		n := fork.LogicalLength - read
		if n > v.info.AllocBlockSize {
			n = v.info.AllocBlockSize
		}
		off := v.blockOffset(block)
		copy(out[read:read+n], v.buf[off:off+int64(n)])
		read += n
		return nil
	})
	if err != nil {
		return nil, err
	}
	if read < fork.LogicalLength {
		return nil, mfserr.Wrap(mfserr.ErrCorrupted, "chain for %q ended after %d of %d bytes", name, read, fork.LogicalLength)
	}

	return out, nil
}

// DeleteFile frees both forks' chains, tombstones the directory entry,
// and updates volume counters (spec.md §4.5).
func (v *Volume) DeleteFile(name string) error {
	e := v.findEntry(name)
	if e == nil || !e.InUse {
		return mfserr.Wrap(mfserr.ErrNotFound, "no such file %q", name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.freeChain(e.Data.StartBlock)
	v.freeChain(e.Rsrc.StartBlock)
	v.invalidateEntry(e)

	v.info.FileCount--
	v.info.Modified = now()
	v.writeback()

	for i, it := range v.dir {
		if it == e {
			v.dir = append(v.dir[:i], v.dir[i+1:]...)
			break
		}
	}

	v.logger.WithFields(logrus.Fields{"op": "deleteFile", "name": name}).Debug("deleted file")
	return nil
}

// RenameFile changes name's directory-entry name without touching its
// fork contents or chains. If the new name needs a differently sized
// slot, the entry is re-created under the new name at a fresh slot with
// the same metadata and fork chains re-threaded, rather than copying any
// fork bytes (spec.md §4.1 supplemented feature).
func (v *Volume) RenameFile(oldName, newName string) error {
	if len(newName) > 255 {
		return mfserr.Wrap(mfserr.ErrInvalidArgument, "name %q exceeds 255 bytes", newName)
	}
	e := v.findEntry(oldName)
	if e == nil || !e.InUse {
		return mfserr.Wrap(mfserr.ErrNotFound, "no such file %q", oldName)
	}
	if other := v.findEntry(newName); other != nil && other.InUse {
		return mfserr.Wrap(mfserr.ErrInvalidArgument, "a file named %q already exists", newName)
	}

	oldSize := entrySize(len(e.Name))
	newSize := entrySize(len(newName))

	if newSize == oldSize {
		e.Name = newName
		encodeEntry(v.buf, e)
		return nil
	}

	v.invalidateEntry(e)
	for i, it := range v.dir {
		if it == e {
			v.dir = append(v.dir[:i], v.dir[i+1:]...)
			break
		}
	}

	off, err := v.findFreeSlot(newSize)
	if err != nil {
		// restore the original entry rather than losing it.
		e.InUse = true
		encodeEntry(v.buf, e)
		v.dir = append(v.dir, e)
		return err
	}

	moved := &Entry{
		InUse:       true,
		Type:        e.Type,
		Creator:     e.Creator,
		FinderFlags: e.FinderFlags,
		IconV:       e.IconV,
		IconH:       e.IconH,
		FolderNum:   e.FolderNum,
		FileNum:     e.FileNum,
		Data:        e.Data,
		Rsrc:        e.Rsrc,
		Created:     e.Created,
		Modified:    now(),
		Name:        newName,
		offset:      off,
	}
	encodeEntry(v.buf, moved)
	v.dir = append(v.dir, moved)
	v.writeback()
	return nil
}

// SetFileMetadata updates Finder-visible fields of name in place without
// touching its forks (spec.md §4.1 supplemented feature).
func (v *Volume) SetFileMetadata(name string, patch MetaPatch) error {
	e := v.findEntry(name)
	if e == nil || !e.InUse {
		return mfserr.Wrap(mfserr.ErrNotFound, "no such file %q", name)
	}

	if patch.FinderFlags != nil {
		e.FinderFlags = *patch.FinderFlags
	}
	if patch.IconV != nil {
		e.IconV = *patch.IconV
	}
	if patch.IconH != nil {
		e.IconH = *patch.IconH
	}
	if patch.FolderNum != nil {
		e.FolderNum = *patch.FolderNum
	}
	e.Modified = now()
	encodeEntry(v.buf, e)
	return nil
}
