package volume

import (
	"macfs/mfserr"
)

const (
	abmFree     = 0x000
	abmEOC      = 0x001
	abmDirOverf = 0xFFF
	abmMinLink  = 0x002
)

// getABMEntry implements spec.md §4.3 "_getABMEntry": requires
// 2 <= blockNum <= drNmAlBlks+1.
func (v *Volume) getABMEntry(blockNum uint16) (uint16, error) {
	if blockNum < 2 || blockNum > v.info.NumAllocBlocks+1 {
		return 0, mfserr.Wrap(mfserr.ErrInvalidArgument, "block number %d out of range", blockNum)
	}
	return v.abm[blockNum-2], nil
}

func (v *Volume) setABMEntry(blockNum uint16, val uint16) {
	v.abm[blockNum-2] = val
}

// allocateChain allocates n consecutive-in-ABM-order free blocks, links
// them into a chain terminated by abmEOC, and decrements drFreeBks.
// n == 0 returns a null start block and no mutation (spec.md §4.3).
func (v *Volume) allocateChain(n int) (uint16, []uint16, error) {
	if n == 0 {
		return 0, nil, nil
	}
	if n > int(v.info.FreeBlocks) {
		return 0, nil, mfserr.Wrap(mfserr.ErrDiskFull, "need %d blocks, only %d free", n, v.info.FreeBlocks)
	}

	blocks := make([]uint16, 0, n)
	for i := 0; i < len(v.abm) && len(blocks) < n; i++ {
		if v.abm[i] == abmFree {
			blocks = append(blocks, uint16(i+2))
		}
	}
	if len(blocks) < n {
		return 0, nil, mfserr.Wrap(mfserr.ErrDiskFull, "need %d blocks, only %d free", n, len(blocks))
	}

	for i := 0; i < len(blocks)-1; i++ {
		v.setABMEntry(blocks[i], blocks[i+1])
	}
	v.setABMEntry(blocks[len(blocks)-1], abmEOC)
	v.info.FreeBlocks -= uint16(n)

	v.logger.WithFields(map[string]interface{}{
		"op": "allocateChain", "start": blocks[0], "count": n,
	}).Debug("allocated block chain")

	return blocks[0], blocks, nil
}

// freeChain walks the chain starting at startBlock, clearing every entry
// to abmFree and incrementing drFreeBks, per spec.md §4.3. A cyclic or
// otherwise corrupt chain stops the walk, records a Diagnostic, and
// returns the count of blocks freed before the problem was detected; it
// is never a hard error.
func (v *Volume) freeChain(startBlock uint16) int {
	if startBlock == 0 {
		return 0
	}

	visited := make(map[uint16]bool)
	freed := 0
	current := startBlock

	for i := 0; i <= len(v.abm); i++ {
		if visited[current] {
			v.warn("freeChain", current, "cycle detected, chain walk aborted")
			return freed
		}
		visited[current] = true

		if current < abmMinLink || current > v.info.NumAllocBlocks+1 {
			v.warn("freeChain", current, "block number out of range, chain walk aborted")
			return freed
		}

		next := v.abm[current-2]
		if next == abmFree {
			v.warn("freeChain", current, "encountered free block mid-chain, chain walk aborted")
			return freed
		}

		v.setABMEntry(current, abmFree)
		v.info.FreeBlocks++
		freed++

		if next == abmEOC {
			return freed
		}
		current = next
	}

	v.warn("freeChain", current, "chain did not terminate within drNmAlBlks iterations, aborted")
	return freed
}

// readChain walks the chain starting at startBlock, invoking fn with each
// block number in order. It stops at abmEOC and fails ErrCorrupted on any
// inconsistency (spec.md §4.5 readFile).
func (v *Volume) readChain(startBlock uint16, fn func(block uint16) error) error {
	if startBlock == 0 {
		return nil
	}

	current := startBlock
	for i := 0; i <= len(v.abm); i++ {
		if current < abmMinLink || current > v.info.NumAllocBlocks+1 {
			return mfserr.Wrap(mfserr.ErrCorrupted, "chain references out-of-range block %d", current)
		}
		if err := fn(current); err != nil {
			return err
		}

		next := v.abm[current-2]
		if next == abmEOC {
			return nil
		}
		if next == abmFree || next == abmDirOverf {
			return mfserr.Wrap(mfserr.ErrCorrupted, "chain at block %d hit invalid link %#x", current, next)
		}
		current = next
	}

	return mfserr.Wrap(mfserr.ErrCorrupted, "chain did not terminate within drNmAlBlks iterations")
}

func (v *Volume) warn(op string, block uint16, detail string) {
	v.diagnostics = append(v.diagnostics, Diagnostic{
		Op: op, Block: block, Detail: detail, Time: now(),
	})
	v.logger.WithFields(map[string]interface{}{
		"op": op, "block": block,
	}).Warn(detail)
}
