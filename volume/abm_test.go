package volume

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocateChainExactCapacity(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	total := int(v.VolumeInfo().NumAllocBlocks)
	start, blocks, err := v.allocateChain(total)
	require.NoError(t, err)
	require.Len(t, blocks, total)
	require.Equal(t, blocks[0], start)
	require.Equal(t, uint16(0), v.VolumeInfo().FreeBlocks)

	_, _, err = v.allocateChain(1)
	require.Error(t, err)
}

func TestAllocateChainZeroLength(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	start, blocks, err := v.allocateChain(0)
	require.NoError(t, err)
	require.Equal(t, uint16(0), start)
	require.Nil(t, blocks)
	require.Equal(t, v.VolumeInfo().NumAllocBlocks, v.VolumeInfo().FreeBlocks)
}

func TestAllocateChainLinksAscendingFirstFit(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	_, blocks, err := v.allocateChain(3)
	require.NoError(t, err)
	require.Equal(t, []uint16{2, 3, 4}, blocks)

	for i := 0; i < 2; i++ {
		link, err := v.getABMEntry(blocks[i])
		require.NoError(t, err)
		require.Equal(t, blocks[i+1], link)
	}
	last, err := v.getABMEntry(blocks[2])
	require.NoError(t, err)
	require.Equal(t, uint16(abmEOC), last)
}

func TestFreeChainRestoresBlocks(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	start, blocks, err := v.allocateChain(4)
	require.NoError(t, err)

	n := v.freeChain(start)
	require.Equal(t, 4, n)
	require.Equal(t, v.VolumeInfo().NumAllocBlocks, v.VolumeInfo().FreeBlocks)

	for _, b := range blocks {
		val, err := v.getABMEntry(b)
		require.NoError(t, err)
		require.Equal(t, uint16(abmFree), val)
	}
}

func TestFreeChainZeroStartIsNoop(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	require.Equal(t, 0, v.freeChain(0))
}

func TestFreeChainDetectsCycle(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	v.setABMEntry(2, 3)
	v.setABMEntry(3, 2)

	n := v.freeChain(2)
	require.LessOrEqual(t, n, 2)
	require.NotEmpty(t, v.diagnostics)
}

func TestReadChainDetectsBadLink(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	v.setABMEntry(2, abmFree)

	err = v.readChain(2, func(block uint16) error { return nil })
	require.Error(t, err)
}

func TestGetSetABMEntryRangeChecks(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	_, err = v.getABMEntry(1)
	require.Error(t, err)

	_, err = v.getABMEntry(v.VolumeInfo().NumAllocBlocks + 2)
	require.Error(t, err)

	v.setABMEntry(2, abmEOC)
	val, err := v.getABMEntry(2)
	require.NoError(t, err)
	require.Equal(t, uint16(abmEOC), val)
}
