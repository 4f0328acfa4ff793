package volume

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEntrySizeIsEvenAndIncludesHeader(t *testing.T) {
	require.Equal(t, entryHeaderSize+1+4, entrySize(3))
	require.Equal(t, entryHeaderSize+1+4, entrySize(4))
	require.Equal(t, 0, entrySize(3)%2)
	require.Equal(t, 0, entrySize(4)%2)
}

func TestPadStringPadsWithQuestionMarks(t *testing.T) {
	require.Equal(t, []byte("TE??"), padString("TE", 4))
	require.Equal(t, []byte("TEXT"), padString("TEXT", 4))
}

func TestFindEntryUsesRawByteEquality(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	_, err = v.WriteFile("Caf\xe9", []byte("x"), nil, textMeta())
	require.NoError(t, err)

	require.NotNil(t, v.findEntry("Caf\xe9"))
	require.Nil(t, v.findEntry("Cafe"))
}

// TestScanDirectoryTerminatesPerSector exercises the resolved open
// question via a full write/serialise/parse cycle: an entry written
// near the end of one directory sector must not prevent entries in the
// following sector from being recovered on Parse.
func TestScanDirectoryTerminatesPerSector(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	names := make([]string, 0)
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("File%02d", i)
		_, err := v.WriteFile(name, []byte("x"), nil, textMeta())
		require.NoError(t, err)
		names = append(names, name)
	}

	buf := v.GetDiskImage()
	v2, err := Parse(buf, Options{})
	require.NoError(t, err)

	require.Len(t, v2.ListFiles(), len(names))
	for _, name := range names {
		_, err := v2.GetFileInfo(name)
		require.NoError(t, err)
	}
}

func TestFindFreeSlotFailsWhenDirectoryFull(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	dirBytes := int(v.VolumeInfo().DirLength) * SectorSize
	perEntry := entrySize(7) // "FileNNN"
	maxEntries := dirBytes / perEntry

	var lastErr error
	written := 0
	for i := 0; i < maxEntries+5; i++ {
		name := fmt.Sprintf("File%03d", i)
		_, err := v.WriteFile(name, nil, nil, textMeta())
		if err != nil {
			lastErr = err
			break
		}
		written++
	}

	require.Error(t, lastErr)
	require.Greater(t, written, 0)
}

func TestInvalidateEntryClearsOnlyFlagBit(t *testing.T) {
	v, err := Format(Options{SizeKB: 400})
	require.NoError(t, err)

	_, err = v.WriteFile("A", []byte("x"), nil, textMeta())
	require.NoError(t, err)

	e := v.findEntry("A")
	require.NotNil(t, e)
	nameBefore := e.Name
	typeBefore := e.Type

	v.invalidateEntry(e)

	require.False(t, e.InUse)
	require.Equal(t, nameBefore, e.Name)
	require.Equal(t, typeBefore, e.Type)
	require.Equal(t, byte(0), v.buf[e.offset]&flagInUse)
}
