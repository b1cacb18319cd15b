package archive

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtpa-audio/wtpa2/pkg/common"
	"github.com/wtpa-audio/wtpa2/pkg/sample"
)

// writeRawArchive builds an archive by hand so extraction can be tested
// against exact bytes, including broken ones.
func writeRawArchive(t *testing.T, path string, header []byte, slots map[int][]byte) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Write(header)
	require.NoError(t, err)

	for slot, frames := range slots {
		off, err := SlotOffset(slot)
		require.NoError(t, err)
		_, err = f.Seek(off, io.SeekStart)
		require.NoError(t, err)

		var prefix [FrameCountLen]byte
		binary.BigEndian.PutUint32(prefix[:], uint32(len(frames)))
		_, err = f.Write(prefix[:])
		require.NoError(t, err)
		_, err = f.Write(frames)
		require.NoError(t, err)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestExtractSparseSlots(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "card.img")
	outDir := t.TempDir()

	header := NewHeader()
	bitmap := header[TOCOffset : TOCOffset+BitmapLen]
	MarkSlot(bitmap, 0)
	MarkSlot(bitmap, 9)
	MarkSlot(bitmap, 511)

	writeRawArchive(t, archivePath, header, map[int][]byte{
		0:   {1, 2, 3},
		9:   {4, 5},
		511: {6},
	})

	a := NewArchiver()
	n, err := a.Extract(ExtractOptions{SourcePath: archivePath, OutputPath: outDir})
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, 3, countFiles(t, outDir))

	s, err := sample.Decode(filepath.Join(outDir, "009.aiff"))
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, s.Frames)

	s, err = sample.Decode(filepath.Join(outDir, "511.aiff"))
	require.NoError(t, err)
	assert.Equal(t, []byte{6}, s.Frames)
}

func TestExtractSlotLimit(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "card.img")
	outDir := t.TempDir()

	header := NewHeader()
	bitmap := header[TOCOffset : TOCOffset+BitmapLen]
	MarkSlot(bitmap, 0)
	MarkSlot(bitmap, 1)
	MarkSlot(bitmap, 2)

	writeRawArchive(t, archivePath, header, map[int][]byte{
		0: {1}, 1: {2}, 2: {3},
	})

	a := NewArchiver()
	n, err := a.Extract(ExtractOptions{SourcePath: archivePath, OutputPath: outDir, MaxSlots: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, countFiles(t, outDir))
}

func TestExtractRefusesBadMagic(t *testing.T) {
	outDir := t.TempDir()
	a := NewArchiver()

	garbage := filepath.Join(t.TempDir(), "garbage.img")
	require.NoError(t, os.WriteFile(garbage, make([]byte, HeaderLen), 0644))

	_, err := a.Extract(ExtractOptions{SourcePath: garbage, OutputPath: outDir})
	assert.ErrorIs(t, err, common.ErrNoArchiveData)

	wrongKind := filepath.Join(t.TempDir(), "wrongkind.img")
	header := make([]byte, HeaderLen)
	copy(header, "WTPADATA")
	require.NoError(t, os.WriteFile(wrongKind, header, 0644))

	_, err = a.Extract(ExtractOptions{SourcePath: wrongKind, OutputPath: outDir})
	assert.ErrorIs(t, err, common.ErrNoSampleData)

	// Nothing was written on either refusal.
	assert.Zero(t, countFiles(t, outDir))
}

func TestExtractRefusesCorruptSlotLength(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "card.img")
	outDir := t.TempDir()

	header := NewHeader()
	MarkSlot(header[TOCOffset:TOCOffset+BitmapLen], 0)

	f, err := os.Create(archivePath)
	require.NoError(t, err)
	_, err = f.Write(header)
	require.NoError(t, err)
	var prefix [FrameCountLen]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(SlotLen)) // cannot fit a slot
	_, err = f.Write(prefix[:])
	require.NoError(t, err)
	require.NoError(t, f.Close())

	a := NewArchiver()
	n, err := a.Extract(ExtractOptions{SourcePath: archivePath, OutputPath: outDir})
	assert.ErrorIs(t, err, common.ErrCorruptSlot)
	assert.Zero(t, n)
	assert.Zero(t, countFiles(t, outDir))
}

func TestExtractSourceChecks(t *testing.T) {
	a := NewArchiver()
	outDir := t.TempDir()

	_, err := a.Extract(ExtractOptions{
		SourcePath: filepath.Join(t.TempDir(), "nope.img"),
		OutputPath: outDir,
	})
	assert.ErrorIs(t, err, common.ErrSourceNotFound)

	// A plain directory is not a device to read from.
	_, err = a.Extract(ExtractOptions{SourcePath: t.TempDir(), OutputPath: outDir})
	assert.ErrorIs(t, err, common.ErrNotADevice)

	assert.Zero(t, countFiles(t, outDir))
}

func TestExtractDestinationChecks(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "card.img")
	writeRawArchive(t, archivePath, NewHeader(), nil)

	a := NewArchiver()

	// Destination exists but is a file.
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))
	_, err := a.Extract(ExtractOptions{SourcePath: archivePath, OutputPath: blocked})
	assert.ErrorIs(t, err, common.ErrNotADirectory)

	// Missing destination trees are created.
	nested := filepath.Join(t.TempDir(), "a", "b", "c")
	n, err := a.Extract(ExtractOptions{SourcePath: archivePath, OutputPath: nested})
	require.NoError(t, err)
	assert.Zero(t, n)
	fi, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
}
