package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildFileRecordsRejectsEmptyList(t *testing.T) {
	_, err := BuildFileRecords(nil, 16*1024)
	require.Error(t, err)
}

func TestBuildFileRecordsRejectsMismatchedRoot(t *testing.T) {
	files := []InputFile{
		{Components: []string{"root-a", "x.bin"}, Length: 10, Path: "/a/x.bin"},
		{Components: []string{"root-b", "y.bin"}, Length: 10, Path: "/a/y.bin"},
	}
	_, err := BuildFileRecords(files, 16*1024)
	require.Error(t, err)
}

func TestBuildFileRecordsRejectsEmptyComponent(t *testing.T) {
	files := []InputFile{
		{Components: []string{"root", ""}, Length: 10, Path: "/a/x.bin"},
	}
	_, err := BuildFileRecords(files, 16*1024)
	require.Error(t, err)
}

func TestBuildFileRecordsAllocatesBuffersAndMarksLastDataFile(t *testing.T) {
	pieceSize := int64(16 * 1024)
	files := []InputFile{
		{Components: []string{"root", "a.bin"}, Length: 0, Path: "/r/a.bin"}, // empty file
		{Components: []string{"root", "b.bin"}, Length: pieceSize*2 + 100, Path: "/r/b.bin"},
		{Components: []string{"root", "c.bin"}, Length: pieceSize, Path: "/r/c.bin"},
	}
	records, err := BuildFileRecords(files, pieceSize)
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, int64(0), records[0].MerklePieceCount)
	require.Nil(t, records[0].MerkleLeaves)
	require.False(t, records[0].IsLastDataFile)

	require.Equal(t, int64(3), records[1].V1PieceCount) // 2 full + 100-byte tail
	require.Equal(t, int64(3), records[1].MerklePieceCount)
	require.Len(t, records[1].V1Hashes, 3*20)
	require.Len(t, records[1].MerkleLeaves, 3*32)
	require.Equal(t, pieceSize-100, records[1].Padding)
	require.False(t, records[1].IsLastDataFile)

	require.Equal(t, int64(1), records[2].V1PieceCount)
	require.True(t, records[2].IsLastDataFile)
	require.Equal(t, int64(0), records[2].Padding) // last data file never pads
}
