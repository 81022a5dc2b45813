package hasher

import (
	"crypto/sha1"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/torrentgen/torrentgen/internal/meta"
)

func writeTempFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// buildRecordsAndJobs is a small harness mirroring the first steps of
// internal/pipeline.Build (config validation, file records, job planning)
// without the hashing, Merkle completion and assembly steps.
func buildRecordsAndJobs(t *testing.T, pieceSize int64, files []meta.InputFile) ([]*meta.FileRecord, []meta.HashJob) {
	t.Helper()
	records, err := meta.BuildFileRecords(files, pieceSize)
	require.NoError(t, err)

	cfg := &meta.Config{PieceSize: pieceSize, EmitV1: true, EmitV2: true, EmitPadding: true, Threads: 1, Announces: [][]string{{"udp://t"}}}
	require.NoError(t, cfg.Validate(0))

	jobs, err := meta.PlanJobs(records, cfg)
	require.NoError(t, err)
	return records, jobs
}

func TestRunProducesCorrectV1PieceHashes(t *testing.T) {
	dir := t.TempDir()
	pieceSize := int64(16 * 1024) // == MerklePieceSize, so 1 v1 piece == 1 merkle leaf
	data := make([]byte, pieceSize+500)
	for i := range data {
		data[i] = byte(i)
	}
	// the final (tail) piece would zero-fill here, so make this NOT the
	// last data file in the record set: follow it with a later, truly
	// last, data file.
	dir2 := t.TempDir()
	lastPath := writeTempFile(t, dir2, "last.bin", []byte{1, 2, 3})
	path := writeTempFile(t, dir, "f.bin", data)

	records, jobs := buildRecordsAndJobs(t, pieceSize, []meta.InputFile{
		{Components: []string{"root", "f.bin"}, Length: int64(len(data)), Path: path},
		{Components: []string{"root", "last.bin"}, Length: 3, Path: lastPath},
	})

	require.NoError(t, Run(jobs, 1, nil))

	expectPiece0 := sha1.Sum(data[:pieceSize])
	require.Equal(t, expectPiece0[:], records[0].V1Hashes[:20])

	tail := data[pieceSize:]
	padded := append(append([]byte{}, tail...), make([]byte, pieceSize-int64(len(tail)))...)
	expectPiece1 := sha1.Sum(padded)
	require.Equal(t, expectPiece1[:], records[0].V1Hashes[20:40])
}

func TestRunDoesNotZeroFillFinalPieceOfLastDataFile(t *testing.T) {
	dir := t.TempDir()
	pieceSize := int64(16 * 1024)
	data := make([]byte, pieceSize+100)
	for i := range data {
		data[i] = byte(i * 3)
	}
	path := writeTempFile(t, dir, "only.bin", data)

	records, jobs := buildRecordsAndJobs(t, pieceSize, []meta.InputFile{
		{Components: []string{"root", "only.bin"}, Length: int64(len(data)), Path: path},
	})
	require.NoError(t, Run(jobs, 1, nil))

	tail := data[pieceSize:]
	expectLast := sha1.Sum(tail) // real bytes only, no zero-fill
	require.Equal(t, expectLast[:], records[0].V1Hashes[20:40])
}

func TestRunIsDeterministicAcrossThreadCounts(t *testing.T) {
	dir := t.TempDir()
	pieceSize := int64(16 * 1024)
	data := make([]byte, pieceSize*6+777)
	for i := range data {
		data[i] = byte(i * 7)
	}
	path := writeTempFile(t, dir, "big.bin", data)
	input := []meta.InputFile{{Components: []string{"root", "big.bin"}, Length: int64(len(data)), Path: path}}

	records1, jobs1 := buildRecordsAndJobs(t, pieceSize, input)
	require.NoError(t, Run(jobs1, 1, nil))

	records4, jobs4 := buildRecordsAndJobs(t, pieceSize, input)
	require.NoError(t, Run(jobs4, 4, nil))

	require.Equal(t, records1[0].V1Hashes, records4[0].V1Hashes)
	require.Equal(t, records1[0].MerkleLeaves, records4[0].MerkleLeaves)
}

func TestCompleteMerkleTreesSingleLeafRootIsLeaf(t *testing.T) {
	rec := &meta.FileRecord{
		Length:           100,
		MerklePieceCount: 1,
		MerkleLeaves:     make([]byte, 32),
	}
	rec.MerkleTree = [][]byte{rec.MerkleLeaves}
	leaf := sha256.Sum256([]byte("leaf"))
	copy(rec.MerkleLeaves, leaf[:])

	require.NoError(t, CompleteMerkleTrees([]*meta.FileRecord{rec}))
	require.Len(t, rec.MerkleTree, 1)
	require.Equal(t, leaf[:], rec.MerkleTree[0])
}

func TestCompleteMerkleTreesPadsOddTailWithFillers(t *testing.T) {
	z := Fillers()
	l0, l1, l2 := sha256.Sum256([]byte("a")), sha256.Sum256([]byte("b")), sha256.Sum256([]byte("c"))
	leaves := append(append(append([]byte{}, l0[:]...), l1[:]...), l2[:]...)

	rec := &meta.FileRecord{
		Length:           1,
		MerklePieceCount: 3,
		MerkleLeaves:     leaves,
	}
	rec.MerkleTree = [][]byte{rec.MerkleLeaves}

	require.NoError(t, CompleteMerkleTrees([]*meta.FileRecord{rec}))

	top := rec.MerkleTree[len(rec.MerkleTree)-1]
	require.Len(t, top, 32)

	h01 := sha256.New()
	h01.Write(l0[:])
	h01.Write(l1[:])
	level1Pair := h01.Sum(nil)

	h2 := sha256.New()
	h2.Write(l2[:])
	h2.Write(z[0])
	level1Odd := h2.Sum(nil)

	hTop := sha256.New()
	hTop.Write(level1Pair)
	hTop.Write(level1Odd)
	expectTop := hTop.Sum(nil)

	require.Equal(t, expectTop, top)
}
