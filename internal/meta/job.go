package meta

// HashJob is a unit of work over a contiguous byte range of one file. Jobs
// are immutable apart from the hash buffers they reference: the planner
// hands out disjoint subslices of the owning FileRecord's V1Hashes and
// MerkleLeaves so workers never need to coordinate (spec.md §3 Invariants).
type HashJob struct {
	File   string // path of the file to mmap
	Offset int64  // byte offset into file, multiple of piece size
	DataLen int64 // actual bytes of real data in this job

	V1Pieces     int64
	V1PieceSize  int64
	V1HashSlice  []byte // exactly V1Pieces*20 bytes

	// V1LastHashZeroFill: when true, this job's final (possibly short) v1
	// piece must be zero-padded before finalization; false only for the
	// last job of the last data-bearing file, where the final v1 hash
	// covers real bytes only.
	V1LastHashZeroFill bool

	V2Pieces    int64
	V2HashSlice []byte // exactly V2Pieces*32 bytes
}
