package meta

// InputFile is the tuple the external walker hands to the core: ordered
// path components (first segment is the torrent root name), the file's
// byte length, and an opaque path used only to open the file later.
type InputFile struct {
	Components []string
	Length     int64
	Path       string
}

// FileRecord is the per-file mutable hash-output record described in
// spec.md §3. It is constructed once by BuildFileRecords and thereafter
// mutated only by the jobs the planner assigns disjoint slices of its
// buffers to.
type FileRecord struct {
	Path       string
	Components []string
	Length     int64

	MerklePieceCount int64
	V1PieceCount     int64

	// MerkleLeaves is exactly MerklePieceCount*32 bytes, filled by workers.
	MerkleLeaves []byte
	// MerkleTree holds layer 0 (MerkleLeaves) plus every layer Merkle
	// completion (C6) appends above it; the last layer is 32 bytes, the
	// file's pieces-root.
	MerkleTree [][]byte

	// V1Hashes is exactly V1PieceCount*20 bytes, filled by workers.
	V1Hashes []byte

	Padding        int64
	IsLastDataFile bool
}

// BuildFileRecords validates an ordered file list and allocates the
// per-file hash buffers for it, per spec.md §4.2. files must already be
// sorted by the lexicographic byte order of their component sequences;
// BuildFileRecords does not re-sort.
func BuildFileRecords(files []InputFile, pieceSize int64) ([]*FileRecord, error) {
	if len(files) == 0 {
		return nil, configErr("input file list is empty")
	}

	name := ""
	for _, f := range files {
		if len(f.Components) == 0 {
			return nil, configErr("file %q has no path components", f.Path)
		}
		for _, c := range f.Components {
			if c == "" {
				return nil, configErr("file %q has an empty path component", f.Path)
			}
		}
		if name == "" {
			name = f.Components[0]
		} else if f.Components[0] != name {
			return nil, configErr("file %q does not share torrent root %q", f.Path, name)
		}
	}

	records := make([]*FileRecord, len(files))
	lastDataIdx := -1
	for i, f := range files {
		r := &FileRecord{
			Path:       f.Path,
			Components: f.Components,
			Length:     f.Length,
		}
		if f.Length > 0 {
			r.MerklePieceCount = ceilDiv(f.Length, MerklePieceSize)
			r.V1PieceCount = ceilDiv(f.Length, pieceSize)
			r.MerkleLeaves = make([]byte, r.MerklePieceCount*32)
			r.MerkleTree = [][]byte{r.MerkleLeaves}
			r.V1Hashes = make([]byte, r.V1PieceCount*20)
			if f.Length%pieceSize != 0 {
				r.Padding = pieceSize - f.Length%pieceSize
			}
			lastDataIdx = i
		}
		records[i] = r
	}

	if lastDataIdx >= 0 {
		records[lastDataIdx].IsLastDataFile = true
		records[lastDataIdx].Padding = 0
	}

	return records, nil
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a-1)/b + 1
}
