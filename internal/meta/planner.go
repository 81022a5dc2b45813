package meta

// maxJobBytes bounds how much of one file a single HashJob covers, so that
// very large files still get spread across the worker pool (spec.md §4.4).
const maxJobBytes int64 = 1 << 30 // 1 GiB

// PlanJobs partitions every file with Length > 0 into HashJobs whose
// V1HashSlice/V2HashSlice are disjoint front-slices of that file's
// V1Hashes/MerkleLeaves buffers, per spec.md §4.4. The returned order is
// stable (file order, then job order within a file) purely for
// reproducibility; correctness never depends on it.
func PlanJobs(records []*FileRecord, cfg *Config) ([]HashJob, error) {
	var jobs []HashJob
	for _, rec := range records {
		if rec.Length <= 0 {
			continue
		}

		numJobs := ceilDiv(rec.Length, maxJobBytes)
		if numJobs <= 0 {
			numJobs = 1
		}

		jobPieces := distributePieces(rec.V1PieceCount, numJobs)

		v1Remaining := rec.V1Hashes
		v2Remaining := rec.MerkleLeaves
		leftMerkleLeaves := rec.MerklePieceCount
		pieceOffset := int64(0)

		for idx, thisV1Pieces := range jobPieces {
			if thisV1Pieces <= 0 {
				continue
			}
			if leftMerkleLeaves <= 0 {
				return nil, invariantErr("job planner ran out of merkle leaves for %q", rec.Path)
			}

			thisV2Pieces := thisV1Pieces * cfg.PieceFactor()
			if thisV2Pieces > leftMerkleLeaves {
				thisV2Pieces = leftMerkleLeaves
			}

			right := (pieceOffset + thisV1Pieces) * cfg.PieceSize
			if right > rec.Length {
				right = rec.Length
			}
			offset := pieceOffset * cfg.PieceSize
			dataLen := right - offset

			v1Size := thisV1Pieces * 20
			if int64(len(v1Remaining)) < v1Size {
				return nil, invariantErr("v1 hash buffer underflow for %q", rec.Path)
			}
			thisV1Hash := v1Remaining[:v1Size]
			v1Remaining = v1Remaining[v1Size:]

			v2Size := thisV2Pieces * 32
			if int64(len(v2Remaining)) < v2Size {
				return nil, invariantErr("merkle leaf buffer underflow for %q", rec.Path)
			}
			thisV2Hash := v2Remaining[:v2Size]
			v2Remaining = v2Remaining[v2Size:]

			lastJobOfFile := idx == len(jobPieces)-1
			jobs = append(jobs, HashJob{
				File:               rec.Path,
				Offset:             offset,
				DataLen:            dataLen,
				V1Pieces:           thisV1Pieces,
				V1PieceSize:        cfg.PieceSize,
				V1HashSlice:        thisV1Hash,
				V1LastHashZeroFill: !(lastJobOfFile && rec.IsLastDataFile),
				V2Pieces:           thisV2Pieces,
				V2HashSlice:        thisV2Hash,
			})

			pieceOffset += thisV1Pieces
			leftMerkleLeaves -= thisV2Pieces
		}
	}
	return jobs, nil
}

// distributePieces splits total pieces across numJobs as evenly as
// possible: the first (total mod numJobs) jobs get ceil(total/numJobs)
// pieces, the rest get floor(total/numJobs).
func distributePieces(total, numJobs int64) []int64 {
	if numJobs <= 0 {
		return nil
	}
	base := total / numJobs
	extra := total % numJobs
	out := make([]int64, numJobs)
	for i := int64(0); i < numJobs; i++ {
		if i < extra {
			out[i] = base + 1
		} else {
			out[i] = base
		}
	}
	return out
}
