// Package hasher implements the parallel hash worker (spec.md §4.5) and
// Merkle-tree completion (spec.md §4.6): it consumes the HashJobs an
// internal/meta.Config/PlanJobs produced and fills in every file's
// V1Hashes and MerkleLeaves buffers, then builds the upper Merkle layers
// above each file's leaf layer.
package hasher

import (
	"crypto/sha1"
	"crypto/sha256"
	"os"
	"sync"
	"sync/atomic"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/torrentgen/torrentgen/internal/meta"
	"github.com/torrentgen/torrentgen/internal/progress"
)

const merkleLeafSize = meta.MerklePieceSize

// maxZeroFill bounds the size of the shared read-only zero buffer used to
// pad a short final v1 piece; it must be at least as large as the widest
// legal piece size (2 MiB, spec.md §3).
const maxZeroFill = 2 * 1024 * 1024

var zeroBuf = make([]byte, maxZeroFill)

// Run drains jobs across a fixed pool of threads worker goroutines. Each
// worker memory-maps its job's file read-only, walks the job's byte range
// in 16 KiB chunks, and writes SHA-1/SHA-256 digests into the job's
// pre-assigned disjoint buffer slices — no locking is required between
// workers because the planner handed out non-overlapping slices (spec.md
// §4.5, §5). Any worker error aborts the whole hash phase and Run returns
// the first one observed; sink is optional progress reporting, see
// internal/progress.
func Run(jobs []meta.HashJob, threads uint32, sink progress.Sink) error {
	if sink == nil {
		sink = progress.NoOp{}
	}
	if len(jobs) == 0 {
		return nil
	}
	if threads == 0 {
		threads = 1
	}

	byteCh := make(chan uint64, 4*int(threads))
	reporterDone := make(chan struct{})
	go func() {
		defer close(reporterDone)
		for n := range byteCh {
			sink.Report(n)
		}
	}()

	var nextJob int64 = -1
	var firstErr atomic.Value
	var errOnce sync.Once

	var wg sync.WaitGroup
	for i := uint32(0); i < threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if firstErr.Load() != nil {
					return
				}
				idx := atomic.AddInt64(&nextJob, 1)
				if idx >= int64(len(jobs)) {
					return
				}
				if err := hashJob(jobs[idx], byteCh); err != nil {
					errOnce.Do(func() { firstErr.Store(err) })
					return
				}
			}
		}()
	}
	wg.Wait()
	close(byteCh)
	<-reporterDone

	if v := firstErr.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// hashJob computes the v1 SHA-1 piece stream and v2 SHA-256 leaf layer for
// one job's byte range, per spec.md §4.5.
func hashJob(job meta.HashJob, byteCh chan<- uint64) error {
	f, err := os.Open(job.File)
	if err != nil {
		return meta.IoError(job.File, err)
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return meta.IoError(job.File, err)
	}
	defer data.Unmap()

	pieceFactor := job.V1PieceSize / merkleLeafSize
	hashRbound := job.Offset + job.V1Pieces*job.V1PieceSize
	dataRbound := job.Offset + job.DataLen

	v1 := sha1.New()
	v2 := sha256.New()
	var finishedV1, finishedV2 int64

	cursor := job.Offset
	for cursor < dataRbound {
		n := merkleLeafSize
		if cursor+n > dataRbound {
			n = dataRbound - cursor
		}
		chunk := data[cursor : cursor+n]
		v1.Write(chunk)
		v2.Write(chunk)
		select {
		case byteCh <- uint64(n):
		default:
		}
		cursor += n

		if n == merkleLeafSize {
			l, r := finishedV2*32, (finishedV2+1)*32
			copy(job.V2HashSlice[l:r], v2.Sum(nil))
			v2.Reset()
			finishedV2++

			if finishedV2%pieceFactor == 0 {
				l, r := finishedV1*20, (finishedV1+1)*20
				copy(job.V1HashSlice[l:r], v1.Sum(nil))
				v1.Reset()
				finishedV1++
			}
		}
	}
	if cursor > hashRbound {
		return meta.InvariantError("hash cursor %d overran v1 bound %d for %q", cursor, hashRbound, job.File)
	}

	if (cursor-job.Offset)%merkleLeafSize != 0 {
		l, r := finishedV2*32, (finishedV2+1)*32
		copy(job.V2HashSlice[l:r], v2.Sum(nil))
		v2.Reset()
		finishedV2++
	}

	if finishedV1 < job.V1Pieces {
		if job.V1LastHashZeroFill {
			remaining := hashRbound - cursor
			for remaining > 0 {
				n := int64(len(zeroBuf))
				if n > remaining {
					n = remaining
				}
				v1.Write(zeroBuf[:n])
				remaining -= n
			}
		}
		l, r := finishedV1*20, (finishedV1+1)*20
		copy(job.V1HashSlice[l:r], v1.Sum(nil))
		finishedV1++
	}

	if finishedV1 != job.V1Pieces || finishedV2 != job.V2Pieces {
		return meta.InvariantError(
			"job for %q produced %d/%d v1 pieces and %d/%d v2 pieces",
			job.File, finishedV1, job.V1Pieces, finishedV2, job.V2Pieces,
		)
	}
	return nil
}
