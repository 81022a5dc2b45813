// Package pipeline wires the components spec.md §4 describes separately
// (file records, job planning, hashing, Merkle completion, assembly) into
// the single build call every caller — the CLI, watch mode, and tests —
// should use.
package pipeline

import (
	"crypto/sha1"

	"github.com/torrentgen/torrentgen/internal/bencode"
	"github.com/torrentgen/torrentgen/internal/hasher"
	"github.com/torrentgen/torrentgen/internal/meta"
	"github.com/torrentgen/torrentgen/internal/progress"
)

// Result is the output of a completed build.
type Result struct {
	Torrent  []byte
	InfoHash [20]byte // SHA-1 over the serialized info dict (BEP-3 infohash)
}

// Build runs the complete pipeline: build file records, plan hash jobs,
// hash them, complete the v2 Merkle trees, and assemble the final
// bencoded dictionary. The returned error is always a *meta.Error so
// callers can switch on its Kind to pick an exit code (spec.md §7).
func Build(files []meta.InputFile, cfg *meta.Config, sink progress.Sink) (*Result, error) {
	var totalSize int64
	for _, f := range files {
		totalSize += f.Length
	}
	if err := cfg.Validate(totalSize); err != nil {
		return nil, err
	}

	records, err := meta.BuildFileRecords(files, cfg.PieceSize)
	if err != nil {
		return nil, err
	}

	jobs, err := meta.PlanJobs(records, cfg)
	if err != nil {
		return nil, err
	}

	if err := hasher.Run(jobs, cfg.Threads, sink); err != nil {
		return nil, err
	}

	if cfg.EmitV2 {
		if err := hasher.CompleteMerkleTrees(records); err != nil {
			return nil, err
		}
	}

	info := meta.InfoDict(records, cfg)
	root := meta.Assemble(records, cfg)
	return &Result{
		Torrent:  bencode.Serialize(root),
		InfoHash: sha1.Sum(bencode.Serialize(info)),
	}, nil
}
