package hasher

import (
	"crypto/sha256"
	"sync"

	"github.com/torrentgen/torrentgen/internal/meta"
)

// fillerDepth covers any foreseeable file: 2^49 * 16 KiB leaves is far
// beyond any real torrent (spec.md §4.6).
const fillerDepth = 50

var (
	fillerOnce  sync.Once
	fillerTable [][]byte
)

// Fillers returns the zero-hash table Z: Z[0] is 32 zero bytes, and
// Z[i] = SHA256(Z[i-1] || Z[i-1]). It is computed once and shared across
// every file's Merkle completion.
func Fillers() [][]byte {
	fillerOnce.Do(func() {
		z := make([][]byte, fillerDepth)
		z[0] = make([]byte, 32)
		for i := 1; i < fillerDepth; i++ {
			h := sha256.New()
			h.Write(z[i-1])
			h.Write(z[i-1])
			z[i] = h.Sum(nil)
		}
		fillerTable = z
	})
	return fillerTable
}

// CompleteMerkleTrees builds the upper Merkle layers above each file's
// leaf layer (layer 0), padding odd tails with the zero-hash filler for
// that level, until the layer is 32 bytes — the file's pieces-root
// (spec.md §4.6). Files of length 0 or with a single leaf are left alone:
// their root is the leaf itself.
func CompleteMerkleTrees(records []*meta.FileRecord) error {
	z := Fillers()
	for _, rec := range records {
		if rec.Length == 0 || len(rec.MerkleTree[0]) == 32 {
			continue
		}
		for level := 0; ; level++ {
			if level >= len(z) {
				return meta.InvariantError("file %q exceeds the zero-filler table depth", rec.Path)
			}
			src := rec.MerkleTree[level]
			if len(src)%32 != 0 || len(src) == 0 {
				return meta.InvariantError("malformed merkle layer %d for %q", level, rec.Path)
			}

			var dst []byte
			pairs := len(src) / 64
			for i := 0; i < pairs; i++ {
				h := sha256.New()
				h.Write(src[i*64 : i*64+32])
				h.Write(src[i*64+32 : i*64+64])
				dst = append(dst, h.Sum(nil)...)
			}
			if len(src) > 32 && len(src)%64 != 0 {
				h := sha256.New()
				h.Write(src[pairs*64:])
				h.Write(z[level])
				dst = append(dst, h.Sum(nil)...)
			}

			rec.MerkleTree = append(rec.MerkleTree, dst)
			if len(dst) == 32 {
				break
			}
		}
	}
	return nil
}
