package meta

import (
	"strconv"

	"github.com/torrentgen/torrentgen/internal/bencode"
)

// Assemble builds the final outer bencode dictionary from hashed file
// records, per spec.md §4.7. Records must already have had their Merkle
// trees completed (internal/hasher.CompleteMerkleTrees) when cfg.EmitV2 is
// set, and their V1Hashes/MerkleLeaves fully populated
// (internal/hasher.Run) when cfg.EmitV1/EmitV2 respectively are set.
func Assemble(records []*FileRecord, cfg *Config) bencode.Value {
	root := bencode.NewMap()

	if len(cfg.Announces) > 0 {
		root.Insert("announce", bencode.String(cfg.Announces[0][0]))
	}
	if len(cfg.Announces) > 1 || (len(cfg.Announces) == 1 && len(cfg.Announces[0]) > 1) {
		tiers := make([]bencode.Value, len(cfg.Announces))
		for i, tier := range cfg.Announces {
			urls := make([]bencode.Value, len(tier))
			for j, u := range tier {
				urls[j] = bencode.String(u)
			}
			tiers[i] = bencode.List(urls...)
		}
		root.Insert("announce-list", bencode.List(tiers...))
	}

	if len(cfg.Nodes) > 0 {
		nodes := make([]bencode.Value, len(cfg.Nodes))
		for i, n := range cfg.Nodes {
			nodes[i] = bencode.List(bencode.String(n.Host), bencode.Integer(int64(n.Port)))
		}
		root.Insert("nodes", bencode.List(nodes...))
	}

	if len(cfg.Webseeds) > 0 {
		if len(cfg.Webseeds) == 1 {
			root.Insert("url-list", bencode.String(cfg.Webseeds[0]))
		} else {
			urls := make([]bencode.Value, len(cfg.Webseeds))
			for i, u := range cfg.Webseeds {
				urls[i] = bencode.String(u)
			}
			root.Insert("url-list", bencode.List(urls...))
		}
	}

	if cfg.EmitV2 {
		root.Insert("piece layers", pieceLayers(records, cfg))
	}

	root.Insert("info", InfoDict(records, cfg))
	return root
}

func pieceLayers(records []*FileRecord, cfg *Config) bencode.Value {
	layers := bencode.NewMap()
	for _, rec := range records {
		if rec.Length <= cfg.PieceSize {
			continue
		}
		root := rec.MerkleTree[len(rec.MerkleTree)-1]
		layer := rec.MerkleTree[cfg.PieceLevel()]
		layers.Insert(string(root), bencode.Bytes(layer))
	}
	return layers
}

// InfoDict builds just the "info" dictionary, exported so callers can
// derive the v1 infohash (SHA-1 of this value's serialized bytes) without
// re-parsing the assembled torrent.
func InfoDict(records []*FileRecord, cfg *Config) bencode.Value {
	info := bencode.NewMap()
	info.Insert("name", bencode.String(records[0].Components[0]))
	info.Insert("piece length", bencode.Integer(cfg.PieceSize))
	if cfg.Private {
		info.Insert("private", bencode.Integer(1))
	}

	if cfg.EmitV1 {
		addV1(&info, records)
	}
	if cfg.EmitV2 {
		addV2(&info, records)
	}
	return info
}

func isSingleFileMode(records []*FileRecord) bool {
	return len(records) == 1 && len(records[0].Components) == 1
}

func addV1(info *bencode.Value, records []*FileRecord) {
	pieces := make([]byte, 0)
	for _, rec := range records {
		pieces = append(pieces, rec.V1Hashes...)
	}
	info.Insert("pieces", bencode.Bytes(pieces))

	if isSingleFileMode(records) {
		info.Insert("length", bencode.Integer(records[0].Length))
		return
	}

	var files []bencode.Value
	for _, rec := range records {
		fileDict := bencode.NewMap()
		fileDict.Insert("length", bencode.Integer(rec.Length))
		fileDict.Insert("path", componentList(rec.Components[1:]))
		files = append(files, fileDict)

		if rec.Padding > 0 {
			pad := bencode.NewMap()
			pad.Insert("attr", bencode.String("p"))
			pad.Insert("length", bencode.Integer(rec.Padding))
			pad.Insert("path", bencode.List(bencode.String(".pad"), bencode.String(strconv.FormatInt(rec.Padding, 10))))
			files = append(files, pad)
		}
	}
	info.Insert("files", bencode.List(files...))
}

func addV2(info *bencode.Value, records []*FileRecord) {
	info.Insert("meta version", bencode.Integer(2))

	strip := 0
	if canStripRoot(records) {
		strip = 1
	}

	tree := bencode.NewMap()
	for _, rec := range records {
		insertFileTreeEntry(&tree, rec, strip)
	}
	info.Insert("file tree", tree)
}

// canStripRoot reports whether every file carries at least two path
// components, i.e. a shared root directory is present and can be omitted
// from the v2 file tree (spec.md §9's root-strip heuristic).
func canStripRoot(records []*FileRecord) bool {
	for _, rec := range records {
		if len(rec.Components) <= 1 {
			return false
		}
	}
	return true
}

func insertFileTreeEntry(tree *bencode.Value, rec *FileRecord, strip int) {
	node := tree
	for _, comp := range rec.Components[strip:] {
		node = descend(node, comp)
	}

	leaf := bencode.NewMap()
	leaf.Insert("length", bencode.Integer(rec.Length))
	if rec.Length > 0 {
		leaf.Insert("pieces root", bencode.Bytes(rec.MerkleTree[len(rec.MerkleTree)-1]))
	}
	node.Insert("", leaf)
}

// descend returns the child map node at key within *tree, creating it as
// an empty map if absent. tree must be a bencode.Value of KindMap.
func descend(tree *bencode.Value, key string) *bencode.Value {
	child, ok := tree.Child(key)
	if !ok {
		m := bencode.NewMap()
		tree.Insert(key, m)
		child, _ = tree.Child(key)
	}
	return child
}

func componentList(components []string) bencode.Value {
	vs := make([]bencode.Value, len(components))
	for i, c := range components {
		vs[i] = bencode.String(c)
	}
	return bencode.List(vs...)
}
