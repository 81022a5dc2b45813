package meta

const (
	// MerklePieceSize is the fixed 16 KiB leaf size BEP-52 mandates for
	// the per-file SHA-256 Merkle tree.
	MerklePieceSize int64 = 16 * 1024

	minPieceSize int64 = 16 * 1024
	maxPieceSize int64 = 2 * 1024 * 1024

	autoSelectThreshold int64 = 50 * 1024 * 1024 * 1024 // 50 GiB
	smallPieceSize      int64 = 256 * 1024
	largePieceSize      int64 = 1024 * 1024
)

// Node is a DHT bootstrap peer (BEP-5).
type Node struct {
	Host string
	Port int
}

// Config is the immutable configuration surface the core accepts, per
// spec.md §6.
type Config struct {
	// Announces is an ordered list of tracker tiers; each tier is an
	// ordered list of URLs.
	Announces [][]string
	Nodes     []Node
	Webseeds  []string
	Private   bool

	// PieceSize is a power of two in [16 KiB, 2 MiB]. Zero means "auto
	// select from total input size" (spec.md §4.3).
	PieceSize int64

	EmitV1      bool
	EmitV2      bool
	EmitPadding bool

	Threads uint32

	// resolved fields, set by Validate
	pieceFactor int64
	pieceLevel  uint
}

// PieceFactor returns piece_size / 16KiB, the number of Merkle leaves per
// v1 piece. Valid only after Validate succeeds.
func (c *Config) PieceFactor() int64 { return c.pieceFactor }

// PieceLevel returns log2(PieceFactor), the index of the Merkle layer that
// corresponds to one v1 piece. Valid only after Validate succeeds.
func (c *Config) PieceLevel() uint { return c.pieceLevel }

// Validate checks the configuration surface and resolves PieceSize when it
// was left at zero, given the total size of the input file set. It must be
// called, and must succeed, before any hashing work starts (spec.md §7).
func (c *Config) Validate(totalSize int64) error {
	if !c.EmitV1 && !c.EmitV2 {
		return configErr("at least one of emit_v1/emit_v2 must be true")
	}
	if !c.EmitPadding {
		if c.EmitV1 && c.EmitV2 {
			return configErr("emit_padding=false requires emit_v2=false")
		}
		if !c.EmitV1 {
			return configErr("emit_padding=false requires emit_v1=true")
		}
		if c.Threads > 1 {
			return configErr("emit_padding=false requires threads=1")
		}
	}
	if c.Threads == 0 {
		return configErr("threads must be >= 1")
	}
	if len(c.Announces) == 0 && len(c.Nodes) == 0 {
		return configErr("at least one announce tier or DHT node is required")
	}

	if c.PieceSize == 0 {
		if totalSize >= autoSelectThreshold {
			c.PieceSize = largePieceSize
		} else {
			c.PieceSize = smallPieceSize
		}
	} else if !isPowerOfTwo(c.PieceSize) || c.PieceSize < minPieceSize || c.PieceSize > maxPieceSize {
		return configErr("piece size %d must be a power of two in [%d, %d]", c.PieceSize, minPieceSize, maxPieceSize)
	}

	factor := c.PieceSize / MerklePieceSize
	level := uint(0)
	for tmp := int64(1); tmp < factor; tmp <<= 1 {
		level++
	}
	c.pieceFactor = factor
	c.pieceLevel = level
	return nil
}

func isPowerOfTwo(n int64) bool {
	return n > 0 && n&(n-1) == 0
}
