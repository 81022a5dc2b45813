package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseConfig() Config {
	return Config{
		Announces:   [][]string{{"udp://tracker.example:1337/announce"}},
		EmitV1:      true,
		EmitV2:      true,
		EmitPadding: true,
		Threads:     4,
	}
}

func TestValidateRejectsNoEmitFlags(t *testing.T) {
	cfg := baseConfig()
	cfg.EmitV1, cfg.EmitV2 = false, false
	err := cfg.Validate(1024)
	require.Error(t, err)
}

func TestValidateRejectsZeroThreads(t *testing.T) {
	cfg := baseConfig()
	cfg.Threads = 0
	require.Error(t, cfg.Validate(1024))
}

func TestValidateRejectsNoAnnounceOrNodes(t *testing.T) {
	cfg := baseConfig()
	cfg.Announces = nil
	require.Error(t, cfg.Validate(1024))

	cfg.Nodes = []Node{{Host: "router.example", Port: 6881}}
	require.NoError(t, cfg.Validate(1024))
}

func TestValidateRejectsNoPaddingWithoutV1Only(t *testing.T) {
	cfg := baseConfig()
	cfg.EmitPadding = false
	require.Error(t, cfg.Validate(1024))

	cfg.EmitV2 = false
	cfg.Threads = 1
	require.NoError(t, cfg.Validate(1024))
}

func TestValidateAutoPieceSizePolicy(t *testing.T) {
	cfg := baseConfig()
	require.NoError(t, cfg.Validate(1024))
	require.Equal(t, smallPieceSize, cfg.PieceSize)

	cfg = baseConfig()
	require.NoError(t, cfg.Validate(autoSelectThreshold))
	require.Equal(t, largePieceSize, cfg.PieceSize)
}

func TestValidateRejectsNonPowerOfTwoPieceSize(t *testing.T) {
	cfg := baseConfig()
	cfg.PieceSize = 300 * 1024
	require.Error(t, cfg.Validate(1024))
}

func TestValidateRejectsOutOfRangePieceSize(t *testing.T) {
	cfg := baseConfig()
	cfg.PieceSize = 8 * 1024
	require.Error(t, cfg.Validate(1024))

	cfg.PieceSize = 4 * 1024 * 1024
	require.Error(t, cfg.Validate(1024))
}

func TestValidateResolvesPieceFactorAndLevel(t *testing.T) {
	cfg := baseConfig()
	cfg.PieceSize = 1024 * 1024 // 64 * 16 KiB
	require.NoError(t, cfg.Validate(1024))
	require.Equal(t, int64(64), cfg.PieceFactor())
	require.Equal(t, uint(6), cfg.PieceLevel())
}
