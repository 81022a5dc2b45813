// Package config turns parsed CLI flags into a validated build
// configuration: the internal/meta.Config the hashing pipeline consumes,
// plus the handful of fields (input path, output path, monitor/watch
// settings) that sit outside internal/meta's scope. It follows the
// teacher's Load-then-validate shape: defaults are applied first, flags
// override them, and Validate runs after the input is walked and before
// any hashing starts.
package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/torrentgen/torrentgen/internal/meta"
)

// Config holds everything a single `torrentgen create` invocation needs,
// split between the hashing-pipeline settings (Meta) and the surrounding
// CLI concerns.
type Config struct {
	Meta meta.Config

	InputPath  string
	OutputPath string
	Name       string // overrides the basename of InputPath as the torrent's "name"

	Monitor     bool
	MonitorAddr string // host:port for internal/monitor's HTTP+WebSocket server

	Watch        bool
	WatchDebounce int // milliseconds
}

// Defaults returns a Config with every field set to its documented
// default, before flags are applied.
func Defaults() Config {
	return Config{
		Meta: meta.Config{
			EmitV1:      true,
			EmitV2:      true,
			EmitPadding: true,
			Threads:     uint32(defaultThreads()),
		},
		MonitorAddr:   "127.0.0.1:10880",
		WatchDebounce: 750,
	}
}

func defaultThreads() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// ApplyAnnounce parses repeated --announce flag values into announce tiers.
// A single flag occurrence is one tier; comma-separated URLs within one
// occurrence share a tier, mirroring mkbrr's --announce-list convention.
func (c *Config) ApplyAnnounce(values []string) {
	c.Meta.Announces = nil
	for _, v := range values {
		tier := strings.Split(v, ",")
		for i := range tier {
			tier[i] = strings.TrimSpace(tier[i])
		}
		c.Meta.Announces = append(c.Meta.Announces, tier)
	}
}

// ApplyNodes parses repeated --node host:port values into DHT bootstrap
// nodes.
func (c *Config) ApplyNodes(values []string) error {
	c.Meta.Nodes = nil
	for _, v := range values {
		host, portStr, found := strings.Cut(v, ":")
		if !found {
			return fmt.Errorf("invalid --node %q: want host:port", v)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid --node %q: %w", v, err)
		}
		c.Meta.Nodes = append(c.Meta.Nodes, meta.Node{Host: host, Port: port})
	}
	return nil
}

// ApplyPieceSize parses the --piece-length flag, which is either "auto" or
// an explicit byte count.
func (c *Config) ApplyPieceSize(value string) error {
	if value == "" || value == "auto" {
		c.Meta.PieceSize = 0
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid --piece-length %q: %w", value, err)
	}
	c.Meta.PieceSize = n
	return nil
}

// Validate checks the CLI-level fields and delegates piece-level and
// format-combination checks to meta.Config.Validate. totalSize is the
// summed length of every walked input file.
func (c *Config) Validate(totalSize int64) error {
	if c.InputPath == "" {
		return fmt.Errorf("config invalid: input path is required")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("config invalid: output path is required")
	}
	if c.Watch && c.Meta.Threads == 0 {
		return fmt.Errorf("config invalid: watch mode requires at least one hasher thread")
	}
	return c.Meta.Validate(totalSize)
}
