package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	tgconfig "github.com/torrentgen/torrentgen/internal/config"
	"github.com/torrentgen/torrentgen/internal/pipeline"
	"github.com/torrentgen/torrentgen/internal/progress"
	"github.com/torrentgen/torrentgen/internal/walkdir"
)

var (
	flagAnnounce    []string
	flagNodes       []string
	flagWebSeeds    []string
	flagPrivate     bool
	flagPieceLength string
	flagOutput      string
	flagName        string
	flagThreads     uint32
	flagV1Only      bool
	flagV2Only      bool
	flagNoPadding   bool
	flagQuiet       bool
	flagMonitor     bool
	flagMonitorAddr string
)

var createCmd = &cobra.Command{
	Use:   "create <path>",
	Short: "Create a hybrid .torrent file from a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreate,
}

func init() {
	createCmd.Flags().SortFlags = false
	createCmd.Flags().StringArrayVarP(&flagAnnounce, "announce", "a", nil, "tracker URL(s); repeat for tiers, comma-separate within a tier")
	createCmd.Flags().StringArrayVar(&flagNodes, "node", nil, "DHT bootstrap node host:port; repeatable")
	createCmd.Flags().StringArrayVarP(&flagWebSeeds, "web-seed", "w", nil, "BEP-19 web seed URL; repeatable")
	createCmd.Flags().BoolVarP(&flagPrivate, "private", "p", false, "mark the torrent private")
	createCmd.Flags().StringVarP(&flagPieceLength, "piece-length", "l", "auto", "piece length in bytes, or \"auto\"")
	createCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output .torrent path (default: <name>.torrent)")
	createCmd.Flags().StringVarP(&flagName, "name", "n", "", "torrent name, i.e. the info dict's \"name\"/root path component (default: basename of <path>); also used to derive the default --output filename")
	createCmd.Flags().Uint32VarP(&flagThreads, "threads", "t", 0, "hasher worker count (default: NumCPU)")
	createCmd.Flags().BoolVar(&flagV1Only, "v1-only", false, "emit only BEP-3 v1 metadata")
	createCmd.Flags().BoolVar(&flagV2Only, "v2-only", false, "emit only BEP-52 v2 metadata")
	createCmd.Flags().BoolVar(&flagNoPadding, "no-padding", false, "set emit_padding=false; accepted only with --v1-only and --threads 1, and BEP-47 padding files are still emitted")
	createCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress the progress bar")
	createCmd.Flags().BoolVar(&flagMonitor, "monitor", false, "serve live progress over HTTP+WebSocket")
	createCmd.Flags().StringVar(&flagMonitorAddr, "monitor-addr", "127.0.0.1:10880", "address for --monitor")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg := tgconfig.Defaults()
	cfg.InputPath = args[0]
	cfg.ApplyAnnounce(flagAnnounce)
	if err := cfg.ApplyNodes(flagNodes); err != nil {
		return err
	}
	cfg.Meta.Webseeds = flagWebSeeds
	cfg.Meta.Private = flagPrivate
	if err := cfg.ApplyPieceSize(flagPieceLength); err != nil {
		return err
	}
	if flagThreads > 0 {
		cfg.Meta.Threads = flagThreads
	}
	if flagV1Only {
		cfg.Meta.EmitV1, cfg.Meta.EmitV2 = true, false
	}
	if flagV2Only {
		cfg.Meta.EmitV1, cfg.Meta.EmitV2 = false, true
	}
	cfg.Meta.EmitPadding = !flagNoPadding
	cfg.Monitor = flagMonitor
	cfg.MonitorAddr = flagMonitorAddr

	cfg.Name = flagName
	if cfg.Name == "" {
		cfg.Name = baseName(cfg.InputPath)
	}
	cfg.OutputPath = flagOutput
	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.Name + ".torrent"
	}

	files, err := walkdir.Walk(cfg.InputPath)
	if err != nil {
		return err
	}
	walkdir.OverrideRootName(files, cfg.Name)
	totalSize := walkdir.TotalSize(files)
	if err := cfg.Validate(totalSize); err != nil {
		return err
	}

	sink, stop := buildSink(&cfg, uint64(totalSize))
	defer stop()

	start := time.Now()
	result, err := pipeline.Build(files, &cfg.Meta, sink)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := os.WriteFile(cfg.OutputPath, result.Torrent, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutputPath, err)
	}

	printSummary(&cfg, totalSize, result, elapsed)
	return nil
}

func buildSink(cfg *tgconfig.Config, totalBytes uint64) (progress.Sink, func()) {
	var sinks progress.Fanout
	var stops []func()

	if !flagQuiet {
		sinks = append(sinks, progress.NewTerminal(int64(totalBytes)))
	}
	if cfg.Monitor {
		sink, stop := startMonitor(cfg, totalBytes)
		sinks = append(sinks, sink)
		stops = append(stops, stop)
	}

	return sinks, func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func baseName(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	return path[i+1:]
}

func printSummary(cfg *tgconfig.Config, totalSize int64, result *pipeline.Result, elapsed time.Duration) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)

	bold.Printf("\n%s\n", cfg.OutputPath)
	fmt.Printf("  size:   %s\n", humanize.Bytes(uint64(totalSize)))
	fmt.Printf("  piece:  %s\n", humanize.Bytes(uint64(cfg.Meta.PieceSize)))
	fmt.Printf("  time:   %s\n", elapsed.Round(time.Millisecond))
	if cfg.Meta.EmitV1 {
		fmt.Printf("  info-hash (v1): %x\n", result.InfoHash)
	}
	green.Printf("  done\n")
}
