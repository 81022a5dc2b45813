package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	tgconfig "github.com/torrentgen/torrentgen/internal/config"
	"github.com/torrentgen/torrentgen/internal/pipeline"
	"github.com/torrentgen/torrentgen/internal/progress"
	"github.com/torrentgen/torrentgen/internal/walkdir"
	"github.com/torrentgen/torrentgen/internal/watchmode"
)

var flagWatchDebounceMS int

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Regenerate the .torrent file whenever <path> changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringArrayVarP(&flagAnnounce, "announce", "a", nil, "tracker URL(s); repeat for tiers, comma-separate within a tier")
	watchCmd.Flags().StringArrayVarP(&flagWebSeeds, "web-seed", "w", nil, "BEP-19 web seed URL; repeatable")
	watchCmd.Flags().BoolVarP(&flagPrivate, "private", "p", false, "mark the torrent private")
	watchCmd.Flags().StringVarP(&flagPieceLength, "piece-length", "l", "auto", "piece length in bytes, or \"auto\"")
	watchCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output .torrent path (default: <name>.torrent)")
	watchCmd.Flags().StringVarP(&flagName, "name", "n", "", "torrent name, i.e. the info dict's \"name\"/root path component (default: basename of <path>); also used to derive the default --output filename")
	watchCmd.Flags().Uint32VarP(&flagThreads, "threads", "t", 0, "hasher worker count (default: NumCPU)")
	watchCmd.Flags().IntVar(&flagWatchDebounceMS, "debounce", 750, "milliseconds to wait after the last change before rebuilding")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := tgconfig.Defaults()
	cfg.InputPath = args[0]
	cfg.Watch = true
	cfg.ApplyAnnounce(flagAnnounce)
	cfg.Meta.Webseeds = flagWebSeeds
	cfg.Meta.Private = flagPrivate
	if err := cfg.ApplyPieceSize(flagPieceLength); err != nil {
		return err
	}
	if flagThreads > 0 {
		cfg.Meta.Threads = flagThreads
	}
	cfg.WatchDebounce = flagWatchDebounceMS

	cfg.Name = flagName
	if cfg.Name == "" {
		cfg.Name = baseName(cfg.InputPath)
	}
	cfg.OutputPath = flagOutput
	if cfg.OutputPath == "" {
		cfg.OutputPath = cfg.Name + ".torrent"
	}

	if err := rebuild(&cfg); err != nil {
		log.Printf("watch: initial build failed: %v", err)
	}

	dirs, err := subdirs(cfg.InputPath)
	if err != nil {
		return err
	}
	w, err := watchmode.New(cfg.InputPath, time.Duration(cfg.WatchDebounce)*time.Millisecond)
	if err != nil {
		return err
	}
	if err := w.Start(dirs); err != nil {
		return err
	}
	defer w.Stop()

	color.New(color.FgCyan).Printf("watching %s — press Ctrl+C to stop\n", cfg.InputPath)
	for range w.Rebuilds {
		if err := rebuild(&cfg); err != nil {
			log.Printf("watch: rebuild failed: %v", err)
		}
	}
	return nil
}

func rebuild(cfg *tgconfig.Config) error {
	files, err := walkdir.Walk(cfg.InputPath)
	if err != nil {
		return err
	}
	walkdir.OverrideRootName(files, cfg.Name)
	totalSize := walkdir.TotalSize(files)
	if err := cfg.Validate(totalSize); err != nil {
		return err
	}

	result, err := pipeline.Build(files, &cfg.Meta, progress.NoOp{})
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.OutputPath, result.Torrent, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutputPath, err)
	}
	log.Printf("watch: rebuilt %s (%d bytes, info-hash %x)", cfg.OutputPath, len(result.Torrent), result.InfoHash)
	return nil
}

// subdirs lists every directory beneath root so the watcher can add them
// individually; fsnotify does not watch recursively on its own.
func subdirs(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var dirs []string
	err = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}
