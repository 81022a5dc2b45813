// Command torrentgen creates hybrid BEP-3/BEP-52 .torrent files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "torrentgen",
	Short:   "Create hybrid v1/v2 .torrent files",
	Version: version,
}

func main() {
	rootCmd.AddCommand(createCmd, watchCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}
