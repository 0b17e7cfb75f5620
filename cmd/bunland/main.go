package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
)

const version = "0.2.0"

var verbose bool

func logv(format string, args ...any) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

// normalizePath makes a path absolute and resolves symlinks, keeping
// the input when either step fails.
func normalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bunland version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bunland %s\n", version)
		},
	}
}

func main() {
	verbose = env.Bool("BUNLAND_VERBOSE")

	// A standalone build never reaches the command tree; it unpacks
	// its embedded graph and exits here.
	runSelfIfStandalone()

	root := &cobra.Command{
		Use:   "bunland",
		Short: "Bundle files into single-file executables",
		Long: `bunland embeds a set of build outputs into a copy of its own binary,
producing one self-contained executable that can unpack them anywhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	root.AddCommand(newBundleCmd())
	root.AddCommand(newExtractCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error: %v\n", err)
		os.Exit(1)
	}
}
