package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vitalspace/bunland/internal/exeio"
	"github.com/vitalspace/bunland/internal/standalone"
)

// runSelfIfStandalone checks whether this process image carries an
// embedded module graph and, when it does, serves it and exits. Plain
// launcher invocations fall through to the regular command tree.
func runSelfIfStandalone() {
	g, err := exeio.FromSelf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error: %v\n", err)
		os.Exit(1)
	}
	if g == nil || g.Len() == 0 {
		return
	}
	os.Exit(runEmbedded(g, os.Args[1:]))
}

// runEmbedded unpacks the bundled files next to the invocation.
// Arguments baked in at bundle time via --exec-argv come first, so the
// bundle's defaults apply before anything the user typed.
func runEmbedded(g *standalone.Graph, argv []string) int {
	args := append(strings.Fields(g.ExecArgv()), argv...)

	fs := pflag.NewFlagSet("bunland-standalone", pflag.ContinueOnError)
	outDir := fs.StringP("outdir", "o", ".", "directory to unpack into")
	list := fs.Bool("list", false, "list embedded files without unpacking")
	quiet := fs.BoolP("quiet", "q", false, "suppress per-file output")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "[!] Error: %v\n", err)
		return 2
	}

	if *list {
		listGraph(g)
		return 0
	}

	n, err := unpackGraph(g, *outDir, *quiet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error: %v\n", err)
		return 1
	}
	if !*quiet {
		fmt.Printf("[*] Unpacked %d files to %s\n", n, *outDir)
	}
	return 0
}

func listGraph(g *standalone.Graph) {
	for i := 0; i < g.Len(); i++ {
		f := g.At(i)
		marker := " "
		if i == g.EntryIndex() {
			marker = "*"
		}
		name := strings.ToValidUTF8(f.Name, "?")
		fmt.Printf("%s %-48s %8d bytes  %s\n", marker, name, len(f.Contents), f.Loader)
	}
}
