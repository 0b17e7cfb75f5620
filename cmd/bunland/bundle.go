package main

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalspace/bunland/internal/exeio"
	"github.com/vitalspace/bunland/internal/standalone"
)

func newBundleCmd() *cobra.Command {
	var (
		outName  string
		outDir   string
		prefix   string
		entry    string
		execArgv string
	)
	cmd := &cobra.Command{
		Use:   "bundle FILES...",
		Short: "Embed files into a copy of this executable",
		Long: `Bundle reads the given files, pairs each with a sibling FILE.map
sourcemap when one exists, and embeds everything into a copy of the
running bunland binary. The first file is the entry point unless
--entry names another one.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputs, err := collectOutputs(args, entry)
			if err != nil {
				return err
			}
			if outName == "" {
				outName = defaultOutName(args[0])
			}

			dest, err := exeio.ToExecutable(outputs, prefix, execArgv, outDir, outName)
			if err != nil {
				return err
			}
			if dest == "" {
				return fmt.Errorf("nothing to embed")
			}
			fmt.Printf("[*] Wrote %s\n", dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outName, "outfile", "o", "", "output executable name (default: derived from the entry file)")
	cmd.Flags().StringVar(&outDir, "outdir", ".", "output directory")
	cmd.Flags().StringVar(&prefix, "prefix", standalone.DefaultPrefix, "name prefix for embedded paths")
	cmd.Flags().StringVar(&entry, "entry", "", "entry-point file (default: the first argument)")
	cmd.Flags().StringVar(&execArgv, "exec-argv", "", "arguments baked into the executable, applied before its own at startup")
	return cmd
}

// collectOutputs reads the named files into memory and pairs each with
// a sibling FILE.map sourcemap when one exists on disk.
func collectOutputs(paths []string, entry string) ([]standalone.Output, error) {
	outputs := make([]standalone.Output, 0, 2*len(paths))
	haveEntry := false
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		loader := standalone.LoaderForPath(p)
		kind := standalone.KindChunk
		if isEntry(i, p, entry) {
			kind = standalone.KindEntryPoint
			haveEntry = true
		} else if loader == standalone.LoaderFile {
			kind = standalone.KindAsset
		}

		out := standalone.Output{
			Path:           embedName(p),
			Loader:         loader,
			Kind:           kind,
			Data:           data,
			SourcemapIndex: -1,
		}

		mapData, err := os.ReadFile(p + ".map")
		if err != nil {
			outputs = append(outputs, out)
			continue
		}
		logv("[*] %s: paired sourcemap %s (%d bytes)\n", p, p+".map", len(mapData))
		out.SourcemapIndex = len(outputs) + 1
		outputs = append(outputs, out, standalone.Output{
			Path:           embedName(p) + ".map",
			Loader:         standalone.LoaderJSON,
			Kind:           standalone.KindSourceMap,
			Data:           mapData,
			SourcemapIndex: -1,
		})
	}
	if !haveEntry {
		return nil, fmt.Errorf("entry point %q is not among the input files", entry)
	}
	return outputs, nil
}

func isEntry(i int, p, entry string) bool {
	if entry == "" {
		return i == 0
	}
	return p == entry
}

// embedName turns a local path into the name a module is embedded
// under: slash-separated and cleaned, with no way to climb back out
// via dot-dot segments.
func embedName(p string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
}

func defaultOutName(entry string) string {
	name := strings.TrimSuffix(filepath.Base(entry), filepath.Ext(entry))
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return name
}
