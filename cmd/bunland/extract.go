package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalspace/bunland/internal/exeio"
	"github.com/vitalspace/bunland/internal/standalone"
)

func newExtractCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "extract EXECUTABLE",
		Short: "Unpack the module graph embedded in a standalone executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exePath := normalizePath(args[0])
			logv("[*] Reading %s\n", exePath)

			exe, err := exeio.Open(exePath)
			if err != nil {
				return err
			}
			if exe == nil {
				return fmt.Errorf("%s carries no embedded module graph", exePath)
			}
			logv("[*] Found module graph: %d modules, %d payload bytes\n",
				exe.Graph.Len(), exe.Offsets.ByteCount)

			if outDir == "" {
				outDir = filepath.Base(exePath) + "-extracted"
			}
			n, err := unpackGraph(exe.Graph, outDir, false)
			if err != nil {
				return err
			}
			fmt.Printf("[*] Extracted %d files to %s\n", n, outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "outdir", "o", "", "destination directory (default: EXECUTABLE-extracted)")
	return cmd
}

// unpackGraph writes every module of the graph below dir, stripping
// the embed prefix and writing decompressed sourcemaps alongside their
// modules byte for byte as they were bundled. A sourcemap that fails
// to decompress is reported and skipped; the remaining files still
// land.
func unpackGraph(g *standalone.Graph, dir string, quiet bool) (int, error) {
	count := 0
	for i := 0; i < g.Len(); i++ {
		f := g.At(i)
		dst := outputPath(dir, f.Name, f.Loader, i)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return count, fmt.Errorf("creating %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, f.Contents, 0o644); err != nil {
			return count, fmt.Errorf("writing %s: %w", dst, err)
		}
		if !quiet {
			logv("[*] %s -> %s (%d bytes)\n", strings.ToValidUTF8(f.Name, "?"), dst, len(f.Contents))
		}
		count++

		if !f.HasSourcemap() {
			continue
		}
		raw, err := f.SourcemapBytes()
		if err != nil {
			fmt.Fprintf(os.Stderr, "[!] %v\n", err)
			continue
		}
		if err := os.WriteFile(dst+".map", raw, 0o644); err != nil {
			return count, fmt.Errorf("writing %s: %w", dst+".map", err)
		}
		count++
	}
	return count, nil
}

// outputPath maps an embedded module name to a safe path below dir.
// The embed prefix and anything else that could climb out of dir is
// stripped; a name reduced to nothing falls back to its record index.
func outputPath(dir, name string, loader standalone.Loader, index int) string {
	clean := strings.TrimPrefix(name, "/$bunland/")
	clean = strings.TrimLeft(clean, "/")

	var parts []string
	for _, part := range strings.Split(clean, "/") {
		part = sanitizePathComponent(part)
		if part == "" || part == "." || part == ".." {
			continue
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		parts = []string{fmt.Sprintf("module_%d%s", index, loader.Ext())}
	}

	joined := filepath.Join(parts...)
	if filepath.Ext(joined) == "" {
		joined += loader.Ext()
	}
	return filepath.Join(dir, joined)
}

// sanitizePathComponent replaces characters that are invalid in file
// names on at least one supported platform.
func sanitizePathComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 32 || strings.ContainsRune(`\:*?"<>|`, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
