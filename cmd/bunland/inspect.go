package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vitalspace/bunland/internal/exeio"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect EXECUTABLE",
		Short: "Describe the module graph embedded in a standalone executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exePath := normalizePath(args[0])
			exe, err := exeio.Open(exePath)
			if err != nil {
				return err
			}
			if exe == nil {
				return fmt.Errorf("%s carries no embedded module graph", exePath)
			}
			printExecutable(exe)
			return nil
		},
	}
	return cmd
}

func printExecutable(exe *exeio.Executable) {
	off := exe.Offsets
	fmt.Printf("[*] %s\n", exe.Path)
	fmt.Printf("  file_size:        %d\n", exe.FileSize)
	fmt.Printf("  total_byte_count: %d\n", exe.TotalByteCount)
	fmt.Printf("  payload_start:    %d\n", exe.PayloadStart)
	fmt.Printf("  byte_count:       %d\n", off.ByteCount)
	fmt.Printf("  modules_ptr:      offset=%d, length=%d\n", off.Modules.Offset, off.Modules.Length)
	fmt.Printf("  entry_point_id:   %d\n", off.EntryPointID)
	fmt.Printf("  exec_argv:        %q\n", exe.Graph.ExecArgv())
	fmt.Printf("  flags:            %d\n", off.Flags)
	fmt.Printf("  module_count:     %d\n", exe.Graph.Len())

	for i := 0; i < exe.Graph.Len(); i++ {
		f := exe.Graph.At(i)
		m := exe.Graph.Record(i)
		fmt.Printf("\n--- Module [%d] ---\n", i)
		fmt.Printf("  name:          %s\n", strings.ToValidUTF8(f.Name, "?"))
		fmt.Printf("  loader:        %s (%d)\n", f.Loader, uint8(f.Loader))
		fmt.Printf("  name_ptr:      offset=%d, length=%d\n", m.Name.Offset, m.Name.Length)
		fmt.Printf("  contents_ptr:  offset=%d, length=%d\n", m.Contents.Offset, m.Contents.Length)
		fmt.Printf("  sourcemap_ptr: offset=%d, length=%d\n", m.SourceMap.Offset, m.SourceMap.Length)
		if i == exe.Graph.EntryIndex() {
			fmt.Printf("  entry_point:   yes\n")
		}
	}
}
