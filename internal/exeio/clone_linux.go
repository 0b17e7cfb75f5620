//go:build linux

package exeio

import (
	"os"

	"golang.org/x/sys/unix"
)

// cloneFile makes a copy-on-write clone of src at dst via FICLONE.
// Only reflink-capable filesystems (btrfs, xfs, bcachefs) support it;
// callers fall back to a byte copy on any error.
func cloneFile(src, dst string) error {
	s, err := os.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o755)
	if err != nil {
		return err
	}
	if err := unix.IoctlFileClone(int(d.Fd()), int(s.Fd())); err != nil {
		d.Close()
		os.Remove(dst)
		return err
	}
	return d.Close()
}
