//go:build darwin

package exeio

import "golang.org/x/sys/unix"

// cloneFile makes a copy-on-write clone of src at dst with
// clonefile(2). APFS supports it everywhere bunland runs on macOS;
// callers fall back to a byte copy on any error. dst must not exist.
func cloneFile(src, dst string) error {
	return unix.Clonefile(src, dst, 0)
}
