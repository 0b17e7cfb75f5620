package exeio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/xyproto/env/v2"

	"github.com/vitalspace/bunland/internal/standalone"
)

// pagePadding separates the original executable image from the
// embedded payload. It keeps the payload page-aligned and guarantees
// the reader's fixed tail window never reaches back into the image.
const pagePadding = 4096

// Inject appends blob to a private copy of the running executable and
// renames the finished copy to outDir/outName, mode 0755. An empty
// blob is a no-op. All mutation happens on the scratch copy; the
// destination path only ever sees the complete file.
func Inject(blob []byte, outDir, outName string) (string, error) {
	if len(blob) == 0 {
		return "", nil
	}

	self, err := SelfPath()
	if err != nil {
		return "", fmt.Errorf("locating running executable: %w", err)
	}

	scratch := scratchPath(outName)
	if err := cloneFile(self, scratch); err != nil {
		if err := copyFile(self, scratch); err != nil {
			return "", fmt.Errorf("copying %s: %w", self, err)
		}
	}

	if err := appendBlob(scratch, blob); err != nil {
		os.Remove(scratch)
		return "", err
	}
	stripSignature(scratch)

	dest := filepath.Join(outDir, outName)
	if err := os.Rename(scratch, dest); err != nil {
		os.Remove(scratch)
		return "", fmt.Errorf("moving standalone executable into place: %w", err)
	}
	return dest, nil
}

// ToExecutable encodes outputs and embeds the result in a copy of the
// running executable. It returns the destination path, or "" when the
// outputs contain nothing to embed.
func ToExecutable(outputs []standalone.Output, prefix, execArgv, outDir, outName string) (string, error) {
	blob, err := standalone.Encode(prefix, outputs, execArgv)
	if err != nil {
		return "", err
	}
	if len(blob) == 0 {
		return "", nil
	}
	return Inject(blob, outDir, outName)
}

// appendBlob grows the file to its final size, then writes the payload
// and the trailing total-byte-count anchor.
func appendBlob(path string, blob []byte) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("opening scratch copy: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("sizing scratch copy: %w", err)
	}

	total := info.Size() + pagePadding + int64(len(blob)) + 8
	if err := f.Truncate(total); err != nil {
		return fmt.Errorf("growing scratch copy to %d bytes: %w", total, err)
	}
	if _, err := f.WriteAt(blob, total-int64(len(blob))-8); err != nil {
		return fmt.Errorf("writing module graph: %w", err)
	}

	var anchor [8]byte
	binary.LittleEndian.PutUint64(anchor[:], uint64(total))
	if _, err := f.WriteAt(anchor[:], total-8); err != nil {
		return fmt.Errorf("writing size anchor: %w", err)
	}

	if err := f.Chmod(0o755); err != nil {
		return fmt.Errorf("marking scratch copy executable: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing scratch copy: %w", err)
	}
	return nil
}

// scratchPath picks a unique file name in the scratch directory.
// BUNLAND_TMPDIR overrides the platform default, typically to keep the
// scratch copy on the destination volume so the final rename stays
// atomic.
func scratchPath(outName string) string {
	dir := env.Str("BUNLAND_TMPDIR", os.TempDir())
	seed := fmt.Sprintf("%s-%d-%d", outName, os.Getpid(), time.Now().UnixNano())
	return filepath.Join(dir, fmt.Sprintf(".bunland-%016x", murmur3.Sum64([]byte(seed))))
}

func copyFile(src, dst string) error {
	s, err := os.Open(src)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(d, s); err != nil {
		d.Close()
		os.Remove(dst)
		return err
	}
	if err := d.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
