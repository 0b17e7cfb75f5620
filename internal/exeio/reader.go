// Package exeio reads and writes module graphs in the tail of
// executables: locating the running binary, cloning it, appending an
// encoded graph, and walking a file's tail backwards to load one.
package exeio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/vitalspace/bunland/internal/standalone"
)

// tailWindow is how much of a file's tail the first read covers. The
// page of padding written by Inject guarantees the appended region of
// a genuine standalone build is at least this large, so the window
// always contains the anchor, the magic and the offsets record.
const tailWindow = 4096

// Executable describes one opened standalone build.
type Executable struct {
	Path           string
	FileSize       int64
	TotalByteCount uint64
	Offsets        standalone.Offsets
	PayloadStart   int64
	Graph          *standalone.Graph
}

// FromSelf decodes the module graph embedded in the running
// executable. It returns (nil, nil) when this process is the bunland
// launcher itself, when the executable cannot be located or read, or
// when it carries no graph; the caller then proceeds as a plain tool
// start. Only a matched magic with inconsistent structure underneath
// is an error.
func FromSelf() (*standalone.Graph, error) {
	if InvokedAsLauncher() {
		return nil, nil
	}
	self, err := SelfPath()
	if err != nil {
		return nil, nil
	}
	exe, err := Open(self)
	if err != nil {
		if errors.Is(err, standalone.ErrCorruptGraph) {
			return nil, err
		}
		return nil, nil
	}
	if exe == nil {
		return nil, nil
	}
	return exe.Graph, nil
}

// Open walks the tail of the file at path and decodes the embedded
// module graph. It returns (nil, nil) when the file is not a
// standalone build: too short, implausible anchor, or no trailer
// magic. At most two reads are issued, the fixed tail window plus one
// exact payload read for payloads larger than the window.
func Open(path string) (*Executable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("sizing %s: %w", path, err)
	}
	size := info.Size()
	if size < int64(standalone.TailSize) {
		return nil, nil
	}

	w := int64(tailWindow)
	if w > size {
		w = size
	}
	window := make([]byte, w)
	if _, err := f.ReadAt(window, size-w); err != nil {
		return nil, fmt.Errorf("reading tail of %s: %w", path, err)
	}

	// The last 8 bytes of a standalone build hold its own total size.
	total := binary.LittleEndian.Uint64(window[w-8:])
	if total < uint64(w) || total > uint64(size) {
		return nil, nil
	}

	magicStart := w - 8 - int64(len(standalone.Trailer))
	if !bytes.Equal(window[magicStart:w-8], standalone.Trailer) {
		return nil, nil
	}

	// From here on the file has vouched for itself; structural
	// problems are corruption, not absence.
	off, err := standalone.ReadOffsets(window[magicStart-standalone.OffsetsSize : magicStart])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", standalone.ErrCorruptGraph, err)
	}

	payloadEnd := size - int64(standalone.TailSize)
	if off.ByteCount > uint64(payloadEnd) {
		return nil, fmt.Errorf("%w: %d-byte payload cannot fit a %d-byte file",
			standalone.ErrCorruptGraph, off.ByteCount, size)
	}

	payload := make([]byte, off.ByteCount)
	payloadStart := payloadEnd - int64(off.ByteCount)
	if windowStart := size - w; payloadStart >= windowStart {
		copy(payload, window[payloadStart-windowStart:])
	} else if _, err := f.ReadAt(payload, payloadStart); err != nil {
		return nil, fmt.Errorf("reading module graph of %s: %w", path, err)
	}

	g, err := standalone.Decode(payload, off)
	if err != nil {
		return nil, err
	}
	return &Executable{
		Path:           path,
		FileSize:       size,
		TotalByteCount: total,
		Offsets:        off,
		PayloadStart:   payloadStart,
		Graph:          g,
	}, nil
}
