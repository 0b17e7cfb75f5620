package standalone

import (
	"fmt"
	"math"
	"path"

	"github.com/klauspost/compress/s2"
)

// OutputKind classifies a build output for embedding purposes.
type OutputKind uint8

const (
	KindEntryPoint OutputKind = iota
	KindChunk
	KindAsset
	KindSourceMap
)

// Output is one build artifact handed to Encode. Outputs with nil Data
// are backed by files on disk rather than memory and are skipped.
type Output struct {
	Path   string
	Loader Loader
	Kind   OutputKind
	Data   []byte

	// SourcemapIndex links a module to its companion sourcemap within
	// the same slice; -1 when it has none.
	SourcemapIndex int
}

// Encode lays the outputs into a single embeddable buffer: each
// buffer-backed, non-sourcemap output's prefixed name and contents,
// companion sourcemaps compressed in place, then the record array, the
// offsets record and the trailer magic. Offsets in the result are
// relative to its own start, so the buffer can be appended to any
// executable unchanged.
//
// Encode returns (nil, nil) when there is nothing to embed: no
// buffer-backed outputs, or none of them flagged as the entry point.
func Encode(prefix string, outputs []Output, execArgv string) ([]byte, error) {
	var (
		textBytes int
		mapBound  int
		records   int
		hasEntry  bool
	)
	for _, out := range outputs {
		if out.Data == nil {
			continue
		}
		textBytes += len(prefix) + 1 + len(out.Path)
		if out.Kind == KindSourceMap {
			bound := s2.MaxEncodedLen(len(out.Data))
			if bound < 0 {
				return nil, fmt.Errorf("sourcemap %s too large to compress (%d bytes)", out.Path, len(out.Data))
			}
			mapBound += bound
			continue
		}
		textBytes += len(out.Data)
		if out.Kind == KindEntryPoint {
			hasEntry = true
		}
		records++
	}
	if records == 0 || !hasEntry {
		return nil, nil
	}

	// Worst-case size of everything, compressed sourcemaps included.
	// Compression happens directly into this buffer's spare capacity,
	// so the reservation must never be undershot.
	reserve := textBytes + mapBound + len(execArgv) +
		records*ModuleSize + OffsetsSize + len(Trailer)
	if uint64(reserve) > math.MaxUint32 {
		return nil, fmt.Errorf("module graph too large to embed (%d bytes)", reserve)
	}
	buf := make([]byte, 0, reserve)

	var (
		modules  = make([]Module, 0, records)
		entryID  uint32
		entrySet bool
	)
	for _, out := range outputs {
		if out.Data == nil || out.Kind == KindSourceMap {
			continue
		}
		m := Module{Loader: out.Loader}

		name := path.Join(prefix, out.Path)
		m.Name = StringPointer{Offset: uint32(len(buf)), Length: uint32(len(name))}
		buf = append(buf, name...)

		m.Contents = StringPointer{Offset: uint32(len(buf)), Length: uint32(len(out.Data))}
		buf = append(buf, out.Data...)

		if sm := companionSourcemap(outputs, out.SourcemapIndex); sm != nil {
			ptr, grown, err := compressInto(buf, sm.Data)
			if err != nil {
				return nil, fmt.Errorf("packing sourcemap for %s: %w", out.Path, err)
			}
			m.SourceMap = ptr
			buf = grown
		}

		if out.Kind == KindEntryPoint && !entrySet {
			entryID = uint32(len(modules))
			entrySet = true
		}
		modules = append(modules, m)
	}

	var argvPtr StringPointer
	if execArgv != "" {
		argvPtr = StringPointer{Offset: uint32(len(buf)), Length: uint32(len(execArgv))}
		buf = append(buf, execArgv...)
	}

	modulesPtr := StringPointer{Offset: uint32(len(buf)), Length: uint32(len(modules) * ModuleSize)}
	for _, m := range modules {
		buf = m.appendTo(buf)
	}

	off := Offsets{
		ByteCount:    uint64(len(buf)),
		Modules:      modulesPtr,
		EntryPointID: entryID,
		ExecArgv:     argvPtr,
	}
	buf = off.appendTo(buf)
	buf = append(buf, Trailer...)
	return buf, nil
}

func companionSourcemap(outputs []Output, idx int) *Output {
	if idx < 0 || idx >= len(outputs) {
		return nil
	}
	sm := &outputs[idx]
	if sm.Kind != KindSourceMap || sm.Data == nil {
		return nil
	}
	return sm
}

// compressInto compresses src into buf's unused tail capacity and
// extends buf over the written bytes. The caller reserved MaxEncodedLen
// headroom for every sourcemap up front, so running out of capacity
// means the reservation accounting is broken and the encode must abort.
func compressInto(buf []byte, src []byte) (StringPointer, []byte, error) {
	bound := s2.MaxEncodedLen(len(src))
	if bound < 0 || cap(buf)-len(buf) < bound {
		return StringPointer{}, buf, fmt.Errorf("compression headroom exhausted: need %d, have %d", bound, cap(buf)-len(buf))
	}
	enc := s2.EncodeBetter(buf[len(buf):cap(buf)], src)
	ptr := StringPointer{Offset: uint32(len(buf)), Length: uint32(len(enc))}
	return ptr, buf[:len(buf)+len(enc)], nil
}
