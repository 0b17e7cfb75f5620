package standalone

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/s2"
)

// maxSourcemapSize caps how much memory a single sourcemap may claim to
// need. The size comes from an attacker-controllable header, so it is
// checked before allocating.
const maxSourcemapSize = 1 << 30

// SourceMap is a parsed v3 source-map document.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file,omitempty"`
	SourceRoot     string   `json:"sourceRoot,omitempty"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// ParseSourceMap decodes a raw source-map document.
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, fmt.Errorf("parsing sourcemap: %w", err)
	}
	if sm.Version != 3 {
		return nil, fmt.Errorf("unsupported sourcemap version %d", sm.Version)
	}
	return &sm, nil
}

// lazySourceMap holds a module's sourcemap in whichever of its two
// states it is in: still compressed inside the graph arena, or
// decompressed and parsed. The transition happens at most once and is
// never reversed.
type lazySourceMap struct {
	compressed []byte
	doc        *SourceMap
}

// HasSourcemap reports whether the module was bundled with a sourcemap.
func (f *File) HasSourcemap() bool {
	return f.sm.doc != nil || len(f.sm.compressed) > 0
}

// Sourcemap returns the module's parsed sourcemap, decompressing and
// parsing it on first use. Modules bundled without one return
// (nil, nil). On a decompression or parse failure the compressed state
// is left in place and the error is returned; the caller carries on
// without the map.
func (f *File) Sourcemap() (*SourceMap, error) {
	if f.sm.doc != nil {
		return f.sm.doc, nil
	}
	if len(f.sm.compressed) == 0 {
		return nil, nil
	}
	decompressed, err := f.decompressSourcemap()
	if err != nil {
		return nil, err
	}
	doc, err := ParseSourceMap(decompressed)
	if err != nil {
		return nil, fmt.Errorf("sourcemap for %s: %w", f.Name, err)
	}
	f.sm.doc = doc
	f.sm.compressed = nil
	return doc, nil
}

// SourcemapBytes decompresses the module's sourcemap and returns the
// document text exactly as it was bundled, without parsing it or
// advancing the lazy state. Modules bundled without one, and modules
// whose map Sourcemap has already consumed, return (nil, nil).
func (f *File) SourcemapBytes() ([]byte, error) {
	if len(f.sm.compressed) == 0 {
		return nil, nil
	}
	return f.decompressSourcemap()
}

// decompressSourcemap inflates the compressed view. The claimed size
// comes from an attacker-controllable header, so it is capped before
// allocating.
func (f *File) decompressSourcemap() ([]byte, error) {
	size, err := s2.DecodedLen(f.sm.compressed)
	if err != nil {
		return nil, fmt.Errorf("sourcemap for %s: reading decompressed size: %w", f.Name, err)
	}
	if size < 0 || size > maxSourcemapSize {
		return nil, fmt.Errorf("sourcemap for %s: implausible decompressed size %d", f.Name, size)
	}
	decompressed, err := s2.Decode(make([]byte, size), f.sm.compressed)
	if err != nil {
		return nil, fmt.Errorf("sourcemap for %s: %w", f.Name, err)
	}
	return decompressed, nil
}
