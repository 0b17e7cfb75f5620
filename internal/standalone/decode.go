package standalone

import (
	"errors"
	"fmt"
)

// ErrCorruptGraph reports a structurally inconsistent module graph: the
// trailer magic matched but the records behind it contradict themselves.
var ErrCorruptGraph = errors.New("corrupted module graph")

// File is one decoded module. Name and Contents alias the graph's
// backing buffer and stay valid for as long as the graph is held.
type File struct {
	Name     string
	Loader   Loader
	Contents []byte

	sm lazySourceMap
}

// Graph is a decoded module collection. Files keep their record order;
// the entry point addresses that order by position.
type Graph struct {
	arena    []byte
	files    []*File
	records  []Module
	byName   map[string]int
	entry    int
	execArgv string
	flags    uint32
}

// Decode reconstructs the module collection from a payload buffer and
// its offsets record. Every resolved pointer is bounds-checked against
// the buffer; anything out of range is corruption, since the magic has
// already vouched for the structure. An empty buffer decodes to an
// empty collection.
func Decode(blob []byte, off Offsets) (*Graph, error) {
	g := &Graph{arena: blob, byName: make(map[string]int)}
	if len(blob) == 0 {
		return g, nil
	}

	recordBytes := off.Modules.Read(blob)
	if recordBytes == nil {
		return nil, fmt.Errorf("%w: record array %d+%d outside %d-byte payload",
			ErrCorruptGraph, off.Modules.Offset, off.Modules.Length, len(blob))
	}
	count := len(recordBytes) / ModuleSize
	if uint64(off.EntryPointID) >= uint64(count) {
		return nil, fmt.Errorf("%w: entry point %d with %d modules", ErrCorruptGraph, off.EntryPointID, count)
	}

	g.files = make([]*File, 0, count)
	g.records = make([]Module, 0, count)
	for i := 0; i < count; i++ {
		m, err := ReadModule(recordBytes[i*ModuleSize:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptGraph, err)
		}
		name := m.Name.Read(blob)
		contents := m.Contents.Read(blob)
		compressed := m.SourceMap.Read(blob)
		if name == nil || contents == nil || compressed == nil {
			return nil, fmt.Errorf("%w: module %d points outside the payload", ErrCorruptGraph, i)
		}
		f := &File{
			Name:     string(name),
			Loader:   m.Loader,
			Contents: contents,
			sm:       lazySourceMap{compressed: compressed},
		}
		g.records = append(g.records, m)
		if _, dup := g.byName[f.Name]; !dup {
			g.byName[f.Name] = len(g.files)
		}
		g.files = append(g.files, f)
	}

	argv := off.ExecArgv.Read(blob)
	if argv == nil {
		return nil, fmt.Errorf("%w: exec argv points outside the payload", ErrCorruptGraph)
	}
	g.entry = int(off.EntryPointID)
	g.execArgv = string(argv)
	g.flags = off.Flags
	return g, nil
}

// Len returns the number of modules in the collection.
func (g *Graph) Len() int { return len(g.files) }

// At returns the i-th module in record order.
func (g *Graph) At(i int) *File { return g.files[i] }

// Find looks a module up by its full embedded name, prefix included.
// Duplicate names resolve to the earliest record; unknown names return
// nil.
func (g *Graph) Find(name string) *File {
	if i, ok := g.byName[name]; ok {
		return g.files[i]
	}
	return nil
}

// EntryPoint returns the module the executable starts from, or nil for
// an empty collection.
func (g *Graph) EntryPoint() *File {
	if len(g.files) == 0 {
		return nil
	}
	return g.files[g.entry]
}

// EntryIndex returns the entry point's position in record order.
func (g *Graph) EntryIndex() int { return g.entry }

// Record returns the raw wire record of the i-th module.
func (g *Graph) Record(i int) Module { return g.records[i] }

// ExecArgv returns the argument string baked in at bundle time, empty
// when none was.
func (g *Graph) ExecArgv() string { return g.execArgv }

// Flags returns the offsets record's flags word.
func (g *Graph) Flags() uint32 { return g.flags }
