package standalone

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// StringPointer addresses a byte range inside the shared payload buffer.
// It never owns memory; resolving it against a buffer other than the one
// it was encoded for yields garbage or nil.
//
// Layout (little-endian):
//
//	offset: u32 (4 bytes)
//	length: u32 (4 bytes)
//
// Total: 8 bytes
type StringPointer struct {
	Offset uint32
	Length uint32
}

// Read resolves the pointer against blob. A zero-length pointer resolves
// to an empty slice regardless of its offset; a pointer reaching past
// the end of blob resolves to nil. The sum is taken in 64 bits so a
// hostile offset cannot wrap.
func (sp StringPointer) Read(blob []byte) []byte {
	if sp.Length == 0 {
		return []byte{}
	}
	end := uint64(sp.Offset) + uint64(sp.Length)
	if end > uint64(len(blob)) {
		return nil
	}
	return blob[sp.Offset:end]
}

// Offsets is the 32-byte record sitting immediately before the trailer
// magic. It is the root of the graph: everything else is reached through
// its pointers.
//
// Layout (little-endian):
//
//	byte_count:           u64 (8 bytes)  payload size, record array included
//	modules_ptr.offset:   u32 (4 bytes)
//	modules_ptr.length:   u32 (4 bytes)
//	entry_point_id:       u32 (4 bytes)  index into the record array
//	exec_argv_ptr.offset: u32 (4 bytes)
//	exec_argv_ptr.length: u32 (4 bytes)
//	flags:                u32 (4 bytes)  reserved, written as zero
//
// Total: 32 bytes
type Offsets struct {
	ByteCount    uint64
	Modules      StringPointer
	EntryPointID uint32
	ExecArgv     StringPointer
	Flags        uint32
}

// wireOffsets mirrors the on-disk layout for binary.Read.
type wireOffsets struct {
	ByteCount    uint64
	ModOff       uint32
	ModLen       uint32
	EntryPointID uint32
	ArgvOff      uint32
	ArgvLen      uint32
	Flags        uint32
}

// ReadOffsets deserializes a 32-byte offsets record.
func ReadOffsets(data []byte) (Offsets, error) {
	if len(data) < OffsetsSize {
		return Offsets{}, fmt.Errorf("offsets record too short: %d bytes, need %d", len(data), OffsetsSize)
	}
	var w wireOffsets
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &w); err != nil {
		return Offsets{}, fmt.Errorf("parsing offsets record: %w", err)
	}
	return Offsets{
		ByteCount:    w.ByteCount,
		Modules:      StringPointer{Offset: w.ModOff, Length: w.ModLen},
		EntryPointID: w.EntryPointID,
		ExecArgv:     StringPointer{Offset: w.ArgvOff, Length: w.ArgvLen},
		Flags:        w.Flags,
	}, nil
}

// appendTo serializes the record in wire layout onto b.
func (o Offsets) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint64(b, o.ByteCount)
	b = binary.LittleEndian.AppendUint32(b, o.Modules.Offset)
	b = binary.LittleEndian.AppendUint32(b, o.Modules.Length)
	b = binary.LittleEndian.AppendUint32(b, o.EntryPointID)
	b = binary.LittleEndian.AppendUint32(b, o.ExecArgv.Offset)
	b = binary.LittleEndian.AppendUint32(b, o.ExecArgv.Length)
	b = binary.LittleEndian.AppendUint32(b, o.Flags)
	return b
}

// Module is one 28-byte entry of the record array.
//
// Layout (little-endian):
//
//	name_ptr:      StringPointer (8 bytes)
//	contents_ptr:  StringPointer (8 bytes)
//	sourcemap_ptr: StringPointer (8 bytes)  zero length when absent
//	loader:        u8            (1 byte)
//	reserved:      3 bytes, written as zero
//
// Total: 28 bytes
type Module struct {
	Name      StringPointer
	Contents  StringPointer
	SourceMap StringPointer
	Loader    Loader
}

// wireModule mirrors the on-disk layout for binary.Read.
type wireModule struct {
	NameOff     uint32
	NameLen     uint32
	ContentsOff uint32
	ContentsLen uint32
	MapOff      uint32
	MapLen      uint32
	Loader      uint8
	Reserved    [3]uint8
}

// ReadModule deserializes one 28-byte module record.
func ReadModule(data []byte) (Module, error) {
	if len(data) < ModuleSize {
		return Module{}, fmt.Errorf("module record too short: %d bytes, need %d", len(data), ModuleSize)
	}
	var w wireModule
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &w); err != nil {
		return Module{}, fmt.Errorf("parsing module record: %w", err)
	}
	return Module{
		Name:      StringPointer{Offset: w.NameOff, Length: w.NameLen},
		Contents:  StringPointer{Offset: w.ContentsOff, Length: w.ContentsLen},
		SourceMap: StringPointer{Offset: w.MapOff, Length: w.MapLen},
		Loader:    Loader(w.Loader),
	}, nil
}

// appendTo serializes the record in wire layout onto b.
func (m Module) appendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, m.Name.Offset)
	b = binary.LittleEndian.AppendUint32(b, m.Name.Length)
	b = binary.LittleEndian.AppendUint32(b, m.Contents.Offset)
	b = binary.LittleEndian.AppendUint32(b, m.Contents.Length)
	b = binary.LittleEndian.AppendUint32(b, m.SourceMap.Offset)
	b = binary.LittleEndian.AppendUint32(b, m.SourceMap.Length)
	b = append(b, byte(m.Loader), 0, 0, 0)
	return b
}
