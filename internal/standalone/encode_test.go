package standalone

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// decodeBlob splits an encoded buffer back into payload and offsets the
// way the executable reader would, then decodes it.
func decodeBlob(t *testing.T, blob []byte) *Graph {
	t.Helper()
	require.True(t, bytes.HasSuffix(blob, Trailer))

	offStart := len(blob) - len(Trailer) - OffsetsSize
	off, err := ReadOffsets(blob[offStart:])
	require.NoError(t, err)
	require.EqualValues(t, offStart, off.ByteCount)

	g, err := Decode(blob[:off.ByteCount], off)
	require.NoError(t, err)
	return g
}

func testOutputs() []Output {
	return []Output{
		{
			Path:           "app.js",
			Loader:         LoaderJS,
			Kind:           KindEntryPoint,
			Data:           []byte("import './lib/util.js';\nconsole.log('hi');\n"),
			SourcemapIndex: 1,
		},
		{
			Path:           "app.js.map",
			Loader:         LoaderJSON,
			Kind:           KindSourceMap,
			Data:           []byte(`{"version":3,"sources":["src/app.ts"],"names":[],"mappings":"AAAA"}`),
			SourcemapIndex: -1,
		},
		{
			Path:           "lib/util.js",
			Loader:         LoaderJS,
			Kind:           KindChunk,
			Data:           []byte("export const answer = 42;\n"),
			SourcemapIndex: -1,
		},
		{
			Path:           "assets/logo.bin",
			Loader:         LoaderFile,
			Kind:           KindAsset,
			Data:           []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01, 0x02},
			SourcemapIndex: -1,
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	outputs := testOutputs()
	blob, err := Encode(DefaultPrefix, outputs, "--smol --port 3000")
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	g := decodeBlob(t, blob)
	require.Equal(t, 3, g.Len())

	entry := g.EntryPoint()
	require.Equal(t, 0, g.EntryIndex())
	require.Equal(t, "/$bunland/root/app.js", entry.Name)
	require.Equal(t, LoaderJS, entry.Loader)
	require.Equal(t, outputs[0].Data, entry.Contents)
	require.True(t, entry.HasSourcemap())

	chunk := g.At(1)
	require.Equal(t, "/$bunland/root/lib/util.js", chunk.Name)
	require.Equal(t, outputs[2].Data, chunk.Contents)
	require.False(t, chunk.HasSourcemap())

	asset := g.At(2)
	require.Equal(t, LoaderFile, asset.Loader)
	require.Equal(t, outputs[3].Data, asset.Contents)

	require.Equal(t, "--smol --port 3000", g.ExecArgv())
	require.Zero(t, g.Flags())

	require.Same(t, entry, g.Find("/$bunland/root/app.js"))
	require.Nil(t, g.Find("/$bunland/root/missing.js"))
}

func TestEncodeEntryNotFirst(t *testing.T) {
	outputs := []Output{
		{Path: "chunk.js", Loader: LoaderJS, Kind: KindChunk, Data: []byte("a"), SourcemapIndex: -1},
		{Path: "main.js", Loader: LoaderJS, Kind: KindEntryPoint, Data: []byte("b"), SourcemapIndex: -1},
	}
	blob, err := Encode("/$bunland/root", outputs, "")
	require.NoError(t, err)

	g := decodeBlob(t, blob)
	require.Equal(t, 1, g.EntryIndex())
	require.Equal(t, "/$bunland/root/main.js", g.EntryPoint().Name)
	require.Empty(t, g.ExecArgv())
}

func TestEncodeOrderPreserved(t *testing.T) {
	var outputs []Output
	for i := 0; i < 9; i++ {
		kind := KindChunk
		if i == 4 {
			kind = KindEntryPoint
		}
		outputs = append(outputs, Output{
			Path:           fmt.Sprintf("chunk-%d.js", i),
			Loader:         LoaderJS,
			Kind:           kind,
			Data:           []byte{byte(i)},
			SourcemapIndex: -1,
		})
	}
	blob, err := Encode("", outputs, "")
	require.NoError(t, err)

	g := decodeBlob(t, blob)
	require.Equal(t, 9, g.Len())
	require.Equal(t, 4, g.EntryIndex())
	for i := 0; i < 9; i++ {
		require.Equal(t, fmt.Sprintf("chunk-%d.js", i), g.At(i).Name)
		require.Equal(t, []byte{byte(i)}, g.At(i).Contents)
	}
}

func TestEncodeNothingToEmbed(t *testing.T) {
	// No outputs at all.
	blob, err := Encode(DefaultPrefix, nil, "")
	require.NoError(t, err)
	require.Nil(t, blob)

	// Outputs but no entry point among them.
	blob, err = Encode(DefaultPrefix, []Output{
		{Path: "a.js", Loader: LoaderJS, Kind: KindChunk, Data: []byte("x"), SourcemapIndex: -1},
	}, "")
	require.NoError(t, err)
	require.Nil(t, blob)

	// An entry point that lives on disk instead of in memory.
	blob, err = Encode(DefaultPrefix, []Output{
		{Path: "a.js", Loader: LoaderJS, Kind: KindEntryPoint, Data: nil, SourcemapIndex: -1},
	}, "")
	require.NoError(t, err)
	require.Nil(t, blob)
}

func TestEncodeSkipsDisklessOutputs(t *testing.T) {
	outputs := []Output{
		{Path: "main.js", Loader: LoaderJS, Kind: KindEntryPoint, Data: []byte("x"), SourcemapIndex: -1},
		{Path: "huge.bin", Loader: LoaderFile, Kind: KindAsset, Data: nil, SourcemapIndex: -1},
	}
	blob, err := Encode(DefaultPrefix, outputs, "")
	require.NoError(t, err)

	g := decodeBlob(t, blob)
	require.Equal(t, 1, g.Len())
	require.Equal(t, "/$bunland/root/main.js", g.At(0).Name)
}

func TestEncodeEmptyContents(t *testing.T) {
	outputs := []Output{
		{Path: "empty.js", Loader: LoaderJS, Kind: KindEntryPoint, Data: []byte{}, SourcemapIndex: -1},
	}
	blob, err := Encode(DefaultPrefix, outputs, "")
	require.NoError(t, err)

	g := decodeBlob(t, blob)
	require.Equal(t, 1, g.Len())
	require.NotNil(t, g.At(0).Contents)
	require.Empty(t, g.At(0).Contents)
}

func TestDecodeEmptyBuffer(t *testing.T) {
	g, err := Decode(nil, Offsets{})
	require.NoError(t, err)
	require.Zero(t, g.Len())
	require.Nil(t, g.EntryPoint())
}

func TestDecodeEntryPointOutOfBounds(t *testing.T) {
	blob, err := Encode(DefaultPrefix, testOutputs(), "")
	require.NoError(t, err)

	offStart := len(blob) - len(Trailer) - OffsetsSize
	off, err := ReadOffsets(blob[offStart:])
	require.NoError(t, err)

	// Index equal to the module count is already out of bounds.
	off.EntryPointID = uint32(off.Modules.Length / ModuleSize)
	_, err = Decode(blob[:off.ByteCount], off)
	require.ErrorIs(t, err, ErrCorruptGraph)
}

func TestDecodeRecordArrayOutOfBounds(t *testing.T) {
	blob, err := Encode(DefaultPrefix, testOutputs(), "")
	require.NoError(t, err)

	offStart := len(blob) - len(Trailer) - OffsetsSize
	off, err := ReadOffsets(blob[offStart:])
	require.NoError(t, err)

	off.Modules.Offset = uint32(off.ByteCount)
	_, err = Decode(blob[:off.ByteCount], off)
	require.ErrorIs(t, err, ErrCorruptGraph)
}

func TestDecodeModulePointerOutOfBounds(t *testing.T) {
	// One module whose contents pointer reaches past the payload.
	m := Module{
		Name:     StringPointer{Offset: 0, Length: 4},
		Contents: StringPointer{Offset: 4, Length: 4096},
		Loader:   LoaderJS,
	}
	payload := []byte("name")
	payload = m.appendTo(payload)

	off := Offsets{
		ByteCount: uint64(len(payload)),
		Modules:   StringPointer{Offset: 4, Length: ModuleSize},
	}
	_, err := Decode(payload, off)
	require.ErrorIs(t, err, ErrCorruptGraph)
}
