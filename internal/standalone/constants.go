// Package standalone implements the container format for module graphs
// embedded in the tail of a bunland standalone executable: the wire
// records, the encoder that lays a build's outputs into one contiguous
// buffer, and the decoder that turns that buffer back into an ordered
// module collection.
package standalone

// Trailer is the magic byte sequence written after the offsets record.
// Its absence from a file's tail means "not a standalone build", never
// corruption.
var Trailer = []byte(trailerText)

const trailerText = "\n---- bunland ----\n"

const (
	OffsetsSize = 32
	ModuleSize  = 28

	// TailSize is the fixed-size suffix every standalone executable
	// ends with: offsets record, trailer magic, and the 8-byte
	// total-byte-count anchor.
	TailSize = OffsetsSize + len(trailerText) + 8
)

// DefaultPrefix is prepended to embedded module paths so that graph
// names can never collide with real filesystem paths at runtime.
const DefaultPrefix = "/$bunland/root"
