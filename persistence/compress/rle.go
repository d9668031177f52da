// Package compress implements the minimal RLE codec used by the state
// snapshot and container chunk payloads (spec §4.5.1).
//
// Grounded on original_source/core/file_io/src/Compression.cpp's
// runLengthEncode/runLengthDecode (the shipped C++ compressor is itself
// an RLE stub behind an LZ4-shaped interface — that interface shape,
// not the unimplemented LZ4 path, is what this package keeps).
package compress

// Compressor is the RLE codec contract shared by the snapshot and
// container layers.
type Compressor interface {
	Compress(input []byte) (output []byte, used bool)
	Decompress(input []byte, uncompressedSize int) []byte
}

type rle struct{}

// NewRLE returns the run-length-encoding Compressor.
func NewRLE() Compressor { return rle{} }

// Compress run-length-encodes input as pairs of (run_length u8,
// byte u8), runs capped at 255. used reports whether the encoded form
// is actually smaller than input; when it is not, output is nil and
// the caller should store input uncompressed (spec: "used only if it
// shrinks the payload").
func (rle) Compress(input []byte) ([]byte, bool) {
	if len(input) == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		v := input[i]
		count := 1
		for i+count < len(input) && count < 255 && input[i+count] == v {
			count++
		}
		out = append(out, byte(count), v)
		i += count
	}
	if len(out) >= len(input) {
		return nil, false
	}
	return out, true
}

// Decompress expands a buffer produced by Compress. uncompressedSize is
// an optional capacity hint (0 disables it); the result is always
// truncated/grown to exactly the decoded length regardless of the
// hint.
func (rle) Decompress(input []byte, uncompressedSize int) []byte {
	if uncompressedSize <= 0 {
		uncompressedSize = len(input) * 2
	}
	out := make([]byte, 0, uncompressedSize)
	for i := 0; i+1 < len(input); i += 2 {
		count := input[i]
		v := input[i+1]
		for j := byte(0); j < count; j++ {
			out = append(out, v)
		}
	}
	return out
}

// IsCompressed reports true when re-running Compress on candidate
// would not shrink it, or when candidate is no longer than original.
// It backs the idempotent-compression flag the spec requires:
// compressing an already-RLE-encoded buffer must not compress it
// again. Callers track this with an explicit flag rather than content
// sniffing; this helper exists for tests that want to double check
// idempotence empirically.
func IsCompressed(original, candidate []byte) bool {
	c := rle{}
	_, used := c.Compress(candidate)
	return !used || len(candidate) <= len(original)
}
