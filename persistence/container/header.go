// Package container implements the chunked binary file format of spec
// §4.6: a fixed 256-byte header followed by a sequence of typed,
// CRC-32-checked chunks.
//
// Grounded on the teacher's vox.go LoadVoxFile chunk-reading loop
// (magic check, then a `for { chunkID; chunkSize; ...}` scan) and its
// length-prefixed string/dict parsing (parseDICT), re-targeted at this
// format's fixed header and checksum discipline — the VOX format this
// was lifted from has neither.
package container

import "fmt"

const (
	magic = "CVEF"

	// HeaderSize is the fixed on-disk size of Header.
	HeaderSize = 256

	currentVersionMajor = 1
	currentVersionMinor = 0
	currentVersionPatch = 0
)

// Header is the container's fixed 256-byte preamble.
type Header struct {
	VersionMajor     uint16
	VersionMinor     uint16
	VersionPatch     uint16
	FileSize         uint64 // may be 0 for stream writes
	CompressionFlags uint32 // bit 0 = chunks are individually compressed
	Checksum         uint64 // may be 0 for stream writes
}

const compressionFlagChunksCompressed = 1 << 0

// CurrentHeader returns a Header stamped with this package's current
// write version (1.0.0) and no compression/checksum set.
func CurrentHeader() Header {
	return Header{
		VersionMajor: currentVersionMajor,
		VersionMinor: currentVersionMinor,
		VersionPatch: currentVersionPatch,
	}
}

// ChunksCompressed reports whether h's compression_flags bit 0 is set.
func (h Header) ChunksCompressed() bool {
	return h.CompressionFlags&compressionFlagChunksCompressed != 0
}

// WithChunksCompressed returns a copy of h with compression_flags bit
// 0 set or cleared.
func (h Header) WithChunksCompressed(v bool) Header {
	if v {
		h.CompressionFlags |= compressionFlagChunksCompressed
	} else {
		h.CompressionFlags &^= compressionFlagChunksCompressed
	}
	return h
}

// Valid reports whether h could plausibly have come from this
// package's Header layout (spec "Validity": magic equal, major > 0).
// Magic isn't stored on Header itself (Reader checks it directly off
// the wire); Valid only checks the version field.
func (h Header) Valid() bool {
	return h.VersionMajor > 0
}

// Compatible reports whether a file written with h's version can be
// read by a reader that currently writes `current` (spec §4.6
// Versioning: major must match exactly, minor may be less than or
// equal).
func (h Header) Compatible(current Header) bool {
	return h.VersionMajor == current.VersionMajor && h.VersionMinor <= current.VersionMinor
}

func (h Header) String() string {
	return fmt.Sprintf("CVEF v%d.%d.%d", h.VersionMajor, h.VersionMinor, h.VersionPatch)
}
