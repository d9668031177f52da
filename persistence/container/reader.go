package container

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// ErrCorrupted is returned (wrapped with context) when a chunk's CRC
// does not match its payload, or the file otherwise fails to parse as
// a well-formed container.
var ErrCorrupted = fmt.Errorf("corrupted container data")

// maxChunkPayload is the largest payload readChunk will allocate for,
// per spec: a larger declared size is treated as corrupted data rather
// than an attempt to allocate on the reader's behalf.
const maxChunkPayload = 100 << 20

// ReadHeader reads and validates the fixed 256-byte header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Header{}, fmt.Errorf("read header: %w", err)
	}
	if string(hdr[0:4]) != magic {
		return Header{}, fmt.Errorf("%w: bad magic", ErrCorrupted)
	}
	h := Header{
		VersionMajor:     binary.LittleEndian.Uint16(hdr[4:6]),
		VersionMinor:     binary.LittleEndian.Uint16(hdr[6:8]),
		VersionPatch:     binary.LittleEndian.Uint16(hdr[8:10]),
		FileSize:         binary.LittleEndian.Uint64(hdr[12:20]),
		CompressionFlags: binary.LittleEndian.Uint32(hdr[20:24]),
		Checksum:         binary.LittleEndian.Uint64(hdr[28:36]),
	}
	if !h.Valid() {
		return Header{}, fmt.Errorf("%w: version.major must be > 0", ErrCorrupted)
	}
	return h, nil
}

// ReadChunks reads every chunk from r until EOF. Unknown chunk tags
// are retained in the result (spec: "skipped" refers to interpretation
// by higher layers, not omission here — callers ignore tags they don't
// recognize). A chunk whose CRC does not match its payload returns
// ErrCorrupted.
func ReadChunks(r io.Reader) ([]Chunk, error) {
	var chunks []Chunk
	for {
		c, err := readChunk(r)
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
}

func readChunk(r io.Reader) (Chunk, error) {
	var prefix [16]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return Chunk{}, fmt.Errorf("%w: truncated chunk header", ErrCorrupted)
		}
		return Chunk{}, err
	}
	var tag Tag
	copy(tag[:], prefix[0:4])
	size := binary.LittleEndian.Uint32(prefix[4:8])
	uncompressed := binary.LittleEndian.Uint32(prefix[8:12])
	checksum := binary.LittleEndian.Uint32(prefix[12:16])
	if size > maxChunkPayload {
		return Chunk{}, fmt.Errorf("%w: chunk %s payload of %d bytes exceeds %d byte maximum", ErrCorrupted, tag, size, maxChunkPayload)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Chunk{}, fmt.Errorf("%w: truncated chunk payload for %s", ErrCorrupted, tag)
	}
	if crc32.ChecksumIEEE(payload) != checksum {
		return Chunk{}, fmt.Errorf("%w: checksum mismatch for chunk %s", ErrCorrupted, tag)
	}
	return Chunk{Tag: tag, Payload: payload, Uncompressed: uncompressed}, nil
}

// Find returns the first chunk with the given tag, or false if none
// is present.
func Find(chunks []Chunk, tag Tag) (Chunk, bool) {
	for _, c := range chunks {
		if c.Tag == tag {
			return c, true
		}
	}
	return Chunk{}, false
}
