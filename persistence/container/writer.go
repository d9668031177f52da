package container

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// Write serializes header followed by every chunk in chunks, in
// order, to w. The header's FileSize and Checksum fields are written
// verbatim (callers writing to a real file are expected to compute
// and set them first; stream writers may leave them zero per spec
// §4.6).
func Write(w io.Writer, header Header, chunks []Chunk) error {
	var hdr [HeaderSize]byte
	copy(hdr[0:4], magic)
	binary.LittleEndian.PutUint16(hdr[4:6], header.VersionMajor)
	binary.LittleEndian.PutUint16(hdr[6:8], header.VersionMinor)
	binary.LittleEndian.PutUint16(hdr[8:10], header.VersionPatch)
	binary.LittleEndian.PutUint64(hdr[12:20], header.FileSize)
	binary.LittleEndian.PutUint32(hdr[20:24], header.CompressionFlags)
	binary.LittleEndian.PutUint64(hdr[28:36], header.Checksum)
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	return WriteChunks(w, chunks)
}

// WriteChunks writes only the chunk stream (no header) to w, in
// order. Callers that need the header's FileSize/Checksum to reflect
// the chunk bytes (e.g. persistence.Manager) encode chunks first with
// this function, then call Write with a header populated from the
// result.
func WriteChunks(w io.Writer, chunks []Chunk) error {
	for _, c := range chunks {
		if err := writeChunk(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeChunk(w io.Writer, c Chunk) error {
	uncompressed := c.Uncompressed
	if uncompressed == 0 {
		uncompressed = uint32(len(c.Payload))
	}
	var prefix [16]byte
	copy(prefix[0:4], c.Tag[:])
	binary.LittleEndian.PutUint32(prefix[4:8], uint32(len(c.Payload)))
	binary.LittleEndian.PutUint32(prefix[8:12], uncompressed)
	binary.LittleEndian.PutUint32(prefix[12:16], crc32.ChecksumIEEE(c.Payload))
	if _, err := w.Write(prefix[:]); err != nil {
		return err
	}
	_, err := w.Write(c.Payload)
	return err
}
