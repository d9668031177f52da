package container

import (
	"bytes"
	"io"
)

// Custom is the decoded payload of a CUST chunk: an application-
// defined key plus an opaque byte blob (spec §4.6).
type Custom struct {
	Key   string
	Value []byte
}

// EncodeCustom serializes c to a CUST chunk payload.
func EncodeCustom(c Custom) []byte {
	var buf bytes.Buffer
	writeString(&buf, c.Key)
	writeU32(&buf, uint32(len(c.Value)))
	buf.Write(c.Value)
	return buf.Bytes()
}

// DecodeCustom parses a CUST chunk payload.
func DecodeCustom(payload []byte) (Custom, error) {
	r := bytes.NewReader(payload)
	key, err := readString(r)
	if err != nil {
		return Custom{}, err
	}
	n, err := readU32(r)
	if err != nil {
		return Custom{}, err
	}
	if n > maxStringLength {
		return Custom{}, ErrCorrupted
	}
	value := make([]byte, n)
	if _, err := io.ReadFull(r, value); err != nil {
		return Custom{}, err
	}
	return Custom{Key: key, Value: value}, nil
}
