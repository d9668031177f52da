package container

import "bytes"

// Metadata is the decoded payload of a META chunk (spec §4.6).
type Metadata struct {
	Name               string
	Description        string
	Author             string
	CreatedSeconds     uint64
	ModifiedSeconds    uint64
	Application        string
	ApplicationVersion string
	Custom             map[string]string
}

// EncodeMetadata serializes m to a META chunk payload.
func EncodeMetadata(m Metadata) []byte {
	var buf bytes.Buffer
	writeString(&buf, m.Name)
	writeString(&buf, m.Description)
	writeString(&buf, m.Author)
	writeU64(&buf, m.CreatedSeconds)
	writeU64(&buf, m.ModifiedSeconds)
	writeString(&buf, m.Application)
	writeString(&buf, m.ApplicationVersion)
	writeU32(&buf, uint32(len(m.Custom)))
	for k, v := range m.Custom {
		writeString(&buf, k)
		writeString(&buf, v)
	}
	return buf.Bytes()
}

// DecodeMetadata parses a META chunk payload.
func DecodeMetadata(payload []byte) (Metadata, error) {
	r := bytes.NewReader(payload)
	m := Metadata{Custom: make(map[string]string)}
	var err error
	if m.Name, err = readString(r); err != nil {
		return Metadata{}, err
	}
	if m.Description, err = readString(r); err != nil {
		return Metadata{}, err
	}
	if m.Author, err = readString(r); err != nil {
		return Metadata{}, err
	}
	if m.CreatedSeconds, err = readU64(r); err != nil {
		return Metadata{}, err
	}
	if m.ModifiedSeconds, err = readU64(r); err != nil {
		return Metadata{}, err
	}
	if m.Application, err = readString(r); err != nil {
		return Metadata{}, err
	}
	if m.ApplicationVersion, err = readString(r); err != nil {
		return Metadata{}, err
	}
	count, err := readU32(r)
	if err != nil {
		return Metadata{}, err
	}
	for i := uint32(0); i < count; i++ {
		k, err := readString(r)
		if err != nil {
			return Metadata{}, err
		}
		v, err := readString(r)
		if err != nil {
			return Metadata{}, err
		}
		m.Custom[k] = v
	}
	return m, nil
}
