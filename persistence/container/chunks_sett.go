package container

import "bytes"

// Settings is the decoded payload of a SETT chunk: workspace size,
// origin, default resolution, and display toggles (spec §4.6).
type Settings struct {
	Size              [3]float32
	Origin            [3]float32
	DefaultResolution uint8
	GridVisible       bool
	AxesVisible       bool
	BackgroundRGBA    [4]float32
}

// EncodeSettings serializes s to a SETT chunk payload.
func EncodeSettings(s Settings) []byte {
	var buf bytes.Buffer
	for _, v := range s.Size {
		writeF32(&buf, v)
	}
	for _, v := range s.Origin {
		writeF32(&buf, v)
	}
	buf.WriteByte(s.DefaultResolution)
	buf.WriteByte(boolByte(s.GridVisible))
	buf.WriteByte(boolByte(s.AxesVisible))
	for _, v := range s.BackgroundRGBA {
		writeF32(&buf, v)
	}
	return buf.Bytes()
}

// DecodeSettings parses a SETT chunk payload.
func DecodeSettings(payload []byte) (Settings, error) {
	r := bytes.NewReader(payload)
	var s Settings
	for i := range s.Size {
		v, err := readF32(r)
		if err != nil {
			return Settings{}, err
		}
		s.Size[i] = v
	}
	for i := range s.Origin {
		v, err := readF32(r)
		if err != nil {
			return Settings{}, err
		}
		s.Origin[i] = v
	}
	res, err := r.ReadByte()
	if err != nil {
		return Settings{}, err
	}
	s.DefaultResolution = res
	grid, err := r.ReadByte()
	if err != nil {
		return Settings{}, err
	}
	s.GridVisible = grid != 0
	axes, err := r.ReadByte()
	if err != nil {
		return Settings{}, err
	}
	s.AxesVisible = axes != 0
	for i := range s.BackgroundRGBA {
		v, err := readF32(r)
		if err != nil {
			return Settings{}, err
		}
		s.BackgroundRGBA[i] = v
	}
	return s, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
