package container

import "bytes"

// VoxelResolutionData is one resolution's set of occupied
// increment-space coordinates. The container package only knows
// integer triples, not the engine's coordinate newtypes, to avoid a
// dependency from persistence back onto the engine package.
type VoxelResolutionData struct {
	Resolution uint8
	Coords     [][3]int32
}

// VoxelData is the decoded payload of a VOXE chunk: per-resolution
// occupancy plus the workspace's active resolution at save time
// (spec §4.6 "VOXE ... implementer-defined").
type VoxelData struct {
	ActiveResolution uint8
	Resolutions      []VoxelResolutionData
}

// EncodeVoxelData serializes v to a VOXE chunk payload.
func EncodeVoxelData(v VoxelData) []byte {
	var buf bytes.Buffer
	buf.WriteByte(v.ActiveResolution)
	writeU32(&buf, uint32(len(v.Resolutions)))
	for _, r := range v.Resolutions {
		buf.WriteByte(r.Resolution)
		writeU32(&buf, uint32(len(r.Coords)))
		for _, c := range r.Coords {
			writeU32(&buf, uint32(int32(c[0])))
			writeU32(&buf, uint32(int32(c[1])))
			writeU32(&buf, uint32(int32(c[2])))
		}
	}
	return buf.Bytes()
}

// DecodeVoxelData parses a VOXE chunk payload.
func DecodeVoxelData(payload []byte) (VoxelData, error) {
	r := bytes.NewReader(payload)
	active, err := r.ReadByte()
	if err != nil {
		return VoxelData{}, err
	}
	resCount, err := readU32(r)
	if err != nil {
		return VoxelData{}, err
	}
	v := VoxelData{ActiveResolution: active, Resolutions: make([]VoxelResolutionData, 0, resCount)}
	for i := uint32(0); i < resCount; i++ {
		resByte, err := r.ReadByte()
		if err != nil {
			return VoxelData{}, err
		}
		coordCount, err := readU32(r)
		if err != nil {
			return VoxelData{}, err
		}
		coords := make([][3]int32, coordCount)
		for j := uint32(0); j < coordCount; j++ {
			x, err := readU32(r)
			if err != nil {
				return VoxelData{}, err
			}
			y, err := readU32(r)
			if err != nil {
				return VoxelData{}, err
			}
			z, err := readU32(r)
			if err != nil {
				return VoxelData{}, err
			}
			coords[j] = [3]int32{int32(x), int32(y), int32(z)}
		}
		v.Resolutions = append(v.Resolutions, VoxelResolutionData{Resolution: resByte, Coords: coords})
	}
	return v, nil
}
