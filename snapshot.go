package voxforge

import (
	"bytes"
	"fmt"
	"io"

	"github.com/voxforge/voxforge/persistence/compress"
)

const (
	snapshotMagic   = "SNAP"
	snapshotVersion = uint32(1)

	snapshotFlagVoxels     = 1 << 0
	snapshotFlagSelections = 1 << 1
	snapshotFlagCamera     = 1 << 2
	snapshotFlagRender     = 1 << 3
	snapshotFlagCompressed = 1 << 4
)

// Snapshot is a point-in-time capture of the full core state (spec
// §4.5): voxel occupancy across every resolution, the active
// resolution, and opaque selection/camera/render blobs owned by their
// respective subsystems.
type Snapshot struct {
	Description string
	Timestamp   int64

	Voxels           [resolutionCount][]Increment
	ActiveResolution Resolution

	Selections []byte
	Camera     []byte
	Render     []byte

	HasSelections bool
	HasCamera     bool
	HasRender     bool
}

// CaptureSnapshot reads every occupied voxel out of e (without
// mutating it) and assembles a Snapshot. selections/camera/render are
// opaque blobs owned by subsystems outside this package; pass nil to
// omit a section.
func CaptureSnapshot(e *Engine, description string, timestampSeconds int64, selections, camera, render []byte) *Snapshot {
	s := &Snapshot{
		Description:      description,
		Timestamp:        timestampSeconds,
		ActiveResolution: e.ActiveResolution(),
		Selections:       selections,
		Camera:           camera,
		Render:           render,
		HasSelections:    selections != nil,
		HasCamera:        camera != nil,
		HasRender:        render != nil,
	}
	for _, r := range AllResolutions {
		s.Voxels[r] = e.voxelCoords(r)
	}
	return s
}

// voxelCoords returns every occupied increment position at res.
func (e *Engine) voxelCoords(res Resolution) []Increment {
	voxels := e.AllVoxels(res)
	out := make([]Increment, len(voxels))
	for i, v := range voxels {
		out[i] = v.Position
	}
	return out
}

// RestoreInto clears every octree in e, sets the active resolution,
// and replays every captured voxel (spec §4.5 Restore). Camera/render
// blobs are not applied: they stay in s.Camera and s.Render for the
// caller to hand to the owning subsystems; this package has no
// knowledge of their contents.
func (s *Snapshot) RestoreInto(e *Engine) {
	e.ClearAll()
	e.SetActiveResolution(s.ActiveResolution)
	for res, coords := range s.Voxels {
		for _, pos := range coords {
			e.Set(pos, Resolution(res), true)
		}
	}
}

// voxelStream encodes the voxel section per spec §4.5 Capture: for
// each resolution, (tag u8, count u32, then count × i32×3 increment
// coordinates).
func (s *Snapshot) voxelStream() []byte {
	var buf bytes.Buffer
	for res, coords := range s.Voxels {
		buf.WriteByte(byte(res))
		writeU32(&buf, uint32(len(coords)))
		for _, c := range coords {
			writeI32(&buf, c.X)
			writeI32(&buf, c.Y)
			writeI32(&buf, c.Z)
		}
	}
	buf.WriteByte(byte(s.ActiveResolution))
	return buf.Bytes()
}

func decodeVoxelStream(data []byte, s *Snapshot) error {
	r := bytes.NewReader(data)
	for i := 0; i < resolutionCount; i++ {
		tag, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("voxel stream: read resolution tag: %w", err)
		}
		count, err := readU32(r)
		if err != nil {
			return fmt.Errorf("voxel stream: read count: %w", err)
		}
		coords := make([]Increment, count)
		for j := uint32(0); j < count; j++ {
			x, err := readI32(r)
			if err != nil {
				return fmt.Errorf("voxel stream: read x: %w", err)
			}
			y, err := readI32(r)
			if err != nil {
				return fmt.Errorf("voxel stream: read y: %w", err)
			}
			z, err := readI32(r)
			if err != nil {
				return fmt.Errorf("voxel stream: read z: %w", err)
			}
			coords[j] = Increment{X: x, Y: y, Z: z}
		}
		if int(tag) < resolutionCount {
			s.Voxels[tag] = coords
		}
	}
	active, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("voxel stream: read active resolution: %w", err)
	}
	s.ActiveResolution = Resolution(active)
	return nil
}

// Encode serializes s to the SNAP file format of spec §4.5:
// magic, version, timestamp, length-prefixed description, a flag byte
// naming which sections are present, then each present section as a
// length-prefixed blob. useCompression RLE-compresses each present
// section independently, recording a combined "sections compressed"
// bit in the flag byte (spec leaves the exact compression granularity
// to the implementer; DESIGN.md records this choice).
func (s *Snapshot) Encode(useCompression bool) []byte {
	var buf bytes.Buffer
	buf.WriteString(snapshotMagic)
	writeU32(&buf, snapshotVersion)
	writeI64(&buf, s.Timestamp)
	writeString(&buf, s.Description)

	flags := byte(snapshotFlagVoxels)
	if s.HasSelections {
		flags |= snapshotFlagSelections
	}
	if s.HasCamera {
		flags |= snapshotFlagCamera
	}
	if s.HasRender {
		flags |= snapshotFlagRender
	}
	if useCompression {
		flags |= snapshotFlagCompressed
	}
	buf.WriteByte(flags)

	rle := compress.NewRLE()
	writeSection := func(raw []byte) {
		if !useCompression {
			writeU32(&buf, uint32(len(raw)))
			buf.Write(raw)
			return
		}
		encoded, used := rle.Compress(raw)
		if !used {
			encoded = raw
		}
		writeU32(&buf, uint32(len(raw)))
		writeU32(&buf, uint32(len(encoded)))
		buf.Write(encoded)
	}

	writeSection(s.voxelStream())
	if s.HasSelections {
		writeSection(s.Selections)
	}
	if s.HasCamera {
		writeSection(s.Camera)
	}
	if s.HasRender {
		writeSection(s.Render)
	}
	return buf.Bytes()
}

// SnapshotSource adapts an Engine plus optional subsystem blob
// providers into the snapshotCapturer the history manager calls at its
// configured cadence.
type SnapshotSource struct {
	engine     *Engine
	clock      func() int64
	selections func() []byte
	camera     func() []byte
	render     func() []byte
}

// NewSnapshotSource builds a source over e. Any nil blob callback
// yields an omitted section; a nil clock always timestamps 0.
func NewSnapshotSource(e *Engine, clock func() int64, selections, camera, render func() []byte) *SnapshotSource {
	if clock == nil {
		clock = func() int64 { return 0 }
	}
	return &SnapshotSource{engine: e, clock: clock, selections: selections, camera: camera, render: render}
}

// Capture implements the snapshotCapturer interface consumed by
// HistoryManager: it captures e's current state with compression
// enabled and returns the encoded bytes.
func (s *SnapshotSource) Capture() []byte {
	var selections, camera, render []byte
	if s.selections != nil {
		selections = s.selections()
	}
	if s.camera != nil {
		camera = s.camera()
	}
	if s.render != nil {
		render = s.render()
	}
	snap := CaptureSnapshot(s.engine, "", s.clock(), selections, camera, render)
	return snap.Encode(true)
}

// DecodeSnapshot parses bytes produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	r := bytes.NewReader(data)
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != snapshotMagic {
		return nil, NewCoreError(ErrCorruptedData, "bad snapshot magic")
	}
	version, err := readU32(r)
	if err != nil || version != snapshotVersion {
		return nil, NewCoreError(ErrVersionMismatch, "unsupported snapshot version")
	}
	timestamp, err := readI64(r)
	if err != nil {
		return nil, WrapCoreError(ErrCorruptedData, "read timestamp", err)
	}
	description, err := readString(r)
	if err != nil {
		return nil, WrapCoreError(ErrCorruptedData, "read description", err)
	}
	flagByte, err := r.ReadByte()
	if err != nil {
		return nil, WrapCoreError(ErrCorruptedData, "read flags", err)
	}

	s := &Snapshot{Description: description, Timestamp: timestamp}
	compressed := flagByte&snapshotFlagCompressed != 0
	rle := compress.NewRLE()

	readSection := func() ([]byte, error) {
		if !compressed {
			n, err := readU32(r)
			if err != nil {
				return nil, err
			}
			if n > 1<<24 {
				return nil, NewCoreError(ErrCorruptedData, "snapshot section too large")
			}
			raw := make([]byte, n)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, err
			}
			return raw, nil
		}
		rawLen, err := readU32(r)
		if err != nil {
			return nil, err
		}
		storedLen, err := readU32(r)
		if err != nil {
			return nil, err
		}
		stored := make([]byte, storedLen)
		if _, err := io.ReadFull(r, stored); err != nil {
			return nil, err
		}
		if storedLen == rawLen {
			return stored, nil
		}
		return rle.Decompress(stored, int(rawLen)), nil
	}

	if flagByte&snapshotFlagVoxels != 0 {
		voxelBytes, err := readSection()
		if err != nil {
			return nil, WrapCoreError(ErrCorruptedData, "read voxel section", err)
		}
		if err := decodeVoxelStream(voxelBytes, s); err != nil {
			return nil, WrapCoreError(ErrCorruptedData, "decode voxel section", err)
		}
	}
	if flagByte&snapshotFlagSelections != 0 {
		s.Selections, err = readSection()
		s.HasSelections = true
		if err != nil {
			return nil, WrapCoreError(ErrCorruptedData, "read selections section", err)
		}
	}
	if flagByte&snapshotFlagCamera != 0 {
		s.Camera, err = readSection()
		s.HasCamera = true
		if err != nil {
			return nil, WrapCoreError(ErrCorruptedData, "read camera section", err)
		}
	}
	if flagByte&snapshotFlagRender != 0 {
		s.Render, err = readSection()
		s.HasRender = true
		if err != nil {
			return nil, WrapCoreError(ErrCorruptedData, "read render section", err)
		}
	}
	return s, nil
}
