// Package stl exports triangle meshes to the STL format, binary or
// ASCII (spec §4.7).
//
// Grounded on the teacher's vox.go binary little-endian writer idiom
// and its mgl32 usage for vector math; normals are computed the same
// way vox.go computes physics quantities from mgl32.Vec3 operands.
package stl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a mesh vertex. Only Position is used by the exporter;
// Normal and UV are carried for API completeness with richer mesh
// sources.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// Mesh is an indexed triangle mesh. len(Indices) must be a multiple
// of three.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Unit is an output length unit; values are the multiplier to convert
// from meters to millimeters (the unit STL coordinates are stored
// in).
type Unit float32

const (
	UnitMillimeter Unit = 1
	UnitCentimeter Unit = 10
	UnitMeter      Unit = 1000
	UnitInch       Unit = 25.4
)

// Format selects STL's two on-disk encodings.
type Format int

const (
	FormatBinary Format = iota
	FormatASCII
)

// Options configures export preprocessing and validation (spec §4.7,
// §6 "STL options").
type Options struct {
	Format             Format
	Units              Unit
	Scale              float32
	MergeMeshes        bool
	ValidateWatertight bool
	Translation        mgl32.Vec3
}

// DefaultOptions returns binary output at 1:1 scale in millimeters
// with no translation.
func DefaultOptions() Options {
	return Options{Format: FormatBinary, Units: UnitMillimeter, Scale: 1, MergeMeshes: true}
}

const degenerateAreaThreshold = 1e-6

var errInvalidFormat = fmt.Errorf("stl: invalid mesh")

// Stats reports export diagnostics (spec §4.7 "Statistics").
// ExportTimeSeconds is left for the caller to stamp, since this
// package does not read the clock.
type Stats struct {
	TriangleCount     int
	VertexCount       int
	ExportTimeSeconds float64
	FileSize          int
	Watertight        bool
	Warnings          []string
}

type triangle struct {
	v0, v1, v2 mgl32.Vec3
}

func preprocess(m Mesh, opt Options) ([]triangle, error) {
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("stl: mesh has zero vertices: %w", errInvalidFormat)
	}
	if len(m.Indices)%3 != 0 {
		return nil, fmt.Errorf("stl: index count %d not a multiple of three: %w", len(m.Indices), errInvalidFormat)
	}

	scale := opt.Scale
	if scale == 0 {
		scale = 1
	}
	unit := opt.Units
	if unit == 0 {
		unit = UnitMillimeter
	}

	positions := make([]mgl32.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		p := v.Position.Mul(scale).Add(opt.Translation)
		positions[i] = p.Mul(float32(unit))
	}

	tris := make([]triangle, 0, len(m.Indices)/3)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			return nil, fmt.Errorf("stl: index out of range: %w", errInvalidFormat)
		}
		tris = append(tris, triangle{positions[a], positions[b], positions[c]})
	}
	return tris, nil
}

func (t triangle) normal() mgl32.Vec3 {
	e1 := t.v1.Sub(t.v0)
	e2 := t.v2.Sub(t.v0)
	n := e1.Cross(e2)
	if n.Len() == 0 {
		return mgl32.Vec3{0, 0, 0}
	}
	return n.Normalize()
}

func (t triangle) area() float32 {
	e1 := t.v1.Sub(t.v0)
	e2 := t.v2.Sub(t.v0)
	return e1.Cross(e2).Len() / 2
}

// edgeKey identifies an undirected triangle edge by its endpoint
// positions, quantized to tolerate float round-trip noise.
type edgeKey struct{ ax, ay, az, bx, by, bz int64 }

func quantize(v float32) int64 { return int64(v * 1e4) }

func makeEdgeKey(a, b mgl32.Vec3) edgeKey {
	ak := [3]int64{quantize(a[0]), quantize(a[1]), quantize(a[2])}
	bk := [3]int64{quantize(b[0]), quantize(b[1]), quantize(b[2])}
	if ak[0] > bk[0] || (ak[0] == bk[0] && (ak[1] > bk[1] || (ak[1] == bk[1] && ak[2] > bk[2]))) {
		ak, bk = bk, ak
	}
	return edgeKey{ak[0], ak[1], ak[2], bk[0], bk[1], bk[2]}
}

func analyze(tris []triangle) (watertight bool, warnings []string) {
	edgeCount := make(map[edgeKey]int, len(tris)*3)
	for _, t := range tris {
		edgeCount[makeEdgeKey(t.v0, t.v1)]++
		edgeCount[makeEdgeKey(t.v1, t.v2)]++
		edgeCount[makeEdgeKey(t.v2, t.v0)]++
	}
	watertight = true
	for _, n := range edgeCount {
		if n != 2 {
			watertight = false
			break
		}
	}

	degenerate := 0
	for _, t := range tris {
		if t.area() < degenerateAreaThreshold {
			degenerate++
		}
	}
	if degenerate > 0 {
		warnings = append(warnings, fmt.Sprintf("%d degenerate triangle(s) (area below %.0e)", degenerate, degenerateAreaThreshold))
	}
	if !watertight {
		warnings = append(warnings, "mesh is not watertight: at least one edge is not shared by exactly two triangles")
	}
	return watertight, warnings
}

// Export serializes mesh to STL per opt.Format and returns the
// encoded bytes plus diagnostics. ExportTimeSeconds in the returned
// Stats is always zero; callers that care about wall-clock duration
// stamp it themselves around the call.
func Export(mesh Mesh, opt Options) ([]byte, Stats, error) {
	tris, err := preprocess(mesh, opt)
	if err != nil {
		return nil, Stats{}, err
	}

	watertight, warnings := analyze(tris)
	stats := Stats{
		TriangleCount: len(tris),
		VertexCount:   len(mesh.Vertices),
		Watertight:    watertight,
		Warnings:      warnings,
	}

	var data []byte
	switch opt.Format {
	case FormatASCII:
		data = encodeASCII(tris, "voxforge_export")
	default:
		data = encodeBinary(tris)
	}
	stats.FileSize = len(data)
	return data, stats, nil
}

// ExportedFile is one output file from ExportMeshes: Suffix is the
// 1-based numeric suffix to append to the base filename (unused, left
// at 0, when the meshes were merged into a single file).
type ExportedFile struct {
	Suffix int
	Data   []byte
}

// ExportMeshes exports multiple meshes per opt.MergeMeshes (spec
// §4.7 "multiple-mesh mode"): with MergeMeshes set, every mesh is
// concatenated into a single triangle soup (indices offset by each
// prior mesh's vertex count) and written as one file; otherwise each
// mesh is exported independently and returned with a numeric suffix.
// Stats aggregates across all input meshes either way.
func ExportMeshes(meshes []Mesh, opt Options) ([]ExportedFile, Stats, error) {
	if len(meshes) == 0 {
		return nil, Stats{}, fmt.Errorf("stl: no meshes given: %w", errInvalidFormat)
	}

	if opt.MergeMeshes {
		data, stats, err := Export(mergeMeshes(meshes), opt)
		if err != nil {
			return nil, Stats{}, err
		}
		return []ExportedFile{{Data: data}}, stats, nil
	}

	files := make([]ExportedFile, 0, len(meshes))
	var agg Stats
	watertight := true
	for i, m := range meshes {
		data, stats, err := Export(m, opt)
		if err != nil {
			return nil, Stats{}, fmt.Errorf("stl: mesh %d: %w", i+1, err)
		}
		files = append(files, ExportedFile{Suffix: i + 1, Data: data})
		agg.TriangleCount += stats.TriangleCount
		agg.VertexCount += stats.VertexCount
		agg.FileSize += stats.FileSize
		agg.Warnings = append(agg.Warnings, stats.Warnings...)
		watertight = watertight && stats.Watertight
	}
	agg.Watertight = watertight
	return files, agg, nil
}

// mergeMeshes concatenates meshes into one triangle soup, offsetting
// each mesh's indices by the running vertex count so the result
// indexes its own concatenated Vertices slice.
func mergeMeshes(meshes []Mesh) Mesh {
	var out Mesh
	for _, m := range meshes {
		base := uint32(len(out.Vertices))
		out.Vertices = append(out.Vertices, m.Vertices...)
		for _, idx := range m.Indices {
			out.Indices = append(out.Indices, idx+base)
		}
	}
	return out
}

func encodeBinary(tris []triangle) []byte {
	var buf bytes.Buffer
	var header [80]byte
	copy(header[:], "voxforge STL export")
	buf.Write(header[:])

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(tris)))
	buf.Write(countBuf[:])

	for _, t := range tris {
		writeVec3(&buf, t.normal())
		writeVec3(&buf, t.v0)
		writeVec3(&buf, t.v1)
		writeVec3(&buf, t.v2)
		buf.WriteByte(0)
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func writeVec3(buf *bytes.Buffer, v mgl32.Vec3) {
	var b [4]byte
	for _, c := range v {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(c))
		buf.Write(b[:])
	}
}

func encodeASCII(tris []triangle, name string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "solid %s\n", name)
	for _, t := range tris {
		n := t.normal()
		fmt.Fprintf(&buf, "facet normal %.6f %.6f %.6f\n", n[0], n[1], n[2])
		buf.WriteString("outer loop\n")
		for _, v := range []mgl32.Vec3{t.v0, t.v1, t.v2} {
			fmt.Fprintf(&buf, "vertex %.6f %.6f %.6f\n", v[0], v[1], v[2])
		}
		buf.WriteString("endloop\n")
		buf.WriteString("endfacet\n")
	}
	fmt.Fprintf(&buf, "endsolid %s\n", name)
	return buf.Bytes()
}
