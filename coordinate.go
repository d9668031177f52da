package voxforge

import "math"

// World is a position in meters. The origin is the center of the
// workspace in X and Z; Y measures upward from the ground plane.
type World struct {
	X, Y, Z float32
}

// Increment is a position in whole centimeters, the sole on-grid unit
// of voxel identity. Never coerced implicitly to or from World/Grid.
type Increment struct {
	X, Y, Z int32
}

// Grid is a position indexing a specific resolution's octree. Its
// conversion to/from Increment is an implementation detail of that
// octree (see package octree); external code never constructs a Grid
// directly.
type Grid struct {
	X, Y, Z int32
}

const incrementsPerMeter = 100.0

// gridAlignEpsilon is how far a World coordinate may drift from an exact
// multiple of 0.01m and still be considered "on the increment grid"
// (spec I-C2).
const gridAlignEpsilon = 1e-4

// ToWorld converts an increment-space position to world meters.
func (i Increment) ToWorld() World {
	return World{
		X: float32(i.X) / incrementsPerMeter,
		Y: float32(i.Y) / incrementsPerMeter,
		Z: float32(i.Z) / incrementsPerMeter,
	}
}

// ToIncrement rounds a world-space position to the nearest increment.
func (w World) ToIncrement() Increment {
	return Increment{
		X: roundToIncrement(w.X),
		Y: roundToIncrement(w.Y),
		Z: roundToIncrement(w.Z),
	}
}

func roundToIncrement(meters float32) int32 {
	return int32(math.Round(float64(meters) * incrementsPerMeter))
}

// OnIncrementGrid reports whether every component of w is within
// gridAlignEpsilon meters of a multiple of 0.01m (spec I-C2).
func (w World) OnIncrementGrid() bool {
	return onGrid(w.X) && onGrid(w.Y) && onGrid(w.Z)
}

func onGrid(meters float32) bool {
	scaled := float64(meters) * incrementsPerMeter
	nearest := math.Round(scaled)
	return math.Abs(scaled-nearest)*0.01 <= gridAlignEpsilon
}

func (w World) Add(o World) World { return World{w.X + o.X, w.Y + o.Y, w.Z + o.Z} }
func (w World) Sub(o World) World { return World{w.X - o.X, w.Y - o.Y, w.Z - o.Z} }

func (i Increment) Add(o Increment) Increment {
	return Increment{i.X + o.X, i.Y + o.Y, i.Z + o.Z}
}

// AABB is an axis-aligned bounding box in world space, min inclusive,
// max exclusive-or-equal depending on context (voxel bounds are
// [min, max] per spec §3.3).
type AABB struct {
	Min, Max World
}

// Intersects reports whether two AABBs overlap after shrinking each
// interval by eps on every side (spec §4.1.2's face-adjacency epsilon).
func (a AABB) Intersects(b AABB, eps float32) bool {
	return overlap1D(a.Min.X, a.Max.X, b.Min.X, b.Max.X, eps) &&
		overlap1D(a.Min.Y, a.Max.Y, b.Min.Y, b.Max.Y, eps) &&
		overlap1D(a.Min.Z, a.Max.Z, b.Min.Z, b.Max.Z, eps)
}

func overlap1D(aMin, aMax, bMin, bMax, eps float32) bool {
	aMin, aMax = aMin+eps, aMax-eps
	bMin, bMax = bMin+eps, bMax-eps
	return aMin < bMax && bMin < aMax
}

// Face is one of the six axis-aligned face directions of a voxel.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Normal returns the integer unit normal for a face direction.
func (f Face) Normal() Increment {
	switch f {
	case FacePosX:
		return Increment{X: 1}
	case FaceNegX:
		return Increment{X: -1}
	case FacePosY:
		return Increment{Y: 1}
	case FaceNegY:
		return Increment{Y: -1}
	case FacePosZ:
		return Increment{Z: 1}
	case FaceNegZ:
		return Increment{Z: -1}
	default:
		return Increment{}
	}
}
