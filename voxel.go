package voxforge

// Voxel is the tuple (increment position, resolution, occupied=true).
// Occupancy is implicit: a Voxel value only exists for occupied cells;
// the engine and octree represent "not occupied" as absence.
type Voxel struct {
	Position   Increment
	Resolution Resolution
}

// Bounds returns the voxel's axis-aligned world bounds under the
// bottom-center placement convention (spec §3.3): Position.Y is the
// bottom face, Position.X/Z locate the horizontal center.
func (v Voxel) Bounds() AABB {
	s := v.Resolution.EdgeLengthMeters()
	half := s / 2
	center := v.Position.ToWorld()
	return AABB{
		Min: World{center.X - half, center.Y, center.Z - half},
		Max: World{center.X + half, center.Y + s, center.Z + half},
	}
}

// Overlaps reports whether v and other occupy overlapping world-space
// volume, applying the collision rules of spec §4.1.2:
//
//   - a strictly smaller prospective voxel never overlaps a larger one
//     (the "detail-work exception"), even at the same increment
//     position — this parameter order matters: v is the prospective
//     voxel, other is the existing one;
//   - otherwise, an identical increment position always overlaps (the
//     "same-cell rule");
//   - otherwise, AABB intersection with the shared collisionEpsilon
//     subtracted from every interval so face-adjacent voxels coexist.
func (v Voxel) Overlaps(other Voxel) bool {
	if v.Resolution.EdgeLengthCm() < other.Resolution.EdgeLengthCm() {
		return false
	}
	if v.Position == other.Position {
		return true
	}
	return v.Bounds().Intersects(other.Bounds(), collisionEpsilon)
}

// collisionEpsilon is the 1e-4 m slack subtracted from every interval
// of both AABBs before intersection-testing (spec §4.1.2, open
// question #2: accepted as a known limitation for extreme coordinates).
const collisionEpsilon = 1e-4
