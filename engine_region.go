package voxforge

import "github.com/voxforge/voxforge/octree"

// FillResult reports the outcome of a FillRegion call, bucketing every
// per-cell failure by category (spec §4.1.4).
type FillResult struct {
	Filled            int
	Skipped           int
	FailedBelowGround int
	FailedOutOfBounds int
	FailedOverlap     int
	FailedNotAligned  int
	Success           bool
}

// FillRegion iterates the cells of box at res's edge length, snapped
// outward to whole multiples of that edge length (so a box that
// already aligns to the resolution's grid fills exactly the cells it
// names — spec scenario 4). Each cell is validated without collision
// when value is false, with collision when value is true. The overall
// Success flag is true only if no cell failed validation; redundant
// writes count as Skipped, not a failure.
func (e *Engine) FillRegion(box AABB, res Resolution, value bool) FillResult {
	if !res.Valid() {
		return FillResult{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	step := res.EdgeLengthCm()
	minInc := box.Min.ToIncrement()
	maxInc := box.Max.ToIncrement()

	loX, hiX := snapRange(minInc.X, maxInc.X, step)
	loY, hiY := snapRange(minInc.Y, maxInc.Y, step)
	loZ, hiZ := snapRange(minInc.Z, maxInc.Z, step)

	var fr FillResult
	for x := loX; x < hiX; x += step {
		for y := loY; y < hiY; y += step {
			for z := loZ; z < hiZ; z += step {
				pos := Increment{X: x, Y: y, Z: z}
				e.fillCell(pos, res, value, &fr)
			}
		}
	}
	fr.Success = fr.FailedBelowGround == 0 && fr.FailedOutOfBounds == 0 &&
		fr.FailedOverlap == 0 && fr.FailedNotAligned == 0
	return fr
}

func (e *Engine) fillCell(pos Increment, res Resolution, value bool, out *FillResult) {
	c := coordOf(pos)
	current := e.octrees[res].Get(c)
	if current == value {
		out.Skipped++
		return
	}
	v := e.validateLocked(pos, res, value)
	if !v.Valid {
		switch {
		case !v.AboveGround:
			out.FailedBelowGround++
		case !v.WithinBounds, !v.ExtentWithinBounds:
			out.FailedOutOfBounds++
		case !v.AlignedToGrid:
			out.FailedNotAligned++
		case !v.NoOverlap:
			out.FailedOverlap++
		}
		return
	}
	if !e.octrees[res].Set(c, value) {
		out.Skipped++
		return
	}
	e.publishVoxelChanged(pos, res, current, value)
	out.Filled++
}

// snapRange widens [lo,hi] to the smallest range that (a) starts at a
// multiple of step and (b) whose length is itself a multiple of step,
// fully covering the original range.
func snapRange(lo, hi, step int32) (int32, int32) {
	return floorMultiple(lo, step), ceilMultiple(hi, step)
}

func floorMultiple(v, step int32) int32 {
	q := v / step
	if v%step != 0 && v < 0 {
		q--
	}
	return q * step
}

func ceilMultiple(v, step int32) int32 {
	q := v / step
	if v%step != 0 && v > 0 {
		q++
	}
	return q * step
}

// QueryRegion returns every voxel, at any resolution, whose world AABB
// intersects box (no epsilon shrink — a plain geometric overlap test).
func (e *Engine) QueryRegion(box AABB) []Voxel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []Voxel
	for _, r := range AllResolutions {
		e.octrees[r].ForEach(func(c octree.Coord) bool {
			v := Voxel{Position: incOf(c), Resolution: r}
			if v.Bounds().Intersects(box, 0) {
				out = append(out, v)
			}
			return true
		})
	}
	return out
}
