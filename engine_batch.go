package voxforge

import "github.com/voxforge/voxforge/octree"

// VoxelChange is one element of a BatchSet call: place or clear a
// single voxel.
type VoxelChange struct {
	Position   Increment
	Resolution Resolution
	Value      bool
}

// BatchResult reports the outcome of a BatchSet call.
type BatchResult struct {
	Applied int
	Skipped int
	Success bool
	Failed  VoxelChange
	Message string
}

type batchKey struct {
	pos Increment
	res Resolution
}

// BatchSet applies every change in changes as a single atomic unit
// (spec §4.1.4's batch-placement operation): every change is validated
// first against the state the batch would produce as it is walked in
// order, and only if every change is valid does BatchSet mutate the
// engine. On validation failure nothing is applied and BatchResult
// reports the first offending change.
//
// Redundant changes (value already matches current state) are valid
// and counted as Skipped, never as a failure.
func (e *Engine) BatchSet(changes []VoxelChange) (BatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// pending tracks the value this batch would produce for each key,
	// so later entries validate against the batch's own intermediate
	// state (e.g. clearing a voxel, then placing a different one in
	// the space it vacated) without touching any octree until every
	// change has been confirmed valid.
	pending := make(map[batchKey]bool, len(changes))

	for _, ch := range changes {
		if !ch.Resolution.Valid() {
			return BatchResult{Failed: ch, Message: "invalid resolution"},
				NewCoreError(ErrPlacementInvalid, "invalid resolution")
		}
		key := batchKey{pos: ch.Position, res: ch.Resolution}
		current, seen := pending[key]
		if !seen {
			current = e.octrees[ch.Resolution].Get(coordOf(ch.Position))
		}
		if current == ch.Value {
			pending[key] = current
			continue
		}
		if ch.Value {
			v := e.validateBatchLocked(ch.Position, ch.Resolution, pending)
			if !v.Valid {
				return BatchResult{Failed: ch, Message: v.Message},
					NewCoreError(ErrPlacementInvalid, v.Message)
			}
		}
		pending[key] = ch.Value
	}

	applied := 0
	skipped := 0
	var done []VoxelChange
	for _, ch := range changes {
		c := coordOf(ch.Position)
		current := e.octrees[ch.Resolution].Get(c)
		if current == ch.Value {
			skipped++
			continue
		}
		if !e.octrees[ch.Resolution].Set(c, ch.Value) {
			// Unreachable after the validation pass above; roll back
			// everything already applied rather than leave the batch
			// half-committed.
			for i := len(done) - 1; i >= 0; i-- {
				d := done[i]
				e.octrees[d.Resolution].Set(coordOf(d.Position), !d.Value)
				e.publishVoxelChanged(d.Position, d.Resolution, d.Value, !d.Value)
			}
			return BatchResult{Failed: ch, Message: "apply failed after validation"},
				NewCoreError(ErrPlacementInvalid, "apply failed after validation")
		}
		e.publishVoxelChanged(ch.Position, ch.Resolution, current, ch.Value)
		done = append(done, ch)
		applied++
	}

	return BatchResult{Applied: applied, Skipped: skipped, Success: true}, nil
}

// validateBatchLocked runs the same four predicates as validateLocked,
// but its overlap check also consults pending so a batch that clears a
// voxel and immediately places a different one in an overlapping
// position validates correctly without querying the not-yet-mutated
// octrees.
func (e *Engine) validateBatchLocked(pos Increment, res Resolution, pending map[batchKey]bool) PositionValidation {
	v := PositionValidation{}
	if pos.Y < 0 {
		v.Message = "position is below ground (Y < 0)"
		return v
	}
	v.AboveGround = true

	voxel := Voxel{Position: pos, Resolution: res}
	if !e.workspace.IsPositionValid(pos.ToWorld()) {
		v.Message = "position is outside workspace bounds"
		return v
	}
	v.WithinBounds = true

	if !e.workspace.ContainsAABB(voxel.Bounds()) {
		v.Message = "voxel extent is outside workspace bounds"
		return v
	}
	v.ExtentWithinBounds = true
	v.AlignedToGrid = true

	if e.wouldOverlapBatchLocked(voxel, pending) {
		v.Message = "placement overlaps an existing voxel"
		return v
	}
	v.NoOverlap = true
	v.Valid = true
	return v
}

// wouldOverlapBatchLocked reports whether v overlaps any voxel in the
// state the batch has produced so far: every committed voxel not
// overridden to cleared by pending, plus every voxel pending has
// staged for placement.
func (e *Engine) wouldOverlapBatchLocked(v Voxel, pending map[batchKey]bool) bool {
	selfKey := batchKey{pos: v.Position, res: v.Resolution}
	overlap := false

	for _, r := range AllResolutions {
		e.octrees[r].ForEach(func(c octree.Coord) bool {
			key := batchKey{pos: incOf(c), res: r}
			if key == selfKey {
				return true
			}
			if staged, overridden := pending[key]; overridden && !staged {
				return true // this batch clears it before v would land
			}
			other := Voxel{Position: incOf(c), Resolution: r}
			if v.Overlaps(other) {
				overlap = true
				return false
			}
			return true
		})
		if overlap {
			return true
		}
	}

	for key, staged := range pending {
		if !staged || key == selfKey {
			continue
		}
		if e.octrees[key.res].Get(coordOf(key.pos)) {
			continue // already accounted for in the committed scan above
		}
		other := Voxel{Position: key.pos, Resolution: key.res}
		if v.Overlaps(other) {
			return true
		}
	}
	return false
}
