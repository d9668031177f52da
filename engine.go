package voxforge

import (
	"sync"

	"github.com/voxforge/voxforge/octree"
)

// PositionValidation records the five placement predicates of spec
// §4.1.1, evaluated in a fixed order (above_ground, within_bounds,
// extent_within_bounds, aligned_to_grid, no_overlap) so the reported
// Message is always the first one that failed.
type PositionValidation struct {
	AboveGround        bool
	WithinBounds       bool
	ExtentWithinBounds bool
	AlignedToGrid      bool
	NoOverlap          bool
	Valid              bool
	Message            string
}

// Engine is the authoritative owner of all occupancy state across the
// ten resolutions (spec §4.1). All externally visible operations are
// linearizable: a single coarse RWMutex serializes every mutation and
// read, matching spec §5's locking discipline.
type Engine struct {
	mu        sync.RWMutex
	workspace *Workspace
	pool      *octree.NodePool
	octrees   [resolutionCount]*octree.Octree
	activeRes Resolution
	bus       *EventBus
	log       Logger
}

// NewEngine constructs an engine over ws with its own shared node pool
// of the given initial capacity (0 uses the spec default of 1024).
// The engine registers itself as ws's resize validator.
func NewEngine(ws *Workspace, bus *EventBus, log Logger, poolCapacity int) *Engine {
	pool := octree.NewNodePool(poolCapacity)
	e := &Engine{
		workspace: ws,
		pool:      pool,
		bus:       bus,
		log:       logOrNop(log),
	}
	for i := range e.octrees {
		e.octrees[i] = octree.New(pool)
	}
	ws.SetResizeValidator(e.canResizeLocked)
	return e
}

// NodePool exposes the shared node pool for telemetry.
func (e *Engine) NodePool() *octree.NodePool { return e.pool }

func coordOf(p Increment) octree.Coord {
	return octree.Coord{X: p.X, Y: p.Y, Z: p.Z}
}

func incOf(c octree.Coord) Increment {
	return Increment{X: c.X, Y: c.Y, Z: c.Z}
}

// Get reports whether a voxel is occupied at pos at resolution res.
// Never fails; an absent cell is simply false.
func (e *Engine) Get(pos Increment, res Resolution) bool {
	if !res.Valid() {
		return false
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.octrees[res].Get(coordOf(pos))
}

// Set places or clears a voxel. Returns true iff the occupancy bit
// actually changed. Redundant writes (value == current) are reported
// as failure (false, nil) — this is load-bearing for command undo
// detection (spec §9 open question #1 fixes this contract).
func (e *Engine) Set(pos Increment, res Resolution, value bool) (bool, error) {
	if !res.Valid() {
		return false, NewCoreError(ErrInvalidFormat, "invalid resolution")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setLocked(pos, res, value)
}

// setLocked assumes e.mu is already held for writing.
func (e *Engine) setLocked(pos Increment, res Resolution, value bool) (bool, error) {
	c := coordOf(pos)
	current := e.octrees[res].Get(c)
	if current == value {
		return false, nil
	}
	if value {
		v := e.validateLocked(pos, res, true)
		if !v.Valid {
			return false, NewCoreError(ErrPlacementInvalid, v.Message)
		}
	}
	if !e.octrees[res].Set(c, value) {
		return false, nil
	}
	e.publishVoxelChanged(pos, res, current, value)
	return true, nil
}

// SetAtWorld converts w to increment space and places/clears a voxel
// there. Fails additionally if w is not within gridAlignEpsilon of the
// 1cm increment grid.
func (e *Engine) SetAtWorld(w World, res Resolution, value bool) (bool, error) {
	if !w.OnIncrementGrid() {
		return false, NewCoreError(ErrPlacementInvalid, "world position not aligned to the 1cm increment grid")
	}
	return e.Set(w.ToIncrement(), res, value)
}

// ActiveResolution returns the engine's currently active resolution.
func (e *Engine) ActiveResolution() Resolution {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.activeRes
}

// SetActiveResolution changes the active resolution. An invalid
// discriminant is silently ignored (spec: "ignored" failure mode).
// Publishes ResolutionChanged only when the value actually changes.
func (e *Engine) SetActiveResolution(res Resolution) {
	if !res.Valid() {
		return
	}
	e.mu.Lock()
	old := e.activeRes
	if old == res {
		e.mu.Unlock()
		return
	}
	e.activeRes = res
	e.mu.Unlock()
	if e.bus != nil {
		e.bus.Dispatch(ResolutionChanged{Old: old, New: res})
	}
}

// ResizeWorkspace attempts to resize the workspace. Fails if the size
// is out of [2,8] per axis or if any stored voxel at any resolution
// would fall outside the new bounds (I-W1).
func (e *Engine) ResizeWorkspace(newSize WorkspaceSize) (bool, error) {
	e.mu.Lock()
	if !ValidSize(newSize) {
		e.mu.Unlock()
		return false, NewCoreError(ErrWorkspaceResizeRejected, "size components must each be within [2,8] meters")
	}
	old := e.workspace.Size()
	ok := e.workspace.SetSize(newSize)
	e.mu.Unlock()
	if !ok {
		return false, NewCoreError(ErrWorkspaceResizeRejected, "one or more stored voxels would fall outside the new bounds")
	}
	if e.bus != nil {
		e.bus.Dispatch(WorkspaceResized{OldSize: old, NewSize: newSize})
	}
	return true, nil
}

// canResizeLocked is registered as the workspace's ResizeValidator. It
// assumes the engine's lock is already held by the ResizeWorkspace call
// chain above.
func (e *Engine) canResizeLocked(newSize WorkspaceSize) bool {
	minB := World{-newSize.X / 2, 0, -newSize.Z / 2}
	maxB := World{newSize.X / 2, newSize.Y, newSize.Z / 2}
	fits := func(b AABB) bool {
		return b.Min.X >= minB.X && b.Max.X <= maxB.X &&
			b.Min.Y >= minB.Y && b.Max.Y <= maxB.Y &&
			b.Min.Z >= minB.Z && b.Max.Z <= maxB.Z
	}
	for _, r := range AllResolutions {
		ok := e.octrees[r].Resize(func(c octree.Coord) bool {
			v := Voxel{Position: incOf(c), Resolution: r}
			return fits(v.Bounds())
		})
		if !ok {
			return false
		}
	}
	return true
}

// Validate runs the five placement predicates for pos/res without
// mutating anything. checkOverlap controls whether the (expensive)
// collision scan runs; callers validating a removal typically pass
// false.
func (e *Engine) Validate(pos Increment, res Resolution, checkOverlap bool) PositionValidation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.validateLocked(pos, res, checkOverlap)
}

func (e *Engine) validateLocked(pos Increment, res Resolution, checkOverlap bool) PositionValidation {
	v := PositionValidation{}
	if pos.Y < 0 {
		v.Message = "position is below ground (Y < 0)"
		return v
	}
	v.AboveGround = true

	voxel := Voxel{Position: pos, Resolution: res}
	center := pos.ToWorld()
	if !e.workspace.IsPositionValid(center) {
		v.Message = "position is outside workspace bounds"
		return v
	}
	v.WithinBounds = true

	if !e.workspace.ContainsAABB(voxel.Bounds()) {
		v.Message = "voxel extent is outside workspace bounds"
		return v
	}
	v.ExtentWithinBounds = true

	// The shared grid is 1cm for every resolution, so any integer
	// increment coordinate is always grid-aligned (spec §4.1.1).
	v.AlignedToGrid = true

	if checkOverlap {
		if e.wouldOverlapLocked(voxel) {
			v.Message = "placement overlaps an existing voxel"
			return v
		}
	}
	v.NoOverlap = true
	v.Valid = true
	return v
}

// WouldOverlap reports whether placing an occupied voxel at pos/res
// would collide with an existing voxel, without mutating anything
// (spec P10: WouldOverlap(p,r) == true iff Set(p,r,true) would fail
// with overlap).
func (e *Engine) WouldOverlap(pos Increment, res Resolution) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wouldOverlapLocked(Voxel{Position: pos, Resolution: res})
}

func (e *Engine) wouldOverlapLocked(v Voxel) bool {
	overlap := false
	for _, r := range AllResolutions {
		e.octrees[r].ForEach(func(c octree.Coord) bool {
			other := Voxel{Position: incOf(c), Resolution: r}
			if other.Position == v.Position && other.Resolution == v.Resolution {
				// The hypothetical voxel itself, not a distinct
				// existing neighbor — never counts as overlap.
				return true
			}
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
	return false
}

// AdjacentPosition returns the increment position immediately adjacent
// to a voxel at p, offset by the source voxel's own edge length along
// face's normal. targetRes is accepted for API symmetry only and never
// affects the result (spec §4.1.3).
func (e *Engine) AdjacentPosition(p Increment, face Face, sourceRes Resolution, targetRes Resolution) Increment {
	n := face.Normal()
	s := sourceRes.EdgeLengthCm()
	return p.Add(Increment{X: n.X * s, Y: n.Y * s, Z: n.Z * s})
}

// ClearAll removes every voxel at every resolution.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.octrees {
		t.Clear()
	}
}

// Clear removes every voxel at a single resolution.
func (e *Engine) Clear(res Resolution) {
	if !res.Valid() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.octrees[res].Clear()
}

// AllVoxels returns every occupied voxel at res.
func (e *Engine) AllVoxels(res Resolution) []Voxel {
	if !res.Valid() {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	coords := e.octrees[res].AllVoxels()
	out := make([]Voxel, len(coords))
	for i, c := range coords {
		out[i] = Voxel{Position: incOf(c), Resolution: res}
	}
	return out
}

// Count returns the number of occupied voxels at res.
func (e *Engine) Count(res Resolution) int {
	if !res.Valid() {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.octrees[res].Count()
}

// TotalCount returns the number of occupied voxels across every
// resolution.
func (e *Engine) TotalCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := 0
	for _, t := range e.octrees {
		total += t.Count()
	}
	return total
}

func (e *Engine) publishVoxelChanged(pos Increment, res Resolution, old, newVal bool) {
	if e.bus == nil {
		return
	}
	e.bus.Dispatch(VoxelChanged{Position: pos, Resolution: res, Old: old, New: newVal})
}

func (e *Engine) logf(format string, args ...any) {
	e.log.Debugf(format, args...)
}
