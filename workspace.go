package voxforge

// WorkspaceSize is a workspace's extent in meters along each axis.
type WorkspaceSize struct {
	X, Y, Z float32
}

const (
	workspaceMinDim = 2.0
	workspaceMaxDim = 8.0
)

// DefaultWorkspaceSize is the (5,5,5) default from spec §3.4.
var DefaultWorkspaceSize = WorkspaceSize{5, 5, 5}

// ResizeValidator is consulted before a workspace resize is committed.
// It must return false if any currently stored voxel, at any
// resolution, would fall outside the proposed new bounds (spec I-W1).
// The voxel data engine registers itself as this callback.
type ResizeValidator func(newSize WorkspaceSize) bool

// Workspace is the bounded, centered domain voxels live in (spec §3.4,
// §4.3). It is centered in X and Z and grounded at Y=0.
type Workspace struct {
	size     WorkspaceSize
	validate ResizeValidator
}

// NewWorkspace creates a workspace at the given size, clamped into
// range if necessary. validate may be nil until the owning engine
// registers itself.
func NewWorkspace(size WorkspaceSize) *Workspace {
	return &Workspace{size: clampSize(size)}
}

func clampSize(s WorkspaceSize) WorkspaceSize {
	return WorkspaceSize{
		X: clampDim(s.X),
		Y: clampDim(s.Y),
		Z: clampDim(s.Z),
	}
}

func clampDim(v float32) float32 {
	if v < workspaceMinDim {
		return workspaceMinDim
	}
	if v > workspaceMaxDim {
		return workspaceMaxDim
	}
	return v
}

// SetResizeValidator registers the callback consulted on every SetSize.
func (w *Workspace) SetResizeValidator(v ResizeValidator) {
	w.validate = v
}

// Size returns the current workspace size.
func (w *Workspace) Size() WorkspaceSize {
	return w.size
}

// ValidSize reports whether every component of s is within [2, 8].
func ValidSize(s WorkspaceSize) bool {
	return s.X >= workspaceMinDim && s.X <= workspaceMaxDim &&
		s.Y >= workspaceMinDim && s.Y <= workspaceMaxDim &&
		s.Z >= workspaceMinDim && s.Z <= workspaceMaxDim
}

// SetSize attempts to resize the workspace. It fails (returns false,
// no mutation) if the new size is out of [2,8] per axis, or if the
// registered ResizeValidator rejects it (I-W1).
func (w *Workspace) SetSize(newSize WorkspaceSize) bool {
	if !ValidSize(newSize) {
		return false
	}
	if w.validate != nil && !w.validate(newSize) {
		return false
	}
	w.size = newSize
	return true
}

// MinBounds returns the workspace's lower corner in world space.
func (w *Workspace) MinBounds() World {
	return World{-w.size.X / 2, 0, -w.size.Z / 2}
}

// MaxBounds returns the workspace's upper corner in world space.
func (w *Workspace) MaxBounds() World {
	return World{w.size.X / 2, w.size.Y, w.size.Z / 2}
}

// Center returns the workspace's world-space center.
func (w *Workspace) Center() World {
	return World{0, w.size.Y / 2, 0}
}

// IsPositionValid reports whether p lies within the workspace bounds
// (inclusive on both ends).
func (w *Workspace) IsPositionValid(p World) bool {
	min, max := w.MinBounds(), w.MaxBounds()
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// ContainsAABB reports whether the whole of box lies within bounds.
func (w *Workspace) ContainsAABB(box AABB) bool {
	min, max := w.MinBounds(), w.MaxBounds()
	return box.Min.X >= min.X && box.Max.X <= max.X &&
		box.Min.Y >= min.Y && box.Max.Y <= max.Y &&
		box.Min.Z >= min.Z && box.Max.Z <= max.Z
}

// ClampPosition clamps p into the workspace bounds.
func (w *Workspace) ClampPosition(p World) World {
	min, max := w.MinBounds(), w.MaxBounds()
	return World{
		X: clampf(p.X, min.X, max.X),
		Y: clampf(p.Y, min.Y, max.Y),
		Z: clampf(p.Z, min.Z, max.Z),
	}
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
