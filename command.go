package voxforge

// CommandKind tags the closed set of reversible operation variants
// (spec §9: "model Command as a tagged union"; realized here as a Go
// interface plus a discriminant method, the idiomatic equivalent given
// Go's lack of closed sum types — the same shape the teacher uses for
// its `System`/`Logger` interfaces).
type CommandKind int

const (
	CommandVoxelEdit CommandKind = iota
	CommandSelection
	CommandGroup
	CommandCamera
	CommandWorkspace
	CommandImport
	CommandComposite
)

func (k CommandKind) String() string {
	switch k {
	case CommandVoxelEdit:
		return "VoxelEdit"
	case CommandSelection:
		return "Selection"
	case CommandGroup:
		return "Group"
	case CommandCamera:
		return "Camera"
	case CommandWorkspace:
		return "Workspace"
	case CommandImport:
		return "Import"
	case CommandComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

// Command is a reversible operation (spec §3.7). Execute and Undo
// report success via their bool return, never panic, and leave engine
// state consistent on failure.
type Command interface {
	Execute() bool
	Undo() bool
	Name() string
	Kind() CommandKind
	MemoryUsage() uint64
}

// VoxelSetCommand places or clears a single voxel, reversibly.
type VoxelSetCommand struct {
	engine     *Engine
	pos        Increment
	res        Resolution
	value      bool
	prevExists bool
}

// NewVoxelSetCommand builds a command that will set pos/res to value
// when executed, restoring the prior occupancy on undo.
func NewVoxelSetCommand(e *Engine, pos Increment, res Resolution, value bool) *VoxelSetCommand {
	return &VoxelSetCommand{engine: e, pos: pos, res: res, value: value}
}

func (c *VoxelSetCommand) Execute() bool {
	c.prevExists = c.engine.Get(c.pos, c.res)
	changed, err := c.engine.Set(c.pos, c.res, c.value)
	return err == nil && changed
}

func (c *VoxelSetCommand) Undo() bool {
	changed, err := c.engine.Set(c.pos, c.res, c.prevExists)
	return err == nil && changed
}

func (c *VoxelSetCommand) Name() string {
	if c.value {
		return "Place Voxel"
	}
	return "Remove Voxel"
}

func (c *VoxelSetCommand) Kind() CommandKind { return CommandVoxelEdit }

// MemoryUsage is a fixed small footprint: one position, one resolution,
// two booleans.
func (c *VoxelSetCommand) MemoryUsage() uint64 { return 32 }

// BatchSetCommand places or clears many voxels as a single reversible
// unit, backed by Engine.BatchSet's atomic validate-then-apply pass.
type BatchSetCommand struct {
	engine  *Engine
	changes []VoxelChange
	prior   []bool
	name    string
}

// NewBatchSetCommand builds a command applying changes atomically.
func NewBatchSetCommand(e *Engine, name string, changes []VoxelChange) *BatchSetCommand {
	return &BatchSetCommand{engine: e, changes: changes, name: name}
}

func (c *BatchSetCommand) Execute() bool {
	c.prior = make([]bool, len(c.changes))
	for i, ch := range c.changes {
		c.prior[i] = c.engine.Get(ch.Position, ch.Resolution)
	}
	result, err := c.engine.BatchSet(c.changes)
	return err == nil && result.Success
}

func (c *BatchSetCommand) Undo() bool {
	reverse := make([]VoxelChange, len(c.changes))
	for i, ch := range c.changes {
		reverse[len(c.changes)-1-i] = VoxelChange{
			Position:   ch.Position,
			Resolution: ch.Resolution,
			Value:      c.prior[len(c.changes)-1-i],
		}
	}
	result, err := c.engine.BatchSet(reverse)
	return err == nil && result.Success
}

func (c *BatchSetCommand) Name() string {
	if c.name != "" {
		return c.name
	}
	return "Batch Edit"
}

func (c *BatchSetCommand) Kind() CommandKind { return CommandVoxelEdit }

func (c *BatchSetCommand) MemoryUsage() uint64 {
	return uint64(len(c.changes)) * 32
}
