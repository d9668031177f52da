package voxforge

import "sync"

const (
	defaultMaxHistorySize   = 50
	defaultMaxMemoryUsage   = 64 * 1024 * 1024
	defaultSnapshotInterval = 10
)

// snapshotCapturer is the minimal capability HistoryManager needs from
// the state snapshot system (spec §4.5); kept as an interface here so
// history.go has no hard dependency on snapshot.go's concrete Snapshot
// type.
type snapshotCapturer interface {
	Capture() []byte
}

// HistoryManager owns the undo/redo stacks, enforces memory and count
// caps, and manages the single open transaction (spec §4.4). All
// public methods are safe for concurrent use.
type HistoryManager struct {
	mu sync.Mutex

	undoStack []Command
	redoStack []Command

	currentMemory uint64
	maxHistory    int
	maxMemory     uint64

	snapshotInterval int
	snapshots        [][]byte
	snapshotSource   snapshotCapturer

	currentTxn *Transaction

	bus *EventBus
	log Logger
}

// NewHistoryManager builds a manager with the spec's default caps
// (50 entries, 64MiB, snapshot every 10 commands).
func NewHistoryManager(bus *EventBus, log Logger) *HistoryManager {
	return &HistoryManager{
		maxHistory:       defaultMaxHistorySize,
		maxMemory:        defaultMaxMemoryUsage,
		snapshotInterval: defaultSnapshotInterval,
		bus:              bus,
		log:              logOrNop(log),
	}
}

// SetSnapshotSource registers the state-snapshot capturer used at each
// snapshot cadence boundary. Optional; without one, snapshot cadence is
// tracked but no bytes are ever captured.
func (h *HistoryManager) SetSnapshotSource(s snapshotCapturer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snapshotSource = s
}

// SetMaxHistorySize changes the undo-stack count cap, evicting the
// oldest entries immediately if the new cap is smaller.
func (h *HistoryManager) SetMaxHistorySize(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxHistory = n
	h.enforceHistoryLimits()
}

// SetMaxMemoryUsage changes the undo-stack memory cap, evicting the
// oldest entries immediately if usage now exceeds it.
func (h *HistoryManager) SetMaxMemoryUsage(bytes uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxMemory = bytes
	h.enforceMemoryLimits()
}

// SetSnapshotInterval changes how many commands elapse between
// automatic snapshots. 0 disables snapshotting.
func (h *HistoryManager) SetSnapshotInterval(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n < 0 {
		n = 0
	}
	h.snapshotInterval = n
}

// ExecuteCommand validates (trivially, by attempting execution) and
// executes cmd, pushing it onto the undo stack and clearing the redo
// stack (I-H2). If a transaction is open, the command is held by the
// transaction instead of pushed directly. Returns false without
// mutating any stack if execution fails.
func (h *HistoryManager) ExecuteCommand(cmd Command) bool {
	if cmd == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.currentTxn != nil {
		return h.currentTxn.Add(cmd)
	}

	if !cmd.Execute() {
		h.log.Debugf("command execution returned false: %s", cmd.Name())
		return false
	}

	for _, redone := range h.redoStack {
		h.currentMemory -= redone.MemoryUsage()
	}
	h.redoStack = h.redoStack[:0]
	h.pushUndo(cmd)
	h.enforceHistoryLimits()
	h.enforceMemoryLimits()

	if h.snapshotInterval > 0 && len(h.undoStack)%h.snapshotInterval == 0 {
		h.captureSnapshot()
	}

	h.notify(EventCommandExecuted, cmd.Name())
	return true
}

// CanUndo reports whether an undo is currently possible (empty stack
// or an open transaction both make this false).
func (h *HistoryManager) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canUndoLocked()
}

// CanRedo reports whether a redo is currently possible.
func (h *HistoryManager) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canRedoLocked()
}

func (h *HistoryManager) canUndoLocked() bool {
	return len(h.undoStack) > 0 && h.currentTxn == nil
}

func (h *HistoryManager) canRedoLocked() bool {
	return len(h.redoStack) > 0 && h.currentTxn == nil
}

// Undo pops the top undo entry and undoes it, pushing it onto the
// redo stack on success. On failure the entry is restored to the top
// of the undo stack unchanged (spec failure semantics).
func (h *HistoryManager) Undo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.canUndoLocked() {
		return false
	}

	n := len(h.undoStack)
	cmd := h.undoStack[n-1]
	h.undoStack = h.undoStack[:n-1]

	if !cmd.Undo() {
		h.undoStack = append(h.undoStack, cmd)
		h.log.Debugf("command undo returned false: %s", cmd.Name())
		return false
	}

	h.redoStack = append(h.redoStack, cmd)
	h.currentMemory = h.calculateMemory()
	h.notify(EventCommandUndone, cmd.Name())
	return true
}

// Redo pops the top redo entry and re-executes it, pushing it back
// onto the undo stack on success. On failure the entry is restored to
// the top of the redo stack unchanged.
func (h *HistoryManager) Redo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.canRedoLocked() {
		return false
	}

	n := len(h.redoStack)
	cmd := h.redoStack[n-1]
	h.redoStack = h.redoStack[:n-1]

	if !cmd.Execute() {
		h.redoStack = append(h.redoStack, cmd)
		h.log.Debugf("command redo returned false: %s", cmd.Name())
		return false
	}

	h.undoStack = append(h.undoStack, cmd)
	h.notify(EventCommandRedone, cmd.Name())
	return true
}

// ClearHistory discards both stacks and every captured snapshot.
func (h *HistoryManager) ClearHistory() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.snapshots = nil
	h.currentMemory = 0
	h.notify(EventHistoryCleared, "")
}

// HistorySize returns the number of entries on the undo stack.
func (h *HistoryManager) HistorySize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// MemoryUsage returns the combined memory usage of both stacks.
func (h *HistoryManager) MemoryUsage() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentMemory
}

// UndoHistory returns command names from most-recent to least-recent.
func (h *HistoryManager) UndoHistory() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.undoStack))
	for i, c := range h.undoStack {
		out[len(h.undoStack)-1-i] = c.Name()
	}
	return out
}

// RedoHistory returns command names from most-recent to least-recent.
func (h *HistoryManager) RedoHistory() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.redoStack))
	for i, c := range h.redoStack {
		out[len(h.redoStack)-1-i] = c.Name()
	}
	return out
}

// BeginTransaction opens a transaction. A second call while one is
// already open is a no-op (nesting is unsupported, spec §4.4).
func (h *HistoryManager) BeginTransaction(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.currentTxn != nil {
		h.log.Debugf("transaction already in progress, ignoring begin %q", name)
		return
	}
	h.currentTxn = NewTransaction(name)
	h.notify(EventTransactionStarted, name)
}

// IsInTransaction reports whether a transaction is currently open.
func (h *HistoryManager) IsInTransaction() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentTxn != nil
}

// EndTransaction commits the open transaction as a single composite
// command onto the undo stack. A call with no open transaction is a
// no-op. An empty transaction (no commands added) commits nothing.
func (h *HistoryManager) EndTransaction() {
	h.mu.Lock()
	if h.currentTxn == nil {
		h.log.Debugf("no transaction to end")
		h.mu.Unlock()
		return
	}
	txn := h.currentTxn
	h.currentTxn = nil
	h.mu.Unlock()

	if txn.IsEmpty() {
		h.mu.Lock()
		h.notify(EventTransactionCommitted, txn.Name())
		h.mu.Unlock()
		return
	}

	composite := txn.Commit()
	h.mu.Lock()
	for _, redone := range h.redoStack {
		h.currentMemory -= redone.MemoryUsage()
	}
	h.redoStack = h.redoStack[:0]
	h.pushUndo(composite)
	h.enforceHistoryLimits()
	h.enforceMemoryLimits()
	h.notify(EventTransactionCommitted, composite.Name())
	h.mu.Unlock()
}

// CancelTransaction rolls back the open transaction's already-executed
// commands in reverse order. A call with no open transaction is a
// no-op.
func (h *HistoryManager) CancelTransaction() {
	h.mu.Lock()
	if h.currentTxn == nil {
		h.log.Debugf("no transaction to cancel")
		h.mu.Unlock()
		return
	}
	txn := h.currentTxn
	h.currentTxn = nil
	h.mu.Unlock()

	txn.Rollback()
	h.mu.Lock()
	h.notify(EventTransactionRolledBack, txn.Name())
	h.mu.Unlock()
}

func (h *HistoryManager) pushUndo(cmd Command) {
	h.undoStack = append(h.undoStack, cmd)
	h.currentMemory += cmd.MemoryUsage()
}

func (h *HistoryManager) enforceMemoryLimits() {
	for h.currentMemory > h.maxMemory && len(h.undoStack) > 0 {
		if h.bus != nil {
			h.bus.Dispatch(MemoryPressureEvent{Current: h.currentMemory, Limit: h.maxMemory})
		}
		h.currentMemory -= h.undoStack[0].MemoryUsage()
		h.undoStack = h.undoStack[1:]
		if len(h.snapshots) > 0 {
			h.snapshots = h.snapshots[1:]
		}
	}
}

func (h *HistoryManager) enforceHistoryLimits() {
	for h.maxHistory > 0 && len(h.undoStack) > h.maxHistory {
		h.currentMemory -= h.undoStack[0].MemoryUsage()
		h.undoStack = h.undoStack[1:]
		if len(h.snapshots) > 0 {
			h.snapshots = h.snapshots[1:]
		}
	}
}

func (h *HistoryManager) captureSnapshot() {
	if h.snapshotSource == nil {
		return
	}
	h.snapshots = append(h.snapshots, h.snapshotSource.Capture())
}

func (h *HistoryManager) calculateMemory() uint64 {
	var total uint64
	for _, c := range h.undoStack {
		total += c.MemoryUsage()
	}
	for _, c := range h.redoStack {
		total += c.MemoryUsage()
	}
	return total
}

func (h *HistoryManager) notify(kind UndoRedoEventKind, name string) {
	if h.bus == nil {
		return
	}
	h.bus.Dispatch(UndoRedoEvent{
		Kind:        kind,
		CommandName: name,
		HistorySize: len(h.undoStack),
		Memory:      h.currentMemory,
		CanUndo:     h.canUndoLocked(),
		CanRedo:     h.canRedoLocked(),
	})
}
