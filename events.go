package voxforge

import "sync"

// VoxelChanged is published exactly once per actual occupancy
// transition (spec §4.1 Event contract).
type VoxelChanged struct {
	Position   Increment
	Resolution Resolution
	Old, New   bool
}

// ResolutionChanged is published only when the active resolution
// actually changes.
type ResolutionChanged struct {
	Old, New Resolution
}

// WorkspaceResized is published on every successful resize.
type WorkspaceResized struct {
	OldSize, NewSize WorkspaceSize
}

// UndoRedoEventKind tags the kind of history transition that occurred.
type UndoRedoEventKind int

const (
	EventCommandExecuted UndoRedoEventKind = iota
	EventCommandUndone
	EventCommandRedone
	EventHistoryCleared
	EventTransactionStarted
	EventTransactionCommitted
	EventTransactionRolledBack
)

// UndoRedoEvent carries a history-manager state transition.
type UndoRedoEvent struct {
	Kind        UndoRedoEventKind
	CommandName string
	HistorySize int
	Memory      uint64
	CanUndo     bool
	CanRedo     bool
}

// MemoryPressureEvent is published when a resource cap is about to be
// or has been enforced by eviction.
type MemoryPressureEvent struct {
	Current uint64
	Limit   uint64
}

// EventBus is a typed publish/subscribe dispatcher. Each event type
// gets its own list of callbacks; dispatch is synchronous on the
// publishing goroutine (spec §5: "dispatch is synchronous on the
// publishing thread; handlers must not re-enter the engine or they
// will deadlock"). Modeled as typed channels-of-one per spec §9's
// design note, rather than a polymorphic visitor: each typed Subscribe
// method registers its callback under that event type's fixed name
// key, the same key eventKey derives for the event in Dispatch.
type EventBus struct {
	mu       sync.Mutex
	handlers map[string][]func(any)
}

// NewEventBus creates an empty dispatcher.
func NewEventBus() *EventBus {
	return &EventBus{handlers: make(map[string][]func(any))}
}

func eventKey(e any) string {
	switch e.(type) {
	case VoxelChanged:
		return "VoxelChanged"
	case ResolutionChanged:
		return "ResolutionChanged"
	case WorkspaceResized:
		return "WorkspaceResized"
	case UndoRedoEvent:
		return "UndoRedoEvent"
	case MemoryPressureEvent:
		return "MemoryPressureEvent"
	default:
		return "unknown"
	}
}

// SubscribeVoxelChanged registers a callback invoked on every
// VoxelChanged publication.
func (b *EventBus) SubscribeVoxelChanged(fn func(VoxelChanged)) {
	b.subscribe("VoxelChanged", func(e any) { fn(e.(VoxelChanged)) })
}

// SubscribeResolutionChanged registers a callback invoked on every
// ResolutionChanged publication.
func (b *EventBus) SubscribeResolutionChanged(fn func(ResolutionChanged)) {
	b.subscribe("ResolutionChanged", func(e any) { fn(e.(ResolutionChanged)) })
}

// SubscribeWorkspaceResized registers a callback invoked on every
// WorkspaceResized publication.
func (b *EventBus) SubscribeWorkspaceResized(fn func(WorkspaceResized)) {
	b.subscribe("WorkspaceResized", func(e any) { fn(e.(WorkspaceResized)) })
}

// SubscribeUndoRedo registers a callback invoked on every UndoRedoEvent
// publication.
func (b *EventBus) SubscribeUndoRedo(fn func(UndoRedoEvent)) {
	b.subscribe("UndoRedoEvent", func(e any) { fn(e.(UndoRedoEvent)) })
}

// SubscribeMemoryPressure registers a callback invoked on every
// MemoryPressureEvent publication.
func (b *EventBus) SubscribeMemoryPressure(fn func(MemoryPressureEvent)) {
	b.subscribe("MemoryPressureEvent", func(e any) { fn(e.(MemoryPressureEvent)) })
}

func (b *EventBus) subscribe(key string, fn func(any)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[key] = append(b.handlers[key], fn)
}

// Dispatch publishes e to every subscriber registered for its type.
// Handlers run synchronously, in registration order, on the calling
// goroutine. A handler that panics does not prevent remaining handlers
// from running; the panic propagates to the original caller of
// Dispatch after all handlers have run.
func (b *EventBus) Dispatch(e any) {
	key := eventKey(e)
	b.mu.Lock()
	// copy under lock so a handler registering a new subscriber mid-
	// dispatch doesn't race the slice being ranged over.
	hs := make([]func(any), len(b.handlers[key]))
	copy(hs, b.handlers[key])
	b.mu.Unlock()

	var firstPanic any
	for _, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil && firstPanic == nil {
					firstPanic = r
				}
			}()
			h(e)
		}()
	}
	if firstPanic != nil {
		panic(firstPanic)
	}
}
