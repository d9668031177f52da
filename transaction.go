package voxforge

// Transaction accumulates commands that execute eagerly (so their
// effects are visible immediately) but are held aside from the undo
// stack until Commit folds them into a single CompositeCommand, or
// Rollback undoes everything executed so far (spec §4.4). Nesting is
// not supported; HistoryManager enforces that at the single-open-
// transaction level.
type Transaction struct {
	name       string
	commands   []Command
	committed  bool
	rolledBack bool
}

// NewTransaction begins a named, empty transaction.
func NewTransaction(name string) *Transaction {
	return &Transaction{name: name}
}

// Add executes cmd immediately and holds it for later commit/rollback.
// Returns false (and does not hold the command) if execution fails.
func (t *Transaction) Add(cmd Command) bool {
	if !cmd.Execute() {
		return false
	}
	t.commands = append(t.commands, cmd)
	return true
}

// IsEmpty reports whether any command has been added.
func (t *Transaction) IsEmpty() bool { return len(t.commands) == 0 }

// Len reports the number of held commands.
func (t *Transaction) Len() int { return len(t.commands) }

// Name returns the transaction's name.
func (t *Transaction) Name() string { return t.name }

// MemoryUsage sums the memory usage of every held command.
func (t *Transaction) MemoryUsage() uint64 {
	var total uint64
	for _, c := range t.commands {
		total += c.MemoryUsage()
	}
	return total
}

// Commit folds every held command (already executed) into a single
// CompositeCommand suitable for pushing onto an undo stack. The
// returned composite's Execute is never called by the caller; its
// Undo reverses every held command in reverse order.
func (t *Transaction) Commit() *CompositeCommand {
	t.committed = true
	composite := NewCompositeCommand(t.name)
	for _, c := range t.commands {
		composite.Add(c)
	}
	// The commands already executed via Add; mark them as this
	// composite's executed set directly so Undo reverses them without
	// re-running Execute.
	composite.executed = append([]Command(nil), t.commands...)
	return composite
}

// Rollback undoes every held command in reverse order.
func (t *Transaction) Rollback() {
	t.rolledBack = true
	for i := len(t.commands) - 1; i >= 0; i-- {
		t.commands[i].Undo()
	}
}
