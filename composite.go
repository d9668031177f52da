package voxforge

// CompositeCommand executes an ordered list of child commands as one
// unit. If a child fails mid-execution, every previously-executed
// child is undone in reverse order and the composite reports failure
// (spec §3.7), leaving engine state as if the composite never ran.
type CompositeCommand struct {
	name     string
	commands []Command
	executed []Command
}

// NewCompositeCommand builds an empty named composite. Commands may
// be appended with Add until Execute is called.
func NewCompositeCommand(name string) *CompositeCommand {
	return &CompositeCommand{name: name}
}

// Add appends a child command. Only valid before Execute.
func (c *CompositeCommand) Add(cmd Command) {
	c.commands = append(c.commands, cmd)
}

// Len reports the number of child commands.
func (c *CompositeCommand) Len() int { return len(c.commands) }

// At returns the child command at index i.
func (c *CompositeCommand) At(i int) Command { return c.commands[i] }

func (c *CompositeCommand) Execute() bool {
	c.executed = c.executed[:0]
	for _, cmd := range c.commands {
		if !cmd.Execute() {
			for i := len(c.executed) - 1; i >= 0; i-- {
				c.executed[i].Undo()
			}
			c.executed = c.executed[:0]
			return false
		}
		c.executed = append(c.executed, cmd)
	}
	return true
}

func (c *CompositeCommand) Undo() bool {
	ok := true
	for i := len(c.executed) - 1; i >= 0; i-- {
		if !c.executed[i].Undo() {
			ok = false
		}
	}
	return ok
}

func (c *CompositeCommand) Name() string { return c.name }

func (c *CompositeCommand) Kind() CommandKind { return CommandComposite }

func (c *CompositeCommand) MemoryUsage() uint64 {
	var total uint64
	for _, cmd := range c.commands {
		total += cmd.MemoryUsage()
	}
	return total
}
