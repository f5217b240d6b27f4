package state

// Undo restores the most recent pre-mutation snapshot, pushing the current
// table onto the redo stack. It reports whether a step was applied; an empty
// history is a documented no-op, not an error. Only Set records history:
// Remove and Clear are not undoable, and new commits after an Undo do not
// invalidate the redo stack.
func (c *Container) Undo() (bool, error) {
	if len(c.history) == 0 {
		return false, nil
	}
	c.future = append(c.future, c.snapshot())
	top := c.history[len(c.history)-1]
	c.history = c.history[:len(c.history)-1]
	c.table = top
	c.version++

	c.bus.emitAll(c.snapshot())
	c.logger.LogMutation(MutationLogEvent{Op: OpUndo, Version: c.version})
	c.emitActivity("state.undo", "")
	return true, c.flush()
}

// Redo reverses the most recent Undo. Symmetric to Undo: no-op on an empty
// redo stack.
func (c *Container) Redo() (bool, error) {
	if len(c.future) == 0 {
		return false, nil
	}
	c.history = append(c.history, c.snapshot())
	top := c.future[len(c.future)-1]
	c.future = c.future[:len(c.future)-1]
	c.table = top
	c.version++

	c.bus.emitAll(c.snapshot())
	c.logger.LogMutation(MutationLogEvent{Op: OpRedo, Version: c.version})
	c.emitActivity("state.redo", "")
	return true, c.flush()
}

// CanUndo reports whether the undo stack holds at least one snapshot.
func (c *Container) CanUndo() bool {
	return len(c.history) > 0
}

// CanRedo reports whether the redo stack holds at least one snapshot.
func (c *Container) CanRedo() bool {
	return len(c.future) > 0
}

// HistoryLen returns the undo stack depth.
func (c *Container) HistoryLen() int {
	return len(c.history)
}

// FutureLen returns the redo stack depth.
func (c *Container) FutureLen() int {
	return len(c.future)
}
