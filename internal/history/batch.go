package history

import "errors"

// Batch accumulates child commands into one user-visible undo step, e.g.
// "create object + place it on the timeline". Children execute as they are
// added (later children may depend on earlier ones having applied); Commit
// pushes a single composite command whose undo reverts the children in
// reverse order. Nothing reaches the history stacks until Commit.
type Batch struct {
	h        *History
	desc     string
	children []Command
	failed   bool
}

func (h *History) BeginBatch(description string) *Batch {
	return &Batch{h: h, desc: description}
}

// Add executes cmd and records it as a child. If execution fails, every
// already-applied child is rolled back and the batch is poisoned: Commit will
// report the failure and push nothing.
func (b *Batch) Add(cmd Command) error {
	if b.failed {
		return errBatchFailed
	}
	if len(cmd.Changes) == 0 {
		return nil
	}
	if err := cmd.Execute(b.h.db); err != nil {
		b.rollback()
		b.failed = true
		return err
	}
	b.children = append(b.children, cmd)
	return nil
}

// Commit pushes the composite command. An empty batch commits to nothing.
func (b *Batch) Commit() error {
	if b.failed {
		return errBatchFailed
	}
	if len(b.children) == 0 {
		return nil
	}
	composite := Command{
		Type:        "batch",
		Description: b.desc,
	}
	if composite.Description == "" {
		composite.Description = b.children[0].Description
	}
	for _, c := range b.children {
		composite.Changes = append(composite.Changes, c.Changes...)
	}
	// Children already ran; push without re-executing.
	b.h.push(composite)
	b.h.record("execute", composite)
	b.children = nil
	return nil
}

// Cancel rolls back every applied child without touching history.
func (b *Batch) Cancel() {
	if b.failed {
		return
	}
	b.rollback()
	b.failed = true
}

func (b *Batch) rollback() {
	for i := len(b.children) - 1; i >= 0; i-- {
		if err := b.children[i].Undo(b.h.db); err != nil {
			b.h.log.Error("batch rollback failed", "command", b.children[i].Type, "err", err)
		}
	}
	b.children = nil
}

var errBatchFailed = errors.New("batch already failed")
