package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"aethel-cli/internal/store"
)

// DefaultLimit caps the undo stack depth when no limit is configured.
const DefaultLimit = 200

// ErrCorruptEntry reports an undo/redo stack entry whose stored snapshots no
// longer apply. The entry is logged and dropped; it is never re-raised as a
// crash.
var ErrCorruptEntry = errors.New("corrupt history entry")

// History owns the undo and redo stacks for one document. Execute applies a
// command and records it; Undo/Redo replay snapshots through the command
// interpreter. All calls are synchronous; a command never spans ticks.
type History struct {
	db    *store.DB
	undo  []Command
	redo  []Command
	limit int
	log   *slog.Logger

	// Recorded is called after every successful execute/undo/redo, for the
	// append-only event log. Optional.
	Recorded func(action string, cmd Command)
}

func New(db *store.DB, limit int, logger *slog.Logger) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &History{db: db, limit: limit, log: logger}
}

// Execute runs the command, pushes it on the undo stack, and clears the redo
// stack. A command that fails to execute is not pushed.
func (h *History) Execute(cmd Command) error {
	if len(cmd.Changes) == 0 {
		return nil
	}
	if cmd.Description == "" {
		cmd.Description = cmd.Type
	}
	if err := cmd.Execute(h.db); err != nil {
		return err
	}
	h.push(cmd)
	h.record("execute", cmd)
	return nil
}

// push records an already-applied command (batch commit uses this: children
// execute as they are added, the composite must not run twice).
func (h *History) push(cmd Command) {
	h.undo = append(h.undo, cmd)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDescription describes the command Undo would revert. Empty only when
// CanUndo is false.
func (h *History) UndoDescription() string {
	if len(h.undo) == 0 {
		return ""
	}
	return h.undo[len(h.undo)-1].Description
}

// RedoDescription describes the command Redo would re-apply.
func (h *History) RedoDescription() string {
	if len(h.redo) == 0 {
		return ""
	}
	return h.redo[len(h.redo)-1].Description
}

// Undo reverts the most recent command. A command that executed successfully
// must undo cleanly; if its stored snapshots fail to apply the entry is
// corrupt: it is logged, dropped from the stack, and reported as
// ErrCorruptEntry without crashing or reaching the redo stack.
func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return nil
	}
	cmd := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	if err := cmd.Undo(h.db); err != nil {
		h.log.Error("dropping corrupt history entry",
			"command", cmd.Type, "description", cmd.Description, "err", err)
		return fmt.Errorf("%w: %s: %v", ErrCorruptEntry, cmd.Type, err)
	}
	h.redo = append(h.redo, cmd)
	h.record("undo", cmd)
	return nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return nil
	}
	cmd := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	if err := cmd.Execute(h.db); err != nil {
		h.log.Error("dropping corrupt history entry",
			"command", cmd.Type, "description", cmd.Description, "err", err)
		return fmt.Errorf("%w: %s: %v", ErrCorruptEntry, cmd.Type, err)
	}
	h.undo = append(h.undo, cmd)
	h.record("redo", cmd)
	return nil
}

func (h *History) record(action string, cmd Command) {
	if h.Recorded != nil {
		h.Recorded(action, cmd)
	}
}

// Depths returns the undo and redo stack sizes (for status display).
func (h *History) Depths() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// SaveTo serializes the stacks into the document so undo survives process
// restarts (the CLI runs one process per invocation).
func (h *History) SaveTo(db *store.DB) error {
	var err error
	db.HistoryUndo, err = json.Marshal(h.undo)
	if err != nil {
		return err
	}
	db.HistoryRedo, err = json.Marshal(h.redo)
	if err != nil {
		return err
	}
	return nil
}

// LoadFrom restores the stacks persisted by SaveTo. Unparseable blobs reset
// history rather than failing the document load.
func (h *History) LoadFrom(db *store.DB) {
	h.undo = nil
	h.redo = nil
	if len(db.HistoryUndo) > 0 {
		if err := json.Unmarshal(db.HistoryUndo, &h.undo); err != nil {
			h.log.Warn("resetting unreadable undo stack", "err", err)
			h.undo = nil
		}
	}
	if len(db.HistoryRedo) > 0 {
		if err := json.Unmarshal(db.HistoryRedo, &h.redo); err != nil {
			h.log.Warn("resetting unreadable redo stack", "err", err)
			h.redo = nil
		}
	}
}
