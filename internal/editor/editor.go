// Package editor is the timeline interaction state machine: selection sets,
// tools, the drag/resize/box-select lifecycle, snap and clipboard state. It
// is UI-framework-free; the TUI feeds it pointer events and it issues
// commands through internal/mutate on commit. While a pointer is down all
// state here is an ephemeral preview; nothing reaches the store until
// PointerUp converts the gesture into exactly one command (or one batch).
package editor

import (
	"log/slog"

	"aethel-cli/internal/geometry"
	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/mutate"
	"aethel-cli/internal/store"
)

type Tool int

const (
	ToolSelect Tool = iota
	ToolRazor
	ToolSlip
	ToolSlide
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolRazor:
		return "razor"
	case ToolSlip:
		return "slip"
	case ToolSlide:
		return "slide"
	default:
		return "unknown"
	}
}

type Modifiers struct {
	Shift bool
	Ctrl  bool
}

func (m Modifiers) additive() bool { return m.Shift || m.Ctrl }

type Editor struct {
	db   *store.DB
	hist *history.History
	log  *slog.Logger

	View geometry.Viewport

	Tool Tool
	// Snap rounds drag positions to multiples of SnapStep.
	Snap     bool
	SnapStep float64
	// DragThreshold is the screen distance below which a press-release is a
	// click, not a drag.
	DragThreshold float64
	// EdgeWidth is the screen distance from a ranged placement's edge within
	// which a press starts a resize instead of a move.
	EdgeWidth float64

	SelectedPlacements map[string]bool
	SelectedCards      map[string]bool
	SelectedMutations  map[string]bool

	drag *DragState
	box  *BoxState

	Clipboard *Clipboard
}

func New(db *store.DB, hist *history.History, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		db:                 db,
		hist:               hist,
		log:                logger,
		Tool:               ToolSelect,
		Snap:               true,
		SnapStep:           1,
		DragThreshold:      3,
		EdgeWidth:          2,
		SelectedPlacements: map[string]bool{},
		SelectedCards:      map[string]bool{},
		SelectedMutations:  map[string]bool{},
	}
}

func (e *Editor) History() *history.History { return e.hist }

func (e *Editor) ToggleSnap() { e.Snap = !e.Snap }

// Select applies the click selection rules: plain click replaces the
// selection with the clicked placement; shift/ctrl toggles membership.
func (e *Editor) Select(id string, mods Modifiers) {
	if mods.additive() {
		if e.SelectedPlacements[id] {
			delete(e.SelectedPlacements, id)
		} else {
			e.SelectedPlacements[id] = true
		}
		return
	}
	e.SelectedPlacements = map[string]bool{id: true}
}

func (e *Editor) ClearSelection() {
	e.SelectedPlacements = map[string]bool{}
	e.SelectedCards = map[string]bool{}
	e.SelectedMutations = map[string]bool{}
}

// SelectedIDs returns the selected placement ids in document order.
func (e *Editor) SelectedIDs() []string {
	var out []string
	for _, p := range e.db.Placements {
		if e.SelectedPlacements[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

// AssignGroup sets (or with "" clears) the group on every selected
// placement as one batch.
func (e *Editor) AssignGroup(groupID string) error {
	batch := e.hist.BeginBatch("Group placements")
	for _, id := range e.SelectedIDs() {
		plc, ok := e.db.FindPlacement(id)
		if !ok || plc.Locked {
			continue
		}
		before := *plc
		after := before
		if groupID == "" {
			after.GroupID = nil
		} else {
			g := groupID
			after.GroupID = &g
		}
		if err := batch.Add(history.Command{
			Type:        "placement.update",
			Description: "Group placement",
			Changes:     []history.Change{placementDataChange(&before, &after)},
		}); err != nil {
			return err
		}
	}
	return batch.Commit()
}

// DeleteSelection removes every selected unlocked placement in one command.
// Locked placements and placements on locked tracks stay.
func (e *Editor) DeleteSelection() error {
	cmd := history.Command{Type: "placement.remove", Description: "Delete placements"}
	for _, id := range e.SelectedIDs() {
		p, ok := e.db.FindPlacement(id)
		if !ok || p.Locked {
			continue
		}
		if tr, ok := e.db.FindTrack(p.Track); ok && tr.Locked {
			continue
		}
		before := *p
		cmd.Changes = append(cmd.Changes, placementDataChange(&before, nil))
	}
	if len(cmd.Changes) == 0 {
		return nil
	}
	e.SelectedPlacements = map[string]bool{}
	return e.hist.Execute(cmd)
}

// SelectGroup extends the selection to every placement sharing a group with
// a selected one, so grouped placements drag together.
func (e *Editor) SelectGroup() {
	groups := map[string]bool{}
	for _, p := range e.db.Placements {
		if e.SelectedPlacements[p.ID] && p.GroupID != nil {
			groups[*p.GroupID] = true
		}
	}
	if len(groups) == 0 {
		return
	}
	for _, p := range e.db.Placements {
		if p.GroupID != nil && groups[*p.GroupID] {
			e.SelectedPlacements[p.ID] = true
		}
	}
}

// hitTest finds the topmost placement whose rendered extent contains the
// screen point, and whether the point is within EdgeWidth of its start or
// end edge.
type hitEdge int

const (
	hitNone hitEdge = iota
	hitBody
	hitStart
	hitEnd
)

func (e *Editor) hitTest(x, y float64) (*model.Placement, hitEdge) {
	track := e.View.TrackFromY(y)
	var found *model.Placement
	for i := range e.db.Placements {
		p := &e.db.Placements[i]
		if p.Track != track {
			continue
		}
		startX := e.View.ToScreenX(p.Position)
		endX := e.View.ToScreenX(p.End())
		if x < startX-e.EdgeWidth || x > endX+e.EdgeWidth {
			continue
		}
		found = p
	}
	if found == nil {
		return nil, hitNone
	}
	if found.Ranged() {
		startX := e.View.ToScreenX(found.Position)
		endX := e.View.ToScreenX(found.End())
		if x-startX >= -e.EdgeWidth && x-startX <= e.EdgeWidth {
			return found, hitStart
		}
		if endX-x >= -e.EdgeWidth && endX-x <= e.EdgeWidth {
			return found, hitEnd
		}
	}
	return found, hitBody
}

func (e *Editor) snapPos(pos float64) float64 {
	if !e.Snap || e.SnapStep <= 0 {
		return pos
	}
	steps := pos / e.SnapStep
	rounded := float64(int(steps + 0.5*sign(steps)))
	return rounded * e.SnapStep
}

func sign(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

func placementDataChange(before, after *model.Placement) history.Change {
	ch := history.Change{Kind: history.KindPlacement}
	if before != nil {
		ch.ID = before.ID
		ch.Before = history.Snap(before)
	}
	if after != nil {
		ch.ID = after.ID
		ch.After = history.Snap(after)
	}
	return ch
}

// swallowRecoverable silences locked/invalid-range/invalid-reparent errors:
// the gesture simply has no effect. Anything else propagates.
func (e *Editor) swallowRecoverable(err error) error {
	if err == nil {
		return nil
	}
	if mutate.IsRecoverable(err) {
		e.log.Debug("gesture rejected", "err", err)
		return nil
	}
	return err
}
