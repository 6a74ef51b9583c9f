package editor

import (
	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

type ClipboardKind int

const (
	ClipPlacements ClipboardKind = iota
	ClipMutations
)

// Clipboard holds copies of placements, not references: the source can be
// deleted or undone away without invalidating a later paste.
type Clipboard struct {
	Kind  ClipboardKind
	Items []model.Placement
}

// Copy snapshots the selected placements into the clipboard. With
// ClipMutations only mutation placements are taken.
func (e *Editor) Copy(kind ClipboardKind) {
	var items []model.Placement
	for _, id := range e.SelectedIDs() {
		p, ok := e.db.FindPlacement(id)
		if !ok {
			continue
		}
		if kind == ClipMutations && p.Type != model.PlacementMutation {
			continue
		}
		items = append(items, *p)
	}
	if len(items) == 0 {
		return
	}
	e.Clipboard = &Clipboard{Kind: kind, Items: items}
}

// Paste re-creates the clipboard placements anchored at the given position:
// the earliest copied placement lands at position, the rest keep their
// relative offsets and tracks. Everything lands in one command. A second
// creation placement for an object is pasted as a mutation-less duplicate
// only if the object no longer has one; otherwise it is skipped.
func (e *Editor) Paste(position float64) error {
	cb := e.Clipboard
	if cb == nil || len(cb.Items) == 0 {
		return nil
	}

	anchor := cb.Items[0].Position
	for _, p := range cb.Items[1:] {
		if p.Position < anchor {
			anchor = p.Position
		}
	}
	offset := position - anchor

	cmd := history.Command{Type: "placement.paste", Description: "Paste placements"}
	created := map[string]bool{}
	for _, src := range cb.Items {
		if tr, ok := e.db.FindTrack(src.Track); ok && tr.Locked {
			continue
		}
		if src.Type == model.PlacementCreation {
			if created[src.ObjectID] || e.hasCreation(src.ObjectID) {
				continue
			}
			created[src.ObjectID] = true
		}
		np := src
		np.ID = (store.Store{}).NextID(e.db, "plc")
		np.Seq = e.db.AllocSeq()
		np.Locked = false
		np.Position = src.Position + offset
		if src.EndPosition != nil {
			end := *src.EndPosition + offset
			np.EndPosition = &end
		}
		cmd.Changes = append(cmd.Changes, placementDataChange(nil, &np))
	}
	if len(cmd.Changes) == 0 {
		return nil
	}
	return e.hist.Execute(cmd)
}

func (e *Editor) hasCreation(objectID string) bool {
	for _, p := range e.db.Placements {
		if p.ObjectID == objectID && p.Type == model.PlacementCreation {
			return true
		}
	}
	return false
}
