// Package history is the reversible command engine. Commands are plain data:
// per-entity before/after snapshots applied by one generic interpreter, so a
// command is serializable, survives process restarts, and undo restores exact
// prior field values without inverse arithmetic.
package history

import (
	"encoding/json"
	"fmt"

	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

type EntityKind string

const (
	KindObject    EntityKind = "object"
	KindPlacement EntityKind = "placement"
	KindMarker    EntityKind = "marker"
	KindMilestone EntityKind = "milestone"
	KindThread    EntityKind = "thread"
	// KindTrackSet snapshots the whole track list. Tracks are keyed by index
	// and insert/remove renumbers them, so per-entity diffs don't apply.
	KindTrackSet EntityKind = "trackset"
)

// Change is one entity transition. Before == nil means the change creates the
// entity; After == nil means it deletes it. Both snapshots are full copies
// captured at construction time.
type Change struct {
	Kind   EntityKind      `json:"kind"`
	ID     string          `json:"id,omitempty"`
	Before json.RawMessage `json:"before,omitempty"`
	After  json.RawMessage `json:"after,omitempty"`
}

type Command struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Changes     []Change `json:"changes"`
}

// Snap marshals an entity snapshot for a Change. nil in, nil out.
func Snap[T any](v *T) json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		// Model types are plain JSON-taggable structs; failure here means a
		// programming error, not user data.
		panic(fmt.Sprintf("history: marshal snapshot: %v", err))
	}
	return raw
}

// Execute applies every change in order.
func (c Command) Execute(db *store.DB) error {
	for i, ch := range c.Changes {
		if err := applyChange(db, ch, ch.After); err != nil {
			return fmt.Errorf("command %s change %d: %w", c.Type, i, err)
		}
	}
	finish(db)
	return nil
}

// Undo applies every change's Before snapshot in reverse order.
func (c Command) Undo(db *store.DB) error {
	for i := len(c.Changes) - 1; i >= 0; i-- {
		ch := c.Changes[i]
		if err := applyChange(db, ch, ch.Before); err != nil {
			return fmt.Errorf("undo %s change %d: %w", c.Type, i, err)
		}
	}
	finish(db)
	return nil
}

func finish(db *store.DB) {
	db.SortPlacements()
	db.SortTracks()
	db.Bump()
}

// applyChange drives the document toward target: nil removes the entity,
// non-nil upserts the decoded snapshot.
func applyChange(db *store.DB, ch Change, target json.RawMessage) error {
	switch ch.Kind {
	case KindObject:
		return applyEntity(&db.Objects, ch, target, func(o model.Object) string { return o.ID })
	case KindPlacement:
		return applyEntity(&db.Placements, ch, target, func(p model.Placement) string { return p.ID })
	case KindMarker:
		return applyEntity(&db.Markers, ch, target, func(m model.Marker) string { return m.ID })
	case KindMilestone:
		return applyEntity(&db.Milestones, ch, target, func(m model.Milestone) string { return m.ID })
	case KindThread:
		return applyEntity(&db.Threads, ch, target, func(t model.Thread) string { return t.ID })
	case KindTrackSet:
		if target == nil {
			db.Tracks = nil
			return nil
		}
		var tracks []model.Track
		if err := json.Unmarshal(target, &tracks); err != nil {
			return err
		}
		db.Tracks = tracks
		return nil
	default:
		return fmt.Errorf("unknown entity kind %q", ch.Kind)
	}
}

func applyEntity[T any](xs *[]T, ch Change, target json.RawMessage, idOf func(T) string) error {
	if target == nil {
		for i := range *xs {
			if idOf((*xs)[i]) == ch.ID {
				*xs = append((*xs)[:i], (*xs)[i+1:]...)
				return nil
			}
		}
		// Already absent. Deleting a missing entity is not an error for the
		// interpreter; construction-time validation is the gate.
		return nil
	}
	var v T
	if err := json.Unmarshal(target, &v); err != nil {
		return err
	}
	for i := range *xs {
		if idOf((*xs)[i]) == ch.ID {
			(*xs)[i] = v
			return nil
		}
	}
	*xs = append(*xs, v)
	return nil
}
