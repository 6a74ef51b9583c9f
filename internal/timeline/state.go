// Package timeline holds the pure computations over placement state:
// state-at-cursor folding, magnetic move resolution and split math. Nothing
// here mutates the document; every function is a plain read of *store.DB.
package timeline

import (
	"sort"
	"strings"

	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

// State is the derived view of one object at a cursor position.
type State struct {
	// ComputedAttributes is the object's base attributes with every mutation at
	// position <= cursor folded in, later mutations overwriting earlier ones
	// per attribute key.
	ComputedAttributes map[string]any
	// Mutations are the applied mutation placements, in fold order.
	Mutations []model.Placement
	// FutureMutations are mutation placements past the cursor, in position order.
	FutureMutations []model.Placement
}

// StateAt recomputes an object's attribute state at the given cursor
// position. It is a pure function of current placement state; there is no
// cache to go stale.
//
// Mutations sort by position ascending; ties break by insertion sequence,
// then by id, so the fold is deterministic under arbitrary edit order.
func StateAt(db *store.DB, objectID string, position float64) (State, bool) {
	obj, ok := db.FindObject(strings.TrimSpace(objectID))
	if !ok {
		return State{}, false
	}

	audible := audibleTracks(db)
	var muts []model.Placement
	for _, p := range db.PlacementsForObject(obj.ID) {
		if p.Type == model.PlacementMutation && p.Mutation != nil && audible(p.Track) {
			muts = append(muts, p)
		}
	}
	sort.SliceStable(muts, func(i, j int) bool {
		a, b := muts[i], muts[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		return a.ID < b.ID
	})

	st := State{ComputedAttributes: map[string]any{}}
	for k, v := range obj.Attributes {
		st.ComputedAttributes[k] = v
	}
	for _, m := range muts {
		if m.Position <= position {
			for key, ch := range m.Mutation.Changes {
				st.ComputedAttributes[key] = ch.To
			}
			st.Mutations = append(st.Mutations, m)
		} else {
			st.FutureMutations = append(st.FutureMutations, m)
		}
	}
	return st, true
}

// audibleTracks returns a predicate for which tracks contribute to state:
// muted tracks never do, and when any track is soloed only soloed tracks do.
// A track index with no Track row counts as a plain unmuted track.
func audibleTracks(db *store.DB) func(int) bool {
	anySolo := false
	for _, t := range db.Tracks {
		if t.Solo {
			anySolo = true
			break
		}
	}
	return func(index int) bool {
		t, ok := db.FindTrack(index)
		if !ok {
			return !anySolo
		}
		if t.Muted {
			return false
		}
		if anySolo {
			return t.Solo
		}
		return true
	}
}

// Intersects reports whether the placement's [Position, End()] interval
// touches [min, max]. Point placements are zero-width intervals.
func Intersects(p model.Placement, min, max float64) bool {
	return p.End() >= min && p.Position <= max
}
