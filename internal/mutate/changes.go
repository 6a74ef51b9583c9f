package mutate

import (
	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
)

// Change constructors. Snapshots are captured here, at command construction
// time, so undo restores exact prior values without recomputation.

func objectChange(before, after *model.Object) history.Change {
	ch := history.Change{Kind: history.KindObject}
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

func placementChange(before, after *model.Placement) history.Change {
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

func markerChange(before, after *model.Marker) history.Change {
	ch := history.Change{Kind: history.KindMarker}
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

func milestoneChange(before, after *model.Milestone) history.Change {
	ch := history.Change{Kind: history.KindMilestone}
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

func threadChange(before, after *model.Thread) history.Change {
	ch := history.Change{Kind: history.KindThread}
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

// detached copies a store-owned entity before handing it to the caller.
// Pointers from the store's Find helpers alias the backing arrays, and a
// later command can reshuffle those slots; the copy keeps the handle stable.
func detached[T any](p *T, ok bool) *T {
	if !ok || p == nil {
		return nil
	}
	c := *p
	return &c
}

func trackSetChange(before, after []model.Track) history.Change {
	b := before
	a := after
	return history.Change{
		Kind:   history.KindTrackSet,
		Before: history.Snap(&b),
		After:  history.Snap(&a),
	}
}

func copyTracks(xs []model.Track) []model.Track {
	out := make([]model.Track, len(xs))
	copy(out, xs)
	return out
}
