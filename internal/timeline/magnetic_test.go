package timeline

import (
	"testing"

	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

func magneticFixture(blocks ...[2]float64) *store.DB {
	db := store.NewDB()
	db.Objects = append(db.Objects, model.Object{ID: "obj-x", Name: "X", TypeID: "note"})
	for i, b := range blocks {
		p := model.Placement{
			ID:       "plc-" + string(rune('a'+i)),
			ObjectID: "obj-x",
			Type:     model.PlacementMutation,
			Position: b[0],
			Seq:      i + 1,
		}
		if b[1] > b[0] {
			end := b[1]
			p.EndPosition = &end
		}
		db.Placements = append(db.Placements, p)
	}
	db.SortPlacements()
	return db
}

func TestResolveMagneticEmptyTrackKeepsDesired(t *testing.T) {
	db := magneticFixture()
	if got := ResolveMagnetic(db, 0, 42, 5, nil); got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestResolveMagneticFreePositionUnchanged(t *testing.T) {
	db := magneticFixture([2]float64{0, 10})
	if got := ResolveMagnetic(db, 0, 30, 5, nil); got != 30 {
		t.Fatalf("got %v, want 30", got)
	}
}

func TestResolveMagneticSnugsAgainstBlock(t *testing.T) {
	db := magneticFixture([2]float64{10, 20})

	// Dropping into the middle of the block lands snug against the nearer edge.
	if got := ResolveMagnetic(db, 0, 11, 5, nil); got != 5 {
		t.Fatalf("left edge: got %v, want 5 (snug before block)", got)
	}
	if got := ResolveMagnetic(db, 0, 18, 5, nil); got != 20 {
		t.Fatalf("right edge: got %v, want 20 (snug after block)", got)
	}
}

func TestResolveMagneticTiePrefersEarlier(t *testing.T) {
	db := magneticFixture([2]float64{10, 20})
	// Desired dead-center: 15 with width 0 → candidates 10 and 20, equal
	// distance; the earlier one wins.
	if got := ResolveMagnetic(db, 0, 15, 0, nil); got != 10 {
		t.Fatalf("got %v, want earlier candidate 10", got)
	}
}

func TestResolveMagneticSkipsTooSmallGaps(t *testing.T) {
	db := magneticFixture([2]float64{0, 10}, [2]float64{13, 20})
	// The 3-wide gap can't fit width 5; the nearest candidate that clears
	// both blocks is right after the second one.
	if got := ResolveMagnetic(db, 0, 11, 5, nil); got != 20 {
		t.Fatalf("got %v, want 20", got)
	}
}

func TestResolveMagneticIgnoresDraggedSet(t *testing.T) {
	db := magneticFixture([2]float64{10, 20})
	ignore := map[string]bool{"plc-a": true}
	if got := ResolveMagnetic(db, 0, 12, 5, ignore); got != 12 {
		t.Fatalf("ignored placement must not block, got %v", got)
	}
}

func TestResolveMagneticTouchingIsAllowed(t *testing.T) {
	db := magneticFixture([2]float64{10, 20})
	// [5,10) touches the block's start exactly; minimum gap is zero.
	if got := ResolveMagnetic(db, 0, 5, 5, nil); got != 5 {
		t.Fatalf("touching placement must fit, got %v", got)
	}
}

func TestSplitHalves(t *testing.T) {
	end := 20.0
	p := model.Placement{ID: "plc-a", ObjectID: "obj-x", Position: 10, EndPosition: &end}

	first, second, ok := SplitHalves(p, 14)
	if !ok {
		t.Fatalf("expected split to succeed")
	}
	if first.ID != "plc-a" || first.Position != 10 || *first.EndPosition != 14 {
		t.Fatalf("first half wrong: %+v", first)
	}
	if second.ID != "" || second.Position != 14 || *second.EndPosition != 20 {
		t.Fatalf("second half wrong: %+v", second)
	}
}

func TestSplitHalvesKeepsPayloadOnFirstHalf(t *testing.T) {
	end := 30.0
	p := model.Placement{
		ID:          "plc-a",
		ObjectID:    "obj-x",
		Type:        model.PlacementMutation,
		Position:    20,
		EndPosition: &end,
		Mutation:    &model.MutationPayload{Label: "grows up", Changes: map[string]model.AttrChange{"age": {To: 20.0}}},
	}

	first, second, ok := SplitHalves(p, 25)
	if !ok {
		t.Fatalf("expected split to succeed")
	}
	if first.Mutation == nil || first.Mutation.Label != "grows up" {
		t.Fatalf("first half must keep the payload: %+v", first.Mutation)
	}
	if second.Mutation != nil {
		t.Fatalf("second half must not duplicate the payload: %+v", second.Mutation)
	}

	// Folding both halves applies the change once.
	db := store.NewDB()
	db.Objects = append(db.Objects, model.Object{ID: "obj-x", Name: "X", TypeID: "note"})
	first.Seq = 1
	second.ID = "plc-b"
	second.Seq = 2
	db.Placements = append(db.Placements, first, second)
	db.SortPlacements()
	st, ok := StateAt(db, "obj-x", 40)
	if !ok {
		t.Fatalf("state lookup failed")
	}
	if len(st.Mutations) != 1 {
		t.Fatalf("payload must apply once, got %d mutations", len(st.Mutations))
	}
}

func TestSplitHalvesRejectsEdgesAndPoints(t *testing.T) {
	end := 20.0
	ranged := model.Placement{ID: "plc-a", Position: 10, EndPosition: &end}
	point := model.Placement{ID: "plc-b", Position: 10}

	for _, at := range []float64{10, 20, 5, 25} {
		if _, _, ok := SplitHalves(ranged, at); ok {
			t.Fatalf("split at %v must fail", at)
		}
	}
	if _, _, ok := SplitHalves(point, 10); ok {
		t.Fatalf("point placements cannot split")
	}
}
