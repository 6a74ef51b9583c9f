package mutate

import (
	"errors"
	"testing"

	"aethel-cli/internal/model"
)

func TestAddPlacementValidation(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")

	var nf NotFoundError
	if _, err := AddPlacement(db, h, PlacementParams{ObjectID: "obj-ghost"}); !errors.As(err, &nf) {
		t.Fatalf("unknown object: got %v", err)
	}
	var rng InvalidRangeError
	if _, err := AddPlacement(db, h, PlacementParams{ObjectID: obj.ID, Position: 10, EndPosition: fp(10)}); !errors.As(err, &rng) {
		t.Fatalf("empty range: got %v", err)
	}
	if _, err := AddPlacement(db, h, PlacementParams{ObjectID: obj.ID, Type: model.PlacementMutation}); !errors.Is(err, ErrMissingMutationPayload) {
		t.Fatalf("mutation without payload: got %v", err)
	}

	mustPlace(t, db, h, obj.ID, 0, 5, nil)
	if _, err := AddPlacement(db, h, PlacementParams{ObjectID: obj.ID, Type: model.PlacementCreation, Position: 9}); !errors.Is(err, ErrDuplicateCreation) {
		t.Fatalf("second creation: got %v", err)
	}
}

func TestAddPlacementOnLockedTrack(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	if _, err := UpdateTrack(db, h, 0, TrackUpdate{Locked: bp(true)}); err != nil {
		t.Fatalf("lock track: %v", err)
	}
	var locked LockedError
	if _, err := AddPlacement(db, h, PlacementParams{ObjectID: obj.ID, Type: model.PlacementCreation}); !errors.As(err, &locked) {
		t.Fatalf("got %v", err)
	}
}

func TestLockedTrackRejectsPlacementEdits(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Scene")
	plc := mustPlace(t, db, h, obj.ID, 0, 10, fp(20))
	if _, err := UpdateTrack(db, h, 0, TrackUpdate{Locked: bp(true)}); err != nil {
		t.Fatalf("lock track: %v", err)
	}

	var locked LockedError
	if err := RemovePlacement(db, h, plc.ID); !errors.As(err, &locked) {
		t.Fatalf("remove: got %v", err)
	}
	if _, err := ResizePlacement(db, h, plc.ID, nil, fp(25)); !errors.As(err, &locked) {
		t.Fatalf("resize: got %v", err)
	}
	if _, _, err := SplitPlacement(db, h, plc.ID, 14); !errors.As(err, &locked) {
		t.Fatalf("split: got %v", err)
	}
	// Moving off a locked track is as rejected as moving onto one.
	if _, err := MovePlacement(db, h, plc.ID, 1, 10, false); !errors.As(err, &locked) {
		t.Fatalf("move off: got %v", err)
	}
	if moved, err := MovePlacements(db, h, []PlacementMove{{ID: plc.ID, Track: 1, Position: 0}}); err != nil || moved != 0 {
		t.Fatalf("batch move off locked track: moved=%d err=%v", moved, err)
	}

	cur, _ := db.FindPlacement(plc.ID)
	if cur.Track != 0 || cur.Position != 10 || *cur.EndPosition != 20 {
		t.Fatalf("placement must be untouched: %+v", cur)
	}
}

func TestMovePlacementMagneticResolvesCollision(t *testing.T) {
	db, h := newEnv(t)
	a := mustCreateObject(t, db, h, "A")
	b := mustCreateObject(t, db, h, "B")
	mustPlace(t, db, h, a.ID, 0, 10, fp(20))
	mover := mustPlace(t, db, h, b.ID, 0, 50, fp(55))

	// Dropping the 5-wide placement into the blocked middle lands snug
	// before the block.
	out, err := MovePlacement(db, h, mover.ID, 0, 11, true)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.Position != 5 || *out.EndPosition != 10 {
		t.Fatalf("magnetic landing: got [%v, %v)", out.Position, *out.EndPosition)
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	cur, _ := db.FindPlacement(mover.ID)
	if cur.Position != 50 {
		t.Fatalf("undo must restore prior position, got %v", cur.Position)
	}
}

func TestMovePlacementNonMagneticKeepsExactPosition(t *testing.T) {
	db, h := newEnv(t)
	a := mustCreateObject(t, db, h, "A")
	b := mustCreateObject(t, db, h, "B")
	mustPlace(t, db, h, a.ID, 0, 10, fp(20))
	mover := mustPlace(t, db, h, b.ID, 0, 50, fp(55))

	out, err := MovePlacement(db, h, mover.ID, 0, 12, false)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.Position != 12 {
		t.Fatalf("non-magnetic move must land exactly, got %v", out.Position)
	}
}

func TestMovePlacementLockedRejected(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	plc := mustPlace(t, db, h, obj.ID, 0, 5, nil)
	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{Locked: bp(true)}); err != nil {
		t.Fatalf("lock: %v", err)
	}
	var locked LockedError
	if _, err := MovePlacement(db, h, plc.ID, 0, 9, false); !errors.As(err, &locked) {
		t.Fatalf("got %v", err)
	}
	cur, _ := db.FindPlacement(plc.ID)
	if cur.Position != 5 {
		t.Fatalf("locked placement must not move, got %v", cur.Position)
	}
}

func TestMovePlacementsSkipsLockedMembers(t *testing.T) {
	db, h := newEnv(t)
	a := mustCreateObject(t, db, h, "A")
	b := mustCreateObject(t, db, h, "B")
	pa := mustPlace(t, db, h, a.ID, 0, 0, nil)
	pb := mustPlace(t, db, h, b.ID, 0, 10, nil)
	_, _, _ = UpdatePlacement(db, h, pb.ID, PlacementUpdate{Locked: bp(true)})

	moved, err := MovePlacements(db, h, []PlacementMove{
		{ID: pa.ID, Track: 0, Position: 5},
		{ID: pb.ID, Track: 0, Position: 15},
	})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved != 1 {
		t.Fatalf("moved: got %d, want 1", moved)
	}
	ca, _ := db.FindPlacement(pa.ID)
	cb, _ := db.FindPlacement(pb.ID)
	if ca.Position != 5 || cb.Position != 10 {
		t.Fatalf("positions: %v, %v", ca.Position, cb.Position)
	}
	// The multi-move is one undo step.
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	ca, _ = db.FindPlacement(pa.ID)
	if ca.Position != 0 {
		t.Fatalf("undo: got %v", ca.Position)
	}
}

func TestResizePlacement(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	point := mustPlace(t, db, h, obj.ID, 0, 5, nil)

	var rng InvalidRangeError
	if _, err := ResizePlacement(db, h, point.ID, fp(1), fp(2)); !errors.As(err, &rng) {
		t.Fatalf("point resize: got %v", err)
	}

	sceneObj := mustCreateObject(t, db, h, "Scene")
	ranged := mustPlace(t, db, h, sceneObj.ID, 0, 10, fp(20))
	if _, err := ResizePlacement(db, h, ranged.ID, nil, fp(8)); !errors.As(err, &rng) {
		t.Fatalf("inverted range: got %v", err)
	}
	out, err := ResizePlacement(db, h, ranged.ID, fp(12), nil)
	if err != nil {
		t.Fatalf("resize: %v", err)
	}
	if out.Position != 12 || *out.EndPosition != 20 {
		t.Fatalf("resized: [%v, %v)", out.Position, *out.EndPosition)
	}
}

func TestSplitPlacementIsOneUndoStep(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Scene")
	plc := mustPlace(t, db, h, obj.ID, 0, 10, fp(20))

	first, second, err := SplitPlacement(db, h, plc.ID, 14)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if first.ID != plc.ID || *first.EndPosition != 14 {
		t.Fatalf("first half: %+v", first)
	}
	if second.ID == "" || second.ID == first.ID || second.Position != 14 || *second.EndPosition != 20 {
		t.Fatalf("second half: %+v", second)
	}
	if second.ObjectID != obj.ID || second.Seq <= first.Seq {
		t.Fatalf("second half identity: %+v", second)
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, ok := db.FindPlacement(second.ID); ok {
		t.Fatalf("undo must remove the second half")
	}
	cur, _ := db.FindPlacement(plc.ID)
	if cur.Position != 10 || *cur.EndPosition != 20 {
		t.Fatalf("undo must restore the full range: %+v", cur)
	}
}

func TestSplitPlacementRejectsEdges(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Scene")
	plc := mustPlace(t, db, h, obj.ID, 0, 10, fp(20))
	var rng InvalidRangeError
	for _, at := range []float64{10, 20, 3} {
		if _, _, err := SplitPlacement(db, h, plc.ID, at); !errors.As(err, &rng) {
			t.Fatalf("split at %v: got %v", at, err)
		}
	}
}

func TestUpdatePlacementLockGate(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	plc := mustPlace(t, db, h, obj.ID, 0, 5, nil)

	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{Locked: bp(true)}); err != nil {
		t.Fatalf("lock: %v", err)
	}
	var locked LockedError
	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{GroupID: sp("grp-1")}); !errors.As(err, &locked) {
		t.Fatalf("locked edit: got %v", err)
	}
	// Unlocking a locked placement is the one edit always allowed.
	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{Locked: bp(false)}); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{GroupID: sp("grp-1")}); err != nil {
		t.Fatalf("group after unlock: %v", err)
	}
	cur, _ := db.FindPlacement(plc.ID)
	if cur.GroupID == nil || *cur.GroupID != "grp-1" {
		t.Fatalf("group: %v", cur.GroupID)
	}
}

func TestUpdatePlacementMutationPayloadRequiresMutationType(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	plc := mustPlace(t, db, h, obj.ID, 0, 5, nil)
	payload := &model.MutationPayload{Changes: map[string]model.AttrChange{"age": {To: 20.0}}}
	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{Mutation: payload}); !errors.Is(err, ErrMissingMutationPayload) {
		t.Fatalf("payload on creation placement: got %v", err)
	}
}

func TestAddMutation(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	plc, err := AddMutation(db, h, obj.ID, "grows up", map[string]model.AttrChange{"age": {From: 12.0, To: 19.0}}, 0, 25)
	if err != nil {
		t.Fatalf("add mutation: %v", err)
	}
	if plc.Type != model.PlacementMutation || plc.Mutation == nil || plc.Position != 25 {
		t.Fatalf("mutation placement: %+v", plc)
	}
	if h.UndoDescription() != "grows up (Hero)" {
		t.Fatalf("description: %q", h.UndoDescription())
	}
}

func TestSetCursorBypassesHistory(t *testing.T) {
	db, h := newEnv(t)
	SetCursor(db, 42)
	if db.Cursor != 42 {
		t.Fatalf("cursor: %v", db.Cursor)
	}
	if h.CanUndo() {
		t.Fatalf("cursor motion must not be undoable")
	}
}
