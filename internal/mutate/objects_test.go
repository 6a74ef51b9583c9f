package mutate

import (
	"errors"
	"testing"
)

func TestCreateObjectValidation(t *testing.T) {
	db, h := newEnv(t)

	if _, err := CreateObject(db, h, ObjectParams{Name: "  "}); err == nil {
		t.Fatalf("blank name must fail")
	}
	var nf NotFoundError
	if _, err := CreateObject(db, h, ObjectParams{Name: "X", TypeID: "ghost"}); !errors.As(err, &nf) {
		t.Fatalf("unknown type: got %v", err)
	}
	if _, err := CreateObject(db, h, ObjectParams{Name: "X", ParentID: sp("obj-none")}); !errors.As(err, &nf) {
		t.Fatalf("unknown parent: got %v", err)
	}
	if h.CanUndo() {
		t.Fatalf("failed creates must not reach history")
	}
}

func TestCreateObjectIsUndoable(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	if obj.ID == "" || obj.TypeID != "note" {
		t.Fatalf("created object: %+v", obj)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, ok := db.FindObject(obj.ID); ok {
		t.Fatalf("undo must remove the object")
	}
}

func TestUpdateObjectRestoresExactFieldsOnUndo(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")

	_, changed, err := UpdateObject(db, h, obj.ID, ObjectUpdate{
		Name:  sp("Heroine"),
		Color: sp("#ff0000"),
	})
	if err != nil || !changed {
		t.Fatalf("update: changed=%v err=%v", changed, err)
	}
	_, changed, err = UpdateObject(db, h, obj.ID, ObjectUpdate{})
	if err != nil || changed {
		t.Fatalf("no-op update must report unchanged, got changed=%v err=%v", changed, err)
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	cur, _ := db.FindObject(obj.ID)
	if cur.Name != "Hero" || cur.Color != nil {
		t.Fatalf("undo must restore prior fields: %+v", cur)
	}
}

func TestUpdateObjectClearColor(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	_, _, _ = UpdateObject(db, h, obj.ID, ObjectUpdate{Color: sp("#123456")})
	_, changed, err := UpdateObject(db, h, obj.ID, ObjectUpdate{ClearColor: true})
	if err != nil || !changed {
		t.Fatalf("clear: changed=%v err=%v", changed, err)
	}
	cur, _ := db.FindObject(obj.ID)
	if cur.Color != nil {
		t.Fatalf("color must clear, got %v", *cur.Color)
	}
}

func TestDeleteObjectCascadesAndUndoRestoresEverything(t *testing.T) {
	db, h := newEnv(t)
	parent := mustCreateObject(t, db, h, "Parent")
	victim, err := CreateObject(db, h, ObjectParams{Name: "Victim", TypeID: "note", ParentID: sp(parent.ID)})
	if err != nil {
		t.Fatalf("create victim: %v", err)
	}
	child, err := CreateObject(db, h, ObjectParams{Name: "Child", TypeID: "note", ParentID: sp(victim.ID)})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	plc := mustPlace(t, db, h, victim.ID, 0, 5, nil)
	// Locked placements still cascade with the object.
	if _, _, err := UpdatePlacement(db, h, plc.ID, PlacementUpdate{Locked: bp(true)}); err != nil {
		t.Fatalf("lock: %v", err)
	}

	if err := DeleteObject(db, h, victim.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := db.FindObject(victim.ID); ok {
		t.Fatalf("object must be gone")
	}
	if _, ok := db.FindPlacement(plc.ID); ok {
		t.Fatalf("placements must cascade")
	}
	cur, _ := db.FindObject(child.ID)
	if cur.ParentID == nil || *cur.ParentID != parent.ID {
		t.Fatalf("child must promote to grandparent, got %v", cur.ParentID)
	}

	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, ok := db.FindObject(victim.ID); !ok {
		t.Fatalf("undo must restore object")
	}
	restored, _ := db.FindPlacement(plc.ID)
	if restored == nil || !restored.Locked {
		t.Fatalf("undo must restore the placement with its lock: %+v", restored)
	}
	cur, _ = db.FindObject(child.ID)
	if cur.ParentID == nil || *cur.ParentID != victim.ID {
		t.Fatalf("undo must restore child's parent, got %v", cur.ParentID)
	}
}

func TestReturnedHandlesSurviveLaterCommands(t *testing.T) {
	db, h := newEnv(t)
	victim := mustCreateObject(t, db, h, "Victim")
	keeper := mustCreateObject(t, db, h, "Keeper")
	mustPlace(t, db, h, victim.ID, 0, 1, nil)
	kept := mustPlace(t, db, h, keeper.ID, 0, 9, nil)

	// Deleting the earlier object shifts the backing arrays; undo re-appends
	// it. A handle returned before those commands must not change under them.
	if err := DeleteObject(db, h, victim.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if keeper.Name != "Keeper" {
		t.Fatalf("object handle must keep its identity, got %+v", keeper)
	}
	if kept.ObjectID != keeper.ID || kept.Position != 9 {
		t.Fatalf("placement handle must keep its identity, got %+v", kept)
	}
}

func TestReparentRejectsCyclesAndNoOps(t *testing.T) {
	db, h := newEnv(t)
	a := mustCreateObject(t, db, h, "A")
	b, _ := CreateObject(db, h, ObjectParams{Name: "B", TypeID: "note", ParentID: sp(a.ID)})

	var rep InvalidReparentError
	if err := Reparent(db, h, a.ID, sp(a.ID), 0); !errors.As(err, &rep) {
		t.Fatalf("self reparent: got %v", err)
	}
	if err := Reparent(db, h, a.ID, sp(b.ID), 0); !errors.As(err, &rep) {
		t.Fatalf("descendant reparent: got %v", err)
	}
	if err := Reparent(db, h, b.ID, sp(a.ID), b.SortOrder); !errors.As(err, &rep) {
		t.Fatalf("no-op reparent: got %v", err)
	}
	var nf NotFoundError
	if err := Reparent(db, h, b.ID, sp("obj-ghost"), 0); !errors.As(err, &nf) {
		t.Fatalf("missing target: got %v", err)
	}
}

func TestReparentToRoot(t *testing.T) {
	db, h := newEnv(t)
	a := mustCreateObject(t, db, h, "A")
	b, _ := CreateObject(db, h, ObjectParams{Name: "B", TypeID: "note", ParentID: sp(a.ID)})

	if err := Reparent(db, h, b.ID, nil, 3); err != nil {
		t.Fatalf("reparent to root: %v", err)
	}
	cur, _ := db.FindObject(b.ID)
	if cur.ParentID != nil || cur.SortOrder != 3 {
		t.Fatalf("got parent=%v sort=%d", cur.ParentID, cur.SortOrder)
	}
}

func TestThreadAssociateAndDelete(t *testing.T) {
	db, h := newEnv(t)
	obj := mustCreateObject(t, db, h, "Hero")
	th, err := CreateThread(db, h, "Revenge arc", "#aa0000")
	if err != nil {
		t.Fatalf("create thread: %v", err)
	}

	if err := AssociateThread(db, h, obj.ID, th.ID); err != nil {
		t.Fatalf("associate: %v", err)
	}
	// Re-associating is a no-op, not a duplicate.
	if err := AssociateThread(db, h, obj.ID, th.ID); err != nil {
		t.Fatalf("re-associate: %v", err)
	}
	cur, _ := db.FindObject(obj.ID)
	if len(cur.ThreadIDs) != 1 || cur.ThreadIDs[0] != th.ID {
		t.Fatalf("thread ids: %v", cur.ThreadIDs)
	}

	if err := DeleteThread(db, h, th.ID); err != nil {
		t.Fatalf("delete thread: %v", err)
	}
	cur, _ = db.FindObject(obj.ID)
	if len(cur.ThreadIDs) != 0 {
		t.Fatalf("delete must detach objects, got %v", cur.ThreadIDs)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	cur, _ = db.FindObject(obj.ID)
	if len(cur.ThreadIDs) != 1 {
		t.Fatalf("undo must restore the association, got %v", cur.ThreadIDs)
	}
}

func TestMilestoneLifecycle(t *testing.T) {
	db, h := newEnv(t)
	m, err := AddMilestone(db, h, "  ", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Name != "Milestone" || m.AfterIndex != 2 {
		t.Fatalf("defaults: %+v", m)
	}
	if _, err := UpdateMilestone(db, h, m.ID, MilestoneUpdate{ExportTitle: sp("Part One"), ExportSeparator: bp(true)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := MoveMilestone(db, h, m.ID, 5); err != nil {
		t.Fatalf("move: %v", err)
	}
	cur, _ := db.FindMilestone(m.ID)
	if cur.AfterIndex != 5 || cur.ExportTitle != "Part One" || !cur.ExportSeparator {
		t.Fatalf("after edits: %+v", cur)
	}
	if err := DeleteMilestone(db, h, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := db.FindMilestone(m.ID); ok {
		t.Fatalf("milestone must be gone")
	}
}

func TestMarkerLifecycle(t *testing.T) {
	db, h := newEnv(t)
	m, err := AddMarker(db, h, 12, " Act break ", "#fff")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if m.Label != "Act break" {
		t.Fatalf("label: %q", m.Label)
	}
	if _, err := UpdateMarker(db, h, m.ID, MarkerUpdate{Position: fp(20)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := RemoveMarker(db, h, m.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := h.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	cur, _ := db.FindMarker(m.ID)
	if cur == nil || cur.Position != 20 {
		t.Fatalf("undo of remove must restore the moved marker: %+v", cur)
	}
}

func TestIsRecoverable(t *testing.T) {
	if !IsRecoverable(LockedError{Kind: "placement", ID: "plc-a"}) {
		t.Fatalf("locked must be recoverable")
	}
	if !IsRecoverable(InvalidRangeError{Start: 5, End: 5}) {
		t.Fatalf("invalid range must be recoverable")
	}
	if !IsRecoverable(InvalidReparentError{Reason: "no-op"}) {
		t.Fatalf("invalid reparent must be recoverable")
	}
	if IsRecoverable(NotFoundError{Kind: "object", ID: "obj-x"}) {
		t.Fatalf("not-found must surface")
	}
	if IsRecoverable(ErrDuplicateCreation) {
		t.Fatalf("duplicate creation must surface")
	}
}
