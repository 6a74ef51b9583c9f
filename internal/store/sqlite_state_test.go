package store

import (
	"testing"

	"aethel-cli/internal/model"
)

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	src := NewDB()
	src.Cursor = 42.5
	src.NextSeq = 7
	src.HistoryUndo = []byte(`[{"type":"marker.add"}]`)
	group := "grp-1"
	src.Objects = append(src.Objects, model.Object{ID: "obj-a", Name: "A", TypeID: "note", Rendered: true})
	src.Placements = append(src.Placements,
		model.Placement{ID: "plc-b", ObjectID: "obj-a", Track: 1, Position: 30, Seq: 2},
		model.Placement{ID: "plc-a", ObjectID: "obj-a", Track: 0, Position: 10, EndPosition: fp(20), GroupID: &group, Locked: true, Seq: 1},
	)
	src.Tracks = append(src.Tracks, model.Track{Index: 1, Muted: true})
	src.Markers = append(src.Markers, model.Marker{ID: "mrk-a", Position: 5, Label: "Act I"})
	src.Milestones = append(src.Milestones, model.Milestone{ID: "mls-a", Name: "Part One", AfterIndex: 2, ExportSeparator: true})
	src.Threads = append(src.Threads, model.Thread{ID: "thr-a", Name: "Arc"})
	src.SortPlacements()

	if err := s.Save(src); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.Cursor != 42.5 || got.NextSeq != 7 {
		t.Fatalf("meta: cursor=%v seq=%d", got.Cursor, got.NextSeq)
	}
	if string(got.HistoryUndo) != string(src.HistoryUndo) {
		t.Fatalf("history blob: %s", got.HistoryUndo)
	}
	if len(got.Placements) != 2 || got.Placements[0].ID != "plc-a" {
		t.Fatalf("placements: %+v", got.Placements)
	}
	pa := got.Placements[0]
	if !pa.Locked || pa.GroupID == nil || *pa.GroupID != "grp-1" || *pa.EndPosition != 20 {
		t.Fatalf("placement fields: %+v", pa)
	}
	if len(got.Tracks) != 2 {
		t.Fatalf("tracks: %+v", got.Tracks)
	}
	mt, ok := got.FindTrack(1)
	if !ok || !mt.Muted {
		t.Fatalf("muted track: %+v ok=%v", mt, ok)
	}
	if len(got.Markers) != 1 || got.Markers[0].Label != "Act I" {
		t.Fatalf("markers: %+v", got.Markers)
	}
	ms := got.Milestones[0]
	if ms.Name != "Part One" || ms.AfterIndex != 2 || !ms.ExportSeparator {
		t.Fatalf("milestone: %+v", ms)
	}
	if len(got.Threads) != 1 || len(got.Types) != len(DefaultTypes()) {
		t.Fatalf("threads=%d types=%d", len(got.Threads), len(got.Types))
	}
}

func TestSQLiteSaveReplacesPriorState(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	first := NewDB()
	first.Objects = append(first.Objects, model.Object{ID: "obj-a", Name: "A", TypeID: "note"})
	if err := s.Save(first); err != nil {
		t.Fatalf("save: %v", err)
	}

	second := NewDB()
	second.Objects = append(second.Objects, model.Object{ID: "obj-b", Name: "B", TypeID: "note"})
	if err := s.Save(second); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Objects) != 1 || got.Objects[0].ID != "obj-b" {
		t.Fatalf("save must replace, got %+v", got.Objects)
	}
}

func TestSQLiteLoadFreshDirSeedsDefaults(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// A never-saved store comes back ready to use: default types, one track,
	// no content.
	if len(got.Types) != len(DefaultTypes()) || len(got.Tracks) != 1 {
		t.Fatalf("fresh store defaults: types=%d tracks=%d", len(got.Types), len(got.Tracks))
	}
	if len(got.Objects) != 0 || len(got.Placements) != 0 {
		t.Fatalf("fresh store must hold no content: %+v", got)
	}
	if got.Objects == nil || got.Placements == nil {
		t.Fatalf("nil slices from fresh store")
	}
}

func TestSQLiteSavedEmptyStateStaysEmpty(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	src := NewDB()
	src.Types = nil
	src.Tracks = nil
	if err := s.Save(src); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Once saved, emptiness is deliberate: no re-seeding.
	if len(got.Types) != 0 || len(got.Tracks) != 0 {
		t.Fatalf("saved empty state re-seeded: types=%d tracks=%d", len(got.Types), len(got.Tracks))
	}
	if got.Types == nil || got.Tracks == nil {
		t.Fatalf("nil slices from saved store")
	}
}

func TestEventLogRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	if err := s.AppendEvent("", "obj-a", nil); err == nil {
		t.Fatalf("missing type must fail")
	}
	if err := s.AppendEvent("object.create", "obj-a", map[string]any{"name": "A"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent("placement.add", "plc-a", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	all, err := s.ReadEvents(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("events: %d", len(all))
	}
	if all[0].Type != "object.create" || all[0].EntityID != "obj-a" {
		t.Fatalf("first event: %+v", all[0])
	}
	payload, ok := all[0].Payload.(map[string]any)
	if !ok || payload["name"] != "A" {
		t.Fatalf("payload: %+v", all[0].Payload)
	}

	forObj, err := s.ReadEventsForEntity("obj-a", 0)
	if err != nil {
		t.Fatalf("read entity: %v", err)
	}
	if len(forObj) != 1 {
		t.Fatalf("entity filter: %d", len(forObj))
	}
	none, err := s.ReadEventsForEntity("", 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("blank entity: %v %d", err, len(none))
	}
	limited, err := s.ReadEvents(1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v %d", err, len(limited))
	}
}
