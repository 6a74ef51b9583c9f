package store

import (
	"strings"
	"testing"

	"aethel-cli/internal/model"
)

func snapshotFixture() *DB {
	db := NewDB()
	db.Cursor = 12
	db.NextSeq = 3
	db.Objects = append(db.Objects, model.Object{ID: "obj-a", Name: "A", TypeID: "note"})
	db.Placements = append(db.Placements,
		model.Placement{ID: "plc-a", ObjectID: "obj-a", Position: 5, Seq: 1},
		model.Placement{ID: "plc-b", ObjectID: "obj-a", Position: 10, EndPosition: fp(20), Seq: 2},
	)
	db.Markers = append(db.Markers, model.Marker{ID: "mrk-a", Position: 7, Label: "Act I"})
	db.SortPlacements()
	return db
}

func TestSnapshotEncodeDecodeLoadRoundTrip(t *testing.T) {
	src := snapshotFixture()
	raw, err := src.EncodeSnapshot()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	snap, err := DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	dst := NewDB()
	dst.HistoryUndo = []byte(`[]`)
	if err := dst.LoadSnapshot(snap); err != nil {
		t.Fatalf("load: %v", err)
	}
	if dst.Cursor != 12 || len(dst.Objects) != 1 || len(dst.Placements) != 2 || len(dst.Markers) != 1 {
		t.Fatalf("loaded: cursor=%v objects=%d placements=%d markers=%d",
			dst.Cursor, len(dst.Objects), len(dst.Placements), len(dst.Markers))
	}
	if dst.NextSeq < 2 {
		t.Fatalf("next seq must cover imported placements, got %d", dst.NextSeq)
	}
	if dst.HistoryUndo != nil {
		t.Fatalf("import must reset persisted history")
	}
}

func TestLoadSnapshotValidation(t *testing.T) {
	base := snapshotFixture().ToSnapshot()

	cases := []struct {
		name   string
		mutate func(*model.Snapshot)
		want   string
	}{
		{"newer schema", func(s *model.Snapshot) { s.Version = SchemaVersion + 1 }, "newer than supported"},
		{"duplicate id", func(s *model.Snapshot) { s.Placements[1].ID = "plc-a" }, "duplicate id"},
		{"unknown object", func(s *model.Snapshot) { s.Placements[0].ObjectID = "obj-ghost" }, "unknown object"},
		{"empty placement id", func(s *model.Snapshot) { s.Placements[0].ID = "" }, "empty id"},
		{"inverted range", func(s *model.Snapshot) { s.Placements[1].EndPosition = fp(1) }, "non-positive range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := base
			snap.Objects = append([]model.Object{}, base.Objects...)
			snap.Placements = append([]model.Placement{}, base.Placements...)
			tc.mutate(&snap)

			db := snapshotFixture()
			before := len(db.Placements)
			err := db.LoadSnapshot(snap)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("got %v, want %q", err, tc.want)
			}
			// All-or-nothing: a failed load leaves the document untouched.
			if len(db.Placements) != before || db.Cursor != 12 {
				t.Fatalf("failed load mutated the document")
			}
		})
	}
}

func TestDecodeSnapshotRejectsOversize(t *testing.T) {
	big := make([]byte, MaxSnapshotBytes+1)
	if _, err := DecodeSnapshot(big); err != ErrQuotaExceeded {
		t.Fatalf("got %v, want ErrQuotaExceeded", err)
	}
}
