package store

import (
	"encoding/json"
	"fmt"

	"aethel-cli/internal/model"
)

// ErrQuotaExceeded is returned when a snapshot is too large for the
// persistence layer. It is the only persistence-specific error callers are
// expected to branch on.
var ErrQuotaExceeded = fmt.Errorf("snapshot quota exceeded")

// MaxSnapshotBytes bounds snapshot import/export size. Documents approaching
// this are far beyond anything the timeline UI can usefully display.
const MaxSnapshotBytes = 64 << 20

// ToSnapshot produces the plain serializable view of the document.
func (db *DB) ToSnapshot() model.Snapshot {
	snap := model.Snapshot{
		Version:    SchemaVersion,
		Types:      append([]model.TypeDef{}, db.Types...),
		Objects:    append([]model.Object{}, db.Objects...),
		Placements: append([]model.Placement{}, db.Placements...),
		Tracks:     append([]model.Track{}, db.Tracks...),
		Markers:    append([]model.Marker{}, db.Markers...),
		Milestones: append([]model.Milestone{}, db.Milestones...),
		Threads:    append([]model.Thread{}, db.Threads...),
		Cursor:     db.Cursor,
	}
	return snap
}

// EncodeSnapshot marshals the document snapshot, enforcing the size quota.
func (db *DB) EncodeSnapshot() ([]byte, error) {
	raw, err := json.MarshalIndent(db.ToSnapshot(), "", "  ")
	if err != nil {
		return nil, err
	}
	if len(raw) > MaxSnapshotBytes {
		return nil, ErrQuotaExceeded
	}
	return raw, nil
}

// LoadSnapshot replaces the document state from snap, all-or-nothing: the
// snapshot is validated before any field of db is touched, so a failed load
// leaves db exactly as it was.
func (db *DB) LoadSnapshot(snap model.Snapshot) error {
	if snap.Version > SchemaVersion {
		return fmt.Errorf("snapshot schema version %d is newer than supported %d", snap.Version, SchemaVersion)
	}
	ids := map[string]bool{}
	for _, o := range snap.Objects {
		if o.ID == "" {
			return fmt.Errorf("snapshot object with empty id")
		}
		if ids[o.ID] {
			return fmt.Errorf("snapshot has duplicate id %q", o.ID)
		}
		ids[o.ID] = true
	}
	maxSeq := 0
	for _, p := range snap.Placements {
		if p.ID == "" {
			return fmt.Errorf("snapshot placement with empty id")
		}
		if ids[p.ID] {
			return fmt.Errorf("snapshot has duplicate id %q", p.ID)
		}
		ids[p.ID] = true
		if !ids[p.ObjectID] {
			return fmt.Errorf("snapshot placement %s references unknown object %s", p.ID, p.ObjectID)
		}
		if p.EndPosition != nil && *p.EndPosition <= p.Position {
			return fmt.Errorf("snapshot placement %s has non-positive range", p.ID)
		}
		if p.Seq > maxSeq {
			maxSeq = p.Seq
		}
	}

	db.Version = snap.Version
	if db.Version == 0 {
		db.Version = SchemaVersion
	}
	db.Cursor = snap.Cursor
	if db.NextSeq < maxSeq {
		db.NextSeq = maxSeq
	}
	db.Types = append([]model.TypeDef{}, snap.Types...)
	db.Objects = append([]model.Object{}, snap.Objects...)
	db.Placements = append([]model.Placement{}, snap.Placements...)
	db.Tracks = append([]model.Track{}, snap.Tracks...)
	db.Markers = append([]model.Marker{}, snap.Markers...)
	db.Milestones = append([]model.Milestone{}, snap.Milestones...)
	db.Threads = append([]model.Thread{}, snap.Threads...)
	db.HistoryUndo = nil
	db.HistoryRedo = nil
	db.SortPlacements()
	db.SortTracks()
	db.Bump()
	return nil
}

// DecodeSnapshot parses snapshot bytes, enforcing the size quota.
func DecodeSnapshot(raw []byte) (model.Snapshot, error) {
	if len(raw) > MaxSnapshotBytes {
		return model.Snapshot{}, ErrQuotaExceeded
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}
