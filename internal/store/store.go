package store

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aethel-cli/internal/model"
)

// DB is the in-memory document state: one narrative project's objects,
// timeline placements, tracks, markers and milestones. All mutation goes
// through the command layer (internal/history); DB itself only offers
// lookups, ordering maintenance and the revision counter that keeps derived
// views honest.
type DB struct {
	Version int     `json:"version"`
	Cursor  float64 `json:"cursor"`
	NextSeq int     `json:"nextSeq"`

	Types      []model.TypeDef   `json:"types"`
	Objects    []model.Object    `json:"objects"`
	Placements []model.Placement `json:"placements"`
	Tracks     []model.Track     `json:"tracks"`
	Markers    []model.Marker    `json:"markers"`
	Milestones []model.Milestone `json:"milestones"`
	Threads    []model.Thread    `json:"threads"`

	// Persisted undo/redo stacks, opaque to this package (owned by
	// internal/history, which this package cannot import).
	HistoryUndo []byte `json:"historyUndo,omitempty"`
	HistoryRedo []byte `json:"historyRedo,omitempty"`

	// revision increments on every mutating call. Derived indexes are keyed on
	// it so a stale index can never survive a mutation.
	revision uint64

	idxRevision        uint64
	idxBuilt           bool
	idxPlacementsByObj map[string][]int
	idxChildrenByObj   map[string][]model.Object
}

type Store struct {
	Dir string
}

const dirName = ".aethel"

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Load() (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(context.Background())
}

func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(context.Background(), db)
}

// Bump invalidates derived indexes. Every mutating entry point calls it.
func (db *DB) Bump() {
	db.revision++
}

func (db *DB) Revision() uint64 { return db.revision }

// AllocSeq hands out the next placement insertion sequence number.
func (db *DB) AllocSeq() int {
	db.NextSeq++
	return db.NextSeq
}

// Find helpers return pointers into the backing arrays. Such a pointer is
// valid only until the next command executes: deletes and upserts reshuffle
// the slots. Callers that hold an entity across commands must copy it.
func (db *DB) FindObject(id string) (*model.Object, bool) {
	for i := range db.Objects {
		if db.Objects[i].ID == id {
			return &db.Objects[i], true
		}
	}
	return nil, false
}

func (db *DB) FindType(id string) (*model.TypeDef, bool) {
	for i := range db.Types {
		if db.Types[i].ID == id {
			return &db.Types[i], true
		}
	}
	return nil, false
}

func (db *DB) FindPlacement(id string) (*model.Placement, bool) {
	for i := range db.Placements {
		if db.Placements[i].ID == id {
			return &db.Placements[i], true
		}
	}
	return nil, false
}

func (db *DB) FindTrack(index int) (*model.Track, bool) {
	for i := range db.Tracks {
		if db.Tracks[i].Index == index {
			return &db.Tracks[i], true
		}
	}
	return nil, false
}

func (db *DB) FindMarker(id string) (*model.Marker, bool) {
	for i := range db.Markers {
		if db.Markers[i].ID == id {
			return &db.Markers[i], true
		}
	}
	return nil, false
}

func (db *DB) FindMilestone(id string) (*model.Milestone, bool) {
	for i := range db.Milestones {
		if db.Milestones[i].ID == id {
			return &db.Milestones[i], true
		}
	}
	return nil, false
}

func (db *DB) FindThread(id string) (*model.Thread, bool) {
	for i := range db.Threads {
		if db.Threads[i].ID == id {
			return &db.Threads[i], true
		}
	}
	return nil, false
}

// SortPlacements maintains the (track, position, seq) order relied on by
// range queries and rendering. Callers that touch Placements call this
// before handing control back.
func (db *DB) SortPlacements() {
	sort.SliceStable(db.Placements, func(i, j int) bool {
		a, b := db.Placements[i], db.Placements[j]
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Seq < b.Seq
	})
}

// SortTracks keeps the track list ordered by index.
func (db *DB) SortTracks() {
	sort.SliceStable(db.Tracks, func(i, j int) bool {
		return db.Tracks[i].Index < db.Tracks[j].Index
	})
}

func (db *DB) ensureIndexes() {
	if db == nil {
		return
	}
	if db.idxBuilt && db.idxRevision == db.revision {
		return
	}
	db.idxPlacementsByObj = map[string][]int{}
	db.idxChildrenByObj = map[string][]model.Object{}

	for i := range db.Placements {
		oid := strings.TrimSpace(db.Placements[i].ObjectID)
		if oid == "" {
			continue
		}
		db.idxPlacementsByObj[oid] = append(db.idxPlacementsByObj[oid], i)
	}

	for _, o := range db.Objects {
		if o.ParentID == nil {
			continue
		}
		pid := strings.TrimSpace(*o.ParentID)
		if pid == "" {
			continue
		}
		db.idxChildrenByObj[pid] = append(db.idxChildrenByObj[pid], o)
	}
	for pid := range db.idxChildrenByObj {
		kids := db.idxChildrenByObj[pid]
		sort.SliceStable(kids, func(i, j int) bool {
			if kids[i].SortOrder != kids[j].SortOrder {
				return kids[i].SortOrder < kids[j].SortOrder
			}
			return kids[i].Name < kids[j].Name
		})
		db.idxChildrenByObj[pid] = kids
	}

	db.idxBuilt = true
	db.idxRevision = db.revision
}

// PlacementsForObject returns copies of every placement referencing objectID,
// in (track, position) order.
func (db *DB) PlacementsForObject(objectID string) []model.Placement {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	idxs := db.idxPlacementsByObj[strings.TrimSpace(objectID)]
	out := make([]model.Placement, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, db.Placements[i])
	}
	return out
}

// PlacementsOnTrack returns copies of every placement on the track, sorted by
// position (the backing slice is already (track, position)-sorted).
func (db *DB) PlacementsOnTrack(track int) []model.Placement {
	var out []model.Placement
	for _, p := range db.Placements {
		if p.Track == track {
			out = append(out, p)
		}
	}
	return out
}

// PlacementsInRange returns placements whose [Position, End()] interval
// intersects [min, max].
func (db *DB) PlacementsInRange(min, max float64) []model.Placement {
	var out []model.Placement
	for _, p := range db.Placements {
		if p.End() >= min && p.Position <= max {
			out = append(out, p)
		}
	}
	return out
}

// ChildrenOf returns the child objects of parentID sorted by (SortOrder, Name).
func (db *DB) ChildrenOf(parentID string) []model.Object {
	if db == nil {
		return nil
	}
	db.ensureIndexes()
	return db.idxChildrenByObj[strings.TrimSpace(parentID)]
}

// RenderedObjects returns book-visible objects in (SortOrder, Name) order.
// Milestone AfterIndex values anchor into this ordering.
func (db *DB) RenderedObjects() []model.Object {
	var out []model.Object
	for _, o := range db.Objects {
		if o.Rendered {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// MaxTrackIndex returns the highest track index present in tracks or
// placements, or -1 when the timeline is empty.
func (db *DB) MaxTrackIndex() int {
	max := -1
	for _, t := range db.Tracks {
		if t.Index > max {
			max = t.Index
		}
	}
	for _, p := range db.Placements {
		if p.Track > max {
			max = p.Track
		}
	}
	return max
}
