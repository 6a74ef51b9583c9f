package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"aethel-cli/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteFileName = "aethel.sqlite"

// SchemaVersion tags persisted state and snapshots. Load rejects snapshots
// from a newer schema.
const SchemaVersion = 1

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), sqliteFileName)
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid
	// "database is locked" flakiness when a CLI and a TUI share the file.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLiteState(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLiteState(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS types (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS objects (
			id TEXT PRIMARY KEY,
			type_id TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			name TEXT NOT NULL,
			rendered INTEGER NOT NULL,
			sort_order INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_objects_parent ON objects(parent_id);`,
		`CREATE INDEX IF NOT EXISTS idx_objects_type ON objects(type_id);`,
		`CREATE TABLE IF NOT EXISTS placements (
			id TEXT PRIMARY KEY,
			object_id TEXT NOT NULL,
			type TEXT NOT NULL,
			track INTEGER NOT NULL,
			position REAL NOT NULL,
			end_position REAL,
			locked INTEGER NOT NULL,
			group_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_object ON placements(object_id);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_track_pos ON placements(track, position);`,
		`CREATE TABLE IF NOT EXISTS tracks (
			idx INTEGER PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS markers (
			id TEXT PRIMARY KEY,
			position REAL NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS milestones (
			id TEXT PRIMARY KEY,
			after_index INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS threads (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			ts_unixms INTEGER NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, ts_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return loadStateFromSQLite(ctx, db)
}

func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"version":      fmt.Sprintf("%d", SchemaVersion),
		"cursor":       strconv.FormatFloat(st.Cursor, 'g', -1, 64),
		"next_seq":     fmt.Sprintf("%d", st.NextSeq),
		"history_undo": string(st.HistoryUndo),
		"history_redo": string(st.HistoryRedo),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all strategy: simple and safe at document scale.
	tables := []string{"types", "objects", "placements", "tracks", "markers", "milestones", "threads"}
	for _, t := range tables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()

	for _, t := range st.Types {
		raw, _ := json.Marshal(t)
		if _, err := tx.ExecContext(ctx, `INSERT INTO types(id, json, updated_at_unixms) VALUES(?, ?, ?)`,
			t.ID, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, o := range st.Objects {
		raw, _ := json.Marshal(o)
		parent := ""
		if o.ParentID != nil {
			parent = strings.TrimSpace(*o.ParentID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO objects(id, type_id, parent_id, name, rendered, sort_order, json, updated_at_unixms)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.TypeID, parent, o.Name, boolToInt(o.Rendered), o.SortOrder, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, p := range st.Placements {
		raw, _ := json.Marshal(p)
		var end any
		if p.EndPosition != nil {
			end = *p.EndPosition
		}
		group := ""
		if p.GroupID != nil {
			group = strings.TrimSpace(*p.GroupID)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO placements(id, object_id, type, track, position, end_position, locked, group_id, seq, json, updated_at_unixms)
			VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ObjectID, string(p.Type), p.Track, p.Position, end, boolToInt(p.Locked), group, p.Seq, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, t := range st.Tracks {
		raw, _ := json.Marshal(t)
		if _, err := tx.ExecContext(ctx, `INSERT INTO tracks(idx, json, updated_at_unixms) VALUES(?, ?, ?)`,
			t.Index, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, m := range st.Markers {
		raw, _ := json.Marshal(m)
		if _, err := tx.ExecContext(ctx, `INSERT INTO markers(id, position, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			m.ID, m.Position, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, ms := range st.Milestones {
		raw, _ := json.Marshal(ms)
		if _, err := tx.ExecContext(ctx, `INSERT INTO milestones(id, after_index, json, updated_at_unixms) VALUES(?, ?, ?, ?)`,
			ms.ID, ms.AfterIndex, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, th := range st.Threads {
		raw, _ := json.Marshal(th)
		if _, err := tx.ExecContext(ctx, `INSERT INTO threads(id, json, updated_at_unixms) VALUES(?, ?, ?)`,
			th.ID, string(raw), nowMs); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: SchemaVersion}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	v := readMeta("version")
	if v == "" {
		// Never saved: seed default types and one track so a fresh store is
		// immediately usable.
		return NewDB(), nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n > SchemaVersion {
			return nil, fmt.Errorf("state schema version %d is newer than supported %d", n, SchemaVersion)
		}
		out.Version = n
	}
	if v := readMeta("cursor"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out.Cursor = f
		}
	}
	if v := readMeta("next_seq"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			out.NextSeq = n
		}
	}
	if v := readMeta("history_undo"); v != "" {
		out.HistoryUndo = []byte(v)
	}
	if v := readMeta("history_redo"); v != "" {
		out.HistoryRedo = []byte(v)
	}

	var err error
	if out.Types, err = readJSONRows[model.TypeDef](ctx, db, `SELECT json FROM types`); err != nil {
		return nil, err
	}
	if out.Objects, err = readJSONRows[model.Object](ctx, db, `SELECT json FROM objects`); err != nil {
		return nil, err
	}
	if out.Placements, err = readJSONRows[model.Placement](ctx, db, `SELECT json FROM placements ORDER BY track, position, seq`); err != nil {
		return nil, err
	}
	if out.Tracks, err = readJSONRows[model.Track](ctx, db, `SELECT json FROM tracks ORDER BY idx`); err != nil {
		return nil, err
	}
	if out.Markers, err = readJSONRows[model.Marker](ctx, db, `SELECT json FROM markers ORDER BY position`); err != nil {
		return nil, err
	}
	if out.Milestones, err = readJSONRows[model.Milestone](ctx, db, `SELECT json FROM milestones ORDER BY after_index`); err != nil {
		return nil, err
	}
	if out.Threads, err = readJSONRows[model.Thread](ctx, db, `SELECT json FROM threads`); err != nil {
		return nil, err
	}

	// Stable callers expect empty slices, not nil.
	if out.Types == nil {
		out.Types = []model.TypeDef{}
	}
	if out.Objects == nil {
		out.Objects = []model.Object{}
	}
	if out.Placements == nil {
		out.Placements = []model.Placement{}
	}
	if out.Tracks == nil {
		out.Tracks = []model.Track{}
	}
	if out.Markers == nil {
		out.Markers = []model.Marker{}
	}
	if out.Milestones == nil {
		out.Milestones = []model.Milestone{}
	}
	if out.Threads == nil {
		out.Threads = []model.Thread{}
	}

	out.SortPlacements()
	out.SortTracks()
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
