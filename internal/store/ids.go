package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

func idExists(db *DB, id string) bool {
	for _, o := range db.Objects {
		if o.ID == id {
			return true
		}
	}
	for _, p := range db.Placements {
		if p.ID == id {
			return true
		}
	}
	for _, m := range db.Markers {
		if m.ID == id {
			return true
		}
	}
	for _, ms := range db.Milestones {
		if ms.ID == id {
			return true
		}
	}
	for _, th := range db.Threads {
		if th.ID == id {
			return true
		}
	}
	for _, t := range db.Types {
		if t.ID == id {
			return true
		}
	}
	return false
}

// NextID mints a fresh entity id with the given prefix (obj, plc, mrk, mls,
// thr, typ). Collisions retry; an exhausted retry budget falls back to a
// longer suffix.
func (s Store) NextID(db *DB, prefix string) string {
	for attempt := 0; attempt < 20; attempt++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !idExists(db, id) {
			return id
		}
	}
	// crypto/rand failure or an absurd collision streak: widen the suffix.
	var b [10]byte
	if _, err := rand.Read(b[:]); err == nil {
		enc := base32.StdEncoding.WithPadding(base32.NoPadding)
		return prefix + "-" + strings.ToLower(enc.EncodeToString(b[:]))
	}
	db.NextSeq++
	return fmt.Sprintf("%s-%d", prefix, db.NextSeq)
}
