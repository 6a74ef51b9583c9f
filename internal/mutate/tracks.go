package mutate

import (
	"reflect"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

// InsertTrack opens a new empty track at the given index. Every track and
// placement at index >= at shifts up by one, all inside a single command so
// undo restores the exact layout.
func InsertTrack(db *store.DB, h *history.History, at int, name *string) error {
	if at < 0 {
		at = 0
	}

	before := copyTracks(db.Tracks)
	after := copyTracks(db.Tracks)
	for i := range after {
		if after[i].Index >= at {
			after[i].Index++
		}
	}
	after = append(after, model.Track{Index: at, Name: name})

	cmd := history.Command{
		Type:        "track.insert",
		Description: "Insert track " + trackID(at),
		Changes:     []history.Change{trackSetChange(before, after)},
	}
	for _, p := range db.Placements {
		if p.Track < at {
			continue
		}
		pb := p
		pa := p
		pa.Track++
		cmd.Changes = append(cmd.Changes, placementChange(&pb, &pa))
	}
	return h.Execute(cmd)
}

// RemoveTrack deletes the track at the given index, removing its placements
// and shifting every higher track down by one. A locked track, or any locked
// placement on it, rejects the whole operation; there is no partial removal.
func RemoveTrack(db *store.DB, h *history.History, at int) error {
	track, ok := db.FindTrack(at)
	if !ok {
		return NotFoundError{Kind: "track", ID: trackID(at)}
	}
	if track.Locked {
		return LockedError{Kind: "track", ID: trackID(at)}
	}
	for _, p := range db.PlacementsOnTrack(at) {
		if p.Locked {
			return LockedError{Kind: "placement", ID: p.ID}
		}
	}

	before := copyTracks(db.Tracks)
	var after []model.Track
	for _, t := range db.Tracks {
		if t.Index == at {
			continue
		}
		if t.Index > at {
			t.Index--
		}
		after = append(after, t)
	}

	cmd := history.Command{
		Type:        "track.remove",
		Description: "Remove track " + trackID(at),
		Changes:     []history.Change{trackSetChange(before, after)},
	}
	for _, p := range db.Placements {
		pb := p
		switch {
		case p.Track == at:
			cmd.Changes = append(cmd.Changes, placementChange(&pb, nil))
		case p.Track > at:
			pa := p
			pa.Track--
			cmd.Changes = append(cmd.Changes, placementChange(&pb, &pa))
		}
	}
	return h.Execute(cmd)
}

// TrackUpdate carries optional track field updates.
type TrackUpdate struct {
	Name       *string
	ClearName  bool
	Color      *string
	ClearColor bool
	Locked     *bool
	Muted      *bool
	Solo       *bool
}

// UpdateTrack edits track metadata. Toggling the lock itself is always
// allowed; mute/solo/name/color never affect state computation.
func UpdateTrack(db *store.DB, h *history.History, at int, upd TrackUpdate) (bool, error) {
	if _, ok := db.FindTrack(at); !ok {
		return false, NotFoundError{Kind: "track", ID: trackID(at)}
	}

	before := copyTracks(db.Tracks)
	after := copyTracks(db.Tracks)
	for i := range after {
		if after[i].Index != at {
			continue
		}
		if upd.ClearName {
			after[i].Name = nil
		} else if upd.Name != nil {
			after[i].Name = upd.Name
		}
		if upd.ClearColor {
			after[i].Color = nil
		} else if upd.Color != nil {
			after[i].Color = upd.Color
		}
		if upd.Locked != nil {
			after[i].Locked = *upd.Locked
		}
		if upd.Muted != nil {
			after[i].Muted = *upd.Muted
		}
		if upd.Solo != nil {
			after[i].Solo = *upd.Solo
		}
	}
	if reflect.DeepEqual(before, after) {
		return false, nil
	}

	cmd := history.Command{
		Type:        "track.update",
		Description: "Edit track " + trackID(at),
		Changes:     []history.Change{trackSetChange(before, after)},
	}
	if err := h.Execute(cmd); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureTrack appends tracks until index exists. Used when placements land
// on a track that has no explicit track row yet.
func EnsureTrack(db *store.DB, h *history.History, index int) error {
	if index < 0 {
		return NotFoundError{Kind: "track", ID: trackID(index)}
	}
	if _, ok := db.FindTrack(index); ok {
		return nil
	}
	before := copyTracks(db.Tracks)
	after := copyTracks(db.Tracks)
	next := db.MaxTrackIndex() + 1
	if next < 0 {
		next = 0
	}
	for i := next; i <= index; i++ {
		after = append(after, model.Track{Index: i})
	}
	cmd := history.Command{
		Type:        "track.insert",
		Description: "Add track " + trackID(index),
		Changes:     []history.Change{trackSetChange(before, after)},
	}
	return h.Execute(cmd)
}
