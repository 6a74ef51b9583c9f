package mutate

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
	"aethel-cli/internal/timeline"
)

type PlacementParams struct {
	ObjectID    string
	Type        model.PlacementType
	Track       int
	Position    float64
	EndPosition *float64
	Mutation    *model.MutationPayload
	GroupID     *string
}

// AddPlacement places an object on the timeline as one undoable command.
// Validation happens before command construction: unknown object -> NotFound,
// locked track -> LockedError, bad range -> InvalidRange, second creation
// placement -> ErrDuplicateCreation.
func AddPlacement(db *store.DB, h *history.History, p PlacementParams) (*model.Placement, error) {
	obj, ok := db.FindObject(strings.TrimSpace(p.ObjectID))
	if !ok {
		return nil, NotFoundError{Kind: "object", ID: p.ObjectID}
	}
	if t, ok := db.FindTrack(p.Track); ok && t.Locked {
		return nil, LockedError{Kind: "track", ID: trackID(p.Track)}
	}
	if p.EndPosition != nil && *p.EndPosition <= p.Position {
		return nil, InvalidRangeError{Start: p.Position, End: *p.EndPosition}
	}
	switch p.Type {
	case model.PlacementMutation:
		if p.Mutation == nil || len(p.Mutation.Changes) == 0 {
			return nil, ErrMissingMutationPayload
		}
	case model.PlacementCreation:
		p.Mutation = nil
		for _, existing := range db.PlacementsForObject(obj.ID) {
			if existing.Type == model.PlacementCreation {
				return nil, ErrDuplicateCreation
			}
		}
	}

	now := time.Now().UTC()
	plc := model.Placement{
		ID:          (store.Store{}).NextID(db, "plc"),
		ObjectID:    obj.ID,
		Type:        p.Type,
		Track:       p.Track,
		Position:    p.Position,
		EndPosition: p.EndPosition,
		Mutation:    p.Mutation,
		GroupID:     p.GroupID,
		Seq:         db.AllocSeq(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	cmd := history.Command{
		Type:        "placement.add",
		Description: "Place " + obj.Name,
		Changes:     []history.Change{placementChange(nil, &plc)},
	}
	if p.Type == model.PlacementMutation {
		cmd.Description = mutationDescription(obj.Name, p.Mutation)
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindPlacement(plc.ID)), nil
}

// AddMutation is the rich-text editor's entry point: record an attribute
// change for an object at a timeline position.
func AddMutation(db *store.DB, h *history.History, objectID, label string, changes map[string]model.AttrChange, track int, position float64) (*model.Placement, error) {
	return AddPlacement(db, h, PlacementParams{
		ObjectID: objectID,
		Type:     model.PlacementMutation,
		Track:    track,
		Position: position,
		Mutation: &model.MutationPayload{Label: label, Changes: changes},
	})
}

func mutationDescription(objName string, m *model.MutationPayload) string {
	label := strings.TrimSpace(m.Label)
	if label == "" {
		label = "Mutation"
	}
	return label + " (" + objName + ")"
}

// RemovePlacement deletes one placement. Locked placements and placements on
// locked tracks are rejected.
func RemovePlacement(db *store.DB, h *history.History, id string) error {
	plc, ok := db.FindPlacement(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "placement", ID: id}
	}
	if plc.Locked {
		return LockedError{Kind: "placement", ID: plc.ID}
	}
	if t, ok := db.FindTrack(plc.Track); ok && t.Locked {
		return LockedError{Kind: "track", ID: trackID(plc.Track)}
	}
	before := *plc
	cmd := history.Command{
		Type:        "placement.remove",
		Description: "Remove " + describePlacement(db, before),
		Changes:     []history.Change{placementChange(&before, nil)},
	}
	return h.Execute(cmd)
}

// MovePlacement relocates a placement to (track, position). With magnetic
// set, the position resolves to the nearest free gap on the target track.
// Both the source and the target track must be unlocked.
func MovePlacement(db *store.DB, h *history.History, id string, track int, position float64, magnetic bool) (*model.Placement, error) {
	plc, ok := db.FindPlacement(strings.TrimSpace(id))
	if !ok {
		return nil, NotFoundError{Kind: "placement", ID: id}
	}
	if plc.Locked {
		return nil, LockedError{Kind: "placement", ID: plc.ID}
	}
	if t, ok := db.FindTrack(plc.Track); ok && t.Locked {
		return nil, LockedError{Kind: "track", ID: trackID(plc.Track)}
	}
	if t, ok := db.FindTrack(track); ok && t.Locked {
		return nil, LockedError{Kind: "track", ID: trackID(track)}
	}

	if magnetic {
		position = timeline.ResolveMagnetic(db, track, position, plc.End()-plc.Position, map[string]bool{plc.ID: true})
	}

	before := *plc
	after := before
	delta := position - before.Position
	after.Track = track
	after.Position = position
	if after.EndPosition != nil {
		e := *before.EndPosition + delta
		after.EndPosition = &e
	}
	if after.Track == before.Track && after.Position == before.Position {
		return &before, nil
	}
	after.UpdatedAt = time.Now().UTC()

	cmd := history.Command{
		Type:        "placement.move",
		Description: "Move " + describePlacement(db, before),
		Changes:     []history.Change{placementChange(&before, &after)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindPlacement(after.ID)), nil
}

type PlacementMove struct {
	ID       string
	Track    int
	Position float64
}

// MovePlacements applies a multi-placement drag as one batch command.
// Locked members are skipped (the gesture has no effect on them); moves off
// or onto locked tracks are skipped the same way. Returns how many placements
// moved.
func MovePlacements(db *store.DB, h *history.History, moves []PlacementMove) (int, error) {
	cmd := history.Command{
		Type:        "placement.move",
		Description: "Move placements",
	}
	moved := 0
	for _, mv := range moves {
		plc, ok := db.FindPlacement(strings.TrimSpace(mv.ID))
		if !ok {
			return 0, NotFoundError{Kind: "placement", ID: mv.ID}
		}
		if plc.Locked {
			continue
		}
		if t, ok := db.FindTrack(plc.Track); ok && t.Locked {
			continue
		}
		if t, ok := db.FindTrack(mv.Track); ok && t.Locked {
			continue
		}
		before := *plc
		after := before
		delta := mv.Position - before.Position
		after.Track = mv.Track
		after.Position = mv.Position
		if after.EndPosition != nil {
			e := *before.EndPosition + delta
			after.EndPosition = &e
		}
		if after.Track == before.Track && after.Position == before.Position {
			continue
		}
		after.UpdatedAt = time.Now().UTC()
		cmd.Changes = append(cmd.Changes, placementChange(&before, &after))
		moved++
	}
	if moved == 0 {
		return 0, nil
	}
	if moved == 1 {
		cmd.Description = "Move placement"
	}
	if err := h.Execute(cmd); err != nil {
		return 0, err
	}
	return moved, nil
}

// ResizePlacement changes a ranged placement's start and/or end. Locked
// placements and placements on locked tracks are rejected.
func ResizePlacement(db *store.DB, h *history.History, id string, newStart, newEnd *float64) (*model.Placement, error) {
	plc, ok := db.FindPlacement(strings.TrimSpace(id))
	if !ok {
		return nil, NotFoundError{Kind: "placement", ID: id}
	}
	if plc.Locked {
		return nil, LockedError{Kind: "placement", ID: plc.ID}
	}
	if t, ok := db.FindTrack(plc.Track); ok && t.Locked {
		return nil, LockedError{Kind: "track", ID: trackID(plc.Track)}
	}
	if !plc.Ranged() {
		return nil, InvalidRangeError{Start: plc.Position, End: plc.Position}
	}

	start := plc.Position
	end := *plc.EndPosition
	if newStart != nil {
		start = *newStart
	}
	if newEnd != nil {
		end = *newEnd
	}
	if end <= start {
		return nil, InvalidRangeError{Start: start, End: end}
	}

	before := *plc
	after := before
	after.Position = start
	after.EndPosition = &end
	if after.Position == before.Position && *after.EndPosition == *before.EndPosition {
		return &before, nil
	}
	after.UpdatedAt = time.Now().UTC()

	cmd := history.Command{
		Type:        "placement.resize",
		Description: "Resize " + describePlacement(db, before),
		Changes:     []history.Change{placementChange(&before, &after)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindPlacement(after.ID)), nil
}

// SplitPlacement cuts a ranged placement [s,e) at position m into [s,m) and
// [m,e). The first half keeps the original id and, for mutation placements,
// the payload; the second is a new payload-free placement for the same
// object. Locked placements and placements on locked tracks are rejected.
func SplitPlacement(db *store.DB, h *history.History, id string, at float64) (*model.Placement, *model.Placement, error) {
	plc, ok := db.FindPlacement(strings.TrimSpace(id))
	if !ok {
		return nil, nil, NotFoundError{Kind: "placement", ID: id}
	}
	if plc.Locked {
		return nil, nil, LockedError{Kind: "placement", ID: plc.ID}
	}
	if t, ok := db.FindTrack(plc.Track); ok && t.Locked {
		return nil, nil, LockedError{Kind: "track", ID: trackID(plc.Track)}
	}

	before := *plc
	first, second, ok := timeline.SplitHalves(before, at)
	if !ok {
		return nil, nil, InvalidRangeError{Start: before.Position, End: before.End()}
	}
	now := time.Now().UTC()
	first.UpdatedAt = now
	second.ID = (store.Store{}).NextID(db, "plc")
	second.Seq = db.AllocSeq()
	second.CreatedAt = now
	second.UpdatedAt = now

	cmd := history.Command{
		Type:        "placement.split",
		Description: "Split " + describePlacement(db, before),
		Changes: []history.Change{
			placementChange(&before, &first),
			placementChange(nil, &second),
		},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, nil, err
	}
	a := detached(db.FindPlacement(first.ID))
	b := detached(db.FindPlacement(second.ID))
	return a, b, nil
}

// PlacementUpdate carries optional placement field updates.
type PlacementUpdate struct {
	Locked          *bool
	GroupID         *string
	ClearGroup      bool
	Mutation        *model.MutationPayload
	MutationDisplay *string
	ClearDisplay    bool
}

// UpdatePlacement edits placement metadata (lock, group, mutation payload,
// mutation display mode) as one command. Setting or clearing the lock is
// always allowed; every other edit on a locked placement is rejected.
func UpdatePlacement(db *store.DB, h *history.History, id string, upd PlacementUpdate) (*model.Placement, bool, error) {
	plc, ok := db.FindPlacement(strings.TrimSpace(id))
	if !ok {
		return nil, false, NotFoundError{Kind: "placement", ID: id}
	}
	lockOnly := upd.Locked != nil && upd.GroupID == nil && !upd.ClearGroup && upd.Mutation == nil && upd.MutationDisplay == nil && !upd.ClearDisplay
	if plc.Locked && !lockOnly {
		return nil, false, LockedError{Kind: "placement", ID: plc.ID}
	}

	before := *plc
	after := before
	if upd.Locked != nil {
		after.Locked = *upd.Locked
	}
	if upd.ClearGroup {
		after.GroupID = nil
	} else if upd.GroupID != nil {
		after.GroupID = upd.GroupID
	}
	if upd.Mutation != nil {
		if before.Type != model.PlacementMutation {
			return nil, false, ErrMissingMutationPayload
		}
		after.Mutation = upd.Mutation
	}
	if upd.ClearDisplay {
		after.MutationDisplay = nil
	} else if upd.MutationDisplay != nil {
		after.MutationDisplay = upd.MutationDisplay
	}

	if reflect.DeepEqual(before, after) {
		return &before, false, nil
	}
	after.UpdatedAt = time.Now().UTC()

	cmd := history.Command{
		Type:        "placement.update",
		Description: "Edit " + describePlacement(db, before),
		Changes:     []history.Change{placementChange(&before, &after)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, false, err
	}
	return detached(db.FindPlacement(after.ID)), true, nil
}

// SetCursor moves the timeline cursor. Cursor motion is navigation, not an
// edit: it does not go through history.
func SetCursor(db *store.DB, position float64) {
	db.Cursor = position
	db.Bump()
}

func describePlacement(db *store.DB, p model.Placement) string {
	if obj, ok := db.FindObject(p.ObjectID); ok {
		return obj.Name
	}
	return p.ID
}

func trackID(index int) string {
	// Tracks have no string id; stringify the index for error text.
	return strconv.Itoa(index)
}
