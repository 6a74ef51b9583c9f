package mutate

import (
	"reflect"
	"strings"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

// Markers annotate the timeline and never affect state computation.

func AddMarker(db *store.DB, h *history.History, position float64, label, color string) (*model.Marker, error) {
	m := model.Marker{
		ID:       (store.Store{}).NextID(db, "mrk"),
		Position: position,
		Label:    strings.TrimSpace(label),
		Color:    strings.TrimSpace(color),
	}
	cmd := history.Command{
		Type:        "marker.add",
		Description: "Add marker " + displayLabel(m.Label),
		Changes:     []history.Change{markerChange(nil, &m)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindMarker(m.ID)), nil
}

type MarkerUpdate struct {
	Position *float64
	Label    *string
	Color    *string
}

func UpdateMarker(db *store.DB, h *history.History, id string, upd MarkerUpdate) (bool, error) {
	m, ok := db.FindMarker(strings.TrimSpace(id))
	if !ok {
		return false, NotFoundError{Kind: "marker", ID: id}
	}
	before := *m
	after := before
	if upd.Position != nil {
		after.Position = *upd.Position
	}
	if upd.Label != nil {
		after.Label = strings.TrimSpace(*upd.Label)
	}
	if upd.Color != nil {
		after.Color = strings.TrimSpace(*upd.Color)
	}
	if reflect.DeepEqual(before, after) {
		return false, nil
	}
	cmd := history.Command{
		Type:        "marker.update",
		Description: "Edit marker " + displayLabel(before.Label),
		Changes:     []history.Change{markerChange(&before, &after)},
	}
	if err := h.Execute(cmd); err != nil {
		return false, err
	}
	return true, nil
}

func RemoveMarker(db *store.DB, h *history.History, id string) error {
	m, ok := db.FindMarker(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "marker", ID: id}
	}
	before := *m
	cmd := history.Command{
		Type:        "marker.remove",
		Description: "Remove marker " + displayLabel(before.Label),
		Changes:     []history.Change{markerChange(&before, nil)},
	}
	return h.Execute(cmd)
}

func displayLabel(label string) string {
	if label == "" {
		return "(unnamed)"
	}
	return label
}
