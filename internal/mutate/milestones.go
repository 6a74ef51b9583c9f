package mutate

import (
	"reflect"
	"strings"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

// Milestones group the rendered-card ordering into acts/parts. AfterIndex is
// a logical position relative to that ordering, independent of placements.

func AddMilestone(db *store.DB, h *history.History, name string, afterIndex int) (*model.Milestone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Milestone"
	}
	m := model.Milestone{
		ID:         (store.Store{}).NextID(db, "mls"),
		Name:       name,
		AfterIndex: afterIndex,
	}
	cmd := history.Command{
		Type:        "milestone.add",
		Description: "Add milestone " + name,
		Changes:     []history.Change{milestoneChange(nil, &m)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindMilestone(m.ID)), nil
}

type MilestoneUpdate struct {
	Name            *string
	ExportTitle     *string
	ExportSeparator *bool
}

func UpdateMilestone(db *store.DB, h *history.History, id string, upd MilestoneUpdate) (bool, error) {
	m, ok := db.FindMilestone(strings.TrimSpace(id))
	if !ok {
		return false, NotFoundError{Kind: "milestone", ID: id}
	}
	before := *m
	after := before
	if upd.Name != nil {
		after.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.ExportTitle != nil {
		after.ExportTitle = strings.TrimSpace(*upd.ExportTitle)
	}
	if upd.ExportSeparator != nil {
		after.ExportSeparator = *upd.ExportSeparator
	}
	if reflect.DeepEqual(before, after) {
		return false, nil
	}
	cmd := history.Command{
		Type:        "milestone.update",
		Description: "Edit milestone " + before.Name,
		Changes:     []history.Change{milestoneChange(&before, &after)},
	}
	if err := h.Execute(cmd); err != nil {
		return false, err
	}
	return true, nil
}

// MoveMilestone re-anchors a milestone after a different rendered-card index.
func MoveMilestone(db *store.DB, h *history.History, id string, afterIndex int) error {
	m, ok := db.FindMilestone(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "milestone", ID: id}
	}
	if m.AfterIndex == afterIndex {
		return nil
	}
	before := *m
	after := before
	after.AfterIndex = afterIndex
	cmd := history.Command{
		Type:        "milestone.move",
		Description: "Move milestone " + before.Name,
		Changes:     []history.Change{milestoneChange(&before, &after)},
	}
	return h.Execute(cmd)
}

func DeleteMilestone(db *store.DB, h *history.History, id string) error {
	m, ok := db.FindMilestone(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "milestone", ID: id}
	}
	before := *m
	cmd := history.Command{
		Type:        "milestone.delete",
		Description: "Delete milestone " + before.Name,
		Changes:     []history.Change{milestoneChange(&before, nil)},
	}
	return h.Execute(cmd)
}
