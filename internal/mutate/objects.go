package mutate

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/registry"
	"aethel-cli/internal/store"
)

type ObjectParams struct {
	Name       string
	TypeID     string
	ParentID   *string
	Color      *string
	Icon       *string
	SortOrder  int
	Rendered   bool
	Attributes map[string]any
	Aliases    []string
	ContentRef string
}

// CreateObject mints a new narrative object as one undoable command.
func CreateObject(db *store.DB, h *history.History, p ObjectParams) (*model.Object, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("object name is required")
	}
	if p.TypeID != "" {
		if _, ok := db.FindType(p.TypeID); !ok {
			return nil, NotFoundError{Kind: "type", ID: p.TypeID}
		}
	}
	if p.ParentID != nil {
		if _, ok := db.FindObject(strings.TrimSpace(*p.ParentID)); !ok {
			return nil, NotFoundError{Kind: "object", ID: *p.ParentID}
		}
	}

	now := time.Now().UTC()
	obj := model.Object{
		ID:         (store.Store{}).NextID(db, "obj"),
		Name:       name,
		TypeID:     p.TypeID,
		ParentID:   p.ParentID,
		Color:      p.Color,
		Icon:       p.Icon,
		SortOrder:  p.SortOrder,
		Rendered:   p.Rendered,
		Attributes: p.Attributes,
		Aliases:    p.Aliases,
		ContentRef: p.ContentRef,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	cmd := history.Command{
		Type:        "object.create",
		Description: "Create " + name,
		Changes:     []history.Change{objectChange(nil, &obj)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindObject(obj.ID)), nil
}

// ObjectUpdate carries optional field updates; nil fields stay untouched.
type ObjectUpdate struct {
	Name       *string
	Color      *string
	ClearColor bool
	Icon       *string
	ClearIcon  bool
	SortOrder  *int
	Rendered   *bool
	Attributes map[string]any // nil keeps; non-nil replaces wholesale
	Aliases    *[]string
	ContentRef *string
}

// UpdateObject applies a multi-field update as one command. Undo restores
// every touched field to its exact prior value via the before snapshot.
func UpdateObject(db *store.DB, h *history.History, id string, upd ObjectUpdate) (*model.Object, bool, error) {
	cur, ok := db.FindObject(strings.TrimSpace(id))
	if !ok {
		return nil, false, NotFoundError{Kind: "object", ID: id}
	}
	before := *cur
	after := before

	if upd.Name != nil {
		after.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.ClearColor {
		after.Color = nil
	} else if upd.Color != nil {
		after.Color = upd.Color
	}
	if upd.ClearIcon {
		after.Icon = nil
	} else if upd.Icon != nil {
		after.Icon = upd.Icon
	}
	if upd.SortOrder != nil {
		after.SortOrder = *upd.SortOrder
	}
	if upd.Rendered != nil {
		after.Rendered = *upd.Rendered
	}
	if upd.Attributes != nil {
		after.Attributes = upd.Attributes
	}
	if upd.Aliases != nil {
		after.Aliases = *upd.Aliases
	}
	if upd.ContentRef != nil {
		after.ContentRef = *upd.ContentRef
	}

	if reflect.DeepEqual(before, after) {
		return &before, false, nil
	}
	after.UpdatedAt = time.Now().UTC()

	cmd := history.Command{
		Type:        "object.update",
		Description: "Edit " + before.Name,
		Changes:     []history.Change{objectChange(&before, &after)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, false, err
	}
	return detached(db.FindObject(after.ID)), true, nil
}

// DeleteObject removes the object and cascades to every placement that
// references it, as a single undoable command. Children of the deleted
// object are promoted to its parent (captured in the same command, so undo
// restores the original hierarchy exactly). Cascade removal ignores
// placement locks: the lock guards direct gestures, not the owning object's
// lifecycle.
func DeleteObject(db *store.DB, h *history.History, id string) error {
	obj, ok := db.FindObject(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "object", ID: id}
	}
	before := *obj

	cmd := history.Command{
		Type:        "object.delete",
		Description: "Delete " + before.Name,
	}
	for _, child := range db.ChildrenOf(before.ID) {
		cb := child
		ca := child
		ca.ParentID = before.ParentID
		cmd.Changes = append(cmd.Changes, objectChange(&cb, &ca))
	}
	for _, p := range db.PlacementsForObject(before.ID) {
		pb := p
		cmd.Changes = append(cmd.Changes, placementChange(&pb, nil))
	}
	cmd.Changes = append(cmd.Changes, objectChange(&before, nil))
	return h.Execute(cmd)
}

// Reparent moves an object to a new parent at the given sort position.
// Dropping onto itself or any of its descendants is rejected, as is a no-op
// drop; both come back as InvalidReparentError, which the tree UI treats as
// "nothing happened".
func Reparent(db *store.DB, h *history.History, id string, newParentID *string, sortOrder int) error {
	obj, ok := db.FindObject(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "object", ID: id}
	}
	target := ""
	if newParentID != nil {
		target = strings.TrimSpace(*newParentID)
	}
	if target != "" {
		if target == obj.ID {
			return InvalidReparentError{ObjectID: obj.ID, TargetID: target, Reason: "target is the object itself"}
		}
		if _, ok := db.FindObject(target); !ok {
			return NotFoundError{Kind: "object", ID: target}
		}
		if registry.IsDescendant(db, obj.ID, target) {
			return InvalidReparentError{ObjectID: obj.ID, TargetID: target, Reason: "target is a descendant"}
		}
	}

	curParent := ""
	if obj.ParentID != nil {
		curParent = strings.TrimSpace(*obj.ParentID)
	}
	if curParent == target && obj.SortOrder == sortOrder {
		return InvalidReparentError{ObjectID: obj.ID, TargetID: target, Reason: "no-op"}
	}

	before := *obj
	after := before
	if target == "" {
		after.ParentID = nil
	} else {
		after.ParentID = &target
	}
	after.SortOrder = sortOrder
	after.UpdatedAt = time.Now().UTC()

	cmd := history.Command{
		Type:        "object.reparent",
		Description: "Move " + before.Name,
		Changes:     []history.Change{objectChange(&before, &after)},
	}
	return h.Execute(cmd)
}
