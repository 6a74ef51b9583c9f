package mutate

import (
	"strings"
	"time"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

// Threads are named narrative strands (a subplot, a character arc). Objects
// associate to threads; the association itself is undoable.

func CreateThread(db *store.DB, h *history.History, name, color string) (*model.Thread, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Thread"
	}
	th := model.Thread{
		ID:    (store.Store{}).NextID(db, "thr"),
		Name:  name,
		Color: strings.TrimSpace(color),
	}
	cmd := history.Command{
		Type:        "thread.create",
		Description: "Create thread " + name,
		Changes:     []history.Change{threadChange(nil, &th)},
	}
	if err := h.Execute(cmd); err != nil {
		return nil, err
	}
	return detached(db.FindThread(th.ID)), nil
}

// DeleteThread removes the thread and detaches every associated object in
// one command.
func DeleteThread(db *store.DB, h *history.History, id string) error {
	th, ok := db.FindThread(strings.TrimSpace(id))
	if !ok {
		return NotFoundError{Kind: "thread", ID: id}
	}
	before := *th
	cmd := history.Command{
		Type:        "thread.delete",
		Description: "Delete thread " + before.Name,
	}
	for _, o := range db.Objects {
		if !containsString(o.ThreadIDs, before.ID) {
			continue
		}
		ob := o
		oa := o
		oa.ThreadIDs = removeString(o.ThreadIDs, before.ID)
		cmd.Changes = append(cmd.Changes, objectChange(&ob, &oa))
	}
	cmd.Changes = append(cmd.Changes, threadChange(&before, nil))
	return h.Execute(cmd)
}

// AssociateThread links an object to a thread.
func AssociateThread(db *store.DB, h *history.History, objectID, threadID string) error {
	obj, ok := db.FindObject(strings.TrimSpace(objectID))
	if !ok {
		return NotFoundError{Kind: "object", ID: objectID}
	}
	th, ok := db.FindThread(strings.TrimSpace(threadID))
	if !ok {
		return NotFoundError{Kind: "thread", ID: threadID}
	}
	if containsString(obj.ThreadIDs, th.ID) {
		return nil
	}
	before := *obj
	after := before
	after.ThreadIDs = append(append([]string{}, before.ThreadIDs...), th.ID)
	after.UpdatedAt = time.Now().UTC()
	cmd := history.Command{
		Type:        "thread.associate",
		Description: "Add " + before.Name + " to " + th.Name,
		Changes:     []history.Change{objectChange(&before, &after)},
	}
	return h.Execute(cmd)
}

// DissociateThread unlinks an object from a thread.
func DissociateThread(db *store.DB, h *history.History, objectID, threadID string) error {
	obj, ok := db.FindObject(strings.TrimSpace(objectID))
	if !ok {
		return NotFoundError{Kind: "object", ID: objectID}
	}
	th, ok := db.FindThread(strings.TrimSpace(threadID))
	if !ok {
		return NotFoundError{Kind: "thread", ID: threadID}
	}
	if !containsString(obj.ThreadIDs, th.ID) {
		return nil
	}
	before := *obj
	after := before
	after.ThreadIDs = removeString(before.ThreadIDs, th.ID)
	after.UpdatedAt = time.Now().UTC()
	cmd := history.Command{
		Type:        "thread.dissociate",
		Description: "Remove " + before.Name + " from " + th.Name,
		Changes:     []history.Change{objectChange(&before, &after)},
	}
	return h.Execute(cmd)
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func removeString(xs []string, s string) []string {
	var out []string
	for _, x := range xs {
		if x != s {
			out = append(out, x)
		}
	}
	return out
}
