// Package registry is the canonical read surface over narrative objects:
// hierarchy walks, appearance inheritance and rendered-card ordering.
// Mutation lives in internal/mutate so every change stays undoable.
package registry

import (
	"sort"
	"strings"

	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

func Get(db *store.DB, id string) (*model.Object, bool) {
	return db.FindObject(strings.TrimSpace(id))
}

func Children(db *store.DB, parentID string) []model.Object {
	return db.ChildrenOf(parentID)
}

// Roots returns objects with no parent, sorted like ChildrenOf.
func Roots(db *store.DB) []model.Object {
	var out []model.Object
	for _, o := range db.Objects {
		if o.ParentID == nil || strings.TrimSpace(*o.ParentID) == "" {
			out = append(out, o)
		}
	}
	sortSiblings(out)
	return out
}

// EffectiveColor resolves an object's display color: its own override, else
// the nearest ancestor override, else the type default.
func EffectiveColor(db *store.DB, id string) string {
	return effectiveAppearance(db, id, func(o *model.Object) *string { return o.Color },
		func(t *model.TypeDef) string { return t.Color })
}

// EffectiveIcon resolves an object's display icon the same way as color.
func EffectiveIcon(db *store.DB, id string) string {
	return effectiveAppearance(db, id, func(o *model.Object) *string { return o.Icon },
		func(t *model.TypeDef) string { return t.Icon })
}

func effectiveAppearance(db *store.DB, id string, pick func(*model.Object) *string, fromType func(*model.TypeDef) string) string {
	o, ok := db.FindObject(strings.TrimSpace(id))
	if !ok {
		return ""
	}
	typeID := o.TypeID
	for cur, depth := o, 0; cur != nil && depth < maxDepth; depth++ {
		if v := pick(cur); v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
		cur = parentOf(db, cur)
	}
	if t, ok := db.FindType(typeID); ok {
		return fromType(t)
	}
	return ""
}

// maxDepth caps ancestor walks so a corrupted parent cycle cannot hang a read.
const maxDepth = 256

func parentOf(db *store.DB, o *model.Object) *model.Object {
	if o.ParentID == nil {
		return nil
	}
	p, ok := db.FindObject(strings.TrimSpace(*o.ParentID))
	if !ok {
		return nil
	}
	return p
}

// Ancestors returns the parent chain of id, nearest first, excluding id itself.
func Ancestors(db *store.DB, id string) []model.Object {
	var out []model.Object
	o, ok := db.FindObject(strings.TrimSpace(id))
	if !ok {
		return nil
	}
	for cur, depth := parentOf(db, o), 0; cur != nil && depth < maxDepth; depth++ {
		out = append(out, *cur)
		cur = parentOf(db, cur)
	}
	return out
}

// IsDescendant reports whether candidate sits anywhere under ancestorID
// (walking candidate's parent chain up to the root).
func IsDescendant(db *store.DB, ancestorID, candidateID string) bool {
	ancestorID = strings.TrimSpace(ancestorID)
	if ancestorID == "" {
		return false
	}
	for _, a := range Ancestors(db, candidateID) {
		if a.ID == ancestorID {
			return true
		}
	}
	return false
}

func sortSiblings(xs []model.Object) {
	sort.SliceStable(xs, func(i, j int) bool {
		if xs[i].SortOrder != xs[j].SortOrder {
			return xs[i].SortOrder < xs[j].SortOrder
		}
		return xs[i].Name < xs[j].Name
	})
}
