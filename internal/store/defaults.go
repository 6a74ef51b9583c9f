package store

import "aethel-cli/internal/model"

// DefaultTypes seeds a fresh document with the stock narrative object types.
// Type color/icon are the final fallback of the effective-appearance chain.
func DefaultTypes() []model.TypeDef {
	return []model.TypeDef{
		{ID: "character", Name: "Character", Color: "#e5c07b", Icon: "person"},
		{ID: "location", Name: "Location", Color: "#98c379", Icon: "map-pin"},
		{ID: "chapter", Name: "Chapter", Color: "#61afef", Icon: "book"},
		{ID: "note", Name: "Note", Color: "#c678dd", Icon: "note"},
	}
}

// NewDB returns an empty document with default types and one track.
func NewDB() *DB {
	return &DB{
		Version:    SchemaVersion,
		Types:      DefaultTypes(),
		Objects:    []model.Object{},
		Placements: []model.Placement{},
		Tracks:     []model.Track{{Index: 0}},
		Markers:    []model.Marker{},
		Milestones: []model.Milestone{},
		Threads:    []model.Thread{},
	}
}
