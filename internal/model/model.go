package model

import "time"

type PlacementType string

const (
	PlacementCreation PlacementType = "creation"
	PlacementMutation PlacementType = "mutation"
)

// TypeDef describes an object type (character, location, chapter, ...).
// Color/Icon are the defaults at the end of the effective-appearance chain.
type TypeDef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

type Object struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	TypeID   string  `json:"typeId"`
	ParentID *string `json:"parentId,omitempty"`

	// Appearance overrides; nil means "inherit" (parent chain, then type default).
	Color *string `json:"color,omitempty"`
	Icon  *string `json:"icon,omitempty"`

	SortOrder int  `json:"sortOrder"`
	Rendered  bool `json:"rendered"`

	// Attributes holds the object's base attribute values. Values recorded by
	// timeline mutations layer on top of these (see timeline.StateAt).
	Attributes map[string]any `json:"attributes,omitempty"`
	Aliases    []string       `json:"aliases,omitempty"`

	// ContentRef points at the object's prose body (markdown), owned by the
	// rich-text editor. The core only stores and previews it.
	ContentRef string `json:"contentRef,omitempty"`

	ThreadIDs []string `json:"threadIds,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AttrChange records one attribute transition inside a mutation payload.
// From is the value before the mutation, To the value after.
type AttrChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

type MutationPayload struct {
	Label   string                `json:"label"`
	Changes map[string]AttrChange `json:"changes"`
}

type Placement struct {
	ID       string        `json:"id"`
	ObjectID string        `json:"objectId"`
	Type     PlacementType `json:"type"`

	Track    int     `json:"track"`
	Position float64 `json:"position"`
	// EndPosition, when set, makes this a ranged placement [Position, EndPosition).
	EndPosition *float64 `json:"endPosition,omitempty"`

	// Mutation is present iff Type == PlacementMutation.
	Mutation *MutationPayload `json:"mutation,omitempty"`

	Locked  bool    `json:"locked"`
	GroupID *string `json:"groupId,omitempty"`

	// Card/display metadata (optional, never drives state computation).
	AfterRenderedIndex *int    `json:"afterRenderedIndex,omitempty"`
	AttachedToObjectID *string `json:"attachedToObjectId,omitempty"`
	MutationDisplay    *string `json:"mutationDisplay,omitempty"`

	// Seq is assigned on insertion and breaks position ties deterministically.
	Seq int `json:"seq"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// End returns the placement's end position (Position itself for point placements).
func (p Placement) End() float64 {
	if p.EndPosition != nil {
		return *p.EndPosition
	}
	return p.Position
}

// Ranged reports whether the placement covers a non-empty interval.
func (p Placement) Ranged() bool {
	return p.EndPosition != nil
}

type Track struct {
	Index  int     `json:"index"`
	Name   *string `json:"name,omitempty"`
	Color  *string `json:"color,omitempty"`
	Locked bool    `json:"locked"`
	Muted  bool    `json:"muted"`
	Solo   bool    `json:"solo"`
}

// Marker is a timeline annotation. It never affects state computation.
type Marker struct {
	ID       string  `json:"id"`
	Position float64 `json:"position"`
	Label    string  `json:"label"`
	Color    string  `json:"color,omitempty"`
}

// Milestone is a structural boundary (act/part) anchored after a rendered-card
// index. Independent of placements.
type Milestone struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AfterIndex int    `json:"afterIndex"`

	ExportTitle     string `json:"exportTitle,omitempty"`
	ExportSeparator bool   `json:"exportSeparator"`
}

// Thread is a named narrative thread objects can be associated with.
type Thread struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Snapshot is the plain serializable document state handed to persistence.
type Snapshot struct {
	Version    int         `json:"version"`
	Types      []TypeDef   `json:"types"`
	Objects    []Object    `json:"objects"`
	Placements []Placement `json:"placements"`
	Tracks     []Track     `json:"tracks"`
	Markers    []Marker    `json:"markers"`
	Milestones []Milestone `json:"milestones"`
	Threads    []Thread    `json:"threads"`
	Cursor     float64     `json:"cursor"`
}

type Event struct {
	ID       string    `json:"id"`
	TS       time.Time `json:"ts"`
	Type     string    `json:"type"`
	EntityID string    `json:"entityId"`
	Payload  any       `json:"payload"`
}
