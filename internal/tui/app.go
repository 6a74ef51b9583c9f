package tui

import (
	"fmt"

	"aethel-cli/internal/editor"
	"aethel-cli/internal/geometry"
	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type focusArea int

const (
	focusTimeline focusArea = iota
	focusSidebar
)

type modalKind int

const (
	modalNone modalKind = iota
	modalNewObject
	modalNewMarker
	modalGroup
)

const (
	sidebarWidth    = 30
	trackLabelWidth = 14
	timelineTop     = 2 // header + ruler
)

type appModel struct {
	db    *store.DB
	hist  *history.History
	store store.Store
	ed    *editor.Editor

	width  int
	height int
	// The very first WindowSizeMsg is initial sizing, not a user resize.
	seenWindowSize bool

	focus       focusArea
	showSidebar bool
	sidebar     list.Model

	modal modalKind
	input textinput.Model

	status string
}

type objectItem struct {
	obj model.Object
}

func (it objectItem) Title() string { return it.obj.Name }
func (it objectItem) Description() string {
	d := it.obj.TypeID
	if len(it.obj.Aliases) > 0 {
		d += " · " + it.obj.Aliases[0]
	}
	return d
}
func (it objectItem) FilterValue() string { return it.obj.Name }

func newAppModel(db *store.DB, hist *history.History, s store.Store) appModel {
	applyGlyphPreference()

	ed := editor.New(db, hist, nil)
	ed.View = geometry.NewViewport(0, timelineBoundsMax(db))
	ed.View.TrackLabelWidth = trackLabelWidth
	ed.View.TracksTop = timelineTop

	delegate := list.NewDefaultDelegate()
	sb := list.New(objectItems(db), delegate, sidebarWidth, 10)
	sb.Title = "Objects"
	sb.SetShowHelp(false)
	sb.SetShowStatusBar(false)

	ti := textinput.New()
	ti.CharLimit = 120

	return appModel{
		db:          db,
		hist:        hist,
		store:       s,
		ed:          ed,
		showSidebar: true,
		sidebar:     sb,
		input:       ti,
	}
}

func objectItems(db *store.DB) []list.Item {
	items := make([]list.Item, 0, len(db.Objects))
	for _, o := range db.Objects {
		items = append(items, objectItem{obj: o})
	}
	return items
}

// timelineBoundsMax picks a right bound: past the furthest content with head
// room, never below 100 so an empty project still has a canvas.
func timelineBoundsMax(db *store.DB) float64 {
	max := 100.0
	for _, p := range db.Placements {
		if e := p.End() + 20; e > max {
			max = e
		}
	}
	for _, m := range db.Markers {
		if e := m.Position + 20; e > max {
			max = e
		}
	}
	return max
}

func (m appModel) Init() tea.Cmd {
	return textinput.Blink
}

// persist saves document + history. Called after every committed command so
// a killed terminal loses at most the in-flight gesture.
func (m *appModel) persist() {
	if err := m.hist.SaveTo(m.db); err != nil {
		m.status = err.Error()
		return
	}
	if err := m.store.Save(m.db); err != nil {
		m.status = err.Error()
	}
}

func (m *appModel) refreshSidebar() {
	m.sidebar.SetItems(objectItems(m.db))
}

func (m *appModel) flash(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}
