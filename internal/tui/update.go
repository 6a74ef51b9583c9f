package tui

import (
	"strings"

	"aethel-cli/internal/editor"
	"aethel-cli/internal/model"
	"aethel-cli/internal/mutate"
	"aethel-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		if !m.seenWindowSize {
			m.seenWindowSize = true
		}
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m *appModel) resize() {
	sbw := 0
	if m.showSidebar {
		sbw = sidebarWidth
	}
	tlWidth := m.width - sbw
	if tlWidth < trackLabelWidth+10 {
		tlWidth = trackLabelWidth + 10
	}
	m.ed.View.TrackAreaWidth = float64(tlWidth - trackLabelWidth)
	m.ed.View.TrackHeight = 1
	m.sidebar.SetSize(sidebarWidth, m.height-2)
}

func (m appModel) paneOffset() int {
	if m.showSidebar {
		return sidebarWidth
	}
	return 0
}

func (m appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x := float64(msg.X - m.paneOffset())
	y := float64(msg.Y)
	mods := editor.Modifiers{Shift: msg.Shift, Ctrl: msg.Ctrl}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		anchor := m.ed.View.ToTimeline(x)
		m.ed.View = m.ed.View.ZoomAt(m.ed.View.Zoom*1.25, anchor)
		return m, nil
	case tea.MouseButtonWheelDown:
		anchor := m.ed.View.ToTimeline(x)
		m.ed.View = m.ed.View.ZoomAt(m.ed.View.Zoom/1.25, anchor)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if msg.Y == 1 {
			// Click on the ruler: move the playhead.
			mutate.SetCursor(m.db, m.ed.View.ToTimeline(x))
			m.persist()
			return m, nil
		}
		if err := m.ed.PointerDown(x, y, mods); err != nil {
			m.status = err.Error()
		}
	case tea.MouseActionMotion:
		m.ed.PointerMove(x, y)
	case tea.MouseActionRelease:
		if err := m.ed.PointerUp(x, y); err != nil {
			m.status = err.Error()
		} else {
			m.persist()
		}
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusSidebar {
		switch msg.String() {
		case "tab":
			m.focus = focusTimeline
			return m, nil
		case "enter":
			return m.placeSelectedObject()
		case "q", "ctrl+c":
			m.persist()
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.sidebar, cmd = m.sidebar.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.persist()
		return m, tea.Quit

	case "tab":
		m.focus = focusSidebar
	case "ctrl+b":
		m.showSidebar = !m.showSidebar
		m.resize()

	case "esc":
		if m.ed.Dragging() != nil || m.ed.Box() != nil {
			m.ed.Cancel()
		} else {
			m.ed.ClearSelection()
		}

	case "u":
		if m.hist.CanUndo() {
			desc := m.hist.UndoDescription()
			if err := m.hist.Undo(); err != nil {
				m.status = err.Error()
			} else {
				m.flash("undid: %s", desc)
			}
			m.refreshSidebar()
			m.persist()
		}
	case "ctrl+r", "R":
		if m.hist.CanRedo() {
			desc := m.hist.RedoDescription()
			if err := m.hist.Redo(); err != nil {
				m.status = err.Error()
			} else {
				m.flash("redid: %s", desc)
			}
			m.refreshSidebar()
			m.persist()
		}

	case "v":
		m.ed.Tool = editor.ToolSelect
	case "x":
		m.ed.Tool = editor.ToolRazor
	case "b":
		m.ed.Tool = editor.ToolSlip
	case "n":
		m.ed.Tool = editor.ToolSlide

	case "g":
		m.ed.ToggleSnap()
	case "G":
		m.modal = modalGroup
		m.input.Placeholder = "group id (empty clears)"
		m.input.SetValue("")
		m.input.Focus()

	case "y":
		m.ed.Copy(editor.ClipPlacements)
		if m.ed.Clipboard != nil {
			m.flash("copied %d placement(s)", len(m.ed.Clipboard.Items))
		}
	case "p":
		if err := m.ed.Paste(m.db.Cursor); err != nil {
			m.status = err.Error()
		} else {
			m.persist()
		}

	case "backspace", "delete", "D":
		if err := m.ed.DeleteSelection(); err != nil {
			m.status = err.Error()
		} else {
			m.persist()
		}

	case "o":
		m.modal = modalNewObject
		m.input.Placeholder = "object name"
		m.input.SetValue("")
		m.input.Focus()
	case "m":
		m.modal = modalNewMarker
		m.input.Placeholder = "marker label"
		m.input.SetValue("")
		m.input.Focus()

	case "[":
		mutate.SetCursor(m.db, m.db.Cursor-1)
		m.persist()
	case "]":
		mutate.SetCursor(m.db, m.db.Cursor+1)
		m.persist()

	case "+", "=":
		m.ed.View = m.ed.View.ZoomAt(m.ed.View.Zoom*1.25, m.db.Cursor)
	case "-":
		m.ed.View = m.ed.View.ZoomAt(m.ed.View.Zoom/1.25, m.db.Cursor)
	case "h", "left":
		m.ed.View = m.ed.View.ScrollBy(-m.ed.View.VisibleRange() / 10)
	case "l", "right":
		m.ed.View = m.ed.View.ScrollBy(m.ed.View.VisibleRange() / 10)

	case "t":
		at := m.db.MaxTrackIndex() + 1
		if err := mutate.InsertTrack(m.db, m.hist, at, nil); err != nil {
			m.status = err.Error()
		} else {
			m.persist()
		}
	}
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.input.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		modal := m.modal
		m.modal = modalNone
		m.input.Blur()
		return m.applyModal(modal, value)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) applyModal(kind modalKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case modalNewObject:
		if value == "" {
			return m, nil
		}
		obj, err := mutate.CreateObject(m.db, m.hist, mutate.ObjectParams{Name: value, TypeID: "note"})
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.refreshSidebar()
		m.persist()
		_ = m.store.AppendEvent("object.create", obj.ID, obj)
		m.flash("created %s", obj.Name)

	case modalNewMarker:
		mk, err := mutate.AddMarker(m.db, m.hist, m.db.Cursor, value, "")
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.persist()
		_ = m.store.AppendEvent("marker.add", mk.ID, mk)

	case modalGroup:
		if err := m.ed.AssignGroup(value); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.persist()
	}
	return m, nil
}

// placeSelectedObject drops the sidebar's highlighted object at the cursor
// as a creation placement. An already-created object needs a mutation payload
// to place again; that flow lives in `placements mutate`.
func (m appModel) placeSelectedObject() (tea.Model, tea.Cmd) {
	it, ok := m.sidebar.SelectedItem().(objectItem)
	if !ok {
		return m, nil
	}
	if hasCreation(m.db, it.obj.ID) {
		m.flash("%s is already on the timeline", it.obj.Name)
		return m, nil
	}
	plc, err := mutate.AddPlacement(m.db, m.hist, mutate.PlacementParams{
		ObjectID: it.obj.ID,
		Type:     model.PlacementCreation,
		Track:    0,
		Position: m.db.Cursor,
	})
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.persist()
	_ = m.store.AppendEvent("placement.add", plc.ID, plc)
	m.flash("placed %s at %.1f", it.obj.Name, plc.Position)
	return m, nil
}

func hasCreation(db *store.DB, objectID string) bool {
	for _, p := range db.Placements {
		if p.ObjectID == objectID && p.Type == model.PlacementCreation {
			return true
		}
	}
	return false
}
