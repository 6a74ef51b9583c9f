package tui

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"aethel-cli/internal/editor"
	"aethel-cli/internal/model"
	"aethel-cli/internal/registry"
	"aethel-cli/internal/timeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func (m appModel) View() string {
	if m.width == 0 {
		return "loading..."
	}

	tl := m.renderTimeline()
	if m.showSidebar {
		tl = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), tl)
	}

	var b strings.Builder
	b.WriteString(tl)
	b.WriteString("\n")
	b.WriteString(m.renderDetail())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	if m.modal != modalNone {
		b.WriteString("\n")
		b.WriteString(styleModalBox.Render(m.input.View()))
	}
	return b.String()
}

func (m appModel) timelineWidth() int {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth
	}
	if w < trackLabelWidth+10 {
		w = trackLabelWidth + 10
	}
	return w
}

func (m appModel) renderTimeline() string {
	width := m.timelineWidth()

	var lines []string
	lines = append(lines, m.renderHeader(width))
	lines = append(lines, m.renderRuler(width))

	previews := map[string]editor.PreviewPlacement{}
	for _, pv := range m.ed.Preview() {
		previews[pv.ID] = pv
	}

	tracks := append([]model.Track{}, m.db.Tracks...)
	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].Index < tracks[j].Index })
	for _, tr := range tracks {
		lines = append(lines, m.renderTrackRow(tr, previews, width))
	}
	return strings.Join(lines, "\n")
}

func (m appModel) renderHeader(width int) string {
	title := fmt.Sprintf(" aethel · %d objects · %d placements · cursor %.1f",
		len(m.db.Objects), len(m.db.Placements), m.db.Cursor)
	return styleHeader.Render(ansi.Truncate(title, width, "…"))
}

// renderRuler draws position ticks, markers and the playhead above the
// tracks.
func (m appModel) renderRuler(width int) string {
	area := width - trackLabelWidth
	if area <= 0 {
		return ""
	}
	cells := make([]rune, area)
	for i := range cells {
		cells[i] = ' '
	}

	// Tick labels at round positions.
	step := niceStep(m.ed.View.VisibleRange())
	start := math.Ceil(m.ed.View.VisibleMin()/step) * step
	for pos := start; pos <= m.ed.View.VisibleMax(); pos += step {
		col := m.column(pos)
		if col < 0 || col >= area {
			continue
		}
		label := trimFloat(pos)
		for i, r := range label {
			if col+i < area {
				cells[col+i] = r
			}
		}
	}

	markerCols := map[int]bool{}
	for _, mk := range m.db.Markers {
		if col := m.column(mk.Position); col >= 0 && col < area {
			cells[col] = glyphMarker()
			markerCols[col] = true
		}
	}
	cursorCol := m.column(m.db.Cursor)
	if cursorCol >= 0 && cursorCol < area {
		cells[cursorCol] = glyphCursor()
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", trackLabelWidth))
	for i, r := range cells {
		s := string(r)
		switch {
		case i == cursorCol:
			b.WriteString(styleCursorCol.Render(s))
		case markerCols[i]:
			b.WriteString(styleMarkerCol.Render(s))
		default:
			b.WriteString(styleRuler.Render(s))
		}
	}
	return b.String()
}

func (m appModel) renderTrackRow(tr model.Track, previews map[string]editor.PreviewPlacement, width int) string {
	area := width - trackLabelWidth

	label := trackDisplayName(tr)
	if tr.Locked {
		label += " " + glyphLocked()
	}
	if tr.Muted {
		label += " M"
	}
	if tr.Solo {
		label += " S"
	}
	label = ansi.Truncate(label, trackLabelWidth-1, "…")
	labelOut := styleTrackName.Render(padRight(label, trackLabelWidth))

	// owner[i] indexes db.Placements, -1 = empty cell.
	owner := make([]int, area)
	for i := range owner {
		owner[i] = -1
	}
	for i := range m.db.Placements {
		p := &m.db.Placements[i]
		track, start, end := p.Track, p.Position, p.End()
		if pv, ok := previews[p.ID]; ok {
			track, start, end = pv.Track, pv.Position, pv.End
		}
		if track != tr.Index {
			continue
		}
		c0 := m.column(start)
		c1 := m.column(end)
		if c1 < c0 {
			c1 = c0
		}
		for c := c0; c <= c1; c++ {
			if c >= 0 && c < area {
				owner[c] = i
			}
		}
	}

	cursorCol := m.column(m.db.Cursor)

	var b strings.Builder
	b.WriteString(labelOut)
	for c := 0; c < area; c++ {
		idx := owner[c]
		if idx < 0 {
			if c == cursorCol {
				b.WriteString(styleCursorCol.Render(string(glyphCursor())))
			} else {
				b.WriteString(" ")
			}
			continue
		}
		p := &m.db.Placements[idx]
		g := glyphBlock()
		if p.Ranged() {
			g = glyphRange()
		}
		if p.Type == model.PlacementMutation {
			g = glyphMutation()
		}
		st := placementStyle(registry.EffectiveColor(m.db, p.ObjectID), m.ed.SelectedPlacements[p.ID], p.Locked)
		b.WriteString(st.Render(string(g)))
	}
	return b.String()
}

// renderDetail shows the first selected placement's object, its state at the
// cursor, and a snippet of prose content.
func (m appModel) renderDetail() string {
	ids := m.ed.SelectedIDs()
	if len(ids) == 0 {
		return styleStatus.Render(" nothing selected")
	}
	p, ok := m.db.FindPlacement(ids[0])
	if !ok {
		return styleStatus.Render(" nothing selected")
	}
	obj, ok := m.db.FindObject(p.ObjectID)
	if !ok {
		return styleStatus.Render(" nothing selected")
	}

	head := fmt.Sprintf(" %s · %s @ %s", obj.Name, p.Type, trimFloat(p.Position))
	if p.Ranged() {
		head += "–" + trimFloat(p.End())
	}
	if len(ids) > 1 {
		head += fmt.Sprintf(" (+%d more)", len(ids)-1)
	}

	if st, ok := timeline.StateAt(m.db, obj.ID, m.db.Cursor); ok && len(st.ComputedAttributes) > 0 {
		keys := make([]string, 0, len(st.ComputedAttributes))
		for k := range st.ComputedAttributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var attrs []string
		for _, k := range keys {
			attrs = append(attrs, fmt.Sprintf("%s=%v", k, st.ComputedAttributes[k]))
		}
		head += " · " + strings.Join(attrs, " ")
	}

	out := ansi.Truncate(head, m.width, "…")
	if obj.ContentRef != "" {
		md := renderMarkdown(obj.ContentRef, m.width-2)
		if i := strings.IndexByte(md, '\n'); i >= 0 {
			md = md[:i]
		}
		out += "\n " + md
	}
	return out
}

func (m appModel) renderStatus() string {
	undo, redo := m.hist.Depths()
	snap := "off"
	if m.ed.Snap {
		snap = "on"
	}
	left := fmt.Sprintf(" %s · snap %s · undo %d · redo %d · zoom %.2fx",
		m.ed.Tool, snap, undo, redo, m.ed.View.Zoom)
	if m.status != "" {
		left += " · " + m.status
	}
	return styleStatus.Render(ansi.Truncate(left, m.width, "…"))
}

// column converts a timeline position to a column inside the track area.
func (m appModel) column(pos float64) int {
	return int(math.Round(m.ed.View.ToScreenX(pos))) - trackLabelWidth
}

func trackDisplayName(tr model.Track) string {
	if tr.Name != nil && *tr.Name != "" {
		return *tr.Name
	}
	return fmt.Sprintf("Track %d", tr.Index)
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.1f", f)
	return strings.TrimSuffix(s, ".0")
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// niceStep picks a round tick spacing that keeps labels readable.
func niceStep(visibleRange float64) float64 {
	if visibleRange <= 0 {
		return 10
	}
	raw := visibleRange / 8
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, mult := range []float64{1, 2, 5, 10} {
		if raw <= mult*mag {
			return mult * mag
		}
	}
	return 10 * mag
}
