package editor

import (
	"math"

	"aethel-cli/internal/history"
	"aethel-cli/internal/model"
	"aethel-cli/internal/mutate"
)

type DragType int

const (
	DragMove DragType = iota
	DragResizeStart
	DragResizeEnd
	// DragSlip moves a placement along its own track without the magnetic
	// resolve, keeping its width.
	DragSlip
	// DragSlide moves a placement and lets the neighbouring placements on
	// the same track give up or absorb the room.
	DragSlide
)

// DragState is the in-flight gesture. Positions here are previews; the
// store is untouched until PointerUp commits.
type DragState struct {
	Type DragType

	// Screen coordinates of the press, for the click-vs-drag threshold.
	StartX float64
	StartY float64

	StartPosition float64
	StartTrack    int

	CurrentPosition float64
	CurrentTrack    int

	// PlacementIDs are the dragged placements; origin remembers where each
	// started so the preview and the commit apply a shared delta.
	PlacementIDs []string
	origin       map[string]dragOrigin

	moved bool
}

type dragOrigin struct {
	track    int
	position float64
	end      *float64
}

func (d *DragState) PositionDelta() float64 { return d.CurrentPosition - d.StartPosition }
func (d *DragState) TrackDelta() int        { return d.CurrentTrack - d.StartTrack }

// BoxState is an in-flight rubber-band selection in screen coordinates.
type BoxState struct {
	StartX, StartY float64
	CurX, CurY     float64
	Additive       bool
}

func (b *BoxState) rect() (x0, y0, x1, y1 float64) {
	x0, x1 = b.StartX, b.CurX
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	y0, y1 = b.StartY, b.CurY
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return
}

func (e *Editor) Dragging() *DragState { return e.drag }
func (e *Editor) Box() *BoxState       { return e.box }

// PointerDown starts a gesture. On empty space it begins a box selection; on
// a placement it applies selection rules and arms a drag (move or resize by
// edge proximity, slide under the slide tool). The razor tool splits ranged
// placements immediately instead of dragging.
func (e *Editor) PointerDown(x, y float64, mods Modifiers) error {
	e.drag = nil
	e.box = nil

	plc, edge := e.hitTest(x, y)
	if plc == nil {
		e.box = &BoxState{StartX: x, StartY: y, CurX: x, CurY: y, Additive: mods.additive()}
		return nil
	}

	if e.Tool == ToolRazor {
		if !plc.Ranged() {
			return nil
		}
		at := e.snapPos(e.View.ToTimeline(x))
		_, _, err := mutate.SplitPlacement(e.db, e.hist, plc.ID, at)
		return e.swallowRecoverable(err)
	}

	wasSelected := e.SelectedPlacements[plc.ID]
	e.Select(plc.ID, mods)
	if mods.additive() && wasSelected {
		// Toggled off: nothing left under the pointer to drag.
		return nil
	}
	if plc.Locked {
		return nil
	}

	dt := DragMove
	switch {
	case e.Tool == ToolSlide:
		dt = DragSlide
	case e.Tool == ToolSlip:
		dt = DragSlip
	case edge == hitStart:
		dt = DragResizeStart
	case edge == hitEnd:
		dt = DragResizeEnd
	}

	ids := []string{plc.ID}
	if dt == DragMove && e.SelectedPlacements[plc.ID] && len(e.SelectedPlacements) > 1 {
		ids = e.SelectedIDs()
	}

	pos := e.View.ToTimeline(x)
	track := e.View.TrackFromY(y)
	d := &DragState{
		Type:            dt,
		StartX:          x,
		StartY:          y,
		StartPosition:   pos,
		StartTrack:      track,
		CurrentPosition: pos,
		CurrentTrack:    track,
		PlacementIDs:    ids,
		origin:          map[string]dragOrigin{},
	}
	for _, id := range ids {
		if p, ok := e.db.FindPlacement(id); ok {
			d.origin[id] = dragOrigin{track: p.Track, position: p.Position, end: p.EndPosition}
		}
	}
	e.drag = d
	return nil
}

// PointerMove updates the in-flight gesture preview.
func (e *Editor) PointerMove(x, y float64) {
	if e.box != nil {
		e.box.CurX = x
		e.box.CurY = y
		return
	}
	if e.drag == nil {
		return
	}
	d := e.drag
	if !d.moved {
		if math.Hypot(x-d.StartX, y-d.StartY) < e.DragThreshold {
			return
		}
		d.moved = true
	}
	d.CurrentPosition = e.snapPos(e.View.ToTimeline(x))
	d.CurrentTrack = e.View.TrackFromY(y)
	if d.Type != DragMove {
		// Resize and slide stay on their own track.
		d.CurrentTrack = d.StartTrack
	}
}

// Preview returns the projected (track, position, end) for every dragged
// placement without touching the store, for rendering.
type PreviewPlacement struct {
	ID       string
	Track    int
	Position float64
	End      float64
}

func (e *Editor) Preview() []PreviewPlacement {
	d := e.drag
	if d == nil || !d.moved {
		return nil
	}
	var out []PreviewPlacement
	for _, id := range d.PlacementIDs {
		o, ok := d.origin[id]
		if !ok {
			continue
		}
		pv := PreviewPlacement{ID: id, Track: o.track, Position: o.position}
		end := o.position
		if o.end != nil {
			end = *o.end
		}
		switch d.Type {
		case DragMove, DragSlip, DragSlide:
			pv.Track = o.track + d.TrackDelta()
			pv.Position = o.position + d.PositionDelta()
			end += d.PositionDelta()
		case DragResizeStart:
			pv.Position = o.position + d.PositionDelta()
		case DragResizeEnd:
			end += d.PositionDelta()
		}
		pv.End = end
		out = append(out, pv)
	}
	return out
}

// PointerUp finishes the gesture. A box resolves to a selection; a drag
// below the threshold is a click (selection already applied on PointerDown);
// a real drag commits exactly one command or batch. Recoverable rejections
// leave the document unchanged.
func (e *Editor) PointerUp(x, y float64) error {
	if e.box != nil {
		e.finishBox(x, y)
		return nil
	}
	d := e.drag
	if d == nil {
		return nil
	}
	e.drag = nil
	e.foldRelease(d, x, y)
	if !d.moved {
		return nil
	}

	switch d.Type {
	case DragMove:
		return e.commitMove(d)
	case DragResizeStart, DragResizeEnd:
		return e.commitResize(d)
	case DragSlip:
		return e.commitSlip(d)
	case DragSlide:
		return e.commitSlide(d)
	}
	return nil
}

// commitSlip moves the placement along its own track by the drag delta,
// without the magnetic resolve.
func (e *Editor) commitSlip(d *DragState) error {
	id := d.PlacementIDs[0]
	o := d.origin[id]
	_, err := mutate.MovePlacement(e.db, e.hist, id, o.track, o.position+d.PositionDelta(), false)
	return e.swallowRecoverable(err)
}

// foldRelease folds the release coordinates into the gesture so a
// press-move-release delivered without a trailing move event still commits
// at the release point.
func (e *Editor) foldRelease(d *DragState, x, y float64) {
	if !d.moved && math.Hypot(x-d.StartX, y-d.StartY) < e.DragThreshold {
		return
	}
	d.moved = true
	d.CurrentPosition = e.snapPos(e.View.ToTimeline(x))
	d.CurrentTrack = e.View.TrackFromY(y)
	if d.Type != DragMove {
		d.CurrentTrack = d.StartTrack
	}
}

// Cancel aborts any in-flight gesture (Escape). Nothing was committed, so
// nothing needs undoing.
func (e *Editor) Cancel() {
	e.drag = nil
	e.box = nil
}

func (e *Editor) commitMove(d *DragState) error {
	if len(d.PlacementIDs) == 1 {
		id := d.PlacementIDs[0]
		o := d.origin[id]
		_, err := mutate.MovePlacement(e.db, e.hist, id,
			o.track+d.TrackDelta(), o.position+d.PositionDelta(), true)
		return e.swallowRecoverable(err)
	}
	moves := make([]mutate.PlacementMove, 0, len(d.PlacementIDs))
	for _, id := range d.PlacementIDs {
		o, ok := d.origin[id]
		if !ok {
			continue
		}
		moves = append(moves, mutate.PlacementMove{
			ID:       id,
			Track:    o.track + d.TrackDelta(),
			Position: o.position + d.PositionDelta(),
		})
	}
	_, err := mutate.MovePlacements(e.db, e.hist, moves)
	return e.swallowRecoverable(err)
}

func (e *Editor) commitResize(d *DragState) error {
	id := d.PlacementIDs[0]
	o := d.origin[id]
	var newStart, newEnd *float64
	if d.Type == DragResizeStart {
		s := o.position + d.PositionDelta()
		newStart = &s
	} else {
		end := o.position
		if o.end != nil {
			end = *o.end
		}
		ne := end + d.PositionDelta()
		newEnd = &ne
	}
	_, err := mutate.ResizePlacement(e.db, e.hist, id, newStart, newEnd)
	return e.swallowRecoverable(err)
}

// commitSlide moves the placement along its track and hands the displaced
// room to the ranged neighbours: the previous neighbour's end and the next
// neighbour's start follow the dragged edges. One command, so undo restores
// all three at once. Locked neighbours keep their extent; a neighbour edge
// that would invert its range stays put.
func (e *Editor) commitSlide(d *DragState) error {
	id := d.PlacementIDs[0]
	o := d.origin[id]
	delta := d.PositionDelta()
	if delta == 0 {
		return nil
	}
	self, ok := e.db.FindPlacement(id)
	if !ok || self.Locked {
		return nil
	}
	if tr, ok := e.db.FindTrack(self.Track); ok && tr.Locked {
		return nil
	}

	prev, next := e.trackNeighbours(id, o.track)
	cmd := history.Command{Type: "placement.slide", Description: "Slide placement"}

	sb := *self
	sa := sb
	sa.Position = o.position + delta
	if sb.EndPosition != nil {
		end := *sb.EndPosition + delta
		sa.EndPosition = &end
	}
	cmd.Changes = append(cmd.Changes, placementDataChange(&sb, &sa))

	if prev != nil && prev.Ranged() && !prev.Locked {
		pb := *prev
		if end := pb.End() + delta; end > pb.Position {
			pa := pb
			pa.EndPosition = &end
			cmd.Changes = append(cmd.Changes, placementDataChange(&pb, &pa))
		}
	}
	if next != nil && next.Ranged() && !next.Locked {
		nb := *next
		if start := nb.Position + delta; start < nb.End() {
			na := nb
			na.Position = start
			cmd.Changes = append(cmd.Changes, placementDataChange(&nb, &na))
		}
	}
	return e.hist.Execute(cmd)
}

func (e *Editor) trackNeighbours(id string, track int) (prev, next *model.Placement) {
	self, ok := e.db.FindPlacement(id)
	if !ok {
		return nil, nil
	}
	for i := range e.db.Placements {
		p := &e.db.Placements[i]
		if p.Track != track || p.ID == id {
			continue
		}
		if p.End() <= self.Position {
			if prev == nil || p.End() > prev.End() {
				prev = p
			}
		} else if p.Position >= self.End() {
			if next == nil || p.Position < next.Position {
				next = p
			}
		}
	}
	return prev, next
}

// finishBox resolves the rubber band to a selection: every placement whose
// extent intersects the box's position interval on a track inside the box's
// track interval. Additive keeps the existing selection.
func (e *Editor) finishBox(x, y float64) {
	b := e.box
	e.box = nil
	b.CurX, b.CurY = x, y
	x0, y0, x1, y1 := b.rect()

	posMin := e.View.ToTimeline(x0)
	posMax := e.View.ToTimeline(x1)
	trackMin := e.View.TrackFromY(y0)
	trackMax := e.View.TrackFromY(y1)

	if !b.Additive {
		e.SelectedPlacements = map[string]bool{}
	}
	for _, p := range e.db.Placements {
		if p.Track < trackMin || p.Track > trackMax {
			continue
		}
		if p.End() < posMin || p.Position > posMax {
			continue
		}
		e.SelectedPlacements[p.ID] = true
	}
}
