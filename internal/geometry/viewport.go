// Package geometry owns the affine map between screen pixels (or terminal
// cells) and timeline coordinates, plus tree drop-position resolution. It is
// pure math: no store access, no side effects, so drag previews can project
// candidate positions without touching committed state.
package geometry

import "math"

const (
	MinZoom = 0.25
	MaxZoom = 64
)

// Viewport describes the visible slice of the timeline.
//
//	timelinePos = visibleMin + (screenX - trackLabelWidth)/trackAreaWidth * visibleRange
//	visibleRange = totalRange / zoom
//	visibleMin   = boundsMin + scrollOffset
type Viewport struct {
	BoundsMin float64
	BoundsMax float64

	Zoom         float64
	ScrollOffset float64

	TrackLabelWidth float64
	TrackAreaWidth  float64

	TracksTop   float64
	TrackHeight float64
}

func NewViewport(boundsMin, boundsMax float64) Viewport {
	return Viewport{
		BoundsMin:   boundsMin,
		BoundsMax:   boundsMax,
		Zoom:        1,
		TrackHeight: 1,
	}
}

func (v Viewport) TotalRange() float64 {
	return v.BoundsMax - v.BoundsMin
}

func (v Viewport) VisibleRange() float64 {
	z := v.Zoom
	if z <= 0 {
		z = 1
	}
	return v.TotalRange() / z
}

func (v Viewport) VisibleMin() float64 {
	return v.BoundsMin + v.ScrollOffset
}

func (v Viewport) VisibleMax() float64 {
	return v.VisibleMin() + v.VisibleRange()
}

// ToTimeline converts a screen X to a timeline position (the inverse
// transform used by box selection and cursor placement).
func (v Viewport) ToTimeline(screenX float64) float64 {
	if v.TrackAreaWidth <= 0 {
		return v.VisibleMin()
	}
	frac := (screenX - v.TrackLabelWidth) / v.TrackAreaWidth
	return v.VisibleMin() + frac*v.VisibleRange()
}

// ToScreenX converts a timeline position to a screen X.
func (v Viewport) ToScreenX(pos float64) float64 {
	vr := v.VisibleRange()
	if vr == 0 {
		return v.TrackLabelWidth
	}
	frac := (pos - v.VisibleMin()) / vr
	return v.TrackLabelWidth + frac*v.TrackAreaWidth
}

// TrackFromY resolves a screen Y to a track index. Negative means above the
// track area.
func (v Viewport) TrackFromY(screenY float64) int {
	h := v.TrackHeight
	if h <= 0 {
		h = 1
	}
	return int(math.Floor((screenY - v.TracksTop) / h))
}

// TrackTopY returns the screen Y of a track's top edge.
func (v Viewport) TrackTopY(track int) float64 {
	h := v.TrackHeight
	if h <= 0 {
		h = 1
	}
	return v.TracksTop + float64(track)*h
}

// ClampZoom bounds zoom to the valid range.
func ClampZoom(z float64) float64 {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// clampScroll keeps the visible window inside the timeline bounds.
func (v Viewport) clampScroll(offset float64) float64 {
	maxOffset := v.TotalRange() - v.VisibleRange()
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > maxOffset {
		return maxOffset
	}
	return offset
}

// ScrollTo sets the scroll offset, clamped.
func (v Viewport) ScrollTo(offset float64) Viewport {
	v.ScrollOffset = v.clampScroll(offset)
	return v
}

// ScrollBy shifts the visible window by a timeline-position delta, clamped.
func (v Viewport) ScrollBy(delta float64) Viewport {
	return v.ScrollTo(v.ScrollOffset + delta)
}

// ZoomAt changes zoom while keeping anchorPos at the same screen X: the
// scroll offset is recomputed so the anchor's visible-window fraction is
// preserved across the zoom change.
func (v Viewport) ZoomAt(newZoom, anchorPos float64) Viewport {
	newZoom = ClampZoom(newZoom)
	oldRange := v.VisibleRange()
	if oldRange <= 0 {
		v.Zoom = newZoom
		return v
	}
	frac := (anchorPos - v.VisibleMin()) / oldRange

	v.Zoom = newZoom
	newRange := v.VisibleRange()
	v.ScrollOffset = v.clampScroll(anchorPos - frac*newRange - v.BoundsMin)
	return v
}
