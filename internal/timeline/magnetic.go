package timeline

import (
	"math"
	"sort"

	"aethel-cli/internal/model"
	"aethel-cli/internal/store"
)

type interval struct {
	start, end float64
}

// ResolveMagnetic finds the position nearest desired on the target track
// where a placement of the given width fits without overlapping any other
// placement (minimum gap 0, i.e. touching is allowed). Placements whose ids
// appear in ignore (the dragged set) don't block. Distance ties prefer the
// earlier position.
func ResolveMagnetic(db *store.DB, track int, desired, width float64, ignore map[string]bool) float64 {
	if width < 0 {
		width = 0
	}

	var blocks []interval
	for _, p := range db.PlacementsOnTrack(track) {
		if ignore[p.ID] {
			continue
		}
		blocks = append(blocks, interval{start: p.Position, end: p.End()})
	}
	if len(blocks) == 0 {
		return desired
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].start < blocks[j].start })
	blocks = mergeIntervals(blocks)

	if fits(blocks, desired, width) {
		return desired
	}

	// Candidate landings: snug against each blocking edge, clamped into
	// whichever free gap actually fits the width.
	var candidates []float64
	for _, b := range blocks {
		// Before this block: right-aligned against its start.
		left := b.start - width
		if fits(blocks, left, width) {
			candidates = append(candidates, left)
		}
		// After this block: left-aligned against its end.
		if fits(blocks, b.end, width) {
			candidates = append(candidates, b.end)
		}
	}
	if len(candidates) == 0 {
		// Track is fully packed for this width: land after the last block.
		return blocks[len(blocks)-1].end
	}

	best := candidates[0]
	bestDist := math.Abs(best - desired)
	for _, c := range candidates[1:] {
		d := math.Abs(c - desired)
		if d < bestDist || (d == bestDist && c < best) {
			best = c
			bestDist = d
		}
	}
	return best
}

// fits reports whether [pos, pos+width] overlaps no blocking interval.
// Zero-width overlap at interval edges is allowed (minimum gap 0).
func fits(blocks []interval, pos, width float64) bool {
	end := pos + width
	for _, b := range blocks {
		if pointOverlap(pos, end, b) {
			return false
		}
	}
	return true
}

func pointOverlap(start, end float64, b interval) bool {
	if start == end {
		// Point placements collide when strictly inside a block, or when
		// sitting exactly on a point block.
		if b.start == b.end {
			return start == b.start
		}
		return start > b.start && start < b.end
	}
	if b.start == b.end {
		return b.start > start && b.start < end
	}
	return start < b.end && end > b.start
}

func mergeIntervals(xs []interval) []interval {
	if len(xs) == 0 {
		return xs
	}
	out := []interval{xs[0]}
	for _, x := range xs[1:] {
		last := &out[len(out)-1]
		if x.start < last.end {
			if x.end > last.end {
				last.end = x.end
			}
			continue
		}
		out = append(out, x)
	}
	return out
}

// SplitHalves computes the two halves of splitting a ranged placement at a
// point. The first half keeps the original id; the second half is returned
// without an id (the operations layer mints one). A mutation payload stays on
// the first half only: its anchor is the original start position, which the
// first half keeps, and duplicating it would apply the change twice. Returns
// false when the placement is not ranged or at is outside (start, end).
func SplitHalves(p model.Placement, at float64) (first, second model.Placement, ok bool) {
	if !p.Ranged() {
		return model.Placement{}, model.Placement{}, false
	}
	start, end := p.Position, *p.EndPosition
	if at <= start || at >= end {
		return model.Placement{}, model.Placement{}, false
	}
	first = p
	fe := at
	first.EndPosition = &fe

	second = p
	second.ID = ""
	second.Position = at
	se := end
	second.EndPosition = &se
	second.Mutation = nil
	return first, second, true
}
