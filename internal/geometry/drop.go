package geometry

// DropKind is the disposition of a tree reparent drop.
type DropKind int

const (
	DropBefore DropKind = iota
	DropAfter
	DropInside
)

func (d DropKind) String() string {
	switch d {
	case DropBefore:
		return "before"
	case DropAfter:
		return "after"
	case DropInside:
		return "inside"
	default:
		return "unknown"
	}
}

// ResolveDrop determines where a dragged tree node lands relative to the
// target row from the cursor's vertical fraction within that row. Folders
// always accept "inside"; other targets split at the row midline.
func ResolveDrop(targetIsFolder bool, yFraction float64) DropKind {
	if targetIsFolder {
		return DropInside
	}
	if yFraction < 0.5 {
		return DropBefore
	}
	return DropAfter
}
