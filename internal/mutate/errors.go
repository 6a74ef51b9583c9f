package mutate

import (
	"errors"
	"fmt"
)

// NotFoundError: a referenced entity does not exist. Raised at command
// construction, before anything is pushed to history. Unexpected; surfaces
// to the caller.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// LockedError: the placement or track is locked. Frequent and
// user-recoverable; the editor treats it as a silent no-op.
type LockedError struct {
	Kind string
	ID   string
}

func (e LockedError) Error() string {
	return fmt.Sprintf("%s is locked: %s", e.Kind, e.ID)
}

// InvalidRangeError: the operation would produce a zero- or negative-width
// range. User-recoverable; silent no-op at the editor.
type InvalidRangeError struct {
	Start float64
	End   float64
}

func (e InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range [%g, %g)", e.Start, e.End)
}

// InvalidReparentError: the drop target is the dragged object itself, one of
// its descendants, or the move is a no-op.
type InvalidReparentError struct {
	ObjectID string
	TargetID string
	Reason   string
}

func (e InvalidReparentError) Error() string {
	return fmt.Sprintf("cannot reparent %s under %s: %s", e.ObjectID, e.TargetID, e.Reason)
}

// ErrDuplicateCreation guards the one-creation-per-object rule. The model
// does not hard-enforce uniqueness, so the operations layer does.
var ErrDuplicateCreation = errors.New("object already has a creation placement")

var ErrMissingMutationPayload = errors.New("mutation placement requires a payload")

// IsRecoverable reports whether err is one of the frequent, user-recoverable
// interaction errors (locked entity, invalid range, invalid reparent) that
// the editor swallows as a no-op.
func IsRecoverable(err error) bool {
	var locked LockedError
	var rng InvalidRangeError
	var rep InvalidReparentError
	return errors.As(err, &locked) || errors.As(err, &rng) || errors.As(err, &rep)
}
