package scheduling

import (
	"errors"
	"fmt"
)

// ErrSlotConflict is returned when a requested (doctor, date, time) slot is
// already held by an active appointment, whether caught by the advisory
// conflict check or by the unique index on insert.
var ErrSlotConflict = errors.New("slot already booked")

// ErrNotFound is returned when the referenced appointment or doctor does
// not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed booking input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// TransitionReason explains why a lifecycle change was refused.
type TransitionReason string

const (
	ReasonTooLate         TransitionReason = "too-late"
	ReasonAlreadyTerminal TransitionReason = "already-terminal"
	ReasonNotAllowed      TransitionReason = "not-allowed"
)

// IneligibleTransitionError reports a cancellation, reschedule or status
// change refused by the appointment lifecycle rules.
type IneligibleTransitionError struct {
	Op     string
	Reason TransitionReason
}

func (e *IneligibleTransitionError) Error() string {
	return fmt.Sprintf("%s not permitted: %s", e.Op, e.Reason)
}
