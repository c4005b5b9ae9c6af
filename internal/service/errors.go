package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/studio-show-scheduling/internal/planner"
)

// ErrInvalidTimeRange is returned when an end time is not after its start.
var ErrInvalidTimeRange = errors.New("end time must be after start time")

// ValidationFailedError is returned by publishSchedule when the plan
// document does not validate.  It carries the full error list so a caller
// can present every issue at once.
type ValidationFailedError struct {
	Errors []planner.ValidationError
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("plan validation failed with %d error(s)", len(e.Errors))
}

// InvalidStateTransitionError reports a status-machine violation, e.g.
// publishing a schedule that is already published.
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("cannot transition schedule from %s to %s", e.From, e.To)
}

// NotFoundError reports a referenced entity that does not resolve to a live
// row, including during assignment orchestration.  Kind is one of the
// model.Kind* constants and Code the external identifier the caller sent.
type NotFoundError struct {
	Kind string
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Code)
}
