package history

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyRange is returned when a window holds no revision to average over,
	// e.g. a month entirely before the first revision.
	ErrEmptyRange = errors.New("no revisions in range")

	// ErrDegenerateRange is returned when the covered width of a window is not positive.
	ErrDegenerateRange = errors.New("degenerate range")

	// ErrEmptyHistory is returned when a history has no revisions at all.
	ErrEmptyHistory = errors.New("history has no revisions")
)

// RangeError reports a failed average over [Start, End) for one title.
// Unwraps to ErrEmptyRange or ErrDegenerateRange.
type RangeError struct {
	Title string
	Start time.Time
	End   time.Time
	Err   error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: %v [%s, %s)", e.Title, e.Err,
		e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

func (e *RangeError) Unwrap() error {
	return e.Err
}
