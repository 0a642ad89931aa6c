package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalid is matched by every *ValidationError
	ErrInvalid = errors.New("validation failed")

	// ErrOverlap is matched by every *OverlapError
	ErrOverlap = errors.New("time log overlaps another time log of the same employee")
)

// ValidationError reports a constraint violation on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// OverlapError is returned when a time log intersects another log of the
// same employee. Row is the 1-based position of the offending log in the
// timesheet being saved.
type OverlapError struct {
	Employee    string
	Row         int
	FromTime    time.Time
	ToTime      time.Time
	Timesheet   string // sheet holding the conflicting log, empty if unsaved
	ConflictRow int
}

func (e *OverlapError) Error() string {
	where := "this timesheet"
	if e.Timesheet != "" {
		where = e.Timesheet
	}
	return fmt.Sprintf("row %d: %s - %s for employee %s overlaps with row %d of %s",
		e.Row,
		e.FromTime.Format("2006-01-02 15:04:05"),
		e.ToTime.Format("2006-01-02 15:04:05"),
		e.Employee,
		e.ConflictRow,
		where,
	)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlap
}
