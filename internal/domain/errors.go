package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDayMismatch is returned when the three tables of an aggregator do not
	// share the identical day sequence.
	ErrDayMismatch = errors.New("series day sequences differ")

	// ErrRowLength is returned when a location row does not have one count per day.
	ErrRowLength = errors.New("row length does not match day count")

	// ErrUnorderedDays is returned when a day sequence is not strictly ascending.
	ErrUnorderedDays = errors.New("days are not strictly ascending")
)

// DateFormatError reports a source day label that could not be parsed.
type DateFormatError struct {
	Label string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date label %q: %v", e.Label, e.Err)
}

func (e *DateFormatError) Unwrap() error { return e.Err }

// UnknownDateError reports a query day that is malformed or not part of the
// loaded day sequence.
type UnknownDateError struct {
	Day    string
	First  string
	Last   string
	Reason string
}

func (e *UnknownDateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unknown date %q: %s", e.Day, e.Reason)
	}
	if e.First == "" {
		return fmt.Sprintf("unknown date %q: no days loaded", e.Day)
	}
	return fmt.Sprintf("unknown date %q: loaded range is %s to %s", e.Day, e.First, e.Last)
}

// UnknownTableError reports a table selector other than confirmed, deaths,
// or recovered.
type UnknownTableError struct {
	Table string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q: want confirmed, deaths, or recovered", e.Table)
}
