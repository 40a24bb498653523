package series

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptySeries is matched by EmptySeriesError.
	ErrEmptySeries = errors.New("no data received")

	// ErrUnknownPeriod is matched by PeriodError.
	ErrUnknownPeriod = errors.New("unknown period format")

	// ErrDuplicatePeriod indicates a series carries two values for one period.
	ErrDuplicatePeriod = errors.New("duplicate period")

	// ErrInvalidValue is matched by ValueError.
	ErrInvalidValue = errors.New("invalid value")
)

// EmptySeriesError names the series that returned zero observations.
type EmptySeriesError struct {
	SeriesIDs []string
}

// Error implements the error interface.
func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("no data received for series [%s]: are your parameters correct?",
		strings.Join(e.SeriesIDs, ", "))
}

// Is reports whether target is ErrEmptySeries.
func (e *EmptySeriesError) Is(target error) bool {
	return target == ErrEmptySeries
}

// PeriodError reports a period code the parser does not understand.
type PeriodError struct {
	SeriesID string
	Year     string
	Period   string
	Reason   string
}

// Error implements the error interface.
func (e *PeriodError) Error() string {
	msg := fmt.Sprintf("unknown period format %q", e.Period)
	if e.Year != "" {
		msg += fmt.Sprintf(" (year %q)", e.Year)
	}
	if e.SeriesID != "" {
		msg += " in series " + e.SeriesID
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Is reports whether target is ErrUnknownPeriod.
func (e *PeriodError) Is(target error) bool {
	return target == ErrUnknownPeriod
}

// ValueError reports an observation value that is not a number.
type ValueError struct {
	SeriesID string
	Period   Period
	Value    string
	Err      error
}

// Error implements the error interface.
func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s in series %s: %v", e.Value, e.Period, e.SeriesID, e.Err)
}

// Is reports whether target is ErrInvalidValue.
func (e *ValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

// Unwrap returns the underlying conversion error.
func (e *ValueError) Unwrap() error {
	return e.Err
}
