package client

import (
	"fmt"

	"github.com/Sternrassler/bls-client/pkg/pagination"
)

// Year span ceilings of a single BLS request.
const (
	publicMaxSpan     = 9
	registeredMaxSpan = 19
)

// Range selects the years of a query. Zero years are unset. An empty Key
// falls back to the client's credentials.
type Range struct {
	StartYear int
	EndYear   int
	Key       string
}

// Query is a logical request for one or more series.
type Query struct {
	SeriesIDs []string
	Range
}

// resolveYears fills in unset years and validates the span.
//
// An unset or future end year becomes the current year, except that an
// unregistered query with a start year is capped at ten years from it.
// An unset start year is the end year minus 9 (unregistered) or 19
// (registered). Unregistered queries cannot span ten years or more.
func resolveYears(start, end int, keyed bool, thisYear int) (pagination.Window, error) {
	if end == 0 || end > thisYear {
		if start == 0 || keyed {
			end = thisYear
		} else {
			end = min(start+publicMaxSpan, thisYear)
		}
	}

	if start == 0 {
		if keyed {
			start = end - registeredMaxSpan
		} else {
			start = end - publicMaxSpan
		}
	}

	if !keyed && end-start > publicMaxSpan {
		return pagination.Window{}, fmt.Errorf("%w (requested %d-%d)", ErrSpanTooLarge, start, end)
	}

	return pagination.Window{Start: start, End: end}, nil
}
