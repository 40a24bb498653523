package series

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Policy decides what happens when some requested series return no data.
type Policy string

const (
	// PolicyRaise fails the whole request when any series is empty.
	PolicyRaise Policy = "raise"

	// PolicyIgnore drops empty series with a warning, provided at least one
	// series has data and more than one series was requested.
	PolicyIgnore Policy = "ignore"
)

// ParsePolicy converts "raise" or "ignore" into a Policy.
// An empty string selects PolicyRaise.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyRaise:
		return PolicyRaise, nil
	case PolicyIgnore:
		return PolicyIgnore, nil
	default:
		return "", fmt.Errorf("invalid errors policy %q (must be %q or %q)", s, PolicyRaise, PolicyIgnore)
	}
}

// AssembleOptions controls Assemble.
type AssembleOptions struct {
	// Requested is the number of series ids in the original query.
	Requested int

	// Single marks a query for one bare series id. Empty data is always
	// fatal for such queries.
	Single bool

	Policy Policy

	// Logger receives the dropped-series warning. Defaults to the global
	// zerolog logger.
	Logger *zerolog.Logger
}

// Table is a set of series aligned on the sorted union of their periods.
// Cells with no observation are NaN.
type Table struct {
	Index   []Period
	Columns []string

	// Dropped lists series ids that returned no data under PolicyIgnore.
	Dropped []string

	data map[string][]float64
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Index) }

// Column returns the values of a series aligned to Index.
func (t *Table) Column(seriesID string) ([]float64, bool) {
	col, ok := t.data[seriesID]
	return col, ok
}

// Value returns a single cell.
func (t *Table) Value(seriesID string, row int) float64 {
	col, ok := t.data[seriesID]
	if !ok || row < 0 || row >= len(col) {
		return math.NaN()
	}
	return col[row]
}

// Series returns one column as a sorted series, skipping empty cells.
func (t *Table) Series(seriesID string) (Series, bool) {
	col, ok := t.data[seriesID]
	if !ok {
		return Series{}, false
	}
	s := Series{SeriesID: seriesID}
	for i, v := range col {
		if math.IsNaN(v) {
			continue
		}
		s.Points = append(s.Points, Point{Period: t.Index[i], Value: v})
	}
	return s, true
}

// Table returns s as a one-column table.
func (s Series) Table() *Table {
	t := &Table{
		Index:   make([]Period, len(s.Points)),
		Columns: []string{s.SeriesID},
		data:    map[string][]float64{s.SeriesID: s.Values()},
	}
	for i, p := range s.Points {
		t.Index[i] = p.Period
	}
	return t
}

// Assemble parses every non-empty series in results and aligns them into
// one table sorted ascending by period.
func Assemble(results []RawSeries, opts AssembleOptions) (*Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = &log.Logger
	}

	valid := make([]RawSeries, 0, len(results))
	var invalid []string
	for _, r := range results {
		if len(r.Data) == 0 {
			invalid = append(invalid, r.SeriesID)
			continue
		}
		valid = append(valid, r)
	}

	if len(invalid) > 0 {
		err := &EmptySeriesError{SeriesIDs: invalid}
		if opts.Single || len(invalid) == opts.Requested || opts.Policy != PolicyIgnore {
			return nil, err
		}
		logger.Warn().
			Strs("series_ids", invalid).
			Msg(err.Error())
	}

	t := &Table{
		Dropped: invalid,
		data:    make(map[string][]float64, len(valid)),
	}

	columns := make(map[string]map[Period]float64, len(valid))
	seen := make(map[Period]struct{})
	for _, r := range valid {
		parsed, err := Parse(r)
		if err != nil {
			return nil, err
		}
		values, err := toFloats(parsed)
		if err != nil {
			return nil, err
		}
		if _, dup := columns[r.SeriesID]; !dup {
			t.Columns = append(t.Columns, r.SeriesID)
		}
		columns[r.SeriesID] = values
		for p := range values {
			seen[p] = struct{}{}
		}
	}

	t.Index = make([]Period, 0, len(seen))
	for p := range seen {
		t.Index = append(t.Index, p)
	}
	sort.Slice(t.Index, func(i, j int) bool { return t.Index[i].Before(t.Index[j]) })

	for id, values := range columns {
		col := make([]float64, len(t.Index))
		for i, p := range t.Index {
			v, ok := values[p]
			if !ok {
				v = math.NaN()
			}
			col[i] = v
		}
		t.data[id] = col
	}

	return t, nil
}

func toFloats(p Parsed) (map[Period]float64, error) {
	out := make(map[Period]float64, len(p.Points))
	for _, pt := range p.Points {
		if _, dup := out[pt.Period]; dup {
			return nil, fmt.Errorf("%w %s in series %s", ErrDuplicatePeriod, pt.Period, p.SeriesID)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(pt.Value), 64)
		if err != nil {
			return nil, &ValueError{SeriesID: p.SeriesID, Period: pt.Period, Value: pt.Value, Err: err}
		}
		out[pt.Period] = v
	}
	return out, nil
}
