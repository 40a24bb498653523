package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Year span limits of the BLS API.
const (
	// MultiWindowSpan is the span (end - start) at which a range is split.
	MultiWindowSpan = 20

	// firstWindowSpan is the end offset of the first window.
	firstWindowSpan = 18

	// windowStep is how far each later window's end advances.
	windowStep = 20
)

var blsPaginationWindows = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "bls_pagination_windows",
	Help:    "Number of physical requests issued per logical BLS query",
	Buckets: []float64{1, 2, 3, 4, 6, 8},
})

// Window is the inclusive year range of one physical request.
type Window struct {
	Start int
	End   int
}

// Span returns End - Start.
func (w Window) Span() int { return w.End - w.Start }

// String formats the window as start-end.
func (w Window) String() string { return fmt.Sprintf("%d-%d", w.Start, w.End) }

// Plan splits w into physical request windows. Ranges spanning fewer than
// MultiWindowSpan years are returned as a single window unchanged.
func Plan(w Window) []Window {
	if w.Span() < MultiWindowSpan {
		return []Window{w}
	}

	var windows []Window
	subStart, subEnd := w.Start, w.Start+firstWindowSpan
	for {
		windows = append(windows, Window{Start: subStart, End: subEnd})
		subStart, subEnd = subEnd+1, min(subEnd+windowStep, w.End)
		if subStart > w.End {
			break
		}
	}
	return windows
}

// WindowFetcher performs one physical request.
type WindowFetcher interface {
	FetchWindow(ctx context.Context, seriesIDs []string, w Window, key string) ([]series.RawSeries, error)
}

// Fetcher drives a WindowFetcher across every window of a range.
type Fetcher struct {
	fetcher WindowFetcher
	logger  zerolog.Logger
}

// NewFetcher creates a sequential fetcher.
func NewFetcher(fetcher WindowFetcher, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchAll fetches every window of w in ascending order.
//
// A range that fits in one request returns the provider's series list
// untouched. Otherwise series are merged by id in first-seen order and
// their observations concatenated in window order.
func (f *Fetcher) FetchAll(ctx context.Context, seriesIDs []string, w Window, key string) ([]series.RawSeries, error) {
	start := time.Now()
	windows := Plan(w)
	blsPaginationWindows.Observe(float64(len(windows)))

	if len(windows) == 1 {
		return f.fetcher.FetchWindow(ctx, seriesIDs, windows[0], key)
	}

	f.logger.Debug().
		Stringer("range", w).
		Int("windows", len(windows)).
		Msg("Splitting request into windows")

	var order []string
	merged := make(map[string][]series.Observation)

	for i, win := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := f.fetcher.FetchWindow(ctx, seriesIDs, win, key)
		if err != nil {
			return nil, fmt.Errorf("window %s (%d/%d): %w", win, i+1, len(windows), err)
		}

		for _, r := range results {
			if _, ok := merged[r.SeriesID]; !ok {
				order = append(order, r.SeriesID)
				merged[r.SeriesID] = []series.Observation{}
			}
			merged[r.SeriesID] = append(merged[r.SeriesID], r.Data...)
		}
	}

	out := make([]series.RawSeries, 0, len(order))
	for _, id := range order {
		out = append(out, series.RawSeries{SeriesID: id, Data: merged[id]})
	}

	f.logger.Debug().
		Stringer("range", w).
		Int("windows", len(windows)).
		Int("series", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return out, nil
}
