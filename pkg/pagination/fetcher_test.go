package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/rs/zerolog"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name string
		in   Window
		want []Window
	}{
		{
			name: "single short window",
			in:   Window{Start: 2015, End: 2020},
			want: []Window{{2015, 2020}},
		},
		{
			name: "span 19 stays single",
			in:   Window{Start: 2000, End: 2019},
			want: []Window{{2000, 2019}},
		},
		{
			name: "span 20 splits",
			in:   Window{Start: 2000, End: 2020},
			want: []Window{{2000, 2018}, {2019, 2020}},
		},
		{
			name: "sixty years",
			in:   Window{Start: 1960, End: 2020},
			want: []Window{{1960, 1978}, {1979, 1998}, {1999, 2018}, {2019, 2020}},
		},
		{
			name: "exact multiple",
			in:   Window{Start: 1980, End: 2018},
			want: []Window{{1980, 1998}, {1999, 2018}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Plan(%s) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("window %d = %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPlan_CoversRangeWithoutGaps(t *testing.T) {
	for start := 1950; start < 1960; start++ {
		for end := start + MultiWindowSpan; end < start+80; end++ {
			windows := Plan(Window{Start: start, End: end})
			if windows[0].Start != start {
				t.Fatalf("Plan(%d-%d) starts at %d", start, end, windows[0].Start)
			}
			if last := windows[len(windows)-1]; last.End != end {
				t.Fatalf("Plan(%d-%d) ends at %d", start, end, last.End)
			}
			for i, w := range windows {
				if w.Span() >= MultiWindowSpan {
					t.Fatalf("Plan(%d-%d) window %s spans %d years", start, end, w, w.Span())
				}
				if i > 0 && w.Start != windows[i-1].End+1 {
					t.Fatalf("Plan(%d-%d) gap between %s and %s", start, end, windows[i-1], w)
				}
			}
		}
	}
}

// fakeFetcher returns two observations per series per window, tagged with
// the window's end and start years.
type fakeFetcher struct {
	calls  []Window
	failAt int
}

func (f *fakeFetcher) FetchWindow(_ context.Context, ids []string, w Window, _ string) ([]series.RawSeries, error) {
	f.calls = append(f.calls, w)
	if f.failAt > 0 && len(f.calls) == f.failAt {
		return nil, errors.New("boom")
	}
	out := make([]series.RawSeries, 0, len(ids))
	for _, id := range ids {
		out = append(out, series.RawSeries{
			SeriesID: id,
			Data: []series.Observation{
				{Year: fmt.Sprint(w.End), Period: "A01", Value: "1"},
				{Year: fmt.Sprint(w.Start), Period: "A01", Value: "1"},
			},
		})
	}
	return out, nil
}

func TestFetcher_FetchAll_MergesInCallOrder(t *testing.T) {
	fake := &fakeFetcher{}
	f := NewFetcher(fake, zerolog.Nop())

	got, err := f.FetchAll(context.Background(), []string{"A", "B"}, Window{Start: 1960, End: 2020}, "key")
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}

	if len(fake.calls) != 4 {
		t.Fatalf("issued %d calls, want 4", len(fake.calls))
	}
	for i := 1; i < len(fake.calls); i++ {
		if fake.calls[i].Start <= fake.calls[i-1].Start {
			t.Errorf("calls out of order: %v", fake.calls)
		}
	}

	if len(got) != 2 || got[0].SeriesID != "A" || got[1].SeriesID != "B" {
		t.Fatalf("FetchAll() series = %+v, want A then B", got)
	}

	wantYears := []string{"1978", "1960", "1998", "1979", "2018", "1999", "2020", "2019"}
	for _, s := range got {
		if len(s.Data) != len(wantYears) {
			t.Fatalf("series %s has %d observations, want %d", s.SeriesID, len(s.Data), len(wantYears))
		}
		for i, obs := range s.Data {
			if obs.Year != wantYears[i] {
				t.Errorf("series %s obs %d year = %s, want %s", s.SeriesID, i, obs.Year, wantYears[i])
			}
		}
	}
}

func TestFetcher_FetchAll_SingleWindowPassthrough(t *testing.T) {
	fake := &fakeFetcher{}
	f := NewFetcher(fake, zerolog.Nop())

	got, err := f.FetchAll(context.Background(), []string{"A"}, Window{Start: 2015, End: 2020}, "")
	if err != nil {
		t.Fatalf("FetchAll() unexpected error: %v", err)
	}
	if len(fake.calls) != 1 || fake.calls[0] != (Window{2015, 2020}) {
		t.Errorf("calls = %v, want [2015-2020]", fake.calls)
	}
	if len(got) != 1 || len(got[0].Data) != 2 {
		t.Errorf("FetchAll() = %+v", got)
	}
}

func TestFetcher_FetchAll_AbortsOnError(t *testing.T) {
	fake := &fakeFetcher{failAt: 2}
	f := NewFetcher(fake, zerolog.Nop())

	got, err := f.FetchAll(context.Background(), []string{"A"}, Window{Start: 1960, End: 2020}, "key")
	if err == nil {
		t.Fatal("FetchAll() expected error")
	}
	if got != nil {
		t.Errorf("FetchAll() returned partial data: %+v", got)
	}
	if len(fake.calls) != 2 {
		t.Errorf("issued %d calls after failure, want 2", len(fake.calls))
	}
}

func TestFetcher_FetchAll_ContextCancelled(t *testing.T) {
	fake := &fakeFetcher{}
	f := NewFetcher(fake, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.FetchAll(ctx, []string{"A"}, Window{Start: 1960, End: 2020}, "key")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("FetchAll() error = %v, want context.Canceled", err)
	}
	if len(fake.calls) != 0 {
		t.Errorf("issued %d calls with a cancelled context", len(fake.calls))
	}
}
