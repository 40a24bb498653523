package client

import (
	"errors"
	"testing"

	"github.com/Sternrassler/bls-client/pkg/pagination"
)

func TestResolveYears(t *testing.T) {
	const thisYear = 2024

	tests := []struct {
		name    string
		start   int
		end     int
		keyed   bool
		want    pagination.Window
		wantErr bool
	}{
		{name: "nothing set unregistered", want: pagination.Window{Start: 2015, End: 2024}},
		{name: "nothing set registered", keyed: true, want: pagination.Window{Start: 2005, End: 2024}},
		{name: "start only unregistered", start: 2010, want: pagination.Window{Start: 2010, End: 2019}},
		{name: "start only unregistered near present", start: 2020, want: pagination.Window{Start: 2020, End: 2024}},
		{name: "start only registered", start: 1990, keyed: true, want: pagination.Window{Start: 1990, End: 2024}},
		{name: "end only unregistered", end: 2000, want: pagination.Window{Start: 1991, End: 2000}},
		{name: "end only registered", end: 2000, keyed: true, want: pagination.Window{Start: 1981, End: 2000}},
		{name: "future end clamps", start: 2020, end: 2030, want: pagination.Window{Start: 2020, End: 2024}},
		{name: "both set within limit", start: 2015, end: 2020, want: pagination.Window{Start: 2015, End: 2020}},
		{name: "ten year span unregistered", start: 2010, end: 2020, wantErr: true},
		{name: "nine year span unregistered", start: 2011, end: 2020, want: pagination.Window{Start: 2011, End: 2020}},
		{name: "long span registered", start: 1960, end: 2020, keyed: true, want: pagination.Window{Start: 1960, End: 2020}},
		{name: "future end long span unregistered", start: 2000, end: 2030, want: pagination.Window{Start: 2000, End: 2009}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveYears(tt.start, tt.end, tt.keyed, thisYear)

			if tt.wantErr {
				if !errors.Is(err, ErrSpanTooLarge) {
					t.Fatalf("resolveYears() error = %v, want ErrSpanTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveYears() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("resolveYears() = %v, want %v", got, tt.want)
			}
		})
	}
}
