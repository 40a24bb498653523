package series

import (
	"errors"
	"strings"
	"testing"
)

func monthlyYear(year string, withAverage bool) []Observation {
	var obs []Observation
	if withAverage {
		obs = append(obs, Observation{Year: year, Period: "M13", Value: "4.0"})
	}
	for _, code := range []string{"M12", "M11", "M10", "M09", "M08", "M07", "M06", "M05", "M04", "M03", "M02", "M01"} {
		obs = append(obs, Observation{Year: year, Period: code, Value: "4.0"})
	}
	return obs
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(RawSeries{SeriesID: "ABC"})
	if !errors.Is(err, ErrEmptySeries) {
		t.Fatalf("Parse() error = %v, want ErrEmptySeries", err)
	}
	if !strings.Contains(err.Error(), "ABC") {
		t.Errorf("error %q should name the series", err.Error())
	}
}

func TestParse_MonthlyDropsAnnualAverage(t *testing.T) {
	raw := RawSeries{SeriesID: "CUUR0000SA0", Data: monthlyYear("2019", true)}

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}

	if len(parsed.Points) != 12 {
		t.Fatalf("Parse() returned %d points, want 12", len(parsed.Points))
	}
	for _, p := range parsed.Points {
		if p.Period.Frequency != Monthly || p.Period.Sub < 1 || p.Period.Sub > 12 {
			t.Errorf("unexpected period %+v", p.Period)
		}
	}
	// Encounter order: the API lists December first.
	if parsed.Points[0].Period.Sub != 12 {
		t.Errorf("first point = %s, want 2019-12", parsed.Points[0].Period)
	}
}

func TestParse_FirstRowAnnualAverage(t *testing.T) {
	raw := RawSeries{SeriesID: "X", Data: []Observation{
		{Year: "2019", Period: "M13", Value: "1"},
		{Year: "2019", Period: "M01", Value: "2"},
	}}

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(parsed.Points) != 1 || parsed.Points[0].Value != "2" {
		t.Errorf("Parse() = %+v, want the single January row", parsed.Points)
	}
}

func TestParse_Quarterly(t *testing.T) {
	raw := RawSeries{SeriesID: "PRS85006092", Data: []Observation{
		{Year: "2020", Period: "Q04", Value: "1.1"},
		{Year: "2020", Period: "Q03", Value: "2.2"},
	}}

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	want := []Period{
		{Year: 2020, Frequency: Quarterly, Sub: 4},
		{Year: 2020, Frequency: Quarterly, Sub: 3},
	}
	for i, p := range parsed.Points {
		if p.Period != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, p.Period, want[i])
		}
	}
}

func TestParse_Annual(t *testing.T) {
	raw := RawSeries{SeriesID: "A", Data: []Observation{
		{Year: "2021", Period: "A01", Value: "10"},
		{Year: "2020", Period: "A01", Value: "9"},
	}}

	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if parsed.Points[1].Period != (Period{Year: 2020, Frequency: Annual}) {
		t.Errorf("second point = %+v, want annual 2020", parsed.Points[1].Period)
	}
}

func TestParse_UnknownPeriod(t *testing.T) {
	raw := RawSeries{SeriesID: "SEMI", Data: []Observation{
		{Year: "2020", Period: "S01", Value: "1"},
	}}

	_, err := Parse(raw)
	if !errors.Is(err, ErrUnknownPeriod) {
		t.Fatalf("Parse() error = %v, want ErrUnknownPeriod", err)
	}

	var pe *PeriodError
	if !errors.As(err, &pe) {
		t.Fatalf("error should be a *PeriodError, got %T", err)
	}
	if pe.Period != "S01" || pe.SeriesID != "SEMI" {
		t.Errorf("PeriodError = %+v, want period S01 in series SEMI", pe)
	}
}

func TestParse_MixedFamilies(t *testing.T) {
	raw := RawSeries{SeriesID: "MIX", Data: []Observation{
		{Year: "2020", Period: "M01", Value: "1"},
		{Year: "2020", Period: "Q01", Value: "1"},
	}}

	if _, err := Parse(raw); !errors.Is(err, ErrUnknownPeriod) {
		t.Errorf("Parse() error = %v, want ErrUnknownPeriod", err)
	}
}
