package series

import (
	"fmt"
	"strconv"
	"time"
)

// Frequency is the granularity family of a BLS period code.
type Frequency int

const (
	// Annual periods are coded A01.
	Annual Frequency = iota + 1

	// Quarterly periods are coded Q01..Q04.
	Quarterly

	// Monthly periods are coded M01..M12, with M13 as the annual average.
	Monthly
)

// AnnualAverageCode is the monthly-series row holding the annual average.
const AnnualAverageCode = "M13"

// String returns the frequency name.
func (f Frequency) String() string {
	switch f {
	case Annual:
		return "annual"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	default:
		return fmt.Sprintf("Frequency(%d)", int(f))
	}
}

// Code returns the leading letter BLS uses for the frequency.
func (f Frequency) Code() byte {
	switch f {
	case Annual:
		return 'A'
	case Quarterly:
		return 'Q'
	case Monthly:
		return 'M'
	default:
		return 0
	}
}

// Classify maps a period code to its frequency by its leading letter.
func Classify(code string) (Frequency, error) {
	if code == "" {
		return 0, &PeriodError{Period: code, Reason: "empty period code"}
	}
	switch code[0] {
	case 'A':
		return Annual, nil
	case 'Q':
		return Quarterly, nil
	case 'M':
		return Monthly, nil
	default:
		return 0, &PeriodError{Period: code}
	}
}

// Period is a point on a period index: a year, a year and quarter, or a
// year and month.
type Period struct {
	Year      int
	Frequency Frequency
	// Sub is the quarter (1-4) or month (1-12); 0 for annual periods.
	Sub int
}

// NewPeriod builds a Period from a BLS year and period code of the given
// frequency.
func NewPeriod(freq Frequency, year, code string) (Period, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Period{}, &PeriodError{Year: year, Period: code, Reason: "year is not an integer"}
	}

	if len(code) == 0 || code[0] != freq.Code() {
		return Period{}, &PeriodError{Year: year, Period: code,
			Reason: fmt.Sprintf("expected a %s period", freq)}
	}

	switch freq {
	case Annual:
		return Period{Year: y, Frequency: Annual}, nil

	case Quarterly:
		// Q0<n>
		if len(code) != 3 || code[1] != '0' || code[2] < '1' || code[2] > '4' {
			return Period{}, &PeriodError{Year: year, Period: code, Reason: "quarter must be Q01..Q04"}
		}
		return Period{Year: y, Frequency: Quarterly, Sub: int(code[2] - '0')}, nil

	case Monthly:
		if len(code) != 3 {
			return Period{}, &PeriodError{Year: year, Period: code, Reason: "month must be M01..M12"}
		}
		m, err := strconv.Atoi(code[1:])
		if err != nil || m < 1 || m > 12 {
			return Period{}, &PeriodError{Year: year, Period: code, Reason: "month must be M01..M12"}
		}
		return Period{Year: y, Frequency: Monthly, Sub: m}, nil

	default:
		return Period{}, &PeriodError{Year: year, Period: code}
	}
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	month := time.January
	switch p.Frequency {
	case Quarterly:
		month = time.Month((p.Sub-1)*3 + 1)
	case Monthly:
		month = time.Month(p.Sub)
	}
	return time.Date(p.Year, month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first instant after the period.
func (p Period) End() time.Time {
	switch p.Frequency {
	case Quarterly:
		return p.Start().AddDate(0, 3, 0)
	case Monthly:
		return p.Start().AddDate(0, 1, 0)
	default:
		return p.Start().AddDate(1, 0, 0)
	}
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(p.Start()) && t.Before(p.End())
}

// Before orders periods by start, then by frequency so that a year sorts
// ahead of its first quarter and first month.
func (p Period) Before(o Period) bool {
	a, b := p.Start(), o.Start()
	if !a.Equal(b) {
		return a.Before(b)
	}
	return p.Frequency < o.Frequency
}

// String formats the period as 2020, 2020Q3 or 2020-07.
func (p Period) String() string {
	switch p.Frequency {
	case Quarterly:
		return fmt.Sprintf("%dQ%d", p.Year, p.Sub)
	case Monthly:
		return fmt.Sprintf("%d-%02d", p.Year, p.Sub)
	default:
		return strconv.Itoa(p.Year)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
