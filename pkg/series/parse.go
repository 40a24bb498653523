package series

import "errors"

// Parse converts one series' observations into period-indexed points.
//
// The frequency is taken from the first observation's period code and every
// other observation must belong to the same family. Monthly M13 rows (the
// annual average) are dropped. Points keep the order the API returned them
// in; sorting happens in Assemble.
func Parse(raw RawSeries) (Parsed, error) {
	if len(raw.Data) == 0 {
		return Parsed{}, &EmptySeriesError{SeriesIDs: []string{raw.SeriesID}}
	}

	freq, err := Classify(raw.Data[0].Period)
	if err != nil {
		return Parsed{}, withSeries(err, raw.SeriesID, raw.Data[0].Year)
	}

	out := Parsed{
		SeriesID: raw.SeriesID,
		Points:   make([]RawPoint, 0, len(raw.Data)),
	}
	for _, obs := range raw.Data {
		if freq == Monthly && obs.Period == AnnualAverageCode {
			continue
		}
		p, err := NewPeriod(freq, obs.Year, obs.Period)
		if err != nil {
			return Parsed{}, withSeries(err, raw.SeriesID, obs.Year)
		}
		out.Points = append(out.Points, RawPoint{Period: p, Value: obs.Value})
	}

	return out, nil
}

func withSeries(err error, seriesID, year string) error {
	var pe *PeriodError
	if errors.As(err, &pe) {
		pe.SeriesID = seriesID
		if pe.Year == "" {
			pe.Year = year
		}
	}
	return err
}
