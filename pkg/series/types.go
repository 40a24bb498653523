// Package series parses BLS period-coded observations into period-indexed
// numeric series and assembles several series into one aligned table.
package series

// Observation is one data point as returned by the BLS API.
type Observation struct {
	Year       string `json:"year"`
	Period     string `json:"period"`
	PeriodName string `json:"periodName,omitempty"`
	Value      string `json:"value"`
}

// RawSeries is one series from a BLS response. After pagination the same
// type carries the merged observations of every physical request.
type RawSeries struct {
	SeriesID string        `json:"seriesID"`
	Data     []Observation `json:"data"`
}

// RawPoint is a parsed period with its value still in wire form.
type RawPoint struct {
	Period Period
	Value  string
}

// Parsed is the output of Parse: points in the order the API returned them.
type Parsed struct {
	SeriesID string
	Points   []RawPoint
}

// Point is a single numeric observation.
type Point struct {
	Period Period  `json:"period"`
	Value  float64 `json:"value"`
}

// Series is a numeric series sorted ascending by period.
type Series struct {
	SeriesID string  `json:"series_id"`
	Points   []Point `json:"points"`
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Points) }

// Values returns the values in period order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}
