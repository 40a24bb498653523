package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/Sternrassler/bls-client/pkg/series"
	"github.com/spf13/cobra"
)

// Output formats of the series command.
const (
	formatCSV  = "csv"
	formatJSON = "json"
)

func newSeriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series SERIES_ID...",
		Short: "Print series as a table indexed by period",
		Long: `Fetch one or more series and print them as a table with one row per period
and one column per series, sorted ascending by period.

With a single series id an empty result is always an error. With several,
--errors=ignore drops empty series with a warning as long as one has data.`,
		Example: `  bls series LNS14000000 --start 2015 --end 2020
  bls series CUUR0000SA0 LNS14000000 --errors ignore --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runSeries,
	}

	cmd.Flags().StringVar(&a.format, "format", formatCSV, "output format: csv or json")

	return cmd
}

func newRawCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "raw SERIES_ID...",
		Short: "Print the merged API observations as JSON",
		Long: `Fetch the raw observations of one or more series without parsing them.
Observations keep the order the API returned them in, window after window
for long ranges.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runRaw,
	}
}

func (a *app) runSeries(cmd *cobra.Command, args []string) error {
	if a.format != formatCSV && a.format != formatJSON {
		return fmt.Errorf("unknown format %q (want csv or json)", a.format)
	}

	q := a.query(args)

	var table *series.Table
	if len(args) == 1 {
		s, err := a.client.FetchOne(cmd.Context(), args[0], q.Range)
		if err != nil {
			return err
		}
		table = s.Table()
	} else {
		t, err := a.client.FetchMany(cmd.Context(), q, a.cfg.Policy())
		if err != nil {
			return err
		}
		table = t
	}

	a.logger.Info().
		Int("rows", table.Len()).
		Strs("columns", table.Columns).
		Msg("Writing table")

	if a.format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), tableRecords(table))
	}
	return writeCSV(cmd.OutOrStdout(), table)
}

func (a *app) runRaw(cmd *cobra.Command, args []string) error {
	results, err := a.client.GetJSONSeries(cmd.Context(), a.query(args))
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), results)
}

// writeCSV writes a header of "period" and the series ids, then one row per
// period. Missing cells are left empty.
func writeCSV(w io.Writer, t *series.Table) error {
	cw := csv.NewWriter(w)

	header := append([]string{"period"}, t.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, p := range t.Index {
		record[0] = p.String()
		for j, id := range t.Columns {
			record[j+1] = formatValue(t.Value(id, i))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// tableRecords converts t into one object per period with missing cells
// omitted.
func tableRecords(t *series.Table) []map[string]any {
	records := make([]map[string]any, 0, t.Len())
	for i, p := range t.Index {
		rec := map[string]any{"period": p.String()}
		for _, id := range t.Columns {
			if v := t.Value(id, i); !math.IsNaN(v) {
				rec[id] = v
			}
		}
		records = append(records, rec)
	}
	return records
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
