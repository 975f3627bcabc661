package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

// WriteCSV stores the document as a flat CSV dataset at path: one row per
// station per day, station metadata first, then one column per variable
// code. With includeAggregates each variable also gets a trailing
// "<code>_weekly" column carrying the aggregate of the row's ISO week
// (empty when that week produced no aggregate).
func WriteCSV(path string, doc xema.Document, variableCodes []string, includeAggregates bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"station_code", "station_name", "municipality", "county",
		"latitude", "longitude", "elevation", "status", "date",
	}
	header = append(header, variableCodes...)
	if includeAggregates {
		for _, code := range variableCodes {
			header = append(header, code+"_weekly")
		}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, rep := range doc.Series {
		if err := writeStationRows(w, rep, doc.StartDate, doc.EndDate, variableCodes, includeAggregates); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing csv rows: %w", err)
	}
	return nil
}

func writeStationRows(w *csv.Writer, rep xema.StationReport, start, end xema.Date, variableCodes []string, includeAggregates bool) error {
	// Per-variable lookups: value by date, weekly aggregate by period label.
	values := make(map[string]map[xema.Date]*float64, len(variableCodes))
	weekly := make(map[string]map[string]float64, len(variableCodes))
	for _, code := range variableCodes {
		result, ok := rep.Variables[code]
		if !ok {
			continue
		}
		byDate := make(map[xema.Date]*float64, len(result.Daily.Observations))
		for _, obs := range result.Daily.Observations {
			byDate[obs.Date] = obs.Value
		}
		values[code] = byDate

		byWeek := make(map[string]float64, len(result.Aggregated.Weekly))
		for _, p := range result.Aggregated.Weekly {
			byWeek[p.Period] = p.Value
		}
		weekly[code] = byWeek
	}

	station := rep.Station
	meta := []string{
		station.Code,
		station.Name,
		station.Municipality,
		station.County,
		formatFloat(station.Coordinates.Lat),
		formatFloat(station.Coordinates.Lon),
		formatFloat(station.Elevation),
		string(station.Status),
	}

	for d := start; !d.After(end.Time); d = d.AddDays(1) {
		row := append(append([]string{}, meta...), d.String())
		for _, code := range variableCodes {
			var cell string
			if v, ok := values[code][d]; ok && v != nil {
				cell = formatFloat(*v)
			}
			row = append(row, cell)
		}
		if includeAggregates {
			week := xema.ISOWeekLabel(d)
			for _, code := range variableCodes {
				var cell string
				if v, ok := weekly[code][week]; ok {
					cell = formatFloat(v)
				}
				row = append(row, cell)
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
