// Package report assembles the per-run output document and writes it as
// JSON or CSV.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

// Assemble combines the accumulated station reports into the final
// document: stations sorted by code for deterministic output, station count
// and range metadata filled in, and a fresh run identifier stamped on.
func Assemble(reports []xema.StationReport, start, end xema.Date) xema.Document {
	sorted := make([]xema.StationReport, len(reports))
	copy(sorted, reports)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Station.Code < sorted[j].Station.Code
	})

	return xema.Document{
		GeneratedAt:  time.Now().UTC(),
		RunID:        uuid.NewString(),
		StartDate:    start,
		EndDate:      end,
		StationCount: len(sorted),
		Series:       sorted,
	}
}
