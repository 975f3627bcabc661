package store

import (
	"errors"
	"sync"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

// ErrNoDocument is returned when no collection run has completed yet.
var ErrNoDocument = errors.New("no report document available")

// RunAccumulator is a concurrency-safe collection point for the station
// reports of the current run, keyed by station code with no ordering
// dependency (the report assembler sorts). It also keeps the most recently
// assembled document for serve mode; nothing older than the latest run is
// retained.
type RunAccumulator struct {
	mu      sync.RWMutex
	reports map[string]xema.StationReport
	latest  *xema.Document
}

// NewRunAccumulator creates an empty accumulator.
func NewRunAccumulator() *RunAccumulator {
	return &RunAccumulator{
		reports: make(map[string]xema.StationReport),
	}
}

// Insert stores a station report, replacing any previous report for the
// same station code.
func (a *RunAccumulator) Insert(report xema.StationReport) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports[report.Station.Code] = report
}

// Reports returns a snapshot of the accumulated reports in unspecified
// order.
func (a *RunAccumulator) Reports() []xema.StationReport {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]xema.StationReport, 0, len(a.reports))
	for _, r := range a.reports {
		out = append(out, r)
	}
	return out
}

// Reset clears the per-station reports so the accumulator can host the next
// run. The latest document is kept until the next SetDocument.
func (a *RunAccumulator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports = make(map[string]xema.StationReport)
}

// SetDocument publishes the assembled document of the finished run.
func (a *RunAccumulator) SetDocument(doc xema.Document) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.latest = &doc
}

// LatestDocument returns the most recently published document.
func (a *RunAccumulator) LatestDocument() (xema.Document, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latest == nil {
		return xema.Document{}, ErrNoDocument
	}
	return *a.latest, nil
}
