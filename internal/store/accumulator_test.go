package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

func TestAccumulatorConcurrentInsert(t *testing.T) {
	acc := NewRunAccumulator()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Insert(xema.StationReport{
				Station: xema.Station{Code: fmt.Sprintf("S%03d", i)},
			})
		}()
	}
	wg.Wait()

	if got := len(acc.Reports()); got != n {
		t.Fatalf("expected %d reports, got %d", n, got)
	}
}

func TestAccumulatorInsertReplacesByStationCode(t *testing.T) {
	acc := NewRunAccumulator()
	acc.Insert(xema.StationReport{Station: xema.Station{Code: "UG", Name: "first"}})
	acc.Insert(xema.StationReport{Station: xema.Station{Code: "UG", Name: "second"}})

	reports := acc.Reports()
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	if reports[0].Station.Name != "second" {
		t.Errorf("expected replacement by station code, got %q", reports[0].Station.Name)
	}
}

func TestAccumulatorDocumentLifecycle(t *testing.T) {
	acc := NewRunAccumulator()

	if _, err := acc.LatestDocument(); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("expected ErrNoDocument, got %v", err)
	}

	doc := xema.Document{RunID: "run-1", GeneratedAt: time.Now().UTC()}
	acc.SetDocument(doc)

	got, err := acc.LatestDocument()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("expected run-1, got %s", got.RunID)
	}

	// Reset clears reports but keeps the published document.
	acc.Insert(xema.StationReport{Station: xema.Station{Code: "UG"}})
	acc.Reset()
	if got := len(acc.Reports()); got != 0 {
		t.Errorf("expected no reports after reset, got %d", got)
	}
	if _, err := acc.LatestDocument(); err != nil {
		t.Errorf("expected document to survive reset, got %v", err)
	}
}
