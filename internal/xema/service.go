package xema

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// CollectOptions parameterizes one collection run.
type CollectOptions struct {
	Network       string
	StationStatus string
	VariableCodes []string
	Start         Date
	End           Date

	// Concurrency bounds the number of stations fetched in parallel.
	// Values below 1 mean sequential.
	Concurrency int
}

// Service orchestrates one run: list stations, fetch and aggregate each
// station's variables, and insert the resulting reports into the
// accumulator. A single station's failure is logged and skipped so the rest
// of the run can finish.
type Service struct {
	source   ObservationSource
	acc      Accumulator
	registry *Registry
	log      *slog.Logger
}

// NewService creates a Service.
func NewService(source ObservationSource, acc Accumulator, registry *Registry, log *slog.Logger) *Service {
	return &Service{
		source:   source,
		acc:      acc,
		registry: registry,
		log:      log,
	}
}

// Collect runs the fetch-and-aggregate pipeline for every station of the
// configured network. It returns the number of stations that failed.
// Configuration mistakes (invalid range, unregistered variable) abort
// before any fetching; ErrNoStations is returned when not a single station
// succeeded.
func (s *Service) Collect(ctx context.Context, opts CollectOptions) (int, error) {
	if opts.Start.After(opts.End.Time) {
		return 0, fmt.Errorf("%w: %s > %s", ErrInvalidRange, opts.Start, opts.End)
	}
	for _, code := range opts.VariableCodes {
		if _, err := s.registry.Lookup(code); err != nil {
			return 0, err
		}
	}

	stations, err := s.source.ListStations(ctx, opts.Network, opts.StationStatus)
	if err != nil {
		return 0, fmt.Errorf("listing stations: %w", err)
	}
	s.log.Info("loaded stations", "count", len(stations), "network", opts.Network)

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var (
		wg     sync.WaitGroup
		sem    = make(chan struct{}, concurrency)
		mu     sync.Mutex
		failed int
	)

	for _, station := range stations {
		station := station
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			report, err := s.collectStation(ctx, station, opts)
			if err != nil {
				// Partial-failure policy: record and continue.
				s.log.Warn("station skipped",
					"station", station.Code, "name", station.Name, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			s.acc.Insert(report)
		}()
	}
	wg.Wait()

	if len(stations) > 0 && failed == len(stations) {
		return failed, ErrNoStations
	}
	s.log.Info("collection finished",
		"stations", len(stations), "failed", failed,
		"start", opts.Start.String(), "end", opts.End.String())
	return failed, nil
}

func (s *Service) collectStation(ctx context.Context, station Station, opts CollectOptions) (StationReport, error) {
	report := StationReport{
		Station:   station,
		Variables: make(map[string]VariableResult, len(opts.VariableCodes)),
	}

	for _, code := range opts.VariableCodes {
		readings, err := s.source.FetchDailyObservations(ctx, station.Code, code, opts.Start, opts.End)
		if err != nil {
			return StationReport{}, fmt.Errorf("fetching %s: %w", code, err)
		}

		series, err := BuildDailySeries(station.Code, code, opts.Start, opts.End, readings)
		if err != nil {
			return StationReport{}, err
		}

		aggregates, err := s.registry.Aggregate(series)
		if err != nil {
			return StationReport{}, err
		}

		report.Variables[code] = VariableResult{
			Daily:      series,
			Aggregated: aggregates,
		}
	}

	return report, nil
}
