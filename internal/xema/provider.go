package xema

import "context"

// ObservationSource abstracts the upstream station-network API
// (Meteocat XEMA in production, fakes in tests).
type ObservationSource interface {
	// ListStations returns the stations of the given network, optionally
	// filtered by status. Empty strings disable the respective filter.
	ListStations(ctx context.Context, network, status string) ([]Station, error)

	// FetchDailyObservations returns the recorded daily values for one
	// station and variable, keyed by date. Days without a reading are
	// simply absent from the map.
	FetchDailyObservations(ctx context.Context, stationCode, variableCode string, start, end Date) (map[Date]float64, error)
}

// Accumulator is the contract for collecting per-station reports during a
// run. Implementations must support concurrent insertion keyed by station
// code; ordering is the report assembler's job.
type Accumulator interface {
	Insert(report StationReport)
	Reports() []StationReport
}
