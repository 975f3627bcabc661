package xema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRange is returned when a caller supplies start > end.
	ErrInvalidRange = errors.New("start date is after end date")

	// ErrNoStations is returned when a collection run produced no
	// successful station report at all.
	ErrNoStations = errors.New("no stations collected successfully")
)

// BuildDailySeries assembles the gap-explicit daily series for one station
// and variable over [start, end] inclusive. Every calendar day in the range
// appears exactly once, ascending; days absent from readings get a nil value.
func BuildDailySeries(stationCode, variableCode string, start, end Date, readings map[Date]float64) (DailySeries, error) {
	if start.After(end.Time) {
		return DailySeries{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	days := start.DaysUntil(end) + 1
	obs := make([]DailyObservation, 0, days)
	for d := start; !d.After(end.Time); d = d.AddDays(1) {
		entry := DailyObservation{Date: d}
		if v, ok := readings[d]; ok {
			value := v
			entry.Value = &value
		}
		obs = append(obs, entry)
	}

	return DailySeries{
		StationCode:  stationCode,
		VariableCode: variableCode,
		Observations: obs,
	}, nil
}
