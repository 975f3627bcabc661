package xema

import (
	"encoding/json"
	"fmt"
	"time"
)

// StationStatus represents a normalized operational status of a station.
type StationStatus string

const (
	StatusUnknown     StationStatus = "unknown"
	StatusOperational StationStatus = "operational"
	StatusClosed      StationStatus = "closed"
)

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Station is the normalized metadata of one XEMA observation station.
// Immutable once fetched; the registry owns it for the duration of a run.
type Station struct {
	Code         string        `json:"code"`
	Name         string        `json:"name"`
	Municipality string        `json:"municipality"`
	County       string        `json:"county,omitempty"`
	Coordinates  Coordinates   `json:"coordinates"`
	Elevation    float64       `json:"elevation"`
	Status       StationStatus `json:"status"`
}

// Date is a calendar day with no time component, always UTC.
// It marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

// DateOf truncates a time.Time to its UTC calendar day.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Sub(d.Time).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DailyObservation is one day's reading for a (station, variable) pair.
// Value is nil when the station reported nothing for that day.
type DailyObservation struct {
	Date  Date     `json:"date"`
	Value *float64 `json:"value"`
}

// DailySeries is the gap-explicit daily record for one station and variable:
// ascending by date and date-contiguous over the requested range, with
// missing days present as nil-valued entries.
type DailySeries struct {
	StationCode  string             `json:"stationCode"`
	VariableCode string             `json:"variableCode"`
	Observations []DailyObservation `json:"observations"`
}

// Start returns the first date of the series.
func (s DailySeries) Start() Date {
	return s.Observations[0].Date
}

// End returns the last date of the series.
func (s DailySeries) End() Date {
	return s.Observations[len(s.Observations)-1].Date
}

// AggregatedPeriod is one bucket of the aggregated output. Complete is true
// only when the full calendar period lay inside the requested range and every
// day in it carried a value.
type AggregatedPeriod struct {
	Period   string  `json:"period"`
	Value    float64 `json:"value"`
	Complete bool    `json:"complete"`
}

// Aggregates groups the three rollup granularities for one series.
type Aggregates struct {
	Weekly  []AggregatedPeriod `json:"weekly"`
	Monthly []AggregatedPeriod `json:"monthly"`
	Yearly  []AggregatedPeriod `json:"yearly"`
}

// VariableResult pairs a daily series with its aggregates.
type VariableResult struct {
	Daily      DailySeries `json:"daily"`
	Aggregated Aggregates  `json:"aggregated"`
}

// StationReport is the per-station output record: metadata plus one
// VariableResult per requested variable code. Built once per run and never
// mutated after assembly.
type StationReport struct {
	Station   Station                   `json:"station"`
	Variables map[string]VariableResult `json:"variables"`
}

// Document is the final output payload of a collection run.
type Document struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	RunID        string          `json:"run_id"`
	StartDate    Date            `json:"start_date"`
	EndDate      Date            `json:"end_date"`
	StationCount int             `json:"station_count"`
	Series       []StationReport `json:"series"`
}
