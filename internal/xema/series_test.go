package xema

import (
	"errors"
	"testing"
	"time"
)

func TestBuildDailySeriesCoversEveryDay(t *testing.T) {
	cases := []struct {
		name       string
		start, end Date
		wantDays   int
	}{
		{"single day", NewDate(2024, time.August, 1), NewDate(2024, time.August, 1), 1},
		{"one month", NewDate(2024, time.August, 1), NewDate(2024, time.August, 31), 31},
		{"leap february", NewDate(2024, time.February, 1), NewDate(2024, time.February, 29), 29},
		{"across years", NewDate(2023, time.December, 25), NewDate(2024, time.January, 5), 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			series, err := BuildDailySeries("UG", VariablePrecipitation, tc.start, tc.end, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(series.Observations) != tc.wantDays {
				t.Fatalf("expected %d observations, got %d", tc.wantDays, len(series.Observations))
			}
			for i, obs := range series.Observations {
				want := tc.start.AddDays(i)
				if !obs.Date.Equal(want.Time) {
					t.Errorf("observation %d: expected date %s, got %s", i, want, obs.Date)
				}
			}
		})
	}
}

func TestBuildDailySeriesFillsGapsWithNil(t *testing.T) {
	start := NewDate(2024, time.August, 1)
	end := NewDate(2024, time.August, 5)
	readings := map[Date]float64{
		NewDate(2024, time.August, 2): 1.2,
		NewDate(2024, time.August, 4): 0,
	}

	series, err := BuildDailySeries("UG", VariablePrecipitation, start, end, readings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantNil := map[int]bool{0: true, 2: true, 4: true}
	for i, obs := range series.Observations {
		if wantNil[i] {
			if obs.Value != nil {
				t.Errorf("observation %d: expected nil value, got %v", i, *obs.Value)
			}
			continue
		}
		if obs.Value == nil {
			t.Errorf("observation %d: expected a value, got nil", i)
		}
	}

	// A recorded zero must survive as a value, not a gap.
	if v := series.Observations[3].Value; v == nil || *v != 0 {
		t.Error("expected explicit zero reading to be kept")
	}
}

func TestBuildDailySeriesInvalidRange(t *testing.T) {
	_, err := BuildDailySeries("UG", VariablePrecipitation,
		NewDate(2024, time.August, 2), NewDate(2024, time.August, 1), nil)
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.August, 1)
	b, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != `"2024-08-01"` {
		t.Fatalf("expected \"2024-08-01\", got %s", b)
	}

	var parsed Date
	if err := parsed.UnmarshalJSON(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Errorf("round trip changed the date: %s != %s", parsed, d)
	}
}
