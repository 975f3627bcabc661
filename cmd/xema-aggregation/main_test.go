package main

import (
	"errors"
	"testing"
	"time"

	"github.com/meteocat-tools/xema-aggregation/internal/xema"
)

func TestSeasonStart(t *testing.T) {
	cases := []struct {
		today xema.Date
		want  xema.Date
	}{
		{xema.NewDate(2024, time.August, 1), xema.NewDate(2024, time.August, 1)},
		{xema.NewDate(2024, time.December, 24), xema.NewDate(2024, time.August, 1)},
		{xema.NewDate(2025, time.March, 10), xema.NewDate(2024, time.August, 1)},
		{xema.NewDate(2024, time.July, 31), xema.NewDate(2023, time.August, 1)},
	}
	for _, tc := range cases {
		if got := seasonStart(tc.today); !got.Equal(tc.want.Time) {
			t.Errorf("seasonStart(%s): expected %s, got %s", tc.today, tc.want, got)
		}
	}
}

func TestResolveRangeDefaults(t *testing.T) {
	today := xema.NewDate(2024, time.October, 15)

	start, end, err := resolveRange("", "", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !start.Equal(xema.NewDate(2024, time.August, 1).Time) {
		t.Errorf("expected default start 2024-08-01, got %s", start)
	}
	if !end.Equal(today.Time) {
		t.Errorf("expected default end %s, got %s", today, end)
	}
}

func TestResolveRangeExplicit(t *testing.T) {
	today := xema.NewDate(2024, time.October, 15)

	start, end, err := resolveRange("2024-02-01", "2024-02-29", today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.String() != "2024-02-01" || end.String() != "2024-02-29" {
		t.Errorf("unexpected range %s..%s", start, end)
	}
}

func TestResolveRangeRejectsInversion(t *testing.T) {
	today := xema.NewDate(2024, time.October, 15)

	if _, _, err := resolveRange("2024-09-01", "2024-08-01", today); !errors.Is(err, xema.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestResolveRangeRejectsMalformedDate(t *testing.T) {
	today := xema.NewDate(2024, time.October, 15)

	if _, _, err := resolveRange("01/08/2024", "", today); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}
