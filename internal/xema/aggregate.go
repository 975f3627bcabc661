package xema

import (
	"fmt"
	"math"
	"time"
)

// granularity identifies one of the three rollup levels.
type granularity int

const (
	weekly granularity = iota
	monthly
	yearly
)

// degenerateVectorEpsilon bounds the resultant length below which a
// circular mean is considered undefined (e.g. averaging 0 and 180 degrees).
const degenerateVectorEpsilon = 1e-9

// Aggregate reduces a daily series into weekly, monthly and yearly buckets
// using the semantics registered for the series' variable code. The result
// is a pure function of the series: buckets with no non-nil observation are
// omitted, partially covered buckets are emitted with Complete=false, and a
// circular mean whose resultant vector degenerates to zero length drops its
// bucket rather than inventing an angle.
func (r *Registry) Aggregate(series DailySeries) (Aggregates, error) {
	sem, err := r.Lookup(series.VariableCode)
	if err != nil {
		return Aggregates{}, err
	}
	if len(series.Observations) == 0 {
		return Aggregates{}, nil
	}

	return Aggregates{
		Weekly:  aggregateBuckets(series, weekly, sem),
		Monthly: aggregateBuckets(series, monthly, sem),
		Yearly:  aggregateBuckets(series, yearly, sem),
	}, nil
}

// bucket accumulates one period's contributions.
type bucket struct {
	label       string
	first, last Date // full calendar bounds of the period
	count       int
	sum         float64
	sinSum      float64
	cosSum      float64
}

func aggregateBuckets(series DailySeries, g granularity, sem Semantics) []AggregatedPeriod {
	var (
		order   []string
		buckets = make(map[string]*bucket)
	)

	for _, obs := range series.Observations {
		if obs.Value == nil {
			continue
		}
		label, first, last := periodOf(obs.Date, g)
		b, ok := buckets[label]
		if !ok {
			b = &bucket{label: label, first: first, last: last}
			buckets[label] = b
			// Observations are ascending, so first-seen order is
			// chronological.
			order = append(order, label)
		}
		b.count++
		b.sum += *obs.Value
		if sem == SemanticsCircularMean {
			rad := *obs.Value * math.Pi / 180
			b.sinSum += math.Sin(rad)
			b.cosSum += math.Cos(rad)
		}
	}

	start, end := series.Start(), series.End()
	out := make([]AggregatedPeriod, 0, len(order))
	for _, label := range order {
		b := buckets[label]

		var value float64
		switch sem {
		case SemanticsAdditive:
			value = b.sum
		case SemanticsMean:
			value = b.sum / float64(b.count)
		case SemanticsCircularMean:
			n := float64(b.count)
			if math.Hypot(b.cosSum/n, b.sinSum/n) < degenerateVectorEpsilon {
				// Antipodal inputs cancel out; no meaningful mean.
				continue
			}
			value = math.Atan2(b.sinSum, b.cosSum) * 180 / math.Pi
			value = math.Mod(value+360, 360)
			if round2(value) >= 360 {
				value = 0
			}
		}

		fullPeriodDays := b.first.DaysUntil(b.last) + 1
		complete := !b.first.Before(start.Time) && !b.last.After(end.Time) &&
			b.count == fullPeriodDays

		out = append(out, AggregatedPeriod{
			Period:   b.label,
			Value:    round2(value),
			Complete: complete,
		})
	}
	return out
}

// periodOf returns the bucket label and the full calendar bounds of the
// period containing d at the given granularity.
func periodOf(d Date, g granularity) (label string, first, last Date) {
	switch g {
	case weekly:
		label = ISOWeekLabel(d)
		first, last = isoWeekBounds(d)
	case monthly:
		label = d.Format("2006-01")
		first = NewDate(d.Year(), d.Month(), 1)
		last = first.AddDays(daysInMonth(d.Year(), d.Month()) - 1)
	case yearly:
		label = d.Format("2006")
		first = NewDate(d.Year(), time.January, 1)
		last = NewDate(d.Year(), time.December, 31)
	}
	return label, first, last
}

// ISOWeekLabel formats the ISO-8601 week of d as YYYY-Www. The year is the
// ISO week-numbering year, which near January 1 may differ from the
// calendar year.
func ISOWeekLabel(d Date) string {
	year, week := d.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// isoWeekBounds returns the Monday and Sunday of the ISO week containing d.
func isoWeekBounds(d Date) (Date, Date) {
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	monday := d.AddDays(-offset)
	return monday, monday.AddDays(6)
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
