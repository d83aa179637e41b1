package stats

import (
	"fmt"
	"time"

	"github.com/sabarim/doorstats/internal/events"
)

// OpennessSamples splits the recorded range into consecutive windows of
// length period, starting at the first record, and returns the fraction of
// each window during which the door was open. A record's state holds until
// the next record. The last window ends at or before the last record.
func (e *Extractor) OpennessSamples(period time.Duration) []Sample {
	if period <= 0 || len(e.records) < 2 {
		return nil
	}

	recs := e.records
	first, last := recs[0].Time, recs[len(recs)-1].Time

	var samples []Sample
	seg := 0
	for start := first; !start.Add(period).After(last); start = start.Add(period) {
		end := start.Add(period)

		// segment seg spans [recs[seg].Time, recs[seg+1].Time)
		for seg < len(recs)-1 && !recs[seg+1].Time.After(start) {
			seg++
		}

		var open time.Duration
		for k := seg; k < len(recs)-1 && recs[k].Time.Before(end); k++ {
			if recs[k].Kind != events.Open {
				continue
			}
			from, to := recs[k].Time, recs[k+1].Time
			if from.Before(start) {
				from = start
			}
			if to.After(end) {
				to = end
			}
			if to.After(from) {
				open += to.Sub(from)
			}
		}

		samples = append(samples, Sample{Start: start, Value: float64(open) / float64(period)})
	}
	return samples
}

// Openness returns the openness per window of length period as a time series
func (e *Extractor) Openness(period time.Duration) Series {
	series := Series{Name: "openness", Title: "Openness", Unit: UnitRatio}
	for _, s := range e.OpennessSamples(period) {
		series.Points = append(series.Points, Point{
			Key:   s.Start.Format(time.RFC3339),
			Label: s.Start.Format("2006-01-02 15:04"),
			Time:  s.Start,
			Value: s.Value,
		})
	}
	return series
}

// OpennessByHour averages the openness of windows by the hour they start in.
// Charts that label a window by its end appear shifted one window later.
func (e *Extractor) OpennessByHour(period time.Duration) Series {
	series := Series{Name: "openness_by_hour", Title: "Openness by hour of day", Unit: UnitRatio}
	samples := e.OpennessSamples(period)
	if len(samples) == 0 {
		return series
	}

	var sums [24]float64
	var counts [24]int
	for _, s := range samples {
		h := s.Start.Hour()
		sums[h] += s.Value
		counts[h]++
	}
	series.Points = hourPoints(func(h int) float64 { return mean(sums[h], counts[h]) })
	return series
}

// OpennessByWeekday averages the openness of windows by the weekday they start on
func (e *Extractor) OpennessByWeekday(period time.Duration) Series {
	series := Series{Name: "openness_by_weekday", Title: "Openness by weekday", Unit: UnitRatio}
	samples := e.OpennessSamples(period)
	if len(samples) == 0 {
		return series
	}
	series.Points = weekdayOpenness(samples)
	return series
}

// OpennessByWeekdayBySemester returns one weekday openness series for every
// half-year (January to June, July to December) that has samples.
func (e *Extractor) OpennessByWeekdayBySemester(period time.Duration) []Series {
	var out []Series
	var current []Sample
	var currentStart time.Time

	flush := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, Series{
			Name:   fmt.Sprintf("openness_by_weekday_%s", currentStart.Format(monthKey)),
			Title:  SemesterName(currentStart),
			Unit:   UnitRatio,
			Points: weekdayOpenness(current),
		})
		current = nil
	}

	for _, s := range e.OpennessSamples(period) {
		start := startOfSemester(s.Start)
		if !start.Equal(currentStart) {
			flush()
			currentStart = start
		}
		current = append(current, s)
	}
	flush()
	return out
}

// SemesterName labels the half-year starting at t, e.g. "Spring 2015"
func SemesterName(t time.Time) string {
	if t.Month() <= time.June {
		return fmt.Sprintf("Spring %d", t.Year())
	}
	return fmt.Sprintf("Autumn %d", t.Year())
}

func weekdayOpenness(samples []Sample) []Point {
	var sums [7]float64
	var counts [7]int
	for _, s := range samples {
		w := WeekdayIndex(s.Start)
		sums[w] += s.Value
		counts[w]++
	}
	return weekdayPoints(func(i int) float64 { return mean(sums[i], counts[i]) })
}

func startOfSemester(t time.Time) time.Time {
	month := time.January
	if t.Month() > time.June {
		month = time.July
	}
	return time.Date(t.Year(), month, 1, 0, 0, 0, 0, t.Location())
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
