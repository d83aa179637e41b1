package stats

import (
	"fmt"
	"time"

	"github.com/sabarim/doorstats/internal/events"
)

const (
	dayKey   = "2006-01-02"
	monthKey = "2006-01"
)

// Extractor derives aggregate series from door records. Every method is a
// pure function of the records it was built with.
type Extractor struct {
	records []events.Record
}

// NewExtractor creates an extractor over records sorted by time
func NewExtractor(records []events.Record) *Extractor {
	return &Extractor{records: records}
}

// Records returns the number of records the extractor works on
func (e *Extractor) Records() int { return len(e.records) }

// CountByDay counts events per calendar day from the first to the last
// recorded day. Days without events are present with a zero count.
func (e *Extractor) CountByDay() Series {
	series := Series{Name: "count_by_day", Title: "Events per day", Unit: UnitEvents}
	if len(e.records) == 0 {
		return series
	}

	counts := make(map[string]int)
	for _, r := range e.records {
		counts[r.Time.Format(dayKey)]++
	}

	last := startOfDay(e.records[len(e.records)-1].Time)
	for day := startOfDay(e.records[0].Time); !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayKey)
		series.Points = append(series.Points, Point{
			Key:   key,
			Label: key,
			Time:  day,
			Value: float64(counts[key]),
		})
	}
	return series
}

// CountByWeekday counts events per weekday across all weeks, Monday first
func (e *Extractor) CountByWeekday() Series {
	series := Series{Name: "count_by_weekday", Title: "Events per weekday", Unit: UnitEvents}
	if len(e.records) == 0 {
		return series
	}

	var counts [7]int
	for _, r := range e.records {
		counts[WeekdayIndex(r.Time)]++
	}
	series.Points = weekdayPoints(func(i int) float64 { return float64(counts[i]) })
	return series
}

// CountByMonth counts events per (year, month) from the first to the last
// recorded month, months without events included with a zero count.
func (e *Extractor) CountByMonth() Series {
	series := Series{Name: "count_by_month", Title: "Events per month", Unit: UnitEvents}
	if len(e.records) == 0 {
		return series
	}

	counts := make(map[string]int)
	for _, r := range e.records {
		counts[r.Time.Format(monthKey)]++
	}

	last := startOfMonth(e.records[len(e.records)-1].Time)
	for month := startOfMonth(e.records[0].Time); !month.After(last); month = month.AddDate(0, 1, 0) {
		key := month.Format(monthKey)
		series.Points = append(series.Points, Point{
			Key:   key,
			Label: month.Format("Jan 2006"),
			Time:  month,
			Value: float64(counts[key]),
		})
	}
	return series
}

// CountByHour counts events per hour of day, 00 to 23
func (e *Extractor) CountByHour() Series {
	series := Series{Name: "count_by_hour", Title: "Events per hour of day", Unit: UnitEvents}
	if len(e.records) == 0 {
		return series
	}

	var counts [24]int
	for _, r := range e.records {
		counts[r.Time.Hour()]++
	}
	series.Points = hourPoints(func(h int) float64 { return float64(counts[h]) })
	return series
}

// IntervalsBetweenEvents returns the seconds between consecutive events
func (e *Extractor) IntervalsBetweenEvents() Distribution {
	dist := Distribution{Name: "intervals", Title: "Time between events"}
	for i := 1; i < len(e.records); i++ {
		dist.Values = append(dist.Values, e.records[i].Time.Sub(e.records[i-1].Time).Seconds())
	}
	return dist
}

// VisitDurations returns the seconds from every open event to the close
// that follows it. The door is assumed closed before the first record.
func (e *Extractor) VisitDurations() Distribution {
	dist := Distribution{Name: "visit_durations", Title: "Visit durations"}

	prev := events.Close
	var start time.Time
	for _, r := range e.records {
		switch {
		case r.Kind == events.Open && prev == events.Close:
			start = r.Time
		case r.Kind == events.Close && prev == events.Open:
			dist.Values = append(dist.Values, r.Time.Sub(start).Seconds())
		}
		prev = r.Kind
	}
	return dist
}

// WeekdayIndex maps a time to 0 for Monday through 6 for Sunday
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekdayName returns the name of the weekday at a Monday based index
func WeekdayName(i int) string {
	return time.Weekday((i + 1) % 7).String()
}

func weekdayPoints(value func(i int) float64) []Point {
	points := make([]Point, 7)
	for i := range points {
		name := WeekdayName(i)
		points[i] = Point{Key: name[:3], Label: name, Value: value(i)}
	}
	return points
}

func hourPoints(value func(h int) float64) []Point {
	points := make([]Point, 24)
	for h := range points {
		points[h] = Point{
			Key:   fmt.Sprintf("%02d", h),
			Label: fmt.Sprintf("%02d", h),
			Value: value(h),
		}
	}
	return points
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
