package charts

import (
	"github.com/sabarim/doorstats/internal/stats"
)

// Input is the set of aggregates behind the standard charts
type Input struct {
	CountByDay        stats.Series
	CountByWeekday    stats.Series
	CountByMonth      stats.Series
	CountByHour       stats.Series
	Openness          stats.Series
	OpennessByHour    stats.Series
	OpennessByWeekday stats.Series
	Semesters         []stats.Series

	Intervals stats.Histogram
	Visits    stats.Histogram
	VisitFit  *stats.ExpFit
}

// RenderAll writes the standard chart set and returns the files written.
// Empty aggregates produce no file.
func (pr *Presenter) RenderAll(in Input) ([]string, error) {
	steps := []func() (string, error){
		func() (string, error) { return pr.Counts(in.CountByDay, "Day") },
		func() (string, error) { return pr.Counts(in.CountByWeekday, "") },
		func() (string, error) { return pr.Counts(in.CountByMonth, "Month") },
		func() (string, error) { return pr.Counts(in.CountByHour, "Hour of day") },
		func() (string, error) { return pr.Area(in.Openness) },
		func() (string, error) { return pr.Ratios(in.OpennessByHour, "Hour of day") },
		func() (string, error) { return pr.WeekdayOpenness(in.OpennessByWeekday) },
		func() (string, error) {
			return pr.GroupedBar("openness_by_weekday_by_semester", "Openness by weekday per semester", in.Semesters, 5)
		},
		func() (string, error) {
			return pr.Histogram("intervals", "Time between events", "Interval (s)", in.Intervals, nil)
		},
		func() (string, error) {
			return pr.Histogram("visit_durations", "Visit durations", "Visit duration (s)", in.Visits, in.VisitFit)
		},
	}

	var written []string
	for _, step := range steps {
		path, err := step()
		if err != nil {
			return written, err
		}
		if path != "" {
			written = append(written, path)
		}
	}
	return written, nil
}
