package stats

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sabarim/doorstats/internal/events"
)

// Summary holds the headline numbers of a run
type Summary struct {
	Events  int
	Opens   int
	Closes  int
	Skipped int
	First   time.Time
	Last    time.Time
	Days    int

	MeanInterval   float64
	MedianInterval float64
	Visits         int
	MeanVisit      float64
	MedianVisit    float64
}

// Summarize computes the run summary; skipped is the number of rows the
// reader dropped.
func (e *Extractor) Summarize(skipped int) Summary {
	s := Summary{Events: len(e.records), Skipped: skipped}
	if len(e.records) == 0 {
		return s
	}

	for _, r := range e.records {
		if r.Kind == events.Open {
			s.Opens++
		} else {
			s.Closes++
		}
	}
	s.First = e.records[0].Time
	s.Last = e.records[len(e.records)-1].Time
	s.Days = e.CountByDay().Len()

	intervals := e.IntervalsBetweenEvents().Values
	s.MeanInterval, s.MedianInterval = meanMedian(intervals)

	visits := e.VisitDurations().Values
	s.Visits = len(visits)
	s.MeanVisit, s.MedianVisit = meanMedian(visits)
	return s
}

func meanMedian(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return stat.Mean(sorted, nil), stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
