package stats

import "time"

// Units of a series value
const (
	UnitEvents  = "events"
	UnitRatio   = "ratio"
	UnitSeconds = "seconds"
)

// Point is one bucket of an aggregate series
type Point struct {
	Key   string
	Label string
	// Time is the start of the bucket for calendar series, zero for categorical ones.
	Time  time.Time
	Value float64
}

// Series maps calendar buckets to a statistic, in chronological or fixed order
type Series struct {
	Name   string
	Title  string
	Unit   string
	Points []Point
}

// Len returns the number of buckets
func (s Series) Len() int { return len(s.Points) }

// Empty reports whether the series has no buckets
func (s Series) Empty() bool { return len(s.Points) == 0 }

// Values returns the bucket values in series order
func (s Series) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

// Labels returns the human-readable bucket labels in series order
func (s Series) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
	}
	return labels
}

// Total sums the bucket values
func (s Series) Total() float64 {
	var total float64
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}

// Lookup returns the value stored under key
func (s Series) Lookup(key string) (float64, bool) {
	for _, p := range s.Points {
		if p.Key == key {
			return p.Value, true
		}
	}
	return 0, false
}

// Distribution is an ordered sample of durations in seconds
type Distribution struct {
	Name   string
	Title  string
	Values []float64
}

// Empty reports whether the distribution has no values
func (d Distribution) Empty() bool { return len(d.Values) == 0 }

// Sample is the openness of one sampling window starting at Start
type Sample struct {
	Start time.Time
	Value float64
}
