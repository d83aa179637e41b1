package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Bin is one histogram bucket covering [Min, Max)
type Bin struct {
	Min   float64
	Max   float64
	Count float64
}

// Center returns the midpoint of the bin
func (b Bin) Center() float64 { return (b.Min + b.Max) / 2 }

// Histogram is a fixed range histogram
type Histogram struct {
	Bins []Bin
	// Dropped counts values outside the histogram range.
	Dropped int
}

// Total returns the number of values that fell in a bin
func (h Histogram) Total() float64 {
	var total float64
	for _, b := range h.Bins {
		total += b.Count
	}
	return total
}

// NewHistogram bins values into n equal bins over [min, max]. The last bin
// is closed so that max itself is counted.
func NewHistogram(values []float64, min, max float64, n int) Histogram {
	var h Histogram
	if n <= 0 || max <= min {
		h.Dropped = len(values)
		return h
	}

	width := (max - min) / float64(n)
	h.Bins = make([]Bin, n)
	for i := range h.Bins {
		h.Bins[i] = Bin{Min: min + float64(i)*width, Max: min + float64(i+1)*width}
	}
	h.Bins[n-1].Max = max

	for _, v := range values {
		if v < min || v > max || math.IsNaN(v) {
			h.Dropped++
			continue
		}
		i := int((v - min) / width)
		if i >= n {
			i = n - 1
		}
		h.Bins[i].Count++
	}
	return h
}

// ExpFit is the exponential model count(t) = A * exp(B * t)
type ExpFit struct {
	A float64
	B float64
}

// At evaluates the model at t
func (f ExpFit) At(t float64) float64 {
	return f.A * math.Exp(f.B*t)
}

// FitExponential fits an exponential to the bins in [from, to) by a linear
// regression of log(count) on the bin center, weighted by the count. Empty
// bins are ignored. It reports false when fewer than two bins can be used.
func FitExponential(h Histogram, from, to int) (ExpFit, bool) {
	if from < 0 {
		from = 0
	}
	if to > len(h.Bins) {
		to = len(h.Bins)
	}

	var xs, ys, weights []float64
	for _, b := range h.Bins[min(from, to):to] {
		if b.Count <= 0 {
			continue
		}
		xs = append(xs, b.Center())
		ys = append(ys, math.Log(b.Count))
		weights = append(weights, b.Count)
	}
	if len(xs) < 2 {
		return ExpFit{}, false
	}

	alpha, beta := stat.LinearRegression(xs, ys, weights, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return ExpFit{}, false
	}
	return ExpFit{A: math.Exp(alpha), B: beta}, true
}
