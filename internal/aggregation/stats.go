package aggregation

import (
	"math"
	"sort"
)

// Stats summarizes a compensation sample. Every field is NaN when the sample is
// empty, and Std is NaN when it has fewer than two values.
type Stats struct {
	N      int
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
	P10    float64
	P25    float64
	P75    float64
	P90    float64
}

// Describe computes the statistics of values in one exact pass over the sorted sample.
// values is not modified.
func Describe(values []float64) Stats {
	nan := math.NaN()
	s := Stats{Mean: nan, Median: nan, Std: nan, Min: nan, Max: nan, P10: nan, P25: nan, P75: nan, P90: nan}

	sorted := finite(values)
	s.N = len(sorted)
	if s.N == 0 {
		return s
	}
	sort.Float64s(sorted)

	s.Mean = mean(sorted)
	s.Std = sampleStd(sorted, s.Mean)
	s.Min = sorted[0]
	s.Max = sorted[s.N-1]
	s.P10 = percentile(sorted, 0.10)
	s.P25 = percentile(sorted, 0.25)
	s.Median = percentile(sorted, 0.50)
	s.P75 = percentile(sorted, 0.75)
	s.P90 = percentile(sorted, 0.90)
	return s
}

// Mean of the finite values, NaN when there are none
func Mean(values []float64) float64 {
	return mean(finite(values))
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd uses the n-1 denominator
func sampleStd(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return math.NaN()
	}
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}

// percentile interpolates linearly between the order statistics around rank p*(n-1)
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// round rounds half away from zero to places decimals, passing NaN through
func round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// share is part/total*100 rounded to one decimal, NaN when total is zero
func share(part, total int64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return round(float64(part)/float64(total)*100, 1)
}
