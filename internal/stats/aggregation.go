package stats

import "math"

// Summary holds the min, max and mean of a non-empty series
type Summary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Accumulator computes a Summary incrementally without keeping the values.
// The zero value is ready to use.
type Accumulator struct {
	count int
	min   float64
	max   float64
	sum   float64
}

// Add folds one value into the running statistics
func (a *Accumulator) Add(v float64) {
	if a.count == 0 {
		a.min, a.max = v, v
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}
	a.sum += v
	a.count++
}

// Count returns the number of values added
func (a *Accumulator) Count() int {
	return a.count
}

// Summary returns min, max and sum/count. The mean is clamped into
// [min, max] so rounding in the running sum cannot break Min <= Avg <= Max.
// An empty accumulator yields the zero Summary.
func (a *Accumulator) Summary() Summary {
	if a.count == 0 {
		return Summary{}
	}
	avg := a.sum / float64(a.count)
	avg = math.Max(a.min, math.Min(a.max, avg))
	return Summary{Min: a.min, Max: a.max, Avg: avg}
}
