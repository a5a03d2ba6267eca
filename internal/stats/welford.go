// Package stats provides an incremental mean/variance accumulator used by
// the band-splitting search.
package stats

import "math"

// eps guards the variance denominator at count <= 1.
const eps = 1e-32

// Accumulator tracks count, mean, and the sum of squared deviations (M2) of
// a stream of values using Welford's online update, plus the observed min
// and max. It supports removing a previously added value, which makes it
// usable as a pair of running totals while a split point slides across a
// sorted range.
//
// Min and Max are only extended, never re-tightened: Remove does not rescan
// the remaining values, so after removals they may be wider than the true
// bounds of the held multiset. The split search relies on this deliberately
// cheap approximation.
type Accumulator struct {
	count int
	mean  float64
	m2    float64
	min   float64
	max   float64
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() Accumulator {
	return Accumulator{min: math.Inf(1), max: math.Inf(-1)}
}

// Add folds one value into the running statistics.
func (a *Accumulator) Add(v float64) {
	a.count++
	delta := v - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (v - a.mean)
	if v < a.min {
		a.min = v
	}
	if v > a.max {
		a.max = v
	}
}

// Remove undoes a previous Add of v. It is a no-op when count <= 1 because
// an empty or negative-count accumulator is undefined. Min and max are left
// untouched (see the type comment).
func (a *Accumulator) Remove(v float64) {
	if a.count <= 1 {
		return
	}
	delta := v - a.mean
	a.mean -= delta / float64(a.count-1)
	a.m2 -= delta * (v - a.mean)
	a.count--
	if a.m2 < 0 { // floating-point drift can push m2 slightly negative
		a.m2 = 0
	}
}

// Count returns the number of held values.
func (a *Accumulator) Count() int { return a.count }

// Mean returns the running mean, 0 for an empty accumulator.
func (a *Accumulator) Mean() float64 { return a.mean }

// Min returns the smallest value ever added.
func (a *Accumulator) Min() float64 { return a.min }

// Max returns the largest value ever added.
func (a *Accumulator) Max() float64 { return a.max }

// Variance returns the sample variance m2/(count-1+eps), 0 when count < 2.
func (a *Accumulator) Variance() float64 {
	if a.count < 2 {
		return 0
	}
	return a.m2 / (float64(a.count-1) + eps)
}

// StdDev returns the sample standard deviation.
func (a *Accumulator) StdDev() float64 {
	return math.Sqrt(a.Variance())
}
