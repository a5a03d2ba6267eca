// Package band implements variance-minimizing discretization of a sorted
// numeric column into contiguous bands.
//
// The search repeatedly bisects the working range at the index that
// minimizes the weighted blended standard deviation of the two sides,
// rejecting splits that would leave either side too small or too narrow to
// be statistically meaningful. The driver applies the search top-down,
// peeling finalized bands off the low end until no acceptable split
// remains.
package band

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fernwell/bandcut/internal/stats"
)

const (
	// DefaultCohen is the effect-size threshold used to derive the minimum
	// acceptable value range of a band from the whole column's standard
	// deviation (a "medium" effect).
	DefaultCohen = 0.3

	// DefaultMargin scales the blended cost to bias against marginal splits.
	DefaultMargin = 1.05

	// eps keeps weight denominators finite on degenerate ranges.
	eps = 1e-32

	// noSplit is the sentinel returned by argmin when no candidate clears
	// both thresholds.
	noSplit = -1
)

// Options configures a discretization run. Zero values select the
// documented defaults, so Options{} is a valid configuration.
type Options struct {
	// MinBinSize is the minimum rows per band. 0 means floor(sqrt(n)).
	MinBinSize int
	// MinRise is the minimum value spread of a band. 0 means
	// Cohen * stddev of the whole column.
	MinRise float64
	// Cohen is the effect-size multiplier used when MinRise is 0.
	Cohen float64
	// Margin scales the blended split cost. 0 means DefaultMargin.
	Margin float64
	// Trace, when non-nil, receives one line per driver step: a "|.."
	// nesting prefix followed by the value at the current lower boundary.
	// Purely observational.
	Trace io.Writer
}

// Partition is a contiguous index range over the sorted column, with the
// band label derived from its boundary values.
type Partition struct {
	Lo, Hi int
	Label  string
}

// Count returns the number of rows the partition covers.
func (p Partition) Count() int { return p.Hi - p.Lo + 1 }

// Discretize splits the sorted values into contiguous bands and labels
// each one. The returned partitions are disjoint and cover [0, n-1]
// exactly. It returns an error if vals is not sorted ascending; an empty
// input yields no partitions.
func Discretize(vals []float64, opt Options) ([]Partition, error) {
	n := len(vals)
	if n == 0 {
		return nil, nil
	}
	for i := 1; i < n; i++ {
		if vals[i] < vals[i-1] {
			return nil, fmt.Errorf("values not sorted ascending at index %d", i)
		}
	}
	minBin, minRise, margin := opt.resolve(vals)

	var parts []Partition
	lo, hi := 0, n-1
	for depth := 0; ; depth++ {
		if opt.Trace != nil {
			fmt.Fprintf(opt.Trace, "%s%s\n", strings.Repeat("|..", depth), formatValue(vals[lo]))
		}
		cut := argmin(vals, lo, hi, minBin, minRise, margin)
		if cut == noSplit {
			break
		}
		parts = append(parts, Partition{Lo: lo, Hi: cut})
		lo = cut + 1
	}
	parts = append(parts, Partition{Lo: lo, Hi: hi})

	for i := range parts {
		parts[i].Label = label(parts[i], vals, n)
	}
	return parts, nil
}

// argmin scans the inclusive range [lo, hi] for the cut index minimizing
// the weighted blended standard deviation of the two sides. The cut is the
// last index of the lower side. It returns noSplit when the range cannot
// host two valid bands or no candidate clears both the size and the rise
// thresholds.
func argmin(vals []float64, lo, hi, minBin int, minRise, margin float64) int {
	if hi-lo+1 <= 2*minBin {
		return noSplit
	}
	above := stats.NewAccumulator()
	for i := lo; i <= hi; i++ {
		above.Add(vals[i])
	}
	below := stats.NewAccumulator()

	cut := noSplit
	best := math.Inf(1)
	for i := lo; i < hi; i++ {
		below.Add(vals[i])
		above.Remove(vals[i])
		total := float64(below.Count()+above.Count()) + eps
		cost := margin * (float64(below.Count())/total*below.StdDev() +
			float64(above.Count())/total*above.StdDev())
		if below.Count() < minBin || above.Count() < minBin {
			continue
		}
		if below.Max()-below.Min() <= minRise || above.Max()-above.Min() <= minRise {
			continue
		}
		if cost < best { // strict: ties keep the leftmost candidate
			best = cost
			cut = i
		}
	}
	return cut
}

// label renders the band label from the partition's boundary values. The
// first band is open below, the last open above; a band that is both
// (a single band covering everything) is open on both sides.
func label(p Partition, vals []float64, n int) string {
	first := p.Lo == 0
	last := p.Hi == n-1
	switch {
	case first && last:
		return ".."
	case first:
		return ".." + formatValue(vals[p.Hi])
	case last:
		return formatValue(vals[p.Lo]) + ".."
	default:
		return formatValue(vals[p.Lo]) + ".." + formatValue(vals[p.Hi])
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// resolve fills in defaults that depend on the data: minBinSize from the
// column length and minRise from the whole column's spread. Both are fixed
// once here, before any recursion.
func (o Options) resolve(vals []float64) (minBin int, minRise, margin float64) {
	minBin = o.MinBinSize
	if minBin <= 0 {
		minBin = int(math.Sqrt(float64(len(vals))))
	}
	minRise = o.MinRise
	if minRise <= 0 {
		cohen := o.Cohen
		if cohen <= 0 {
			cohen = DefaultCohen
		}
		all := stats.NewAccumulator()
		for _, v := range vals {
			all.Add(v)
		}
		minRise = cohen * all.StdDev()
	}
	margin = o.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	return minBin, minRise, margin
}

// Validate reports structural violations in a partition list over n rows:
// gaps, overlaps, or boundaries out of order. Callers use it as a
// post-condition check after Discretize.
func Validate(parts []Partition, n int) error {
	if n == 0 {
		if len(parts) != 0 {
			return errors.New("partitions over empty input")
		}
		return nil
	}
	if len(parts) == 0 {
		return errors.New("no partitions")
	}
	if parts[0].Lo != 0 {
		return fmt.Errorf("first partition starts at %d, want 0", parts[0].Lo)
	}
	for i, p := range parts {
		if p.Hi < p.Lo {
			return fmt.Errorf("partition %d has hi %d < lo %d", i, p.Hi, p.Lo)
		}
		if i > 0 && p.Lo != parts[i-1].Hi+1 {
			return fmt.Errorf("partition %d starts at %d, want %d", i, p.Lo, parts[i-1].Hi+1)
		}
	}
	if last := parts[len(parts)-1].Hi; last != n-1 {
		return fmt.Errorf("last partition ends at %d, want %d", last, n-1)
	}
	return nil
}
