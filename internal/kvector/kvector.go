package kvector

import (
	"errors"
	"fmt"
	"math"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// ErrInvalidSize is returned by GenerateBins when the sorted database has
// fewer than 3 elements, the minimum needed to build a usable k-vector.
var ErrInvalidSize = errors.New("kvector: database too small to generate bins")

// Element pairs a catalog StarPair with its precomputed angular distance,
// the shape GenerateBins sorts and indexes over.
type Element struct {
	Pair StarPair[int]
	Dist units.Radians
}

// KVector is the precomputed linear approximation over a sorted array of
// N angular distances d1<=...<=dN. See spec.md 3/4.A for the invariants:
// for bin i in [0,num_bins), every pair with distance in
// [q+i*m, q+(i+1)*m] has array index < bin[i+1]; every pair <= q+i*m has
// index <= bin[i].
type KVector struct {
	Gradient float64
	Intercept float64
	MinValue units.Radians
	MaxValue units.Radians
	NumBins  int
}

// New constructs the KVector gradient/intercept for a sorted-distance
// array spanning [minValue, maxValue] divided into numBins bins, per
// spec.md 3: m = (d_N - d_1 + 2(N-1)eps) / (num_bins - 1),
// q = d_1 - (N-1)*eps.
func New(numBins int, minValue, maxValue units.Radians) KVector {
	const epsilon = 2.220446049250313e-16 // float64 machine epsilon
	n := float64(numBins)
	rangeVal := float64(maxValue-minValue) + 2*(n-1)*epsilon
	gradient := rangeVal / (n - 1)
	intercept := float64(minValue) - (n-1)*epsilon
	return KVector{
		Gradient:  gradient,
		Intercept: intercept,
		MinValue:  minValue,
		MaxValue:  maxValue,
		NumBins:   numBins,
	}
}

// IdealBins returns the ideal bin count for a sorted database given a
// tolerance: the full distance range divided by tolerance, rounded up.
// Too few bins leaves stars outside tolerance; too many wastes memory.
func IdealBins(sorted []Element, tolerance units.Radians) int {
	rangeVal := sorted[len(sorted)-1].Dist - sorted[0].Dist
	return int(math.Ceil(float64(rangeVal) / float64(tolerance)))
}

// GenerateBins builds the k_vector bin-boundary array: bin[i] is the first
// index in sorted whose distance is >= the lower bound of bin i, so a
// half-open range [bin[i], bin[i+1]) covers bin i's contents.
func (k KVector) GenerateBins(sorted []Element) ([]int, error) {
	if len(sorted) < 3 {
		return nil, ErrInvalidSize
	}

	bins := make([]int, 0, k.NumBins)
	jj := 0
	for ii := 0; ii < k.NumBins-1; ii++ {
		maxValue := k.Gradient*float64(ii) + k.Intercept
		if ii > 0 {
			jj = bins[ii-1]
		}
		for jj < len(sorted) && float64(sorted[jj].Dist) < maxValue {
			jj++
		}
		bins = append(bins, jj)
	}
	bins = append(bins, len(sorted))
	return bins, nil
}

// Display formats the KVector for generator diagnostics/logging.
func (k KVector) Display() string {
	min, max := k.MinValue, k.MaxValue
	const precision = 1e-9
	if min < precision {
		min = precision
	}
	if max < precision {
		max = precision
	}
	return fmt.Sprintf("KVector{gradient: %v, intercept: %v, min_value: %v, max_value: %v, num_bins: %d}",
		k.Gradient, k.Intercept, min, max, k.NumBins)
}
