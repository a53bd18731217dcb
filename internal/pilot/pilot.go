// Package pilot implements the standalone pyramid confirmation path:
// given a confirmed observed/catalog triangle, it searches the remaining
// observed stars for a fourth "pilot" star whose three pair distances to
// the triangle vertices are all present in the database and resolve to a
// single shared catalog index.
//
// This is an independent implementation of the same confirmation spec.md
// 4.F describes; internal/triangle's Iterator.NextPilot is the other. The
// two must agree on every pilot they report for the same input -- see
// internal/constellation's cross-check test.
package pilot

import (
	"errors"

	"github.com/TomCreusot/star-tracker-go/internal/chunk"
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/triangle"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// ErrNoMatch is returned when no observed star yields a consistent pilot.
var ErrNoMatch = errors.New("pilot: no consistent pilot found")

// Finder finds a confirming pilot star for a triangle already matched by
// internal/triangle. n bounds how many SearchResults are retained per
// side, matching the capacity the database search is built for.
type Finder struct {
	n              int
	angleTolerance units.Radians
}

// New constructs a Finder retaining at most n database matches per side,
// searching each side within angleTolerance of the observed distance.
func New(n int, angleTolerance units.Radians) *Finder {
	return &Finder{n: n, angleTolerance: angleTolerance}
}

// FindPilot scans every observed star not part of input for one whose
// three distances to the triangle vertices resolve, via ConfirmPilot, to a
// single shared catalog star. Returns the first such star found, matching
// stars in ascending observed-index order.
func (f *Finder) FindPilot(
	stars []units.Equatorial,
	ci chunk.Iterator,
	input triangle.StarTriangle[int],
	output triangle.StarTriangle[int],
) (units.Match[int], error) {
	for i := range stars {
		if i == input.A || i == input.B || i == input.C {
			continue
		}

		sideA := stars[input.A].AngleDistance(stars[i])
		sideB := stars[input.B].AngleDistance(stars[i])
		sideC := stars[input.C].AngleDistance(stars[i])

		sidesA := chunk.FindCloseRefRegion(ci, sideA, f.angleTolerance, nil, f.n)
		sidesB := chunk.FindCloseRefRegion(ci, sideB, f.angleTolerance, nil, f.n)
		sidesC := chunk.FindCloseRefRegion(ci, sideC, f.angleTolerance, nil, f.n)

		if pilot, ok := ConfirmPilot(output, sidesA, sidesB, sidesC); ok {
			return units.Match[int]{Input: i, Output: pilot, Weight: 1.0}, nil
		}
	}
	return units.Match[int]{}, ErrNoMatch
}

// ConfirmPilot narrows sidesA to entries that share a star with both
// sidesB and sidesC, leaving candidates where a single pilot could link
// all three sides, then checks each surviving a-candidate's "other"
// endpoint (the would-be pilot) against sidesB and sidesC for the
// (triangle_vertex, pilot) pair the pyramid requires. Returns the first
// pilot to pass.
func ConfirmPilot(output triangle.StarTriangle[int], sidesA, sidesB, sidesC []kvector.SearchResult) (int, bool) {
	sidesA = kvector.RemoveDiff(sidesA, sidesB, kvector.HasSameStar)
	sidesA = kvector.RemoveDiff(sidesA, sidesC, kvector.HasSameStar)

	for _, a := range sidesA {
		pilot, ok := a.Result.FindNot(output.A)
		if !ok {
			continue
		}

		connectedA := a.Result.Has(output.A) || a.Result.Has(output.B) || a.Result.Has(output.C)
		bPilot := kvector.StarPair[int]{A: output.B, B: pilot}
		cPilot := kvector.StarPair[int]{A: output.C, B: pilot}
		_, connectedB := kvector.IndexOfPair(bPilot, sidesB)
		_, connectedC := kvector.IndexOfPair(cPilot, sidesC)

		if connectedA && connectedB && connectedC {
			return pilot, true
		}
	}
	return 0, false
}
