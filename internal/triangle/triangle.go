// Package triangle matches observed star triples against catalog pairs,
// stepping a kernel of observed triples and a chunk-restricted database
// search to produce candidate catalog triangles and, for each, a pilot
// star confirming the full pyramid.
package triangle

import (
	"github.com/TomCreusot/star-tracker-go/internal/chunk"
	"github.com/TomCreusot/star-tracker-go/internal/kernel"
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// StarTriangle is a set of three vertices of type T: three catalog indices
// or three observed-star indices, depending on context.
type StarTriangle[T any] struct {
	A, B, C T
}

// ConstructTriangle finds the catalog triangle implied by three candidate
// pairs for a triangle's three sides (a = side i-j, b = side i-k,
// c = side j-k): it demands a and b share a vertex (the catalog image of
// i), a and c share a vertex (j), b and c share a vertex (k), and that
// those three vertices are pairwise distinct.
func ConstructTriangle(a, b, c kvector.StarPair[int]) (StarTriangle[int], bool) {
	x, ok := kvector.FindSame(a, b)
	if !ok {
		return StarTriangle[int]{}, false
	}
	y, ok := kvector.FindSame(a, c)
	if !ok {
		return StarTriangle[int]{}, false
	}
	z, ok := kvector.FindSame(b, c)
	if !ok {
		return StarTriangle[int]{}, false
	}
	if x == y || x == z || y == z {
		return StarTriangle[int]{}, false
	}
	if !kvector.AreSame(a, kvector.StarPair[int]{A: x, B: y}) {
		return StarTriangle[int]{}, false
	}
	if !kvector.AreSame(b, kvector.StarPair[int]{A: x, B: z}) {
		return StarTriangle[int]{}, false
	}
	if !kvector.AreSame(c, kvector.StarPair[int]{A: y, B: z}) {
		return StarTriangle[int]{}, false
	}
	return StarTriangle[int]{A: x, B: y, C: z}, true
}

// Match pairs an input triple (or single pilot index) with the catalog
// output it was matched to, plus the summed search-tolerance error.
type Match[T any] struct {
	Input, Output T
	Weight        units.Decimal
}

// Construct is the interface StarTriangleIterator implements: Begin resets
// iteration state for a new set of observed stars; Next returns the next
// candidate triangle match; NextPilot, called without the chunk iterator
// having advanced since the last Next, enumerates confirming pilot stars
// for the most recently emitted triangle.
type Construct interface {
	Begin(angleTolerance units.Radians, stars []units.Equatorial)
	Next(stars []units.Equatorial, it chunk.Iterator) (Match[StarTriangle[int]], bool)
	NextPilot(stars []units.Equatorial, it chunk.Iterator) (Match[int], bool)
}

// Iterator is the N-bounded StarTriangleIterator: N caps how many
// candidate database pairs are retained per side.
type Iterator struct {
	n int

	kernelIt *kernel.Iterator

	pairA, pairB, pairC    []kvector.SearchResult
	pairPA, pairPB, pairPC []kvector.SearchResult

	indexA, indexB, indexC    int
	indexPA, indexPB, indexPC int
	indexP                    int

	input            StarTriangle[int]
	expectedTriangle *Match[StarTriangle[int]]
	angleTolerance   units.Radians
}

// New constructs a StarTriangleIterator retaining at most n database
// matches per side. Call Begin before iterating.
func New(n int) *Iterator {
	return &Iterator{n: n}
}

// Begin resets the iterator for a fresh set of observed stars.
func (it *Iterator) Begin(angleTolerance units.Radians, stars []units.Equatorial) {
	it.kernelIt = kernel.New(len(stars))
	it.kernelIt.Begin()
	it.pairA, it.pairB, it.pairC = nil, nil, nil
	it.pairPA, it.pairPB, it.pairPC = nil, nil, nil
	it.indexP = -1
	it.indexA = -1
	it.indexB, it.indexC = 0, 0
	it.indexPA = -1
	it.indexPB, it.indexPC = 0, 0
	it.input = StarTriangle[int]{}
	it.expectedTriangle = nil
	it.angleTolerance = angleTolerance
}

// step advances the three cursors (a fastest, then b, then c) and reports
// whether a valid combination remains.
func step(a *int, b, c *int, aMax, bMax, cMax int) bool {
	if *a < aMax-1 {
		*a++
	} else {
		*a = 0
		if *b < bMax-1 {
			*b++
		} else {
			*b = 0
			if *c < cMax-1 {
				*c++
			} else {
				return false
			}
		}
	}
	return *a < aMax && *b < bMax && *c < cMax
}

// Next returns the next candidate catalog triangle matching the current
// observed triple, advancing the chunk iterator and kernel as needed.
func (it *Iterator) Next(stars []units.Equatorial, ci chunk.Iterator) (Match[StarTriangle[int]], bool) {
	it.indexP = -1
	var result Match[StarTriangle[int]]
	found := false

	for {
		for !step(&it.indexA, &it.indexB, &it.indexC, len(it.pairA), len(it.pairB), len(it.pairC)) {
			if !it.prepNewKernel(stars, ci) {
				it.expectedTriangle = nil
				return Match[StarTriangle[int]]{}, false
			}
		}

		a := it.pairA[it.indexA]
		b := it.pairB[it.indexB]
		c := it.pairC[it.indexC]

		tri, ok := ConstructTriangle(a.Result, b.Result, c.Result)
		if ok {
			result = Match[StarTriangle[int]]{
				Input:  it.input,
				Output: tri,
				Weight: units.Decimal(a.Error + b.Error + c.Error),
			}
			found = true
			break
		}
	}

	it.expectedTriangle = &result
	return result, found
}

// NextPilot enumerates confirming pilot stars for the triangle most
// recently returned by Next. The chunk iterator must not have advanced
// since that call.
func (it *Iterator) NextPilot(stars []units.Equatorial, ci chunk.Iterator) (Match[int], bool) {
	if it.expectedTriangle == nil {
		return Match[int]{}, false
	}
	expected := *it.expectedTriangle

	for {
		for !step(&it.indexPA, &it.indexPB, &it.indexPC, len(it.pairPA), len(it.pairPB), len(it.pairPC)) {
			if !it.prepNewPilot(stars, ci) {
				return Match[int]{}, false
			}
		}

		a := it.pairPA[it.indexPA]
		b := it.pairPB[it.indexPB]
		c := it.pairPC[it.indexPC]

		if !a.Result.Has(expected.Output.A) || !b.Result.Has(expected.Output.B) || !c.Result.Has(expected.Output.C) {
			continue
		}

		pilot, ok := a.Result.FindNot(expected.Output.A)
		if !ok {
			continue
		}
		if !b.Result.Has(pilot) || !c.Result.Has(pilot) {
			continue
		}

		return Match[int]{
			Input:  it.indexP,
			Output: pilot,
			Weight: units.Decimal(a.Error + b.Error + c.Error),
		}, true
	}
}

func (it *Iterator) prepNewKernel(stars []units.Equatorial, ci chunk.Iterator) bool {
	if !ci.Next() {
		ci.Begin()
		if !it.kernelIt.Step() {
			return false
		}
	}

	it.input = StarTriangle[int]{A: it.kernelIt.I, B: it.kernelIt.J, C: it.kernelIt.K}

	sideA := stars[it.kernelIt.I].AngleDistance(stars[it.kernelIt.J])
	sideB := stars[it.kernelIt.I].AngleDistance(stars[it.kernelIt.K])
	sideC := stars[it.kernelIt.J].AngleDistance(stars[it.kernelIt.K])

	it.pairA = chunk.FindCloseRefRegion(ci, sideA, it.angleTolerance, nil, it.n)
	it.pairB = chunk.FindCloseRefRegion(ci, sideB, it.angleTolerance, nil, it.n)
	it.pairC = chunk.FindCloseRefRegion(ci, sideC, it.angleTolerance, nil, it.n)

	it.indexA = -1
	it.indexB, it.indexC = 0, 0
	return true
}

func (it *Iterator) prepNewPilot(stars []units.Equatorial, ci chunk.Iterator) bool {
	if it.expectedTriangle == nil {
		return false
	}
	expected := it.expectedTriangle.Input

	it.indexP++
	for it.indexP == expected.A || it.indexP == expected.B || it.indexP == expected.C {
		it.indexP++
	}
	if it.indexP >= len(stars) {
		return false
	}

	pilotIn := stars[it.indexP]
	sideA := stars[expected.A].AngleDistance(pilotIn)
	sideB := stars[expected.B].AngleDistance(pilotIn)
	sideC := stars[expected.C].AngleDistance(pilotIn)

	it.pairPA = chunk.FindCloseRefRegion(ci, sideA, it.angleTolerance, nil, it.n)
	it.pairPB = chunk.FindCloseRefRegion(ci, sideB, it.angleTolerance, nil, it.n)
	it.pairPC = chunk.FindCloseRefRegion(ci, sideC, it.angleTolerance, nil, it.n)

	it.indexPA = -1
	it.indexPB, it.indexPC = 0, 0
	return true
}
