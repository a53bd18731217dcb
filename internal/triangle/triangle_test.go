package triangle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomCreusot/star-tracker-go/internal/chunk"
	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func TestConstructTriangleValid(t *testing.T) {
	a := kvector.StarPair[int]{A: 0, B: 1}
	b := kvector.StarPair[int]{A: 0, B: 3}
	c := kvector.StarPair[int]{A: 1, B: 3}

	tri, ok := ConstructTriangle(a, b, c)
	require.True(t, ok)
	assert.Equal(t, StarTriangle[int]{A: 0, B: 1, C: 3}, tri)
}

func TestConstructTriangleRejectsOpenChain(t *testing.T) {
	// a and b share no vertex: not a closed triangle.
	a := kvector.StarPair[int]{A: 0, B: 1}
	b := kvector.StarPair[int]{A: 2, B: 3}
	c := kvector.StarPair[int]{A: 1, B: 2}

	_, ok := ConstructTriangle(a, b, c)
	assert.False(t, ok)
}

func TestConstructTriangleRejectsDegenerateVertices(t *testing.T) {
	a := kvector.StarPair[int]{A: 0, B: 1}
	b := kvector.StarPair[int]{A: 0, B: 1}
	c := kvector.StarPair[int]{A: 0, B: 1}

	_, ok := ConstructTriangle(a, b, c)
	assert.False(t, ok)
}

func TestStepAdvancesAFastest(t *testing.T) {
	a, b, c := -1, 0, 0
	assert.True(t, step(&a, &b, &c, 2, 2, 2))
	assert.Equal(t, 0, a)
	assert.True(t, step(&a, &b, &c, 2, 2, 2))
	assert.Equal(t, 1, a)
	assert.Equal(t, 0, b)
	assert.True(t, step(&a, &b, &c, 2, 2, 2))
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.True(t, step(&a, &b, &c, 2, 2, 2))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)
	assert.True(t, step(&a, &b, &c, 2, 2, 2))
	assert.Equal(t, 0, a)
	assert.Equal(t, 0, b)
	assert.Equal(t, 1, c)
}

// buildTestDatabase constructs a 4-star catalogue on the celestial equator
// (so angular distance reduces to |ra delta|) with pairwise distances
// chosen to be pairwise distinct, avoiding symmetric-match ambiguity.
func buildTestDatabase(t *testing.T) *database.PyramidDatabase {
	ras := []units.Radians{0, 0.10, 0.23, 0.51}
	catalogue := make([]units.Equatorial, len(ras))
	for i, ra := range ras {
		catalogue[i] = units.Equatorial{Ra: ra, Dec: 0}
	}

	type withDist struct {
		pair kvector.StarPair[int]
		dist units.Radians
	}
	var all []withDist
	for i := 0; i < len(catalogue); i++ {
		for j := i + 1; j < len(catalogue); j++ {
			all = append(all, withDist{kvector.StarPair[int]{A: i, B: j}, catalogue[i].AngleDistance(catalogue[j])})
		}
	}
	// insertion sort by distance, ascending.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].dist < all[j-1].dist; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	pairs := make([]kvector.StarPair[int], len(all))
	elements := make([]kvector.Element, len(all))
	for i, w := range all {
		pairs[i] = w.pair
		elements[i] = kvector.Element{Pair: w.pair, Dist: w.dist}
	}

	tolerance := units.Radians(0.001)
	numBins := kvector.IdealBins(elements, tolerance)
	k := kvector.New(numBins, elements[0].Dist, elements[len(elements)-1].Dist)
	bins, err := k.GenerateBins(elements)
	require.NoError(t, err)

	return &database.PyramidDatabase{
		Fov:        catalogue[3].AngleDistance(catalogue[0]),
		KLookup:    k,
		KVectorArr: bins,
		Pairs:      pairs,
		Catalogue:  catalogue,
	}
}

func TestIteratorFindsTriangleAndPilot(t *testing.T) {
	db := buildTestDatabase(t)
	stars := db.Catalogue // observed stars identical to catalogue: zero noise

	it := New(8)
	it.Begin(units.Radians(0.001), stars)

	ci := chunk.NewNone(db)
	ci.Begin()

	match, ok := it.Next(stars, ci)
	require.True(t, ok)
	assert.Equal(t, StarTriangle[int]{A: 0, B: 1, C: 3}, match.Input)
	assert.Equal(t, StarTriangle[int]{A: 0, B: 1, C: 3}, match.Output)
	assert.InDelta(t, 0.0, float64(match.Weight), 1e-9)

	pilot, ok := it.NextPilot(stars, ci)
	require.True(t, ok)
	assert.Equal(t, 2, pilot.Input)
	assert.Equal(t, 2, pilot.Output)
}

func TestIteratorExhaustsWithTooFewStars(t *testing.T) {
	db := buildTestDatabase(t)
	stars := db.Catalogue[:2]

	it := New(8)
	it.Begin(units.Radians(0.001), stars)

	ci := chunk.NewNone(db)
	ci.Begin()

	_, ok := it.Next(stars, ci)
	assert.False(t, ok)
}
