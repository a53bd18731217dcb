package kvector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func elementsFromDistances(vals []float64) []Element {
	out := make([]Element, len(vals))
	for i, v := range vals {
		out[i] = Element{Pair: StarPair[int]{A: 0, B: 0}, Dist: units.Radians(v)}
	}
	return out
}

func TestIdealBins(t *testing.T) {
	vals := []float64{1.0, 2.0, 3.0, 3.0, 4.0, 4.5, 5.0, 6.0, 6.0, 6.1, 6.2, 6.3, 10.0}
	lst := elementsFromDistances(vals)

	assert.Equal(t, 9, IdealBins(lst, units.Radians(1.0)))

	lst[0].Dist = units.Radians(1.1)
	assert.Equal(t, 9, IdealBins(lst, units.Radians(1.0)))

	lst[0].Dist = units.Radians(0.9)
	assert.Equal(t, 10, IdealBins(lst, units.Radians(1.0)))
}

func TestGenerateBinsFailure(t *testing.T) {
	kvec := New(0, units.Radians(0.0), units.Radians(0.0))

	for _, vals := range [][]float64{{}, {0.0}, {0.0, 0.0}} {
		_, err := kvec.GenerateBins(elementsFromDistances(vals))
		require.ErrorIs(t, err, ErrInvalidSize)
	}
}

func TestGenerateBinsCombinedBins(t *testing.T) {
	dec := []float64{0.0, 0.0, 0.0, 1.0, 1.0, 2.0, 3.0, 5.0, 6.0, 10.0, 11.0, 27.0, 33.0, 33.0, 34.0}
	lst := elementsFromDistances(dec)
	const numBins = 5

	kvec := New(numBins, units.Radians(dec[0]), units.Radians(dec[len(dec)-1]))
	bins, err := kvec.GenerateBins(lst)
	require.NoError(t, err)
	require.Len(t, bins, numBins)

	assert.Equal(t, 0, bins[0])
	assert.Equal(t, 9, bins[1])
	assert.Equal(t, 11, bins[2])
	assert.Equal(t, 11, bins[3])
	assert.Equal(t, 15, bins[4])
}

func TestGenerateBinsSameBinsAsElements(t *testing.T) {
	dec := []float64{2.0, 3.0, 4.0, 5.0, 6.0, 7.0, 9.0, 10.0, 16.0, 33.0, 100.0, 190.0, 210.0, 211.0, 212.0}
	lst := elementsFromDistances(dec)
	const numBins = 15

	kvec := New(numBins, units.Radians(dec[0]), units.Radians(dec[len(dec)-1]))
	bins, err := kvec.GenerateBins(lst)
	require.NoError(t, err)
	require.Len(t, bins, numBins)

	want := []int{0, 9, 9, 10, 10, 10, 10, 11, 11, 11, 11, 11, 11, 12, 15}
	assert.Equal(t, want, bins)
}

func TestStarPairHelpers(t *testing.T) {
	pairA := StarPair[int]{A: 3, B: 2}
	pairB := StarPair[int]{A: 3, B: 1}
	same, ok := FindSame(pairA, pairB)
	require.True(t, ok)
	assert.Equal(t, 3, same)

	pairC := StarPair[int]{A: 1, B: 2}
	pairD := StarPair[int]{A: 3, B: 4}
	_, ok = FindSame(pairC, pairD)
	assert.False(t, ok)

	assert.True(t, HasSame(pairA, pairB))
	assert.False(t, HasSame(pairA, StarPair[int]{A: 0, B: 0}))

	assert.True(t, AreSame(StarPair[int]{A: 1, B: 2}, StarPair[int]{A: 2, B: 1}))
	assert.False(t, AreSame(StarPair[int]{A: 1, B: 2}, StarPair[int]{A: 2, B: 3}))

	p := StarPair[int]{A: 0, B: 1}
	assert.True(t, p.Has(0))
	assert.True(t, p.Has(1))
	assert.False(t, p.Has(2))

	same2, ok := StarPair[int]{A: 1, B: 1}.FindNot(1)
	assert.False(t, ok)
	same2, ok = StarPair[int]{A: 0, B: 1}.FindNot(0)
	require.True(t, ok)
	assert.Equal(t, 1, same2)
}

func TestSearchResultHelpers(t *testing.T) {
	a := SearchResult{Result: StarPair[int]{A: 1, B: 3}, Error: 1.0}
	b := SearchResult{Result: StarPair[int]{A: 1, B: 2}, Error: 2.0}
	assert.True(t, HasSameStar(a, b))

	c := SearchResult{Result: StarPair[int]{A: 2, B: 2}, Error: 2.0}
	assert.False(t, HasSameStar(a, c))

	options := []SearchResult{
		{Result: StarPair[int]{A: 0, B: 2}, Error: 1.2},
		{Result: StarPair[int]{A: 1, B: 0}, Error: 1.3},
	}
	idx, ok := IndexOfPair(StarPair[int]{A: 0, B: 1}, options)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	options2 := []SearchResult{
		{Result: StarPair[int]{A: 0, B: 2}, Error: 1.2},
		{Result: StarPair[int]{A: 1, B: 1}, Error: 1.3},
		{Result: StarPair[int]{A: 0, B: 0}, Error: 1.4},
	}
	_, ok = IndexOfPair(StarPair[int]{A: 0, B: 1}, options2)
	assert.False(t, ok)
}
