package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type triple struct{ i, j, k int }

func collect(n int) []triple {
	it := New(n)
	it.Begin()
	var out []triple
	for it.Step() {
		out = append(out, triple{it.I, it.J, it.K})
	}
	return out
}

func TestEnumeratesEveryTripleExactlyOnce(t *testing.T) {
	const n = 6
	triples := collect(n)

	seen := make(map[triple]bool)
	for _, tr := range triples {
		assert.False(t, seen[tr], "duplicate triple %v", tr)
		seen[tr] = true
		assert.True(t, 0 <= tr.i && tr.i < tr.j && tr.j < tr.k && tr.k < n)
	}

	expected := n * (n - 1) * (n - 2) / 6
	assert.Len(t, triples, expected)
}

func TestWidestSpreadFirst(t *testing.T) {
	triples := collect(7)
	prevSpread := triples[0].k - triples[0].i
	for _, tr := range triples {
		spread := tr.k - tr.i
		assert.LessOrEqual(t, spread, prevSpread, "spread must not increase: %v", tr)
		prevSpread = spread
	}
}

func TestTooFewStarsProducesNothing(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		triples := collect(n)
		assert.Empty(t, triples, "n=%d", n)
	}
}

func TestExactlyThreeStarsYieldsOneTriple(t *testing.T) {
	triples := collect(3)
	assert.Equal(t, []triple{{0, 1, 2}}, triples)
}
