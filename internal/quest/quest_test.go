package quest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func TestSolveTooFewMatches(t *testing.T) {
	_, err := Solve(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrTooFewMatches)

	_, err = Solve([]units.Match[units.Vector3]{{Input: units.Vector3{X: 1}, Output: units.Vector3{X: 1}, Weight: 1}}, DefaultConfig())
	assert.ErrorIs(t, err, ErrTooFewMatches)
}

func TestSolveIdentityWhenAlreadyAligned(t *testing.T) {
	matches := []units.Match[units.Vector3]{
		{Input: units.Vector3{X: 1, Y: 0, Z: 0}, Output: units.Vector3{X: 1, Y: 0, Z: 0}, Weight: 1},
		{Input: units.Vector3{X: 0, Y: 1, Z: 0}, Output: units.Vector3{X: 0, Y: 1, Z: 0}, Weight: 1},
		{Input: units.Vector3{X: 0, Y: 0, Z: 1}, Output: units.Vector3{X: 0, Y: 0, Z: 1}, Weight: 1},
	}

	q, err := Solve(matches, DefaultConfig())
	require.NoError(t, err)

	angle := q.Angle()
	assert.InDelta(t, 0, float64(angle), 1e-6)
}

func TestSolveRecoversKnownRotation(t *testing.T) {
	rotation := units.Quaternion{W: math.Cos(0.3), X: 0, Y: 0, Z: math.Sin(0.3)}.Normalized()

	refs := []units.Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 0.6, Y: 0.8, Z: 0},
	}

	matches := make([]units.Match[units.Vector3], len(refs))
	for i, r := range refs {
		matches[i] = units.Match[units.Vector3]{Input: rotation.Rotate(r), Output: r, Weight: 1}
	}

	q, err := Solve(matches, DefaultConfig())
	require.NoError(t, err)

	for _, r := range refs {
		got := q.Rotate(r)
		want := rotation.Conjugate().Rotate(r)
		assert.InDelta(t, want.X, got.X, 1e-4)
		assert.InDelta(t, want.Y, got.Y, 1e-4)
		assert.InDelta(t, want.Z, got.Z, 1e-4)
	}
}

func TestSolveWeightsFavorHigherConfidenceMatches(t *testing.T) {
	rotation := units.Quaternion{W: math.Cos(0.2), X: 0, Y: math.Sin(0.2), Z: 0}.Normalized()

	refs := []units.Vector3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	matches := make([]units.Match[units.Vector3], len(refs))
	for i, r := range refs {
		matches[i] = units.Match[units.Vector3]{Input: rotation.Rotate(r), Output: r, Weight: 1}
	}
	// Perturb one observation but give it negligible weight; QUEST should
	// still recover a rotation close to the inverse of the true one.
	matches = append(matches, units.Match[units.Vector3]{
		Input:  units.Vector3{X: 0.6, Y: 0.8, Z: 0},
		Output: units.Vector3{X: 1, Y: 0, Z: 0},
		Weight: 1e-6,
	})

	q, err := Solve(matches, DefaultConfig())
	require.NoError(t, err)

	got := q.Rotate(refs[0])
	want := rotation.Conjugate().Rotate(refs[0])
	assert.InDelta(t, want.X, got.X, 1e-3)
	assert.InDelta(t, want.Y, got.Y, 1e-3)
	assert.InDelta(t, want.Z, got.Z, 1e-3)
}
