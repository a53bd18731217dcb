package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TomCreusot/star-tracker-go/internal/catalog"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func star(mag float64, ra, dec units.Degrees, name string) catalog.Star {
	return catalog.Star{
		Mag:  mag,
		Name: name,
		Pos:  units.Equatorial{Ra: ra.ToRadians(), Dec: dec.ToRadians()},
	}
}

func TestLimitMagnitude(t *testing.T) {
	stars := []catalog.Star{
		star(-30.0, 0, 0, "1"),
		star(-20.0, 0, 0, "2"),
		star(-10.0, 0, 0, "3"),
		star(0.0, 0, 0, "4"),
		star(1.0, 0, 0, "5"),
		star(1.99999, 0, 0, "6"),
		star(2.0, 0, 0, "7"),
	}

	out := LimitMagnitude(stars, -11.0, 2.0)
	require.Len(t, out, 4)
	assert.Equal(t, "3", out[0].Name)
	assert.Equal(t, "4", out[1].Name)
	assert.Equal(t, "5", out[2].Name)
	assert.Equal(t, "6", out[3].Name)
}

func TestLimitMagnitudeInvalidBoundsReturnsEmpty(t *testing.T) {
	stars := []catalog.Star{star(-30, 0, 0, "1"), star(-20, 0, 0, "2"), star(-10, 0, 0, "3")}
	out := LimitMagnitude(stars, 100.0, -100.0)
	assert.Empty(t, out)
}

func TestLimitRegionsPanicsBelowFour(t *testing.T) {
	stars := []catalog.Star{star(0, 0, 0, "a"), star(0, 0, 0, "b"), star(0, 0, 0, "c")}
	assert.Panics(t, func() { LimitRegions(stars, 0, 3) })
}

func TestLimitRegionsDropsOversaturatedNeighbors(t *testing.T) {
	// A tight cluster of 8 stars all within regionSize of each other: once
	// every member's neighbor count reaches starsInRegion, later members in
	// the same cluster should be dropped.
	var stars []catalog.Star
	for i := 0; i < 8; i++ {
		stars = append(stars, star(float64(i), units.Degrees(0), units.Degrees(float64(i)*0.1), "cluster"))
	}
	// A far-away isolated star must always survive: its region starts empty.
	stars = append(stars, star(0, units.Degrees(180), units.Degrees(0), "isolated"))

	out := LimitRegions(stars, units.Degrees(3.0).ToRadians(), 4)

	assert.Less(t, len(out), len(stars), "oversaturated cluster members should be dropped")

	foundIsolated := false
	for _, s := range out {
		if s.Name == "isolated" {
			foundIsolated = true
		}
	}
	assert.True(t, foundIsolated, "an isolated star must never be dropped")
}

func TestLimitDoubleStars(t *testing.T) {
	stars := []catalog.Star{
		star(0, 0, 0, "a"),
		star(1, 0, 0.0001, "b"), // collapses into "a"
		star(2, 10, 10, "c"),
	}
	out := LimitDoubleStars(stars, units.Degrees(0.01).ToRadians())
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].Name)
	assert.Equal(t, "c", out[1].Name)
}

func TestSkyCoverageFullWhenDense(t *testing.T) {
	var stars []catalog.Star
	for ra := 0; ra < 360; ra += 10 {
		for dec := -80; dec <= 80; dec += 10 {
			stars = append(stars, star(0, units.Degrees(ra), units.Degrees(dec), "s"))
		}
	}
	coverage := SkyCoverage(stars, units.Degrees(15).ToRadians(), 1)
	assert.Greater(t, coverage, units.Decimal(0.5))
}

func TestSkyCoverageZeroWhenEmpty(t *testing.T) {
	coverage := SkyCoverage(nil, units.Degrees(10).ToRadians(), 1)
	assert.Equal(t, units.Decimal(0), coverage)
}

func buildTestCatalogue(n int) []catalog.Star {
	points := FibonacciLattice(n)
	stars := make([]catalog.Star, n)
	for i, p := range points {
		stars[i] = catalog.Star{Mag: float64(i), Name: "", Pos: p}
	}
	return stars
}

func TestGenDatabaseBuildsPairsWithinFOV(t *testing.T) {
	stars := buildTestCatalogue(100)
	fov := units.Degrees(30).ToRadians()
	tolerance := units.Degrees(0.001).ToRadians()

	db, err := GenDatabase(stars, fov, tolerance)
	require.NoError(t, err)

	assert.Equal(t, len(stars), db.CatalogueSize())
	assert.Greater(t, db.PairsSize(), 0)
	for i := 0; i < db.PairsSize(); i++ {
		pair := db.GetPair(i)
		dist := stars[pair.A].Pos.AngleDistance(stars[pair.B].Pos)
		assert.Less(t, dist, fov)
	}
}

func TestGenDatabaseTooFewPairs(t *testing.T) {
	stars := []catalog.Star{star(0, 0, 0, "a"), star(0, 90, 0, "b")}
	_, err := GenDatabase(stars, units.Degrees(1).ToRadians(), units.Degrees(0.01).ToRadians())
	assert.ErrorIs(t, err, ErrDatabaseTooSmall)
}

func TestGenDatabaseRegionalSetsBitField(t *testing.T) {
	stars := buildTestCatalogue(60)
	fov := units.Degrees(30).ToRadians()
	tolerance := units.Degrees(0.001).ToRadians()

	db, err := GenDatabaseRegional(stars, fov, tolerance, fov)
	require.NoError(t, err)
	assert.Greater(t, db.NumFields, 0)
	assert.Len(t, db.CatalogueField, len(stars))

	hasAnyBitSet := false
	for _, field := range db.CatalogueField {
		if field != 0 {
			hasAnyBitSet = true
			break
		}
	}
	assert.True(t, hasAnyBitSet)
}
