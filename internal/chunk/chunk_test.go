package chunk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func smallDatabase() *database.PyramidDatabase {
	catalogue := []units.Equatorial{
		{Ra: units.Degrees(0).ToRadians(), Dec: 0},
		{Ra: units.Degrees(10).ToRadians(), Dec: units.Degrees(10).ToRadians()},
		{Ra: units.Degrees(180).ToRadians(), Dec: units.Degrees(-45).ToRadians()},
		{Ra: units.Degrees(350).ToRadians(), Dec: units.Degrees(80).ToRadians()},
	}
	pairs := []kvector.StarPair[int]{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}, {A: 0, B: 3}}
	return &database.PyramidDatabase{
		Fov:        units.Degrees(20).ToRadians(),
		KLookup:    kvector.New(2, 0, 1),
		KVectorArr: []int{0, 4},
		Pairs:      pairs,
		Catalogue:  catalogue,
	}
}

func TestNoneVisitsExactlyOnce(t *testing.T) {
	db := smallDatabase()
	it := NewNone(db)
	it.Begin()
	assert.True(t, it.Next())
	assert.False(t, it.Next())
	assert.True(t, it.SameRegion(0))
}

func TestEquatorialSingleBand(t *testing.T) {
	db := smallDatabase()
	it := NewEquatorial(db, units.Degrees(200).ToRadians(), 1.0)
	it.Begin()
	count := 0
	for it.Next() {
		count++
	}
	assert.GreaterOrEqual(t, count, 1)
}

func TestEquatorialMultipleBandsTerminates(t *testing.T) {
	db := smallDatabase()
	it := NewEquatorial(db, units.Degrees(60).ToRadians(), 1.2)
	it.Begin()
	count := 0
	for it.Next() && count < 10000 {
		count++
	}
	assert.Less(t, count, 10000, "equatorial iterator must terminate")
	assert.Greater(t, count, 0)
}

func TestRandomiseParityVisitsEveryIndexOnce(t *testing.T) {
	const num = 10
	seen := make(map[int]bool)
	for i := 0; i < num; i++ {
		seen[RandomiseParity(i, num)] = true
	}
	assert.Len(t, seen, num)

	assert.Equal(t, 0, RandomiseParity(0, num))
	assert.Equal(t, 2, RandomiseParity(1, num))
	assert.Equal(t, 4, RandomiseParity(2, num))
	assert.Equal(t, 6, RandomiseParity(3, num))
	assert.Equal(t, 8, RandomiseParity(4, num))
	assert.Equal(t, 1, RandomiseParity(5, num))
}

func TestRandomiseNoneIsIdentity(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, i, RandomiseNone(i, 5))
	}
}

func TestWidenIntegerStepDivides180(t *testing.T) {
	for _, deg := range []float64{180, 90, 60, 20, 7} {
		step := WidenIntegerStep(units.Degrees(deg).ToRadians())
		ratio := float64(halfCircle.ToRadians()) / float64(step)
		assert.InDelta(t, math.Round(ratio), ratio, 1e-6, "deg=%v", deg)
	}
}

func TestDeclinationVisitsExpectedBandCount(t *testing.T) {
	db := smallDatabase()
	it := NewDeclination(db, units.Degrees(90).ToRadians(), 0.0, RandomiseNone)
	it.Begin()
	count := 0
	for it.Next() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestDeclinationSameRegion(t *testing.T) {
	db := smallDatabase()
	it := NewDeclination(db, units.Degrees(180).ToRadians(), 0.0, RandomiseNone)
	it.Begin()
	assert.True(t, it.Next())
	for i := 0; i < db.PairsSize(); i++ {
		_ = it.SameRegion(i)
	}
}

func TestAreaSearchFromPointBoundsContainCenter(t *testing.T) {
	db := smallDatabase()
	center := db.Catalogue[0]
	search := FromPoint(db, center, units.Degrees(20).ToRadians())
	search.Begin()
	assert.True(t, search.Next())
	assert.False(t, search.Next())
	assert.True(t, rangeHasDec(search.dec[0], search.dec[1], center))
}

func TestRegionalVisitsNumFieldsTimes(t *testing.T) {
	db := smallDatabase()
	regional := &database.RegionalDatabase{
		PyramidDatabase: *db,
		CatalogueField:  []database.BitField{1, 1, 2, 2},
		NumFields:       2,
	}
	it := NewRegional(regional)
	it.Begin()
	count := 0
	for it.Next() {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestRegionalSameRegionUsesBitfield(t *testing.T) {
	db := smallDatabase()
	regional := &database.RegionalDatabase{
		PyramidDatabase: *db,
		CatalogueField: []database.BitField{
			database.BitField(0).Set(0),
			database.BitField(0).Set(1),
			database.BitField(0).Set(1),
			database.BitField(0).Set(0),
		},
		NumFields: 2,
	}
	it := NewRegional(regional)
	it.Begin()
	assert.True(t, it.Next())
	assert.True(t, it.SameRegion(0))  // pair{0,1}: star0 in region 0
	assert.False(t, it.SameRegion(1)) // pair{1,2}: neither in region 0
}

func TestFindCloseRefRegionNoneReturnsMatches(t *testing.T) {
	db := smallDatabase()
	it := NewNone(db)
	it.Begin()
	it.Next()
	found := FindCloseRefRegion(it, units.Degrees(10).ToRadians(), units.Degrees(5).ToRadians(), nil, 0)
	assert.NotNil(t, found)
}
