package generator

import (
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/TomCreusot/star-tracker-go/internal/catalog"
	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// ErrDatabaseTooSmall is returned when fewer than 3 star pairs fall within
// the requested field of view, too few to build a usable k-vector.
var ErrDatabaseTooSmall = kvector.ErrInvalidSize

// bitFieldWidth is the number of regions a database.BitField can track.
const bitFieldWidth = 64

// LimitMagnitude returns the stars whose magnitude falls strictly between
// minMagnitude and maxMagnitude (brighter stars have lower magnitude).
func LimitMagnitude(stars []catalog.Star, minMagnitude, maxMagnitude float64) []catalog.Star {
	out := make([]catalog.Star, 0, len(stars))
	for _, s := range stars {
		if s.Mag < maxMagnitude && minMagnitude < s.Mag {
			out = append(out, s)
		}
	}
	return out
}

// LimitDoubleStars removes stars within tolerance of an already-kept star,
// collapsing double/multiple star systems the sensor cannot resolve into a
// single catalogue entry.
func LimitDoubleStars(stars []catalog.Star, tolerance units.Radians) []catalog.Star {
	kept := make([]catalog.Star, 0, len(stars))
	for _, s := range stars {
		tooClose := false
		for _, k := range kept {
			if s.Pos.AngleDistance(k.Pos) < tolerance {
				tooClose = true
				break
			}
		}
		if !tooClose {
			kept = append(kept, s)
		}
	}
	return kept
}

// LimitRegions returns the subset of stars (processed brightest-first, see
// catalog.ByMagnitude) that gives every regionSize-radius neighborhood at
// least starsInRegion members without padding already-saturated regions.
// Panics if starsInRegion is below 4, the minimum a pyramid match needs.
//
// Candidate neighbors are narrowed with a catalog.SpatialIndex before the
// exact AngleDistance check, so this stays usable on whole-sky catalogues
// instead of degrading to the O(n^2) dense-sky case.
func LimitRegions(stars []catalog.Star, regionSize units.Radians, starsInRegion int) []catalog.Star {
	if starsInRegion < 4 {
		panic("generator: starsInRegion must be at least 4 for the pyramid method to work")
	}

	regionSizeDeg := float64(regionSize.ToDegrees())
	index := catalog.NewSpatialIndex(regionSizeDeg)

	added := make([]catalog.Star, 0, len(stars))
	addedCount := make([]int, 0, len(stars))

	for _, candidate := range stars {
		raDeg := float64(candidate.Pos.Ra.ToDegrees())
		decDeg := float64(candidate.Pos.Dec.ToDegrees())

		var region []int
		lonely := false
		for _, i := range index.Query(raDeg, decDeg, regionSizeDeg) {
			if candidate.Pos.AngleDistance(added[i].Pos) < regionSize {
				region = append(region, i)
				if addedCount[i] < starsInRegion {
					lonely = true
				}
			}
		}

		if len(region) < starsInRegion || lonely {
			for _, i := range region {
				addedCount[i]++
			}
			index.Add(raDeg, decDeg, len(added))
			added = append(added, candidate)
			addedCount = append(addedCount, len(region)+1)
		}
	}
	return added
}

// SkyCoverage returns the fraction (0..1) of a fibonacci-lattice sample of
// the sky where a regionSize-radius neighborhood contains at least
// starsInRegion stars. Uses a catalog.SpatialIndex over stars to avoid
// scanning the full catalogue per sample point.
func SkyCoverage(stars []catalog.Star, region units.Radians, starsInRegion int) units.Decimal {
	points := FibonacciLattice(AngleToPoints(region))
	if len(points) == 0 {
		return 0
	}

	regionDeg := float64(region.ToDegrees())
	index := catalog.NewSpatialIndex(regionDeg)
	for i, s := range stars {
		index.Add(float64(s.Pos.Ra.ToDegrees()), float64(s.Pos.Dec.ToDegrees()), i)
	}
	index.Compact()

	covered := 0
	for _, p := range points {
		raDeg := float64(p.Ra.ToDegrees())
		decDeg := float64(p.Dec.ToDegrees())
		count := 0
		for _, i := range index.Query(raDeg, decDeg, regionDeg) {
			if p.AngleDistance(stars[i].Pos) < region {
				count++
			}
		}
		if count >= starsInRegion {
			covered++
		}
	}
	return units.Decimal(covered) / units.Decimal(len(points))
}

// sortByMagnitude returns a brightest-first copy of stars, matching the
// order limit_regions/limit_double_stars expect their input pre-sorted in.
func sortByMagnitude(stars []catalog.Star) []catalog.Star {
	out := make([]catalog.Star, len(stars))
	copy(out, stars)
	sort.Sort(catalog.ByMagnitude(out))
	return out
}

func pairElements(stars []catalog.Star, fov units.Radians) []kvector.Element {
	elements := make([]kvector.Element, 0, len(stars))
	for i := 0; i < len(stars); i++ {
		for j := i + 1; j < len(stars); j++ {
			dist := stars[i].Pos.AngleDistance(stars[j].Pos)
			if dist < fov {
				elements = append(elements, kvector.Element{
					Pair: kvector.StarPair[int]{A: i, B: j},
					Dist: dist,
				})
			}
		}
	}
	sort.Slice(elements, func(i, j int) bool { return elements[i].Dist < elements[j].Dist })
	return elements
}

// GenDatabase builds a PyramidDatabase from stars: every pair of stars
// closer than fov becomes an entry of the pair list, sorted by distance and
// k-vector indexed to within tolerance; every star goes into the catalogue.
func GenDatabase(stars []catalog.Star, fov units.Radians, tolerance units.Radians) (database.PyramidDatabase, error) {
	elements := pairElements(stars, fov)
	if len(elements) < 3 {
		return database.PyramidDatabase{}, ErrDatabaseTooSmall
	}

	numBins := kvector.IdealBins(elements, tolerance)
	kLookup := kvector.New(numBins, elements[0].Dist, elements[len(elements)-1].Dist)

	bins, err := kLookup.GenerateBins(elements)
	if err != nil {
		return database.PyramidDatabase{}, err
	}

	pairs := make([]kvector.StarPair[int], len(elements))
	for i, e := range elements {
		pairs[i] = e.Pair
	}

	catalogueArr := make([]units.Equatorial, len(stars))
	for i, s := range stars {
		catalogueArr[i] = s.Pos
	}

	return database.PyramidDatabase{
		Fov:        fov,
		KLookup:    kLookup,
		KVectorArr: bins,
		Pairs:      pairs,
		Catalogue:  catalogueArr,
	}, nil
}

// GenDatabaseRegional builds a RegionalDatabase: a PyramidDatabase plus a
// per-star BitField recording which fibonacci-lattice region centers
// (AngleToPoints(fov) of them, at most 64) lie closer than chunkSize to
// the star.
func GenDatabaseRegional(
	stars []catalog.Star,
	fov units.Radians,
	tolerance units.Radians,
	chunkSize units.Radians,
) (database.RegionalDatabase, error) {
	pointsNum := AngleToPoints(fov)
	if pointsNum > bitFieldWidth {
		pointsNum = bitFieldWidth
	}
	if pointsNum < 1 {
		pointsNum = 1
	}
	chunks := FibonacciLattice(pointsNum)

	pyramid, err := GenDatabase(stars, fov, tolerance)
	if err != nil {
		return database.RegionalDatabase{}, err
	}

	fields := make([]database.BitField, len(pyramid.Catalogue))
	for i, star := range pyramid.Catalogue {
		var field database.BitField
		for c, chunk := range chunks {
			if star.AngleDistance(chunk) < chunkSize {
				field = field.Set(c)
			}
		}
		fields[i] = field
	}

	return database.RegionalDatabase{
		PyramidDatabase: pyramid,
		CatalogueField:  fields,
		NumFields:       pointsNum,
	}, nil
}

// ErrNoStars is returned by helpers that require a non-empty catalogue.
var ErrNoStars = errors.New("generator: no stars supplied")

// Build runs the standard generation pipeline a gen-database CLI invokes:
// sort brightest-first, drop unresolvable doubles, cap region density, then
// hand the survivors to GenDatabase, logging progress at each stage.
func Build(
	stars []catalog.Star,
	fov units.Radians,
	tolerance units.Radians,
	regionSize units.Radians,
	starsInRegion int,
	logger zerolog.Logger,
) (database.PyramidDatabase, error) {
	if len(stars) == 0 {
		return database.PyramidDatabase{}, ErrNoStars
	}

	sorted := sortByMagnitude(stars)
	logger.Debug().Int("stars", len(sorted)).Msg("sorted catalogue by magnitude")

	deduped := LimitDoubleStars(sorted, tolerance)
	logger.Debug().Int("stars", len(deduped)).Msg("removed double stars")

	limited := LimitRegions(deduped, regionSize, starsInRegion)
	logger.Info().Int("stars", len(limited)).Msg("limited region density")

	coverage := SkyCoverage(limited, regionSize, starsInRegion)
	logger.Info().Float64("coverage", float64(coverage)).Msg("computed sky coverage")

	return GenDatabase(limited, fov, tolerance)
}
