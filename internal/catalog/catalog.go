// Package catalog provides the star catalog value types and angular-helper
// functions the identification pipeline's generator and demo CLIs load
// star lists through. Catalog CSV/HYG ingestion is out of scope (spec.md
// Non-goals) -- callers are expected to produce a []Star however suits
// their environment (an embedded table, a flat file, a test fixture) and
// hand it to internal/generator.
package catalog

import (
	"errors"
	"math"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// Sentinel errors for catalog operations.
var (
	// ErrCatalogNotLoaded is returned when querying a catalog that hasn't
	// been loaded.
	ErrCatalogNotLoaded = errors.New("catalog not loaded")

	// ErrInvalidCoordinates is returned when coordinates are out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Star is a single catalog entry: a direction, brightness, and optional
// identification fields. Pos is expected to already be a unit direction
// (Ra in [0, 2*pi), Dec in [-pi/2, pi/2]).
type Star struct {
	Mag  float64
	Spec string
	Name string
	Pos  units.Equatorial
}

// AngularDistance calculates the angular distance between two points on
// the sky using the Haversine formula. All inputs and output are in
// degrees, matching the teacher's float64-degree call sites; callers
// working in the identification pipeline's native units should instead
// use units.Equatorial.AngleDistance directly.
func AngularDistance(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := ra1 * math.Pi / 180.0
	dec1Rad := dec1 * math.Pi / 180.0
	ra2Rad := ra2 * math.Pi / 180.0
	dec2Rad := dec2 * math.Pi / 180.0

	dra := ra2Rad - ra1Rad
	ddec := dec2Rad - dec1Rad

	a := math.Pow(math.Sin(ddec/2), 2) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Pow(math.Sin(dra/2), 2)

	c := 2 * math.Asin(math.Sqrt(a))

	return c * 180.0 / math.Pi
}

// NormalizeRA normalizes a right ascension value to [0, 360) degrees.
func NormalizeRA(ra float64) float64 {
	for ra < 0 {
		ra += 360
	}
	for ra >= 360 {
		ra -= 360
	}
	return ra
}

// NormalizeDec clamps declination to [-90, 90] degrees.
func NormalizeDec(dec float64) float64 {
	if dec > 90 {
		return 90
	}
	if dec < -90 {
		return -90
	}
	return dec
}

// ByMagnitude sorts a slice of Star brightest (lowest magnitude) first, the
// order the generator's region-density cap and double-star merge require.
type ByMagnitude []Star

func (b ByMagnitude) Len() int           { return len(b) }
func (b ByMagnitude) Less(i, j int) bool { return b[i].Mag < b[j].Mag }
func (b ByMagnitude) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
