// Package database implements the PyramidDatabase/RegionalDatabase search
// accelerator: turning an angular distance query into a trimmed range of
// candidate star pairs via the k-vector linear approximation.
package database

import (
	"errors"
	"math"

	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// ErrOutOfBounds is returned when a query index exceeds the catalogue or
// pair array bounds.
var ErrOutOfBounds = errors.New("database: index out of bounds")

// Database is the read-only view over the five precomputed arrays a
// generator builds once offline: the k-vector bin boundaries, the sorted
// star pair list, and the catalogue of unit directions.
type Database interface {
	GetPair(i int) kvector.StarPair[int]
	PairsSize() int

	GetCatalogue(i int) units.Equatorial
	CatalogueSize() int

	GetKVector(i int) int
	KVectorSize() int

	GetKLookup() kvector.KVector

	FOV() units.Radians
}

// FindStar resolves a catalogue index to its equatorial position.
func FindStar(db Database, index int) (units.Equatorial, error) {
	if index < db.CatalogueSize() {
		return db.GetCatalogue(index), nil
	}
	return units.Equatorial{}, ErrOutOfBounds
}

// AngleDistance returns the angular distance between the two catalogue
// stars referenced by pair.
func AngleDistance(db Database, pair kvector.StarPair[int]) (units.Radians, error) {
	if pair.A >= db.CatalogueSize() || pair.B >= db.CatalogueSize() {
		return 0, ErrOutOfBounds
	}
	a := db.GetCatalogue(pair.A)
	b := db.GetCatalogue(pair.B)
	return a.AngleDistance(b), nil
}

// GetBins returns the half-open range of k-vector bin indices [k_a, k_b)
// that may contain pairs within tolerance of find:
// k_a = floor((find-tol-q)/m), k_b = ceil((find+tol-q)/m).
func GetBins(k kvector.KVector, find, tolerance units.Radians) (lo, hi int, ok bool) {
	if tolerance < 0 {
		return 0, 0, false
	}
	if float64(find+tolerance) < k.Intercept || float64(find-tolerance) > k.Gradient*float64(k.NumBins-1)+k.Intercept {
		return 0, 0, false
	}

	ka := int(math.Floor((float64(find-tolerance) - k.Intercept) / k.Gradient))
	kb := int(math.Ceil((float64(find+tolerance) - k.Intercept) / k.Gradient))

	if ka < 0 {
		ka = 0
	}
	if kb > k.NumBins {
		kb = k.NumBins
	}
	if kb < ka {
		kb = ka
	}
	return ka, kb, true
}

// FindCloseRefRange returns the trimmed [lo,hi) index range into the pairs
// array such that every pair with angular distance in [find-tol, find+tol]
// has its index in the range, and both ends are within tolerance.
func FindCloseRefRange(db Database, find, tolerance units.Radians) (int, int) {
	ka, kb, ok := GetBins(db.GetKLookup(), find, tolerance)
	if !ok {
		return 0, 0
	}

	endBin := kb
	if db.KVectorSize() <= endBin {
		endBin--
	}

	lo := db.GetKVector(ka)
	hi := db.GetKVector(endBin)
	return TrimRange(db, find, tolerance, lo, hi)
}

// TrimRange walks the bin-approximated [lo,hi) range inward until both
// ends fall within tolerance of find, since bin boundaries only
// approximate the underlying sorted data.
func TrimRange(db Database, find, tolerance units.Radians, lo, hi int) (int, int) {
	pairsSize := db.PairsSize()
	start := lo
	if start > pairsSize-1 {
		start = pairsSize - 1
	}
	end := hi
	if end > pairsSize {
		end = pairsSize
	}

	for {
		valid := start < end && start < pairsSize-1
		distance, err := AngleDistance(db, db.GetPair(start))
		if !(err == nil && float64(tolerance) < math.Abs(float64(find-distance)) && valid) {
			break
		}
		start++
	}

	for {
		distance, err := AngleDistance(db, db.GetPair(end-1))
		if !(err == nil && float64(tolerance) < math.Abs(float64(find-distance)) && start < end) {
			break
		}
		end--
	}

	return start, end
}

// FindCloseRef materializes SearchResults for every pair within
// [find-tol, find+tol] into found, stopping silently once found reaches
// maxLen (maxLen <= 0 means unbounded).
func FindCloseRef(db Database, find, tolerance units.Radians, found []kvector.SearchResult, maxLen int) []kvector.SearchResult {
	lo, hi := FindCloseRefRange(db, find, tolerance)
	for i := lo; i < hi; i++ {
		if maxLen > 0 && len(found) >= maxLen {
			break
		}
		pair := db.GetPair(i)
		errVal := 1.0
		if distance, err := AngleDistance(db, pair); err == nil {
			errVal = math.Abs(float64(find - distance))
		}
		found = append(found, kvector.SearchResult{Result: pair, Error: errVal})
	}
	return found
}
