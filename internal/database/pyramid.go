package database

import (
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// PyramidDatabase is the basic Database: five arrays built once offline by
// a generator (fov, k-vector lookup equation, k-vector bin boundaries, the
// sorted pair list, and the catalogue of directions).
type PyramidDatabase struct {
	Fov       units.Radians
	KLookup   kvector.KVector
	KVectorArr []int
	Pairs     []kvector.StarPair[int]
	Catalogue []units.Equatorial
}

func (d *PyramidDatabase) GetPair(i int) kvector.StarPair[int] { return d.Pairs[i] }
func (d *PyramidDatabase) PairsSize() int                      { return len(d.Pairs) }
func (d *PyramidDatabase) GetCatalogue(i int) units.Equatorial { return d.Catalogue[i] }
func (d *PyramidDatabase) CatalogueSize() int                  { return len(d.Catalogue) }
func (d *PyramidDatabase) GetKVector(i int) int                { return d.KVectorArr[i] }
func (d *PyramidDatabase) KVectorSize() int                    { return len(d.KVectorArr) }
func (d *PyramidDatabase) GetKLookup() kvector.KVector         { return d.KLookup }
func (d *PyramidDatabase) FOV() units.Radians                  { return d.Fov }

// BitField is a fixed-width bitset recording which fibonacci lattice
// regions a catalogue star falls within, one bit per region.
type BitField uint64

// Set returns b with bit k set.
func (b BitField) Set(k int) BitField { return b | (1 << uint(k)) }

// Has reports whether bit k is set.
func (b BitField) Has(k int) bool { return b&(1<<uint(k)) != 0 }

// RegionalDatabase is a PyramidDatabase plus a per-star bitfield recording
// fibonacci-lattice region membership, consumed by ChunkIteratorRegional.
type RegionalDatabase struct {
	PyramidDatabase
	CatalogueField []BitField
	NumFields      int
}
