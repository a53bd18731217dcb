// Package chunk implements the ChunkIterator family: sweeps the celestial
// sphere in overlapping partitions, restricting database pair lookups to
// one region of sky at a time.
package chunk

import (
	"math"

	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/kvector"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func pairError(db database.Database, find units.Radians, pair kvector.StarPair[int]) float64 {
	if distance, err := database.AngleDistance(db, pair); err == nil {
		return math.Abs(float64(find - distance))
	}
	return 1.0
}

// Iterator partitions a Database into overlapping regions. Begin resets
// iteration; Next must be called once to enter the first region and
// returns false once regions are exhausted.
type Iterator interface {
	Begin()
	Next() bool
	Database() database.Database
	SameRegion(pairIndex int) bool
}

// FindCloseRefRegion forwards to the wrapped database and drops results
// whose pair does not satisfy it.SameRegion, appending survivors to found.
func FindCloseRefRegion(it Iterator, find, tolerance units.Radians, found []kvector.SearchResult, maxLen int) []kvector.SearchResult {
	db := it.Database()
	lo, hi := database.FindCloseRefRange(db, find, tolerance)
	for i := lo; i < hi; i++ {
		if maxLen > 0 && len(found) >= maxLen {
			break
		}
		if it.SameRegion(i) {
			pair := db.GetPair(i)
			found = append(found, kvector.SearchResult{Result: pair, Error: pairError(db, find, pair)})
		}
	}
	return found
}

const fullCircle = units.Degrees(360.0)
const halfCircle = units.Degrees(180.0)
const rightAngle = units.Degrees(90.0)

func rangeHasDec(loDec, hiDec units.Radians, p units.Equatorial) bool {
	return loDec <= p.Dec && p.Dec <= hiDec
}

func rangeHasRA(loRA, hiRA units.Radians, p units.Equatorial) bool {
	full := fullCircle.ToRadians()
	valid := (loRA <= p.Ra && p.Ra <= hiRA)
	if hiRA > full {
		valid = valid || p.Ra <= hiRA-full
	} else if loRA < 0 {
		valid = valid || loRA+full <= p.Ra
	}
	return valid
}

func pairInBounds(db database.Database, pairIndex int, loDec, hiDec, loRA, hiRA units.Radians) bool {
	pair := db.GetPair(pairIndex)
	p1, err1 := database.FindStar(db, pair.A)
	p2, err2 := database.FindStar(db, pair.B)
	if err1 != nil || err2 != nil {
		return false
	}
	validDec := rangeHasDec(loDec, hiDec, p1) || rangeHasDec(loDec, hiDec, p2)
	validRA := rangeHasRA(loRA, hiRA, p1) || rangeHasRA(loRA, hiRA, p2)
	return validDec && validRA
}

// None is a ChunkIterator with a single chunk covering the entire sphere.
type None struct {
	db      database.Database
	started bool
}

// NewNone constructs a chunk iterator that never restricts the region.
func NewNone(db database.Database) *None { return &None{db: db} }

func (n *None) Begin() { n.started = false }

func (n *None) Next() bool {
	result := n.started
	n.started = true
	return !result
}

func (n *None) Database() database.Database  { return n.db }
func (n *None) SameRegion(pairIndex int) bool { return true }

// Equatorial sweeps declination bands of height step, tiling each
// non-polar band with RA windows sized step*chunkSizeMultiplier, plus two
// polar caps.
type Equatorial struct {
	db                   database.Database
	indexDec, indexRA    int
	dec, ra              [2]units.Radians // [lo, hi]
	numDec, numRA        int
	chunkStep            units.Radians
	chunkSizeMultiplier  float64
}

// NewEquatorial constructs an Equatorial chunk iterator. chunkSizeMultiplier
// must be >= 1.
func NewEquatorial(db database.Database, step units.Radians, chunkSizeMultiplier float64) *Equatorial {
	if chunkSizeMultiplier < 1.0 {
		panic("chunk: chunkSizeMultiplier must be >= 1")
	}
	return &Equatorial{
		db:                  db,
		numDec:              ceilDiv(halfCircle.ToRadians(), step),
		chunkStep:           step,
		chunkSizeMultiplier: chunkSizeMultiplier,
	}
}

func ceilDiv(total, step units.Radians) int {
	return int(math.Ceil(float64(total) / float64(step)))
}

func (e *Equatorial) Begin() {
	e.indexDec, e.indexRA = 0, 0
	e.dec = [2]units.Radians{0, 0}
	e.ra = [2]units.Radians{0, 0}
	e.numRA = 0
}

func (e *Equatorial) Next() bool {
	if e.indexRA < e.numRA {
		step := fullCircle.ToRadians() / units.Radians(e.numRA)
		size := step * units.Radians(e.chunkSizeMultiplier)
		center := step*units.Radians(e.indexRA) + step/2.0
		e.ra = [2]units.Radians{center - size/2.0, center + size/2.0}
		e.indexRA++
		return true
	}

	if e.indexDec == 0 {
		up := rightAngle.ToRadians()
		overshoot := e.chunkStep * units.Radians(e.chunkSizeMultiplier-1.0) / 2.0
		e.dec = [2]units.Radians{-up, e.chunkStep - up + overshoot}
		e.numRA = 0
		e.ra = [2]units.Radians{0, fullCircle.ToRadians()}
		e.indexRA = 0
		e.indexDec++
		return true
	}

	if e.indexDec == e.numDec-1 {
		up := rightAngle.ToRadians()
		overshoot := e.chunkStep * units.Radians(e.chunkSizeMultiplier-1.0) / 2.0
		e.dec = [2]units.Radians{up - e.chunkStep - overshoot, up}
		e.numRA = 0
		e.ra = [2]units.Radians{0, fullCircle.ToRadians()}
		e.indexRA = 0
		e.indexDec++
		return true
	}

	if e.indexDec < e.numDec {
		decSize := e.chunkStep * units.Radians(e.chunkSizeMultiplier)
		center := e.chunkStep/2.0 + e.chunkStep*units.Radians(e.indexDec) - rightAngle.ToRadians()
		e.dec = [2]units.Radians{center - decSize/2.0, center + decSize/2.0}

		eqDecBand := units.Radians(math.Abs(float64(center))) - decSize/2.0
		if eqDecBand < 0 {
			eqDecBand = 0
		}

		angle := units.Radians(math.Cos(float64(eqDecBand)) * 2.0 * math.Pi)
		e.numRA = int(math.Ceil(float64(angle) / float64(e.chunkStep)))
		e.indexRA = 0
		e.indexDec++
		return e.Next()
	}

	return false
}

func (e *Equatorial) Database() database.Database { return e.db }

func (e *Equatorial) SameRegion(pairIndex int) bool {
	return pairInBounds(e.db, pairIndex, e.dec[0], e.dec[1], e.ra[0], e.ra[1])
}

// RandomiseFunc reorders declination band visitation. See RandomiseParity
// and RandomiseNone.
type RandomiseFunc func(index, numElements int) int

// RandomiseNone visits bands in order.
func RandomiseNone(index, _ int) int { return index }

// RandomiseParity visits all even bands first, then all odd bands, so
// successive chunks (which overlap) are never immediate neighbors.
func RandomiseParity(index, numElements int) int {
	half := (numElements + 1) / 2
	if index < half {
		return index * 2
	}
	return (index-half)*2 + 1
}

// Declination sweeps declination-only bands with no RA subdivision.
type Declination struct {
	db                  database.Database
	randomiser          RandomiseFunc
	index, num          int
	dec                 [2]units.Radians
	chunkStep           units.Radians
	chunkSizeMultiplier float64
}

// NewDeclination constructs a Declination chunk iterator. step is widened
// so that 180deg/step is an integer (WidenIntegerStep); sizeAddition is
// the fractional overlap added to chunkStep to get the chunk size.
func NewDeclination(db database.Database, step units.Radians, sizeAddition float64, randomiser RandomiseFunc) *Declination {
	trueStep := WidenIntegerStep(step)
	num := int(math.Floor(float64(halfCircle.ToRadians())/float64(trueStep))) + 1
	return &Declination{
		db:                  db,
		randomiser:          randomiser,
		num:                 num,
		chunkStep:           trueStep,
		chunkSizeMultiplier: 1.0 + sizeAddition,
	}
}

// WidenIntegerStep widens step so 180deg/step is an integer: the step
// count 180deg/step plus a slack of 0.2deg (taken in radians) is floored.
// A step above 180.2deg becomes a full circle.
func WidenIntegerStep(step units.Radians) units.Radians {
	overflow := units.Degrees(0.2).ToRadians()
	if halfCircle.ToRadians()+overflow < step {
		return fullCircle.ToRadians()
	}
	divisor := float64(halfCircle.ToRadians()) / float64(step)
	return halfCircle.ToRadians() / units.Radians(math.Floor(divisor+float64(overflow)))
}

func (d *Declination) Begin() {
	d.index = 0
	d.dec = [2]units.Radians{0, 0}
}

func (d *Declination) Next() bool {
	if d.num <= d.index {
		return false
	}
	actualIndex := d.randomiser(d.index, d.num)
	halfStep := d.chunkStep * units.Radians(d.chunkSizeMultiplier) / 2.0
	dec := units.Radians(float64(actualIndex)*float64(d.chunkStep)) - rightAngle.ToRadians()
	d.dec = [2]units.Radians{dec - halfStep, dec + halfStep}
	d.index++
	return true
}

func (d *Declination) Database() database.Database { return d.db }

func (d *Declination) SameRegion(pairIndex int) bool {
	pair := d.db.GetPair(pairIndex)
	p1, err1 := database.FindStar(d.db, pair.A)
	p2, err2 := database.FindStar(d.db, pair.B)
	if err1 != nil || err2 != nil {
		return false
	}
	return rangeHasDec(d.dec[0], d.dec[1], p1) || rangeHasDec(d.dec[0], d.dec[1], p2)
}

// AreaSearch is a single chunk bounded by caller-supplied RA/Dec ranges,
// used for warm-start queries near a known direction.
type AreaSearch struct {
	db      database.Database
	ra, dec [2]units.Radians
	started bool
}

// FromRange constructs an AreaSearch over explicit RA/Dec bounds.
func FromRange(db database.Database, raLo, raHi, decLo, decHi units.Radians) *AreaSearch {
	return &AreaSearch{db: db, ra: [2]units.Radians{raLo, raHi}, dec: [2]units.Radians{decLo, decHi}}
}

// FromPoint constructs an AreaSearch as +/-fov/2 around center on both axes.
func FromPoint(db database.Database, center units.Equatorial, fov units.Radians) *AreaSearch {
	return FromRange(db,
		center.Ra-fov/2.0, center.Ra+fov/2.0,
		center.Dec-fov/2.0, center.Dec+fov/2.0)
}

func (a *AreaSearch) Begin() { a.started = false }

func (a *AreaSearch) Next() bool {
	val := a.started
	a.started = true
	return !val
}

func (a *AreaSearch) Database() database.Database { return a.db }

func (a *AreaSearch) SameRegion(pairIndex int) bool {
	return pairInBounds(a.db, pairIndex, a.dec[0], a.dec[1], a.ra[0], a.ra[1])
}

// Regional uses a RegionalDatabase's per-star BitField to restrict pairs
// to stars sharing a fibonacci-lattice region with the current index.
type Regional struct {
	db      *database.RegionalDatabase
	index   int
	started bool
}

// NewRegional constructs a Regional chunk iterator over db.
func NewRegional(db *database.RegionalDatabase) *Regional {
	return &Regional{db: db}
}

func (r *Regional) Begin() {
	r.index = 0
	r.started = false
}

func (r *Regional) Next() bool {
	if r.started {
		r.index++
	}
	r.started = true
	return r.index < r.db.NumFields
}

func (r *Regional) Database() database.Database { return &r.db.PyramidDatabase }

func (r *Regional) SameRegion(pairIndex int) bool {
	pair := r.db.GetPair(pairIndex)
	if pair.A >= len(r.db.CatalogueField) || pair.B >= len(r.db.CatalogueField) {
		return false
	}
	return r.db.CatalogueField[pair.A].Has(r.index) || r.db.CatalogueField[pair.B].Has(r.index)
}
