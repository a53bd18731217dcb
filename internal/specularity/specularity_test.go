package specularity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

func TestTestOrientation(t *testing.T) {
	spec := New(239.0)

	pt1 := units.Vector3{X: -1.0, Y: 2.0, Z: 3.0}
	pt2 := units.Vector3{X: 4.0, Y: 5.0, Z: 6.0}
	pt3 := units.Vector3{X: 7.0, Y: 8.0, Z: -9.0}

	// pt2 x pt3 . pt1 = 240 -> positive
	assert.Equal(t, ValidPositive, spec.Test(pt1, pt2, pt3))
	// pt3 x pt2 . pt1 = -240 -> invalid
	assert.Equal(t, Invalid, spec.Test(pt1, pt3, pt2))
	// pt1 x pt3 . pt2 = -240 -> invalid
	assert.Equal(t, Invalid, spec.Test(pt2, pt1, pt3))
}

func TestTestBelowMinIsIgnore(t *testing.T) {
	spec := New(1000.0)
	pt1 := units.Vector3{X: -1.0, Y: 2.0, Z: 3.0}
	pt2 := units.Vector3{X: 4.0, Y: 5.0, Z: 6.0}
	pt3 := units.Vector3{X: 7.0, Y: 8.0, Z: -9.0}
	assert.Equal(t, Ignore, spec.Test(pt1, pt2, pt3))
}

func TestDefaultIsHandPickedConstant(t *testing.T) {
	assert.Equal(t, units.Decimal(0.001), Default().Min)
}

func TestSameTreatsIgnoreAsPass(t *testing.T) {
	spec := New(1000.0)
	pt1 := units.Vector3{X: -1.0, Y: 2.0, Z: 3.0}
	pt2 := units.Vector3{X: 4.0, Y: 5.0, Z: 6.0}
	pt3 := units.Vector3{X: 7.0, Y: 8.0, Z: -9.0}
	assert.True(t, spec.Same(pt1, pt2, pt3, pt1, pt3, pt2))
}

func TestSameRequiresMatchingOrientation(t *testing.T) {
	spec := New(239.0)
	pt1 := units.Vector3{X: -1.0, Y: 2.0, Z: 3.0}
	pt2 := units.Vector3{X: 4.0, Y: 5.0, Z: 6.0}
	pt3 := units.Vector3{X: 7.0, Y: 8.0, Z: -9.0}

	assert.True(t, spec.Same(pt1, pt2, pt3, pt1, pt2, pt3))
	assert.False(t, spec.Same(pt1, pt2, pt3, pt1, pt3, pt2))
}
