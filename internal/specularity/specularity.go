// Package specularity tests whether a triangle of star directions has the
// same chirality as its catalog match, rejecting mirror-image mismatches
// before they reach pyramid confirmation.
package specularity

import "github.com/TomCreusot/star-tracker-go/internal/units"

// Result is the outcome of testing a triangle's orientation.
type Result int

const (
	// Invalid means the triangle has negative specularity.
	Invalid Result = iota
	// ValidPositive means the triangle has positive specularity.
	ValidPositive
	// Ignore means the triangle is too close to a straight line to
	// measure orientation reliably.
	Ignore
)

// Specularity tests the chirality of a 3-vertex triangle of unit
// directions against a minimum-area threshold.
type Specularity struct {
	Min units.Decimal
}

// Default returns the specularity test with the hand-picked threshold
// 0.001, which ensures all triangles not close to a straight line are
// considered valid.
func Default() Specularity {
	return Specularity{Min: 0.001}
}

// New constructs a Specularity test with an explicit minimum. Specularity
// typically ranges from ~0.0001 to ~0.01; a min of 1.0 disables the test
// (every triangle is Ignore).
func New(min units.Decimal) Specularity {
	return Specularity{Min: min}
}

// Test computes (b x c) . a for triangle (a, b, c) and classifies the
// sign, returning Ignore if the magnitude is below Min.
func (s Specularity) Test(a, b, c units.Vector3) Result {
	cross := b.Cross(c).Dot(a)
	if abs(cross) < s.Min {
		return Ignore
	}
	if cross > 0.0 {
		return ValidPositive
	}
	return Invalid
}

// Same reports whether two triangles share orientation, treating either
// side being Ignore as a pass.
func (s Specularity) Same(a1, b1, c1, a2, b2, c2 units.Vector3) bool {
	ra := s.Test(a1, b1, c1)
	rb := s.Test(a2, b2, c2)
	return ra == rb || ra == Ignore || rb == Ignore
}

func abs(x units.Decimal) units.Decimal {
	if x < 0 {
		return -x
	}
	return x
}
