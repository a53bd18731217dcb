// Package generator builds PyramidDatabase/RegionalDatabase arrays from an
// in-memory star list: pairing stars within a field of view, computing the
// k-vector, limiting magnitude/double-stars/region density, and
// distributing fibonacci-lattice region centers for the regional chunk
// iterator.
package generator

import (
	"math"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

const goldenRatio = 1.618033988749895 // (1 + sqrt(5)) / 2

// FibonacciLattice distributes numPoints directions close to evenly over
// the sphere using the golden-ratio spiral construction.
func FibonacciLattice(numPoints int) []units.Equatorial {
	out := make([]units.Equatorial, numPoints)
	for i := 0; i < numPoints; i++ {
		theta := 2 * math.Pi * float64(i) / goldenRatio
		theta = math.Mod(theta, 2*math.Pi)
		phi := math.Acos(1.0 - 2.0*(float64(i)+0.5)/float64(numPoints))

		eq := units.Equatorial{Ra: units.Radians(theta)}
		eq.Dec = units.Radians(math.Pi/2 - phi)
		if eq.Ra < 0 {
			eq.Ra += units.Radians(2 * math.Pi)
		}
		out[i] = eq
	}
	return out
}

// Separation approximates the expected angular separation between
// adjacent fibonacci-lattice points, used to size chunk radii.
func Separation(numPoints int) units.Radians {
	return units.Radians(4 * math.Pi / (math.Sqrt(5) * float64(numPoints)))
}

// AngleToPoints returns the number of fibonacci lattice points needed so
// that any region of the given angular size is guaranteed to contain at
// least one point, via a two-piece power-law fit.
func AngleToPoints(angle units.Radians) int {
	deg := float64(angle.ToDegrees())
	if angle < units.Degrees(54.7).ToRadians() {
		return int(math.Round(37282.8117 * math.Pow(deg, -2.0031)))
	}
	return int(math.Round(16785.5187 * math.Pow(deg, -1.8178)))
}

// PointsToAngle is the inverse of AngleToPoints: the expected region size
// guaranteed covered by the given number of fibonacci lattice points.
func PointsToAngle(points int) units.Radians {
	if points > 12 {
		return units.Degrees(191.3844 * math.Pow(float64(points), -0.4990)).ToRadians()
	}
	return units.Degrees(210.8359 * math.Pow(float64(points), -0.5498)).ToRadians()
}
