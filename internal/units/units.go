// Package units defines the angle and vector primitives shared across the
// star identification pipeline: Radians/Degrees/Hours, Equatorial
// coordinates, Vector3 directions and Quaternion rotations.
package units

import "math"

// Radians is an angle measured in radians.
type Radians float64

// Degrees is an angle measured in degrees.
type Degrees float64

// Hours is an angle measured in hours (1h = 15 degrees), used for right
// ascension expressed on a 24h clock.
type Hours float64

// Decimal is the real number representation used throughout the core.
// Kept as a distinct alias so precision can be retuned without touching
// call sites, matching the "Decimal" alias spec.md's geometry layer is
// parameterized on.
type Decimal = float64

// ToRadians converts an angle in degrees to radians.
func (d Degrees) ToRadians() Radians { return Radians(float64(d) * math.Pi / 180.0) }

// ToDegrees converts an angle in radians to degrees.
func (r Radians) ToDegrees() Degrees { return Degrees(float64(r) * 180.0 / math.Pi) }

// ToRadians converts an hour angle to radians (1h = 15 degrees).
func (h Hours) ToRadians() Radians { return Radians(float64(h) * 15.0 * math.Pi / 180.0) }

// ToHours converts radians to hours.
func (r Radians) ToHours() Hours { return Hours(float64(r) * 180.0 / (15.0 * math.Pi)) }

// Equatorial is a direction expressed as right ascension / declination.
// Ra is expected in [0, 2*pi), Dec in [-pi/2, pi/2].
type Equatorial struct {
	Ra  Radians
	Dec Radians
}

// Vector3 is a direction or point in 3D Cartesian space.
type Vector3 struct {
	X, Y, Z Decimal
}

// ToVector3 converts an equatorial direction to a unit Cartesian vector.
func (e Equatorial) ToVector3() Vector3 {
	cosDec := math.Cos(float64(e.Dec))
	return Vector3{
		X: cosDec * math.Cos(float64(e.Ra)),
		Y: cosDec * math.Sin(float64(e.Ra)),
		Z: math.Sin(float64(e.Dec)),
	}
}

// ToEquatorial converts a Cartesian direction back to right ascension /
// declination. The vector need not be normalized.
func (v Vector3) ToEquatorial() Equatorial {
	dec := math.Asin(clamp(v.Z/v.Norm(), -1, 1))
	ra := math.Atan2(v.Y, v.X)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	return Equatorial{Ra: Radians(ra), Dec: Radians(dec)}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Norm returns the Euclidean length of the vector.
func (v Vector3) Norm() Decimal {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) Decimal {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v x o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalized returns v scaled to unit length. Returns the zero vector if v
// is the zero vector.
func (v Vector3) Normalized() Vector3 {
	n := v.Norm()
	if n == 0 {
		return Vector3{}
	}
	return Vector3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// AngleDistance returns the angular distance in radians between two
// equatorial directions using the dot product of their unit vectors.
func (e Equatorial) AngleDistance(o Equatorial) Radians {
	a := e.ToVector3()
	b := o.ToVector3()
	return Radians(math.Acos(clamp(a.Dot(b), -1, 1)))
}

// Quaternion is a unit-norm rotation, scalar-first (w, x, y, z).
type Quaternion struct {
	W, X, Y, Z Decimal
}

// Identity returns the identity quaternion.
func Identity() Quaternion { return Quaternion{W: 1} }

// Conjugate returns the conjugate of q.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
}

// Norm returns the quaternion's Euclidean norm.
func (q Quaternion) Norm() Decimal {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns q scaled to unit norm.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 {
		return Identity()
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}

// Mul returns the Hamilton product q*o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Rotate rotates v by q via q*v*q_conjugate.
func (q Quaternion) Rotate(v Vector3) Vector3 {
	p := Quaternion{W: 0, X: v.X, Y: v.Y, Z: v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vector3{X: r.X, Y: r.Y, Z: r.Z}
}

// Angle returns the rotation angle represented by q, in radians.
func (q Quaternion) Angle() Radians {
	n := q.Normalized()
	return Radians(2 * math.Acos(clamp(n.W, -1, 1)))
}

// Match pairs an input value (observed) with an output value (catalog),
// carrying a weight used to rank ambiguous alternatives.
type Match[T any] struct {
	Input  T
	Output T
	Weight Decimal
}
