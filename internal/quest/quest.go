// Package quest implements the QUEST (QUaternion ESTimator) attitude
// determination algorithm: Davenport's q-method recast as a Newton solve
// for the largest eigenvalue of the 4x4 K matrix, turning a weighted set
// of matched body-frame/reference-frame direction pairs into the unit
// quaternion that best rotates one onto the other in a least-squares
// sense.
package quest

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// ErrTooFewMatches is returned when fewer than two direction pairs are
// given; attitude is unobservable from a single direction pair (or zero).
var ErrTooFewMatches = errors.New("quest: at least two matches are required")

// ErrDidNotConverge is returned when the Newton iteration fails to settle
// within MaxIterations. Solve returns units.Identity() alongside this
// error, not its unconverged estimate.
var ErrDidNotConverge = errors.New("quest: newton iteration did not converge")

// DefaultLambdaPrecision is the default Newton convergence tolerance, at
// unit-weight scale. Tighten it for 32-bit geometry, per spec.md 9.
const DefaultLambdaPrecision = 0.1

// DefaultMaxIterations bounds the Newton loop so a coplanar or degenerate
// input can never spin forever.
const DefaultMaxIterations = 100

// Config tunes the Newton solve.
type Config struct {
	LambdaPrecision units.Decimal
	MaxIterations   int
}

// DefaultConfig returns the standard QUEST tuning.
func DefaultConfig() Config {
	return Config{LambdaPrecision: DefaultLambdaPrecision, MaxIterations: DefaultMaxIterations}
}

// Solve runs QUEST over matches (Input = observed/body-frame direction,
// Output = catalog/reference-frame direction, Weight = nonnegative
// confidence) and returns the attitude quaternion q, scalar part
// nonnegative, for which q.Rotate(Input) best matches Output: the inverse
// of the rotation that carries reference directions onto body directions.
// On Newton non-convergence, returns units.Identity() alongside
// ErrDidNotConverge rather than a fabricated answer.
func Solve(matches []units.Match[units.Vector3], cfg Config) (units.Quaternion, error) {
	if len(matches) < 2 {
		return units.Identity(), ErrTooFewMatches
	}
	if cfg.LambdaPrecision <= 0 {
		cfg.LambdaPrecision = DefaultLambdaPrecision
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	b := mat.NewDense(3, 3, nil)
	weightSum := 0.0
	for _, m := range matches {
		weightSum += m.Weight
		obs := [3]float64{m.Input.X, m.Input.Y, m.Input.Z}
		ref := [3]float64{m.Output.X, m.Output.Y, m.Output.Z}
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				b.Set(r, c, b.At(r, c)+m.Weight*obs[r]*ref[c])
			}
		}
	}

	s := mat.NewDense(3, 3, nil)
	s.Add(b, b.T())

	sigma := b.At(0, 0) + b.At(1, 1) + b.At(2, 2)

	z := [3]float64{
		b.At(1, 2) - b.At(2, 1),
		b.At(2, 0) - b.At(0, 2),
		b.At(0, 1) - b.At(1, 0),
	}

	kappa := cofactorTrace(s)
	detS := mat.Det(s)

	var s2 mat.Dense
	s2.Mul(s, s)

	sz := matVec(s, z)
	zDotSz := dot(z[:], sz[:])

	s2z := matVec(&s2, z)
	zDotS2z := dot(z[:], s2z[:])

	a := sigma*sigma - kappa
	bb := sigma*sigma + dot(z[:], z[:])
	c := detS + zDotSz
	d := zDotS2z

	lambda := weightSum
	converged := false
	for i := 0; i < cfg.MaxIterations; i++ {
		f := lambda*lambda*lambda*lambda - (a+bb)*lambda*lambda - c*lambda + (a*bb + c*sigma - d)
		fPrime := 4*lambda*lambda*lambda - 2*(a+bb)*lambda - c
		if fPrime == 0 {
			break
		}
		next := lambda - f/fPrime
		if math.Abs(next-lambda) < cfg.LambdaPrecision {
			lambda = next
			converged = true
			break
		}
		lambda = next
	}

	alpha := lambda*lambda - sigma*sigma + kappa
	beta := lambda - sigma
	gamma := (lambda+sigma)*alpha - detS

	x := [3]float64{}
	alphaZ := scale(z[:], alpha)
	betaSz := scale(sz[:], beta)
	for i := 0; i < 3; i++ {
		x[i] = alphaZ[i] + betaSz[i] + s2z[i]
	}

	q := units.Quaternion{W: gamma, X: x[0], Y: x[1], Z: x[2]}.Normalized()
	if q.W < 0 {
		q = units.Quaternion{W: -q.W, X: -q.X, Y: -q.Y, Z: -q.Z}
	}

	if !converged {
		return units.Identity(), ErrDidNotConverge
	}
	return q, nil
}

// cofactorTrace returns the trace of the adjugate (classical adjoint) of a
// symmetric 3x3 matrix, i.e. the sum of its three principal 2x2 minors.
func cofactorTrace(m *mat.Dense) float64 {
	minor := func(r0, r1, c0, c1 int) float64 {
		return m.At(r0, c0)*m.At(r1, c1) - m.At(r0, c1)*m.At(r1, c0)
	}
	return minor(1, 2, 1, 2) + minor(0, 2, 0, 2) + minor(0, 1, 0, 1)
}

func matVec(m *mat.Dense, v [3]float64) [3]float64 {
	var out [3]float64
	for r := 0; r < 3; r++ {
		sum := 0.0
		for c := 0; c < 3; c++ {
			sum += m.At(r, c) * v[c]
		}
		out[r] = sum
	}
	return out
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func scale(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}
