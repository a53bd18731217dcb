// Package constellation ties the k-vector database, chunk iteration,
// triangle matching, specularity and pilot confirmation together into the
// top-level lost-in-space identification state machine: Find walks every
// candidate observed/catalog triangle until it can confirm a 4-star
// pyramid, falls back to a bare triangle when the caller allows one, or
// reports why it gave up.
package constellation

import (
	"time"

	"github.com/TomCreusot/star-tracker-go/internal/chunk"
	"github.com/TomCreusot/star-tracker-go/internal/database"
	"github.com/TomCreusot/star-tracker-go/internal/specularity"
	"github.com/TomCreusot/star-tracker-go/internal/triangle"
	"github.com/TomCreusot/star-tracker-go/internal/units"
)

// Status is the outcome kind Find reports. Success and the three error
// variants are all data-carrying: even the error variants may return a
// best-effort fallback match and always report the accumulated fails
// count, since AbandonSearch and the caller both want that value.
type Status int

const (
	// Success means Matches holds a verified 3- or 4-star correspondence.
	Success Status = iota
	// ErrorNoTriangleMatch means no observed triangle ever resolved to a
	// specularity-consistent catalog triangle.
	ErrorNoTriangleMatch
	// ErrorAborted means the AbandonSearch policy gave up before a
	// pyramid (or an acceptable triangle fallback) was found.
	ErrorAborted
	// ErrorInsufficientPyramids means triangles matched but the caller's
	// match-count range required a 4-star pyramid and none was found.
	ErrorInsufficientPyramids
)

// String names the status for logging.
func (s Status) String() string {
	switch s {
	case Success:
		return "Success"
	case ErrorNoTriangleMatch:
		return "ErrorNoTriangleMatch"
	case ErrorAborted:
		return "ErrorAborted"
	case ErrorInsufficientPyramids:
		return "ErrorInsufficientPyramids"
	default:
		return "Unknown"
	}
}

// MatchRange is the desired match-count range, limited in practice to
// 3..=3, 3..=4 or 4..=4 per spec.md 6.
type MatchRange struct {
	Min, Max int
}

func (r MatchRange) allows3() bool { return r.Min <= 3 }
func (r MatchRange) allows4() bool { return r.Max >= 4 }

// AbandonSearch is polled at triangle boundaries to decide whether the
// search should give up early. fails is the accumulated recoverable
// failure count for the current Find call.
type AbandonSearch interface {
	ShouldAbort(fails int) bool
}

// Never never aborts.
type Never struct{}

// ShouldAbort always returns false.
func (Never) ShouldAbort(int) bool { return false }

// MaxFailures aborts once the failure count exceeds the configured limit.
type MaxFailures int

// ShouldAbort reports whether fails exceeds the configured maximum.
func (m MaxFailures) ShouldAbort(fails int) bool { return fails > int(m) }

// Timeout aborts once wall-clock time passes Deadline.
type Timeout struct {
	Deadline time.Time
}

// NewTimeout constructs a Timeout that aborts after d elapses from now.
func NewTimeout(d time.Duration) Timeout { return Timeout{Deadline: time.Now().Add(d)} }

// ShouldAbort reports whether the deadline has passed.
func (t Timeout) ShouldAbort(int) bool { return !time.Now().Before(t.Deadline) }

// TimeoutOrMaxFailures aborts on whichever of the two conditions triggers
// first.
type TimeoutOrMaxFailures struct {
	Deadline time.Time
	Max      int
}

// NewTimeoutOrMaxFailures constructs a combined abort policy.
func NewTimeoutOrMaxFailures(d time.Duration, max int) TimeoutOrMaxFailures {
	return TimeoutOrMaxFailures{Deadline: time.Now().Add(d), Max: max}
}

// ShouldAbort reports whether either condition has triggered.
func (t TimeoutOrMaxFailures) ShouldAbort(fails int) bool {
	return fails > t.Max || !time.Now().Before(t.Deadline)
}

// Result is the outcome of Find: a status, the best match available for
// that status (3 observed->catalog correspondences on a triangle fallback,
// 4 on a confirmed pyramid, unchanged from whichever best-effort fallback
// was chosen on error), and the accumulated recoverable-failure count.
type Result struct {
	Status  Status
	Matches []units.Match[int]
	Fails   int
}

func triangleFromVertices(v triangle.StarTriangle[int], get func(int) (units.Equatorial, error)) (triangle.StarTriangle[units.Equatorial], error) {
	a, err := get(v.A)
	if err != nil {
		return triangle.StarTriangle[units.Equatorial]{}, err
	}
	b, err := get(v.B)
	if err != nil {
		return triangle.StarTriangle[units.Equatorial]{}, err
	}
	c, err := get(v.C)
	if err != nil {
		return triangle.StarTriangle[units.Equatorial]{}, err
	}
	return triangle.StarTriangle[units.Equatorial]{A: a, B: b, C: c}, nil
}

func matchesFromTriangle(m triangle.Match[triangle.StarTriangle[int]]) []units.Match[int] {
	return []units.Match[int]{
		{Input: m.Input.A, Output: m.Output.A, Weight: m.Weight},
		{Input: m.Input.B, Output: m.Output.B, Weight: m.Weight},
		{Input: m.Input.C, Output: m.Output.C, Weight: m.Weight},
	}
}

// Find walks every candidate triangle triangleIt can produce over stars,
// restricted by ci's regions, resolving each to equatorial coordinates and
// checking specularity, then (when matchRange allows a 4-star pyramid)
// searching for a confirming pilot. abandon is polled after every
// recoverable failure; angleTolerance bounds triangleIt's own pair
// lookups via Begin.
func Find(
	stars []units.Equatorial,
	ci chunk.Iterator,
	triangleIt triangle.Construct,
	spec specularity.Specularity,
	abandon AbandonSearch,
	angleTolerance units.Radians,
	matchRange MatchRange,
) Result {
	ci.Begin()
	triangleIt.Begin(angleTolerance, stars)

	lowestError := units.Decimal(1e300)
	var fallback *triangle.Match[triangle.StarTriangle[int]]
	fails := 0
	matched := false

	for {
		tri, ok := triangleIt.Next(stars, ci)
		if !ok {
			break
		}

		input, errIn := triangleFromVertices(tri.Input, func(i int) (units.Equatorial, error) {
			if i < 0 || i >= len(stars) {
				return units.Equatorial{}, database.ErrOutOfBounds
			}
			return stars[i], nil
		})
		output, errOut := triangleFromVertices(tri.Output, func(i int) (units.Equatorial, error) {
			return database.FindStar(ci.Database(), i)
		})
		if errIn != nil || errOut != nil {
			fails++
			if abandon.ShouldAbort(fails) {
				return abortedResult(fallback, fails)
			}
			continue
		}

		same := spec.Same(
			input.A.ToVector3(), input.B.ToVector3(), input.C.ToVector3(),
			output.A.ToVector3(), output.B.ToVector3(), output.C.ToVector3(),
		)
		if !same {
			fails++
			if abandon.ShouldAbort(fails) {
				return abortedResult(fallback, fails)
			}
			continue
		}
		matched = true

		if matchRange.allows3() && tri.Weight < lowestError {
			triCopy := tri
			fallback = &triCopy
			lowestError = tri.Weight
		}

		if matchRange.allows4() {
			pilotMatch, ok := triangleIt.NextPilot(stars, ci)
			if ok {
				matches := matchesFromTriangle(tri)
				matches = append(matches, units.Match[int]{
					Input:  pilotMatch.Input,
					Output: pilotMatch.Output,
					Weight: pilotMatch.Weight,
				})
				return Result{Status: Success, Matches: matches, Fails: fails}
			}
			fails++
		}

		if abandon.ShouldAbort(fails) {
			return abortedResult(fallback, fails)
		}
	}

	if fallback != nil && matchRange.allows3() {
		return Result{Status: Success, Matches: matchesFromTriangle(*fallback), Fails: fails}
	}
	if matched {
		return Result{Status: ErrorInsufficientPyramids, Fails: fails}
	}
	return Result{Status: ErrorNoTriangleMatch, Fails: fails}
}

func abortedResult(fallback *triangle.Match[triangle.StarTriangle[int]], fails int) Result {
	r := Result{Status: ErrorAborted, Fails: fails}
	if fallback != nil {
		r.Matches = matchesFromTriangle(*fallback)
	}
	return r
}
