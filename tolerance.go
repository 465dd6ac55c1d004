// Package stride tolerance-based verification for floating-point comparisons
package stride

import (
	"fmt"
	"math"
)

// ToleranceConfig defines the comparison envelope for floating-point
// verification.
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero.
	AbsTol float32

	// RelTol is the relative tolerance as a fraction of the larger value.
	RelTol float32

	// ULPTol is the maximum allowed difference in units in the last place.
	ULPTol int

	// CheckNaN treats two NaN values as equal.
	CheckNaN bool

	// CheckInf treats matching infinities as equal.
	CheckInf bool
}

// DefaultTolerance returns the envelope for full-precision kernels.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-7,
		RelTol:   1e-5,
		ULPTol:   4,
		CheckNaN: true,
		CheckInf: true,
	}
}

// StrictTolerance returns the envelope for reference comparisons.
func StrictTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-9,
		RelTol:   1e-7,
		ULPTol:   1,
		CheckNaN: true,
		CheckInf: true,
	}
}

// RelaxedTolerance returns the envelope for approximate methods.
func RelaxedTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-5,
		RelTol:   1e-3,
		ULPTol:   16,
		CheckNaN: true,
		CheckInf: true,
	}
}

// HalfTolerance returns the envelope for values that passed through
// 16-bit storage: binary16 resolves about three decimal digits, so the
// relative envelope is wide.
func HalfTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol:   1e-3,
		RelTol:   TestToleranceHalf,
		ULPTol:   0,
		CheckNaN: true,
		CheckInf: true,
	}
}

// Float32NearEqual reports whether a and b match within tol.
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	if tol.CheckNaN && math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
		return true
	}

	if tol.CheckInf {
		if math.IsInf(float64(a), 1) && math.IsInf(float64(b), 1) {
			return true
		}
		if math.IsInf(float64(a), -1) && math.IsInf(float64(b), -1) {
			return true
		}
	}

	// Exact match also covers ±0.
	if a == b {
		return true
	}

	diff := math.Abs(float64(a - b))

	if diff <= float64(tol.AbsTol) {
		return true
	}

	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if diff <= larger*float64(tol.RelTol) {
		return true
	}

	if tol.ULPTol > 0 && Float32ULPDiff(a, b) <= tol.ULPTol {
		return true
	}

	return false
}

// Float32ULPDiff computes the distance between a and b in units in the
// last place. Values of different sign report the maximum distance.
func Float32ULPDiff(a, b float32) int {
	aBits := math.Float32bits(a)
	bBits := math.Float32bits(b)

	if (aBits^bBits)&0x80000000 != 0 {
		return math.MaxInt32
	}

	if aBits > bBits {
		return int(aBits - bBits)
	}
	return int(bBits - aBits)
}

// VerificationResult aggregates the mismatches found when comparing two
// arrays.
type VerificationResult struct {
	MaxAbsError float32
	MaxRelError float32
	MaxULPError int
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyFloat32Array compares expected against actual element by element.
func VerifyFloat32Array(expected, actual []float32, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		return result
	}

	for i := range expected {
		if Float32NearEqual(expected[i], actual[i], tol) {
			continue
		}

		result.NumErrors++
		if result.FirstError == -1 {
			result.FirstError = i
		}

		absDiff := float32(math.Abs(float64(expected[i] - actual[i])))
		if absDiff > result.MaxAbsError {
			result.MaxAbsError = absDiff
		}

		if expected[i] != 0 {
			relDiff := absDiff / float32(math.Abs(float64(expected[i])))
			if relDiff > result.MaxRelError {
				result.MaxRelError = relDiff
			}
		}

		if ulpDiff := Float32ULPDiff(expected[i], actual[i]); ulpDiff > result.MaxULPError {
			result.MaxULPError = ulpDiff
		}
	}

	return result
}

// Ok reports whether the comparison found no mismatches.
func (r VerificationResult) Ok() bool {
	return r.NumErrors == 0
}

// String formats the result for test output.
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return "PASS: all values match within tolerance"
	}

	errorRate := float64(r.NumErrors) / float64(r.TotalItems) * 100
	return fmt.Sprintf("FAIL: %d/%d values differ (%.2f%%)\n"+
		"  max absolute error: %e\n"+
		"  max relative error: %e\n"+
		"  max ULP difference: %d\n"+
		"  first error at index: %d",
		r.NumErrors, r.TotalItems, errorRate,
		r.MaxAbsError, r.MaxRelError, r.MaxULPError,
		r.FirstError)
}
