package stride

import (
	"math"
	"strings"
	"testing"
)

func TestFloat32NearEqual(t *testing.T) {
	tol := DefaultTolerance()

	cases := []struct {
		name string
		a, b float32
		want bool
	}{
		{"identical", 1.0, 1.0, true},
		{"both zero", 0.0, 0.0, true},
		{"signed zeros", 0.0, float32(math.Copysign(0, -1)), true},
		{"within abs tol", 1e-8, 2e-8, true},
		{"within rel tol", 1000.0, 1000.005, true},
		{"adjacent floats", 1.0, math.Nextafter32(1.0, 2.0), true},
		{"clearly different", 1.0, 1.1, false},
		{"sign flip", 1.0, -1.0, false},
		{"both NaN", float32(math.NaN()), float32(math.NaN()), true},
		{"NaN vs number", float32(math.NaN()), 1.0, false},
		{"both +Inf", float32(math.Inf(1)), float32(math.Inf(1)), true},
		{"opposite Inf", float32(math.Inf(1)), float32(math.Inf(-1)), false},
	}

	for _, tc := range cases {
		if got := Float32NearEqual(tc.a, tc.b, tol); got != tc.want {
			t.Errorf("%s: NearEqual(%f, %f) = %v, want %v", tc.name, tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFloat32NearEqualNaNStrictness(t *testing.T) {
	tol := DefaultTolerance()
	tol.CheckNaN = false

	nan := float32(math.NaN())
	if Float32NearEqual(nan, nan, tol) {
		t.Error("NaN should not match NaN when CheckNaN is disabled")
	}
}

func TestFloat32ULPDiff(t *testing.T) {
	if d := Float32ULPDiff(1.0, 1.0); d != 0 {
		t.Errorf("ULP diff of identical values = %d", d)
	}

	next := math.Nextafter32(1.0, 2.0)
	if d := Float32ULPDiff(1.0, next); d != 1 {
		t.Errorf("ULP diff of adjacent floats = %d, want 1", d)
	}

	if d := Float32ULPDiff(1.0, -1.0); d != math.MaxInt32 {
		t.Errorf("ULP diff across sign = %d, want MaxInt32", d)
	}
}

func TestVerifyFloat32Array(t *testing.T) {
	expected := []float32{1, 2, 3, 4}
	actual := []float32{1, 2, 3, 4}

	result := VerifyFloat32Array(expected, actual, DefaultTolerance())
	if !result.Ok() {
		t.Errorf("identical arrays should verify: %s", result.String())
	}
	if !strings.HasPrefix(result.String(), "PASS") {
		t.Errorf("unexpected pass message: %q", result.String())
	}

	actual[2] = 3.5
	result = VerifyFloat32Array(expected, actual, DefaultTolerance())
	if result.Ok() {
		t.Error("mismatch should fail verification")
	}
	if result.NumErrors != 1 {
		t.Errorf("NumErrors = %d, want 1", result.NumErrors)
	}
	if result.FirstError != 2 {
		t.Errorf("FirstError = %d, want 2", result.FirstError)
	}
	if result.MaxAbsError != 0.5 {
		t.Errorf("MaxAbsError = %f, want 0.5", result.MaxAbsError)
	}
	if !strings.Contains(result.String(), "1/4") {
		t.Errorf("report should name the error count: %q", result.String())
	}
}

func TestVerifyFloat32ArrayLengthMismatch(t *testing.T) {
	result := VerifyFloat32Array([]float32{1, 2}, []float32{1}, DefaultTolerance())
	if result.Ok() {
		t.Error("length mismatch should fail verification")
	}
}

func TestHalfToleranceAcceptsHalfRounding(t *testing.T) {
	// Round-tripping through binary16 storage must stay inside the half
	// envelope for representative activation values.
	tol := HalfTolerance()
	for _, v := range []float32{0, 1e-4, 0.317, 1.5, -2.25, 100, -6000} {
		rounded := FromFloat32(v).ToFloat32()
		if !Float32NearEqual(v, rounded, tol) {
			t.Errorf("half round trip of %g (-> %g) outside tolerance", v, rounded)
		}
	}
}

func TestToleranceLevelsAreOrdered(t *testing.T) {
	strict := StrictTolerance()
	def := DefaultTolerance()
	relaxed := RelaxedTolerance()

	if strict.AbsTol >= def.AbsTol || def.AbsTol >= relaxed.AbsTol {
		t.Error("absolute tolerances should widen from strict to relaxed")
	}
	if strict.RelTol >= def.RelTol || def.RelTol >= relaxed.RelTol {
		t.Error("relative tolerances should widen from strict to relaxed")
	}
}
