package stride

import "math"

// Scalar transcendental functions tuned for float32 kernels. The float32
// entry points keep the hot path free of float64 conversions except where
// range reduction needs the wider exponent.

// ExpFloat32 computes exp(x) using range reduction and a degree-5
// polynomial.
func ExpFloat32(x float32) float32 {
	if x > 88.7 { // exp(88.7) ≈ max float32
		return math.MaxFloat32
	}
	if x < -87.3 { // exp(-87.3) ≈ min positive float32
		return 0
	}

	// exp(x) = 2^k * exp(r) with x = k*ln(2) + r
	const ln2 = MathLn2
	k := int(math.Floor(float64(x) / ln2))
	r := x - float32(k)*float32(ln2)

	// Remez-optimized coefficients for exp(r) on the reduced range.
	r2 := r * r
	r3 := r2 * r
	r4 := r2 * r2
	r5 := r4 * r

	expR := 1.0 + r +
		0.4999999701976776*r2 +
		0.1666666567325592*r3 +
		0.0416666679084301*r4 +
		0.0083333337679505*r5

	return float32(math.Ldexp(float64(expR), k))
}

// TanhFloat32 computes tanh(x). Saturates outside the activation range and
// uses a series expansion near zero to avoid cancellation.
func TanhFloat32(x float32) float32 {
	if x > DefaultActivationSaturation {
		return 1
	}
	if x < -DefaultActivationSaturation {
		return -1
	}

	if x >= 0 {
		if x < 0.5 {
			// tanh(x) ≈ x - x³/3 + 2x⁵/15 for small x
			x2 := x * x
			return x * (1 - x2/3 + 2*x2*x2/15)
		}
		exp2x := ExpFloat32(2 * x)
		return (exp2x - 1) / (exp2x + 1)
	}
	return -TanhFloat32(-x)
}

// CoshFloat32 computes cosh(x) = (exp(x) + exp(-x)) / 2.
func CoshFloat32(x float32) float32 {
	if x < 0 {
		x = -x
	}
	// For large x the exp(-x) term vanishes below float32 resolution.
	if x > 20 {
		return 0.5 * ExpFloat32(x)
	}
	ex := ExpFloat32(x)
	return 0.5 * (ex + 1/ex)
}

// SechFloat32 computes 1/cosh(x), the factor that appears in the GELU
// gradient.
func SechFloat32(x float32) float32 {
	c := CoshFloat32(x)
	if math.IsInf(float64(c), 1) {
		return 0
	}
	return 1 / c
}

// SigmoidFloat32 computes sigmoid(x) = 1 / (1 + exp(-x)).
func SigmoidFloat32(x float32) float32 {
	if x < -DefaultActivationSaturation {
		return 0
	}
	if x > DefaultActivationSaturation {
		return 1
	}

	if x >= 0 {
		expNegX := ExpFloat32(-x)
		return 1.0 / (1.0 + expNegX)
	}
	expX := ExpFloat32(x)
	return expX / (1.0 + expX)
}

// ErfFloat32 computes the error function using the Abramowitz & Stegun
// rational approximation.
func ErfFloat32(x float32) float32 {
	sign := float32(1)
	if x < 0 {
		sign = -1
		x = -x
	}

	t := 1 / (1 + ErfP*x)
	t2 := t * t
	t3 := t2 * t
	t4 := t2 * t2
	t5 := t4 * t

	expNegX2 := ExpFloat32(-x * x)
	polynomial := ErfA1*t + ErfA2*t2 + ErfA3*t3 + ErfA4*t4 + ErfA5*t5

	return sign * (1 - expNegX2*polynomial)
}

// GeluFloat32Accurate computes GELU through erf rather than the tanh
// approximation. Reference implementation for tests.
func GeluFloat32Accurate(x float32) float32 {
	return x * 0.5 * (1 + ErfFloat32(x*MathInvSqrt2))
}
