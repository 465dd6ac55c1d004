package stride

// Mathematical constants shared by the kernel set

const (
	// Activation function saturation limit. Beyond |x| = 10 the sigmoidal
	// functions are flat to within float32 resolution.
	DefaultActivationSaturation = 10.0

	// Test tolerance levels for different precision requirements.
	TestToleranceStrict  = 1e-6 // For critical accuracy tests
	TestToleranceNormal  = 1e-5 // For standard tests
	TestToleranceRelaxed = 1e-4 // For approximate methods
	TestToleranceHalf    = 1e-2 // For half-precision storage paths

	// High-precision mathematical constants.
	MathE         = 2.7182818284590452354 // e
	MathPi        = 3.1415926535897932385 // π
	MathSqrt2     = 1.4142135623730950488 // √2
	MathLn2       = 0.6931471805599453094 // ln(2)
	MathInvSqrt2  = 0.7071067811865475244 // 1/√2
	MathInvSqrtPi = 0.5641895835477562869 // 1/√π

	// Tanh-approximate GELU constants (Hendrycks & Gimpel):
	// GELU(x) = 0.5 * x * (1 + tanh(c1*x + c3*x³)) with c3 = 0.044715*c1.
	GeluC1 = 0.7978845608028654 // √(2/π)
	GeluC3 = 0.044715 * GeluC1  // cubic coefficient

	// GeluCoefficient is the β term from the paper, kept for callers that
	// build the argument as c1*(x + β*x³).
	GeluCoefficient = 0.044715

	// Selu constants from Klambauer et al.
	SeluScale = 1.0507009873554804934193349852946
	SeluAlpha = 1.6732632423543772848170429916717

	// Relu6 clamp ceiling.
	Relu6Ceiling = 6.0

	// Error function approximation constants (Abramowitz & Stegun):
	// erf(x) ≈ 1 - exp(-x²) * polynomial(t), t = 1/(1 + p*x).
	ErfA1 = 0.254829592  // a₁
	ErfA2 = -0.284496736 // a₂
	ErfA3 = 1.421413741  // a₃
	ErfA4 = -1.453152027 // a₄
	ErfA5 = 1.061405429  // a₅
	ErfP  = 0.3275911    // p
)
