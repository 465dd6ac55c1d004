package stride

import "math"

// Tanh-approximate GELU kernels. Unlike the grid-stride gradient kernels,
// these launch one work item per element with the grid sized to cover the
// whole buffer; out-of-range work items simply return.
//
// One scalar algorithm serves every storage type. The transcendental part
// always runs in a representation wider than the storage: float32 and
// float64 promote to float64, the 16-bit formats promote to float32 and
// narrow on store.

// Float constrains the scalar types the generic GELU kernels operate on.
type Float interface {
	~float32 | ~float64
}

// geluScalar computes 0.5*x*(1+tanh(c1*x + c3*x³)) through float64.
func geluScalar[T Float](x T) T {
	xf := float64(x)
	z := GeluC1*xf + GeluC3*xf*xf*xf
	return T(0.5 * xf * (1 + math.Tanh(z)))
}

// geluGradScalar computes the analytic derivative of the tanh-approximate
// GELU, scaled by the upstream gradient g.
func geluGradScalar[T Float](g, x T) T {
	xf := float64(x)
	gf := float64(g)
	z := GeluC1*xf + GeluC3*xf*xf*xf
	cz := 1 / math.Cosh(z)
	return T(gf * 0.5 * (1 + math.Tanh(z) + xf*(GeluC1+3*GeluC3*xf*xf)*cz*cz))
}

// geluHalfScalar is the 16-bit storage path: float32 intermediates through
// the float32-tuned transcendentals.
func geluHalfScalar(x float32) float32 {
	z := float32(GeluC1)*x + float32(GeluC3)*x*x*x
	return 0.5 * x * (1 + TanhFloat32(z))
}

func geluGradHalfScalar(g, x float32) float32 {
	z := float32(GeluC1)*x + float32(GeluC3)*x*x*x
	cz := SechFloat32(z)
	return g * 0.5 * (1 + TanhFloat32(z) + x*(float32(GeluC1)+3*float32(GeluC3)*x*x)*cz*cz)
}

func launchGelu[T Float](in, out []T, n int) error {
	cfg := FixedBlockSizeConfig(n, geluBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		out[i] = geluScalar(in[i])
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

func launchGeluGrad[T Float](g, x, out []T, n int) error {
	cfg := FixedBlockSizeConfig(n, geluBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		out[i] = geluGradScalar(g[i], x[i])
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// Gelu applies the tanh-approximate GELU to n float32 elements.
func Gelu(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	return launchGelu(input.Float32(), output.Float32(), n)
}

// GeluFloat64 applies the tanh-approximate GELU to n float64 elements.
func GeluFloat64(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	return launchGelu(input.Float64(), output.Float64(), n)
}

// GeluGrad computes backprop[i] = gradient[i] * d/dx GELU(feature[i]) for
// n float32 elements.
func GeluGrad(gradient, feature, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	return launchGeluGrad(gradient.Float32(), feature.Float32(), backprop.Float32(), n)
}

// GeluGradFloat64 is the float64 variant of GeluGrad.
func GeluGradFloat64(gradient, feature, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	return launchGeluGrad(gradient.Float64(), feature.Float64(), backprop.Float64(), n)
}

// GeluHalf applies GELU to n float16 elements, computing through float32.
func GeluHalf(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, geluBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.Float16()
		out := output.Float16()
		out.SetFloat32(i, geluHalfScalar(in.GetFloat32(i)))
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// GeluGradHalf computes the GELU gradient over float16 buffers, computing
// through float32.
func GeluGradHalf(gradient, feature, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, geluBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.Float16()
		x := feature.Float16()
		out := backprop.Float16()
		out.SetFloat32(i, geluGradHalfScalar(g.GetFloat32(i), x.GetFloat32(i)))
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// GeluBFloat16 applies GELU to n bfloat16 elements, computing through
// float32.
func GeluBFloat16(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, geluBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.BFloat16()
		out := output.BFloat16()
		out.SetFloat32(i, geluHalfScalar(in.GetFloat32(i)))
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// GeluGradBFloat16 computes the GELU gradient over bfloat16 buffers,
// computing through float32.
func GeluGradBFloat16(gradient, feature, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, geluBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.BFloat16()
		x := feature.BFloat16()
		out := backprop.BFloat16()
		out.SetFloat32(i, geluGradHalfScalar(g.GetFloat32(i), x.GetFloat32(i)))
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}
