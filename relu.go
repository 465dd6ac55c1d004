package stride

// ReLU-family activation kernels. Every dispatch function guards the
// zero-length case before the launch layer is touched, so an empty tensor
// never schedules a kernel.

// Relu writes max(input[i], 0) for each of n float32 elements.
func Relu(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.Float32()
		out := output.Float32()
		if in[i] > 0 {
			out[i] = in[i]
		} else {
			out[i] = 0
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// ReluGrad computes the float32 ReLU gradient:
// backprop[i] = feature[i] > 0 ? gradient[i] : 0.
// A feature of exactly zero passes no gradient, so either the op's input or
// its output may be supplied as feature.
func ReluGrad(gradient, feature, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.Float32()
		x := feature.Float32()
		out := backprop.Float32()
		if x[i] > 0 {
			out[i] = g[i]
		} else {
			out[i] = 0
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// ReluGradHalf computes the ReLU gradient over float16 buffers two elements
// at a time. Each work item loads one Half2 word from gradient and feature,
// selects lanes where the feature is positive, and stores one word back.
// Work items advance by the launched grid size until all pairs are
// consumed, so the grid may be smaller than the pair count. If count is
// odd, the work item that exits the loop exactly at the pair boundary
// handles the final element through the scalar path.
func ReluGradHalf(gradient, feature, backprop DevicePtr, count int) error {
	if count == 0 {
		return nil
	}

	half2Count := count >> 1
	// Launch over divup(count, 2) so a work item exists for the odd tail.
	cfg := FixedBlockSizeConfig(DivUp(count, 2), reluGradBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		index := tid.Global()
		stride := tid.GridStride()

		gradWords := gradient.Uint32()
		featWords := feature.Uint32()
		outWords := backprop.Uint32()

		for ; index < half2Count; index += stride {
			pair := reluGradPair(Half2(gradWords[index]), Half2(featWords[index]))
			outWords[index] = uint32(pair)
		}

		if count&1 == 1 && index == half2Count {
			grads := gradient.Float16()
			feats := feature.Float16()
			outs := backprop.Float16()

			g := grads.GetFloat32(count - 1)
			x := feats.GetFloat32(count - 1)
			var b float32
			if x > 0 {
				b = g
			}
			outs.SetFloat32(count-1, b)
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// vmaxs4 applies max(lane, 0) to each of the four signed int8 lanes packed
// in w. Negative lanes have their sign bit set; spreading that bit across
// the lane builds a clear mask, no unpacking needed.
func vmaxs4(w uint32) uint32 {
	mask := ((w >> 7) & 0x01010101) * 0xFF
	return w &^ mask
}

// ReluInt8x4 applies ReLU to count int8 elements packed four to a 32-bit
// word. One work item processes one packed word per stride step. count
// must be a multiple of 4; a ragged count is rejected rather than read out
// of bounds. The buffers' word alignment is guaranteed by the allocator.
func ReluInt8x4(input, output DevicePtr, count int) error {
	if count == 0 {
		return nil
	}
	if count%4 != 0 {
		return NewInvalidArgError("ReluInt8x4", "count must be a multiple of 4")
	}

	vectCount := count / 4
	cfg := FixedBlockSizeConfig(vectCount, reluInt8x4BlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		in := input.Uint32()
		out := output.Uint32()
		stride := tid.GridStride()
		for index := tid.Global(); index < vectCount; index += stride {
			out[index] = vmaxs4(in[index])
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// Relu6 writes min(max(input[i], 0), 6), the clamped variant used by
// mobile architectures.
func Relu6(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.Float32()
		out := output.Float32()
		x := in[i]
		switch {
		case x <= 0:
			out[i] = 0
		case x >= Relu6Ceiling:
			out[i] = Relu6Ceiling
		default:
			out[i] = x
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// Relu6Grad passes gradient only strictly inside the (0, 6) interval; both
// clamp boundaries block it.
func Relu6Grad(gradient, feature, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.Float32()
		x := feature.Float32()
		out := backprop.Float32()
		if x[i] > 0 && x[i] < Relu6Ceiling {
			out[i] = g[i]
		} else {
			out[i] = 0
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// LeakyRelu writes input[i] for positive elements and alpha*input[i]
// otherwise.
func LeakyRelu(input, output DevicePtr, n int, alpha float32) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.Float32()
		out := output.Float32()
		if in[i] > 0 {
			out[i] = in[i]
		} else {
			out[i] = alpha * in[i]
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// LeakyReluGrad scales gradient by 1 on the positive side and by alpha on
// the non-positive side.
func LeakyReluGrad(gradient, feature, backprop DevicePtr, n int, alpha float32) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.Float32()
		x := feature.Float32()
		out := backprop.Float32()
		if x[i] > 0 {
			out[i] = g[i]
		} else {
			out[i] = alpha * g[i]
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// Elu writes exp(input[i])-1 for negative elements and input[i] otherwise.
func Elu(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.Float32()
		out := output.Float32()
		x := in[i]
		if x < 0 {
			out[i] = ExpFloat32(x) - 1
		} else {
			out[i] = x
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// EluGrad computes the Elu gradient from the op's activations (not its
// inputs): backprop = activation < 0 ? gradient*(activation+1) : gradient.
func EluGrad(gradient, activation, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.Float32()
		a := activation.Float32()
		out := backprop.Float32()
		if a[i] < 0 {
			out[i] = g[i] * (a[i] + 1)
		} else {
			out[i] = g[i]
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// Selu writes scale*input[i] for positive elements and
// scale*alpha*(exp(input[i])-1) otherwise, with the self-normalizing
// constants from Klambauer et al.
func Selu(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.Float32()
		out := output.Float32()
		x := in[i]
		if x > 0 {
			out[i] = SeluScale * x
		} else {
			out[i] = SeluScale * SeluAlpha * (ExpFloat32(x) - 1)
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// SeluGrad computes the Selu gradient from the op's activations:
// backprop = activation < 0 ? gradient*(activation + scale*alpha)
//                           : gradient*scale.
func SeluGrad(gradient, activation, backprop DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		g := gradient.Float32()
		a := activation.Float32()
		out := backprop.Float32()
		if a[i] < 0 {
			out[i] = g[i] * (a[i] + SeluScale*SeluAlpha)
		} else {
			out[i] = g[i] * SeluScale
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// ReluBFloat16 writes max(input[i], 0) over bfloat16 storage. The compare
// needs only the sign and NaN bits, so lanes are copied without widening.
func ReluBFloat16(input, output DevicePtr, n int) error {
	if n == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(n, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		i := tid.Global()
		if i >= n {
			return
		}
		in := input.BFloat16()
		out := output.BFloat16()
		v := in.Get(i)
		if v.Positive() {
			out.Set(i, v)
		} else {
			out.Set(i, 0)
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}
