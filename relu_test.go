package stride

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelu(t *testing.T) {
	input := []float32{-2, -1, -0.5, 0, 0.5, 1, 2, -0}
	n := len(input)

	dIn := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dIn)
	defer Free(dOut)

	MemcpyOrFail(t, dIn, input, n*4, MemcpyHostToDevice)

	require.NoError(t, Relu(dIn, dOut, n))
	SynchronizeOrFail(t)

	out := dOut.Float32()
	for i, x := range input {
		want := x
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, out[i], "element %d", i)
	}
}

func TestReluGradZeroBoundary(t *testing.T) {
	// Exactly-zero features are inactive: no gradient flows through them.
	gradient := []float32{1, 2, 3, 4, 5}
	feature := []float32{-1, 0, 1e-30, 0.5, -0}
	want := []float32{0, 0, 3, 4, 0}
	n := len(gradient)

	dGrad := MallocOrFail(t, n*4)
	dFeat := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dGrad)
	defer Free(dFeat)
	defer Free(dOut)

	MemcpyOrFail(t, dGrad, gradient, n*4, MemcpyHostToDevice)
	MemcpyOrFail(t, dFeat, feature, n*4, MemcpyHostToDevice)

	require.NoError(t, ReluGrad(dGrad, dFeat, dOut, n))
	SynchronizeOrFail(t)

	assert.Equal(t, want, dOut.Float32()[:n])
}

func reluGradHalfReference(gradient, feature []float32) []float32 {
	out := make([]float32, len(gradient))
	for i := range gradient {
		if feature[i] > 0 {
			out[i] = gradient[i]
		}
	}
	return out
}

func TestReluGradHalf(t *testing.T) {
	// Odd counts exercise the scalar tail after the paired loop.
	counts := []int{1, 2, 3, 4, 5, 101, 1024, 4097}

	rng := rand.New(rand.NewSource(7))
	for _, count := range counts {
		gradient := make([]float32, count)
		feature := make([]float32, count)
		for i := 0; i < count; i++ {
			gradient[i] = rng.Float32()*2 - 1
			feature[i] = rng.Float32()*2 - 1
		}
		// Force boundary coverage.
		feature[0] = 0
		if count > 2 {
			feature[count-1] = -feature[count-1]
		}

		dGrad := MallocOrFail(t, count*2)
		dFeat := MallocOrFail(t, count*2)
		dOut := MallocOrFail(t, count*2)

		grads := dGrad.Float16()
		feats := dFeat.Float16()
		for i := 0; i < count; i++ {
			grads.SetFloat32(i, gradient[i])
			feats.SetFloat32(i, feature[i])
		}

		require.NoError(t, ReluGradHalf(dGrad, dFeat, dOut, count))
		SynchronizeOrFail(t)

		// Round-trip the reference through float16 the same way the
		// kernel's inputs went in.
		roundGrad := make([]float32, count)
		roundFeat := make([]float32, count)
		for i := 0; i < count; i++ {
			roundGrad[i] = grads.GetFloat32(i)
			roundFeat[i] = feats.GetFloat32(i)
		}
		want := reluGradHalfReference(roundGrad, roundFeat)

		outs := dOut.Float16()
		for i := 0; i < count; i++ {
			assert.Equal(t, want[i], outs.GetFloat32(i), "count %d element %d", count, i)
		}

		Free(dGrad)
		Free(dFeat)
		Free(dOut)
	}
}

func TestReluGradHalfPathsAgree(t *testing.T) {
	saved := usePairedHalf
	defer func() { usePairedHalf = saved }()

	const count = 257
	rng := rand.New(rand.NewSource(11))

	dGrad := MallocOrFail(t, count*2)
	dFeat := MallocOrFail(t, count*2)
	dFast := MallocOrFail(t, count*2)
	dSlow := MallocOrFail(t, count*2)
	defer Free(dGrad)
	defer Free(dFeat)
	defer Free(dFast)
	defer Free(dSlow)

	grads := dGrad.Float16()
	feats := dFeat.Float16()
	for i := 0; i < count; i++ {
		grads.SetFloat32(i, rng.Float32()*4-2)
		feats.SetFloat32(i, rng.Float32()*4-2)
	}

	usePairedHalf = true
	require.NoError(t, ReluGradHalf(dGrad, dFeat, dFast, count))
	SynchronizeOrFail(t)

	usePairedHalf = false
	require.NoError(t, ReluGradHalf(dGrad, dFeat, dSlow, count))
	SynchronizeOrFail(t)

	fast := dFast.Float16()
	slow := dSlow.Float16()
	for i := 0; i < count; i++ {
		assert.Equal(t, fast.Get(i), slow.Get(i), "element %d", i)
	}
}

func TestReluGradHalfZeroCount(t *testing.T) {
	// A zero count must not launch: the output stays untouched.
	const n = 8
	dGrad := MallocOrFail(t, n*2)
	dFeat := MallocOrFail(t, n*2)
	dOut := MallocOrFail(t, n*2)
	defer Free(dGrad)
	defer Free(dFeat)
	defer Free(dOut)

	outs := dOut.Float16()
	for i := 0; i < n; i++ {
		outs.SetFloat32(i, 42)
	}

	require.NoError(t, ReluGradHalf(dGrad, dFeat, dOut, 0))
	SynchronizeOrFail(t)

	for i := 0; i < n; i++ {
		assert.Equal(t, float32(42), outs.GetFloat32(i))
	}
}

func TestReluInt8x4(t *testing.T) {
	input := []int8{-128, -1, 0, 1, 127, -64, 64, -2, 5, -5, 100, -100}
	n := len(input)
	require.Zero(t, n%4)

	dIn := MallocOrFail(t, n)
	dOut := MallocOrFail(t, n)
	defer Free(dIn)
	defer Free(dOut)

	MemcpyOrFail(t, dIn, input, n, MemcpyHostToDevice)

	require.NoError(t, ReluInt8x4(dIn, dOut, n))
	SynchronizeOrFail(t)

	out := dOut.Int8()
	for i, x := range input {
		want := x
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, out[i], "lane %d", i)
	}
}

func TestReluInt8x4EveryLanePosition(t *testing.T) {
	// A negative value in each of the four lane positions in turn, other
	// lanes positive, to catch mask spreading across lane boundaries.
	for lane := 0; lane < 4; lane++ {
		input := []int8{9, 9, 9, 9}
		input[lane] = -9

		dIn := MallocOrFail(t, 4)
		dOut := MallocOrFail(t, 4)

		MemcpyOrFail(t, dIn, input, 4, MemcpyHostToDevice)
		require.NoError(t, ReluInt8x4(dIn, dOut, 4))
		SynchronizeOrFail(t)

		out := dOut.Int8()
		for i := 0; i < 4; i++ {
			want := int8(9)
			if i == lane {
				want = 0
			}
			assert.Equal(t, want, out[i], "lane %d of pattern %d", i, lane)
		}

		Free(dIn)
		Free(dOut)
	}
}

func TestReluInt8x4RejectsRaggedCount(t *testing.T) {
	dIn := MallocOrFail(t, 8)
	dOut := MallocOrFail(t, 8)
	defer Free(dIn)
	defer Free(dOut)

	err := ReluInt8x4(dIn, dOut, 7)
	require.Error(t, err)
	assert.True(t, IsInvalidArgError(err))
}

func TestReluInt8x4ZeroCount(t *testing.T) {
	dIn := MallocOrFail(t, 4)
	dOut := MallocOrFail(t, 4)
	defer Free(dIn)
	defer Free(dOut)

	out := dOut.Int8()
	for i := range out[:4] {
		out[i] = 77
	}

	require.NoError(t, ReluInt8x4(dIn, dOut, 0))
	SynchronizeOrFail(t)

	for i := 0; i < 4; i++ {
		assert.Equal(t, int8(77), out[i])
	}
}

func TestRelu6(t *testing.T) {
	input := []float32{-1, 0, 3, 6, 7, 100}
	want := []float32{0, 0, 3, 6, 6, 6}
	n := len(input)

	dIn := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dIn)
	defer Free(dOut)

	MemcpyOrFail(t, dIn, input, n*4, MemcpyHostToDevice)
	require.NoError(t, Relu6(dIn, dOut, n))
	SynchronizeOrFail(t)

	assert.Equal(t, want, dOut.Float32()[:n])
}

func TestRelu6GradBlocksAtBothBoundaries(t *testing.T) {
	gradient := []float32{1, 1, 1, 1, 1}
	feature := []float32{-1, 0, 3, 6, 7}
	want := []float32{0, 0, 1, 0, 0}
	n := len(gradient)

	dGrad := MallocOrFail(t, n*4)
	dFeat := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dGrad)
	defer Free(dFeat)
	defer Free(dOut)

	MemcpyOrFail(t, dGrad, gradient, n*4, MemcpyHostToDevice)
	MemcpyOrFail(t, dFeat, feature, n*4, MemcpyHostToDevice)
	require.NoError(t, Relu6Grad(dGrad, dFeat, dOut, n))
	SynchronizeOrFail(t)

	assert.Equal(t, want, dOut.Float32()[:n])
}

func TestLeakyRelu(t *testing.T) {
	const alpha = 0.2
	input := []float32{-10, -1, 0, 1, 10}
	n := len(input)

	dIn := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dIn)
	defer Free(dOut)

	MemcpyOrFail(t, dIn, input, n*4, MemcpyHostToDevice)
	require.NoError(t, LeakyRelu(dIn, dOut, n, alpha))
	SynchronizeOrFail(t)

	out := dOut.Float32()
	for i, x := range input {
		want := x
		if x <= 0 {
			want = alpha * x
		}
		assert.InDelta(t, want, out[i], 1e-6, "element %d", i)
	}
}

func TestLeakyReluGrad(t *testing.T) {
	const alpha = 0.1
	gradient := []float32{2, 2, 2}
	feature := []float32{-1, 0, 1}
	want := []float32{0.2, 0.2, 2}
	n := len(gradient)

	dGrad := MallocOrFail(t, n*4)
	dFeat := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dGrad)
	defer Free(dFeat)
	defer Free(dOut)

	MemcpyOrFail(t, dGrad, gradient, n*4, MemcpyHostToDevice)
	MemcpyOrFail(t, dFeat, feature, n*4, MemcpyHostToDevice)
	require.NoError(t, LeakyReluGrad(dGrad, dFeat, dOut, n, alpha))
	SynchronizeOrFail(t)

	out := dOut.Float32()
	for i := range want {
		assert.InDelta(t, want[i], out[i], 1e-6, "element %d", i)
	}
}

func TestEluAndGrad(t *testing.T) {
	input := []float32{-3, -1, 0, 1, 3}
	n := len(input)

	dIn := MallocOrFail(t, n*4)
	dAct := MallocOrFail(t, n*4)
	dGrad := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dIn)
	defer Free(dAct)
	defer Free(dGrad)
	defer Free(dOut)

	MemcpyOrFail(t, dIn, input, n*4, MemcpyHostToDevice)
	require.NoError(t, Elu(dIn, dAct, n))
	SynchronizeOrFail(t)

	act := dAct.Float32()
	tol := RelaxedTolerance()
	for i, x := range input {
		want := x
		if x < 0 {
			want = ExpFloat32(x) - 1
		}
		assert.True(t, Float32NearEqual(want, act[i], tol), "Elu(%f) = %f, want %f", x, act[i], want)
	}

	ones := []float32{1, 1, 1, 1, 1}
	MemcpyOrFail(t, dGrad, ones, n*4, MemcpyHostToDevice)
	require.NoError(t, EluGrad(dGrad, dAct, dOut, n))
	SynchronizeOrFail(t)

	out := dOut.Float32()
	for i := range input {
		want := float32(1)
		if act[i] < 0 {
			want = act[i] + 1 // == exp(x) for the negative side
		}
		assert.True(t, Float32NearEqual(want, out[i], tol), "EluGrad at %d = %f, want %f", i, out[i], want)
	}
}

func TestSeluAndGrad(t *testing.T) {
	input := []float32{-3, -1, 0, 1, 3}
	n := len(input)

	dIn := MallocOrFail(t, n*4)
	dAct := MallocOrFail(t, n*4)
	dGrad := MallocOrFail(t, n*4)
	dOut := MallocOrFail(t, n*4)
	defer Free(dIn)
	defer Free(dAct)
	defer Free(dGrad)
	defer Free(dOut)

	MemcpyOrFail(t, dIn, input, n*4, MemcpyHostToDevice)
	require.NoError(t, Selu(dIn, dAct, n))
	SynchronizeOrFail(t)

	act := dAct.Float32()
	tol := RelaxedTolerance()
	for i, x := range input {
		var want float32
		if x > 0 {
			want = SeluScale * x
		} else {
			want = SeluScale * SeluAlpha * (ExpFloat32(x) - 1)
		}
		assert.True(t, Float32NearEqual(want, act[i], tol), "Selu(%f) = %f, want %f", x, act[i], want)
	}

	ones := []float32{1, 1, 1, 1, 1}
	MemcpyOrFail(t, dGrad, ones, n*4, MemcpyHostToDevice)
	require.NoError(t, SeluGrad(dGrad, dAct, dOut, n))
	SynchronizeOrFail(t)

	out := dOut.Float32()
	for i := range input {
		var want float32
		if act[i] < 0 {
			want = act[i] + SeluScale*SeluAlpha
		} else {
			want = SeluScale
		}
		assert.True(t, Float32NearEqual(want, out[i], tol), "SeluGrad at %d = %f, want %f", i, out[i], want)
	}
}

func BenchmarkReluGradHalf(b *testing.B) {
	const n = 1 << 20
	dGrad := MallocOrFail(b, n*2)
	dFeat := MallocOrFail(b, n*2)
	dOut := MallocOrFail(b, n*2)
	defer Free(dGrad)
	defer Free(dFeat)
	defer Free(dOut)

	feats := dFeat.Float16()
	for i := 0; i < n; i++ {
		feats.SetFloat32(i, float32(i%7)-3)
	}

	b.SetBytes(n * 2 * 3)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ReluGradHalf(dGrad, dFeat, dOut, n); err != nil {
			b.Fatal(err)
		}
		Synchronize()
	}
}

func BenchmarkReluInt8x4(b *testing.B) {
	const n = 1 << 22
	dIn := MallocOrFail(b, n)
	dOut := MallocOrFail(b, n)
	defer Free(dIn)
	defer Free(dOut)

	in := dIn.Int8()
	for i := 0; i < n; i++ {
		in[i] = int8(i)
	}

	b.SetBytes(n * 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := ReluInt8x4(dIn, dOut, n); err != nil {
			b.Fatal(err)
		}
		Synchronize()
	}
}

func TestReluBFloat16(t *testing.T) {
	values := []float32{-2, -0.5, 0, 0.5, 2}
	n := len(values)

	dIn := MallocOrFail(t, n*2)
	dOut := MallocOrFail(t, n*2)
	defer Free(dIn)
	defer Free(dOut)

	in := dIn.BFloat16()
	for i, v := range values {
		in.SetFloat32(i, v)
	}

	require.NoError(t, ReluBFloat16(dIn, dOut, n))
	SynchronizeOrFail(t)

	out := dOut.BFloat16()
	for i, v := range values {
		want := v
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, out.GetFloat32(i), "element %d", i)
	}
}
