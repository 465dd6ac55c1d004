package stride

// LaunchConfig holds the grid and block dimensions computed for a kernel
// launch.
type LaunchConfig struct {
	Grid  Dim3
	Block Dim3
}

// Per-kernel thread-per-block counts. The gradient and packed-int8 kernels
// run wide blocks; the GELU kernels use the default.
const (
	reluGradBlockSize   = 512
	reluInt8x4BlockSize = 512
	geluBlockSize       = 256
)

// DivUp divides a by b, rounding up.
func DivUp(a, b int) int {
	return (a + b - 1) / b
}

// FixedBlockSizeConfig sizes a 1D grid so that work items cover all work
// elements with the given block size. work must be non-negative; a zero
// work count yields a zero-sized grid, which the launch layer turns into an
// ordered no-op.
func FixedBlockSizeConfig(work, blockSize int) LaunchConfig {
	return LaunchConfig{
		Grid:  Dim3{X: DivUp(work, blockSize), Y: 1, Z: 1},
		Block: Dim3{X: blockSize, Y: 1, Z: 1},
	}
}
