// Package stride configuration constants
package stride

// Thread and block dimensions.
const (
	// DefaultBlockSize is the block size used by one-element-per-thread
	// kernels.
	DefaultBlockSize = 256

	// MaxThreadsPerBlock caps a block's size, matching the CUDA limit.
	MaxThreadsPerBlock = 1024
)

// Memory pool parameters.
const (
	// MemoryAlignment is the byte alignment of every allocation. 64 bytes
	// covers cache lines and guarantees the word alignment the packed int8
	// and half-pair kernels assume.
	MemoryAlignment = 64

	// MinAllocationSize prevents fragmentation from tiny allocations.
	MinAllocationSize = 64

	// defaultSystemMemory is reported when the platform offers no memory
	// introspection.
	defaultSystemMemory = 16 * 1024 * 1024 * 1024
)
