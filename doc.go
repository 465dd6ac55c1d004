// Package stride provides a CUDA-style kernel launch runtime executed on CPU,
// together with the elementwise activation kernel set used by tensor
// frameworks: ReLU and its gradient (including the packed half-precision
// pair-at-a-time variant), packed int8 ReLU, the Relu6/LeakyRelu/Elu/Selu
// family, and tanh-approximate GELU with its analytic gradient.
//
// Kernels are plain Go functions launched across a grid/block index space.
// Each work item reads and writes disjoint slices of device memory, so
// execution order is unconstrained and blocks are spread across a pool of
// worker goroutines sized to the machine.
//
// Example:
//
//	d_x, _ := stride.Malloc(n * 4)
//	defer stride.Free(d_x)
//	stride.Memcpy(d_x, hostData, n*4, stride.MemcpyHostToDevice)
//	if err := stride.Gelu(d_x, d_x, n); err != nil {
//		log.Fatal(err)
//	}
//	stride.Synchronize()
package stride
