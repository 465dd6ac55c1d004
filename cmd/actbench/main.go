// Command actbench sweeps the activation kernel set over a range of buffer
// sizes and reports effective memory bandwidth per kernel.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"runtime"
	"time"

	"github.com/strideml/stride"
)

func main() {
	var (
		iters = flag.Int("iters", 20, "Iterations per kernel and size")
		seed  = flag.Int64("seed", 42, "RNG seed for input data")
	)
	flag.Parse()

	fmt.Println("=== stride activation kernel sweep ===")
	fmt.Printf("Date: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("CPU: %d cores\n", runtime.NumCPU())
	fmt.Println(stride.GetCPUInfo())
	fmt.Println()

	rng := rand.New(rand.NewSource(*seed))
	sizes := []int{1 << 12, 1 << 16, 1 << 20, 1 << 24}

	for _, n := range sizes {
		fmt.Printf("n = %d\n", n)
		runFloat32(rng, n, *iters)
		runHalf(rng, n, *iters)
		runInt8(rng, n, *iters)
		fmt.Println()
	}
}

func runFloat32(rng *rand.Rand, n, iters int) {
	host := make([]float32, n)
	for i := range host {
		host[i] = rng.Float32()*4 - 2
	}

	dIn := mustMalloc(n * 4)
	dOut := mustMalloc(n * 4)
	dGrad := mustMalloc(n * 4)
	defer free(dIn, dOut, dGrad)

	check(stride.Memcpy(dIn, host, n*4, stride.MemcpyHostToDevice))
	check(stride.Memcpy(dGrad, host, n*4, stride.MemcpyHostToDevice))

	report("Relu/f32", n*4*2, iters, func() error { return stride.Relu(dIn, dOut, n) })
	report("ReluGrad/f32", n*4*3, iters, func() error { return stride.ReluGrad(dGrad, dIn, dOut, n) })
	report("Gelu/f32", n*4*2, iters, func() error { return stride.Gelu(dIn, dOut, n) })
	report("GeluGrad/f32", n*4*3, iters, func() error { return stride.GeluGrad(dGrad, dIn, dOut, n) })
	report("Selu/f32", n*4*2, iters, func() error { return stride.Selu(dIn, dOut, n) })
}

func runHalf(rng *rand.Rand, n, iters int) {
	dGrad := mustMalloc(n * 2)
	dFeat := mustMalloc(n * 2)
	dOut := mustMalloc(n * 2)
	defer free(dGrad, dFeat, dOut)

	grad := dGrad.Float16()
	feat := dFeat.Float16()
	for i := 0; i < n; i++ {
		grad.SetFloat32(i, rng.Float32()*2-1)
		feat.SetFloat32(i, rng.Float32()*4-2)
	}

	report("ReluGradHalf", n*2*3, iters, func() error { return stride.ReluGradHalf(dGrad, dFeat, dOut, n) })
	report("GeluHalf", n*2*2, iters, func() error { return stride.GeluHalf(dFeat, dOut, n) })
}

func runInt8(rng *rand.Rand, n, iters int) {
	dIn := mustMalloc(n)
	dOut := mustMalloc(n)
	defer free(dIn, dOut)

	in := dIn.Int8()
	for i := 0; i < n; i++ {
		in[i] = int8(rng.Intn(256) - 128)
	}

	report("ReluInt8x4", n*2, iters, func() error { return stride.ReluInt8x4(dIn, dOut, n) })
}

func report(name string, bytesPerIter, iters int, fn func() error) {
	start := time.Now()
	for i := 0; i < iters; i++ {
		check(fn())
	}
	check(stride.Synchronize())
	elapsed := time.Since(start)

	gbps := float64(bytesPerIter) * float64(iters) / elapsed.Seconds() / 1e9
	fmt.Printf("  %-16s %10.2f GB/s  (%v / %d iters)\n", name, gbps, elapsed, iters)
}

func mustMalloc(size int) stride.DevicePtr {
	ptr, err := stride.Malloc(size)
	if err != nil {
		log.Fatalf("malloc %d bytes: %v", size, err)
	}
	return ptr
}

func free(ptrs ...stride.DevicePtr) {
	for _, p := range ptrs {
		if err := stride.Free(p); err != nil {
			log.Printf("free: %v", err)
		}
	}
}

func check(err error) {
	// Launch failures are fatal for the enclosing run; there is no retry.
	if err != nil {
		log.Fatal(err)
	}
}
