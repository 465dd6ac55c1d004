package stride

import (
	"fmt"
	"runtime"
	"sync"
)

// launchInternal distributes the blocks of a launch across worker
// goroutines. Threads within a block run sequentially on one worker, which
// keeps a block's memory traffic on one core.
func (ctx *Context) launchInternal(
	kernelFunc func(ThreadID, ...interface{}),
	grid, block Dim3,
	stream *Stream,
	args ...interface{},
) error {
	if err := validateLaunch(grid, block); err != nil {
		return err
	}

	gridSize := grid.Size()
	blockSize := block.Size()

	// A zero-sized grid still submits an empty task so stream ordering is
	// preserved.
	if gridSize == 0 {
		stream.Submit(func() {})
		return nil
	}

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	stream.Submit(func() {
		var wg sync.WaitGroup
		wg.Add(numWorkers)

		for workerID := 0; workerID < numWorkers; workerID++ {
			startBlock := workerID * blocksPerWorker
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			go func(start, end int) {
				defer wg.Done()

				for blockID := start; blockID < end; blockID++ {
					blockIdx := linearTo3D(blockID, grid)

					for threadID := 0; threadID < blockSize; threadID++ {
						tid := ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						}
						kernelFunc(tid, args...)
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// validateLaunch rejects configurations the hardware analog could not
// schedule. A failed validation is the runtime's launch failure: the caller
// treats it as fatal for the enclosing operation.
func validateLaunch(grid, block Dim3) error {
	if grid.X < 0 || grid.Y < 0 || grid.Z < 0 {
		return NewLaunchError("Launch", fmt.Sprintf("negative grid dimension: %+v", grid), nil)
	}
	if block.X <= 0 || block.Y <= 0 || block.Z <= 0 {
		return NewLaunchError("Launch", fmt.Sprintf("non-positive block dimension: %+v", block), nil)
	}
	if block.Size() > MaxThreadsPerBlock {
		return NewLaunchError("Launch",
			fmt.Sprintf("block size %d exceeds limit %d", block.Size(), MaxThreadsPerBlock), nil)
	}
	return nil
}

// linearTo3D converts a flat index into 3D coordinates within dim.
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}

// WorkerPool is a fixed pool of goroutines for host-side task execution,
// used by tooling that wants parallelism outside the stream model.
type WorkerPool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup
}

// NewWorkerPool creates a pool with the given number of workers, defaulting
// to the core count.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		workers: workers,
		tasks:   make(chan func(), workers*2),
	}

	for i := 0; i < workers; i++ {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		task()
	}
}

// Submit adds a task to the pool.
func (wp *WorkerPool) Submit(task func()) {
	wp.tasks <- task
}

// Close shuts the pool down and waits for in-flight tasks.
func (wp *WorkerPool) Close() {
	close(wp.tasks)
	wp.wg.Wait()
}

// ForEach applies fn to each float32 element in parallel.
func ForEach(data DevicePtr, size int, fn func(idx int, val *float32)) error {
	if size == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(size, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		idx := tid.Global()
		if idx < size {
			slice := data.Float32()
			fn(idx, &slice[idx])
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}

// Map writes fn(input[i]) to output[i] for each element in parallel.
func Map(input, output DevicePtr, size int, fn func(float32) float32) error {
	if size == 0 {
		return nil
	}
	cfg := FixedBlockSizeConfig(size, DefaultBlockSize)

	kernel := KernelFunc(func(tid ThreadID, args ...interface{}) {
		idx := tid.Global()
		if idx < size {
			in := input.Float32()
			out := output.Float32()
			out[idx] = fn(in[idx])
		}
	})

	return Launch(kernel, cfg.Grid, cfg.Block)
}
