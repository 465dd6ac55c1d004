package stride

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of a memory transfer. All memory is
// CPU-addressable here, so the kinds exist for API compatibility and are
// treated identically.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// MemoryPool hands out aligned allocations and recycles freed blocks
// through a free list.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	ptr  unsafe.Pointer
	size int
	used bool
	buf  []byte // keeps the backing array reachable
}

// NewMemoryPool creates an empty pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Malloc allocates size bytes of device memory from the context's pool.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free returns memory to the context's pool. Freeing a zero DevicePtr is an
// error; freeing twice is detected.
func (ctx *Context) Free(ptr DevicePtr) error {
	return ctx.memory.Free(ptr)
}

// Memcpy copies size bytes between the supported operand kinds: DevicePtr,
// unsafe.Pointer, and the numeric slice types.
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	dstPtr, err := memcpyOperand("dst", dst)
	if err != nil {
		return err
	}
	srcPtr, err := memcpyOperand("src", src)
	if err != nil {
		return err
	}

	if size <= 0 {
		return nil
	}
	// Empty slices and zero DevicePtrs resolve to nil; copying a nonzero
	// size out of one is a caller error, not a silent no-op.
	if dstPtr == nil || srcPtr == nil {
		return NewInvalidArgError("Memcpy", "nil operand for nonzero size")
	}

	copy((*[1 << 30]byte)(dstPtr)[:size:size], (*[1 << 30]byte)(srcPtr)[:size:size])
	return nil
}

func memcpyOperand(role string, v interface{}) (unsafe.Pointer, error) {
	switch s := v.(type) {
	case DevicePtr:
		return s.ptr, nil
	case unsafe.Pointer:
		return s, nil
	case []byte:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []float32:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []float64:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []int32:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []int8:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	case []uint16:
		if len(s) > 0 {
			return unsafe.Pointer(&s[0]), nil
		}
	default:
		return nil, NewInvalidArgError("Memcpy", fmt.Sprintf("unsupported %s type: %T", role, v))
	}
	return nil, nil
}

// Allocate hands out an aligned block, reusing a freed one when possible.
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)
	if alignedSize < MinAllocationSize {
		alignedSize = MinAllocationSize
	}

	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true

			mp.totalAlloc += int64(alloc.size)
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}

			return DevicePtr{ptr: alloc.ptr, size: size}, nil
		}
	}

	// Over-allocate so the start can be rounded up to the alignment
	// boundary regardless of where the runtime places the backing array.
	buf := make([]byte, alignedSize+MemoryAlignment)
	base := uintptr(unsafe.Pointer(&buf[0]))
	aligned := (base + MemoryAlignment - 1) &^ (MemoryAlignment - 1)
	ptr := unsafe.Add(unsafe.Pointer(&buf[0]), aligned-base)

	alloc := &allocation{
		ptr:  ptr,
		size: alignedSize,
		used: true,
		buf:  buf,
	}
	mp.allocated[aligned] = alloc

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}

	return DevicePtr{ptr: ptr, size: size}, nil
}

// Free returns a block to the free list.
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}

	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.freeList = append(mp.freeList, alloc)
	mp.totalAlloc -= int64(alloc.size)

	return nil
}

// GetStats returns the current and peak allocation totals in bytes.
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// Typed views over device memory. Each view shares the underlying buffer;
// kernels index into them with their global work-item index.

// Float32 returns a float32 slice view of the memory.
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]float32)(d.ptr)[: d.size/4 : d.size/4]
}

// Float64 returns a float64 slice view of the memory.
func (d DevicePtr) Float64() []float64 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 27]float64)(d.ptr)[: d.size/8 : d.size/8]
}

// Int32 returns an int32 slice view of the memory.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]int32)(d.ptr)[: d.size/4 : d.size/4]
}

// Int8 returns an int8 slice view of the memory.
func (d DevicePtr) Int8() []int8 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 30]int8)(d.ptr)[:d.size:d.size]
}

// Uint32 returns a uint32 slice view of the memory. The packed int8 and
// half-pair kernels use this view to process four int8 or two float16
// elements per load.
func (d DevicePtr) Uint32() []uint32 {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 28]uint32)(d.ptr)[: d.size/4 : d.size/4]
}

// Byte returns a byte slice view of the full memory region.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return (*[1 << 30]byte)(d.ptr)[:d.size:d.size]
}

// Offset returns a DevicePtr advanced by the given number of bytes, sharing
// the same underlying memory.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Pointer(uintptr(d.ptr) + uintptr(bytes)),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region.
func (d DevicePtr) Size() int {
	return d.size
}
