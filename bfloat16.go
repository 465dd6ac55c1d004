package stride

import (
	"math"
)

// BFloat16 is a brain floating point value: 1 sign bit, 8 exponent bits,
// 7 mantissa bits. It keeps float32's exponent range, so conversion is a
// mantissa truncation.
type BFloat16 uint16

// ToBFloat16 narrows a float32 with round-to-nearest-even.
func ToBFloat16(f float32) BFloat16 {
	bits := math.Float32bits(f)

	if bits&0x7F800000 == 0x7F800000 && bits&0x7FFFFF != 0 {
		// NaN: keep it quiet with a nonzero payload.
		return BFloat16(bits>>16 | 0x40)
	}

	rounding := uint32(0x7FFF + (bits>>16)&1)
	return BFloat16((bits + rounding) >> 16)
}

// ToFloat32 widens a BFloat16 to float32.
func (b BFloat16) ToFloat32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// Positive reports whether b compares greater than zero.
func (b BFloat16) Positive() bool {
	if b&0x8000 != 0 || b&0x7FFF == 0 {
		return false
	}
	return !(b&0x7F80 == 0x7F80 && b&0x7F != 0) // not NaN
}

// BFloat16Slice is a view of raw bytes as little-endian BFloat16 values.
type BFloat16Slice struct {
	data []byte
}

// NewBFloat16Slice wraps a byte slice.
func NewBFloat16Slice(data []byte) BFloat16Slice {
	return BFloat16Slice{data: data}
}

// Len returns the number of BFloat16 elements.
func (s BFloat16Slice) Len() int {
	return len(s.data) / 2
}

// Get returns the BFloat16 at index i.
func (s BFloat16Slice) Get(i int) BFloat16 {
	return BFloat16(uint16(s.data[i*2]) | (uint16(s.data[i*2+1]) << 8))
}

// Set stores val at index i.
func (s BFloat16Slice) Set(i int, val BFloat16) {
	s.data[i*2] = byte(val)
	s.data[i*2+1] = byte(val >> 8)
}

// GetFloat32 returns the element at index i widened to float32.
func (s BFloat16Slice) GetFloat32(i int) float32 {
	return s.Get(i).ToFloat32()
}

// SetFloat32 narrows val and stores it at index i.
func (s BFloat16Slice) SetFloat32(i int, val float32) {
	s.Set(i, ToBFloat16(val))
}

// BFloat16 returns a BFloat16 view of the device memory.
func (d DevicePtr) BFloat16() BFloat16Slice {
	if d.ptr == nil {
		return BFloat16Slice{}
	}
	return NewBFloat16Slice(d.Byte())
}
