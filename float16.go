package stride

import (
	"math"
)

// Float16 is an IEEE 754 binary16 value stored in a uint16.
type Float16 uint16

const (
	float16SignMask     = 0x8000
	float16ExponentMask = 0x7C00
	float16MantissaMask = 0x03FF
	float16ExponentBias = 15
	float16MantissaBits = 10
)

// ToFloat32 widens a Float16 to float32.
func (f Float16) ToFloat32() float32 {
	sign := uint32(f&float16SignMask) << 16
	exponent := (f & float16ExponentMask) >> float16MantissaBits
	mantissa := f & float16MantissaMask

	switch exponent {
	case 0:
		if mantissa == 0 {
			// Signed zero.
			return math.Float32frombits(sign)
		}
		// Subnormal: renormalize until the implicit leading bit surfaces,
		// then drop it and rebias. Shifting left by exp halves the biased
		// exponent's starting point of 2^-14.
		exp := uint32(0)
		for mantissa&0x400 == 0 {
			mantissa <<= 1
			exp++
		}
		mantissa &= float16MantissaMask
		exponentBits := uint32(127 - float16ExponentBias + 1 - exp)
		return math.Float32frombits(sign | (exponentBits << 23) | (uint32(mantissa) << 13))
	case 0x1F:
		if mantissa == 0 {
			return math.Float32frombits(sign | 0x7F800000) // Infinity
		}
		return math.Float32frombits(sign | 0x7FC00000 | (uint32(mantissa) << 13)) // NaN
	default:
		return math.Float32frombits(sign | ((uint32(exponent) + 127 - float16ExponentBias) << 23) | (uint32(mantissa) << 13))
	}
}

// FromFloat32 narrows a float32 to Float16 with round-to-nearest-even.
func FromFloat32(f float32) Float16 {
	bits := math.Float32bits(f)
	sign := uint16((bits >> 16) & float16SignMask)
	exp32 := (bits >> 23) & 0xFF
	mantissa := bits & 0x7FFFFF

	if exp32 == 0xFF {
		if mantissa == 0 {
			return Float16(sign | float16ExponentMask) // Infinity
		}
		// Keep the NaN quiet and its payload nonzero.
		return Float16(sign | float16ExponentMask | 0x200 | uint16(mantissa>>13))
	}

	exp := int(exp32) - 127 + float16ExponentBias

	if exp >= 0x1F {
		// Overflow to infinity.
		return Float16(sign | float16ExponentMask)
	}

	if exp <= 0 {
		if exp < -10 {
			// Underflow below subnormal range.
			return Float16(sign)
		}
		// Subnormal result: shift the implicit leading bit into place.
		mantissa |= 0x800000
		shift := uint(14 - exp)
		half := mantissa >> shift
		rem := mantissa & (1<<shift - 1)
		halfway := uint32(1) << (shift - 1)
		if rem > halfway || (rem == halfway && half&1 == 1) {
			half++
		}
		return Float16(sign | uint16(half))
	}

	half := uint32(exp)<<float16MantissaBits | mantissa>>13
	rem := mantissa & 0x1FFF
	if rem > 0x1000 || (rem == 0x1000 && half&1 == 1) {
		// Rounding may carry into the exponent, including up to infinity,
		// which is the correct round-to-nearest result.
		half++
	}
	return Float16(sign | uint16(half))
}

// IsNaN reports whether f is a NaN.
func (f Float16) IsNaN() bool {
	return f&float16ExponentMask == float16ExponentMask && f&float16MantissaMask != 0
}

// Positive reports whether f compares greater than zero. NaN and both
// zeroes are not positive; positive infinity is.
func (f Float16) Positive() bool {
	if f&float16SignMask != 0 {
		return false
	}
	if f&^float16SignMask == 0 {
		return false
	}
	return !f.IsNaN()
}

// Float16Slice is a view of raw bytes as little-endian Float16 values.
type Float16Slice struct {
	data []byte
}

// NewFloat16Slice wraps a byte slice.
func NewFloat16Slice(data []byte) Float16Slice {
	return Float16Slice{data: data}
}

// Len returns the number of Float16 elements.
func (s Float16Slice) Len() int {
	return len(s.data) / 2
}

// Get returns the Float16 at index i.
func (s Float16Slice) Get(i int) Float16 {
	return Float16(uint16(s.data[i*2]) | (uint16(s.data[i*2+1]) << 8))
}

// Set stores val at index i.
func (s Float16Slice) Set(i int, val Float16) {
	s.data[i*2] = byte(val)
	s.data[i*2+1] = byte(val >> 8)
}

// GetFloat32 returns the element at index i widened to float32.
func (s Float16Slice) GetFloat32(i int) float32 {
	return s.Get(i).ToFloat32()
}

// SetFloat32 narrows val and stores it at index i.
func (s Float16Slice) SetFloat32(i int, val float32) {
	s.Set(i, FromFloat32(val))
}

// Float16 returns a Float16 view of the device memory.
func (d DevicePtr) Float16() Float16Slice {
	if d.ptr == nil {
		return Float16Slice{}
	}
	return NewFloat16Slice(d.Byte())
}
