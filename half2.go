package stride

// Half2 packs two Float16 values into one 32-bit word, the layout the
// paired ReLU-gradient kernel loads and stores. The low half holds the
// element with the lower index.
type Half2 uint32

// PackHalf2 builds a Half2 from two Float16 values.
func PackHalf2(lo, hi Float16) Half2 {
	return Half2(uint32(lo) | uint32(hi)<<16)
}

// Lo returns the low-index element.
func (h Half2) Lo() Float16 {
	return Float16(h)
}

// Hi returns the high-index element.
func (h Half2) Hi() Float16 {
	return Float16(h >> 16)
}

// usePairedHalf selects the lanewise fast path for pair operations. Set
// once from CPU detection; tests flip it to cover both paths.
var usePairedHalf = HasPairedHalf()

// reluGradPair computes the ReLU gradient for both lanes: a lane of the
// result is the gradient lane where the feature lane is greater than zero,
// and zero otherwise. Exactly-zero features pass no gradient.
func reluGradPair(gradient, feature Half2) Half2 {
	if usePairedHalf {
		// Lanewise path: the comparison needs only the feature's sign,
		// zero, and NaN bits, so the gradient lane is copied or cleared
		// without widening either operand.
		var out Half2
		if feature.Lo().Positive() {
			out = Half2(uint32(gradient.Lo()))
		}
		if feature.Hi().Positive() {
			out |= Half2(uint32(gradient.Hi()) << 16)
		}
		return out
	}

	// Fallback: widen both lanes to float32, select, and narrow again.
	gradLo := gradient.Lo().ToFloat32()
	gradHi := gradient.Hi().ToFloat32()
	featLo := feature.Lo().ToFloat32()
	featHi := feature.Hi().ToFloat32()

	var outLo, outHi float32
	if featLo > 0 {
		outLo = gradLo
	}
	if featHi > 0 {
		outHi = gradHi
	}
	return PackHalf2(FromFloat32(outLo), FromFloat32(outHi))
}
