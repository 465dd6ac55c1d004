package stride

import (
	"golang.org/x/sys/cpu"
)

// CPUFeatures tracks the instruction set extensions relevant to the kernel
// set.
type CPUFeatures struct {
	HasSSE4   bool
	HasAVX    bool
	HasAVX2   bool
	HasAVX512 bool
	HasFMA    bool
}

var cpuFeatures CPUFeatures

func init() {
	detectCPUFeatures()
}

func detectCPUFeatures() {
	cpuFeatures = CPUFeatures{
		HasSSE4:   cpu.X86.HasSSE41 || cpu.X86.HasSSE42,
		HasAVX:    cpu.X86.HasAVX,
		HasAVX2:   cpu.X86.HasAVX2,
		HasAVX512: cpu.X86.HasAVX512F,
		HasFMA:    cpu.X86.HasFMA,
	}
}

// HasPairedHalf reports whether the half-pair fast path should be used. The
// paired representation pays off on cores with wide vector units; F16C
// conversion support ships alongside AVX2 on every x86 part we care about,
// so AVX2+FMA is the gate.
func HasPairedHalf() bool {
	return cpuFeatures.HasAVX2 && cpuFeatures.HasFMA
}

// GetCPUInfo returns a string describing the detected CPU features.
func GetCPUInfo() string {
	features := []string{}

	if cpuFeatures.HasSSE4 {
		features = append(features, "SSE4")
	}
	if cpuFeatures.HasAVX {
		features = append(features, "AVX")
	}
	if cpuFeatures.HasAVX2 {
		features = append(features, "AVX2")
	}
	if cpuFeatures.HasFMA {
		features = append(features, "FMA")
	}
	if cpuFeatures.HasAVX512 {
		features = append(features, "AVX512F")
	}

	if len(features) == 0 {
		return "No SIMD extensions detected"
	}

	result := "CPU features: "
	for i, f := range features {
		if i > 0 {
			result += ", "
		}
		result += f
	}
	return result
}
