//go:build !linux

package stride

// systemMemory returns a conservative default on platforms without a
// sysinfo syscall wrapper.
func systemMemory() uint64 {
	return defaultSystemMemory
}
