// Package cpu ties worker goroutines to OS threads and, where the platform
// allows it, to CPU cores.
package cpu

import "runtime"

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}
