//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// cpuID is wrapped into [0, runtime.NumCPU()-1].
func pinToCore(cpuID int) (int, error) {
	numCPU := runtime.NumCPU()
	if cpuID < 0 || cpuID >= numCPU {
		cpuID = cpuID % numCPU
		if cpuID < 0 {
			cpuID += numCPU
		}
	}

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpuID)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return 0, err
	}

	return cpuID, nil
}

// SetupWorkerAffinity locks the calling goroutine to its own OS thread for the
// lifetime of a worker and, when pin is true, pins that thread to a CPU core
// derived from workerID. Pinning is best effort; a failure leaves the thread
// locked but unpinned.
// Returns a cleanup function that should be deferred. For a pinned thread the
// cleanup leaves the goroutine locked, so the worker goroutine must return after it.
func SetupWorkerAffinity(workerID int, pin bool) func() {
	runtime.LockOSThread()
	if pin {
		if _, err := pinToCore(workerID); err == nil {
			// The thread keeps its narrowed affinity, so it is never handed back to
			// the runtime: exiting the goroutine while still locked terminates it.
			return func() {}
		}
	}

	return func() {
		runtime.UnlockOSThread()
	}
}
