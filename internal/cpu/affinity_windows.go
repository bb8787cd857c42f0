//go:build windows

package cpu

import (
	"runtime"

	"golang.org/x/sys/windows"
)

var (
	kernel32              = windows.NewLazySystemDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// cpuID is wrapped into [0, runtime.NumCPU()-1].
// Returns the previous affinity mask on success.
func pinToCore(cpuID int) (uintptr, error) {
	numCPU := runtime.NumCPU()
	if cpuID < 0 || cpuID >= numCPU {
		cpuID = cpuID % numCPU
		if cpuID < 0 {
			cpuID += numCPU
		}
	}

	// Bit N = CPU N, so for CPU 0 it's 1, for CPU 1 it's 2, etc.
	mask := uintptr(1) << uint(cpuID) // #nosec G115 -- cpuID is wrapped into range above

	prevMask, _, err := setThreadAffinityMask.Call(uintptr(windows.CurrentThread()), mask)
	if prevMask == 0 {
		return 0, err
	}

	return prevMask, nil
}

// SetupWorkerAffinity locks the calling goroutine to its own OS thread and, when
// pin is true, pins that thread to a CPU core derived from workerID.
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
