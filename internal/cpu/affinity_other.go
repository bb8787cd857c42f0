//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// SetupWorkerAffinity locks the goroutine to an OS thread. Pinning is not
// supported on this platform, so pin is ignored.
func SetupWorkerAffinity(_ int, _ bool) func() {
	runtime.LockOSThread()

	return func() {
		runtime.UnlockOSThread()
	}
}
