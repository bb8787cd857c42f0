//go:build darwin

package cpu

import (
	"runtime"
)

// SetupWorkerAffinity locks the goroutine to an OS thread.
// CPU pinning is not available on macOS, so pin is ignored.
func SetupWorkerAffinity(_ int, _ bool) func() {
	runtime.LockOSThread()

	return func() {
		runtime.UnlockOSThread()
	}
}
