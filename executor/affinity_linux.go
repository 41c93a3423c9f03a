//go:build linux

package executor

import (
	"log/slog"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinCurrentThread locks the calling goroutine to its OS thread and
// restricts that thread's scheduling to a single logical core, the way
// original_source's worker threads are pinned via pthread affinity.
// It calls runtime.LockOSThread itself first, so the Go scheduler cannot
// migrate the goroutine to an unpinned thread between syscalls.
func pinCurrentThread(core int) {
	runtime.LockOSThread()

	var set unix.CPUSet
	set.Zero()
	set.Set(core % runtime.NumCPU())
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		slog.Default().Debug("cpu affinity pin failed", slog.Int("core", core), slog.Any("error", err))
	}
}
