//go:build linux

// File: control/platform_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"os"
	"runtime"
)

// RegisterPlatformProbes adds runtime probes available on Linux.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("runtime", func() any {
		fds := int64(-1)
		if entries, err := os.ReadDir("/proc/self/fd"); err == nil {
			fds = int64(len(entries))
		}
		return map[string]int64{
			"cpus":       int64(runtime.NumCPU()),
			"goroutines": int64(runtime.NumGoroutine()),
			"open_fds":   fds,
		}
	})
}
