//go:build !linux

// File: control/platform_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import "runtime"

// RegisterPlatformProbes adds portable runtime probes.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("runtime", func() any {
		return map[string]int64{
			"cpus":       int64(runtime.NumCPU()),
			"goroutines": int64(runtime.NumGoroutine()),
		}
	})
}
