// File: control/debug.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Named probes sampled on demand, e.g. worker pool stats.

package control

import "sync"

// DebugProbes holds registered probe functions.
type DebugProbes struct {
	mu     sync.RWMutex
	probes map[string]func() any
}

// NewDebugProbes creates a probe registry.
func NewDebugProbes() *DebugProbes {
	return &DebugProbes{
		probes: make(map[string]func() any),
	}
}

// RegisterProbe inserts a named hook, replacing any previous one.
func (dp *DebugProbes) RegisterProbe(name string, fn func() any) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.probes[name] = fn
}

// DumpState returns the output of every probe.
func (dp *DebugProbes) DumpState() map[string]any {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	out := make(map[string]any, len(dp.probes))
	for k, fn := range dp.probes {
		out[k] = fn()
	}
	return out
}

// Merge flattens probe output into snapshot under "<probe>.<key>" for map
// results and "<probe>" otherwise.
func (dp *DebugProbes) Merge(snapshot map[string]any) map[string]any {
	for name, v := range dp.DumpState() {
		if m, ok := v.(map[string]int64); ok {
			for k, n := range m {
				snapshot[name+"."+k] = n
			}
			continue
		}
		snapshot[name] = v
	}
	return snapshot
}
