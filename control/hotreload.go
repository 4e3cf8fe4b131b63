// File: control/hotreload.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config file watching. Only settings that are safe to change at runtime
// are applied by the hooks; listener and pool sizing need a restart.

package control

import (
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReloadHooks fans out reloaded configs to registered components.
type ReloadHooks struct {
	mu    sync.Mutex
	hooks []func(*Config)
}

// Register adds a reload listener.
func (r *ReloadHooks) Register(fn func(*Config)) {
	r.mu.Lock()
	r.hooks = append(r.hooks, fn)
	r.mu.Unlock()
}

// Trigger invokes all hooks synchronously with cfg.
func (r *ReloadHooks) Trigger(cfg *Config) {
	r.mu.Lock()
	hooks := slices.Clone(r.hooks)
	r.mu.Unlock()
	for _, fn := range hooks {
		fn(cfg)
	}
}

// Watch re-reads v's config file on change and triggers the hooks with the
// decoded result. Invalid files are reported to onErr and otherwise ignored.
func (r *ReloadHooks) Watch(v *viper.Viper, onErr func(error)) {
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := LoadConfig(v)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			return
		}
		r.Trigger(cfg)
	})
	v.WatchConfig()
}
