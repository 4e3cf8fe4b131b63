// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration loading (viper, HIOLOAD_* environment overrides), config
// file hot-reload hooks, process counters and debug probes.
package control
