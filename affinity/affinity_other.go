//go:build !linux

// File: affinity/affinity_other.go
// Author: momentics <momentics@gmail.com>

package affinity

import "github.com/momentics/hioload-httpd/api"

func setAffinityPlatform(int) error { return api.ErrUnsupportedPlatform }

// Current is unsupported off Linux.
func Current() ([]int, error) { return nil, api.ErrUnsupportedPlatform }
