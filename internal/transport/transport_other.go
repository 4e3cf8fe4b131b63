//go:build !linux

// File: internal/transport/transport_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub syscalls for platforms without epoll support.

package transport

import (
	"net"
	"time"

	"github.com/momentics/hioload-httpd/api"
)

func sysListen(string, int, int) (int, string, error) {
	return -1, "socket", api.ErrUnsupportedPlatform
}

func sysAccept(int) (int, string, error) { return -1, "", api.ErrUnsupportedPlatform }
func sysLocalAddr(int) (net.Addr, error) { return nil, api.ErrUnsupportedPlatform }
func sysRead(int, []byte) (int, error) { return 0, api.ErrUnsupportedPlatform }
func sysWrite(int, []byte) (int, error) { return 0, api.ErrUnsupportedPlatform }
func sysClose(int) error { return nil }
func sysIsWouldBlock(error) bool { return false }
func sysIsInterrupted(error) bool { return false }
func sysIsTransientAccept(error) bool { return false }
func sysIsResourceExhausted(error) bool { return false }
func sysWaitReadable(int, time.Duration) error { return api.ErrUnsupportedPlatform }
func sysWaitWritable(int, time.Duration) error { return api.ErrUnsupportedPlatform }
