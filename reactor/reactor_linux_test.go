//go:build linux

package reactor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-httpd/api"
)

func newPipe(t *testing.T) (r, w int) {
	t.Helper()
	var p [2]int
	require.NoError(t, unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		_ = unix.Close(p[0])
		_ = unix.Close(p[1])
	})
	return p[0], p[1]
}

func TestReactor_ReportsReadReadiness(t *testing.T) {
	re, err := NewReactor(8)
	require.NoError(t, err)
	defer re.Close()

	rfd, wfd := newPipe(t)
	require.NoError(t, re.Register(rfd))

	_, err = unix.Write(wfd, []byte("x"))
	require.NoError(t, err)

	events := make([]api.Event, 8)
	n, err := re.Wait(events)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, rfd, events[0].FD)
	assert.NotZero(t, events[0].Events&api.EventRead)
}

func TestReactor_DoubleRegisterFails(t *testing.T) {
	re, err := NewReactor(8)
	require.NoError(t, err)
	defer re.Close()

	rfd, _ := newPipe(t)
	require.NoError(t, re.Register(rfd))
	assert.Error(t, re.Register(rfd))

	require.NoError(t, re.Unregister(rfd))
	assert.NoError(t, re.Register(rfd))
}

func TestReactor_WakeInterruptsWait(t *testing.T) {
	re, err := NewReactor(8)
	require.NoError(t, err)
	defer re.Close()

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := re.Wait(make([]api.Event, 8))
		done <- result{n, err}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, re.Wake())

	select {
	case r := <-done:
		assert.NoError(t, r.err)
		assert.Equal(t, 0, r.n)
	case <-time.After(2 * time.Second):
		t.Fatal("Wait was not interrupted by Wake")
	}
}

func TestReactor_HangupReported(t *testing.T) {
	re, err := NewReactor(8)
	require.NoError(t, err)
	defer re.Close()

	sp, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	require.NoError(t, err)
	defer unix.Close(sp[0])

	require.NoError(t, re.Register(sp[0]))
	require.NoError(t, unix.Close(sp[1]))

	events := make([]api.Event, 8)
	n, err := re.Wait(events)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.NotZero(t, events[0].Events&api.EventHangup)
}
