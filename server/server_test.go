package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-httpd/api"
	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/fake"
	"github.com/momentics/hioload-httpd/router"
)

func TestNew_DefaultsExecutor(t *testing.T) {
	cfg := control.DefaultConfig().Server
	cfg.Workers = 3
	srv := New(cfg, router.New())
	assert.Equal(t, 3, srv.Executor().NumWorkers())
	assert.Nil(t, srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))

	_, err := srv.Executor().Submit(func() {})
	assert.ErrorIs(t, err, api.ErrPoolClosed)
}

func TestShutdownBeforeListen(t *testing.T) {
	exec := &fake.Executor{}
	srv := New(control.DefaultConfig().Server, router.New(), WithExecutor(exec))
	var stopper api.GracefulShutdown = srv
	require.NoError(t, stopper.Shutdown(context.Background()))
	assert.ErrorIs(t, srv.ListenAndServe(context.Background()), api.ErrServerClosed)

	_, err := exec.Submit(func() {})
	assert.ErrorIs(t, err, api.ErrPoolClosed)
}
