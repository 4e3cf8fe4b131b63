package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/momentics/hioload-httpd/control"
	"github.com/momentics/hioload-httpd/store"
)

func TestBindFlags_OverrideDefaults(t *testing.T) {
	v, err := control.NewViper("")
	require.NoError(t, err)
	require.NoError(t, bindFlags(v, serveCmd.Flags()))
	require.NoError(t, serveCmd.Flags().Set("port", "9191"))
	require.NoError(t, serveCmd.Flags().Set("db", ""))
	t.Cleanup(func() {
		_ = serveCmd.Flags().Set("port", "8080")
		_ = serveCmd.Flags().Set("db", "user.db")
	})

	cfg, err := control.LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "", cfg.Store.Path)
	assert.Equal(t, 16, cfg.Server.Workers)
}

func TestOpenStore_Memory(t *testing.T) {
	users, err := openStore(control.StoreConfig{}, zap.NewNop())
	require.NoError(t, err)
	defer users.Close()

	ok, err := users.RegisterUser(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.IsType(t, &store.BreakerStore{}, users)
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := control.StoreConfig{
		Path:       filepath.Join(t.TempDir(), "user.db"),
		BcryptCost: bcrypt.MinCost,
	}
	users, err := openStore(cfg, zap.NewNop())
	require.NoError(t, err)
	defer users.Close()

	ok, err := users.RegisterUser(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = users.LoginUser(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "hioload-httpd dev\n", out.String())
}
