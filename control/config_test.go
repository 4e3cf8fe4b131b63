package control

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 128, cfg.Server.Backlog)
	assert.Equal(t, 10, cfg.Server.MaxEvents)
	assert.Equal(t, 16, cfg.Server.Workers)
	assert.Equal(t, 4096, cfg.Server.ReadBuffer)
	assert.Zero(t, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "user.db", cfg.Store.Path)
	assert.Equal(t, uint32(5), cfg.Store.Breaker.TripCount)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "server.log", cfg.Log.File)
	assert.True(t, cfg.Log.Console)
	assert.False(t, cfg.Metrics.Expose)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HIOLOAD_SERVER_PORT", "9090")
	t.Setenv("HIOLOAD_SERVER_READ_TIMEOUT", "5s")
	t.Setenv("HIOLOAD_LOG_LEVEL", "debug")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "httpd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 8181
  workers: 4
store:
  path: ""
metrics:
  expose: true
`), 0o644))

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Server.Workers)
	assert.Equal(t, "", cfg.Store.Path)
	assert.True(t, cfg.Metrics.Expose)
	assert.Equal(t, 128, cfg.Server.Backlog, "unset keys keep defaults")
}

func TestNewViper_MissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("server.workers", 0)
	v.Set("server.port", 70000)
	_, err := LoadConfig(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.workers")
	assert.Contains(t, err.Error(), "server.port")
}

func TestReloadHooks_Trigger(t *testing.T) {
	var hooks ReloadHooks
	var got []string
	hooks.Register(func(c *Config) { got = append(got, "a:"+c.Log.Level) })
	hooks.Register(func(c *Config) { got = append(got, "b:"+c.Log.Level) })

	cfg := DefaultConfig()
	cfg.Log.Level = "warn"
	hooks.Trigger(cfg)
	assert.Equal(t, []string{"a:warn", "b:warn"}, got)
}
