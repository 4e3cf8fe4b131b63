// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Layered configuration: defaults, optional config file, HIOLOAD_* environment
// variables and bound command-line flags, decoded into Config.

package control

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. HIOLOAD_SERVER_PORT.
const EnvPrefix = "HIOLOAD"

// Config is the full process configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig holds listener, reactor and worker pool parameters.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Backlog         int           `mapstructure:"backlog"`
	MaxEvents       int           `mapstructure:"max_events"`
	Workers         int           `mapstructure:"workers"`
	ReadBuffer      int           `mapstructure:"read_buffer"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`  // 0 = wait forever
	WriteTimeout    time.Duration `mapstructure:"write_timeout"` // 0 = wait forever
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReactorCPU      int           `mapstructure:"reactor_cpu"` // -1 = no pinning
}

// StoreConfig selects the user store backend.
type StoreConfig struct {
	Path       string        `mapstructure:"path"` // empty = in-memory store
	BcryptCost int           `mapstructure:"bcrypt_cost"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker around the store.
type BreakerConfig struct {
	TripCount uint32        `mapstructure:"trip_count"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// LogConfig selects log level and outputs.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

// MetricsConfig toggles the metrics route.
type MetricsConfig struct {
	Expose bool `mapstructure:"expose"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.backlog", 128)
	v.SetDefault("server.max_events", 10)
	v.SetDefault("server.workers", 16)
	v.SetDefault("server.read_buffer", 4096)
	v.SetDefault("server.read_timeout", "0s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.reactor_cpu", -1)
	v.SetDefault("store.path", "user.db")
	v.SetDefault("store.bcrypt_cost", 10)
	v.SetDefault("store.breaker.trip_count", 5)
	v.SetDefault("store.breaker.timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "server.log")
	v.SetDefault("log.console", true)
	v.SetDefault("metrics.expose", false)
}

// NewViper returns a viper instance with defaults and environment binding.
// If configFile is set it is read; its format follows the file extension.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// LoadConfig decodes v into a validated Config.
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the defaults without reading any source.
func DefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadConfig(v)
	if err != nil {
		panic(fmt.Sprintf("control: invalid defaults: %v", err))
	}
	return cfg
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.Workers < 1 {
		errs = append(errs, fmt.Errorf("server.workers must be >= 1, got %d", c.Server.Workers))
	}
	if c.Server.MaxEvents < 1 {
		errs = append(errs, fmt.Errorf("server.max_events must be >= 1, got %d", c.Server.MaxEvents))
	}
	if c.Server.Backlog < 1 {
		errs = append(errs, fmt.Errorf("server.backlog must be >= 1, got %d", c.Server.Backlog))
	}
	if c.Server.ReadBuffer < 512 {
		errs = append(errs, fmt.Errorf("server.read_buffer must be >= 512, got %d", c.Server.ReadBuffer))
	}
	if c.Server.ReactorCPU < -1 {
		errs = append(errs, fmt.Errorf("server.reactor_cpu must be >= -1, got %d", c.Server.ReactorCPU))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
