// Package config loads the settings of the demo server.
// Server and logging settings come from environment variables prefixed with
// CORSDEMO (e.g. CORSDEMO_PORT=8080, CORSDEMO_LOG_LEVEL=debug); the CORS
// policy comes from a YAML, JSON, or TOML file.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "CORSDEMO"

// Config holds all settings of the demo server.
type Config struct {
	Server ServerConfig
	Log    LogConfig
	Policy PolicyConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// Host is the HTTP server host (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Framework selects the server stack: http, gin, or fiber (default: http)
	Framework string `envconfig:"FRAMEWORK" default:"http"`

	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`

	// ShutdownTimeout bounds graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string `envconfig:"LOG_LEVEL" default:"info"`

	// Format is json or text (default: json)
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// PolicyConfig says where the CORS policy comes from.
type PolicyConfig struct {
	// File is the path of the policy file; if empty, DefaultPolicy is used.
	File string `envconfig:"POLICY_FILE"`

	// Debug turns on the debug mode of the CORS middleware.
	Debug bool `envconfig:"CORS_DEBUG" default:"false"`
}

// Addr returns the server address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Load reads the settings from environment variables.
func Load() (*Config, error) {
	var cfg Config
	// Sections are loaded separately so that variable names stay flat,
	// e.g. CORSDEMO_PORT rather than CORSDEMO_SERVER_PORT.
	if err := envconfig.Process(envPrefix, &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	if err := envconfig.Process(envPrefix, &cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to load log config: %w", err)
	}
	if err := envconfig.Process(envPrefix, &cfg.Policy); err != nil {
		return nil, fmt.Errorf("failed to load policy config: %w", err)
	}
	switch cfg.Server.Framework {
	case FrameworkHTTP, FrameworkGin, FrameworkFiber:
	default:
		return nil, fmt.Errorf("unknown framework %q", cfg.Server.Framework)
	}
	return &cfg, nil
}

// Frameworks the demo server can run on.
const (
	FrameworkHTTP  = "http"
	FrameworkGin   = "gin"
	FrameworkFiber = "fiber"
)
