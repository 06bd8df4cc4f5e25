// Package config provides unified configuration for the scenesmith server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (SCENESMITH_ prefix)
//  4. Validation
package config

import "time"

// Config holds all configuration for the scenesmith server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Engine        EngineConfig        `yaml:"engine"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 0 (streams stay open)
}

// EngineConfig holds text-generation backend and loop settings.
type EngineConfig struct {
	BackendURL   string `yaml:"backend_url"`   // required
	APIKey       string `yaml:"api_key"`       // optional
	DefaultModel string `yaml:"default_model"` // default: "gpt-4o"
	MaxTurns     int    `yaml:"max_turns"`     // default: 10
}

// SandboxConfig holds render execution settings.
type SandboxConfig struct {
	// Image is the version-pinned container image used for every render.
	Image string `yaml:"image"` // default: "manimcommunity/manim:v0.18.1"

	// MediaRoot is the host directory under which each request gets its
	// working area. Must exist and be writable.
	MediaRoot string `yaml:"media_root"` // default: "./media"

	// Timeout bounds one render execution end to end.
	Timeout time.Duration `yaml:"timeout"` // default: 120s
}

// ObservabilityConfig holds monitoring and logging settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds log level and debug category settings.
// Environment variables (SCENESMITH_LOG_LEVEL, SCENESMITH_DEBUG)
// override these values.
type LoggingConfig struct {
	Level string `yaml:"level"` // default: "INFO"
	Debug string `yaml:"debug"` // comma-separated categories, e.g. "provider,sandbox"
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			ReadTimeout: 30 * time.Second,
		},
		Engine: EngineConfig{
			DefaultModel: "gpt-4o",
			MaxTurns:     10,
		},
		Sandbox: SandboxConfig{
			Image:     "manimcommunity/manim:v0.18.1",
			MediaRoot: "./media",
			Timeout:   120 * time.Second,
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Logging: LoggingConfig{
				Level: "INFO",
			},
		},
	}
}
