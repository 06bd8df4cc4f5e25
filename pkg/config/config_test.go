package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8080 {
		t.Errorf("default server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("default server.read_timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Engine.MaxTurns != 10 {
		t.Errorf("default engine.max_turns = %d, want 10", cfg.Engine.MaxTurns)
	}
	if cfg.Sandbox.Image != "manimcommunity/manim:v0.18.1" {
		t.Errorf("default sandbox.image = %q", cfg.Sandbox.Image)
	}
	if cfg.Sandbox.Timeout != 120*time.Second {
		t.Errorf("default sandbox.timeout = %v, want 120s", cfg.Sandbox.Timeout)
	}
	if !cfg.Observability.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoadFromYAML(t *testing.T) {
	yamlContent := `
server:
  port: 9090
  read_timeout: 60s
engine:
  backend_url: http://localhost:4000
  api_key: sk-test-key
  default_model: gpt-4
  max_turns: 5
sandbox:
  image: manimcommunity/manim:v0.19.0
  media_root: /tmp/scenesmith-media
  timeout: 300s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Engine.BackendURL != "http://localhost:4000" {
		t.Errorf("engine.backend_url = %q", cfg.Engine.BackendURL)
	}
	if cfg.Engine.MaxTurns != 5 {
		t.Errorf("engine.max_turns = %d, want 5", cfg.Engine.MaxTurns)
	}
	if cfg.Sandbox.Image != "manimcommunity/manim:v0.19.0" {
		t.Errorf("sandbox.image = %q", cfg.Sandbox.Image)
	}
	if cfg.Sandbox.Timeout != 300*time.Second {
		t.Errorf("sandbox.timeout = %v, want 300s", cfg.Sandbox.Timeout)
	}
	// Fields absent from the YAML keep their defaults.
	if cfg.Engine.DefaultModel != "gpt-4" {
		t.Errorf("engine.default_model = %q, want gpt-4", cfg.Engine.DefaultModel)
	}
	if cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("metrics.path = %q, want /metrics", cfg.Observability.Metrics.Path)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCENESMITH_BACKEND_URL", "http://env-backend:8000")
	t.Setenv("SCENESMITH_PORT", "7070")
	t.Setenv("SCENESMITH_SANDBOX_TIMEOUT", "90s")

	// No config file in the working directory, so only env applies.
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.BackendURL != "http://env-backend:8000" {
		t.Errorf("backend_url = %q, want env value", cfg.Engine.BackendURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Sandbox.Timeout != 90*time.Second {
		t.Errorf("timeout = %v, want 90s", cfg.Sandbox.Timeout)
	}
}

func TestValidateRejectsMissingBackend(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing backend_url")
	}

	cfg.Engine.BackendURL = "http://localhost:8000"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero max turns", func(c *Config) { c.Engine.MaxTurns = 0 }},
		{"empty image", func(c *Config) { c.Sandbox.Image = "" }},
		{"empty media root", func(c *Config) { c.Sandbox.MediaRoot = "" }},
		{"zero timeout", func(c *Config) { c.Sandbox.Timeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Engine.BackendURL = "http://localhost:8000"
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
