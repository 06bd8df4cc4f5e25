// Command server runs the scenesmith animation gateway.
//
// Configuration is layered: built-in defaults, then an optional YAML
// file, then SCENESMITH_* environment variables. The config file path
// comes from -config or the SCENESMITH_CONFIG environment variable.
//
//	SCENESMITH_BACKEND_URL   - Chat Completions backend URL (required)
//	SCENESMITH_API_KEY       - Bearer token for the backend (optional)
//	SCENESMITH_MODEL         - Default model name (default: gpt-4o)
//	SCENESMITH_PORT          - Listen port (default: 8080)
//	SCENESMITH_SANDBOX_IMAGE - Render container image
//	SCENESMITH_MEDIA_ROOT    - Working area for render output
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/scenesmith/scenesmith/pkg/config"
	"github.com/scenesmith/scenesmith/pkg/debug"
	"github.com/scenesmith/scenesmith/pkg/engine"
	"github.com/scenesmith/scenesmith/pkg/provider/openaicompat"
	"github.com/scenesmith/scenesmith/pkg/sandbox"
	"github.com/scenesmith/scenesmith/pkg/transport"
	transporthttp "github.com/scenesmith/scenesmith/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := debug.Init(cfg.Observability.Logging.Debug, cfg.Observability.Logging.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	prov := openaicompat.NewClient(cfg.Engine.BackendURL, cfg.Engine.APIKey)
	defer prov.Close()

	runner := sandbox.NewRunner(sandbox.Config{
		Image:     cfg.Sandbox.Image,
		MediaRoot: cfg.Sandbox.MediaRoot,
		Timeout:   cfg.Sandbox.Timeout,
	}, logger)

	eng := engine.New(prov, runner, engine.Config{
		Model:    cfg.Engine.DefaultModel,
		MaxTurns: cfg.Engine.MaxTurns,
	}, logger)

	srv := transporthttp.NewServer(
		transport.StreamCreatorFunc(eng.Run),
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMediaRoot(cfg.Sandbox.MediaRoot),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled),
		transporthttp.WithReadTimeout(cfg.Server.ReadTimeout),
		transporthttp.WithWriteTimeout(cfg.Server.WriteTimeout),
		transporthttp.WithLogger(logger),
	)

	logger.Info("starting server",
		"port", cfg.Server.Port,
		"backend", cfg.Engine.BackendURL,
		"model", cfg.Engine.DefaultModel,
		"sandbox_image", cfg.Sandbox.Image)

	return srv.ListenAndServe()
}
