package engine

import (
	"context"
	"log/slog"

	"github.com/scenesmith/scenesmith/pkg/provider"
	"github.com/scenesmith/scenesmith/pkg/sandbox"
)

// Renderer executes generated source and reports the outcome. It never
// returns an error; failures arrive as a Result with a failure reason.
type Renderer interface {
	Execute(ctx context.Context, source string, notify sandbox.Notifier) *sandbox.Result
}

// Engine runs the generate/dispatch loop for one request at a time per
// call; it holds no per-request state and is safe for concurrent use.
type Engine struct {
	provider provider.Provider
	renderer Renderer
	cfg      Config
	logger   *slog.Logger
}

// New creates an engine with the given provider and renderer.
func New(p provider.Provider, r Renderer, cfg Config, logger *slog.Logger) *Engine {
	return &Engine{
		provider: p,
		renderer: r,
		cfg:      cfg,
		logger:   logger,
	}
}
