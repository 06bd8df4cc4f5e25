package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/scenesmith/scenesmith/pkg/api"
	"github.com/scenesmith/scenesmith/pkg/relay"
)

// Logging returns middleware that emits structured log entries for each
// chat request. The log entry includes the request ID (from context),
// model, prompt length, duration, and whether the stream succeeded.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next StreamCreator) StreamCreator {
		return StreamCreatorFunc(func(ctx context.Context, req *api.ChatRequest, rly relay.Relay) error {
			start := time.Now()
			requestID := RequestIDFromContext(ctx)

			err := next.CreateStream(ctx, req, rly)

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("model", req.Model),
				slog.Int("prompt_len", len(req.Prompt)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "stream failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "stream completed", attrs...)
			}

			return err
		})
	}
}
