package engine

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/scenesmith/scenesmith/pkg/api"
	"github.com/scenesmith/scenesmith/pkg/debug"
	"github.com/scenesmith/scenesmith/pkg/observability"
	"github.com/scenesmith/scenesmith/pkg/provider"
	"github.com/scenesmith/scenesmith/pkg/relay"
	"github.com/scenesmith/scenesmith/pkg/sandbox"
)

const maxToolLogBytes = 8 * 1024

// Run executes the full conversational cycle for one request and always
// leaves the relay in a terminal state. The loop alternates between
// streaming a backend turn and dispatching a requested render; it halts
// when a turn requests no execution.
func (e *Engine) Run(ctx context.Context, req *api.ChatRequest, rly relay.Relay) error {
	model := req.Model
	if model == "" {
		model = e.cfg.Model
	}

	messages := []provider.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: req.Prompt},
	}
	notify := &relayNotifier{relay: rly, logger: e.logger}

	for turn := 0; turn < e.cfg.maxTurns(); turn++ {
		if ctx.Err() != nil {
			return e.fail(ctx, rly, "request cancelled")
		}

		text, calls, err := e.generate(ctx, model, messages, rly)
		if err != nil {
			e.logger.Warn("backend turn failed", "turn", turn, "error", err)
			return e.fail(ctx, rly, err.Error())
		}
		debug.Log("engine", "turn complete",
			"turn", turn, "text_len", len(text), "tool_calls", len(calls))

		var refs []api.ToolCallRef
		var provCalls []provider.ToolCall
		var render *Call
		for i := range calls {
			call := &calls[i]
			refs = append(refs, api.ToolCallRef{ID: call.ID, Name: call.Name, Arguments: call.Arguments})
			provCalls = append(provCalls, provider.ToolCall{ID: call.ID, Name: call.Name, Arguments: call.Arguments})
			if render == nil && call.Name == ToolGenerateAnimation && call.Code != "" {
				render = call
			}
		}

		if err := rly.Publish(ctx, api.Message("assistant", text, refs)); err != nil {
			return err
		}
		messages = append(messages, provider.Message{Role: "assistant", Content: text, ToolCalls: provCalls})

		if render == nil {
			return rly.Publish(ctx, api.Done(text))
		}

		if err := rly.Publish(ctx, api.Code(render.Code, render.ID)); err != nil {
			return err
		}

		result := e.renderer.Execute(ctx, render.Code, notify)

		var toolOutput string
		if result.Success() {
			url := artifactURL(result)
			if err := rly.Publish(ctx, api.ArtifactURL(url, render.ID)); err != nil {
				return err
			}
			toolOutput = "Render succeeded. The animation is available at " + url + "."
		} else {
			toolOutput = "Render failed: " + result.FailureReason
			if result.Log != "" {
				toolOutput += "\n\nRender log:\n" + truncate(result.Log, maxToolLogBytes)
			}
		}
		messages = append(messages, provider.Message{
			Role:       "tool",
			Content:    toolOutput,
			ToolCallID: render.ID,
		})
	}

	return e.fail(ctx, rly, "render loop exceeded the configured turn limit")
}

// generate streams one backend turn, routing text deltas and decoded
// argument updates to the relay, and returns the turn's accumulated text
// and reconstructed tool calls.
func (e *Engine) generate(ctx context.Context, model string, messages []provider.Message, rly relay.Relay) (string, []Call, error) {
	provName := e.provider.Name()
	start := time.Now()

	ch, err := e.provider.Stream(ctx, &provider.Request{
		Model:    model,
		Messages: messages,
		Tools:    []provider.Tool{renderTool()},
	})
	if err != nil {
		observability.ProviderRequestsTotal.WithLabelValues(provName, model, "error").Inc()
		return "", nil, err
	}

	acc := NewAccumulator()
	var text strings.Builder
	var streamErr error

	for ev := range ch {
		switch ev.Type {
		case provider.EventTextDelta:
			text.WriteString(ev.Delta)
			streamErr = rly.Publish(ctx, api.TextDelta(ev.Delta))
		case provider.EventToolCallFragment:
			if up, ok := acc.Accept(ev); ok {
				streamErr = rly.Publish(ctx, api.ToolCallArgDelta(up.CallID, up.CallName, codeField, up.Value))
			}
		case provider.EventError:
			streamErr = ev.Err
		case provider.EventDone:
			// The channel closes shortly after; keep draining.
		}
		if streamErr != nil {
			// Unblock the provider goroutine; the request context
			// cancels the underlying stream.
			go func() {
				for range ch {
				}
			}()
			break
		}
	}

	duration := time.Since(start)
	status := "success"
	if streamErr != nil {
		status = "error"
	}
	observability.ProviderRequestsTotal.WithLabelValues(provName, model, status).Inc()
	observability.ProviderLatency.WithLabelValues(provName, model).Observe(duration.Seconds())

	if streamErr != nil {
		return "", nil, streamErr
	}
	return text.String(), acc.Calls(), nil
}

// fail publishes a terminal error event and reports the failure to the
// caller for logging. A relay already closed by a terminal event is not
// an error here.
func (e *Engine) fail(ctx context.Context, rly relay.Relay, msg string) error {
	if err := rly.Publish(ctx, api.ErrorEvent(msg)); err != nil && !errors.Is(err, relay.ErrClosed) {
		return err
	}
	return errors.New(msg)
}

func artifactURL(res *sandbox.Result) string {
	return "/v1/videos/" + res.RequestID + "/" + filepath.Base(res.ArtifactPath)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n[log truncated]"
}

// relayNotifier forwards sandbox lifecycle notifications to the event
// stream. Delivery is best-effort; a closed relay drops them.
type relayNotifier struct {
	relay  relay.Relay
	logger *slog.Logger
}

func (n *relayNotifier) Notify(ctx context.Context, content, id string, status api.NotificationStatus) {
	if err := n.relay.Publish(ctx, api.Notification(content, id, status)); err != nil {
		n.logger.Debug("dropping notification", "request_id", id, "error", err)
	}
}
