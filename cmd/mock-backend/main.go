// Command mock-backend runs a deterministic Chat Completions server
// for local development and conformance testing. When the request
// carries tools and no tool result yet, it streams a
// generate_animation tool call with the arguments split across
// chunks; once a tool result is present it streams a short closing
// text turn.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// --- Canned scene ---

// sceneSource is the Manim program the mock always generates. It is
// kept trivial so renders against a real sandbox stay fast.
const sceneSource = "from manim import *\n\n" +
	"class MockScene(Scene):\n" +
	"    def construct(self):\n" +
	"        circle = Circle()\n" +
	"        self.play(Create(circle))\n"

// argChunkSize splits the tool-call arguments across stream chunks so
// clients exercise their incremental argument handling.
const argChunkSize = 24

// --- Handler ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	if !req.Stream {
		http.Error(w, `{"error":{"message":"only streaming requests are supported","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	switch {
	case len(req.Tools) > 0 && !hasToolResult(&req):
		streamToolCall(w, flusher, req.Model)
	default:
		streamText(w, flusher, req.Model, closingText(&req))
	}
}

func closingText(req *chatRequest) []string {
	if hasToolResult(req) {
		return []string{"The ", "animation ", "has ", "been ", "rendered."}
	}
	return []string{"Hello ", "from ", "the ", "mock ", "backend."}
}

// streamToolCall emits a generate_animation call. The first fragment
// carries the call identity; the rest carry argument slices only.
func streamToolCall(w http.ResponseWriter, flusher http.Flusher, model string) {
	writeRoleChunk(w, model)
	flusher.Flush()

	args, _ := json.Marshal(map[string]string{"code": sceneSource})
	for i := 0; i < len(args); i += argChunkSize {
		end := min(i+argChunkSize, len(args))
		writeToolCallChunk(w, model, i == 0, string(args[i:end]))
		flusher.Flush()
	}

	writeFinishChunk(w, model, "tool_calls", len(args)/4)
	flusher.Flush()

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

func streamText(w http.ResponseWriter, flusher http.Flusher, model string, tokens []string) {
	writeRoleChunk(w, model)
	flusher.Flush()

	for _, token := range tokens {
		writeContentChunk(w, model, token)
		flusher.Flush()
	}

	writeFinishChunk(w, model, "stop", len(tokens))
	flusher.Flush()

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// --- Chunk writers ---

func writeRoleChunk(w http.ResponseWriter, model string) {
	writeDeltaChunk(w, model, map[string]any{"role": "assistant"})
}

func writeContentChunk(w http.ResponseWriter, model, content string) {
	writeDeltaChunk(w, model, map[string]any{"content": content})
}

func writeToolCallChunk(w http.ResponseWriter, model string, first bool, args string) {
	call := map[string]any{
		"index":    0,
		"function": map[string]any{"arguments": args},
	}
	if first {
		call["id"] = "call_mock_0"
		call["type"] = "function"
		call["function"] = map[string]any{"name": "generate_animation", "arguments": args}
	}
	writeDeltaChunk(w, model, map[string]any{"tool_calls": []any{call}})
}

func writeDeltaChunk(w http.ResponseWriter, model string, delta map[string]any) {
	chunk := map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{
			map[string]any{
				"index":         0,
				"delta":         delta,
				"finish_reason": nil,
			},
		},
	}

	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

func writeFinishChunk(w http.ResponseWriter, model, reason string, tokenCount int) {
	chunk := map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{
			map[string]any{
				"index":         0,
				"delta":         map[string]any{},
				"finish_reason": reason,
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     10,
			"completion_tokens": tokenCount,
			"total_tokens":      10 + tokenCount,
		},
	}

	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-model", "object": "model", "owned_by": "scenesmith-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

func hasToolResult(req *chatRequest) bool {
	for _, msg := range req.Messages {
		if msg.Role == "tool" {
			return true
		}
	}
	return false
}
