// Package transport defines the handler interface and middleware chain
// for the scenesmith HTTP/SSE transport layer.
//
// The transport layer bridges external clients and the rendering engine.
// It deserializes incoming chat requests into the types defined in
// pkg/api, opens the event stream, and hands both to the engine through
// the StreamCreator contract. The engine publishes typed events to a
// relay backed by the SSE connection; the transport never interprets
// them.
//
// # Middleware
//
// The middleware chain wraps StreamCreator with cross-cutting concerns.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog.
package transport
