// Package provider abstracts the text-generation backend as an opaque
// producer of message and tool-call-fragment events. The engine consumes
// the event sequence; it never sees the backend's wire protocol.
package provider

import (
	"context"
	"encoding/json"
)

// Provider is a streaming text-generation backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai").
	Name() string

	// Stream performs one generation turn. The returned channel receives
	// Event values and is closed by the provider when the turn completes
	// or errors.
	Stream(ctx context.Context, req *Request) (<-chan Event, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}

// Request is the backend-facing request for one generation turn.
type Request struct {
	Model    string
	Messages []Message
	Tools    []Tool
}

// Message represents one entry of the conversation history.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolCall is a completed tool invocation recorded on an assistant message.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Tool declares a function the backend may call.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// EventType classifies a streaming event from the backend.
type EventType int

const (
	// EventTextDelta carries incremental assistant text.
	EventTextDelta EventType = iota

	// EventToolCallFragment carries one raw fragment of a tool call's
	// encoded arguments. CallID and CallName are populated only on the
	// call's first fragment; continuation fragments identify the call by
	// Index alone.
	EventToolCallFragment

	// EventDone signals the end of the turn.
	EventDone

	// EventError signals a backend failure; Err is populated.
	EventError
)

// Event is a single streaming event from the backend.
type Event struct {
	Type EventType

	// Delta holds text content or an argument fragment.
	Delta string

	// Index is the position index of the tool call within the turn.
	Index int

	// CallID identifies the tool call; empty on continuation fragments.
	CallID string

	// CallName is the tool function name; empty on continuation fragments.
	CallName string

	// Err is populated for EventError.
	Err error
}
