package api

import "strings"

// maxPromptLength bounds the user prompt to keep backend context windows
// and log lines manageable.
const maxPromptLength = 16 * 1024

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	// Prompt is the user's message. Required.
	Prompt string `json:"prompt"`

	// Model optionally overrides the configured default model.
	Model string `json:"model,omitempty"`
}

// Validate checks the request and returns an APIError describing the first
// problem found, or nil if the request is acceptable.
func (r *ChatRequest) Validate() *APIError {
	if strings.TrimSpace(r.Prompt) == "" {
		return NewInvalidRequestError("prompt", "prompt is required")
	}
	if len(r.Prompt) > maxPromptLength {
		return NewInvalidRequestError("prompt", "prompt exceeds maximum length")
	}
	return nil
}
