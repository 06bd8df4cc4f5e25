// Package openaicompat adapts any OpenAI-compatible Chat Completions
// backend to the provider interface. It handles request serialization,
// SSE chunk parsing, and error mapping, and passes tool-call argument
// fragments through exactly as the backend emits them (identity and
// function name only on a call's first fragment).
package openaicompat
